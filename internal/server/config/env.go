package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "DOCVAULT_"

// envFile is a test seam; a missing file is not an error.
var envFile = ".env"

// parseEnv overlays Config with DOCVAULT_* variables. Values from envFile
// are loaded first without overriding the real environment. Malformed
// numbers and durations panic like malformed flags do.
func parseEnv(cfg *Config) {
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	}

	envString("ENDPOINT_ADDR", &cfg.EndpointAddr)
	envString("DATABASE_DSN", &cfg.DatabaseDSN)
	envString("SECRET_KEY", &cfg.SecretKey)
	envBool("REQUIRE_AUTH", &cfg.RequireAuth)
	envDuration("ACCESS_TOKEN_VALIDITY", &cfg.AccessTokenValidityDuration)

	envString("S3_ROOT_USER", &cfg.S3RootUser)
	envString("S3_ROOT_PASSWORD", &cfg.S3RootPassword)
	envString("S3_BUCKET", &cfg.S3Bucket)
	envString("S3_REGION", &cfg.S3Region)
	envString("S3_BASE_ENDPOINT", &cfg.S3BaseEndpoint)

	envInt64("FREE_BASE_QUOTA", &cfg.FreeBaseQuota)
	envInt64("PREMIUM_BASE_QUOTA", &cfg.PremiumBaseQuota)
	if v, ok := lookup("MAX_DEVICES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		cfg.MaxDevices = n
	}
	envDuration("SIGNED_URL_TTL", &cfg.SignedURLTTL)

	envDuration("READ_TIMEOUT", &cfg.ReadTimeout)
	envDuration("WRITE_TIMEOUT", &cfg.WriteTimeout)
	envDuration("IDLE_TIMEOUT", &cfg.IdleTimeout)
	envDuration("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)

	envString("LOG_FORMAT", &cfg.LogFormat)
	envString("LOG_LEVEL", &cfg.LogLevel)
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envString(name string, dst *string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func envBool(name string, dst *bool) {
	if v, ok := lookup(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		*dst = b
	}
}

func envInt64(name string, dst *int64) {
	if v, ok := lookup(name); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func envDuration(name string, dst *time.Duration) {
	if v, ok := lookup(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}
