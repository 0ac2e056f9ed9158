package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/docvault/internal/flagx"
	"github.com/dmitrijs2005/docvault/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. Durations use timex.Duration, so both "1s" and
// integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddr                string         `json:"endpoint_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	RequireAuth                 *bool          `json:"require_auth"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	FreeBaseQuota               int64          `json:"free_base_quota"`
	PremiumBaseQuota            int64          `json:"premium_base_quota"`
	MaxDevices                  int            `json:"max_devices"`
	SignedURLTTL                timex.Duration `json:"signed_url_ttl"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout"`
	LogFormat                   string         `json:"log_format"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson overlays Config with the non-empty values of the JSON file given
// via -c or -config. Unreadable files and invalid JSON panic.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)

	if c.RequireAuth != nil {
		config.RequireAuth = *c.RequireAuth
	}
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.SignedURLTTL.Duration > 0 {
		config.SignedURLTTL = c.SignedURLTTL.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.FreeBaseQuota > 0 {
		config.FreeBaseQuota = c.FreeBaseQuota
	}
	if c.PremiumBaseQuota > 0 {
		config.PremiumBaseQuota = c.PremiumBaseQuota
	}
	if c.MaxDevices > 0 {
		config.MaxDevices = c.MaxDevices
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
