package config

import (
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
)

// Config holds runtime settings for the docvault CLI.
//
// UserID may be empty or "anonymous"; the client then works offline and
// never talks to the server.
type Config struct {
	ServerURL    string
	DatabasePath string
	UserID       string
	AccessToken  string
	// PromptToken asks for the access token on the terminal at startup
	// instead of taking it from argv or the config file.
	PromptToken bool
	DeviceID    string
	MediaDir    string

	RequestTimeout time.Duration
	SignedURLTTL   time.Duration
	RetryCount     int

	FreeBaseQuota   int64
	DangerThreshold int64

	LogFormat string
	LogLevel  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "docvault.db"
	c.UserID = common.AnonymousUserID
	c.MediaDir = "media"
	c.RequestTimeout = 10 * time.Second
	c.SignedURLTTL = time.Hour
	c.RetryCount = 2
	c.FreeBaseQuota = common.GiB
	c.DangerThreshold = common.GiB
	c.LogFormat = "text"
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
