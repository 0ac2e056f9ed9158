package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/docvault/internal/flagx"
	"github.com/dmitrijs2005/docvault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept strings like "10s" or integer nanoseconds.
type JsonConfig struct {
	ServerURL       string         `json:"server_url"`
	DatabasePath    string         `json:"database_path"`
	UserID          string         `json:"user_id"`
	AccessToken     string         `json:"access_token"`
	DeviceID        string         `json:"device_id"`
	MediaDir        string         `json:"media_dir"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	SignedURLTTL    timex.Duration `json:"signed_url_ttl"`
	RetryCount      *int           `json:"retry_count"`
	FreeBaseQuota   int64          `json:"free_base_quota"`
	DangerThreshold int64          `json:"danger_threshold"`
	LogFormat       string         `json:"log_format"`
	LogLevel        string         `json:"log_level"`
}

// parseJson overlays Config with the non-empty values of the JSON file
// named by -c or -config. Read and decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.UserID, jc.UserID)
	setString(&cfg.AccessToken, jc.AccessToken)
	setString(&cfg.DeviceID, jc.DeviceID)
	setString(&cfg.MediaDir, jc.MediaDir)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SignedURLTTL.Duration > 0 {
		cfg.SignedURLTTL = jc.SignedURLTTL.Duration
	}
	if jc.RetryCount != nil {
		cfg.RetryCount = *jc.RetryCount
	}
	if jc.FreeBaseQuota > 0 {
		cfg.FreeBaseQuota = jc.FreeBaseQuota
	}
	if jc.DangerThreshold > 0 {
		cfg.DangerThreshold = jc.DangerThreshold
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
