package config

import (
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, common.AnonymousUserID, c.UserID)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, time.Hour, c.SignedURLTTL)
	assert.Equal(t, 2, c.RetryCount)
	assert.Equal(t, common.GiB, c.FreeBaseQuota)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"docvault"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "docvault.db", cfg.DatabasePath)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}
