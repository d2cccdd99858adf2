package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.StorageTimeout)
	assert.Equal(t, 7*24*time.Hour, cfg.DigestInterval)
	assert.Equal(t, 30, cfg.SubmitRateLimit)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingDatabaseURL)
	assert.False(t, cfg.ArchiveEnabled())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DATABASE_URL=postgres://file\nPORT=9000\nSTORAGE_TIMEOUT=2s\n"), 0o600))
	t.Setenv("PORT", "9100")

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file", cfg.DatabaseURL)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.StorageTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestValidateTimezone(t *testing.T) {
	cfg := &Config{DatabaseURL: "x", StorageTimeout: time.Second, Timezone: "Mars/Olympus"}
	assert.Error(t, cfg.Validate())

	cfg.Timezone = ""
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestValidateSubmitLimitWithRedis(t *testing.T) {
	cfg := &Config{DatabaseURL: "x", StorageTimeout: time.Second, SubmitRateLimit: 0, SubmitRateWindow: time.Minute}
	assert.NoError(t, cfg.Validate())

	cfg.RedisAddr = "localhost:6379"
	assert.ErrorContains(t, cfg.Validate(), "SUBMIT_RATE_LIMIT")

	cfg.SubmitRateLimit = 30
	assert.NoError(t, cfg.Validate())

	cfg.SubmitRateWindow = 0
	assert.ErrorContains(t, cfg.Validate(), "SUBMIT_RATE_WINDOW")
}
