package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitactivity/internal/logger"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"UPSTREAM_BASE_URL", "APP_PORT", "DATABASE_URL", "STATS_SOURCE",
		"ACTIVITY_DELAY", "STATS_DELAY", "UPSTREAM_TIMEOUT", "LOG_LEVEL", "LOG_PRETTY"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "", cfg.UpstreamBaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.ArchiveEnabled())
	assert.Equal(t, StatsAggregate, cfg.StatsSource)
	assert.Equal(t, 200*time.Millisecond, cfg.ActivityDelay)
	assert.Equal(t, 150*time.Millisecond, cfg.StatsDelay)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "https://capture.example.com/")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/activity")
	t.Setenv("STATS_SOURCE", "Placeholder")
	t.Setenv("ACTIVITY_DELAY", "0s")
	t.Setenv("STATS_DELAY", "not-a-duration")
	t.Setenv("LOG_PRETTY", "true")

	cfg := FromEnv()

	assert.Equal(t, "https://capture.example.com", cfg.UpstreamBaseURL)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.ArchiveEnabled())
	assert.Equal(t, StatsPlaceholder, cfg.StatsSource)
	assert.Equal(t, time.Duration(0), cfg.ActivityDelay)
	assert.Equal(t, 150*time.Millisecond, cfg.StatsDelay)
	assert.True(t, cfg.LogPretty)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GITACTIVITY_DOTENV_PROBE=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("GITACTIVITY_DOTENV_PROBE") })

	assert.True(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("GITACTIVITY_DOTENV_PROBE"))
	assert.False(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
