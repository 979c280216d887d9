package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"gitactivity/internal/logger"
)

const (
	defaultPort            = "8080"
	defaultActivityDelay   = 200 * time.Millisecond
	defaultStatsDelay      = 150 * time.Millisecond
	defaultUpstreamTimeout = 10 * time.Second
)

type StatsSource string

const (
	StatsAggregate   StatsSource = "aggregate"
	StatsPlaceholder StatsSource = "placeholder"
)

type Config struct {
	UpstreamBaseURL string
	Port            string
	DatabaseURL     string
	StatsSource     StatsSource
	ActivityDelay   time.Duration
	StatsDelay      time.Duration
	UpstreamTimeout time.Duration
	LogLevel        logger.LogLevel
	LogPretty       bool
}

// LoadDotEnv reads a .env file if one exists. A missing file is not an error.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// FromEnv builds the configuration from the process environment, falling
// back to defaults for unset or unparsable values.
func FromEnv() Config {
	return Config{
		UpstreamBaseURL: strings.TrimRight(os.Getenv("UPSTREAM_BASE_URL"), "/"),
		Port:            getString("APP_PORT", defaultPort),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		StatsSource:     parseStatsSource(os.Getenv("STATS_SOURCE")),
		ActivityDelay:   getDuration("ACTIVITY_DELAY", defaultActivityDelay),
		StatsDelay:      getDuration("STATS_DELAY", defaultStatsDelay),
		UpstreamTimeout: getDuration("UPSTREAM_TIMEOUT", defaultUpstreamTimeout),
		LogLevel:        logger.LogLevel(getString("LOG_LEVEL", string(logger.LevelInfo))),
		LogPretty:       getBool("LOG_PRETTY", false),
	}
}

func (c Config) ArchiveEnabled() bool {
	return c.DatabaseURL != ""
}

func parseStatsSource(v string) StatsSource {
	if StatsSource(strings.ToLower(v)) == StatsPlaceholder {
		return StatsPlaceholder
	}
	return StatsAggregate
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		logger.Warnf("config: invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
