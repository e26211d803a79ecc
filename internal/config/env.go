package config

import (
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override file configuration.
const (
	EnvRoot        = "DOCPATHFIX_ROOT"
	EnvPattern     = "DOCPATHFIX_PATTERN"
	EnvBad         = "DOCPATHFIX_BAD"
	EnvGood        = "DOCPATHFIX_GOOD"
	EnvConcurrency = "DOCPATHFIX_CONCURRENCY"
	EnvMetricsFile = "DOCPATHFIX_METRICS_FILE"
	EnvLogLevel    = "DOCPATHFIX_LOG_LEVEL"
	EnvLogFormat   = "DOCPATHFIX_LOG_FORMAT"
	EnvDebounce    = "DOCPATHFIX_WATCH_DEBOUNCE"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads the first readable .env/.env.local file. Existing process
// environment variables are never overwritten. Returns fs.ErrNotExist when no
// file is present.
func loadEnvFile() error {
	for _, envPath := range envFiles {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("%s: %w", envPath, err)
		}
		return nil
	}
	return fs.ErrNotExist
}

// applyEnv overlays DOCPATHFIX_* variables onto cfg.
func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString(EnvRoot, &cfg.Root)
	setString(EnvPattern, &cfg.Pattern)
	setString(EnvBad, &cfg.Rewrite.Bad)
	setString(EnvGood, &cfg.Rewrite.Good)
	setString(EnvMetricsFile, &cfg.MetricsFile)

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = LogFormat(v)
	}
	if v := os.Getenv(EnvConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvConcurrency, v, err)
		}
		cfg.Concurrency = n
	}
	if v := os.Getenv(EnvDebounce); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDebounce, v, err)
		}
		cfg.Watch.Debounce = d
	}
	return nil
}
