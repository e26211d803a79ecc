package config

import (
	"path"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// DefaultBuildOutput is the directory the documentation generator writes to.
	DefaultBuildOutput = "_book"
	DefaultPattern     = "*.html"
	DefaultGood        = "../../docs"
	DefaultDebounce    = 500 * time.Millisecond
)

// DefaultBad returns the malformed prefix the generator emits for buildOutput.
func DefaultBad(buildOutput string) string {
	return path.Join("../../..", filepath.ToSlash(buildOutput), "docs")
}

// Defaults returns a configuration matching a zero-argument invocation.
func Defaults() *Config {
	return &Config{
		Root:    filepath.Join(".", DefaultBuildOutput, "docs"),
		Pattern: DefaultPattern,
		Rewrite: RewriteConfig{
			Bad:  DefaultBad(DefaultBuildOutput),
			Good: DefaultGood,
		},
		Concurrency: runtime.NumCPU(),
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
	}
}

// applyDefaults fills zero values left by the file or environment.
func applyDefaults(cfg *Config) {
	d := Defaults()
	if cfg.Root == "" {
		cfg.Root = d.Root
	}
	if cfg.Pattern == "" {
		cfg.Pattern = d.Pattern
	}
	if cfg.Rewrite.Bad == "" {
		cfg.Rewrite.Bad = d.Rewrite.Bad
	}
	if cfg.Rewrite.Good == "" {
		cfg.Rewrite.Good = d.Rewrite.Good
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = d.Concurrency
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = d.Logging.Format
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = d.Watch.Debounce
	}
}
