package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when present; a missing default file is not an error.
const DefaultConfigFile = "docpathfix.yaml"

// Config represents the application configuration.
type Config struct {
	// Root is the documentation output directory that is scanned recursively.
	Root string `yaml:"root"`
	// Pattern is matched against the base name of every file under Root.
	Pattern     string        `yaml:"pattern"`
	Rewrite     RewriteConfig `yaml:"rewrite"`
	Concurrency int           `yaml:"concurrency"`
	// MetricsFile enables a Prometheus textfile export after each pass.
	MetricsFile string        `yaml:"metrics_file,omitempty"`
	Logging     LoggingConfig `yaml:"logging"`
	Watch       WatchConfig   `yaml:"watch"`
}

// RewriteConfig holds the literal prefix substitution.
type RewriteConfig struct {
	Bad  string `yaml:"bad"`
	Good string `yaml:"good"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce    time.Duration `yaml:"debounce"`
	Resync      time.Duration `yaml:"resync,omitempty"`
	MetricsAddr string        `yaml:"metrics_addr,omitempty"`
}

// Load builds the effective configuration: defaults, then the YAML file at
// configPath, then DOCPATHFIX_* environment overrides. A missing file is only an
// error when required is set.
func Load(configPath string, required bool) (*Config, error) {
	if err := loadEnvFile(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := Defaults()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := unmarshalInto(cfg, data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config %s: %w", configPath, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !required:
			// defaults only
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// unmarshalInto decodes YAML over cfg after expanding ${VAR} references.
func unmarshalInto(cfg *Config, data []byte) error {
	expanded := os.ExpandEnv(string(data))
	return yaml.Unmarshal([]byte(expanded), cfg)
}
