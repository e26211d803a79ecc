package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docpathfix/internal/foundation/errors"
)

// Validate checks the effective configuration. Failures are config-category
// classified errors.
func Validate(cfg *Config) error {
	validator := &configurationValidator{config: cfg}
	return validator.validate()
}

// configurationValidator coordinates validation across configuration domains.
type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if err := cv.validateRewrite(); err != nil {
		return err
	}
	if err := cv.validateRuntime(); err != nil {
		return err
	}
	return cv.validateLogging()
}

func (cv *configurationValidator) validatePaths() error {
	if strings.TrimSpace(cv.config.Root) == "" {
		return errors.ConfigError("root must not be empty").Build()
	}
	if _, err := filepath.Match(cv.config.Pattern, ""); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid pattern").
			Fatal().
			WithContext("pattern", cv.config.Pattern).
			Build()
	}
	return nil
}

// validateRewrite rejects rules that would not converge: a good prefix that
// contains the bad one grows on every run.
func (cv *configurationValidator) validateRewrite() error {
	r := cv.config.Rewrite
	if r.Bad == "" {
		return errors.ConfigError("rewrite.bad must not be empty").Build()
	}
	if strings.Contains(r.Good, r.Bad) {
		return errors.ConfigError("rewrite.good must not contain rewrite.bad").
			WithContext("bad", r.Bad).
			WithContext("good", r.Good).
			Build()
	}
	return nil
}

func (cv *configurationValidator) validateRuntime() error {
	if cv.config.Concurrency < 1 {
		return errors.ConfigError(fmt.Sprintf("concurrency must be at least 1, got %d", cv.config.Concurrency)).Build()
	}
	if cv.config.Watch.Resync < 0 {
		return errors.ConfigError("watch.resync must not be negative").Build()
	}
	return nil
}

// validateLogging rejects unknown values and stores the normalized form.
func (cv *configurationValidator) validateLogging() error {
	level, err := ParseLogLevel(string(cv.config.Logging.Level))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid logging.level").Fatal().Build()
	}
	format, err := ParseLogFormat(string(cv.config.Logging.Format))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid logging.format").Fatal().Build()
	}
	cv.config.Logging.Level = level
	cv.config.Logging.Format = format
	return nil
}
