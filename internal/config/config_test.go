package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpathfix/internal/foundation/errors"
)

// isolate runs the test from an empty directory so stray .env files are not picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDefaults_MatchZeroArgumentInvocation(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, filepath.Join("_book", "docs"), cfg.Root)
	require.Equal(t, "*.html", cfg.Pattern)
	require.Equal(t, "../../../_book/docs", cfg.Rewrite.Bad)
	require.Equal(t, "../../docs", cfg.Rewrite.Good)
	require.Equal(t, runtime.NumCPU(), cfg.Concurrency)
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
	require.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
}

func TestDefaultBad(t *testing.T) {
	require.Equal(t, "../../../_book/docs", DefaultBad("_book"))
	require.Equal(t, "../../../out/site/docs", DefaultBad("out/site"))
}

func TestLoad_MissingOptionalFileUsesDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(filepath.Join(dir, DefaultConfigFile), false)
	require.NoError(t, err)
	require.Equal(t, Defaults().Rewrite, cfg.Rewrite)
}

func TestLoad_MissingRequiredFileFails(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"), true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "configuration file not found")
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "docpathfix.yaml")
	writeFile(t, path, `
root: out/docs
pattern: "*.htm"
rewrite:
  bad: ../../../out/docs
  good: ../docs
concurrency: 2
metrics_file: ${METRICS_DIR}/docpathfix.prom
logging:
  level: DEBUG
  format: json
watch:
  debounce: 250ms
  resync: 1m
`)
	t.Setenv("METRICS_DIR", "/var/lib/node_exporter")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	require.Equal(t, "out/docs", cfg.Root)
	require.Equal(t, "*.htm", cfg.Pattern)
	require.Equal(t, RewriteConfig{Bad: "../../../out/docs", Good: "../docs"}, cfg.Rewrite)
	require.Equal(t, 2, cfg.Concurrency)
	require.Equal(t, "/var/lib/node_exporter/docpathfix.prom", cfg.MetricsFile)
	require.Equal(t, LogLevelDebug, cfg.Logging.Level)
	require.Equal(t, LogFormatJSON, cfg.Logging.Format)
	require.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	require.Equal(t, time.Minute, cfg.Watch.Resync)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "docpathfix.yaml")
	writeFile(t, path, "root: from-file\nconcurrency: 2\n")
	t.Setenv(EnvRoot, "from-env")
	t.Setenv(EnvConcurrency, "5")
	t.Setenv(EnvDebounce, "2s")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Root)
	require.Equal(t, 5, cfg.Concurrency)
	require.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestLoad_InvalidEnvConcurrency(t *testing.T) {
	isolate(t)
	t.Setenv(EnvConcurrency, "many")

	_, err := Load("", false)
	require.Error(t, err)
	require.Contains(t, err.Error(), EnvConcurrency)
}

func TestLoad_DotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "DOCPATHFIX_GOOD=../from-dotenv\nDOCPATHFIX_PATTERN=*.xhtml\n")
	t.Setenv(EnvPattern, "*.html")
	// Registered so the value loaded from .env is removed after the test.
	t.Setenv(EnvGood, "")
	require.NoError(t, os.Unsetenv(EnvGood))

	cfg, err := Load("", false)
	require.NoError(t, err)
	require.Equal(t, "../from-dotenv", cfg.Rewrite.Good)
	require.Equal(t, "*.html", cfg.Pattern)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "docpathfix.yaml")
	writeFile(t, path, "root: [unterminated\n")

	_, err := Load(path, true)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "empty root", mutate: func(c *Config) { c.Root = " " }, wantErr: "root must not be empty"},
		{name: "bad pattern", mutate: func(c *Config) { c.Pattern = "[" }, wantErr: "invalid pattern"},
		{name: "empty bad prefix", mutate: func(c *Config) { c.Rewrite.Bad = "" }, wantErr: "rewrite.bad"},
		{name: "good contains bad", mutate: func(c *Config) {
			c.Rewrite.Bad = "../docs"
			c.Rewrite.Good = "../../docs"
		}, wantErr: "must not contain"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Concurrency = 0 }, wantErr: "concurrency"},
		{name: "negative resync", mutate: func(c *Config) { c.Watch.Resync = -time.Second }, wantErr: "resync"},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: "logging.level"},
		{name: "unknown log format", mutate: func(c *Config) { c.Logging.Format = "logfmt" }, wantErr: "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
			require.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}
}

func TestLogLevelSlogMapping(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.SlogLevel().String())
	require.Equal(t, "WARN", NormalizeLogLevel(" Warn ").SlogLevel().String())
	require.Equal(t, "INFO", NormalizeLogLevel("nonsense").SlogLevel().String())
	require.Equal(t, LogFormatJSON, NormalizeLogFormat("JSON"))
}
