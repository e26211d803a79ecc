package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpathfix/internal/config"
	"git.home.luguber.info/inful/docpathfix/internal/foundation/errors"
	"git.home.luguber.info/inful/docpathfix/internal/metrics"
	"git.home.luguber.info/inful/docpathfix/internal/observability"
	"git.home.luguber.info/inful/docpathfix/internal/pathfix"
)

// Global carries process-wide state shared by all commands.
type Global struct {
	// Stdout receives user-facing lines; nil means os.Stdout.
	Stdout io.Writer
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (optional)" default:"docpathfix.yaml"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text|json); overrides logging.format"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Fix   FixCmd   `cmd:"" default:"withargs" help:"Rewrite malformed relative paths in generated HTML (default)"`
	Check CheckCmd `cmd:"" help:"Report files that still contain the malformed prefix"`
	Watch WatchCmd `cmd:"" help:"Fix once, then re-run whenever the docs tree changes"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(observability.NewLogger(os.Stderr, level, string(config.NormalizeLogFormat(c.LogFormat))))
	return nil
}

// Selection holds the flags shared by every command that scans the docs tree.
// Unset flags fall back to env, config file and defaults in that order.
type Selection struct {
	Root        string `short:"r" help:"Documentation output directory to scan (default ./_book/docs)"`
	Pattern     string `short:"p" help:"File name pattern matched recursively (default *.html)"`
	Bad         string `help:"Malformed path prefix to replace"`
	Good        string `help:"Replacement path prefix"`
	Concurrency int    `short:"j" help:"Files processed in parallel (default: number of CPUs)"`
}

// loadConfig resolves the effective configuration for a command. An explicit
// --config must exist; the default file name is optional.
func loadConfig(root *CLI, sel Selection) (*config.Config, error) {
	required := root.Config != "" && root.Config != config.DefaultConfigFile
	cfg, err := config.Load(root.Config, required)
	if err != nil {
		return nil, asConfigError(err, root.Config)
	}

	if sel.Root != "" {
		cfg.Root = sel.Root
	}
	if sel.Pattern != "" {
		cfg.Pattern = sel.Pattern
	}
	if sel.Bad != "" {
		cfg.Rewrite.Bad = sel.Bad
	}
	if sel.Good != "" {
		cfg.Rewrite.Good = sel.Good
	}
	if sel.Concurrency > 0 {
		cfg.Concurrency = sel.Concurrency
	}
	if err := config.Validate(cfg); err != nil {
		return nil, asConfigError(err, root.Config)
	}

	configureLogging(root, cfg)
	return cfg, nil
}

func asConfigError(err error, path string) error {
	if errors.IsClassified(err) {
		return err
	}
	return errors.WrapError(err, errors.CategoryConfig, "load configuration").
		WithContext("path", path).
		Fatal().
		Build()
}

// configureLogging applies the logging section of the file config unless a
// flag already decided it.
func configureLogging(root *CLI, cfg *config.Config) {
	level := cfg.Logging.Level.SlogLevel()
	if root.Verbose {
		level = slog.LevelDebug
	}
	format := cfg.Logging.Format
	if root.LogFormat != "" {
		format = config.NormalizeLogFormat(root.LogFormat)
	}
	slog.SetDefault(observability.NewLogger(os.Stderr, level, string(format)))
}

func correctorOptions(cfg *config.Config, out io.Writer, rec metrics.Recorder) pathfix.Options {
	return pathfix.Options{
		Root:        cfg.Root,
		Pattern:     cfg.Pattern,
		Rule:        pathfix.Rule{Bad: cfg.Rewrite.Bad, Good: cfg.Rewrite.Good},
		Concurrency: cfg.Concurrency,
		Out:         out,
		Recorder:    rec,
	}
}
