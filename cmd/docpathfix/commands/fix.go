package commands

import (
	"context"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docpathfix/internal/config"
	"git.home.luguber.info/inful/docpathfix/internal/logfields"
	"git.home.luguber.info/inful/docpathfix/internal/metrics"
	"git.home.luguber.info/inful/docpathfix/internal/observability"
	"git.home.luguber.info/inful/docpathfix/internal/pathfix"
)

// FixCmd implements the 'fix' command. It is also what runs with no arguments.
type FixCmd struct {
	Selection `embed:""`

	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this path after the pass"`
}

func (f *FixCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, f.Selection)
	if err != nil {
		return err
	}
	if f.MetricsFile != "" {
		cfg.MetricsFile = f.MetricsFile
	}

	reg, rec := newRecorder(cfg.MetricsFile != "")
	corrector, err := pathfix.New(correctorOptions(cfg, g.stdout(), rec))
	if err != nil {
		return err
	}

	ctx := runContext(context.Background(), "fix", cfg)
	_, runErr := corrector.Run(ctx)
	writeMetrics(ctx, cfg, reg)
	return runErr
}

// newRecorder returns a Prometheus-backed recorder when export is enabled.
func newRecorder(enabled bool) (*prom.Registry, metrics.Recorder) {
	if !enabled {
		return nil, metrics.NoopRecorder{}
	}
	reg := prom.NewRegistry()
	return reg, metrics.NewPrometheusRecorder(reg)
}

// writeMetrics exports the registry even after a failed pass so the failure
// outcome is visible to the collector.
func writeMetrics(ctx context.Context, cfg *config.Config, reg *prom.Registry) {
	if reg == nil || cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile, reg); err != nil {
		observability.WarnContext(ctx, "Failed to write metrics textfile",
			slog.String("path", cfg.MetricsFile),
			logfields.Error(err))
		return
	}
	observability.DebugContext(ctx, "Metrics textfile written", slog.String("path", cfg.MetricsFile))
}

func runContext(ctx context.Context, command string, cfg *config.Config) context.Context {
	ctx = observability.WithRunID(ctx, observability.NewRunID())
	ctx = observability.WithCommand(ctx, command)
	return observability.WithRoot(ctx, cfg.Root)
}
