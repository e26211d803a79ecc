package commands

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docpathfix/internal/config"
	"git.home.luguber.info/inful/docpathfix/internal/foundation/errors"
	"git.home.luguber.info/inful/docpathfix/internal/logfields"
	"git.home.luguber.info/inful/docpathfix/internal/metrics"
	"git.home.luguber.info/inful/docpathfix/internal/observability"
	"git.home.luguber.info/inful/docpathfix/internal/pathfix"
	"git.home.luguber.info/inful/docpathfix/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Selection `embed:""`

	Debounce    time.Duration `help:"Quiet period before a change triggers a pass (default 500ms)"`
	Resync      time.Duration `help:"Also run a full pass at this interval (0 disables)"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address, e.g. :9464"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, w.Selection)
	if err != nil {
		return err
	}
	w.applyOverrides(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runWatch(ctx, cfg, g.stdout())
}

func (w *WatchCmd) applyOverrides(cfg *config.Config) {
	if w.Debounce > 0 {
		cfg.Watch.Debounce = w.Debounce
	}
	if w.Resync > 0 {
		cfg.Watch.Resync = w.Resync
	}
	if w.MetricsAddr != "" {
		cfg.Watch.MetricsAddr = w.MetricsAddr
	}
}

// runWatch performs an initial pass, then re-runs on changes until ctx is done.
// Only the initial pass is fail-fast for the command; later failures are logged.
func runWatch(ctx context.Context, cfg *config.Config, out io.Writer) error {
	reg, rec := newRecorder(cfg.MetricsFile != "" || cfg.Watch.MetricsAddr != "")

	opts := correctorOptions(cfg, out, rec)
	// Our own writes generate events; skipping clean files ends the cycle.
	opts.SkipUnchanged = true
	corrector, err := pathfix.New(opts)
	if err != nil {
		return err
	}

	pass := func(ctx context.Context) error {
		ctx = runContext(ctx, "watch", cfg)
		_, err := corrector.Run(ctx)
		writeMetrics(ctx, cfg, reg)
		return err
	}
	if err := pass(ctx); err != nil {
		return err
	}

	watcher, err := watch.New(cfg.Root, cfg.Pattern, cfg.Watch.Debounce, pass)
	if err != nil {
		return err
	}

	if cfg.Watch.Resync > 0 {
		resync, err := watch.NewResync(cfg.Watch.Resync, watcher.Trigger)
		if err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "schedule resync").Fatal().Build()
		}
		resync.Start()
		defer func() {
			if err := resync.Stop(); err != nil {
				slog.Warn("Failed to stop resync scheduler", logfields.Error(err))
			}
		}()
	}

	if cfg.Watch.MetricsAddr != "" {
		shutdown, err := serveMetrics(ctx, cfg.Watch.MetricsAddr, reg)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	return watcher.Run(ctx)
}

// serveMetrics binds addr up front so a busy port fails the command instead of
// being logged from a background goroutine.
func serveMetrics(ctx context.Context, addr string, reg *prom.Registry) (func(), error) {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "metrics listener").
			WithContext("addr", addr).
			Fatal().
			Build()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	observability.InfoContext(ctx, "Serving metrics", slog.String("addr", ln.Addr().String()))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Metrics server shutdown failed", logfields.Error(err))
		}
	}, nil
}
