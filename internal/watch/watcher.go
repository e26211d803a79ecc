// Package watch re-runs the path corrector while the documentation tree changes.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docpathfix/internal/foundation/errors"
	"git.home.luguber.info/inful/docpathfix/internal/logfields"
)

// RunFunc performs one corrector pass.
type RunFunc func(ctx context.Context) error

// Watcher monitors a documentation tree and triggers debounced passes.
type Watcher struct {
	root     string
	pattern  string
	debounce time.Duration
	run      RunFunc
	fsw      *fsnotify.Watcher
	trigger  chan struct{}
	passes   atomic.Int64
}

// New creates a watcher for root. The tree must exist.
func New(root, pattern string, debounce time.Duration, run RunFunc) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.DiscoveryError(root, err).Build()
	}
	if !info.IsDir() {
		return nil, errors.DiscoveryError(root, fs.ErrInvalid).
			WithContext("reason", "root is not a directory").
			Build()
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, errors.ConfigError("invalid pattern").WithContext("pattern", pattern).Build()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Fatal().Build()
	}
	w := &Watcher{
		root:     root,
		pattern:  pattern,
		debounce: debounce,
		run:      run,
		fsw:      fsw,
		trigger:  make(chan struct{}, 1),
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.DiscoveryError(path, err).Build()
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "failed to watch directory").
				Fatal().
				WithContext("path", path).
				Build()
		}
		return nil
	})
}

// Trigger requests a pass without waiting for file events. Requests made while
// one is already pending are coalesced.
func (w *Watcher) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Passes returns how many passes have completed.
func (w *Watcher) Passes() int64 {
	return w.passes.Load()
}

// Run processes events until ctx is done. Passes run on this goroutine, so they
// never overlap. A failing pass is logged and does not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fsw.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	slog.Info("Watching documentation tree",
		logfields.Root(w.root),
		logfields.Pattern(w.pattern),
		slog.Duration("debounce", w.debounce))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Documentation change detected", logfields.File(event.Name), logfields.Event(event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))

		case <-fire:
			fire = nil
			w.pass(ctx)

		case <-w.trigger:
			w.pass(ctx)
		}
	}
}

// relevant reports whether event should schedule a pass. New directories are
// added to the watch set and always schedule one, since files may have landed
// in them before the watch was in place.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.File(event.Name), logfields.Error(err))
			}
			return true
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	ok, _ := filepath.Match(w.pattern, filepath.Base(event.Name))
	return ok
}

func (w *Watcher) pass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := w.run(ctx); err != nil {
		slog.Error("Path correction pass failed", logfields.Error(err))
	}
	n := w.passes.Add(1)
	slog.Debug("Watch pass finished",
		slog.Int64("pass", n),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
}
