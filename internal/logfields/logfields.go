package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID        = "run_id"
	KeyFile         = "file"
	KeyRoot         = "root"
	KeyPattern      = "pattern"
	KeyFiles        = "files"
	KeyReplacements = "replacements"
	KeyConcurrency  = "concurrency"
	KeyDurationMS   = "duration_ms"
	KeyEvent        = "event"
	KeyError        = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func File(path string) slog.Attr      { return slog.String(KeyFile, path) }
func Root(path string) slog.Attr      { return slog.String(KeyRoot, path) }
func Pattern(p string) slog.Attr      { return slog.String(KeyPattern, p) }
func Files(n int) slog.Attr           { return slog.Int(KeyFiles, n) }
func Replacements(n int) slog.Attr    { return slog.Int(KeyReplacements, n) }
func Concurrency(n int) slog.Attr     { return slog.Int(KeyConcurrency, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Event(op string) slog.Attr       { return slog.String(KeyEvent, op) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
