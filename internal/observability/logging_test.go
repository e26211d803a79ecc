package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestWithRunID(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-123")

	require.Equal(t, "run-123", GetContext(ctx).RunID)
	require.Equal(t, "run-123", RunIDFrom(ctx))
}

func TestContextValuesAccumulate(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithCommand(ctx, "fix")
	ctx = WithRoot(ctx, "_book/docs")

	lc := GetContext(ctx)
	require.Equal(t, LogContext{RunID: "run-1", Command: "fix", Root: "_book/docs"}, lc)
}

func TestNewRunIDIsUUID(t *testing.T) {
	id := NewRunID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.NotEqual(t, id, NewRunID())
}

func TestInfoContextIncludesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(NewLogger(&buf, slog.LevelInfo, "text"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := WithRoot(WithRunID(context.Background(), "run-9"), "_book/docs")
	InfoContext(ctx, "pass complete", slog.Int("files", 2))
	DebugContext(ctx, "hidden")

	out := buf.String()
	require.Contains(t, out, "run_id=run-9")
	require.Contains(t, out, "root=_book/docs")
	require.Contains(t, out, "files=2")
	require.NotContains(t, out, "hidden")
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelDebug, "json")
	logger.Debug("hello", slog.String("file", "a.html"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &rec))
	require.Equal(t, "hello", rec["msg"])
	require.Equal(t, "a.html", rec["file"])
}
