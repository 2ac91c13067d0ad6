package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentStore, Output: &buf})

	logger.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "component=store")
	assert.Contains(t, buf.String(), "k=v")

	buf.Reset()
	logger.WithComponent(ComponentHTTP).Debug("again")
	assert.Contains(t, buf.String(), "component=http")
	assert.NotContains(t, buf.String(), "component=store")
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Output: &buf})
	sl := NewStructuredLogger(logger)
	ctx := NewContext(context.Background(), logger)

	sl.LogExpenseChanged(ctx, OpCreate, core.Expense{ID: "abc", Title: "Coffee"}, 3)
	assert.Contains(t, buf.String(), "expense_id=abc")
	assert.Contains(t, buf.String(), "version=3")

	buf.Reset()
	r := httptest.NewRequest(http.MethodGet, "/ui/list", nil)
	sl.LogHTTPEnd(ctx, r, http.StatusInternalServerError, 12, "127.0.0.1")
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "status_code=500")

	buf.Reset()
	sl.LogError(ctx, "write failed", errors.New("boom"), ComponentSheets, OpUpdate, nil)
	assert.Contains(t, buf.String(), "error=boom")
	assert.Contains(t, buf.String(), "component=sheets")
}

func TestFromContextFallsBack(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Equal(t, ComponentApp, logger.Component())
}
