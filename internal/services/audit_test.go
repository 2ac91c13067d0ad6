package services

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/amqp"
	"expenses/internal/core"
	applog "expenses/internal/log"
)

func TestAuditorLogsAndDetectsGaps(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentAudit, Output: &buf})
	a := NewAuditor(logger)

	e := core.Expense{ID: "a1", Title: "Coffee", Date: core.NewDate(2024, 3, 1), Category: "Food"}
	ctx := context.Background()
	require.NoError(t, a.Handle(ctx, amqp.NewChangeMessage("create", e, 1)))
	require.NoError(t, a.Handle(ctx, amqp.NewChangeMessage("update", e, 2)))
	require.NoError(t, a.Handle(ctx, amqp.NewChangeMessage("delete", e, 5)))

	seen, gaps := a.Stats()
	assert.Equal(t, 3, seen)
	assert.Equal(t, 1, gaps)

	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, `msg="Expense changed"`))
	assert.Contains(t, out, "expected_version=3")
	assert.Contains(t, out, "component=audit")
	assert.Contains(t, out, "expense_id=a1")
	assert.Contains(t, out, "operation=delete")
}

func TestAuditorIgnoresReplays(t *testing.T) {
	a := NewAuditor(applog.New(applog.Config{Output: &bytes.Buffer{}}))
	e := core.Expense{ID: "a1"}
	ctx := context.Background()
	require.NoError(t, a.Handle(ctx, amqp.NewChangeMessage("create", e, 4)))
	require.NoError(t, a.Handle(ctx, amqp.NewChangeMessage("create", e, 4)))
	require.NoError(t, a.Handle(ctx, amqp.NewChangeMessage("update", e, 5)))

	_, gaps := a.Stats()
	assert.Equal(t, 0, gaps)
}
