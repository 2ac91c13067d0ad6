package sheets

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"expenses/internal/core"
	"expenses/internal/export"
)

const writeTimeout = 30 * time.Second

// Mirror rewrites a sheet with the header and every record after each
// change. Writes run on one goroutine; when writes fall behind only the
// newest snapshot is written.
type Mirror struct {
	w      RowsWriter
	sheet  string
	logger *slog.Logger

	pending chan [][]string
	once    sync.Once
	done    chan struct{}
	stop    context.CancelFunc
}

func NewMirror(w RowsWriter, sheet string, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Mirror{
		w:       w,
		sheet:   sheet,
		logger:  logger,
		pending: make(chan [][]string, 1),
		done:    make(chan struct{}),
		stop:    cancel,
	}
	go m.run(ctx)
	return m
}

// Snapshot builds the header and the rows for list in store order.
func Snapshot(list []core.Expense) [][]string {
	return append([][]string{export.Header}, export.Rows(list)...)
}

// Enqueue schedules list to be written, replacing any snapshot still waiting.
func (m *Mirror) Enqueue(list []core.Expense) {
	rows := Snapshot(list)
	for {
		select {
		case m.pending <- rows:
			return
		default:
		}
		select {
		case <-m.pending:
		default:
		}
	}
}

func (m *Mirror) run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.flush()
			return
		case rows := <-m.pending:
			m.write(rows)
		}
	}
}

// flush writes a snapshot still waiting when the mirror is closed.
func (m *Mirror) flush() {
	select {
	case rows := <-m.pending:
		m.write(rows)
	default:
	}
}

// write is not tied to the run context so a write in flight at Close
// completes.
func (m *Mirror) write(rows [][]string) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := m.w.ReplaceRows(ctx, m.sheet, rows); err != nil {
		m.logger.ErrorContext(ctx, "Sheets mirror write failed", "sheet", m.sheet, "rows", len(rows), "error", err)
		return
	}
	m.logger.DebugContext(ctx, "Sheets mirror updated", "sheet", m.sheet, "rows", len(rows))
}

// Close stops the writer after flushing the pending snapshot.
func (m *Mirror) Close() error {
	m.once.Do(func() {
		m.stop()
		<-m.done
	})
	return nil
}
