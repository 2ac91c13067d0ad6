// Package memory is an in-process sheets.RowsWriter, used when no spreadsheet
// is configured in tests.
package memory

import (
	"context"
	"sync"

	"expenses/internal/sheets"
)

type Sheet struct {
	mu     sync.Mutex
	sheets map[string][][]string
	writes int
	err    error
}

var _ sheets.RowsWriter = (*Sheet)(nil)

func New() *Sheet {
	return &Sheet{sheets: make(map[string][][]string)}
}

// FailWith makes every following write return err. nil restores writes.
func (s *Sheet) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Sheet) ReplaceRows(_ context.Context, sheet string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	s.sheets[sheet] = cp
	s.writes++
	return nil
}

// Rows returns the current content of sheet.
func (s *Sheet) Rows(sheet string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheets[sheet]
}

// Writes counts successful ReplaceRows calls.
func (s *Sheet) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
