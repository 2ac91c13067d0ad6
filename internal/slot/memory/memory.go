package memory

import (
	"context"
	"sync"

	"expenses/internal/slot"
)

// Slot keeps documents in process memory. Contents are lost on restart.
type Slot struct {
	mu     sync.Mutex
	data   map[string][]byte
	closed bool
}

var _ slot.Slot = (*Slot)(nil)

func New() *Slot {
	return &Slot{data: map[string][]byte{}}
}

// NewWith seeds the slot, mainly for tests.
func NewWith(seed map[string][]byte) *Slot {
	s := New()
	for k, v := range seed {
		s.data[k] = append([]byte(nil), v...)
	}
	return s
}

func (s *Slot) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, slot.ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Slot) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return slot.ErrClosed
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *Slot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
