// Package store holds the process-wide expense list and mirrors it to a slot
// after every mutation.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"expenses/internal/core"
	"expenses/internal/slot"
)

// Key is the slot key the list is persisted under.
const Key = "expenses_v1"

// Op names the kind of mutation carried by a Change.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes a persisted mutation. Expense is the record after the
// change, or the removed record for OpDelete.
type Change struct {
	Op      Op
	Expense core.Expense
	Version uint64
}

// ErrNotAList is returned when the slot holds valid JSON that is not an array.
// The value is left in place rather than replaced by an empty list.
var ErrNotAList = errors.New("persisted value is not a list of expenses")

// Subscriber is called once per persisted mutation.
type Subscriber func(Change)

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces uuid.NewString as the id source.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger used for load warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

type Store struct {
	slot   slot.Slot
	newID  func() string
	logger *slog.Logger

	mu      sync.RWMutex
	list    []core.Expense
	version uint64
	// raw is the slot value list was read from or last written as.
	raw []byte

	// notifyMu keeps subscriber calls in mutation order.
	notifyMu sync.Mutex
	subMu    sync.Mutex
	subs     map[int]Subscriber
	nextSub  int
}

// Open loads the persisted list from s. A missing slot value or one that is
// not valid JSON yields an empty store. Valid JSON that is not an array is
// ErrNotAList.
func Open(ctx context.Context, s slot.Slot, opts ...Option) (*Store, error) {
	st := &Store{
		slot:   s,
		newID:  uuid.NewString,
		logger: slog.Default(),
		subs:   make(map[int]Subscriber),
	}
	for _, opt := range opts {
		opt(st)
	}

	raw, list, err := st.load(ctx)
	if err != nil {
		return nil, err
	}
	st.list, st.raw = list, raw
	return st, nil
}

func (s *Store) load(ctx context.Context) ([]byte, []core.Expense, error) {
	raw, ok, err := s.slot.Get(ctx, Key)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", Key, err)
	}
	if !ok || len(raw) == 0 {
		return raw, []core.Expense{}, nil
	}
	if !json.Valid(raw) {
		s.logger.WarnContext(ctx, "Discarding unreadable expense list", "key", Key)
		return raw, []core.Expense{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", Key, ErrNotAList)
	}

	list := make([]core.Expense, 0, len(items))
	for i, item := range items {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var e core.Expense
		if err := json.Unmarshal(item, &e); err != nil {
			s.logger.WarnContext(ctx, "Skipping unreadable expense record", "key", Key, "index", i, "error", err)
			continue
		}
		if e.ID == "" {
			e.ID = s.newID()
		}
		list = append(list, e)
	}
	return raw, list, nil
}

// syncLocked reloads the list when another process changed the slot since it
// was last read or written, so a mutation never overwrites that change.
// Callers hold s.mu.
func (s *Store) syncLocked(ctx context.Context) error {
	raw, list, err := s.load(ctx)
	if err != nil {
		return err
	}
	if bytes.Equal(raw, s.raw) {
		return nil
	}
	s.logger.DebugContext(ctx, "Expense list changed in the slot, reloaded", "key", Key, "records", len(list))
	s.list, s.raw = list, raw
	s.version++
	return nil
}

// Reload picks up changes another process made to the slot. It reports
// whether the list changed; Version increases when it did.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.version
	if err := s.syncLocked(ctx); err != nil {
		return false, err
	}
	return s.version != before, nil
}

// persist writes list to the slot. Callers hold s.mu.
func (s *Store) persist(ctx context.Context, list []core.Expense) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode expenses: %w", err)
	}
	if err := s.slot.Set(ctx, Key, raw); err != nil {
		return fmt.Errorf("persist %s: %w", Key, err)
	}
	s.raw = raw
	return nil
}

// Add appends e with a freshly generated id and persists the list.
func (s *Store) Add(ctx context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	if err := s.syncLocked(ctx); err != nil {
		s.mu.Unlock()
		return core.Expense{}, err
	}
	e.ID = s.newID()
	next := append(slices.Clone(s.list), e)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Expense{}, err
	}
	s.list = next
	s.version++
	s.notifyLocked(Change{Op: OpCreate, Expense: e, Version: s.version})
	return e, nil
}

// Update replaces every field of the record with the given id except the id
// itself. It reports false and persists nothing when id is unknown.
func (s *Store) Update(ctx context.Context, id string, fields core.Expense) (bool, error) {
	s.mu.Lock()
	if err := s.syncLocked(ctx); err != nil {
		s.mu.Unlock()
		return false, err
	}
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	fields.ID = id
	next := slices.Clone(s.list)
	next[i] = fields
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.list = next
	s.version++
	s.notifyLocked(Change{Op: OpUpdate, Expense: fields, Version: s.version})
	return true, nil
}

// Remove deletes the record with the given id. It reports false and leaves
// the slot untouched when id is unknown.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	if err := s.syncLocked(ctx); err != nil {
		s.mu.Unlock()
		return false, err
	}
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	removed := s.list[i]
	next := slices.Delete(slices.Clone(s.list), i, i+1)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.list = next
	s.version++
	s.notifyLocked(Change{Op: OpDelete, Expense: removed, Version: s.version})
	return true, nil
}

// notifyLocked releases s.mu and delivers ch. The notify lock is taken before
// s.mu is released so concurrent mutations reach subscribers in order.
func (s *Store) notifyLocked(ch Change) {
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.subMu.Lock()
	subs := make([]Subscriber, 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(ch)
	}
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.list, func(e core.Expense) bool { return e.ID == id })
}

// All returns a copy of the list in store order.
func (s *Store) All() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.list)
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (core.Expense, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.list[i], true
	}
	return core.Expense{}, false
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.list)
}

// Version increases by one with every persisted mutation and with every
// reload that found the slot changed by another process.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn for every subsequent mutation. Subscribers run after
// the store lock is released, in registration order, and must not mutate the
// store. The returned function removes the subscription.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close drops every subscriber and closes the slot.
func (s *Store) Close() error {
	s.subMu.Lock()
	clear(s.subs)
	s.subMu.Unlock()
	return s.slot.Close()
}
