package services

import (
	"context"
	"log/slog"
	"time"

	"expenses/internal/amqp"
	"expenses/internal/core"
	"expenses/internal/store"
)

const publishTimeout = 5 * time.Second

type (
	// Publisher announces changes to other processes.
	Publisher interface {
		PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
	}

	// Mirror receives the full list after each change.
	Mirror interface {
		Enqueue(list []core.Expense)
	}

	// Recorder tracks mutation counts.
	Recorder interface {
		ObserveMutation(op string, stored int)
	}

	// Purger drops derived data that depends on the list.
	Purger interface {
		Purge()
	}
)

type Option func(*ChangeService)

func WithPublisher(p Publisher) Option { return func(s *ChangeService) { s.publisher = p } }
func WithMirror(m Mirror) Option       { return func(s *ChangeService) { s.mirror = m } }
func WithRecorder(r Recorder) Option   { return func(s *ChangeService) { s.recorder = r } }
func WithPurger(p Purger) Option       { return func(s *ChangeService) { s.purgers = append(s.purgers, p) } }

func WithLogger(l *slog.Logger) Option { return func(s *ChangeService) { s.logger = l } }

// ChangeService fans store mutations out to the cache, metrics, the AMQP
// publisher and the Sheets mirror. Failures downstream are logged and never
// fail the mutation, which is already persisted.
type ChangeService struct {
	store     *store.Store
	publisher Publisher
	mirror    Mirror
	recorder  Recorder
	purgers   []Purger
	logger    *slog.Logger

	unsubscribe func()
}

func NewChangeService(st *store.Store, opts ...Option) *ChangeService {
	s := &ChangeService{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = st.Subscribe(s.handle)
	return s
}

func (s *ChangeService) handle(ch store.Change) {
	for _, p := range s.purgers {
		p.Purge()
	}

	if s.recorder != nil {
		s.recorder.ObserveMutation(string(ch.Op), s.store.Len())
	}

	if s.mirror != nil {
		s.mirror.Enqueue(s.store.All())
	}

	s.publish(ch)
}

func (s *ChangeService) publish(ch store.Change) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	msg := amqp.NewChangeMessage(string(ch.Op), ch.Expense, ch.Version)
	if err := s.publisher.PublishChange(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense change",
			"op", ch.Op, "id", ch.Expense.ID, "version", ch.Version, "error", err)
	}
}

// Close stops listening to the store.
func (s *ChangeService) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	return nil
}
