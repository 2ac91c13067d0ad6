package services

import (
	"context"
	"sync"

	"expenses/internal/amqp"
	applog "expenses/internal/log"
)

// Auditor logs every change event a server publishes. Versions grow by one
// per mutation, so a jump means events were lost and is reported.
type Auditor struct {
	logger *applog.Logger

	mu   sync.Mutex
	last uint64
	seen int
	gaps int
}

func NewAuditor(logger *applog.Logger) *Auditor {
	return &Auditor{logger: logger}
}

// Handle has the signature expected by amqp.Client.ConsumeChanges.
func (a *Auditor) Handle(ctx context.Context, msg *amqp.ChangeMessage) error {
	a.mu.Lock()
	prev := a.last
	a.seen++
	gap := prev != 0 && msg.Version > prev+1
	if gap {
		a.gaps++
	}
	if msg.Version > a.last {
		a.last = msg.Version
	}
	a.mu.Unlock()

	fields := applog.NewFields().
		WithOperation(msg.Op).
		WithExpense(msg.Expense)
	fields[applog.FieldVersion] = msg.Version

	if gap {
		a.logger.WarnContext(ctx, "Expense change events missing",
			"expected_version", prev+1, applog.FieldVersion, msg.Version)
	}
	a.logger.InfoContext(ctx, "Expense changed", fields.ToSlice()...)
	return nil
}

// Stats returns the number of events seen and the number of version gaps.
func (a *Auditor) Stats() (seen, gaps int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seen, a.gaps
}
