// Package form turns raw form input into store mutations and tracks which
// record, if any, is being edited.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"expenses/internal/core"
	"expenses/internal/store"
)

// Input is the form state exactly as typed.
type Input struct {
	Title    string
	Amount   string
	Date     string
	Category string
	Notes    string
}

// State is a snapshot of the form for rendering.
type State struct {
	Input     Input
	EditingID string
}

// Editing reports whether a submit will update rather than create.
func (s State) Editing() bool { return s.EditingID != "" }

// Result reports what a successful Submit did.
type Result struct {
	Expense core.Expense
	Created bool
	// Missing is set when the edited record vanished before submit.
	Missing bool
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

type Option func(*Controller)

// WithClock sets the source of "today" used for the default date.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithDefaultCategory overrides core.DefaultCategory.
func WithDefaultCategory(category string) Option {
	return func(c *Controller) { c.defaultCategory = category }
}

type Controller struct {
	store           *store.Store
	now             func() time.Time
	defaultCategory string

	mu        sync.Mutex
	input     Input
	editingID string
}

func NewController(st *store.Store, opts ...Option) *Controller {
	c := &Controller{
		store:           st,
		now:             time.Now,
		defaultCategory: core.DefaultCategory,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.input = c.defaults()
	return c
}

func (c *Controller) defaults() Input {
	return Input{
		Date:     c.now().Format(core.DateLayout),
		Category: c.defaultCategory,
	}
}

// Validate checks in and builds the record it describes. Every failing field
// is reported, in form order.
func (c *Controller) Validate(in Input) (core.Expense, error) {
	var fields []string
	var errs []error

	title := strings.TrimSpace(in.Title)
	if title == "" {
		fields = append(fields, "title")
		errs = append(errs, core.ErrEmptyTitle)
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		fields = append(fields, "amount")
		errs = append(errs, err)
	}

	date, err := core.ParseDate(in.Date)
	if err != nil {
		fields = append(fields, "date")
		errs = append(errs, err)
	}

	if len(fields) > 0 {
		return core.Expense{}, &ValidationError{Fields: fields, Err: errors.Join(errs...)}
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = c.defaultCategory
	}
	return core.Expense{
		Title:    title,
		Amount:   amount,
		Date:     date,
		Category: category,
		Notes:    strings.TrimSpace(in.Notes),
	}.Normalize(), nil
}

// Submit validates in and creates a record, or updates the record being
// edited. On success the form is reset. On validation failure the typed
// input is kept so it can be shown again, and the store is not touched.
func (c *Controller) Submit(ctx context.Context, in Input) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, err := c.Validate(in)
	if err != nil {
		c.input = in
		return Result{}, err
	}

	var res Result
	if c.editingID == "" {
		added, err := c.store.Add(ctx, e)
		if err != nil {
			return Result{}, err
		}
		res = Result{Expense: added, Created: true}
	} else {
		e.ID = c.editingID
		ok, err := c.store.Update(ctx, c.editingID, e)
		if err != nil {
			return Result{}, err
		}
		res = Result{Expense: e, Missing: !ok}
	}

	c.resetLocked()
	return res, nil
}

// BeginEdit loads the record into the form. It reports false and changes
// nothing when id is unknown.
func (c *Controller) BeginEdit(id string) bool {
	e, ok := c.store.Get(id)
	if !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.editingID = e.ID
	c.input = Input{
		Title:    e.Title,
		Amount:   e.Amount.String(),
		Date:     e.Date.String(),
		Category: e.Category,
		Notes:    e.Notes,
	}
	return true
}

// Cancel abandons the current edit without touching the store.
func (c *Controller) Cancel() {
	c.Clear()
}

// Clear resets the inputs to their defaults and forgets the editing id.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Forget resets the form if it is editing id, used after a delete. It
// reports whether the form was reset.
func (c *Controller) Forget(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" || c.editingID != id {
		return false
	}
	c.resetLocked()
	return true
}

func (c *Controller) resetLocked() {
	c.input = c.defaults()
	c.editingID = ""
}

// State returns the current inputs and editing id.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Input: c.input, EditingID: c.editingID}
}
