package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the persisted and form representation of a Date.
const DateLayout = "2006-01-02"

// DefaultCategory is used when a record is saved without a category.
const DefaultCategory = "Food"

// Categories lists the categories offered by the form. Free text is accepted too.
var Categories = []string{"Food", "Transport", "Shopping", "Bills", "Health"}

type (
	// Date is a calendar day without a time component.
	Date struct {
		time.Time
	}

	// Money is a non-negative decimal amount.
	Money struct {
		Value decimal.Decimal
	}

	// Expense is the only persisted entity.
	Expense struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Amount   Money  `json:"amount"`
		Date     Date   `json:"date"`
		Category string `json:"category"`
		Notes    string `json:"notes"`
	}
)

var (
	ErrEmptyTitle     = errors.New("empty title")
	ErrEmptyDate      = errors.New("empty date")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("negative amount")
)

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrEmptyDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String returns the YYYY-MM-DD form, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts YYYY-MM-DD and timestamps starting with it. Anything
// else decodes to the zero date so one bad record does not void the store.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*d = Date{}
		return nil
	}
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Value.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

func (m Money) String() string {
	return m.Value.String()
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Value.String()), nil
}

// UnmarshalJSON is lenient: null, strings that are not numbers, other
// non-numeric values and amounts outside InRange decode to zero.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil || !InRange(d) {
		m.Value = decimal.Zero
		return nil
	}
	m.Value = d
	return nil
}

// UnmarshalJSON decodes a record field by field so one badly typed field does
// not void the record. String fields given as numbers or booleans keep their
// literal text; objects, arrays and null decode to "". Anything other than a
// JSON object is an error.
func (e *Expense) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if fields == nil {
		return nil
	}

	out := Expense{
		ID:       lenientString(fields["id"]),
		Title:    lenientString(fields["title"]),
		Category: lenientString(fields["category"]),
		Notes:    lenientString(fields["notes"]),
	}
	if raw, ok := fields["amount"]; ok {
		_ = out.Amount.UnmarshalJSON(raw)
	}
	if raw, ok := fields["date"]; ok {
		_ = out.Date.UnmarshalJSON(raw)
	}
	*e = out
	return nil
}

func lenientString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case c == 't' || c == 'f' || c == '-' || (c >= '0' && c <= '9'):
		return string(raw)
	}
	return ""
}

// Validate checks a record before it is persisted.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if e.Date.IsZero() {
		return ErrEmptyDate
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// Normalize trims free-text fields and applies the default category.
func (e Expense) Normalize() Expense {
	e.Title = strings.TrimSpace(e.Title)
	e.Notes = strings.TrimSpace(e.Notes)
	e.Category = strings.TrimSpace(e.Category)
	if e.Category == "" {
		e.Category = DefaultCategory
	}
	return e
}
