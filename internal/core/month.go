package core

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month t falls in, in t's own location.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey parses the YYYY-MM form produced by MonthKey.String.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthKey{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// String returns YYYY-MM.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Label returns a short human label such as "Mar 2024".
func (k MonthKey) Label() string {
	return k.Start().Format("Jan 2006")
}

// Short returns the month abbreviation, e.g. "Mar".
func (k MonthKey) Short() string {
	return k.Start().Format("Jan")
}

// Start returns midnight UTC of the first day of the month.
func (k MonthKey) Start() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts the key by n calendar months.
func (k MonthKey) AddMonths(n int) MonthKey {
	return MonthOf(now.With(k.Start()).BeginningOfMonth().AddDate(0, n, 0))
}

// TrailingMonths returns the count months ending at end's month, oldest first.
func TrailingMonths(end time.Time, count int) []MonthKey {
	last := MonthOf(now.With(end).BeginningOfMonth())
	keys := make([]MonthKey, 0, count)
	for i := count - 1; i >= 0; i-- {
		keys = append(keys, last.AddMonths(-i))
	}
	return keys
}
