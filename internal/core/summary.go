package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the figures shown above the list.
type Summary struct {
	Total   decimal.Decimal
	Monthly decimal.Decimal
	Count   int
}

// Total sums every amount. Amounts that failed to decode are already zero.
func Total(list []Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range list {
		sum = sum.Add(e.Amount.Value)
	}
	return sum
}

// MonthlyTotal sums the amounts dated in ref's calendar year and month.
func MonthlyTotal(list []Expense, ref time.Time) decimal.Decimal {
	key := MonthOf(ref)
	sum := decimal.Zero
	for _, e := range list {
		if e.Date.IsZero() || MonthOf(e.Date.Time) != key {
			continue
		}
		sum = sum.Add(e.Amount.Value)
	}
	return sum
}

// Count returns the number of records.
func Count(list []Expense) int {
	return len(list)
}

// Summarize computes all three figures for the month containing ref.
func Summarize(list []Expense, ref time.Time) Summary {
	return Summary{
		Total:   Total(list),
		Monthly: MonthlyTotal(list, ref),
		Count:   Count(list),
	}
}
