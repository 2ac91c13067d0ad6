package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func exp(title, amount, date string) Expense {
	d, _ := ParseDate(date)
	return Expense{Title: title, Amount: Money{Value: decimal.RequireFromString(amount)}, Date: d, Category: DefaultCategory}
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name string
		list []Expense
		want string
	}{
		{"empty", nil, "0"},
		{"one", []Expense{exp("a", "3.5", "2024-03-01")}, "3.5"},
		{"duplicates", []Expense{exp("a", "2", "2024-03-01"), exp("b", "2", "2024-03-01"), exp("c", "2", "2024-01-01")}, "6"},
		{"zero amount record", []Expense{exp("a", "0", "2024-03-01"), {Title: "broken"}}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, decimal.RequireFromString(tt.want).Equal(Total(tt.list)), "total = %s", Total(tt.list))
		})
	}
}

func TestSummarizeCoffeeAndBus(t *testing.T) {
	list := []Expense{
		exp("Coffee", "3.50", "2024-03-01"),
		{Title: "Bus", Amount: Money{Value: decimal.RequireFromString("2.00")}, Date: NewDate(2024, time.March, 2), Category: "Transport"},
	}
	s := Summarize(list, time.Date(2024, time.March, 20, 12, 0, 0, 0, time.Local))
	assert.Equal(t, "5.5", s.Total.String())
	assert.Equal(t, "5.5", s.Monthly.String())
	assert.Equal(t, 2, s.Count)
}

func TestMonthlyTotal(t *testing.T) {
	list := []Expense{
		exp("a", "1", "2024-03-01"),
		exp("b", "2", "2024-03-31"),
		exp("c", "4", "2023-03-15"),
		exp("d", "8", "2024-04-01"),
		{Title: "no date", Amount: Money{Value: decimal.NewFromInt(16)}},
	}
	got := MonthlyTotal(list, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "3", got.String())
}

func TestTrailingMonths(t *testing.T) {
	keys := TrailingMonths(time.Date(2024, time.February, 29, 15, 0, 0, 0, time.UTC), 6)
	want := []string{"2023-09", "2023-10", "2023-11", "2023-12", "2024-01", "2024-02"}
	got := make([]string, len(keys))
	for i, k := range keys {
		got[i] = k.String()
	}
	assert.Equal(t, want, got)
	assert.Equal(t, "Sep 2023", keys[0].Label())
	assert.Equal(t, "Feb", keys[5].Short())
}

func TestParseMonthKey(t *testing.T) {
	k, err := ParseMonthKey("2024-03")
	assert.NoError(t, err)
	assert.Equal(t, MonthKey{Year: 2024, Month: time.March}, k)
	_, err = ParseMonthKey("all")
	assert.Error(t, err)
}
