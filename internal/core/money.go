// Package core provides the expense record, amount parsing and the
// aggregations shared by every surface of the tracker.
//
// This file contains functions for parsing amounts typed into the form and
// formatting them for display in a configured currency.
package core

import (
	"math"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the rupee, shown as the ₹ prefix.
const DefaultCurrency = gomoney.INR

// MaxAmount is the largest amount a single record may carry.
var MaxAmount = decimal.New(1, 12)

// Amounts keep at most this many decimal places. Bounding the exponent
// before comparing keeps huge exponents from being expanded.
const (
	maxExponent = 12
	minExponent = -18
)

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// ParseAmount converts a decimal string typed by the user into Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, exponent
// notation and surrounding whitespace. The value must be finite, not negative
// and at most MaxAmount; zero is allowed.
//
// Examples:
//
//	ParseAmount("3.50")  -> 3.5, nil
//	ParseAmount("3,50")  -> 3.5, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
//	ParseAmount("-1")    -> 0, ErrNegativeAmount
//	ParseAmount("1e20")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !InRange(d) {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Value: d}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// InRange reports whether |d| is at most MaxAmount and d has no more than 18
// decimal places. It never expands d's exponent.
func InRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > maxExponent || exp < minExponent {
		return false
	}
	return d.Abs().LessThanOrEqual(MaxAmount)
}

// IsKnownCurrency reports whether code is an ISO 4217 code go-money can format.
func IsKnownCurrency(code string) bool {
	return gomoney.GetCurrency(code) != nil
}

// FormatAmount renders d with the currency symbol, digit grouping and the
// currency's minor units (two decimals for INR, EUR, USD).
func FormatAmount(d decimal.Decimal, currency string) string {
	cur := gomoney.GetCurrency(currency)
	if cur == nil {
		cur = gomoney.GetCurrency(DefaultCurrency)
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0)
	if minor.Abs().GreaterThan(maxMinorUnits) {
		return formatLarge(d, cur)
	}
	return gomoney.New(minor.IntPart(), cur.Code).Display()
}

// formatLarge renders amounts whose minor units do not fit an int64 the way
// go-money would: grouped digits, the currency's separators and template.
func formatLarge(d decimal.Decimal, cur *gomoney.Currency) string {
	fixed := d.Abs().StringFixed(int32(cur.Fraction))
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(cur.Thousand)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(cur.Decimal)
		b.WriteString(frac)
	}

	out := strings.Replace(cur.Template, "1", b.String(), 1)
	out = strings.Replace(out, "$", cur.Grapheme, 1)
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}
