// Package view projects the expense list into the rows, options and chart
// geometry the templates render.
package view

import (
	"cmp"
	"html/template"
	"slices"
	"strings"
	"unicode/utf8"

	"expenses/internal/core"
)

// EmptyMessage is shown instead of rows when there are no records.
const EmptyMessage = "No expenses yet — add one from the left."

// Row is one rendered list entry. Title and Category are already escaped.
type Row struct {
	ID       string
	Badge    string
	Title    template.HTML
	Date     string
	Category template.HTML
	Amount   string
	Color    template.CSS
}

// Options controls how rows are formatted.
type Options struct {
	Currency   string
	DateLayout string
}

var categoryColors = map[string]template.CSS{
	"Food":      "linear-gradient(135deg,var(--accent2),var(--accent1))",
	"Transport": "linear-gradient(135deg,var(--accent3),var(--accent1))",
	"Shopping":  "linear-gradient(135deg,#ffe1f0,#cfeef7)",
	"Bills":     "linear-gradient(135deg,#fff2d6,#d5f3e3)",
	"Health":    "linear-gradient(135deg,#ffe6f0,#fff7d9)",
}

const fallbackColor template.CSS = "linear-gradient(135deg,var(--accent1),var(--accent2))"

// CategoryColor returns the badge background for a category.
func CategoryColor(category string) template.CSS {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return fallbackColor
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML neutralizes &, < and > so free text cannot become markup.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Badge returns the first character of the category, or X when it is empty.
func Badge(category string) string {
	r, size := utf8.DecodeRuneInString(category)
	if size == 0 || r == utf8.RuneError {
		return "X"
	}
	return string(r)
}

// SortByDateDesc returns a copy of list, newest first. Records sharing a date
// keep their store order.
func SortByDateDesc(list []core.Expense) []core.Expense {
	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b core.Expense) int {
		return cmp.Compare(b.Date.Unix(), a.Date.Unix())
	})
	return sorted
}

// Rows renders list newest first.
func Rows(list []core.Expense, opts Options) []Row {
	if opts.Currency == "" {
		opts.Currency = core.DefaultCurrency
	}
	if opts.DateLayout == "" {
		opts.DateLayout = core.DateLayout
	}

	sorted := SortByDateDesc(list)
	rows := make([]Row, 0, len(sorted))
	for _, e := range sorted {
		var date string
		if !e.Date.IsZero() {
			date = e.Date.Format(opts.DateLayout)
		}
		rows = append(rows, Row{
			ID:       e.ID,
			Badge:    Badge(e.Category),
			Title:    template.HTML(EscapeHTML(e.Title)),
			Date:     date,
			Category: template.HTML(EscapeHTML(e.Category)),
			Amount:   core.FormatAmount(e.Amount.Value, opts.Currency),
			Color:    CategoryColor(e.Category),
		})
	}
	return rows
}
