package view

import (
	"time"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

// Chart geometry, in CSS pixels.
const (
	ChartMonths   = 6
	ChartPadding  = 28.0
	ChartDrawH    = 140.0
	ChartHeight   = 180.0
	barFill       = 0.7
	barRadius     = 8.0
	minChartWidth = 120
	maxChartWidth = 4000
	// DefaultChartWidth is used when the client did not report its width.
	DefaultChartWidth = 600
)

// MinScale keeps bars stable when every bucket is close to zero.
var MinScale = decimal.NewFromInt(10)

type Bucket struct {
	Month core.MonthKey
	Value decimal.Decimal
}

type Bar struct {
	X, Y, Width, Height float64
	Radius              float64
	Label               string
	LabelY              float64
	Value               string
	ValueY              float64
}

// ChartLayout is everything the SVG template needs.
type ChartLayout struct {
	Width  float64
	Height float64
	Bars   []Bar
}

// Bin sums amounts into the six calendar months ending at end's month, oldest
// first. Records outside the window are ignored.
func Bin(list []core.Expense, end time.Time) []Bucket {
	keys := core.TrailingMonths(end, ChartMonths)
	buckets := make([]Bucket, len(keys))
	index := make(map[core.MonthKey]int, len(keys))
	for i, k := range keys {
		buckets[i] = Bucket{Month: k, Value: decimal.Zero}
		index[k] = i
	}
	for _, e := range list {
		if e.Date.IsZero() {
			continue
		}
		if i, ok := index[core.MonthOf(e.Date.Time)]; ok {
			buckets[i].Value = buckets[i].Value.Add(e.Amount.Value)
		}
	}
	return buckets
}

// Scale is the largest bucket value, never less than MinScale.
func Scale(buckets []Bucket) decimal.Decimal {
	peak := MinScale
	for _, b := range buckets {
		if b.Value.GreaterThan(peak) {
			peak = b.Value
		}
	}
	return peak
}

// ClampWidth bounds a client reported width. Zero or negative means unknown.
func ClampWidth(width int) int {
	switch {
	case width <= 0:
		return DefaultChartWidth
	case width < minChartWidth:
		return minChartWidth
	case width > maxChartWidth:
		return maxChartWidth
	}
	return width
}

// Layout places one bar per bucket across width pixels. format renders the
// value label above each bar.
func Layout(buckets []Bucket, width int, format func(decimal.Decimal) string) ChartLayout {
	w := float64(ClampWidth(width))
	out := ChartLayout{Width: w, Height: ChartHeight}
	if len(buckets) == 0 {
		return out
	}

	peak := Scale(buckets)
	slot := (w - ChartPadding*2) / float64(len(buckets))
	barW := slot * barFill
	out.Bars = make([]Bar, 0, len(buckets))
	for i, b := range buckets {
		ratio, _ := b.Value.Div(peak).Float64()
		ratio = max(ratio, 0)
		height := ratio * (ChartDrawH - 40)
		y := ChartDrawH - height + 10
		out.Bars = append(out.Bars, Bar{
			X:      ChartPadding + float64(i)*slot + (slot-barW)/2,
			Y:      y,
			Width:  barW,
			Height: height,
			Radius: min(barRadius, barW/2, height/2),
			Label:  b.Month.Short(),
			LabelY: ChartDrawH + 26,
			Value:  format(b.Value),
			ValueY: y - 6,
		})
	}
	return out
}
