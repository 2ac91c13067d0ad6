package view

import (
	"time"

	"expenses/internal/core"
)

// AllMonths is the selector value that keeps the chart on the current month.
const AllMonths = "all"

type MonthOption struct {
	Value    string
	Label    string
	Selected bool
}

// MonthOptions lists "All" followed by every month present in list, in the
// order the months first appear. Records without a date are skipped.
func MonthOptions(list []core.Expense, selected string) []MonthOption {
	if selected == "" {
		selected = AllMonths
	}
	opts := []MonthOption{{Value: AllMonths, Label: "All"}}
	seen := make(map[core.MonthKey]bool)
	for _, e := range list {
		if e.Date.IsZero() {
			continue
		}
		key := core.MonthOf(e.Date.Time)
		if seen[key] {
			continue
		}
		seen[key] = true
		opts = append(opts, MonthOption{Value: key.String(), Label: key.Label()})
	}

	found := false
	for i := range opts {
		if opts[i].Value == selected {
			opts[i].Selected = true
			found = true
		}
	}
	if !found {
		opts[0].Selected = true
	}
	return opts
}

// WindowEnd resolves the selector value to the month the chart window ends
// at. "all", empty and unparseable values mean the month containing now.
func WindowEnd(selected string, now time.Time) time.Time {
	if selected == "" || selected == AllMonths {
		return now
	}
	key, err := core.ParseMonthKey(selected)
	if err != nil {
		return now
	}
	return key.Start()
}
