// Package analytics turns one owner's raw income and expense records into
// dashboard summaries, budget comparisons and a gap-filled monthly trend.
//
// Every function is pure: callers pass in a materialized snapshot and the
// reference time, and get back plain values.
package analytics

import (
	"strings"
	"time"

	"spendwise/internal/core"
)

// TrendLength is the number of months in a trend series.
const TrendLength = 12

// CurrentMonth returns the month containing now, in now's location.
func CurrentMonth(now time.Time) core.MonthKey {
	return core.MonthOf(now)
}

// ResolveMonth picks the month for single-month queries: the explicit
// YYYY-MM key when given, otherwise the current month.
func ResolveMonth(explicit string, now time.Time) (core.MonthKey, error) {
	if strings.TrimSpace(explicit) == "" {
		return CurrentMonth(now), nil
	}
	return core.ParseMonthKey(explicit)
}

// TrendAnchor returns the newest month of the trend window. It is the
// latest month with data, moved forward to the current month when all data
// is older. A month after the current one is kept as is.
func TrendAnchor(present []core.MonthKey, now time.Time) core.MonthKey {
	current := CurrentMonth(now)
	if len(present) == 0 {
		return current
	}
	anchor := present[0]
	for _, m := range present[1:] {
		if anchor.Before(m) {
			anchor = m
		}
	}
	if anchor.Before(current) {
		return current
	}
	return anchor
}

// TrendWindow returns the anchor and the months preceding it, oldest first.
func TrendWindow(anchor core.MonthKey) []core.MonthKey {
	window := make([]core.MonthKey, TrendLength)
	m := anchor
	for i := TrendLength - 1; i >= 0; i-- {
		window[i] = m
		m = m.Prev()
	}
	return window
}

// monthsPresent collects the distinct months that have at least one record.
func monthsPresent(incomes []core.Income, expenses []core.Expense) []core.MonthKey {
	seen := make(map[core.MonthKey]struct{})
	var out []core.MonthKey
	add := func(m core.MonthKey) {
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	for _, in := range incomes {
		add(in.Date.MonthKey())
	}
	for _, e := range expenses {
		add(e.Date.MonthKey())
	}
	return out
}
