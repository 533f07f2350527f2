package analytics

import (
	"time"

	"spendwise/internal/core"
)

// MonthlySummary holds the income and expense totals of one month.
type MonthlySummary struct {
	Month    core.MonthKey `json:"month"`
	Income   core.Money    `json:"income"`
	Expenses core.Money    `json:"expenses"`
}

// BuildTrend returns TrendLength consecutive monthly totals, oldest first.
// Months without records are present with zero totals.
func BuildTrend(incomes []core.Income, expenses []core.Expense, now time.Time) []MonthlySummary {
	sparse := make(map[core.MonthKey]MonthlySummary)
	for _, in := range incomes {
		m := in.Date.MonthKey()
		s := sparse[m]
		s.Income = s.Income.Add(in.Amount)
		sparse[m] = s
	}
	for _, e := range expenses {
		m := e.Date.MonthKey()
		s := sparse[m]
		s.Expenses = s.Expenses.Add(e.Amount)
		sparse[m] = s
	}

	window := TrendWindow(TrendAnchor(monthsPresent(incomes, expenses), now))
	trend := make([]MonthlySummary, len(window))
	for i, m := range window {
		s := sparse[m]
		s.Month = m
		trend[i] = s
	}
	return trend
}
