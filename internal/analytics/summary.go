package analytics

import (
	"sort"

	"spendwise/internal/core"
)

// RecentLimit is the size of the recent activity feed.
const RecentLimit = 5

// Summary is the dashboard view of one month.
type Summary struct {
	Month              core.MonthKey       `json:"month"`
	TotalIncome        core.Money          `json:"total_income"`
	TotalExpenses      core.Money          `json:"total_expenses"`
	NetSavings         core.Money          `json:"net_savings"`
	SavingsRate        float64             `json:"savings_rate"`
	RecentTransactions []core.Expense      `json:"recent_transactions"`
	CategoryBreakdown  []CategoryBreakdown `json:"category_expenses"`
}

// CategoryBreakdown is one category's share of a month's expenses.
type CategoryBreakdown struct {
	Category   string     `json:"category"`
	Amount     core.Money `json:"amount"`
	Percentage float64    `json:"percentage"`
}

// Summarize computes the dashboard for month. Totals only count records
// inside the month; the recent feed spans all expenses.
func Summarize(incomes []core.Income, expenses []core.Expense, month core.MonthKey) Summary {
	s := Summary{
		Month:              month,
		RecentTransactions: Recent(expenses, RecentLimit),
		CategoryBreakdown:  []CategoryBreakdown{},
	}

	for _, in := range incomes {
		if month.Contains(in.Date) {
			s.TotalIncome = s.TotalIncome.Add(in.Amount)
		}
	}

	byCategory := make(map[string]core.Money)
	for _, e := range expenses {
		if !month.Contains(e.Date) {
			continue
		}
		s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
	}

	s.NetSavings = s.TotalIncome.Sub(s.TotalExpenses)
	s.SavingsRate = core.Percentage(s.NetSavings, s.TotalIncome)

	if s.TotalExpenses.Cents > 0 {
		for category, amount := range byCategory {
			s.CategoryBreakdown = append(s.CategoryBreakdown, CategoryBreakdown{
				Category:   category,
				Amount:     amount,
				Percentage: core.Percentage(amount, s.TotalExpenses),
			})
		}
		sort.Slice(s.CategoryBreakdown, func(i, j int) bool {
			return s.CategoryBreakdown[i].Category < s.CategoryBreakdown[j].Category
		})
	}

	return s
}

// Recent returns up to limit expenses, newest date first. Expenses on the
// same date keep ascending ID order.
func Recent(expenses []core.Expense, limit int) []core.Expense {
	sorted := make([]core.Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.After(b.Date.Time)
		}
		return a.ID < b.ID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
