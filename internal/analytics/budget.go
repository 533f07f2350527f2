package analytics

import "spendwise/internal/core"

const (
	StatusOver  = "over"
	StatusUnder = "under"
)

// BudgetAnalysisEntry compares one budget with what was actually spent.
type BudgetAnalysisEntry struct {
	Category string     `json:"category"`
	Budgeted core.Money `json:"budgeted"`
	Actual   core.Money `json:"actual"`
	Status   string     `json:"status"`
}

// AnalyzeBudgets emits one entry per budget of month, in budget order.
// A budget is over only when actual spending strictly exceeds it.
func AnalyzeBudgets(budgets []core.Budget, expenses []core.Expense, month core.MonthKey) []BudgetAnalysisEntry {
	spent := make(map[string]core.Money)
	for _, e := range expenses {
		if month.Contains(e.Date) {
			spent[e.Category] = spent[e.Category].Add(e.Amount)
		}
	}

	entries := make([]BudgetAnalysisEntry, 0, len(budgets))
	for _, b := range budgets {
		if b.Month != month {
			continue
		}
		actual := spent[b.Category]
		status := StatusUnder
		if actual.Cents > b.Amount.Cents {
			status = StatusOver
		}
		entries = append(entries, BudgetAnalysisEntry{
			Category: b.Category,
			Budgeted: b.Amount,
			Actual:   actual,
			Status:   status,
		})
	}
	return entries
}
