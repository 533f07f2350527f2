package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"spendwise/internal/core"
)

// Header is the first row of every tabular report.
var Header = []string{"Type", "Category", "Amount", "Date"}

// Rows returns the tabular report: header, incomes, then expenses, each in
// the order given.
func Rows(incomes []core.Income, expenses []core.Expense) ([][]string, error) {
	rows := make([][]string, 0, 1+len(incomes)+len(expenses))
	rows = append(rows, Header)
	for _, in := range incomes {
		if err := in.Date.Validate(); err != nil {
			return nil, fmt.Errorf("income %d: %w", in.ID, err)
		}
		rows = append(rows, []string{"Income", in.Source, in.Amount.String(), in.Date.String()})
	}
	for _, e := range expenses {
		if err := e.Date.Validate(); err != nil {
			return nil, fmt.Errorf("expense %d: %w", e.ID, err)
		}
		rows = append(rows, []string{"Expense", e.Category, e.Amount.String(), e.Date.String()})
	}
	return rows, nil
}

func RenderCSV(w io.Writer, incomes []core.Income, expenses []core.Expense) error {
	rows, err := Rows(incomes, expenses)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
