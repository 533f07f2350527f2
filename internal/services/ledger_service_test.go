package services

import (
	"context"
	"errors"
	"testing"

	"spendwise/internal/core"
	"spendwise/internal/store/memory"
)

func newLedger(t *testing.T) (*LedgerService, *invalidations, *memory.Store) {
	t.Helper()
	st := memory.New()
	inv := &invalidations{}
	return NewLedgerService(st, fixedClock, inv, testLogger()), inv, st
}

func TestLedgerExpenses(t *testing.T) {
	ctx := context.Background()
	ledger, inv, _ := newLedger(t)

	if _, err := ledger.AddExpense(ctx, 1, core.Expense{Amount: money(500), Category: "  ", Date: core.NewDate(2025, 3, 1)}); !errors.Is(err, core.ErrEmptyCategory) {
		t.Errorf("blank category: got %v", err)
	}
	if _, err := ledger.AddExpense(ctx, 1, core.Expense{Amount: money(500), Category: "Food"}); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("missing date: got %v", err)
	}
	if len(inv.owners) != 0 {
		t.Fatalf("rejected writes must not invalidate: %v", inv.owners)
	}

	e, err := ledger.AddExpense(ctx, 1, core.Expense{Amount: money(500), Category: " Food ", Date: core.NewDate(2025, 3, 1)})
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if e.OwnerID != 1 || e.Category != "Food" {
		t.Errorf("stored expense = %+v", e)
	}
	if len(inv.owners) != 1 || inv.owners[0] != 1 {
		t.Errorf("invalidations = %v", inv.owners)
	}

	list, _ := ledger.Expenses(ctx, 1)
	if len(list) != 1 {
		t.Fatalf("Expenses = %+v", list)
	}
	if other, _ := ledger.Expenses(ctx, 2); len(other) != 0 {
		t.Errorf("other owner sees %+v", other)
	}

	if err := ledger.DeleteExpense(ctx, 2, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner delete: got %v", err)
	}
	if err := ledger.DeleteExpense(ctx, 1, e.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if len(inv.owners) != 2 {
		t.Errorf("delete should invalidate, got %v", inv.owners)
	}
}

func TestLedgerIncomes(t *testing.T) {
	ctx := context.Background()
	ledger, _, _ := newLedger(t)

	if _, err := ledger.AddIncome(ctx, 1, core.Income{Amount: money(100), Source: "", Date: core.NewDate(2025, 3, 1)}); !errors.Is(err, core.ErrEmptySource) {
		t.Errorf("empty source: got %v", err)
	}
	in, err := ledger.AddIncome(ctx, 1, core.Income{Amount: money(250000), Source: "Salary", Date: core.NewDate(2025, 3, 1)})
	if err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	if err := ledger.DeleteIncome(ctx, 1, in.ID+100); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown id: got %v", err)
	}
	list, _ := ledger.Incomes(ctx, 1)
	if len(list) != 1 || list[0].Source != "Salary" {
		t.Errorf("Incomes = %+v", list)
	}
}

func TestLedgerBudgets(t *testing.T) {
	ctx := context.Background()
	ledger, _, _ := newLedger(t)
	march := core.MonthKey{Year: 2025, Month: 3}

	for _, cents := range []int64{10000, 20000} {
		if err := ledger.SetBudget(ctx, 1, core.Budget{Category: "Food", Amount: money(cents), Month: march}); err != nil {
			t.Fatalf("SetBudget: %v", err)
		}
	}
	if err := ledger.SetBudget(ctx, 1, core.Budget{Category: "Food", Amount: money(1)}); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("missing month: got %v", err)
	}

	current, err := ledger.Budgets(ctx, 1, "")
	if err != nil {
		t.Fatalf("Budgets: %v", err)
	}
	if len(current) != 1 || current[0].Amount.Cents != 20000 {
		t.Errorf("current month budgets = %+v", current)
	}
	if april, _ := ledger.Budgets(ctx, 1, "2025-04"); len(april) != 0 {
		t.Errorf("april budgets = %+v", april)
	}
	if _, err := ledger.Budgets(ctx, 1, "2025-13"); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("bad month: got %v", err)
	}
}

func TestLedgerRecurringDefaultsToMonthly(t *testing.T) {
	ctx := context.Background()
	ledger, _, _ := newLedger(t)

	r, err := ledger.AddRecurring(ctx, 1, core.RecurringExpense{
		Description: "Netflix", Amount: money(999), Category: "Entertainment", NextDueDate: core.NewDate(2025, 4, 1),
	})
	if err != nil {
		t.Fatalf("AddRecurring: %v", err)
	}
	if r.Frequency != core.Monthly {
		t.Errorf("frequency = %q", r.Frequency)
	}
	if _, err := ledger.AddRecurring(ctx, 1, core.RecurringExpense{
		Description: "Gym", Amount: money(999), Category: "Health", Frequency: "hourly", NextDueDate: core.NewDate(2025, 4, 1),
	}); !errors.Is(err, core.ErrInvalidFrequency) {
		t.Errorf("bad frequency: got %v", err)
	}
	if err := ledger.DeleteRecurring(ctx, 2, r.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner delete: got %v", err)
	}
	if err := ledger.DeleteRecurring(ctx, 1, r.ID); err != nil {
		t.Errorf("DeleteRecurring: %v", err)
	}
}

func TestLedgerFund(t *testing.T) {
	ctx := context.Background()
	ledger, _, _ := newLedger(t)

	view, err := ledger.Fund(ctx, 7)
	if err != nil {
		t.Fatalf("Fund: %v", err)
	}
	if view.ProgressPercentage != 0 || !view.TargetAmount.IsZero() {
		t.Errorf("fresh fund = %+v", view)
	}

	if _, err := ledger.UpdateFund(ctx, 7, core.FundUpdate{}); !errors.Is(err, ErrEmptyUpdate) {
		t.Errorf("empty update: got %v", err)
	}
	target, current := money(300000), money(100000)
	view, err = ledger.UpdateFund(ctx, 7, core.FundUpdate{TargetAmount: &target, CurrentAmount: &current})
	if err != nil {
		t.Fatalf("UpdateFund: %v", err)
	}
	if view.ProgressPercentage != 33.3 {
		t.Errorf("progress = %v, want 33.3", view.ProgressPercentage)
	}
	again, _ := ledger.Fund(ctx, 7)
	if again.CurrentAmount != current {
		t.Errorf("fund not persisted: %+v", again)
	}
}

func TestLedgerFeedback(t *testing.T) {
	ctx := context.Background()
	ledger, _, st := newLedger(t)

	if _, err := ledger.SubmitFeedback(ctx, "alice", 0, "meh"); !errors.Is(err, core.ErrInvalidRating) {
		t.Errorf("rating 0: got %v", err)
	}
	if _, err := ledger.SubmitFeedback(ctx, "alice", 4, "   "); !errors.Is(err, core.ErrEmptyMessage) {
		t.Errorf("blank message: got %v", err)
	}
	fb, err := ledger.SubmitFeedback(ctx, "alice", 5, "great")
	if err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	if !fb.CreatedAt.Equal(fixedNow) {
		t.Errorf("created at %v", fb.CreatedAt)
	}
	if n, _ := st.CountFeedback(ctx); n != 1 {
		t.Errorf("CountFeedback = %d", n)
	}
}
