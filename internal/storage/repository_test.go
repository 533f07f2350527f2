package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"spendwise/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "spendwise.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createUser(t *testing.T, repo *SQLiteRepository, name string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{
		Username: name, Email: name + "@example.com", PasswordHash: "hash", UserType: core.UserTypeIndividual,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "alice")

	got, err := repo.UserByUsername(ctx, "ALICE")
	if err != nil || got.ID != alice.ID {
		t.Fatalf("UserByUsername case-insensitive: %+v %v", got, err)
	}
	if !got.JoinedAt.Equal(alice.JoinedAt) {
		t.Errorf("joined_at round trip: %v != %v", got.JoinedAt, alice.JoinedAt)
	}
	if _, err := repo.UserByID(ctx, 999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing user: got %v", err)
	}

	_, err = repo.CreateUser(ctx, core.User{Username: "alice", Email: "new@example.com", PasswordHash: "x", UserType: "student"})
	if !errors.Is(err, core.ErrUsernameTaken) {
		t.Errorf("duplicate username: got %v", err)
	}
	_, err = repo.CreateUser(ctx, core.User{Username: "bob", Email: "alice@example.com", PasswordHash: "x", UserType: "student"})
	if !errors.Is(err, core.ErrEmailTaken) {
		t.Errorf("duplicate email: got %v", err)
	}

	bob := createUser(t, repo, "bob")
	bob.Username = "alice"
	if err := repo.UpdateUser(ctx, bob); !errors.Is(err, core.ErrUsernameTaken) {
		t.Errorf("rename onto existing username: got %v", err)
	}
	if n, _ := repo.CountUsers(ctx); n != 2 {
		t.Errorf("CountUsers = %d, want 2", n)
	}
}

func TestExpensesAndIncomes(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "alice")
	bob := createUser(t, repo, "bob")

	first, err := repo.AddExpense(ctx, core.Expense{OwnerID: alice.ID, Amount: core.Money{Cents: 1250}, Category: "Food", Date: core.NewDate(2025, 3, 1)})
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	second, _ := repo.AddExpense(ctx, core.Expense{OwnerID: alice.ID, Amount: core.Money{Cents: 800}, Category: "Travel", PaymentMethod: "card", Date: core.NewDate(2025, 3, 9)})
	repo.AddExpense(ctx, core.Expense{OwnerID: bob.ID, Amount: core.Money{Cents: 1}, Category: "Misc", Date: core.NewDate(2025, 3, 9)})

	expenses, err := repo.ListExpenses(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 2 || expenses[0].ID != second.ID || expenses[1].ID != first.ID {
		t.Fatalf("unexpected order %+v", expenses)
	}
	if expenses[0].PaymentMethod != "card" || expenses[0].Date.String() != "2025-03-09" {
		t.Errorf("round trip lost fields: %+v", expenses[0])
	}

	if err := repo.DeleteExpense(ctx, bob.ID, first.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner delete: got %v", err)
	}
	total, _ := repo.TotalExpenseVolume(ctx)
	if total.Cents != 2051 {
		t.Errorf("TotalExpenseVolume = %d, want 2051", total.Cents)
	}

	if _, err := repo.AddIncome(ctx, core.Income{OwnerID: alice.ID, Amount: core.Money{Cents: 500000}, Source: "Salary", Date: core.NewDate(2025, 3, 1)}); err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	incomes, _ := repo.ListIncomes(ctx, alice.ID)
	if len(incomes) != 1 || incomes[0].Amount.Cents != 500000 {
		t.Errorf("ListIncomes = %+v", incomes)
	}
	if _, err := repo.AddIncome(ctx, core.Income{OwnerID: alice.ID, Amount: core.Money{Cents: -1}, Source: "x", Date: core.NewDate(2025, 3, 1)}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative income: got %v", err)
	}
}

func TestBudgetUpsert(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "alice")
	month := core.MonthKey{Year: 2025, Month: 4}

	for _, cents := range []int64{10000, 15000} {
		if err := repo.UpsertBudget(ctx, core.Budget{OwnerID: alice.ID, Category: "Food", Amount: core.Money{Cents: cents}, Month: month}); err != nil {
			t.Fatalf("UpsertBudget: %v", err)
		}
	}
	budgets, err := repo.ListBudgets(ctx, alice.ID, month)
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(budgets) != 1 || budgets[0].Amount.Cents != 15000 || budgets[0].Month != month {
		t.Errorf("ListBudgets = %+v", budgets)
	}
}

func TestRecurringRun(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "alice")

	rec, err := repo.AddRecurring(ctx, core.RecurringExpense{
		OwnerID: alice.ID, Description: "Gym", Amount: core.Money{Cents: 3000},
		Category: "Health", Frequency: core.Weekly, NextDueDate: core.NewDate(2025, 5, 1),
	})
	if err != nil {
		t.Fatalf("AddRecurring: %v", err)
	}
	due, err := repo.ListDueRecurring(ctx, core.NewDate(2025, 5, 1))
	if err != nil || len(due) != 1 {
		t.Fatalf("ListDueRecurring: %+v %v", due, err)
	}

	e := core.Expense{OwnerID: alice.ID, Amount: rec.Amount, Category: rec.Category, Description: rec.Description, Date: rec.NextDueDate}
	if _, err := repo.RecordRecurringRun(ctx, rec.ID, e, core.NewDate(2025, 5, 8)); err != nil {
		t.Fatalf("RecordRecurringRun: %v", err)
	}
	if due, _ := repo.ListDueRecurring(ctx, core.NewDate(2025, 5, 7)); len(due) != 0 {
		t.Errorf("template still due after run: %+v", due)
	}
	if _, err := repo.RecordRecurringRun(ctx, rec.ID, e, core.NewDate(2025, 5, 8)); !errors.Is(err, core.ErrRecurringAdvanced) {
		t.Errorf("replayed run: got %v, want ErrRecurringAdvanced", err)
	}
	if _, err := repo.RecordRecurringRun(ctx, 999, e, core.NewDate(2025, 5, 8)); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown template: got %v", err)
	}
	expenses, _ := repo.ListExpenses(ctx, alice.ID)
	if len(expenses) != 1 {
		t.Errorf("failed run must not leave an expense, got %d", len(expenses))
	}
}

func TestFundAndFeedback(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "alice")

	fund, err := repo.GetFund(ctx, alice.ID)
	if err != nil || !fund.TargetAmount.IsZero() {
		t.Fatalf("GetFund: %+v %v", fund, err)
	}
	fund.TargetAmount = core.Money{Cents: 100000}
	fund.CurrentAmount = core.Money{Cents: 25000}
	if err := repo.SaveFund(ctx, fund); err != nil {
		t.Fatalf("SaveFund: %v", err)
	}
	fund, _ = repo.GetFund(ctx, alice.ID)
	if fund.ProgressPercentage() != 25 {
		t.Errorf("progress = %v, want 25", fund.ProgressPercentage())
	}

	for _, msg := range []string{"first", "second"} {
		if _, err := repo.AddFeedback(ctx, core.Feedback{Username: "alice", Rating: 4, Message: msg}); err != nil {
			t.Fatalf("AddFeedback: %v", err)
		}
	}
	list, _ := repo.ListFeedback(ctx, 10)
	if len(list) != 2 || list[0].Message != "second" {
		t.Errorf("ListFeedback = %+v", list)
	}
}
