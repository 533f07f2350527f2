// Package store declares the persistence ports the services depend on.
// Every per-owner method only sees records of that owner.
package store

import (
	"context"

	"spendwise/internal/core"
)

type (
	UserStore interface {
		// CreateUser persists the user together with an empty emergency fund.
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		UserByID(ctx context.Context, id int64) (core.User, error)
		UserByUsername(ctx context.Context, username string) (core.User, error)
		UserByEmail(ctx context.Context, email string) (core.User, error)
		UpdateUser(ctx context.Context, u core.User) error
		CountUsers(ctx context.Context) (int64, error)
		ListUsers(ctx context.Context, limit int) ([]core.User, error)
	}

	ExpenseStore interface {
		AddExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		// ListExpenses returns the owner's expenses, newest date first.
		ListExpenses(ctx context.Context, ownerID int64) ([]core.Expense, error)
		DeleteExpense(ctx context.Context, ownerID, id int64) error
		// TotalExpenseVolume sums every expense of every user.
		TotalExpenseVolume(ctx context.Context) (core.Money, error)
	}

	IncomeStore interface {
		AddIncome(ctx context.Context, in core.Income) (core.Income, error)
		ListIncomes(ctx context.Context, ownerID int64) ([]core.Income, error)
		DeleteIncome(ctx context.Context, ownerID, id int64) error
	}

	BudgetStore interface {
		// UpsertBudget replaces the amount when the (owner, category, month)
		// budget already exists.
		UpsertBudget(ctx context.Context, b core.Budget) error
		ListBudgets(ctx context.Context, ownerID int64, month core.MonthKey) ([]core.Budget, error)
	}

	RecurringStore interface {
		AddRecurring(ctx context.Context, r core.RecurringExpense) (core.RecurringExpense, error)
		ListRecurring(ctx context.Context, ownerID int64) ([]core.RecurringExpense, error)
		DeleteRecurring(ctx context.Context, ownerID, id int64) error
		// ListDueRecurring returns templates of all owners due on or before asOf.
		ListDueRecurring(ctx context.Context, asOf core.Date) ([]core.RecurringExpense, error)
		// RecordRecurringRun atomically stores the generated expense and moves
		// the template's next due date. The template must still be due on
		// e.Date, otherwise core.ErrRecurringAdvanced is returned and nothing
		// is stored.
		RecordRecurringRun(ctx context.Context, templateID int64, e core.Expense, next core.Date) (core.Expense, error)
	}

	FundStore interface {
		// GetFund returns the owner's fund, creating a zero one when missing.
		GetFund(ctx context.Context, ownerID int64) (core.EmergencyFund, error)
		SaveFund(ctx context.Context, f core.EmergencyFund) error
	}

	FeedbackStore interface {
		AddFeedback(ctx context.Context, fb core.Feedback) (core.Feedback, error)
		// ListFeedback returns the newest entries first.
		ListFeedback(ctx context.Context, limit int) ([]core.Feedback, error)
		CountFeedback(ctx context.Context) (int64, error)
	}

	// Store is the full persistence surface of one backend.
	Store interface {
		UserStore
		ExpenseStore
		IncomeStore
		BudgetStore
		RecurringStore
		FundStore
		FeedbackStore
		Ping(ctx context.Context) error
		Close() error
	}
)
