package services

import (
	"context"
	"fmt"
	"strings"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store"
)

// LedgerStore is the part of the persistence surface the ledger writes to.
type LedgerStore interface {
	store.ExpenseStore
	store.IncomeStore
	store.BudgetStore
	store.RecurringStore
	store.FundStore
	store.FeedbackStore
}

// FundView is the emergency fund as returned to its owner.
type FundView struct {
	core.EmergencyFund
	ProgressPercentage float64 `json:"progress_percentage"`
}

// LedgerService records an owner's transactions, budgets, recurring
// templates, emergency fund and feedback.
type LedgerService struct {
	store  LedgerStore
	clock  Clock
	trends TrendInvalidator
	logger *log.Logger
	events *log.StructuredLogger
}

func NewLedgerService(st LedgerStore, clock Clock, trends TrendInvalidator, logger *log.Logger) *LedgerService {
	if trends == nil {
		trends = noopInvalidator{}
	}
	logger = logger.WithComponent(log.ComponentLedger)
	return &LedgerService{
		store:  st,
		clock:  clock,
		trends: trends,
		logger: logger,
		events: log.NewStructuredLogger(logger),
	}
}

func (s *LedgerService) AddExpense(ctx context.Context, ownerID int64, e core.Expense) (core.Expense, error) {
	e.OwnerID = ownerID
	e.Category = strings.TrimSpace(e.Category)
	e.Description = strings.TrimSpace(e.Description)
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e, err := s.store.AddExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.trends.InvalidateOwner(ownerID)
	s.events.LogRecordCreated(ctx, "expense", e.ID, ownerID, e.Amount.Cents, e.Category)
	return e, nil
}

func (s *LedgerService) Expenses(ctx context.Context, ownerID int64) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, ownerID)
}

func (s *LedgerService) DeleteExpense(ctx context.Context, ownerID, id int64) error {
	if err := s.store.DeleteExpense(ctx, ownerID, id); err != nil {
		return err
	}
	s.trends.InvalidateOwner(ownerID)
	s.logDeleted(ctx, "expense", ownerID, id)
	return nil
}

func (s *LedgerService) AddIncome(ctx context.Context, ownerID int64, in core.Income) (core.Income, error) {
	in.OwnerID = ownerID
	in.Source = strings.TrimSpace(in.Source)
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	in, err := s.store.AddIncome(ctx, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}
	s.trends.InvalidateOwner(ownerID)
	s.events.LogRecordCreated(ctx, "income", in.ID, ownerID, in.Amount.Cents, in.Source)
	return in, nil
}

func (s *LedgerService) Incomes(ctx context.Context, ownerID int64) ([]core.Income, error) {
	return s.store.ListIncomes(ctx, ownerID)
}

func (s *LedgerService) DeleteIncome(ctx context.Context, ownerID, id int64) error {
	if err := s.store.DeleteIncome(ctx, ownerID, id); err != nil {
		return err
	}
	s.trends.InvalidateOwner(ownerID)
	s.logDeleted(ctx, "income", ownerID, id)
	return nil
}

// SetBudget creates the (category, month) budget or replaces its amount.
func (s *LedgerService) SetBudget(ctx context.Context, ownerID int64, b core.Budget) error {
	b.OwnerID = ownerID
	b.Category = strings.TrimSpace(b.Category)
	if err := b.Validate(); err != nil {
		return err
	}
	if err := s.store.UpsertBudget(ctx, b); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	s.logger.InfoContext(ctx, "Budget set", log.NewFields().
		WithAmount(b.Amount.Cents, b.Category).
		WithUser(ownerID, "").ToSlice()...)
	return nil
}

// Budgets lists the budgets of month, the current month when empty.
func (s *LedgerService) Budgets(ctx context.Context, ownerID int64, month string) ([]core.Budget, error) {
	key, err := analytics.ResolveMonth(month, s.clock())
	if err != nil {
		return nil, err
	}
	return s.store.ListBudgets(ctx, ownerID, key)
}

func (s *LedgerService) AddRecurring(ctx context.Context, ownerID int64, r core.RecurringExpense) (core.RecurringExpense, error) {
	r.OwnerID = ownerID
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	if r.Frequency == "" {
		r.Frequency = core.Monthly
	}
	if err := r.Validate(); err != nil {
		return core.RecurringExpense{}, err
	}
	r, err := s.store.AddRecurring(ctx, r)
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("save recurring expense: %w", err)
	}
	s.events.LogRecordCreated(ctx, "recurring", r.ID, ownerID, r.Amount.Cents, r.Category)
	return r, nil
}

func (s *LedgerService) Recurring(ctx context.Context, ownerID int64) ([]core.RecurringExpense, error) {
	return s.store.ListRecurring(ctx, ownerID)
}

func (s *LedgerService) DeleteRecurring(ctx context.Context, ownerID, id int64) error {
	if err := s.store.DeleteRecurring(ctx, ownerID, id); err != nil {
		return err
	}
	s.logDeleted(ctx, "recurring", ownerID, id)
	return nil
}

func (s *LedgerService) Fund(ctx context.Context, ownerID int64) (FundView, error) {
	f, err := s.store.GetFund(ctx, ownerID)
	if err != nil {
		return FundView{}, err
	}
	return FundView{EmergencyFund: f, ProgressPercentage: f.ProgressPercentage()}, nil
}

func (s *LedgerService) UpdateFund(ctx context.Context, ownerID int64, upd core.FundUpdate) (FundView, error) {
	if upd.IsEmpty() {
		return FundView{}, ErrEmptyUpdate
	}
	f, err := s.store.GetFund(ctx, ownerID)
	if err != nil {
		return FundView{}, err
	}
	f, err = upd.Apply(f)
	if err != nil {
		return FundView{}, err
	}
	if err := s.store.SaveFund(ctx, f); err != nil {
		return FundView{}, fmt.Errorf("save emergency fund: %w", err)
	}
	return FundView{EmergencyFund: f, ProgressPercentage: f.ProgressPercentage()}, nil
}

func (s *LedgerService) SubmitFeedback(ctx context.Context, username string, rating int, message string) (core.Feedback, error) {
	fb := core.Feedback{
		Username:  username,
		Rating:    rating,
		Message:   strings.TrimSpace(message),
		CreatedAt: s.clock().UTC(),
	}
	if err := fb.Validate(); err != nil {
		return core.Feedback{}, err
	}
	return s.store.AddFeedback(ctx, fb)
}

func (s *LedgerService) logDeleted(ctx context.Context, kind string, ownerID, id int64) {
	s.logger.InfoContext(ctx, "Record deleted", log.NewFields().
		WithOperation(log.OpDelete).
		WithRecord(kind, id).
		WithUser(ownerID, "").ToSlice()...)
}
