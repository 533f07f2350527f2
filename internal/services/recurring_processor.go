package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store"
)

// maxRunsPerTemplate bounds the catch-up of a single template in one pass.
// A daily template a year behind catches up over two passes.
const maxRunsPerTemplate = 366

// RecurringProcessor turns due recurring expense templates into expenses.
type RecurringProcessor struct {
	store  store.RecurringStore
	trends TrendInvalidator
	logger *log.Logger
}

// NewRecurringProcessor creates a new recurring expense processor
func NewRecurringProcessor(st store.RecurringStore, trends TrendInvalidator, logger *log.Logger) *RecurringProcessor {
	if trends == nil {
		trends = noopInvalidator{}
	}
	return &RecurringProcessor{
		store:  st,
		trends: trends,
		logger: logger.WithComponent(log.ComponentRecurring),
	}
}

// ProcessDue creates one expense per elapsed period of every template due on
// or before now's date, each dated on the due date it settles, and moves the
// template past today. A failing template is logged and skipped.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	today := core.DateOf(now)
	due, err := p.store.ListDueRecurring(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list due recurring expenses: %w", err)
	}

	p.logger.InfoContext(ctx, "Processing recurring expenses",
		"total_due", len(due),
		"processing_date", today.String())

	created := 0
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		n, err := p.settle(ctx, r, today)
		created += n
		if n > 0 {
			p.trends.InvalidateOwner(r.OwnerID)
		}
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to process recurring expense", log.NewFields().
				WithRecord("recurring", r.ID).
				WithUser(r.OwnerID, "").
				WithOperation(log.OpProcess).
				WithError(err).ToSlice()...)
		}
	}

	p.logger.InfoContext(ctx, "Recurring expense processing complete",
		"created", created,
		"total_checked", len(due))
	return created, nil
}

func (p *RecurringProcessor) settle(ctx context.Context, r core.RecurringExpense, today core.Date) (int, error) {
	advancer, err := GetDueDateAdvancer(r.Frequency)
	if err != nil {
		return 0, err
	}
	created := 0
	for dueDate := r.NextDueDate; !dueDate.After(today.Time) && created < maxRunsPerTemplate; created++ {
		next := advancer.Next(dueDate)
		e := core.Expense{
			OwnerID:     r.OwnerID,
			Amount:      r.Amount,
			Category:    r.Category,
			Description: r.Description,
			Date:        dueDate,
		}
		stored, err := p.store.RecordRecurringRun(ctx, r.ID, e, next)
		if errors.Is(err, core.ErrRecurringAdvanced) {
			p.logger.InfoContext(ctx, "Recurring expense settled by another run",
				"recurring_id", r.ID,
				"due_date", dueDate.String())
			return created, nil
		}
		if err != nil {
			return created, fmt.Errorf("record run for %s: %w", dueDate, err)
		}
		p.logger.InfoContext(ctx, "Created expense from recurring template",
			"recurring_id", r.ID,
			log.FieldRecordID, stored.ID,
			log.FieldAmountCents, r.Amount.Cents,
			"due_date", dueDate.String(),
			"frequency", string(r.Frequency))
		dueDate = next
	}
	return created, nil
}
