package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/analytics"
	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/export"
	"spendwise/internal/log"
	"spendwise/internal/sheets"
	"spendwise/internal/store"
)

// ReportStore is the read side the reports are computed from.
type ReportStore interface {
	ListIncomes(ctx context.Context, ownerID int64) ([]core.Income, error)
	ListExpenses(ctx context.Context, ownerID int64) ([]core.Expense, error)
	ListBudgets(ctx context.Context, ownerID int64, month core.MonthKey) ([]core.Budget, error)
}

var _ ReportStore = (store.Store)(nil)

// TrendCache holds computed trends keyed per owner and current month.
type TrendCache = cache.Cache[[]analytics.MonthlySummary]

// ReportService loads an owner's records and runs the reporting engine on them.
type ReportService struct {
	store  ReportStore
	clock  Clock
	trends TrendCache
	sheets sheets.ReportWriter
	logger *log.Logger

	// genMu orders trend cache writes against invalidations. generations
	// counts the invalidations seen per owner.
	genMu       sync.Mutex
	generations map[int64]uint64
}

// NewReportService wires the reports. trends and writer may be nil, which
// disables trend caching and sheet publishing respectively.
func NewReportService(st ReportStore, clock Clock, trends TrendCache, writer sheets.ReportWriter, logger *log.Logger) *ReportService {
	return &ReportService{
		store:       st,
		clock:       clock,
		trends:      trends,
		sheets:      writer,
		logger:      logger.WithComponent(log.ComponentReport),
		generations: make(map[int64]uint64),
	}
}

type snapshot struct {
	incomes  []core.Income
	expenses []core.Expense
	budgets  []core.Budget
}

// load fetches the owner's collections concurrently. Budgets are only
// read when month is set.
func (s *ReportService) load(ctx context.Context, ownerID int64, month *core.MonthKey) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.incomes, err = s.store.ListIncomes(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list incomes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap.expenses, err = s.store.ListExpenses(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	if month != nil {
		g.Go(func() error {
			var err error
			snap.budgets, err = s.store.ListBudgets(gctx, ownerID, *month)
			if err != nil {
				return fmt.Errorf("list budgets: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

// Dashboard summarizes month, the current month when empty.
func (s *ReportService) Dashboard(ctx context.Context, ownerID int64, month string) (analytics.Summary, error) {
	key, err := analytics.ResolveMonth(month, s.clock())
	if err != nil {
		return analytics.Summary{}, err
	}
	snap, err := s.load(ctx, ownerID, nil)
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(snap.incomes, snap.expenses, key), nil
}

// Trend returns the twelve month income and expense series.
func (s *ReportService) Trend(ctx context.Context, ownerID int64) ([]analytics.MonthlySummary, error) {
	now := s.clock()
	key := trendKey(ownerID, analytics.CurrentMonth(now))
	if s.trends != nil {
		if cached, ok := s.trends.Get(key); ok {
			return cached, nil
		}
	}
	gen := s.generation(ownerID)
	snap, err := s.load(ctx, ownerID, nil)
	if err != nil {
		return nil, err
	}
	trend := analytics.BuildTrend(snap.incomes, snap.expenses, now)
	s.storeTrend(ownerID, gen, key, trend)
	return trend, nil
}

func (s *ReportService) generation(ownerID int64) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[ownerID]
}

// storeTrend caches trend unless the owner was invalidated after gen was
// read, in which case the snapshot may predate a committed write.
func (s *ReportService) storeTrend(ownerID int64, gen uint64, key string, trend []analytics.MonthlySummary) {
	if s.trends == nil {
		return
	}
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[ownerID] != gen {
		s.logger.Debug("Stale trend not cached", log.FieldUserID, ownerID)
		return
	}
	s.trends.Set(key, trend)
}

func (s *ReportService) BudgetAnalysis(ctx context.Context, ownerID int64, month string) ([]analytics.BudgetAnalysisEntry, error) {
	key, err := analytics.ResolveMonth(month, s.clock())
	if err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, ownerID, &key)
	if err != nil {
		return nil, err
	}
	return analytics.AnalyzeBudgets(snap.budgets, snap.expenses, key), nil
}

// Export renders every record of u in the requested format. Records are
// listed in the order they were created.
func (s *ReportService) Export(ctx context.Context, u core.User, format string) (export.Document, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return export.Document{}, err
	}
	snap, err := s.loadForExport(ctx, u.ID)
	if err != nil {
		return export.Document{}, err
	}
	doc, err := export.Render(f, u.Username, snap.incomes, snap.expenses)
	if err != nil {
		s.logger.ErrorContext(ctx, "Export failed", log.NewFields().
			WithUser(u.ID, u.Username).
			WithOperation(log.OpExport).
			WithError(err).ToSlice()...)
		return export.Document{}, err
	}
	s.logger.InfoContext(ctx, "Report exported",
		log.FieldUserID, u.ID,
		log.FieldFormat, string(f),
		"bytes", len(doc.Body))
	return doc, nil
}

// PublishToSheets writes the tabular report of u to the configured
// spreadsheet and returns the filled range.
func (s *ReportService) PublishToSheets(ctx context.Context, u core.User) (string, error) {
	if s.sheets == nil {
		return "", ErrSheetsDisabled
	}
	snap, err := s.loadForExport(ctx, u.ID)
	if err != nil {
		return "", err
	}
	rows, err := export.Rows(snap.incomes, snap.expenses)
	if err != nil {
		return "", fmt.Errorf("%w: %v", export.ErrExportFailed, err)
	}
	rng, err := s.sheets.WriteReport(ctx, "SpendWise Report - "+u.Username, rows)
	if err != nil {
		s.logger.ErrorContext(ctx, "Sheets export failed", log.NewFields().
			WithUser(u.ID, u.Username).
			WithOperation(log.OpExport).
			WithErrorType(log.ErrorTypeNetwork).
			WithError(err).ToSlice()...)
		return "", fmt.Errorf("%w: %v", export.ErrExportFailed, err)
	}
	s.logger.InfoContext(ctx, "Report published to sheets",
		log.FieldUserID, u.ID,
		log.FieldSheetRange, rng)
	return rng, nil
}

func (s *ReportService) loadForExport(ctx context.Context, ownerID int64) (snapshot, error) {
	snap, err := s.load(ctx, ownerID, nil)
	if err != nil {
		return snapshot{}, fmt.Errorf("%w: %v", export.ErrExportFailed, err)
	}
	sort.Slice(snap.incomes, func(i, j int) bool { return snap.incomes[i].ID < snap.incomes[j].ID })
	sort.Slice(snap.expenses, func(i, j int) bool { return snap.expenses[i].ID < snap.expenses[j].ID })
	return snap, nil
}

// InvalidateOwner drops every cached trend of the owner.
func (s *ReportService) InvalidateOwner(ownerID int64) {
	if s.trends == nil {
		return
	}
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.generations[ownerID]++
	if n := s.trends.DeletePrefix(fmt.Sprintf("trend:%d:", ownerID)); n > 0 {
		s.logger.Debug("Trend cache invalidated", log.FieldUserID, ownerID, "entries", n)
	}
}

func trendKey(ownerID int64, month core.MonthKey) string {
	return fmt.Sprintf("trend:%d:%s", ownerID, month)
}
