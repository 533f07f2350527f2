package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store"
)

// AdminListLimit caps the admin user and feedback listings.
const AdminListLimit = 20

// AdminStore is the platform-wide read side behind the admin endpoints.
type AdminStore interface {
	CountUsers(ctx context.Context) (int64, error)
	ListUsers(ctx context.Context, limit int) ([]core.User, error)
	TotalExpenseVolume(ctx context.Context) (core.Money, error)
	ListFeedback(ctx context.Context, limit int) ([]core.Feedback, error)
	CountFeedback(ctx context.Context) (int64, error)
}

var _ AdminStore = (store.Store)(nil)

// PlatformStats are counters across every account.
type PlatformStats struct {
	TotalUsers    int64      `json:"total_users"`
	TotalVolume   core.Money `json:"total_volume"`
	TotalFeedback int64      `json:"total_feedback"`
}

type AdminService struct {
	store  AdminStore
	logger *log.Logger
}

func NewAdminService(st AdminStore, logger *log.Logger) *AdminService {
	return &AdminService{store: st, logger: logger.WithComponent(log.ComponentAdmin)}
}

func (s *AdminService) authorize(ctx context.Context, u core.User) error {
	if u.IsAdmin {
		return nil
	}
	s.logger.WarnContext(ctx, "Admin access denied", log.NewFields().
		WithUser(u.ID, u.Username).
		WithErrorType(log.ErrorTypeAuth).ToSlice()...)
	return ErrForbidden
}

func (s *AdminService) Stats(ctx context.Context, u core.User) (PlatformStats, error) {
	if err := s.authorize(ctx, u); err != nil {
		return PlatformStats{}, err
	}
	var stats PlatformStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.store.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalVolume, err = s.store.TotalExpenseVolume(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalFeedback, err = s.store.CountFeedback(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return PlatformStats{}, fmt.Errorf("admin stats: %w", err)
	}
	return stats, nil
}

func (s *AdminService) Users(ctx context.Context, u core.User) ([]core.User, error) {
	if err := s.authorize(ctx, u); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx, AdminListLimit)
}

// Feedback returns the newest feedback entries.
func (s *AdminService) Feedback(ctx context.Context, u core.User) ([]core.Feedback, error) {
	if err := s.authorize(ctx, u); err != nil {
		return nil, err
	}
	return s.store.ListFeedback(ctx, AdminListLimit)
}
