package services

import (
	"context"
	"errors"
	"testing"

	"spendwise/internal/core"
	"spendwise/internal/store/memory"
)

func TestAdminRequiresAdminFlag(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewAdminService(st, testLogger())
	user := mustUser(t, st, "alice", false)

	if _, err := svc.Stats(ctx, user); !errors.Is(err, ErrForbidden) {
		t.Errorf("Stats: got %v", err)
	}
	if _, err := svc.Users(ctx, user); !errors.Is(err, ErrForbidden) {
		t.Errorf("Users: got %v", err)
	}
	if _, err := svc.Feedback(ctx, user); !errors.Is(err, ErrForbidden) {
		t.Errorf("Feedback: got %v", err)
	}
}

func TestAdminStatsAndListings(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewAdminService(st, testLogger())
	admin := mustUser(t, st, "root", true)
	alice := mustUser(t, st, "alice", false)

	for _, e := range []core.Expense{
		{OwnerID: admin.ID, Amount: money(1000), Category: "Food", Date: core.NewDate(2025, 3, 1)},
		{OwnerID: alice.ID, Amount: money(2550), Category: "Rent", Date: core.NewDate(2025, 3, 2)},
	} {
		if _, err := st.AddExpense(ctx, e); err != nil {
			t.Fatalf("AddExpense: %v", err)
		}
	}
	for i := 0; i < AdminListLimit+5; i++ {
		if _, err := st.AddFeedback(ctx, core.Feedback{Username: "alice", Rating: 1 + i%5, Message: "hi"}); err != nil {
			t.Fatalf("AddFeedback: %v", err)
		}
	}

	stats, err := svc.Stats(ctx, admin)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := PlatformStats{TotalUsers: 2, TotalVolume: money(3550), TotalFeedback: AdminListLimit + 5}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	users, err := svc.Users(ctx, admin)
	if err != nil || len(users) != 2 {
		t.Errorf("Users = %+v, %v", users, err)
	}
	feedback, err := svc.Feedback(ctx, admin)
	if err != nil || len(feedback) != AdminListLimit {
		t.Errorf("Feedback returned %d entries, %v", len(feedback), err)
	}
}
