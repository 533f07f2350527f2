package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store/memory"
)

var fixedNow = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testLogger() *log.Logger {
	return log.NewText(io.Discard, slog.LevelError, log.ComponentApp)
}

type invalidations struct {
	owners []int64
}

func (i *invalidations) InvalidateOwner(ownerID int64) {
	i.owners = append(i.owners, ownerID)
}

func money(cents int64) core.Money { return core.Money{Cents: cents} }

func mustUser(t *testing.T, st *memory.Store, username string, admin bool) core.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), core.User{
		Username: username,
		Email:    username + "@example.com",
		UserType: core.UserTypeIndividual,
		IsAdmin:  admin,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}
