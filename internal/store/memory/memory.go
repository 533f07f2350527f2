// Package memory is a process-local Store used for development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

var _ store.Store = (*Store)(nil)

type budgetKey struct {
	owner    int64
	category string
	month    core.MonthKey
}

type Store struct {
	mu        sync.Mutex
	nextID    int64
	now       func() time.Time
	users     map[int64]core.User
	expenses  []core.Expense
	incomes   []core.Income
	budgets   []core.Budget
	recurring map[int64]core.RecurringExpense
	funds     map[int64]core.EmergencyFund
	feedback  []core.Feedback
}

func New() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[int64]core.User),
		recurring: make(map[int64]core.RecurringExpense),
		funds:     make(map[int64]core.EmergencyFund),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return core.User{}, core.ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return core.User{}, core.ErrEmailTaken
		}
	}
	u.ID = s.id()
	if u.JoinedAt.IsZero() {
		u.JoinedAt = s.now().UTC()
	}
	s.users[u.ID] = u
	s.funds[u.ID] = core.EmergencyFund{OwnerID: u.ID}
	return u, nil
}

func (s *Store) UserByID(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (core.User, error) {
	return s.findUser(func(u core.User) bool { return strings.EqualFold(u.Username, username) })
}

func (s *Store) UserByEmail(_ context.Context, email string) (core.User, error) {
	return s.findUser(func(u core.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *Store) findUser(match func(core.User) bool) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) UpdateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return core.ErrNotFound
	}
	for id, existing := range s.users {
		if id == u.ID {
			continue
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return core.ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return core.ErrEmailTaken
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) CountUsers(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *Store) ListUsers(_ context.Context, limit int) ([]core.User, error) {
	s.mu.Lock()
	out := make([]core.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) AddExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) ListExpenses(_ context.Context, ownerID int64) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Expense{}
	for _, e := range s.expenses {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteExpense(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.expenses {
		if e.ID == id && e.OwnerID == ownerID {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) TotalExpenseVolume(context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total core.Money
	for _, e := range s.expenses {
		total = total.Add(e.Amount)
	}
	return total, nil
}

func (s *Store) AddIncome(_ context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	in.ID = s.id()
	s.incomes = append(s.incomes, in)
	return in, nil
}

func (s *Store) ListIncomes(_ context.Context, ownerID int64) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Income{}
	for _, in := range s.incomes {
		if in.OwnerID == ownerID {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteIncome(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, in := range s.incomes {
		if in.ID == id && in.OwnerID == ownerID {
			s.incomes = append(s.incomes[:i], s.incomes[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := budgetKey{b.OwnerID, b.Category, b.Month}
	for i, existing := range s.budgets {
		if (budgetKey{existing.OwnerID, existing.Category, existing.Month}) == key {
			s.budgets[i].Amount = b.Amount
			return nil
		}
	}
	s.budgets = append(s.budgets, b)
	return nil
}

func (s *Store) ListBudgets(_ context.Context, ownerID int64, month core.MonthKey) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Budget{}
	for _, b := range s.budgets {
		if b.OwnerID == ownerID && b.Month == month {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) AddRecurring(_ context.Context, r core.RecurringExpense) (core.RecurringExpense, error) {
	if err := r.Validate(); err != nil {
		return core.RecurringExpense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	s.recurring[r.ID] = r
	return r, nil
}

func (s *Store) ListRecurring(_ context.Context, ownerID int64) ([]core.RecurringExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.RecurringExpense{}
	for _, r := range s.recurring {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteRecurring(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recurring[id]
	if !ok || r.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.recurring, id)
	return nil
}

func (s *Store) ListDueRecurring(_ context.Context, asOf core.Date) ([]core.RecurringExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RecurringExpense
	for _, r := range s.recurring {
		if !r.NextDueDate.After(asOf.Time) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) RecordRecurringRun(_ context.Context, templateID int64, e core.Expense, next core.Date) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recurring[templateID]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	if !r.NextDueDate.Equal(e.Date.Time) {
		return core.Expense{}, core.ErrRecurringAdvanced
	}
	e.ID = s.id()
	s.expenses = append(s.expenses, e)
	r.NextDueDate = next
	s.recurring[templateID] = r
	return e, nil
}

func (s *Store) GetFund(_ context.Context, ownerID int64) (core.EmergencyFund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.funds[ownerID]
	if !ok {
		f = core.EmergencyFund{OwnerID: ownerID}
		s.funds[ownerID] = f
	}
	return f, nil
}

func (s *Store) SaveFund(_ context.Context, f core.EmergencyFund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funds[f.OwnerID] = f
	return nil
}

func (s *Store) AddFeedback(_ context.Context, fb core.Feedback) (core.Feedback, error) {
	if err := fb.Validate(); err != nil {
		return core.Feedback{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fb.ID = s.id()
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = s.now().UTC()
	}
	s.feedback = append(s.feedback, fb)
	return fb, nil
}

func (s *Store) ListFeedback(_ context.Context, limit int) ([]core.Feedback, error) {
	s.mu.Lock()
	out := append([]core.Feedback{}, s.feedback...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountFeedback(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.feedback)), nil
}
