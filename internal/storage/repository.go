package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

// timestampLayout keeps stored timestamps fixed-width so they sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

type rowScanner interface {
	Scan(dest ...any) error
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// uniqueViolation maps SQLite unique constraint failures on users to domain errors.
func uniqueViolation(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "users.username"):
		return core.ErrUsernameTaken
	case strings.Contains(msg, "users.email"):
		return core.ErrEmailTaken
	}
	return nil
}

func parseDate(s string) (core.Date, error) {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("stored date: %w", err)
	}
	return d, nil
}

// --- users ---

const userColumns = "id, username, email, password_hash, user_type, is_admin, joined_at"

func scanUser(row rowScanner) (core.User, error) {
	var (
		u      core.User
		joined string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.UserType, &u.IsAdmin, &joined); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrNotFound
		}
		return core.User{}, err
	}
	t, err := time.Parse(timestampLayout, joined)
	if err != nil {
		return core.User{}, fmt.Errorf("stored joined_at: %w", err)
	}
	u.JoinedAt = t
	return u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.JoinedAt.IsZero() {
		u.JoinedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, user_type, is_admin, joined_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.UserType, u.IsAdmin, u.JoinedAt.Format(timestampLayout))
	if err != nil {
		if derr := uniqueViolation(err); derr != nil {
			return core.User{}, derr
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO emergency_funds (owner_id) VALUES (?)`, u.ID); err != nil {
		return core.User{}, fmt.Errorf("insert emergency fund: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.User{}, fmt.Errorf("commit user: %w", err)
	}

	slog.InfoContext(ctx, "User saved to SQLite", "id", u.ID, "username", u.Username)
	return u, nil
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (core.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) UserByUsername(ctx context.Context, username string) (core.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, password_hash = ?, user_type = ?, is_admin = ? WHERE id = ?`,
		u.Username, u.Email, u.PasswordHash, u.UserType, u.IsAdmin, u.ID)
	if err != nil {
		if derr := uniqueViolation(err); derr != nil {
			return derr
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *SQLiteRepository) ListUsers(ctx context.Context, limit int) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []core.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// --- expenses ---

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return insertExpense(ctx, r.db, e)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertExpense(ctx context.Context, db execer, e core.Expense) (core.Expense, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO expenses (owner_id, amount_cents, category, payment_method, description, date) VALUES (?, ?, ?, ?, ?, ?)`,
		e.OwnerID, e.Amount.Cents, e.Category, e.PaymentMethod, e.Description, e.Date.String())
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return core.Expense{}, fmt.Errorf("expense id: %w", err)
	}
	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"owner_id", e.OwnerID,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String())
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, ownerID int64) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, amount_cents, category, payment_method, description, date
		 FROM expenses WHERE owner_id = ? ORDER BY date DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		var (
			e    core.Expense
			date string
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Amount.Cents, &e.Category, &e.PaymentMethod, &e.Description, &date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) TotalExpenseVolume(ctx context.Context) (core.Money, error) {
	cents, err := r.count(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses`)
	return core.Money{Cents: cents}, err
}

// --- incomes ---

func (r *SQLiteRepository) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (owner_id, amount_cents, source, date) VALUES (?, ?, ?, ?)`,
		in.OwnerID, in.Amount.Cents, in.Source, in.Date.String())
	if err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}
	if in.ID, err = res.LastInsertId(); err != nil {
		return core.Income{}, fmt.Errorf("income id: %w", err)
	}
	return in, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, ownerID int64) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, amount_cents, source, date FROM incomes WHERE owner_id = ? ORDER BY date DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	incomes := []core.Income{}
	for rows.Next() {
		var (
			in   core.Income
			date string
		)
		if err := rows.Scan(&in.ID, &in.OwnerID, &in.Amount.Cents, &in.Source, &date); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		if in.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return requireAffected(res)
}

// --- budgets ---

func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (owner_id, category, amount_cents, month) VALUES (?, ?, ?, ?)
		 ON CONFLICT (owner_id, category, month) DO UPDATE SET amount_cents = excluded.amount_cents`,
		b.OwnerID, b.Category, b.Amount.Cents, b.Month.String())
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, ownerID int64, month core.MonthKey) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, amount_cents FROM budgets WHERE owner_id = ? AND month = ? ORDER BY id`, ownerID, month.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []core.Budget{}
	for rows.Next() {
		b := core.Budget{OwnerID: ownerID, Month: month}
		if err := rows.Scan(&b.Category, &b.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// --- recurring expenses ---

func (r *SQLiteRepository) AddRecurring(ctx context.Context, rec core.RecurringExpense) (core.RecurringExpense, error) {
	if err := rec.Validate(); err != nil {
		return core.RecurringExpense{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_expenses (owner_id, description, amount_cents, category, frequency, next_due_date) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.OwnerID, rec.Description, rec.Amount.Cents, rec.Category, string(rec.Frequency), rec.NextDueDate.String())
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("insert recurring expense: %w", err)
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return core.RecurringExpense{}, fmt.Errorf("recurring expense id: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) queryRecurring(ctx context.Context, query string, args ...any) ([]core.RecurringExpense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	defer rows.Close()

	out := []core.RecurringExpense{}
	for rows.Next() {
		var (
			rec       core.RecurringExpense
			frequency string
			due       string
		)
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Description, &rec.Amount.Cents, &rec.Category, &frequency, &due); err != nil {
			return nil, fmt.Errorf("scan recurring expense: %w", err)
		}
		rec.Frequency = core.Frequency(frequency)
		if rec.NextDueDate, err = parseDate(due); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

const recurringColumns = "id, owner_id, description, amount_cents, category, frequency, next_due_date"

func (r *SQLiteRepository) ListRecurring(ctx context.Context, ownerID int64) ([]core.RecurringExpense, error) {
	return r.queryRecurring(ctx, `SELECT `+recurringColumns+` FROM recurring_expenses WHERE owner_id = ? ORDER BY id`, ownerID)
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_expenses WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete recurring expense: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) ListDueRecurring(ctx context.Context, asOf core.Date) ([]core.RecurringExpense, error) {
	return r.queryRecurring(ctx, `SELECT `+recurringColumns+` FROM recurring_expenses WHERE next_due_date <= ? ORDER BY id`, asOf.String())
}

func (r *SQLiteRepository) RecordRecurringRun(ctx context.Context, templateID int64, e core.Expense, next core.Date) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE recurring_expenses SET next_due_date = ? WHERE id = ? AND next_due_date = ?`,
		next.String(), templateID, e.Date.String())
	if err != nil {
		return core.Expense{}, fmt.Errorf("advance recurring expense: %w", err)
	}
	if err := requireAffected(res); err != nil {
		var exists int
		if qerr := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM recurring_expenses WHERE id = ?`, templateID).Scan(&exists); qerr != nil {
			return core.Expense{}, fmt.Errorf("check recurring expense: %w", qerr)
		}
		if exists > 0 {
			return core.Expense{}, core.ErrRecurringAdvanced
		}
		return core.Expense{}, err
	}
	created, err := insertExpense(ctx, tx, e)
	if err != nil {
		return core.Expense{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit recurring run: %w", err)
	}
	return created, nil
}

// --- emergency funds ---

func (r *SQLiteRepository) GetFund(ctx context.Context, ownerID int64) (core.EmergencyFund, error) {
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO emergency_funds (owner_id) VALUES (?)`, ownerID); err != nil {
		return core.EmergencyFund{}, fmt.Errorf("ensure emergency fund: %w", err)
	}
	f := core.EmergencyFund{OwnerID: ownerID}
	err := r.db.QueryRowContext(ctx,
		`SELECT target_amount_cents, current_amount_cents, alert_threshold_cents, monthly_goal_cents
		 FROM emergency_funds WHERE owner_id = ?`, ownerID).
		Scan(&f.TargetAmount.Cents, &f.CurrentAmount.Cents, &f.AlertThreshold.Cents, &f.MonthlyGoal.Cents)
	if err != nil {
		return core.EmergencyFund{}, fmt.Errorf("get emergency fund: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) SaveFund(ctx context.Context, f core.EmergencyFund) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO emergency_funds (owner_id, target_amount_cents, current_amount_cents, alert_threshold_cents, monthly_goal_cents)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (owner_id) DO UPDATE SET
		   target_amount_cents = excluded.target_amount_cents,
		   current_amount_cents = excluded.current_amount_cents,
		   alert_threshold_cents = excluded.alert_threshold_cents,
		   monthly_goal_cents = excluded.monthly_goal_cents`,
		f.OwnerID, f.TargetAmount.Cents, f.CurrentAmount.Cents, f.AlertThreshold.Cents, f.MonthlyGoal.Cents)
	if err != nil {
		return fmt.Errorf("save emergency fund: %w", err)
	}
	return nil
}

// --- feedback ---

func (r *SQLiteRepository) AddFeedback(ctx context.Context, fb core.Feedback) (core.Feedback, error) {
	if err := fb.Validate(); err != nil {
		return core.Feedback{}, err
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (username, rating, message, created_at) VALUES (?, ?, ?, ?)`,
		fb.Username, fb.Rating, fb.Message, fb.CreatedAt.Format(timestampLayout))
	if err != nil {
		return core.Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}
	if fb.ID, err = res.LastInsertId(); err != nil {
		return core.Feedback{}, fmt.Errorf("feedback id: %w", err)
	}
	return fb, nil
}

func (r *SQLiteRepository) ListFeedback(ctx context.Context, limit int) ([]core.Feedback, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, rating, message, created_at FROM feedback ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	out := []core.Feedback{}
	for rows.Next() {
		var (
			fb      core.Feedback
			created string
		)
		if err := rows.Scan(&fb.ID, &fb.Username, &fb.Rating, &fb.Message, &created); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		if fb.CreatedAt, err = time.Parse(timestampLayout, created); err != nil {
			return nil, fmt.Errorf("stored created_at: %w", err)
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CountFeedback(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM feedback`)
}

func (r *SQLiteRepository) count(ctx context.Context, query string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
