package core

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	UserTypeIndividual = "individual"
	UserTypeBusiness   = "business"
	UserTypeStudent    = "student"
)

type (
	Frequency string

	Income struct {
		ID      int64  `json:"id"`
		OwnerID int64  `json:"-"`
		Amount  Money  `json:"amount"`
		Source  string `json:"source"`
		Date    Date   `json:"date"`
	}

	Expense struct {
		ID            int64  `json:"id"`
		OwnerID       int64  `json:"-"`
		Amount        Money  `json:"amount"`
		Category      string `json:"category"`
		PaymentMethod string `json:"payment_method,omitempty"`
		Description   string `json:"description"`
		Date          Date   `json:"date"`
	}

	// Budget is the spending target for one category in one month.
	// At most one exists per (owner, category, month).
	Budget struct {
		OwnerID  int64    `json:"-"`
		Category string   `json:"category"`
		Amount   Money    `json:"amount"`
		Month    MonthKey `json:"month"`
	}

	RecurringExpense struct {
		ID          int64     `json:"id"`
		OwnerID     int64     `json:"-"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		Frequency   Frequency `json:"frequency"`
		NextDueDate Date      `json:"next_due_date"`
	}

	EmergencyFund struct {
		OwnerID        int64 `json:"-"`
		TargetAmount   Money `json:"target_amount"`
		CurrentAmount  Money `json:"current_amount"`
		AlertThreshold Money `json:"alert_threshold"`
		MonthlyGoal    Money `json:"monthly_goal"`
	}

	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		UserType     string
		IsAdmin      bool
		JoinedAt     time.Time
	}

	Feedback struct {
		ID        int64
		Username  string
		Rating    int
		Message   string
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptySource        = errors.New("empty source")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrEmptyMessage       = errors.New("empty message")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidUserType    = errors.New("invalid user type")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrFieldTooLong       = errors.New("field too long")
	// ErrRecurringAdvanced reports that another run already moved the
	// template past the due date being settled.
	ErrRecurringAdvanced = errors.New("recurring expense already advanced")
)

// Valid reports whether f is one of the supported recurrence frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptySource
	}
	if len(i.Source) > 50 {
		return fmt.Errorf("%w: source (max 50 characters)", ErrFieldTooLong)
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Category) > 50 {
		return fmt.Errorf("%w: category (max 50 characters)", ErrFieldTooLong)
	}
	if len(e.PaymentMethod) > 50 {
		return fmt.Errorf("%w: payment method (max 50 characters)", ErrFieldTooLong)
	}
	if len(e.Description) > 200 {
		return fmt.Errorf("%w: description (max 200 characters)", ErrFieldTooLong)
	}
	return nil
}

func (b Budget) Validate() error {
	if b.Month.IsZero() {
		return ErrInvalidMonth
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (r RecurringExpense) Validate() error {
	if err := r.NextDueDate.Validate(); err != nil {
		return fmt.Errorf("next due date: %w", err)
	}
	if !r.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if len(r.Description) > 100 {
		return fmt.Errorf("%w: description (max 100 characters)", ErrFieldTooLong)
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	return r.Amount.Validate()
}

// ProgressPercentage is current/target as a percentage rounded to one
// decimal, 0 when no target is set.
func (f EmergencyFund) ProgressPercentage() float64 {
	return Percentage(f.CurrentAmount, f.TargetAmount)
}

func (fb Feedback) Validate() error {
	if fb.Rating < 1 || fb.Rating > 5 {
		return ErrInvalidRating
	}
	if strings.TrimSpace(fb.Message) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// ValidateUsername checks length and allowed characters.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 80 {
		return ErrInvalidUsername
	}
	for _, r := range username {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum && r != '_' && r != '.' && r != '-' {
			return ErrInvalidUsername
		}
	}
	return nil
}

func ValidateEmail(email string) error {
	if len(email) > 120 {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrWeakPassword
	}
	return nil
}

func ValidateUserType(userType string) error {
	switch userType {
	case UserTypeIndividual, UserTypeBusiness, UserTypeStudent:
		return nil
	}
	return ErrInvalidUserType
}
