package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"spendwise/internal/auth"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/notify"
	"spendwise/internal/store"
)

// AccountConfig holds the account settings that come from the environment.
type AccountConfig struct {
	// ResetBaseURL is the page that receives ?reset_token=.
	ResetBaseURL string
	// Admins lists usernames granted the admin flag at registration.
	Admins []string
}

// AccountService owns registration, sign-in and credential changes.
type AccountService struct {
	users    store.UserStore
	tokens   *auth.Issuer
	notifier notify.Notifier
	cfg      AccountConfig
	logger   *log.Logger
}

func NewAccountService(users store.UserStore, tokens *auth.Issuer, notifier notify.Notifier, cfg AccountConfig, logger *log.Logger) *AccountService {
	return &AccountService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.WithComponent(log.ComponentAuth),
	}
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

// Session is the result of a successful login.
type Session struct {
	Token string
	User  core.User
}

func (s *AccountService) Register(ctx context.Context, r Registration) (core.User, error) {
	u := core.User{
		Username: strings.TrimSpace(r.Username),
		Email:    strings.TrimSpace(r.Email),
		UserType: strings.TrimSpace(r.UserType),
	}
	if u.UserType == "" {
		u.UserType = core.UserTypeIndividual
	}
	for _, err := range []error{
		core.ValidateUsername(u.Username),
		core.ValidateEmail(u.Email),
		core.ValidatePassword(r.Password),
		core.ValidateUserType(u.UserType),
	} {
		if err != nil {
			return core.User{}, err
		}
	}

	hash, err := auth.HashPassword(r.Password)
	if err != nil {
		return core.User{}, err
	}
	u.PasswordHash = hash
	u.IsAdmin = s.isAdmin(u.Username)

	u, err = s.users.CreateUser(ctx, u)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User registered", log.NewFields().WithUser(u.ID, u.Username).ToSlice()...)

	s.emit(ctx, notify.Event{Kind: notify.KindWelcome, Recipient: u.Email, Username: u.Username})
	return u, nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, core.ErrNotFound) {
		return Session{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		s.logger.WarnContext(ctx, "Login rejected", log.NewFields().
			WithUser(u.ID, u.Username).
			WithErrorType(log.ErrorTypeAuth).ToSlice()...)
		return Session{}, core.ErrInvalidCredentials
	}
	token, err := s.tokens.AccessToken(u)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: u}, nil
}

// ForgotPassword never reveals whether the email belongs to an account.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, core.ErrNotFound) {
		s.logger.DebugContext(ctx, "Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	token, err := s.tokens.ResetToken(u)
	if err != nil {
		return err
	}
	s.emit(ctx, notify.Event{
		Kind:      notify.KindPasswordReset,
		Recipient: u.Email,
		Username:  u.Username,
		Link:      s.resetLink(token),
	})
	return nil
}

func (s *AccountService) resetLink(token string) string {
	sep := "?"
	if strings.Contains(s.cfg.ResetBaseURL, "?") {
		sep = "&"
	}
	return s.cfg.ResetBaseURL + sep + "reset_token=" + url.QueryEscape(token)
}

// ResetPassword consumes a reset token. The new hash invalidates the token
// itself together with every access token issued before it.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	sub, err := s.tokens.ParseReset(token)
	if err != nil {
		return err
	}
	if err := core.ValidatePassword(newPassword); err != nil {
		return err
	}
	u, err := s.users.UserByID(ctx, sub.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return auth.ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if !sub.Current(u) {
		return auth.ErrInvalidToken
	}
	if err := s.setPassword(ctx, u, newPassword); err != nil {
		return err
	}
	s.emit(ctx, notify.Event{Kind: notify.KindPasswordResetDone, Recipient: u.Email, Username: u.Username})
	return nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	u, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return ErrIncorrectPassword
	}
	if err := core.ValidatePassword(next); err != nil {
		return err
	}
	if err := s.setPassword(ctx, u, next); err != nil {
		return err
	}
	s.emit(ctx, notify.Event{Kind: notify.KindPasswordChanged, Recipient: u.Email, Username: u.Username})
	return nil
}

func (s *AccountService) setPassword(ctx context.Context, u core.User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.InfoContext(ctx, "Password updated", log.NewFields().WithUser(u.ID, u.Username).ToSlice()...)
	return nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, upd core.ProfileUpdate) (core.User, error) {
	if upd.IsEmpty() {
		return core.User{}, ErrEmptyUpdate
	}
	u, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	u, err = upd.Apply(u)
	if err != nil {
		return core.User{}, err
	}
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// Authenticate resolves a bearer access token to its user. A token for a
// deleted user, or one issued before the last password change, is reported
// as invalid.
func (s *AccountService) Authenticate(ctx context.Context, token string) (core.User, error) {
	sub, err := s.tokens.ParseAccess(token)
	if err != nil {
		return core.User{}, err
	}
	u, err := s.users.UserByID(ctx, sub.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, auth.ErrInvalidToken
	}
	if err != nil {
		return core.User{}, err
	}
	if !sub.Current(u) {
		return core.User{}, auth.ErrInvalidToken
	}
	return u, nil
}

func (s *AccountService) isAdmin(username string) bool {
	for _, admin := range s.cfg.Admins {
		if strings.EqualFold(strings.TrimSpace(admin), username) {
			return true
		}
	}
	return false
}

// emit delivers ev after the state change is already stored, so a delivery
// failure is only logged.
func (s *AccountService) emit(ctx context.Context, ev notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish notification",
			log.FieldNotification, string(ev.Kind),
			log.FieldUsername, ev.Username,
			log.FieldError, err.Error())
	}
}
