// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"spendwise/internal/core"
)

const (
	purposeAccess = "access"
	purposeReset  = "reset"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the user id the token was issued to. Purpose keeps a
// password reset token from being accepted as an access token. Stamp ties
// the token to the password hash current at issue time.
type Claims struct {
	UserID  int64  `json:"user_id"`
	Purpose string `json:"purpose"`
	Stamp   string `json:"stamp"`
	jwt.RegisteredClaims
}

// Subject is the verified content of a token.
type Subject struct {
	UserID int64
	Stamp  string
}

// Current reports whether the token was issued for u's present password.
// Every password change produces a new hash, so older tokens stop matching.
func (s Subject) Current(u core.User) bool {
	return u.ID == s.UserID && s.Stamp == PasswordStamp(u.PasswordHash)
}

// PasswordStamp is a short digest of a password hash, safe to put in a token.
func PasswordStamp(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}

// Issuer signs HS256 tokens with a shared secret.
type Issuer struct {
	secret    []byte
	accessTTL time.Duration
	resetTTL  time.Duration
	now       func() time.Time
}

func NewIssuer(secret string, accessTTL, resetTTL time.Duration) *Issuer {
	return &Issuer{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		resetTTL:  resetTTL,
		now:       time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) AccessToken(u core.User) (string, error) {
	return i.sign(u, purposeAccess, i.accessTTL)
}

func (i *Issuer) ResetToken(u core.User) (string, error) {
	return i.sign(u, purposeReset, i.resetTTL)
}

// ParseAccess verifies an access token. Callers still have to check the
// subject against the stored user with Subject.Current.
func (i *Issuer) ParseAccess(token string) (Subject, error) {
	return i.parse(token, purposeAccess)
}

// ParseReset verifies a password reset token.
func (i *Issuer) ParseReset(token string) (Subject, error) {
	return i.parse(token, purposeReset)
}

func (i *Issuer) sign(u core.User, purpose string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:  u.ID,
		Purpose: purpose,
		Stamp:   PasswordStamp(u.PasswordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return ss, nil
}

func (i *Issuer) parse(token, purpose string) (Subject, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Subject{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Purpose != purpose || claims.UserID <= 0 || claims.Stamp == "" {
		return Subject{}, ErrInvalidToken
	}
	return Subject{UserID: claims.UserID, Stamp: claims.Stamp}, nil
}
