// Package services orchestrates the stores, the reporting engine and the
// notification port behind the HTTP handlers and workers.
package services

import (
	"errors"
	"time"
)

// Clock supplies the current time. Production code passes time.Now.
type Clock func() time.Time

var (
	ErrForbidden         = errors.New("unauthorized")
	ErrIncorrectPassword = errors.New("current password is incorrect")
	ErrSheetsDisabled    = errors.New("sheets export is not configured")
	ErrEmptyUpdate       = errors.New("no fields to update")
)

// TrendInvalidator drops derived data cached for an owner after one of
// their records changes.
type TrendInvalidator interface {
	InvalidateOwner(ownerID int64)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateOwner(int64) {}
