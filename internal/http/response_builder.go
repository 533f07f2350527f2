// Package http provides HTTP server and handler implementations.
//
// This file holds the JSON response helpers and the single place where
// domain errors are mapped to status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"spendwise/internal/auth"
	"spendwise/internal/core"
	"spendwise/internal/export"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageBody{Message: msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// validationErrors are reported back to the client verbatim.
var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidDate,
	core.ErrInvalidMonth,
	core.ErrEmptyCategory,
	core.ErrEmptySource,
	core.ErrEmptyDescription,
	core.ErrInvalidFrequency,
	core.ErrInvalidRating,
	core.ErrEmptyMessage,
	core.ErrInvalidUsername,
	core.ErrInvalidEmail,
	core.ErrInvalidUserType,
	core.ErrWeakPassword,
	core.ErrFieldTooLong,
	core.ErrUsernameTaken,
	core.ErrEmailTaken,
	export.ErrUnsupportedFormat,
	services.ErrEmptyUpdate,
	errBadRequestBody,
}

// statusFor maps an error to its status code and client-facing message.
func statusFor(err error) (int, string) {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, capitalize(target.Error())
		}
	}
	switch {
	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, services.ErrIncorrectPassword):
		return http.StatusUnauthorized, "Incorrect current password"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusBadRequest, "Invalid or expired token"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "Unauthorized"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, services.ErrSheetsDisabled):
		return http.StatusServiceUnavailable, "Sheets export is not configured"
	case errors.Is(err, export.ErrExportFailed):
		return http.StatusInternalServerError, "Export failed"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// respondError writes the mapped error and logs anything the client cannot fix.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger := log.FromContext(r.Context())
		logger.ErrorContext(r.Context(), "Request failed",
			log.NewFields().
				WithOperation(op).
				WithError(err).
				WithErrorType(log.ErrorTypeInternal).
				ToSlice()...)
	}
	writeError(w, status, msg)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
