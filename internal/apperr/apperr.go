// Package apperr defines the closed taxonomy of error kinds the
// catalog search core can surface, per spec §7, and maps each to an
// HTTP status without leaking stack traces or SQL to the caller.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds, matching spec §7's five error kinds.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrTimeout      = errors.New("upstream timeout")
	ErrUpstream     = errors.New("upstream failure")
	ErrInvariant    = errors.New("invariant violation")
)

// AppError is the structured error returned to HTTP handlers.
type AppError struct {
	Kind    error
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) Is(target error) bool { return errors.Is(e.Kind, target) }

// Invalid builds a 400 error for malformed input (unknown sort,
// out-of-range limit, malformed filters).
func Invalid(message string) *AppError {
	return &AppError{Kind: ErrInvalidInput, Message: message, Status: http.StatusBadRequest}
}

// NotFound builds a 404 error.
func NotFound(message string) *AppError {
	return &AppError{Kind: ErrNotFound, Message: message, Status: http.StatusNotFound}
}

// Timeout builds a 504 for a request-scoped deadline expiry.
func Timeout(err error) *AppError {
	return &AppError{Kind: ErrTimeout, Message: "request timed out", Status: http.StatusGatewayTimeout, Err: err}
}

// Upstream builds a 502 error for a failed store call. Store calls are
// not retried; the first failure is reported.
func Upstream(err error) *AppError {
	return &AppError{Kind: ErrUpstream, Message: "upstream store error", Status: http.StatusBadGateway, Err: err}
}

// Internal wraps an unexpected error as a 500 without leaking detail.
func Internal(err error) *AppError {
	return &AppError{Kind: ErrUpstream, Message: "internal error", Status: http.StatusInternalServerError, Err: err}
}

// HTTPStatus resolves the HTTP status for any error, defaulting to 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Envelope is the JSON error shape from spec §7.
type Envelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ToEnvelope renders any error as the user-visible JSON envelope.
func ToEnvelope(err error) Envelope {
	var appErr *AppError
	if errors.As(err, &appErr) {
		kind := "internal"
		switch {
		case errors.Is(appErr.Kind, ErrInvalidInput):
			kind = "invalid_input"
		case errors.Is(appErr.Kind, ErrNotFound):
			kind = "not_found"
		case errors.Is(appErr.Kind, ErrTimeout):
			kind = "timeout"
		case errors.Is(appErr.Kind, ErrUpstream):
			kind = "upstream"
		case errors.Is(appErr.Kind, ErrInvariant):
			kind = "invariant"
		}
		return Envelope{Error: kind, Message: appErr.Message}
	}
	return Envelope{Error: "internal", Message: "an internal error occurred"}
}
