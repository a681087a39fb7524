package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeSessionUnavailable = "SESSION_UNAVAILABLE"
	ErrCodeScrapeDegraded     = "SCRAPE_DEGRADED"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// Validation messages returned verbatim by the count endpoint.
const (
	MsgEmptyURL    = "Please provide a profile URL"
	MsgWrongScheme = "Invalid URL format. URL must start with http:// or https://"
	MsgWrongDomain = "URL must be a Google Cloud Skills Boost public profile URL"
)

// CountError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type CountError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *CountError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CountError) Unwrap() error {
	return e.Err
}

// NewCountError creates a new CountError.
func NewCountError(code, message string, err error) *CountError {
	return &CountError{Code: code, Message: message, Err: err}
}

// Cause returns the most specific human-readable text for the error:
// the wrapped error's message when present, otherwise Message.
func (e *CountError) Cause() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// CodeOf extracts the error code from err, or ErrCodeInternal when err is
// not (and does not wrap) a *CountError.
func CodeOf(err error) string {
	var ce *CountError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeInternal
}
