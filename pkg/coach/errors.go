package coach

import (
	"errors"
	"fmt"
	"net/http"
)

// ============================================================================
// ERROR TAXONOMY
// ============================================================================
// Stable machine-readable codes with fixed HTTP status class mappings.
// Every error carries a code plus a human-readable message. DUPLICATE_EVENT
// and the not-modified polling outcome are expected, retry-safe results,
// not faults.

// Code is a stable machine-readable error code.
type Code string

const (
	CodeSessionNotFound  Code = "SESSION_NOT_FOUND"
	CodeScenarioNotFound Code = "SCENARIO_NOT_FOUND"
	CodeDuplicateEvent   Code = "DUPLICATE_EVENT"
	CodeInvalidEvent     Code = "INVALID_EVENT_ORDER"
	CodeInvalidEventType Code = "INVALID_EVENT_TYPE"
	CodeSessionNotLive   Code = "SESSION_NOT_LIVE"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// Error is the core's error type. Detector, assessor, and scorer functions
// never produce one on well-formed input; malformed input is rejected at
// the Manager boundary before reaching them.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// NewError builds a typed error with a formatted message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps a code to its fixed HTTP status class.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeSessionNotFound, CodeScenarioNotFound:
		return http.StatusNotFound
	case CodeDuplicateEvent, CodeSessionNotLive:
		return http.StatusConflict
	case CodeInvalidEvent, CodeInvalidEventType:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf extracts the machine code from any error; unexpected faults map to
// INTERNAL_ERROR.
func CodeOf(err error) Code {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return CodeInternal
}

// AsError normalizes any error into a typed *Error for boundary
// serialization.
func AsError(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Code: CodeInternal, Message: err.Error()}
}
