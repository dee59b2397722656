package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrMissingField       = New("MISSING_FIELD", http.StatusBadRequest, "required field missing")
	ErrInvalidDate        = New("INVALID_DATE", http.StatusBadRequest, "invalid date format")
	ErrInvalidSlot        = New("INVALID_SLOT", http.StatusBadRequest, "time must be a full hour between 8:00 AM and 4:00 PM")
	ErrInvalidStatus      = New("INVALID_STATUS", http.StatusBadRequest, "invalid appointment status")
	ErrInvalidTransition  = New("INVALID_TRANSITION", http.StatusBadRequest, "status transition not allowed")
	ErrRoleMismatch       = New("ROLE_MISMATCH", http.StatusBadRequest, "user does not have the expected role")
	ErrSlotConflict       = New("SLOT_CONFLICT", http.StatusConflict, "counselor already booked at that date and time")
	ErrInvalidOTP         = New("INVALID_OTP", http.StatusUnauthorized, "invalid or expired verification code")
	ErrUnavailable        = New("UNAVAILABLE", http.StatusServiceUnavailable, "service temporarily unavailable")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
