package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared by the client core and the backend.
type ErrorCode string

const (
	// ErrCodeAuth covers invalid credentials, weak passwords and duplicate accounts.
	// The message comes from the identity provider and is shown verbatim.
	ErrCodeAuth ErrorCode = "AUTH_FAILURE"
	// ErrCodeSessionAbsent is resolved by a redirect and never displayed.
	ErrCodeSessionAbsent ErrorCode = "SESSION_ABSENT"
	// ErrCodeRemote marks a failed record store or provider round trip.
	ErrCodeRemote ErrorCode = "REMOTE_FAILURE"
	// ErrCodeValidation is raised before any remote call is issued.
	ErrCodeValidation ErrorCode = "VALIDATION"

	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound    = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound    = NewError(ErrCodeNotFound, "task not found")
	ErrSessionNotFound = NewError(ErrCodeNotFound, "session not found")
	ErrSessionAbsent   = NewError(ErrCodeSessionAbsent, "no active session")
	ErrUnauthorized    = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload  = NewError(ErrCodeInvalid, "invalid payload")
	ErrEmailTaken      = NewError(ErrCodeConflict, "User already registered")
	ErrBadCredentials  = NewError(ErrCodeAuth, "Invalid login credentials")
	ErrTitleRequired   = NewError(ErrCodeValidation, "Task title is required")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf returns the classification of err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}

// MessageOf returns the user-facing message of err without the wrapped cause.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Message != "" {
		return dErr.Message
	}
	return err.Error()
}
