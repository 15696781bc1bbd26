package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	// Fields carries per-field validation messages keyed by the external field name.
	Fields map[string]string
	Err    error
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

// FieldError builds a validation error bound to a single request field.
func FieldError(field, message string) *Error {
	return &Error{
		Code:    ErrCodeInvalid,
		Message: message,
		Fields:  map[string]string{field: message},
	}
}

// Common domain errors.
var (
	ErrUserNotFound     = NewError(ErrCodeNotFound, "User not found.")
	ErrReviewerNotFound = NewError(ErrCodeNotFound, "Reviewer not found.")
	ErrBoardNotFound    = NewError(ErrCodeNotFound, "Board not found.")
	ErrTaskNotFound     = NewError(ErrCodeNotFound, "Task not found.")
	ErrTokenNotFound    = NewError(ErrCodeNotFound, "token not found")
	ErrEmailNotFound    = NewError(ErrCodeNotFound, "No user with this email found")

	ErrNotAuthenticated = NewError(ErrCodeUnauthorized, "Unauthorized. The user must be logged in to access this resource.")
	ErrInvalidToken     = NewError(ErrCodeUnauthorized, "Invalid token.")

	ErrInvalidPayload      = NewError(ErrCodeInvalid, "invalid payload")
	ErrInvalidCredentials  = NewError(ErrCodeInvalid, "Invalid email or password.")
	ErrPasswordMismatch    = FieldError("repeated_password", "Passwords do not match")
	ErrReviewerIDRequired  = FieldError("reviewer_id", "reviewer_id is required.")
	ErrBoardChangeRejected = FieldError("board", "The board of a task cannot be changed.")

	ErrEmailTaken = &Error{
		Code:    ErrCodeConflict,
		Message: "This email is already taken",
		Fields:  map[string]string{"email": "This email is already taken"},
	}
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// FieldsOf returns the field messages carried by a domain error, if any.
func FieldsOf(err error) map[string]string {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Fields
	}
	return nil
}

// MessageOf returns the client-facing message of a domain error without its wrapped cause.
func MessageOf(err error) string {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Message
	}
	return err.Error()
}
