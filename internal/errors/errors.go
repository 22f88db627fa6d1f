package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeInvalidCredentials indicates the identity provider rejected the
	// supplied credentials (bad username/password, or wrong old password on a
	// password change).
	ErrCodeInvalidCredentials ErrorCode = "invalid_credentials"
	// ErrCodePasswordPolicy indicates a new password was rejected by the
	// provider's password policy.
	ErrCodePasswordPolicy ErrorCode = "password_policy"
	// ErrCodeChallengeMismatch indicates an auth operation was invoked while
	// the session was in the wrong challenge state. This is a caller bug,
	// not a recoverable user-facing condition.
	ErrCodeChallengeMismatch ErrorCode = "challenge_mismatch"
	// ErrCodePrecondition indicates an operation precondition was violated
	// (e.g., previous() at page 0, loading a page with no recorded cursor).
	// Like ChallengeMismatch, this is a contract violation by the caller.
	ErrCodePrecondition ErrorCode = "precondition"
	// ErrCodeProvider indicates an opaque upstream provider or network failure.
	ErrCodeProvider ErrorCode = "provider"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message, safe to surface to callers
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// InvalidCredentials creates a new InvalidCredentials error.
func InvalidCredentials(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidCredentials,
		Message: message,
	}
}

// PasswordPolicy creates a new PasswordPolicy error.
func PasswordPolicy(message string) *AppError {
	return &AppError{
		Code:    ErrCodePasswordPolicy,
		Message: message,
	}
}

// ChallengeMismatch creates a new ChallengeMismatch error.
func ChallengeMismatch(message string) *AppError {
	return &AppError{
		Code:    ErrCodeChallengeMismatch,
		Message: message,
	}
}

// ChallengeMismatchf creates a new ChallengeMismatch error with formatted message.
func ChallengeMismatchf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeChallengeMismatch,
		Message: fmt.Sprintf(format, args...),
	}
}

// Precondition creates a new Precondition error.
func Precondition(message string) *AppError {
	return &AppError{
		Code:    ErrCodePrecondition,
		Message: message,
	}
}

// Preconditionf creates a new Precondition error with formatted message.
func Preconditionf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodePrecondition,
		Message: fmt.Sprintf(format, args...),
	}
}

// Provider creates a new Provider error.
func Provider(message string) *AppError {
	return &AppError{
		Code:    ErrCodeProvider,
		Message: message,
	}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: message,
	}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsInvalidCredentials checks if an error is an InvalidCredentials error.
func IsInvalidCredentials(err error) bool {
	return isCode(err, ErrCodeInvalidCredentials)
}

// IsPasswordPolicy checks if an error is a PasswordPolicy error.
func IsPasswordPolicy(err error) bool {
	return isCode(err, ErrCodePasswordPolicy)
}

// IsChallengeMismatch checks if an error is a ChallengeMismatch error.
func IsChallengeMismatch(err error) bool {
	return isCode(err, ErrCodeChallengeMismatch)
}

// IsPrecondition checks if an error is a Precondition error.
func IsPrecondition(err error) bool {
	return isCode(err, ErrCodePrecondition)
}

// IsProvider checks if an error is a Provider error.
func IsProvider(err error) bool {
	return isCode(err, ErrCodeProvider)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// UserMessage returns the Message from an AppError, or a generic fallback for
// unclassified errors so raw provider detail never leaks to end users.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong. Please try again."
}
