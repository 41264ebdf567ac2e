// Package apperrors provides structured application errors with HTTP status mapping.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification via errors.Is().
var (
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
	ErrAuthentication    = errors.New("authentication failed")
	ErrTrigger           = errors.New("backup trigger failed")
	ErrNotReady          = errors.New("backup not ready")
	ErrTransferExhausted = errors.New("backup transfer failed")
	ErrInternal          = errors.New("internal error")
)

// Error provides structured error with context.
type Error struct {
	Sentinel error  // Wrapped sentinel for errors.Is() classification
	Message  string // Human-readable message
	Field    string // For validation/configuration errors (e.g., "BASE_URL")
	Attempts int    // For exhausted retry loops
	Op       string // Operation that failed (e.g., "controller.login")
	Cause    error  // Underlying error
}

// Error returns the human-readable error message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the sentinel error for errors.Is() classification.
func (e *Error) Unwrap() error {
	return e.Sentinel
}

// Validation creates a validation error for a specific field.
func Validation(field, message string) error {
	return &Error{
		Sentinel: ErrValidation,
		Message:  message,
		Field:    field,
	}
}

// Configuration creates an error for a missing or invalid setting.
func Configuration(field, message string) error {
	return &Error{
		Sentinel: ErrConfiguration,
		Message:  message,
		Field:    field,
	}
}

// Authentication creates an error for a rejected login.
func Authentication(message string) error {
	return &Error{
		Sentinel: ErrAuthentication,
		Message:  message,
		Op:       "controller.login",
	}
}

// Trigger creates an error for a rejected backup command.
func Trigger(message string) error {
	return &Error{
		Sentinel: ErrTrigger,
		Message:  message,
		Op:       "controller.triggerBackup",
	}
}

// NotReady creates an error for a poll budget that ran out.
// cause is the last attempt's failure and may be nil.
func NotReady(attempts int, cause error) error {
	return &Error{
		Sentinel: ErrNotReady,
		Message:  fmt.Sprintf("backup file did not reach the expected size within %d attempts", attempts),
		Attempts: attempts,
		Op:       "backup.awaitReady",
		Cause:    cause,
	}
}

// TransferExhausted creates an error for a transfer budget that ran out.
func TransferExhausted(attempts int, cause error) error {
	return &Error{
		Sentinel: ErrTransferExhausted,
		Message:  fmt.Sprintf("failed to store backup file after %d attempts", attempts),
		Attempts: attempts,
		Op:       "backup.fetchAndStore",
		Cause:    cause,
	}
}

// Internal creates an internal error wrapping an underlying cause.
func Internal(op string, cause error) error {
	return &Error{
		Sentinel: ErrInternal,
		Message:  fmt.Sprintf("%s: %v", op, cause),
		Op:       op,
		Cause:    cause,
	}
}
