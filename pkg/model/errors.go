package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrValidation   ErrorCode = "VALIDATION_ERROR"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrConflict     ErrorCode = "CONFLICT"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrRateLimited  ErrorCode = "RATE_LIMITED"
	ErrUpstream     ErrorCode = "UPSTREAM_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// APIError is a structured error returned by the sheetsync API.
type APIError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NewValidationError creates an APIError with validation details.
func NewValidationError(msg string, details ...FieldError) *APIError {
	return &APIError{Code: ErrValidation, Message: msg, Details: details}
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}

var (
	// ErrSchedulerConflict is returned by Start while a job is already active.
	ErrSchedulerConflict = errors.New("auto-sync is already running")

	// ErrShutdownTimeout is returned by Stop when the runner did not exit in time.
	// The scheduler is still marked idle.
	ErrShutdownTimeout = errors.New("auto-sync runner did not stop before timeout")
)

// InvalidConfigurationError rejects a job spec before any state change.
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// IntervalOutOfRange builds the error for an interval outside [min, max].
func IntervalOutOfRange(got, min, max time.Duration) *InvalidConfigurationError {
	return &InvalidConfigurationError{
		Field:  "interval",
		Reason: fmt.Sprintf("%s is outside the allowed range [%s, %s]", got, min, max),
	}
}

// FetchError wraps a failure to read the source spreadsheet.
type FetchError struct {
	SourceID string
	Sheet    string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("error connecting to Google Sheets: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WriteError wraps a failure to persist a table into the destination.
type WriteError struct {
	Database string
	Table    string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("error syncing to database: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
