package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Code: ErrConflict, Message: "auto-sync is already running"}
	want := "CONFLICT: auto-sync is already running"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("Sheet", "Sheet9")
	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Message != "Sheet 'Sheet9' not found" {
		t.Errorf("Message = %q, want %q", err.Message, "Sheet 'Sheet9' not found")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("Invalid request",
		FieldError{Field: "spreadsheet_id", Message: "required"},
		FieldError{Field: "db_config.table_name", Message: "required"},
	)
	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if len(err.Details) != 2 {
		t.Errorf("Details length = %d, want 2", len(err.Details))
	}
}

func TestIntervalOutOfRange(t *testing.T) {
	err := IntervalOutOfRange(0, time.Minute, 24*time.Hour)
	if err.Field != "interval" {
		t.Errorf("Field = %q, want interval", err.Field)
	}
	if !strings.Contains(err.Error(), "0s is outside the allowed range [1m0s, 24h0m0s]") {
		t.Errorf("Error() = %q", err.Error())
	}

	var target *InvalidConfigurationError
	if !errors.As(fmt.Errorf("start: %w", err), &target) {
		t.Error("errors.As should find InvalidConfigurationError through wrapping")
	}
}

func TestFetchAndWriteErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	fe := &FetchError{SourceID: "sheet-1", Sheet: "Sheet1", Err: cause}
	if !errors.Is(fe, cause) {
		t.Error("FetchError should unwrap to its cause")
	}
	if fe.Error() != "error connecting to Google Sheets: boom" {
		t.Errorf("FetchError.Error() = %q", fe.Error())
	}

	we := &WriteError{Database: "db", Table: "t", Err: cause}
	if !errors.Is(we, cause) {
		t.Error("WriteError should unwrap to its cause")
	}
	if we.Error() != "error syncing to database: boom" {
		t.Errorf("WriteError.Error() = %q", we.Error())
	}
}

func TestErrSchedulerConflict_Wrapped(t *testing.T) {
	err := fmt.Errorf("start auto-sync: %w", ErrSchedulerConflict)
	if !errors.Is(err, ErrSchedulerConflict) {
		t.Error("errors.Is should match ErrSchedulerConflict")
	}
}
