package sheets

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"
)

var (
	// ErrNoData is returned when the requested range holds no values.
	ErrNoData = errors.New("no data found in the specified sheet")

	// ErrInvalidCredentials is returned when the service-account key is
	// incomplete or cannot be parsed.
	ErrInvalidCredentials = errors.New("sheets: invalid service account credentials")

	// ErrUnauthorized indicates the credentials were rejected.
	ErrUnauthorized = errors.New("sheets: unauthorised (invalid credentials)")

	// ErrForbidden indicates the service account cannot read the spreadsheet.
	ErrForbidden = errors.New("sheets: forbidden (spreadsheet not shared with service account)")

	// ErrNotFound indicates the spreadsheet or sheet does not exist.
	ErrNotFound = errors.New("sheets: spreadsheet or sheet not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("sheets: rate limit exceeded")
)

// IsRateLimited reports whether err is a 429 from the Sheets API.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// WrapError maps a Google API error onto this package's sentinels, keeping
// the server message. Other errors are returned unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	var sentinel error
	switch gerr.Code {
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = ErrForbidden
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	default:
		return err
	}
	if gerr.Message == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, gerr.Message)
}

// retryAfter reads the Retry-After header (seconds) of a Google API error.
func retryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
