package types

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrMissingName   = errors.New("record has no company name in either script")
	ErrTimeout       = errors.New("request timed out")
	ErrMaxRetries    = errors.New("max retries exceeded")
	ErrEmptyResponse = errors.New("empty response body")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrNotHTML       = errors.New("response is not HTML")
)

// FetchError wraps errors that occur while fetching a page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
	RetryAfter time.Duration // populated from Retry-After header on HTTP 429
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ExtractError wraps errors that occur while extracting a container.
type ExtractError struct {
	URL      string
	Selector string
	Err      error
}

func (e *ExtractError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("extract error for %s (selector=%q): %v", e.URL, e.Selector, e.Err)
	}
	return fmt.Sprintf("extract error for %s: %v", e.URL, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// ValidationError rejects a single record; it is never fatal to a batch.
type ValidationError struct {
	RecordID string
	Field    string
	Err      error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid record %s (field %s): %v", e.RecordID, e.Field, e.Err)
	}
	return fmt.Sprintf("invalid record %s: %v", e.RecordID, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur during storage/export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
