package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrRateLimit means the vendor answered 429. RetryAfter is zero when the
// vendor sent no hint.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("llm rate limited, retry in %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("llm rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means a structured reply was not JSON or did not match
// the request schema. Content holds what the model sent.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("llm reply rejected: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers vendor outages, network failures and
// anything else that is not the caller's fault.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "llm provider unavailable"
	}
	return fmt.Sprintf("llm provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means a structured reply was cut off by MaxTokens.
// Retrying with the same budget gives the same result.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("llm reply cut off at max tokens after %d bytes", len(e.Content))
}

// classifyStatus maps a vendor HTTP status to one of the errors above.
// Client errors other than 429 are returned as they are: a bad key or a
// rejected request will not heal on retry.
func classifyStatus(status int, retryAfter time.Duration, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter, Err: err}
	case status >= 400 && status < 500:
		return fmt.Errorf("llm request refused (%d): %w", status, err)
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// retryable reports whether another attempt could succeed. An invalid
// reply may be a one-off, so it is retryable while invalidSeen is false.
func retryable(err error, invalidSeen bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var (
		truncated *ErrMaxTokensExceeded
		invalid   *ErrInvalidResponse
		limited   *ErrRateLimit
		down      *ErrProviderUnavailable
	)
	switch {
	case errors.As(err, &truncated):
		return false
	case errors.As(err, &invalid):
		return !invalidSeen
	case errors.As(err, &limited), errors.As(err, &down):
		return true
	}
	return false
}
