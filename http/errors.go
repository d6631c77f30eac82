package http

import (
	"fmt"
	"time"
)

// RateLimitError indicates the server rate limited the request (429/503).
type RateLimitError struct {
	// StatusCode is the HTTP status code that signaled the limit.
	StatusCode int
	// RetryAfter is the server-suggested wait, zero if absent.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (status %d): retry after %v", e.StatusCode, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited (status %d)", e.StatusCode)
}

// StatusError indicates a non-2xx HTTP response. 5xx responses are treated
// as transient and retried; 4xx responses are permanent.
type StatusError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Body is the response body, kept for error reporting.
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http error: status %d", e.StatusCode)
}

// Transient reports whether the status represents a retryable server fault.
func (e *StatusError) Transient() bool {
	return e.StatusCode >= 500
}
