package githubapi

import (
	"fmt"
	"time"
)

// TransientError wraps a connection-level failure that survived every retry
// attempt.
type TransientError struct {
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("githubapi: request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// RateLimitError reports quota exhaustion whose reset lies too far out to
// wait for in place.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("githubapi: rate limit exceeded, resets at %s", e.ResetAt.UTC().Format(time.RFC3339))
}

// UpstreamError is a non-rate-limit HTTP error status. Never retried.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("githubapi: upstream returned %d: %s", e.Status, e.Body)
}
