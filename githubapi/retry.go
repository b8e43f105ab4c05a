package githubapi

import (
	"context"
	"log"
	"time"
)

// RetryPolicy is the single retry discipline applied to every request path:
// a bounded attempt count with exponentially growing, capped delays, gated
// by a retryable-error predicate.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Retryable   func(error) bool
}

// DefaultRetryPolicy retries connection-level failures three times.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
		Retryable:   func(error) bool { return true },
	}
}

// Delay returns the backoff before the given zero-based retry attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay << attempt
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do runs fn until it succeeds, returns a non-retryable error, or exhausts
// MaxAttempts. The terminal retryable error is wrapped in *TransientError.
func (p RetryPolicy) Do(ctx context.Context, sleep func(context.Context, time.Duration) error, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		delay := p.Delay(attempt)
		log.Printf("githubapi: transient failure (attempt %d/%d), retrying in %s: %v", attempt+1, attempts, delay, err)
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
	}
	return &TransientError{Attempts: attempts, Err: err}
}
