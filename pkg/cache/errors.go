package cache

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff configures Retry.
type Backoff struct {
	Attempts int           // Total attempts including the first (default 3)
	Delay    time.Duration // Delay before the second attempt, doubled after each retry (default 1s)
}

// DefaultBackoff is what the mapping stores start with.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Retry calls fn until it succeeds, returns a non-retryable error, or the
// attempts are used up. Only errors wrapped with Retryable trigger retries.
// The last error is returned unwrapped from its RetryableError so callers see
// the original cause.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := b.Attempts
	if attempts <= 0 {
		attempts = DefaultBackoff.Attempts
	}
	delay := b.Delay
	if delay <= 0 {
		delay = DefaultBackoff.Delay
	}
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	var re *RetryableError
	if errors.As(lastErr, &re) {
		return re.Err
	}
	return lastErr
}
