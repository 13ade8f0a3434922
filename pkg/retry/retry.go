// Package retry repeats operations against backing services that may not
// be ready yet, such as a Redis cache or a MongoDB artifact store started
// alongside dotview.
package retry

import (
	"context"
	"errors"
	"time"
)

// Default attempt count and initial delay used by [Do].
const (
	DefaultAttempts = 3
	DefaultDelay    = 200 * time.Millisecond
)

// TransientError marks a failure worth another attempt.
type TransientError struct{ Err error }

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a [TransientError]. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// Retry calls fn up to attempts times, doubling delay after each transient
// failure. Errors not wrapped with [Transient] end the loop at once. The
// returned error is the last one from fn with the transient wrapper
// removed, or ctx.Err() when ctx ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		var t *TransientError
		if !errors.As(err, &t) {
			return err
		}
		lastErr = t.Err

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// Do is [Retry] with [DefaultAttempts] and [DefaultDelay].
func Do(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultAttempts, DefaultDelay, fn)
}
