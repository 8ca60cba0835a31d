// Package retry wraps operations in a deterministic exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy controls how many times an operation is attempted and how the
// delay between attempts grows.
type Policy struct {
	// MaxAttempts is the total number of calls, first try included.
	MaxAttempts int
	// InitialDelay is the pause after the first failure.
	InitialDelay time.Duration
	// Multiplier scales the delay after each failure. 1 means constant.
	Multiplier float64
}

// Validate rejects policies that would never run or never back off.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.InitialDelay <= 0 {
		return fmt.Errorf("initial delay must be positive, got %s", p.InitialDelay)
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("multiplier must be >= 1, got %v", p.Multiplier)
	}
	return nil
}

// Retryable decides whether an error is worth another attempt.
type Retryable func(error) bool

// Do runs op under the policy. Errors the retryable predicate rejects
// are returned immediately; retryable ones are retried with delays of
// InitialDelay * Multiplier^i until MaxAttempts calls have been made.
// A nil predicate retries everything.
func Do[T any](ctx context.Context, p Policy, retryable Retryable, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0 // exact delays, exact attempt counts
	b.MaxInterval = 365 * 24 * time.Hour

	wrapped := func() (T, error) {
		v, err := op()
		if err != nil && retryable != nil && !retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	return backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.MaxAttempts)),
	)
}
