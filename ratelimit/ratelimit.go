// Package ratelimit implements the token bucket shared by all API calls
// of one service across its region workers.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// Limiter is a token bucket refilled continuously at a fixed rate.
// One Limiter is shared by every region worker of a service, so the
// combined call rate against the provider stays below rate regardless
// of concurrency. Safe for concurrent use.
type Limiter struct {
	rate  float64
	burst float64

	mu     sync.Mutex
	tokens float64
	last   time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a limiter allowing rate tokens per second with the given
// burst capacity. A non-positive burst defaults to ceil(rate). A
// non-positive rate is rejected.
func New(rate float64, burst int) (*Limiter, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("rate must be positive, got %v", rate)
	}
	b := float64(burst)
	if burst <= 0 {
		b = math.Ceil(rate)
	}
	l := &Limiter{
		rate:   rate,
		burst:  b,
		tokens: b,
		now:    time.Now,
		sleep:  sleepContext,
	}
	l.last = l.now()
	return l, nil
}

// Acquire takes n tokens, blocking until they are available or ctx is
// done. It returns how long the caller waited. Acquire(0) only refills
// the bucket and never blocks.
func (l *Limiter) Acquire(ctx context.Context, n int) (time.Duration, error) {
	l.mu.Lock()

	now := l.now()
	l.refill(now)

	need := float64(n)
	if need <= l.tokens {
		l.tokens -= need
		l.mu.Unlock()
		return 0, nil
	}

	// The deficit is reserved against the refill frontier: last is
	// pushed past the point where this caller's tokens finish refilling,
	// so a concurrent blocked caller queues behind the reservation
	// instead of spending the same future tokens.
	deficit := need - l.tokens
	l.tokens = 0
	base := l.last
	if base.Before(now) {
		base = now
	}
	ready := base.Add(time.Duration(deficit / l.rate * float64(time.Second)))
	l.last = ready
	wait := ready.Sub(now)
	l.mu.Unlock()

	if err := l.sleep(ctx, wait); err != nil {
		return wait, err
	}
	return wait, nil
}

// Tokens reports the current token count after refilling. It never blocks.
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill(l.now())
	return l.tokens
}

// refill credits tokens for the time elapsed since last, capped at burst.
// Caller must hold mu.
func (l *Limiter) refill(now time.Time) {
	elapsed := now.Sub(l.last).Seconds()
	if elapsed <= 0 {
		return
	}
	l.tokens = math.Min(l.burst, l.tokens+elapsed*l.rate)
	l.last = now
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
