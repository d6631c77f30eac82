// Package ratelimit provides the shared call gate that every outbound
// YouTube request passes through.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// ErrAcquireTimeout is returned when waiting for a permit would exceed the
// configured acquire timeout budget.
var ErrAcquireTimeout = errors.New("ratelimit: acquire timeout")

// Limiter enforces a maximum calls-per-second rate across all callers.
// It is a token bucket with a burst of one, so the interval between two
// granted permits is never shorter than 1/rate. Reservation and clock
// update happen atomically inside the underlying limiter, which makes
// Acquire safe for concurrent use.
type Limiter struct {
	lim     *rate.Limiter
	timeout time.Duration
}

// New creates a limiter allowing callsPerSec calls per second.
// acquireTimeout bounds how long a single Acquire may wait for a permit;
// zero means wait indefinitely (subject to context cancellation).
func New(callsPerSec float64, acquireTimeout time.Duration) *Limiter {
	if callsPerSec <= 0 {
		callsPerSec = 1
	}
	return &Limiter{
		lim:     rate.NewLimiter(rate.Limit(callsPerSec), 1),
		timeout: acquireTimeout,
	}
}

// Acquire blocks until a permit is available, then returns nil.
// It returns ErrAcquireTimeout if the required wait exceeds the acquire
// timeout, or the context error if ctx is canceled while waiting.
// A nil *Limiter performs no limiting.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil || l.lim == nil {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	reservation := l.lim.Reserve()
	if !reservation.OK() {
		return ErrAcquireTimeout
	}

	delay := reservation.Delay()
	if l.timeout > 0 && delay > l.timeout {
		reservation.Cancel()
		return ErrAcquireTimeout
	}
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		reservation.Cancel()
		return ctx.Err()
	}
}

// Rate returns the configured calls-per-second rate.
func (l *Limiter) Rate() float64 {
	if l == nil || l.lim == nil {
		return 0
	}
	return float64(l.lim.Limit())
}

// AcquireTimeout returns the configured per-acquire wait budget.
func (l *Limiter) AcquireTimeout() time.Duration {
	if l == nil {
		return 0
	}
	return l.timeout
}
