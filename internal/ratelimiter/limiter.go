package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by every caller that holds it.
// The PUT path uses Allow (reject immediately); webhook workers use Wait.
type Limiter struct {
	l *rate.Limiter
}

// New creates a Limiter granting perSec tokens per second with the given burst.
// A burst below 1 is raised to 1 so the limiter can ever grant a token.
func New(perSec float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{l: rate.NewLimiter(rate.Limit(perSec), burst)}
}

// Allow reports whether a token is available right now, consuming it if so.
func (l *Limiter) Allow() bool {
	return l.l.Allow()
}

// Wait blocks until a token is granted.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.l.Wait(ctx)
}
