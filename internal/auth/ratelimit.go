package auth

import (
	"context"
	"net/http"

	"github.com/ricirt/healthcheck/internal/domain"
	"github.com/ricirt/healthcheck/internal/ratelimiter"
)

// RateLimited denies requests once the shared limiter runs out of tokens,
// before next is consulted. A denial carries domain.ErrRateLimited.
func RateLimited(next Filter, limiter *ratelimiter.Limiter) Filter {
	return FilterFunc(func(ctx context.Context, r *http.Request) (bool, error) {
		if !limiter.Allow() {
			return false, domain.ErrRateLimited
		}
		return next.Authorize(ctx, r)
	})
}
