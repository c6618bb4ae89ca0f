package repository

import (
	"context"
	"time"

	"github.com/ricirt/healthcheck/internal/domain"
)

// TokenRepository defines persistence operations for health update tokens.
// The pgx implementation is in pg_token_repo.go.
// Tests use a hand-written mock (mock_token_repo.go).
type TokenRepository interface {
	Create(ctx context.Context, t *domain.Token) error
	// FindActiveByHash returns domain.ErrNotFound for unknown, revoked or
	// expired tokens.
	FindActiveByHash(ctx context.Context, hash string) (*domain.Token, error)
	Revoke(ctx context.Context, id string) error
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context) ([]*domain.Token, error)
}
