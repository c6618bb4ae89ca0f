package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricirt/healthcheck/internal/domain"
)

type pgTokenRepository struct {
	pool *pgxpool.Pool
}

// NewPgTokenRepository returns a TokenRepository backed by PostgreSQL.
func NewPgTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &pgTokenRepository{pool: pool}
}

func (r *pgTokenRepository) Create(ctx context.Context, t *domain.Token) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO health_tokens (id, name, token_hash, expires_at, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		t.ID, t.Name, t.TokenHash, t.ExpiresAt, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *pgTokenRepository) FindActiveByHash(ctx context.Context, hash string) (*domain.Token, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, token_hash, expires_at, revoked_at, last_used_at, created_at
		FROM health_tokens
		WHERE token_hash = $1
		  AND revoked_at IS NULL
		  AND (expires_at IS NULL OR expires_at > NOW())`, hash)

	t, err := scanToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return t, err
}

func (r *pgTokenRepository) Revoke(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE health_tokens SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgTokenRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE health_tokens SET last_used_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touch token: %w", err)
	}
	return nil
}

func (r *pgTokenRepository) List(ctx context.Context) ([]*domain.Token, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, token_hash, expires_at, revoked_at, last_used_at, created_at
		FROM health_tokens ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*domain.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// scanToken reads a single token row from any pgx row type.
func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	err := row.Scan(
		&t.ID, &t.Name, &t.TokenHash,
		&t.ExpiresAt, &t.RevokedAt, &t.LastUsedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
