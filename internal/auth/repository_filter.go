package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/healthcheck/internal/domain"
	"github.com/ricirt/healthcheck/internal/repository"
)

// RepositoryFilter accepts bearer tokens stored in a TokenRepository.
type RepositoryFilter struct {
	repo   repository.TokenRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewRepositoryFilter(repo repository.TokenRepository, logger *zap.Logger) *RepositoryFilter {
	return &RepositoryFilter{repo: repo, logger: logger, now: time.Now}
}

func (f *RepositoryFilter) Authorize(ctx context.Context, r *http.Request) (bool, error) {
	token, ok := BearerToken(r)
	if !ok {
		return false, nil
	}

	t, err := f.repo.FindActiveByHash(ctx, HashToken(token))
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup token: %w", err)
	}

	// last_used_at is informational; a failed touch must not deny the update.
	if err := f.repo.TouchLastUsed(ctx, t.ID, f.now().UTC()); err != nil {
		f.logger.Warn("failed to record token use", zap.String("token_id", t.ID), zap.Error(err))
	}
	return true, nil
}

var _ Filter = (*RepositoryFilter)(nil)
