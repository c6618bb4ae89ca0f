package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ricirt/healthcheck/internal/domain"
)

// MockTokenRepository is a hand-written, in-memory implementation of
// TokenRepository used in unit tests.
type MockTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*domain.Token

	// Optional error overrides, set in tests to simulate failure paths.
	FindErr  error
	TouchErr error

	// Now defaults to time.Now; tests override it to exercise expiry.
	Now func() time.Time
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{
		tokens: make(map[string]*domain.Token),
		Now:    time.Now,
	}
}

func (m *MockTokenRepository) Create(_ context.Context, t *domain.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *t
	m.tokens[t.ID] = &clone
	return nil
}

func (m *MockTokenRepository) FindActiveByHash(_ context.Context, hash string) (*domain.Token, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := m.Now()
	for _, t := range m.tokens {
		if t.TokenHash == hash && t.Active(now) {
			clone := *t
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockTokenRepository) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.RevokedAt != nil {
		return domain.ErrNotFound
	}
	now := m.Now()
	t.RevokedAt = &now
	return nil
}

func (m *MockTokenRepository) TouchLastUsed(_ context.Context, id string, at time.Time) error {
	if m.TouchErr != nil {
		return m.TouchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[id]; ok {
		t.LastUsedAt = &at
	}
	return nil
}

func (m *MockTokenRepository) List(_ context.Context) ([]*domain.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Token, 0, len(m.tokens))
	for _, t := range m.tokens {
		clone := *t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Get returns a copy of the stored token, for test assertions.
func (m *MockTokenRepository) Get(id string) (*domain.Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[id]
	if !ok {
		return nil, false
	}
	clone := *t
	return &clone, true
}
