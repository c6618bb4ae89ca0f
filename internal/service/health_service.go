package service

import (
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/ricirt/healthcheck/internal/domain"
	"github.com/ricirt/healthcheck/internal/health"
)

// HealthService is the contract the HTTP handler reads from and writes to.
// Implementations must be safe for concurrent use.
type HealthService interface {
	CurrentText() string
	IsHealthy() bool
	// Snapshot returns text and flag from a single commit.
	Snapshot() domain.Status
	// ReceiveUpdate parses r into a new status and publishes it.
	// On error the previous status is left in place.
	ReceiveUpdate(r *http.Request) error
}

// Observer is notified after a commit that changed the status.
type Observer func(prev, next domain.Status)

// StateService is the built-in mutable HealthService backed by health.State.
type StateService struct {
	state     *health.State
	observers []Observer
	logger    *zap.Logger

	// notifyMu covers the swap and the observer calls together, so observers
	// see commits in the order they were made.
	notifyMu sync.Mutex
}

func NewStateService(state *health.State, logger *zap.Logger, observers ...Observer) *StateService {
	return &StateService{state: state, observers: observers, logger: logger}
}

// NewDefaultService returns a StateService starting at domain.DefaultStatus.
func NewDefaultService(logger *zap.Logger, observers ...Observer) *StateService {
	return NewStateService(health.NewState(domain.DefaultStatus()), logger, observers...)
}

func (s *StateService) CurrentText() string     { return s.state.Load().Text }
func (s *StateService) IsHealthy() bool         { return s.state.Load().Healthy }
func (s *StateService) Snapshot() domain.Status { return s.state.Load() }

func (s *StateService) ReceiveUpdate(r *http.Request) error {
	req, err := DecodeUpdate(r)
	if err != nil {
		return err
	}
	next, err := req.Validate()
	if err != nil {
		return err
	}
	s.Apply(next)
	return nil
}

// Apply publishes next. Observers run only when the status actually changed,
// so repeating an identical update is invisible to them. They are called in
// commit order on the writer goroutine and must not block or call Apply.
// Readers never wait on them.
func (s *StateService) Apply(next domain.Status) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	prev := s.state.Swap(next)
	if prev == next {
		return
	}

	s.logger.Info("health status changed",
		zap.Bool("healthy", next.Healthy),
		zap.String("message", next.Text),
		zap.Bool("previous_healthy", prev.Healthy),
	)
	for _, obs := range s.observers {
		obs(prev, next)
	}
}

// StaticService always reports healthy with a fixed text and refuses updates.
type StaticService struct {
	text string
}

func NewStaticService(text string) *StaticService {
	if text == "" {
		text = domain.DefaultHealthyText
	}
	return &StaticService{text: text}
}

func (s *StaticService) CurrentText() string { return s.text }
func (s *StaticService) IsHealthy() bool     { return true }
func (s *StaticService) Snapshot() domain.Status {
	return domain.Status{Text: s.text, Healthy: true}
}

func (s *StaticService) ReceiveUpdate(*http.Request) error {
	return domain.ErrUpdatesNotSupported
}

// compile-time checks
var (
	_ HealthService = (*StateService)(nil)
	_ HealthService = (*StaticService)(nil)
)
