package health

import (
	"sync"
	"sync/atomic"

	"github.com/ricirt/healthcheck/internal/domain"
)

// State is the process-wide health record.
//
// Readers load an immutable *domain.Status with a single atomic read, so a
// text and flag observed together always come from the same commit and reads
// never wait on writers. Writers serialize on mu, so each Swap returns the
// status that was current immediately before its own commit.
type State struct {
	mu      sync.Mutex
	current atomic.Pointer[domain.Status]
}

// NewState returns a State holding initial. An empty text is replaced with
// the default healthy text.
func NewState(initial domain.Status) *State {
	if initial.Text == "" {
		initial.Text = domain.DefaultHealthyText
	}
	s := &State{}
	s.current.Store(&initial)
	return s
}

// Load returns the current status.
func (s *State) Load() domain.Status {
	return *s.current.Load()
}

// Swap publishes next and returns the status it replaced.
// next.Text must be non-empty; callers validate before swapping.
func (s *State) Swap(next domain.Status) (prev domain.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.current.Swap(&next)
}
