package queue

import (
	"context"

	"github.com/ricirt/healthcheck/internal/domain"
)

// TransitionQueue buffers health transitions waiting for webhook delivery.
//
// Enqueue never blocks: it runs on the goroutine that committed the status
// change, so a full queue drops the item and reports ErrQueueFull.
type TransitionQueue struct {
	items chan domain.Transition
}

func New(size int) *TransitionQueue {
	if size < 1 {
		size = 1
	}
	return &TransitionQueue{items: make(chan domain.Transition, size)}
}

// Enqueue places t on the queue, or returns domain.ErrQueueFull immediately.
func (q *TransitionQueue) Enqueue(t domain.Transition) error {
	select {
	case q.items <- t:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until an item is available or ctx is cancelled.
// Returns (domain.Transition{}, false) on cancellation.
func (q *TransitionQueue) Dequeue(ctx context.Context) (domain.Transition, bool) {
	select {
	case t := <-q.items:
		return t, true
	case <-ctx.Done():
		return domain.Transition{}, false
	}
}

// Depth returns the number of items waiting and the queue capacity.
func (q *TransitionQueue) Depth() (waiting, capacity int) {
	return len(q.items), cap(q.items)
}
