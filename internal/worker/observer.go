package worker

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ricirt/healthcheck/internal/domain"
	"github.com/ricirt/healthcheck/internal/queue"
)

// TransitionObserver returns a status observer that enqueues a transition
// whenever the healthy flag flips. Text-only changes are ignored. It never
// blocks; when the queue is full the transition is dropped and onDropped runs.
func TransitionObserver(q *queue.TransitionQueue, logger *zap.Logger, onDropped func()) func(prev, next domain.Status) {
	if onDropped == nil {
		onDropped = func() {}
	}
	return func(prev, next domain.Status) {
		if prev.Healthy == next.Healthy {
			return
		}
		t := domain.Transition{
			ID:   uuid.New().String(),
			From: prev,
			To:   next,
			At:   time.Now().UTC(),
		}
		if err := q.Enqueue(t); err != nil {
			onDropped()
			logger.Warn("transition dropped", zap.String("transition_id", t.ID), zap.Error(err))
		}
	}
}
