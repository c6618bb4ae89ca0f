package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/healthcheck/internal/domain"
	"github.com/ricirt/healthcheck/internal/provider"
	"github.com/ricirt/healthcheck/internal/queue"
	"github.com/ricirt/healthcheck/internal/ratelimiter"
)

// Worker is a single goroutine that pulls transitions from the queue,
// waits on the shared rate limiter, and delivers them via the notifier,
// retrying failed deliveries with backoff.
type Worker struct {
	id       int
	q        *queue.TransitionQueue
	notifier provider.Notifier
	limiter  *ratelimiter.Limiter
	backoff  []time.Duration
	logger   *zap.Logger

	// Hooks for metrics, injected by the pool so the worker stays metrics-agnostic.
	onSent   func(latency time.Duration)
	onFailed func()
}

// NewWorker constructs a worker. onSent and onFailed are optional (nil = no-op).
func NewWorker(
	id int,
	q *queue.TransitionQueue,
	notifier provider.Notifier,
	limiter *ratelimiter.Limiter,
	backoff []time.Duration,
	logger *zap.Logger,
	onSent func(time.Duration),
	onFailed func(),
) *Worker {
	if onSent == nil {
		onSent = func(time.Duration) {}
	}
	if onFailed == nil {
		onFailed = func() {}
	}
	return &Worker{
		id: id, q: q, notifier: notifier, limiter: limiter,
		backoff: backoff, logger: logger,
		onSent: onSent, onFailed: onFailed,
	}
}

// Run blocks until ctx is cancelled, processing one queue item per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("webhook worker started", zap.Int("id", w.id))
	for {
		t, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("webhook worker stopping", zap.Int("id", w.id))
			return
		}
		w.process(ctx, t)
	}
}

// process delivers t, retrying once per backoff entry:
//
//	attempt 0 → immediate
//	attempt 1 → backoff[0]
//	attempt N → backoff[N-1]; gives up after len(backoff) retries
func (w *Worker) process(ctx context.Context, t domain.Transition) {
	start := time.Now()
	log := w.logger.With(
		zap.String("transition_id", t.ID),
		zap.Bool("healthy", t.To.Healthy),
	)

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			if !sleep(ctx, w.backoff[attempt-1]) {
				return
			}
		}

		// Block here until the shared rate limiter grants a token.
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}

		err := w.notifier.Notify(ctx, t)
		if err == nil {
			elapsed := time.Since(start)
			w.onSent(elapsed)
			log.Info("transition delivered", zap.Int("attempts", attempt+1), zap.Duration("latency", elapsed))
			return
		}
		if ctx.Err() != nil {
			return
		}

		if attempt >= len(w.backoff) {
			w.onFailed()
			log.Error("transition delivery failed, giving up",
				zap.Int("attempts", attempt+1), zap.Error(err))
			return
		}
		log.Warn("transition delivery failed, will retry",
			zap.Int("attempt", attempt+1), zap.Error(err))
	}
}

// sleep waits for d or until ctx is done; it reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
