package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/healthcheck/internal/domain"
	"github.com/ricirt/healthcheck/internal/queue"
	"github.com/ricirt/healthcheck/internal/ratelimiter"
	"github.com/ricirt/healthcheck/internal/service"
	"github.com/ricirt/healthcheck/internal/worker"
)

// fakeNotifier fails the first failures calls, then succeeds.
type fakeNotifier struct {
	mu        sync.Mutex
	failures  int
	calls     int
	delivered []domain.Transition
}

func (f *fakeNotifier) Notify(_ context.Context, t domain.Transition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("webhook unavailable")
	}
	f.delivered = append(f.delivered, t)
	return nil
}

func (f *fakeNotifier) snapshot() (calls int, delivered []domain.Transition) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, append([]domain.Transition(nil), f.delivered...)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func down() domain.Transition {
	return domain.Transition{ID: "t-1", From: domain.DefaultStatus(), To: domain.Status{Text: "down"}}
}

func startPool(t *testing.T, n *fakeNotifier, backoff []time.Duration, hooks worker.MetricHooks) (*queue.TransitionQueue, func()) {
	t.Helper()
	q := queue.New(10)
	pool := worker.NewPool(2, q, n, ratelimiter.New(1000, 1000), backoff, zap.NewNop(), hooks)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	return q, func() {
		cancel()
		pool.Wait()
	}
}

func TestPool_DeliversTransition(t *testing.T) {
	n := &fakeNotifier{}
	var sent atomic.Int32
	q, stop := startPool(t, n, nil, worker.MetricHooks{OnSent: func(time.Duration) { sent.Add(1) }})
	defer stop()

	if err := q.Enqueue(down()); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return sent.Load() == 1 })

	_, delivered := n.snapshot()
	if len(delivered) != 1 || delivered[0].ID != "t-1" {
		t.Fatalf("unexpected deliveries %+v", delivered)
	}
}

func TestPool_RetriesThenSucceeds(t *testing.T) {
	n := &fakeNotifier{failures: 2}
	var sent, failed atomic.Int32
	q, stop := startPool(t, n, []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}, worker.MetricHooks{
		OnSent:   func(time.Duration) { sent.Add(1) },
		OnFailed: func() { failed.Add(1) },
	})
	defer stop()

	_ = q.Enqueue(down())
	eventually(t, func() bool { return sent.Load() == 1 })

	calls, _ := n.snapshot()
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if failed.Load() != 0 {
		t.Fatal("expected no failure after eventual success")
	}
}

func TestPool_GivesUpAfterBackoffExhausted(t *testing.T) {
	n := &fakeNotifier{failures: 100}
	var failed atomic.Int32
	q, stop := startPool(t, n, []time.Duration{time.Millisecond, time.Millisecond}, worker.MetricHooks{
		OnFailed: func() { failed.Add(1) },
	})
	defer stop()

	_ = q.Enqueue(down())
	eventually(t, func() bool { return failed.Load() == 1 })

	calls, _ := n.snapshot()
	if calls != 3 {
		t.Fatalf("expected 1 attempt + 2 retries, got %d", calls)
	}
}

func TestPool_StopsWhileBackingOff(t *testing.T) {
	n := &fakeNotifier{failures: 100}
	q, stop := startPool(t, n, []time.Duration{time.Hour}, worker.MetricHooks{})

	_ = q.Enqueue(down())
	eventually(t, func() bool { calls, _ := n.snapshot(); return calls == 1 })

	done := make(chan struct{})
	go func() { stop(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop during backoff")
	}
}

func TestTransitionObserver(t *testing.T) {
	q := queue.New(1)
	var dropped atomic.Int32
	svc := service.NewDefaultService(zap.NewNop(),
		worker.TransitionObserver(q, zap.NewNop(), func() { dropped.Add(1) }))

	svc.Apply(domain.Status{Text: "Healthy, but slow", Healthy: true}) // text only
	if waiting, _ := q.Depth(); waiting != 0 {
		t.Fatalf("expected no transition for text-only change, got %d", waiting)
	}

	svc.Apply(domain.Status{Text: "db down", Healthy: false})
	got, ok := q.Dequeue(context.Background())
	if !ok || got.ID == "" || got.From.Healthy != true || got.To.Text != "db down" {
		t.Fatalf("unexpected transition %+v", got)
	}

	svc.Apply(domain.Status{Text: "ok", Healthy: true})
	svc.Apply(domain.Status{Text: "down again", Healthy: false})
	if dropped.Load() != 1 {
		t.Fatalf("expected one dropped transition, got %d", dropped.Load())
	}
}
