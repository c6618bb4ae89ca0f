package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/ricirt/healthcheck/internal/domain"
	"github.com/ricirt/healthcheck/internal/queue"
)

func transition(id string) domain.Transition {
	return domain.Transition{
		ID:   id,
		From: domain.DefaultStatus(),
		To:   domain.Status{Text: "down", Healthy: false},
		At:   time.Now(),
	}
}

func TestTransitionQueue_FIFO(t *testing.T) {
	q := queue.New(4)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		if err := q.Enqueue(transition(id)); err != nil {
			t.Fatal(err)
		}
	}
	for _, want := range []string{"1", "2", "3"} {
		got, ok := q.Dequeue(ctx)
		if !ok || got.ID != want {
			t.Fatalf("expected id=%s, got %q (ok=%v)", want, got.ID, ok)
		}
	}
}

func TestTransitionQueue_FullReturnsError(t *testing.T) {
	q := queue.New(1)
	if err := q.Enqueue(transition("1")); err != nil {
		t.Fatal(err)
	}
	if err := q.Enqueue(transition("2")); err != domain.ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if waiting, capacity := q.Depth(); waiting != 1 || capacity != 1 {
		t.Fatalf("expected depth 1/1, got %d/%d", waiting, capacity)
	}
}

func TestTransitionQueue_DequeueCancelled(t *testing.T) {
	q := queue.New(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool)
	go func() {
		_, ok := q.Dequeue(ctx)
		done <- ok
	}()

	cancel()
	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ok=false after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after cancel")
	}
}
