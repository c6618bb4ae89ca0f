package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/healthcheck/internal/domain"
	"github.com/ricirt/healthcheck/internal/service"
	"github.com/ricirt/healthcheck/internal/worker"
)

type switchPinger struct {
	fail atomic.Bool
}

func (p *switchPinger) Ping(context.Context) error {
	if p.fail.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func runProbe(t *testing.T, p *switchPinger, svc *service.StateService) func() {
	t.Helper()
	pw := worker.NewProbeWorker("database", p, svc, 2*time.Millisecond, "Healthy", zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pw.Run(ctx)
		close(done)
	}()
	return func() {
		cancel()
		<-done
	}
}

func TestProbeWorker_FlipsOnFailureAndRecovery(t *testing.T) {
	svc := service.NewDefaultService(zap.NewNop())
	p := &switchPinger{}
	stop := runProbe(t, p, svc)
	defer stop()

	p.fail.Store(true)
	eventually(t, func() bool { return !svc.IsHealthy() })
	if svc.CurrentText() != "database unreachable" {
		t.Fatalf("unexpected text %q", svc.CurrentText())
	}

	p.fail.Store(false)
	eventually(t, func() bool { return svc.IsHealthy() })
	if svc.CurrentText() != "Healthy" {
		t.Fatalf("unexpected text %q", svc.CurrentText())
	}
}

func TestProbeWorker_RecoveryKeepsManualUpdate(t *testing.T) {
	svc := service.NewDefaultService(zap.NewNop())
	p := &switchPinger{}
	p.fail.Store(true)
	stop := runProbe(t, p, svc)
	defer stop()

	eventually(t, func() bool { return !svc.IsHealthy() })

	manual := domain.Status{Text: "maintenance window", Healthy: false}
	svc.Apply(manual)
	p.fail.Store(false)

	// give the probe several ticks to observe recovery
	time.Sleep(30 * time.Millisecond)
	if got := svc.Snapshot(); got != manual {
		t.Fatalf("expected manual status to survive recovery, got %+v", got)
	}
}
