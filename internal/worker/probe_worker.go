package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/healthcheck/internal/domain"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusApplier is the part of service.StateService the probe needs.
type StatusApplier interface {
	Snapshot() domain.Status
	Apply(next domain.Status)
}

// ProbeWorker pings a dependency on a fixed interval and flips the health
// status when the probe result changes. On recovery it only restores the
// healthy status if the current status is still the one it set, so a manual
// update made in between is left alone.
type ProbeWorker struct {
	name        string
	pinger      Pinger
	target      StatusApplier
	interval    time.Duration
	healthyText string
	logger      *zap.Logger

	failing bool
	set     domain.Status
}

func NewProbeWorker(
	name string,
	pinger Pinger,
	target StatusApplier,
	interval time.Duration,
	healthyText string,
	logger *zap.Logger,
) *ProbeWorker {
	return &ProbeWorker{
		name: name, pinger: pinger, target: target,
		interval: interval, healthyText: healthyText, logger: logger,
	}
}

// Run ticks every interval and probes. Stops cleanly when ctx is cancelled.
func (pw *ProbeWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	pw.logger.Info("probe worker started", zap.String("probe", pw.name), zap.Duration("interval", pw.interval))

	for {
		select {
		case <-ctx.Done():
			pw.logger.Info("probe worker stopping", zap.String("probe", pw.name))
			return
		case <-ticker.C:
			pw.probe(ctx)
		}
	}
}

func (pw *ProbeWorker) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pw.interval)
	defer cancel()

	err := pw.pinger.Ping(pingCtx)
	if ctx.Err() != nil {
		return
	}

	switch {
	case err != nil && !pw.failing:
		pw.failing = true
		pw.set = domain.Status{Text: fmt.Sprintf("%s unreachable", pw.name), Healthy: false}
		pw.target.Apply(pw.set)
		pw.logger.Warn("probe failed", zap.String("probe", pw.name), zap.Error(err))

	case err == nil && pw.failing:
		pw.failing = false
		if pw.target.Snapshot() == pw.set {
			pw.target.Apply(domain.Status{Text: pw.healthyText, Healthy: true})
		}
		pw.logger.Info("probe recovered", zap.String("probe", pw.name))
	}
}
