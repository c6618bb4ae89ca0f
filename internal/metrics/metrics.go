package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ricirt/healthcheck/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	HealthReads     *prometheus.CounterVec
	HealthUpdates   *prometheus.CounterVec
	Healthy         prometheus.Gauge
	Transitions     *prometheus.CounterVec
	WebhooksSent    prometheus.Counter
	WebhooksFailed  prometheus.Counter
	WebhooksDropped prometheus.Counter
	WebhookLatency  prometheus.Histogram
}

// New registers all instruments with the given Prometheus registerer.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HealthReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "health_reads_total",
			Help: "Health reads served, by reported state.",
		}, []string{"state"}),

		HealthUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "health_updates_total",
			Help: "Health update attempts, by outcome.",
		}, []string{"outcome"}),

		Healthy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "health_status_healthy",
			Help: "1 when the process reports healthy, 0 otherwise.",
		}),

		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "health_transitions_total",
			Help: "Flips of the healthy flag, by target state.",
		}, []string{"to"}),

		WebhooksSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "health_webhooks_sent_total",
			Help: "Transition webhooks delivered successfully.",
		}),
		WebhooksFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "health_webhooks_failed_total",
			Help: "Transition webhooks abandoned after exhausting retries.",
		}),
		WebhooksDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "health_webhooks_dropped_total",
			Help: "Transitions dropped because the delivery queue was full.",
		}),
		WebhookLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "health_webhook_delivery_seconds",
			Help:    "Latency from dequeue to successful webhook delivery.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.HealthReads,
		m.HealthUpdates,
		m.Healthy,
		m.Transitions,
		m.WebhooksSent,
		m.WebhooksFailed,
		m.WebhooksDropped,
		m.WebhookLatency,
	)

	return m
}

func stateLabel(healthy bool) string {
	if healthy {
		return "healthy"
	}
	return "unhealthy"
}

// HandlerHooks returns the callbacks expected by handler.Hooks.
func (m *Metrics) HandlerHooks() (
	onRead func(healthy bool),
	onWrite func(outcome string),
) {
	onRead = func(healthy bool) {
		m.HealthReads.WithLabelValues(stateLabel(healthy)).Inc()
	}
	onWrite = func(outcome string) {
		m.HealthUpdates.WithLabelValues(outcome).Inc()
	}
	return
}

// ObserveStatus tracks the healthy gauge and transition counter.
// Its signature matches service.Observer.
func (m *Metrics) ObserveStatus(prev, next domain.Status) {
	if next.Healthy {
		m.Healthy.Set(1)
	} else {
		m.Healthy.Set(0)
	}
	if prev.Healthy != next.Healthy {
		m.Transitions.WithLabelValues(stateLabel(next.Healthy)).Inc()
	}
}

// WorkerHooks returns the metric callback functions expected by worker.MetricHooks.
func (m *Metrics) WorkerHooks() (
	onSent func(time.Duration),
	onFailed func(),
	onDropped func(),
) {
	onSent = func(latency time.Duration) {
		m.WebhooksSent.Inc()
		m.WebhookLatency.Observe(latency.Seconds())
	}
	onFailed = func() { m.WebhooksFailed.Inc() }
	onDropped = func() { m.WebhooksDropped.Inc() }
	return
}
