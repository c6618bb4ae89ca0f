package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ricirt/healthcheck/internal/api/handler"
	apimw "github.com/ricirt/healthcheck/internal/api/middleware"
)

// RouterConfig holds the registration-time settings of the HTTP surface.
type RouterConfig struct {
	HealthPath  string   // defaults to /status
	CORSOrigins []string // CORS is disabled when empty
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	rc RouterConfig,
	hh *handler.HealthHandler,
	qh *handler.QueueHandler,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	if rc.HealthPath == "" {
		rc.HealthPath = "/status"
	}

	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)
	r.Use(apimw.RequestLogger(logger, rc.HealthPath))
	if len(rc.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: rc.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Health-Status", "X-Correlation-ID"},
			ExposedHeaders: []string{"X-Correlation-ID"},
			MaxAge:         300,
		}))
	}

	// --- routes ---
	// Every method reaches the health handler; it decides what to do.
	r.Handle(rc.HealthPath, hh)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/webhooks/queue", qh.GetQueue)
	})

	return r
}
