package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ricirt/healthcheck/internal/api"
	"github.com/ricirt/healthcheck/internal/api/handler"
	"github.com/ricirt/healthcheck/internal/auth"
	"github.com/ricirt/healthcheck/internal/config"
	"github.com/ricirt/healthcheck/internal/db"
	"github.com/ricirt/healthcheck/internal/domain"
	"github.com/ricirt/healthcheck/internal/health"
	"github.com/ricirt/healthcheck/internal/metrics"
	"github.com/ricirt/healthcheck/internal/provider"
	"github.com/ricirt/healthcheck/internal/queue"
	"github.com/ricirt/healthcheck/internal/ratelimiter"
	"github.com/ricirt/healthcheck/internal/repository"
	"github.com/ricirt/healthcheck/internal/service"
	"github.com/ricirt/healthcheck/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.AppEnv == "local" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	// ---- metrics ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	// ---- transition webhook (optional) ----
	observers := []service.Observer{m.ObserveStatus}
	var (
		q    *queue.TransitionQueue
		pool *worker.Pool
	)
	if cfg.WebhookURL != "" {
		q = queue.New(cfg.WebhookQueueSize)
		onSent, onFailed, onDropped := m.WorkerHooks()
		observers = append(observers, worker.TransitionObserver(q, logger, onDropped))
		pool = worker.NewPool(
			cfg.WebhookWorkers, q,
			provider.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookTimeout),
			ratelimiter.New(float64(cfg.WebhookRateLimit), cfg.WebhookRateLimit),
			cfg.RetryBackoff, logger,
			worker.MetricHooks{OnSent: onSent, OnFailed: onFailed},
		)
	}

	// ---- health state ----
	initial := domain.Status{Text: cfg.HealthDefaultText, Healthy: true}
	svc := service.NewStateService(health.NewState(initial), logger, observers...)
	m.ObserveStatus(initial, initial)

	// ---- database (optional) ----
	var filters []auth.Filter
	if len(cfg.AuthTokens) > 0 {
		filters = append(filters, auth.NewTokenFilter(cfg.AuthTokens...))
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	if cfg.DatabaseURL != "" {
		dbPool, err := db.Connect(ctx, cfg)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer dbPool.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		logger.Info("database migrations applied")

		if cfg.DBTokenAuth {
			repo := repository.NewPgTokenRepository(dbPool)
			filters = append(filters, auth.NewRepositoryFilter(repo, logger))
		}
		if cfg.DBProbeInterval > 0 {
			probe := worker.NewProbeWorker("database", dbPool, svc, cfg.DBProbeInterval, cfg.HealthDefaultText, logger)
			go probe.Run(workerCtx)
		}
	}

	// ---- authorization ----
	// No filter means every PUT is refused.
	var filter auth.Filter
	if cfg.WritesEnabled() {
		filter = auth.RateLimited(auth.Any(filters...), ratelimiter.New(cfg.UpdateRate, cfg.UpdateBurst))
	} else {
		logger.Info("health updates disabled: no authorization filter configured")
	}

	if pool != nil {
		pool.Start(workerCtx)
	}

	// ---- HTTP server ----
	onRead, onWrite := m.HandlerHooks()
	hh := handler.NewHealthHandler(svc, logger,
		handler.WithFilter(filter),
		handler.WithReportWriteErrors(cfg.ReportWriteErrors),
		handler.WithHooks(handler.Hooks{OnRead: onRead, OnWrite: onWrite}),
	)
	router := api.NewRouter(
		api.RouterConfig{HealthPath: cfg.HealthPath, CORSOrigins: cfg.CORSOrigins},
		hh, handler.NewQueueHandler(q), reg, logger,
	)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("health_path", cfg.HealthPath),
			zap.Bool("writes_enabled", cfg.WritesEnabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Report unhealthy so load balancers stop routing here.
	svc.Apply(domain.Status{Text: "shutting down", Healthy: false})
	if cfg.DrainDelay > 0 {
		time.Sleep(cfg.DrainDelay)
	}

	// 2. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 3. Stop the probe and webhook workers and wait for them to return.
	cancelWorkers()
	if pool != nil {
		pool.Wait()
	}

	logger.Info("server stopped cleanly")
}
