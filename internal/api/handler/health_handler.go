package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/ricirt/healthcheck/internal/api/middleware"
	"github.com/ricirt/healthcheck/internal/auth"
	"github.com/ricirt/healthcheck/internal/domain"
	"github.com/ricirt/healthcheck/internal/service"
)

// Outcome labels passed to Hooks.OnWrite.
const (
	OutcomeApplied       = "applied"
	OutcomeInvalid       = "invalid_payload"
	OutcomeUnauthorized  = "unauthorized"
	OutcomeNoFilter      = "no_filter"
	OutcomeNotSupported  = "not_supported"
	OutcomeRateLimited   = "rate_limited"
	OutcomeCancelled     = "cancelled"
	OutcomeInternalError = "error"
)

// Hooks carries optional observation callbacks so the handler stays
// metrics-agnostic. Nil fields are no-ops.
type Hooks struct {
	OnRead  func(healthy bool)
	OnWrite func(outcome string)
}

// HealthHandler serves the health route: GET reports, PUT updates.
//
// GET is never authorized. PUT goes through the registered auth.Filter; with
// no filter every update is refused. Write-path failures are absorbed: the
// request completes with the default status and no body, unless error
// reporting is enabled.
type HealthHandler struct {
	svc          service.HealthService
	filter       auth.Filter
	reportErrors bool
	hooks        Hooks
	logger       *zap.Logger
}

type Option func(*HealthHandler)

// WithFilter registers the filter that gates PUT. Passing nil keeps writes disabled.
func WithFilter(f auth.Filter) Option {
	return func(h *HealthHandler) { h.filter = f }
}

// WithReportWriteErrors maps write-path errors to status codes instead of
// leaving the default response.
func WithReportWriteErrors(report bool) Option {
	return func(h *HealthHandler) { h.reportErrors = report }
}

func WithHooks(hooks Hooks) Option {
	return func(h *HealthHandler) { h.hooks = hooks }
}

// NewHealthHandler builds the handler. A nil svc is replaced by the built-in
// mutable service starting at domain.DefaultStatus.
func NewHealthHandler(svc service.HealthService, logger *zap.Logger, opts ...Option) *HealthHandler {
	if svc == nil {
		svc = service.NewDefaultService(logger)
	}
	h := &HealthHandler{svc: svc, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	if h.hooks.OnRead == nil {
		h.hooks.OnRead = func(bool) {}
	}
	if h.hooks.OnWrite == nil {
		h.hooks.OnWrite = func(string) {}
	}
	return h
}

// ServeHTTP handles GET and PUT on the health route; other methods are a no-op.
//
// @Summary  Read or update process health
// @Tags     system
// @Produce  plain
// @Success  200  {string}  string  "healthy: body is the health text"
// @Failure  503  {string}  string  "unhealthy: body is the health text"
// @Router   /status [get]
// @Router   /status [put]
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.read(w)
	case http.MethodPut:
		h.write(w, r)
	}
}

func (h *HealthHandler) read(w http.ResponseWriter) {
	s := h.svc.Snapshot()
	h.hooks.OnRead(s.Healthy)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !s.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_, _ = io.WriteString(w, s.Text)
}

func (h *HealthHandler) write(w http.ResponseWriter, r *http.Request) {
	err := h.update(r)
	outcome := outcomeOf(err)
	h.hooks.OnWrite(outcome)

	if err != nil {
		log := h.logger.Warn
		if outcome == OutcomeNoFilter || outcome == OutcomeCancelled {
			log = h.logger.Debug
		}
		log("health update refused",
			zap.String("outcome", outcome),
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		if h.reportErrors {
			mapError(w, err)
		}
		return
	}

	if h.reportErrors {
		w.WriteHeader(http.StatusNoContent)
	}
}

// update runs the authorization gate and, on approval, hands r to the service.
func (h *HealthHandler) update(r *http.Request) error {
	if h.filter == nil {
		return domain.ErrNoFilterRegistered
	}

	ctx := r.Context()
	ok, err := h.filter.Authorize(ctx, r)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	if !ok {
		return domain.ErrUnauthorized
	}

	// A request aborted while the filter ran must not mutate state.
	if err := ctx.Err(); err != nil {
		return err
	}

	return h.svc.ReceiveUpdate(r)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeApplied
	case errors.Is(err, domain.ErrRateLimited):
		return OutcomeRateLimited
	case errors.Is(err, domain.ErrNoFilterRegistered):
		return OutcomeNoFilter
	case errors.Is(err, domain.ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, domain.ErrInvalidPayload):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrUpdatesNotSupported):
		return OutcomeNotSupported
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeInternalError
	}
}
