package handler

import (
	"net/http"

	"github.com/ricirt/healthcheck/internal/queue"
)

// QueueHandler serves a JSON snapshot of the transition webhook queue.
// Raw Prometheus metrics are available at /metrics via promhttp.
type QueueHandler struct {
	q *queue.TransitionQueue
}

// NewQueueHandler accepts a nil queue when webhooks are disabled.
func NewQueueHandler(q *queue.TransitionQueue) *QueueHandler {
	return &QueueHandler{q: q}
}

// GetQueue handles GET /api/v1/webhooks/queue
//
// @Summary  Transition webhook queue depth
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/webhooks/queue [get]
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	if h.q == nil {
		respondJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	waiting, capacity := h.q.Depth()
	respondJSON(w, http.StatusOK, map[string]any{
		"enabled":  true,
		"waiting":  waiting,
		"capacity": capacity,
	})
}
