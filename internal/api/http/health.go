package http

import (
	"context"
	"net/http"
	"time"

	"github.com/recovera/timeline-service/internal/api/respond"
	"github.com/recovera/timeline-service/internal/store"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	pinger store.Pinger
}

// NewHealthHandler builds a handler. pinger may be nil for backends without
// a connectivity check; the deep probe then degrades to the shallow one.
func NewHealthHandler(pinger store.Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

// Shallow GET /health reports process liveness only.
func (h *HealthHandler) Shallow(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Deep GET /health/deep verifies the storage backend is reachable.
func (h *HealthHandler) Deep(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": "unchecked"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": err.Error()})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": "ok"})
}
