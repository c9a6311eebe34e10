package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/debopam-roy/swaadly-frontend-sub000/internal/storage"
)

// BackendPinger checks the backend API
type BackendPinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	backend BackendPinger
	store   storage.Store
	now     func() time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(backend BackendPinger, store storage.Store) *HealthHandler {
	return &HealthHandler{backend: backend, store: store, now: time.Now}
}

// Health handles GET /health. The storefront is healthy while its local store
// works; an unreachable backend only degrades it.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:    "healthy",
		Backend:   "up",
		Storage:   "up",
		Timestamp: h.now().UTC(),
	}

	if _, err := h.store.Stats(); err != nil {
		slog.Warn("Local storage unavailable", "error", err)
		resp.Storage = "down"
		resp.Status = "unhealthy"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.backend.HealthCheck(ctx); err != nil {
		slog.Warn("Backend health check failed", "error", err)
		resp.Backend = "down"
		if resp.Status == "healthy" {
			resp.Status = "degraded"
		}
	}

	status := http.StatusOK
	if resp.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, status, resp)
}

// StorageStats handles GET /api/storage/stats
func (h *HealthHandler) StorageStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "storage_unavailable", err.Error(), nil)
		return
	}
	writeJSONResponse(w, http.StatusOK, stats)
}
