package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pinger probes the backing store's connectivity.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports API and store connectivity. With the relational
// backend it performs a live database ping; the JSON-file backend has no
// connection to probe.
type HealthHandler struct {
	pinger  Pinger // nil for the file-backed store
	backend string // "mysql" or "json-file"
	config  map[string]string
	logger  *zap.Logger
}

func NewHealthHandler(pinger Pinger, backend string, config map[string]string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		pinger:  pinger,
		backend: backend,
		config:  config,
		logger:  logger,
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", h.Health)
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	database := "not configured"

	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := h.pinger.PingContext(ctx); err != nil {
			h.logger.Error("Health check failed", zap.Error(err))
			respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   "database unreachable",
				"details": err.Error(),
			})
			return
		}
		database = "connected"
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "API server is running",
		"database": database,
		"config":   h.config,
	})
}
