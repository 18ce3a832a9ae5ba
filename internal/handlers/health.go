package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/action-stage/internal/storage"
	"github.com/jwebster45206/action-stage/pkg/stage"
)

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

type HealthHandler struct {
	store     storage.StateStore
	generator stage.Generator
	logger    *slog.Logger
}

// NewHealthHandler creates a health handler. store may be nil when state is
// carried by the caller only.
func NewHealthHandler(store storage.StateStore, generator stage.Generator, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:     store,
		generator: generator,
		logger:    logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, h.logger, http.MethodGet)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string)
	overallStatus := "healthy"

	switch {
	case h.store == nil:
		components["store"] = "disabled"
	default:
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("Store health check failed", "error", err)
			components["store"] = "unhealthy"
			overallStatus = "degraded"
		} else {
			components["store"] = "healthy"
		}
	}

	if h.generator == nil {
		components["generator"] = "unconfigured"
		overallStatus = "degraded"
	} else {
		components["generator"] = "configured"
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "action-stage",
		Components: components,
	})
}
