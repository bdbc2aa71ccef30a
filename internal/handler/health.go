package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/forgo/qrmenu/api/internal/model"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler reports service liveness
type HealthHandler struct {
	checker HealthChecker
	driver  string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checker HealthChecker, driver string) *HealthHandler {
	return &HealthHandler{checker: checker, driver: driver}
}

// RegisterRoutes registers health routes
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.checker.Health(ctx); err != nil {
		slog.WarnContext(ctx, "health check failed", slog.String("driver", h.driver), slog.String("error", err.Error()))
		WriteError(w, model.NewServiceUnavailableError("menu store is unreachable"))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"store":  h.driver,
	})
}
