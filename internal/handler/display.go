package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/forgo/qrmenu/api/internal/display"
	"github.com/forgo/qrmenu/api/internal/model"
)

// DisplayHandler serves the customer-facing menu page
type DisplayHandler struct {
	resolver *display.Resolver
	renderer *display.Renderer
}

// NewDisplayHandler creates a new display handler
func NewDisplayHandler(resolver *display.Resolver, renderer *display.Renderer) *DisplayHandler {
	return &DisplayHandler{
		resolver: resolver,
		renderer: renderer,
	}
}

// RegisterRoutes registers display routes
func (h *DisplayHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /menu", h.FromLink)
	mux.HandleFunc("GET /menu/{id}", h.FromStore)
}

// FromLink handles GET /menu?data=... - a menu carried entirely in the link.
// Unreadable links render the not-found page with status 200.
func (h *DisplayHandler) FromLink(w http.ResponseWriter, r *http.Request) {
	view := h.resolver.FromQuery(r.Context(), r.URL.Query())
	h.render(w, r, http.StatusOK, view)
}

// FromStore handles GET /menu/{id} - a persisted menu
func (h *DisplayHandler) FromStore(w http.ResponseWriter, r *http.Request) {
	view, err := h.resolver.FromStore(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, model.NewStorageError("Failed to fetch menu"))
		return
	}

	status := http.StatusOK
	if !view.Found {
		status = http.StatusNotFound
	}
	h.render(w, r, status, view)
}

func (h *DisplayHandler) render(w http.ResponseWriter, r *http.Request, status int, view display.View) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, view); err != nil {
		slog.ErrorContext(r.Context(), "rendering menu page failed", slog.String("error", err.Error()))
		WriteError(w, model.NewInternalError(""))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
