package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/forgo/qrmenu/api/internal/model"
	"github.com/forgo/qrmenu/api/internal/service"
)

// MenuStore creates and fetches persisted menus
type MenuStore interface {
	Create(ctx context.Context, menu *model.Menu) (*model.Menu, error)
	Get(ctx context.Context, id string) (*model.Menu, error)
}

// MenuHandler handles menu HTTP requests
type MenuHandler struct {
	menus MenuStore
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(menus MenuStore) *MenuHandler {
	return &MenuHandler{menus: menus}
}

// RegisterRoutes registers menu routes
func (h *MenuHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/menus", h.Create)
	mux.HandleFunc("GET /api/menus/{id}", h.Get)
}

// Create handles POST /api/menus - persist a menu
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var menu model.Menu
	if err := DecodeJSON(w, r, &menu); err != nil {
		WriteError(w, badBodyError(err))
		return
	}

	saved, err := h.menus.Create(r.Context(), &menu)
	if err != nil {
		h.handleError(w, err, "Failed to save menu")
		return
	}

	w.Header().Set("Location", "/api/menus/"+saved.ID)
	WriteJSON(w, http.StatusCreated, model.CreateMenuResponse{ID: saved.ID})
}

// Get handles GET /api/menus/{id} - fetch a persisted menu
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, model.NewBadRequestError("menu ID required"))
		return
	}

	menu, err := h.menus.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "Failed to fetch menu")
		return
	}

	body, err := json.Marshal(menu)
	if err != nil {
		WriteError(w, model.NewInternalError("Failed to fetch menu"))
		return
	}

	etag := ETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(body, '\n'))
}

func (h *MenuHandler) handleError(w http.ResponseWriter, err error, operation string) {
	if errors.Is(err, service.ErrStorage) {
		WriteError(w, model.NewStorageError(operation))
		return
	}
	WriteError(w, MapServiceErrorWithContext(err, operation))
}
