package handler

import (
	"net/http"

	"github.com/forgo/qrmenu/api/internal/catalog"
)

// CatalogHandler serves the styling choices offered to builders
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/styles", h.Styles)
}

// Styles handles GET /api/styles
func (h *CatalogHandler) Styles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	WriteJSON(w, http.StatusOK, h.catalog)
}
