package handler

import (
	"context"
	"mime"
	"net/http"
	"strconv"

	"github.com/forgo/qrmenu/api/internal/model"
)

// MenuPublisher turns menus into share links and QR codes
type MenuPublisher interface {
	Publish(ctx context.Context, menu *model.Menu) (*model.Publication, error)
	QRCode(ctx context.Context, menu *model.Menu) ([]byte, string, error)
}

// PublishHandler handles publishing HTTP requests
type PublishHandler struct {
	publisher MenuPublisher
}

// NewPublishHandler creates a new publish handler
func NewPublishHandler(publisher MenuPublisher) *PublishHandler {
	return &PublishHandler{publisher: publisher}
}

// RegisterRoutes registers publish routes
func (h *PublishHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/publish", h.Publish)
	mux.HandleFunc("POST /api/publish/qr", h.QRCode)
}

// Publish handles POST /api/publish - build the share link for a menu
func (h *PublishHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var menu model.Menu
	if err := DecodeJSON(w, r, &menu); err != nil {
		WriteError(w, badBodyError(err))
		return
	}

	pub, err := h.publisher.Publish(r.Context(), &menu)
	if err != nil {
		h.handleError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, pub)
}

// QRCode handles POST /api/publish/qr - render the share link as a PNG download
func (h *PublishHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	var menu model.Menu
	if err := DecodeJSON(w, r, &menu); err != nil {
		WriteError(w, badBodyError(err))
		return
	}

	png, filename, err := h.publisher.QRCode(r.Context(), &menu)
	if err != nil {
		h.handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *PublishHandler) handleError(w http.ResponseWriter, err error) {
	WriteError(w, MapServiceErrorWithContext(err, "Failed to publish menu"))
}
