package handler

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/forgo/qrmenu/api/internal/builder"
)

// BuilderHandler upgrades builder clients to a websocket session
type BuilderHandler struct {
	upgrader websocket.Upgrader
	session  builder.SessionConfig
}

// NewBuilderHandler creates a builder handler. Browsers are only accepted from
// allowedOrigins; "*" accepts any origin.
func NewBuilderHandler(session builder.SessionConfig, allowedOrigins []string) *BuilderHandler {
	return &BuilderHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		session: session,
	}
}

// RegisterRoutes registers builder routes
func (h *BuilderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/builder", h.Connect)
}

// Connect handles GET /ws/builder
func (h *BuilderHandler) Connect(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		slog.DebugContext(r.Context(), "builder upgrade failed", slog.String("error", err.Error()))
		return
	}

	session := builder.NewSession(h.session)
	if err := session.Serve(r.Context(), conn); err != nil {
		slog.WarnContext(r.Context(), "builder session ended", slog.String("error", err.Error()))
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}
