package builder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/forgo/qrmenu/api/internal/codec"
	"github.com/forgo/qrmenu/api/internal/metrics"
	"github.com/forgo/qrmenu/api/internal/model"
	"github.com/forgo/qrmenu/api/internal/service"
)

// Connection limits
const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxActionSize = 64 << 10
	sendBuffer    = 16
)

// Saver persists a menu and builds its display link
type Saver interface {
	Create(ctx context.Context, menu *model.Menu) (*model.Menu, error)
	StoredURL(id string) string
}

// Preview is the share link for the current state, or why there is none
type Preview struct {
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// Saved identifies a persisted menu
type Saved struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Update is sent to the client after every action
type Update struct {
	State   State   `json:"state"`
	Preview Preview `json:"preview"`
	Saved   *Saved  `json:"saved,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Session owns the state of one builder connection
type Session struct {
	state     State
	codec     *codec.Codec
	templates Templates
	saver     Saver
	metrics   *metrics.Metrics
}

// SessionConfig holds the dependencies of a session
type SessionConfig struct {
	Codec     *codec.Codec
	Templates Templates
	Saver     Saver
	Metrics   *metrics.Metrics
}

// NewSession creates a session starting from StartState
func NewSession(cfg SessionConfig) *Session {
	c := cfg.Codec
	if c == nil {
		c = codec.New("", 0)
	}
	return &Session{
		state:     StartState(cfg.Templates),
		codec:     c,
		templates: cfg.Templates,
		saver:     cfg.Saver,
		metrics:   cfg.Metrics,
	}
}

// State returns the current state
func (s *Session) State() State {
	return s.state
}

// Handle applies one action and returns the update for the client
func (s *Session) Handle(ctx context.Context, a Action) Update {
	if a.Type == ActionSave {
		return s.save(ctx)
	}
	s.state = Apply(s.state, a, s.templates)
	return s.update()
}

func (s *Session) update() Update {
	u := Update{State: s.state}
	pub, err := Publish(s.state, s.codec)
	if err != nil {
		u.Preview.Error = Message(err)
	} else {
		u.Preview.URL = pub.URL
	}
	return u
}

func (s *Session) save(ctx context.Context) Update {
	u := s.update()
	if s.saver == nil {
		u.Error = "Saving menus is not available."
		return u
	}

	saved, err := s.saver.Create(ctx, s.state.Menu())
	if err != nil {
		if errors.Is(err, service.ErrInvalidMenu) {
			u.Error = "Please add a title, description, and at least one dish before saving."
		} else {
			u.Error = "Could not save the menu. Please try again."
		}
		return u
	}

	u.Saved = &Saved{ID: saved.ID, URL: s.saver.StoredURL(saved.ID)}
	return u
}

// Serve runs the session over an upgraded connection until the client leaves
// or ctx is cancelled. Actions are applied in the order they arrive.
func (s *Session) Serve(ctx context.Context, conn *websocket.Conn) error {
	s.metrics.SessionOpened()
	defer s.metrics.SessionClosed()
	defer conn.Close()

	updates := make(chan Update, sendBuffer)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writePump(ctx, conn, updates)
	}()
	defer func() {
		close(updates)
		<-writerDone
	}()

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-writerDone:
		}
	}()

	push := func(u Update) bool {
		select {
		case updates <- u:
			return true
		case <-writerDone:
			return false
		}
	}

	conn.SetReadLimit(maxActionSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if !push(s.update()) {
		return nil
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "builder session closed unexpectedly", slog.String("error", err.Error()))
				return err
			}
			return nil
		}

		var a Action
		var u Update
		if err := json.Unmarshal(message, &a); err != nil {
			u = s.update()
			u.Error = "Could not read the action."
		} else {
			u = s.Handle(ctx, a)
		}

		if !push(u) {
			return nil
		}
	}
}

// writePump owns all writes to the connection
func writePump(ctx context.Context, conn *websocket.Conn, updates <-chan Update) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case u, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(u); err != nil {
				slog.DebugContext(ctx, "builder session write failed", slog.String("error", err.Error()))
				conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
