package display

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/forgo/qrmenu/api/internal/codec"
	"github.com/forgo/qrmenu/api/internal/metrics"
	"github.com/forgo/qrmenu/api/internal/model"
	"github.com/forgo/qrmenu/api/internal/service"
)

// DataParam is the query parameter that carries the transport payload
const DataParam = "data"

// MenuGetter fetches persisted menus
type MenuGetter interface {
	Get(ctx context.Context, id string) (*model.Menu, error)
}

// Resolver finds the menu a display link points at
type Resolver struct {
	menus      MenuGetter
	metrics    *metrics.Metrics
	background model.Background
}

// ResolverConfig holds the dependencies of a resolver
type ResolverConfig struct {
	Menus   MenuGetter
	Metrics *metrics.Metrics
	// Background is used by the not-found page and by menus without one.
	// Empty means model.DefaultBackground.
	Background model.Background
}

// NewResolver creates a resolver. Menus may be nil when only share links are served.
func NewResolver(cfg ResolverConfig) *Resolver {
	bg := cfg.Background
	if bg == "" || bg.IsImage() || !bg.IsValid() {
		bg = model.DefaultBackground
	}
	return &Resolver{
		menus:      cfg.Menus,
		metrics:    cfg.Metrics,
		background: bg,
	}
}

func (r *Resolver) notFound() View {
	return notFoundOn(r.background)
}

func (r *Resolver) view(m *model.Menu) View {
	if m.Background == "" {
		c := *m
		c.Background = r.background
		m = &c
	}
	return NewView(m)
}

// FromQuery decodes the payload in values. Any failure yields NotFoundView.
func (r *Resolver) FromQuery(ctx context.Context, values url.Values) View {
	payload := values.Get(DataParam)

	m, err := codec.Decode(payload)
	reason := codec.Reason(err)
	r.metrics.PayloadDecoded(reason)

	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, codec.ErrAbsent) {
			level = slog.LevelDebug
		}
		slog.Log(ctx, level, "menu payload rejected",
			slog.String("reason", reason),
			slog.Int("payload_length", len(payload)),
			slog.String("error", err.Error()),
		)
		return r.notFound()
	}
	return r.view(m)
}

// FromStore fetches a persisted menu. An unknown id yields NotFoundView; storage errors are returned.
func (r *Resolver) FromStore(ctx context.Context, id string) (View, error) {
	if r.menus == nil {
		return r.notFound(), nil
	}

	m, err := r.menus.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrMenuNotFound) {
			return r.notFound(), nil
		}
		return View{}, err
	}
	return r.view(m), nil
}
