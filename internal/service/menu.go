package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/forgo/qrmenu/api/internal/codec"
	"github.com/forgo/qrmenu/api/internal/database"
	"github.com/forgo/qrmenu/api/internal/metrics"
	"github.com/forgo/qrmenu/api/internal/model"
	"github.com/forgo/qrmenu/api/internal/publish"
)

// MenuRepository defines the interface for menu storage
type MenuRepository interface {
	Save(ctx context.Context, menu *model.Menu) (string, error)
	Fetch(ctx context.Context, id string) (*model.Menu, error)
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// MenuService handles menu business logic
type MenuService struct {
	repo    MenuRepository
	store   Pinger
	codec   *codec.Codec
	qrSize  int
	driver  string
	metrics *metrics.Metrics
}

// MenuServiceConfig holds configuration for the menu service
type MenuServiceConfig struct {
	Repo    MenuRepository
	Store   Pinger
	Codec   *codec.Codec
	QRSize  int
	Driver  string
	Metrics *metrics.Metrics
}

// NewMenuService creates a new menu service
func NewMenuService(cfg MenuServiceConfig) *MenuService {
	c := cfg.Codec
	if c == nil {
		c = codec.New("", 0)
	}
	return &MenuService{
		repo:    cfg.Repo,
		store:   cfg.Store,
		codec:   c,
		qrSize:  cfg.QRSize,
		driver:  cfg.Driver,
		metrics: cfg.Metrics,
	}
}

// Create validates and persists a menu, returning it with its new identifier
func (s *MenuService) Create(ctx context.Context, menu *model.Menu) (*model.Menu, error) {
	if err := validateMenu(menu); err != nil {
		s.metrics.MenuSaved(s.driver, metrics.OutcomeInvalid)
		return nil, err
	}

	content := menu.Content()
	id, err := s.repo.Save(ctx, &content)
	if err != nil {
		s.metrics.MenuSaved(s.driver, metrics.OutcomeError)
		slog.ErrorContext(ctx, "saving menu failed", slog.String("driver", s.driver), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.metrics.MenuSaved(s.driver, metrics.OutcomeOK)
	content.ID = id
	return &content, nil
}

// Get fetches a persisted menu by identifier
func (s *MenuService) Get(ctx context.Context, id string) (*model.Menu, error) {
	if id == "" {
		return nil, ErrMenuNotFound
	}

	menu, err := s.repo.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrMenuNotFound
		}
		slog.ErrorContext(ctx, "fetching menu failed", slog.String("driver", s.driver), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if menu == nil {
		return nil, ErrMenuNotFound
	}
	return menu, nil
}

// Publish turns a menu into a share link. The same menu always yields the same link.
func (s *MenuService) Publish(ctx context.Context, menu *model.Menu) (*model.Publication, error) {
	if err := validateMenu(menu); err != nil {
		s.metrics.Published(metrics.OutcomeInvalid)
		return nil, err
	}

	link, payload, err := s.codec.Link(menu)
	if err != nil {
		if errors.Is(err, codec.ErrPayloadTooLarge) {
			s.metrics.Published(metrics.OutcomeTooLarge)
			return nil, &TooLargeError{Limit: s.MaxURLLength(), Cause: err}
		}
		s.metrics.Published(metrics.OutcomeError)
		return nil, err
	}

	s.metrics.Published(metrics.OutcomeOK)
	return &model.Publication{URL: link, Payload: payload}, nil
}

// QRCode publishes the menu and renders its share link as a PNG.
// It also returns the download filename.
func (s *MenuService) QRCode(ctx context.Context, menu *model.Menu) ([]byte, string, error) {
	pub, err := s.Publish(ctx, menu)
	if err != nil {
		return nil, "", err
	}

	png, err := publish.QRCode(pub.URL, s.qrSize)
	if err != nil {
		return nil, "", err
	}
	return png, publish.Filename(menu.Title), nil
}

// StoredURL returns the display link for a persisted menu
func (s *MenuService) StoredURL(id string) string {
	return s.codec.StoredURL(id)
}

// MaxURLLength is the share link ceiling publish enforces
func (s *MenuService) MaxURLLength() int {
	if s.codec.MaxURLLength <= 0 {
		return codec.DefaultMaxURLLength
	}
	return s.codec.MaxURLLength
}

// Health pings the backing store
func (s *MenuService) Health(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}
