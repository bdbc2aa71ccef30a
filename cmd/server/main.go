package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgo/qrmenu/api/internal/builder"
	"github.com/forgo/qrmenu/api/internal/catalog"
	"github.com/forgo/qrmenu/api/internal/codec"
	"github.com/forgo/qrmenu/api/internal/config"
	"github.com/forgo/qrmenu/api/internal/database"
	"github.com/forgo/qrmenu/api/internal/display"
	"github.com/forgo/qrmenu/api/internal/handler"
	"github.com/forgo/qrmenu/api/internal/jobs"
	"github.com/forgo/qrmenu/api/internal/metrics"
	"github.com/forgo/qrmenu/api/internal/middleware"
	"github.com/forgo/qrmenu/api/internal/repository"
	"github.com/forgo/qrmenu/api/internal/service"
	"github.com/forgo/qrmenu/api/migrations"
)

// store is the connection lifecycle shared by both drivers
type store interface {
	Close() error
	Ping(ctx context.Context) error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// Initialize menu store
	db, repo, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to store",
			slog.String("driver", cfg.Store.Driver),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Load style catalog
	styles, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		slog.Error("failed to load style catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Initialize services
	links := codec.New(cfg.Publish.PublicOrigin, cfg.Publish.MaxURLLength)
	menuService := service.NewMenuService(service.MenuServiceConfig{
		Repo:    repo,
		Store:   db,
		Codec:   links,
		QRSize:  cfg.Publish.QRSize,
		Driver:  cfg.Store.Driver,
		Metrics: m,
	})

	renderer, err := display.NewRenderer()
	if err != nil {
		slog.Error("failed to parse display templates", slog.String("error", err.Error()))
		os.Exit(1)
	}
	resolver := display.NewResolver(display.ResolverConfig{
		Menus:      menuService,
		Metrics:    m,
		Background: styles.Background(),
	})

	// Initialize handlers
	menuHandler := handler.NewMenuHandler(menuService)
	publishHandler := handler.NewPublishHandler(menuService)
	catalogHandler := handler.NewCatalogHandler(styles)
	displayHandler := handler.NewDisplayHandler(resolver, renderer)
	builderHandler := handler.NewBuilderHandler(builder.SessionConfig{
		Codec:     links,
		Templates: styles,
		Saver:     menuService,
		Metrics:   m,
	}, cfg.Server.AllowedOrigins)
	healthHandler := handler.NewHealthHandler(menuService, cfg.Store.Driver)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   100, // 100 requests per minute
		Window: time.Minute,
		Burst:  20, // Allow bursts up to 20
		Exempt: []string{"/health", "/metrics"},
	})
	defer rateLimiter.Stop()

	// Initialize idempotency store
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL:     24 * time.Hour,
		Cleanup: time.Hour,
	})
	defer idempotencyStore.Stop()

	// Start background jobs
	storeProbe := jobs.NewStoreProbe(jobs.StoreProbeConfig{
		Checker:  menuService,
		Driver:   cfg.Store.Driver,
		Metrics:  m,
		Interval: cfg.Store.ProbeInterval,
	})
	storeProbe.Start()
	defer storeProbe.Stop()

	// Create router
	mux := http.NewServeMux()

	healthHandler.RegisterRoutes(mux)
	menuHandler.RegisterRoutes(mux)
	publishHandler.RegisterRoutes(mux)
	catalogHandler.RegisterRoutes(mux)
	displayHandler.RegisterRoutes(mux)
	builderHandler.RegisterRoutes(mux)

	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Compress,
		middleware.Idempotency(idempotencyStore),
		middleware.Metrics(m),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("store", cfg.Store.Driver),
			slog.String("public_origin", cfg.Publish.PublicOrigin),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}

// openStore connects the configured driver and returns its repository
func openStore(ctx context.Context, cfg *config.Config) (store, service.MenuRepository, error) {
	switch cfg.Store.Driver {
	case config.DriverMongoDB:
		db := database.NewMongoDB(database.MongoConfig{
			URI:             cfg.Mongo.URI,
			Database:        cfg.Mongo.Database,
			ConnectAttempts: cfg.Store.ConnectAttempts,
			RetryDelay:      cfg.Store.RetryDelay,
		})
		if err := db.Connect(ctx); err != nil {
			return nil, nil, err
		}
		slog.Info("connected to mongodb", slog.String("database", cfg.Mongo.Database))
		return db, repository.NewMongoMenuRepository(db), nil

	default:
		db := database.NewSurrealDB(database.Config{
			Endpoint:  cfg.Database.SurrealEndpoint(),
			User:      cfg.Database.User,
			Password:  cfg.Database.Password,
			Namespace: cfg.Database.Namespace,
			Database:  cfg.Database.Database,

			ConnectAttempts: cfg.Store.ConnectAttempts,
			RetryDelay:      cfg.Store.RetryDelay,
		})
		if err := db.Connect(ctx); err != nil {
			return nil, nil, err
		}
		slog.Info("connected to surrealdb",
			slog.String("endpoint", cfg.Database.SurrealEndpoint()),
			slog.String("database", cfg.Database.Database),
		)
		if cfg.Store.Migrate {
			n, err := database.Migrate(ctx, db, migrations.Files)
			if err != nil {
				_ = db.Close()
				return nil, nil, err
			}
			slog.Info("migrations applied", slog.Int("files", n))
		}
		return db, repository.NewMenuRepository(db), nil
	}
}
