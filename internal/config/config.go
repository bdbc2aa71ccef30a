package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverSurrealDB = "surrealdb"
	DriverMongoDB   = "mongodb"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Publish  PublishConfig
	Catalog  CatalogConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// StoreConfig selects the menu document store backend
type StoreConfig struct {
	Driver          string
	ProbeInterval   time.Duration
	ConnectAttempts int
	RetryDelay      time.Duration
	Migrate         bool
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	URL       string
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI      string
	Database string
}

// PublishConfig holds share link and QR code settings
type PublishConfig struct {
	PublicOrigin string
	MaxURLLength int
	QRSize       int
}

// CatalogConfig points at an optional style catalog override
type CatalogConfig struct {
	Path string
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", getEnv("PORT", "8080")),
			Env:            getEnv("SERVER_ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Store: StoreConfig{
			Driver:          strings.ToLower(getEnv("STORE_DRIVER", DriverSurrealDB)),
			ProbeInterval:   getDurationEnv("STORE_PROBE_INTERVAL", 30*time.Second),
			ConnectAttempts: getIntEnv("STORE_CONNECT_ATTEMPTS", 5),
			RetryDelay:      getDurationEnv("STORE_RETRY_DELAY", time.Second),
			Migrate:         getBoolEnv("STORE_MIGRATE", true),
		},
		Database: DatabaseConfig{
			URL:       getEnv("DB_URL", ""),
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "qrmenu"),
			Database:  getEnv("DB_DATABASE", "main"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", ""),
			Database: getEnv("MONGO_DATABASE", "qrmenu"),
		},
		Publish: PublishConfig{
			PublicOrigin: strings.TrimRight(getEnv("PUBLIC_ORIGIN", "http://localhost:8080"), "/"),
			MaxURLLength: getIntEnv("MAX_URL_LENGTH", 2000),
			QRSize:       getIntEnv("QR_SIZE", 256),
		},
		Catalog: CatalogConfig{
			Path: getEnv("STYLE_CATALOG_PATH", ""),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("METRICS_ENABLED", true),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	// Store validation
	switch c.Store.Driver {
	case DriverSurrealDB:
		if c.Database.URL == "" {
			if c.Database.Host == "" {
				errs = append(errs, errors.New("DB_HOST is required"))
			}
			if c.Database.Port == "" {
				errs = append(errs, errors.New("DB_PORT is required"))
			}
		}
		if c.Database.Namespace == "" {
			errs = append(errs, errors.New("DB_NAMESPACE is required"))
		}
		if c.Database.Database == "" {
			errs = append(errs, errors.New("DB_DATABASE is required"))
		}
	case DriverMongoDB:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when STORE_DRIVER is mongodb"))
		}
		if c.Mongo.Database == "" {
			errs = append(errs, errors.New("MONGO_DATABASE is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be '%s' or '%s', got '%s'", DriverSurrealDB, DriverMongoDB, c.Store.Driver))
	}

	if c.Store.ConnectAttempts < 1 {
		errs = append(errs, fmt.Errorf("STORE_CONNECT_ATTEMPTS must be at least 1, got %d", c.Store.ConnectAttempts))
	}
	if c.Store.ProbeInterval <= 0 {
		errs = append(errs, errors.New("STORE_PROBE_INTERVAL must be positive"))
	}

	// Publish validation
	if u, err := url.Parse(c.Publish.PublicOrigin); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("PUBLIC_ORIGIN must be an absolute URL, got '%s'", c.Publish.PublicOrigin))
	}
	if c.Publish.MaxURLLength <= 0 {
		errs = append(errs, errors.New("MAX_URL_LENGTH must be positive"))
	}
	if c.Publish.QRSize < 64 || c.Publish.QRSize > 2048 {
		errs = append(errs, fmt.Errorf("QR_SIZE must be between 64 and 2048, got %d", c.Publish.QRSize))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SurrealEndpoint returns the websocket endpoint for SurrealDB.
// DB_URL wins over DB_HOST/DB_PORT when set.
func (d DatabaseConfig) SurrealEndpoint() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("ws://%s:%s", d.Host, d.Port)
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
