// Package config manages application configuration for the QR menu API.
//
// The config package loads and validates configuration from environment variables.
// A .env file in the working directory is read first through godotenv, so local
// development can keep settings out of the shell.
//
// # Configuration Loading
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS, log level)
//   - StoreConfig: which menu document store backs the API
//   - DatabaseConfig: SurrealDB connection settings
//   - MongoConfig: MongoDB connection settings
//   - PublishConfig: share link origin, URL ceiling, QR size
//   - CatalogConfig: optional style catalog override
//   - MetricsConfig: Prometheus endpoint toggle
//
// # Environment Variables
//
//	SERVER_PORT / PORT   - HTTP server port (default: 8080)
//	SERVER_ENV           - development, production or test
//	LOG_LEVEL            - debug, info, warn, error
//	STORE_DRIVER         - surrealdb (default) or mongodb
//	STORE_CONNECT_ATTEMPTS - startup connect attempts (default: 5)
//	STORE_RETRY_DELAY    - first backoff, doubled per retry (default: 1s)
//	STORE_PROBE_INTERVAL - background health probe period (default: 30s)
//	STORE_MIGRATE        - apply embedded SurrealDB migrations at start (default: true)
//	DB_URL               - SurrealDB endpoint, overrides DB_HOST/DB_PORT
//	DB_HOST, DB_PORT     - SurrealDB host and port
//	DB_NAMESPACE         - SurrealDB namespace
//	DB_DATABASE          - SurrealDB database
//	DB_USER, DB_PASSWORD - SurrealDB credentials
//	MONGO_URI            - MongoDB connection string
//	MONGO_DATABASE       - MongoDB database name
//	PUBLIC_ORIGIN        - origin used to build share links
//	MAX_URL_LENGTH       - share link ceiling (default: 2000)
//	QR_SIZE              - QR code edge in pixels (default: 256)
//	STYLE_CATALOG_PATH   - YAML style catalog replacing the embedded one
//	METRICS_ENABLED      - expose /metrics (default: true)
package config
