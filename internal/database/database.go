// Package database wraps the two menu stores behind small connection types.
//
// SurrealDB implements Database: Query returns one {status, result}
// envelope per statement, QueryOne unwraps the first record via FirstRecord,
// and Execute discards results. MongoDB exposes its collection handle
// directly because the mongo driver already has a typed API.
//
// Both Connect methods retry with doubling backoff until Config's attempts
// run out or the context ends. Migrate applies the embedded .surql schema.
//
// Failures are classified by sentinel:
//
//	ErrNotFound    no such record, not a storage failure
//	ErrDuplicate   record key already taken
//	ErrConnection  unreachable store, cancelled or timed out call
//	ErrQuery       the store rejected a statement
//
// IsStorageError reports whether a caller should answer 5xx.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates the record key is already taken.
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, invalid reference, etc.).
	ErrQuery = errors.New("query error")
)

// IsStorageError reports whether err is an exceptional persistence failure,
// as opposed to a normal negative result such as ErrNotFound.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrConnection) || errors.Is(err, ErrQuery) || errors.Is(err, ErrDuplicate)
}

// Database defines the interface for database operations
type Database interface {
	// Connection management
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns results
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds SurrealDB configuration
type Config struct {
	Endpoint  string
	User      string
	Password  string
	Namespace string
	Database  string

	// ConnectAttempts bounds Connect retries; zero or less means one attempt
	ConnectAttempts int
	// RetryDelay is the pause before the second attempt; it doubles after each failure
	RetryDelay time.Duration
}

// retry runs connect until it succeeds, attempts are used up, or ctx ends.
// Each failure is logged; the last one is returned.
func retry(ctx context.Context, driver string, attempts int, delay time.Duration, connect func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	if delay <= 0 {
		delay = time.Second
	}

	var err error
	for attempt := 1; ; attempt++ {
		if err = connect(ctx); err == nil {
			return nil
		}
		if attempt >= attempts {
			return err
		}

		slog.WarnContext(ctx, "store connect failed, retrying",
			slog.String("driver", driver),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", delay),
			slog.String("error", err.Error()),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %v (last error: %v)", ErrConnection, ctx.Err(), err)
		case <-timer.C:
		}
		delay *= 2
	}
}
