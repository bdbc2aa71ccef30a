package testdb

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/forgo/qrmenu/api/internal/database"
	"github.com/forgo/qrmenu/api/migrations"
)

// TestDB is a SurrealDB connection scoped to a throwaway namespace
type TestDB struct {
	DB        database.Database
	Namespace string

	t      *testing.T
	closed atomic.Bool
}

var sequence atomic.Int64

// New connects to the test SurrealDB, selects a fresh namespace and applies
// the embedded migrations. It skips t when no server answers. The namespace
// is dropped by Close, which also runs as a t.Cleanup.
func New(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("testdb: database tests disabled in short mode")
	}

	cfg := connectionConfig()
	cfg.Namespace = fmt.Sprintf("test_%d_%d", os.Getpid(), sequence.Add(1))
	cfg.Database = "test"

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Skipf("testdb: no SurrealDB at %s: %v", cfg.Endpoint, err)
	}

	if _, err := database.Migrate(ctx, db, migrations.Files); err != nil {
		_ = db.Close()
		t.Fatalf("testdb: %v", err)
	}

	tdb := &TestDB{DB: db, Namespace: cfg.Namespace, t: t}
	t.Cleanup(tdb.Close)
	return tdb
}

func connectionConfig() database.Config {
	endpoint := os.Getenv("TEST_DB_URL")
	if endpoint == "" {
		endpoint = "ws://" + envOr("TEST_DB_HOST", "localhost") + ":" + envOr("TEST_DB_PORT", "8000")
	}
	return database.Config{
		Endpoint:        endpoint,
		User:            envOr("TEST_DB_USER", "root"),
		Password:        envOr("TEST_DB_PASSWORD", "root"),
		ConnectAttempts: 1,
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// Close drops the namespace and disconnects. Safe to call more than once.
func (tdb *TestDB) Close() {
	if tdb == nil || tdb.DB == nil || !tdb.closed.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = tdb.DB.Execute(ctx, "REMOVE NAMESPACE IF EXISTS "+tdb.Namespace, nil)
	_ = tdb.DB.Close()
}

// Ctx returns a 10s context released when the test finishes
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// MustQuery runs query and fails the test on error
func (tdb *TestDB) MustQuery(query string, vars map[string]interface{}) []interface{} {
	tdb.t.Helper()
	results, err := tdb.DB.Query(tdb.Ctx(), query, vars)
	if err != nil {
		tdb.t.Fatalf("testdb: %v\nquery: %s", err, query)
	}
	return results
}

// Count returns the number of rows in table
func (tdb *TestDB) Count(table string) int {
	tdb.t.Helper()
	record, err := database.FirstRecord(tdb.MustQuery("SELECT count() FROM type::table($tb) GROUP ALL", map[string]interface{}{"tb": table}))
	if err != nil {
		return 0
	}
	row, _ := record.(map[string]interface{})
	switch n := row["count"].(type) {
	case float64:
		return int(n)
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case int:
		return n
	}
	return 0
}
