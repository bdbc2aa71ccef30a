// Package testdb provides test database utilities for the QR menu API.
//
// # Test Database Setup
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t) // skips when SurrealDB is unreachable
//	    repo := repository.NewMenuRepository(tdb.DB)
//	}
//
// # Configuration
//
//	TEST_DB_URL                  - full endpoint, e.g. ws://localhost:8000
//	TEST_DB_HOST, TEST_DB_PORT   - used when TEST_DB_URL is unset
//	TEST_DB_USER, TEST_DB_PASSWORD
//
// # Isolation
//
// Each TestDB gets its own namespace with the embedded migrations applied.
// The namespace is removed when the test ends.
package testdb
