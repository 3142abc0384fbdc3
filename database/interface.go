package database

import (
	"context"

	"github.com/n-takatsu/sqlbridge/driver"
	"github.com/n-takatsu/sqlbridge/pool"
	"github.com/n-takatsu/sqlbridge/tx"
	"github.com/n-takatsu/sqlbridge/value"
)

// Client is the main database client interface providing parameterized
// statement execution, transactions and lifecycle management.
//
// This interface allows applications to:
//   - Switch between PostgreSQL, MariaDB and SQLite without code changes
//   - Write engine-agnostic business logic
//   - Mock database operations easily for testing
//
// Implementations:
//   - *DB (returned by NewClient) implements this interface
type Client interface {
	// Connect establishes the pool and verifies connectivity with one real
	// round trip. It must be called before any other operation.
	Connect(ctx context.Context) error

	// Engine returns the adapter name ("postgres", "mariadb" or "sqlite").
	Engine() string

	// Version reports the backend's server version string.
	Version(ctx context.Context) (string, error)

	// HealthCheck runs a lightweight round trip and reports liveness. It
	// never raises on transient failure.
	HealthCheck(ctx context.Context) bool

	// Prepare compiles a statement template against the backend, surfacing
	// syntax errors early. The compiled statement is cached per connection.
	Prepare(ctx context.Context, template string) error

	// Query runs a parameterized query in autocommit mode and returns the
	// full result set. Parameters are bound positionally; values never
	// appear in SQL text.
	Query(ctx context.Context, template string, params ...value.Value) (*driver.ResultSet, error)

	// Exec runs a parameterized statement in autocommit mode and returns
	// the number of affected rows.
	Exec(ctx context.Context, template string, params ...value.Value) (int64, error)

	// Begin opens a transaction at the given isolation level, bound to one
	// pooled connection for its lifetime. The engine may degrade to a
	// stricter level; check Tx.AppliedIsolation.
	Begin(ctx context.Context, level driver.IsolationLevel) (*tx.Tx, error)

	// ApplyMigration runs an externally authored, possibly multi-statement
	// SQL script verbatim. No parameter binding takes place.
	ApplyMigration(ctx context.Context, script string) error

	// IsRetryable reports whether err describes a transient condition
	// (serialization failure, deadlock, lock timeout) that a fresh attempt
	// may resolve.
	IsRetryable(err error) bool

	// PoolStats returns a snapshot of connection pool accounting.
	PoolStats() pool.Stats

	// GracefulShutdown closes the pool and all its connections.
	GracefulShutdown() error
}
