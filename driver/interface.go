package driver

import (
	"context"
	"time"

	"github.com/n-takatsu/sqlbridge/value"
)

// Connector opens connections to one configured backend target.
// A Connector is safe for concurrent use; the Conns it returns are not.
type Connector interface {
	// Engine returns the adapter name, e.g. "postgres", "mariadb" or "sqlite".
	Engine() string

	// Connect dials and authenticates a single new session.
	Connect(ctx context.Context) (Conn, error)

	// Dialect returns the transaction-control dialect for this engine.
	Dialect() Dialect
}

// Conn is one live, authenticated session. A Conn has exactly one owner at a
// time; the pool enforces this. Implementations cache prepared statements per
// connection, bounded by the configured statement cache size, and discard the
// cache when the connection is closed.
type Conn interface {
	// Prepare compiles template, returning a cached Stmt when the exact
	// template text was prepared on this connection before. A template the
	// backend rejects at prepare time fails with *SyntaxError.
	Prepare(ctx context.Context, template string) (Stmt, error)

	// ExecRaw runs a statement that carries no parameters, such as
	// transaction control or an externally authored migration script.
	ExecRaw(ctx context.Context, sql string) error

	// Ping verifies the session is alive with a lightweight no-op round trip.
	Ping(ctx context.Context) error

	// ServerVersion reports the backend's version string.
	ServerVersion(ctx context.Context) (string, error)

	// Close terminates the session and releases the statement cache.
	Close() error
}

// Stmt is a compiled statement bound to the connection that prepared it.
type Stmt interface {
	// NumParams returns the number of placeholders in the template, or -1
	// when the engine cannot report it before execution.
	NumParams() int

	// Query binds params positionally and executes, returning all rows.
	Query(ctx context.Context, params []value.Value) (*ResultSet, error)

	// Exec binds params positionally and executes a statement that returns
	// no rows.
	Exec(ctx context.Context, params []value.Value) (ExecResult, error)

	// Close releases the statement unless it is owned by the connection's
	// statement cache, in which case it is a no-op.
	Close() error
}

// Column describes one result column.
type Column struct {
	// Name is the column name as reported by the backend.
	Name string

	// Tag is the value tag cells in this column decode to.
	Tag value.Tag
}

// ResultSet is the immutable outcome of one query execution. It is owned by
// the caller once returned.
type ResultSet struct {
	Columns []Column
	Rows    [][]value.Value

	// Elapsed is the wall-clock execution time measured by the adapter.
	Elapsed time.Duration
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int { return len(rs.Rows) }

// Value returns the cell at row i in the named column.
// ok is false when the row index or column name does not resolve.
func (rs *ResultSet) Value(i int, column string) (value.Value, bool) {
	if i < 0 || i >= len(rs.Rows) {
		return value.Null(), false
	}
	for c, col := range rs.Columns {
		if col.Name == column {
			return rs.Rows[i][c], true
		}
	}
	return value.Null(), false
}

// ExecResult is the outcome of one non-query execution.
type ExecResult struct {
	RowsAffected int64
	Elapsed      time.Duration
}
