package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/n-takatsu/sqlbridge/driver"
	"github.com/n-takatsu/sqlbridge/mariadb"
	"github.com/n-takatsu/sqlbridge/pool"
	"github.com/n-takatsu/sqlbridge/postgres"
	"github.com/n-takatsu/sqlbridge/sqlite"
	"github.com/n-takatsu/sqlbridge/statement"
	"github.com/n-takatsu/sqlbridge/tx"
	"github.com/n-takatsu/sqlbridge/value"
)

// DB is the concrete Client implementation. Create it with NewClient, then
// call Connect before use. All methods are safe for concurrent use once
// Connect has returned.
type DB struct {
	cfg       Config
	connector driver.Connector
	exec      *statement.Executor

	// connectMu serializes Connect attempts so concurrent callers share
	// one verification outcome.
	connectMu sync.Mutex

	mu   sync.RWMutex
	pool *pool.Pool
}

// NewClient validates cfg and builds a client for the configured engine.
// No connection is attempted until Connect.
func NewClient(cfg Config) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var connector driver.Connector
	switch cfg.Type {
	case "postgres":
		connector = postgres.NewConnector(*cfg.Postgres)
	case "mariadb":
		connector = mariadb.NewConnector(*cfg.MariaDB)
	case "sqlite":
		connector = sqlite.NewConnector(*cfg.SQLite)
	}

	return &DB{
		cfg:       cfg,
		connector: connector,
		exec:      statement.New(cfg.Statement),
	}, nil
}

// Connect establishes the pool and verifies connectivity eagerly with one
// real acquire-and-ping round trip, so misconfiguration surfaces here rather
// than on the first query. The pool is published only after verification
// succeeds; a concurrent Connect blocks until the in-flight attempt settles
// and returns nil only when that attempt (or its own retry) verified.
func (db *DB) Connect(ctx context.Context) error {
	db.connectMu.Lock()
	defer db.connectMu.Unlock()

	db.mu.RLock()
	connected := db.pool != nil
	db.mu.RUnlock()
	if connected {
		return nil
	}

	p := pool.New(db.connector, db.cfg.Pool)
	conn, err := p.Acquire(ctx)
	if err != nil {
		p.Close()
		return fmt.Errorf("connect %s: %w", db.connector.Engine(), err)
	}
	pingErr := conn.Raw().Ping(ctx)
	if pingErr != nil {
		conn.MarkBroken()
	}
	conn.Release()
	if pingErr != nil {
		p.Close()
		return fmt.Errorf("connect %s: %w", db.connector.Engine(), pingErr)
	}

	db.mu.Lock()
	db.pool = p
	db.mu.Unlock()
	return nil
}

// Engine returns the adapter name.
func (db *DB) Engine() string { return db.connector.Engine() }

// Version reports the backend's server version string.
func (db *DB) Version(ctx context.Context) (string, error) {
	p, err := db.getPool()
	if err != nil {
		return "", err
	}
	conn, err := p.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Release()

	v, err := conn.Raw().ServerVersion(ctx)
	if err != nil {
		db.taintOn(conn, err)
		return "", err
	}
	return v, nil
}

// HealthCheck runs a lightweight round trip and reports liveness.
func (db *DB) HealthCheck(ctx context.Context) bool {
	p, err := db.getPool()
	if err != nil {
		return false
	}
	return p.HealthCheck(ctx)
}

// Prepare compiles template against the backend, surfacing syntax errors
// (including unknown relations) before any execution. The compiled statement
// stays cached on the connection that prepared it.
func (db *DB) Prepare(ctx context.Context, template string) error {
	p, err := db.getPool()
	if err != nil {
		return err
	}
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := db.exec.Prepare(ctx, conn.Raw(), p.Engine(), template); err != nil {
		db.taintOn(conn, err)
		return err
	}
	return nil
}

// Query runs a parameterized query in autocommit mode.
func (db *DB) Query(ctx context.Context, template string, params ...value.Value) (*driver.ResultSet, error) {
	p, err := db.getPool()
	if err != nil {
		return nil, err
	}
	conn, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rs, err := db.exec.Query(ctx, conn.Raw(), p.Engine(), template, params)
	if err != nil {
		db.taintOn(conn, err)
		return nil, err
	}
	return rs, nil
}

// Exec runs a parameterized statement in autocommit mode and returns the
// number of affected rows.
func (db *DB) Exec(ctx context.Context, template string, params ...value.Value) (int64, error) {
	p, err := db.getPool()
	if err != nil {
		return 0, err
	}
	conn, err := p.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	res, err := db.exec.Exec(ctx, conn.Raw(), p.Engine(), template, params)
	if err != nil {
		db.taintOn(conn, err)
		return 0, err
	}
	return res.RowsAffected, nil
}

// Begin opens a transaction at the given isolation level.
func (db *DB) Begin(ctx context.Context, level driver.IsolationLevel) (*tx.Tx, error) {
	p, err := db.getPool()
	if err != nil {
		return nil, err
	}
	return tx.Begin(ctx, p, db.exec, level)
}

// ApplyMigration runs an externally authored SQL script verbatim on one
// connection. Scripts carry no parameters; multi-statement scripts need the
// engine to allow them (see mariadb.Config.MultiStatements).
func (db *DB) ApplyMigration(ctx context.Context, script string) error {
	p, err := db.getPool()
	if err != nil {
		return err
	}
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if err := conn.Raw().ExecRaw(ctx, script); err != nil {
		db.taintOn(conn, err)
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// IsRetryable reports whether err describes a transient condition that a
// fresh attempt may resolve.
func (db *DB) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return driver.IsRetryable(err) || db.connector.Dialect().IsSerializationFailure(err)
}

// PoolStats returns a snapshot of connection pool accounting. It returns the
// zero Stats before Connect.
func (db *DB) PoolStats() pool.Stats {
	p, err := db.getPool()
	if err != nil {
		return pool.Stats{}
	}
	return p.Stats()
}

// GracefulShutdown closes the pool and all its connections. Connections still
// checked out are destroyed on release. Safe to call more than once.
func (db *DB) GracefulShutdown() error {
	db.teardown()
	return nil
}

func (db *DB) getPool() (*pool.Pool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.pool == nil {
		return nil, ErrNotConnected
	}
	return db.pool, nil
}

func (db *DB) teardown() {
	db.mu.Lock()
	p := db.pool
	db.pool = nil
	db.mu.Unlock()
	if p != nil {
		p.Close()
	}
}

// taintOn marks the connection broken for errors the backend produced.
// Rejections caught before the wire (parameter count, value conversion) and
// compile-stage rejections of the template leave the session healthy.
func (db *DB) taintOn(conn *pool.Conn, err error) {
	if driver.IsParameterCountMismatch(err) || driver.IsSyntaxError(err) || value.IsTypeConversionError(err) {
		return
	}
	conn.MarkBroken()
}
