package sqldriver

import (
	"container/list"
	"context"
	stddriver "database/sql/driver"
	"errors"
	"fmt"

	"github.com/n-takatsu/sqlbridge/driver"
	"github.com/n-takatsu/sqlbridge/value"
)

// Codec carries the per-engine deltas: how values cross the wire, how result
// column types map to value tags, and how native errors are classified.
type Codec interface {
	// EncodeParam converts a bound Value into a driver value for this engine.
	// Values outside the engine's range fail with *value.TypeConversionError.
	EncodeParam(v value.Value) (stddriver.Value, error)

	// DecodeColumn converts a scanned driver value into a Value, guided by
	// the column's declared database type name (may be empty for computed
	// columns on some engines).
	DecodeColumn(columnType string, v stddriver.Value) (value.Value, error)

	// ColumnTag maps a declared database type name to the value tag its
	// cells decode to.
	ColumnTag(columnType string) value.Tag

	// TranslateError classifies a native engine error into the typed errors
	// of the driver package. Unrecognized errors are returned unchanged.
	TranslateError(err error) error
}

// Config tunes one adapted connection.
type Config struct {
	// Engine is the adapter name, e.g. "mariadb" or "sqlite".
	Engine string

	// VersionQuery is the engine's version probe, e.g. "SELECT VERSION()".
	VersionQuery string

	// StatementCacheSize bounds the per-connection prepared statement cache.
	// Default: 64.
	StatementCacheSize int
}

const DefaultStatementCacheSize = 64

// Conn wraps one raw database/sql/driver connection. Not safe for concurrent
// use; the pool guarantees a single owner.
type Conn struct {
	cfg   Config
	conn  stddriver.Conn
	codec Codec

	// Prepared statement cache, keyed by exact template text, LRU-bounded.
	// Evicted and destroyed with the connection.
	cache map[string]*list.Element
	lru   *list.List

	closed bool
}

type cacheEntry struct {
	template string
	stmt     *Stmt
}

// NewConn adapts a raw driver connection.
func NewConn(raw stddriver.Conn, codec Codec, cfg Config) *Conn {
	if cfg.StatementCacheSize <= 0 {
		cfg.StatementCacheSize = DefaultStatementCacheSize
	}
	return &Conn{
		cfg:   cfg,
		conn:  raw,
		codec: codec,
		cache: make(map[string]*list.Element),
		lru:   list.New(),
	}
}

// Prepare compiles template, returning the cached statement when this exact
// template text was prepared on this connection before.
func (c *Conn) Prepare(ctx context.Context, template string) (driver.Stmt, error) {
	if c.closed {
		return nil, fmt.Errorf("%s: connection closed", c.cfg.Engine)
	}
	if el, ok := c.cache[template]; ok {
		c.lru.MoveToFront(el)
		return el.Value.(*cacheEntry).stmt, nil
	}

	raw, err := c.prepareRaw(ctx, template)
	if err != nil {
		return nil, c.classifyPrepareError(err)
	}

	st := &Stmt{conn: c, st: raw, template: template, cached: true}
	c.cacheInsert(template, st)
	return st, nil
}

// ExecRaw runs a statement carrying no parameters (transaction control,
// externally authored migration scripts).
func (c *Conn) ExecRaw(ctx context.Context, sql string) error {
	if execer, ok := c.conn.(stddriver.ExecerContext); ok {
		_, err := execer.ExecContext(ctx, sql, nil)
		if err != nil {
			return c.codec.TranslateError(err)
		}
		return nil
	}

	raw, err := c.prepareRaw(ctx, sql)
	if err != nil {
		return c.codec.TranslateError(err)
	}
	defer func() { _ = raw.Close() }()
	if _, err := execRaw(ctx, raw, nil); err != nil {
		return c.codec.TranslateError(err)
	}
	return nil
}

// Ping verifies the session with the driver's native ping when available.
func (c *Conn) Ping(ctx context.Context) error {
	if pinger, ok := c.conn.(stddriver.Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			return c.codec.TranslateError(err)
		}
		return nil
	}
	// Drivers without a Pinger (mattn/go-sqlite3 in-memory) answer a no-op.
	return c.ExecRaw(ctx, "SELECT 1")
}

// ServerVersion runs the engine's version probe and returns the first cell.
func (c *Conn) ServerVersion(ctx context.Context) (string, error) {
	st, err := c.Prepare(ctx, c.cfg.VersionQuery)
	if err != nil {
		return "", err
	}
	rs, err := st.Query(ctx, nil)
	if err != nil {
		return "", err
	}
	if rs.Len() == 0 || len(rs.Rows[0]) == 0 {
		return "", fmt.Errorf("%s: version probe returned no rows", c.cfg.Engine)
	}
	if s, ok := rs.Rows[0][0].AsText(); ok {
		return s, nil
	}
	return rs.Rows[0][0].String(), nil
}

// Close evicts the statement cache and terminates the session.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	for el := c.lru.Front(); el != nil; el = el.Next() {
		entry := el.Value.(*cacheEntry)
		_ = entry.stmt.st.Close()
	}
	c.cache = nil
	c.lru.Init()
	return c.conn.Close()
}

func (c *Conn) prepareRaw(ctx context.Context, template string) (stddriver.Stmt, error) {
	if pc, ok := c.conn.(stddriver.ConnPrepareContext); ok {
		return pc.PrepareContext(ctx, template)
	}
	return c.conn.Prepare(template)
}

func (c *Conn) cacheInsert(template string, st *Stmt) {
	for c.lru.Len() >= c.cfg.StatementCacheSize {
		back := c.lru.Back()
		entry := back.Value.(*cacheEntry)
		entry.stmt.cached = false
		_ = entry.stmt.st.Close()
		delete(c.cache, entry.template)
		c.lru.Remove(back)
	}
	c.cache[template] = c.lru.PushFront(&cacheEntry{template: template, stmt: st})
}

// classifyPrepareError folds engine rejections at prepare time into
// *driver.SyntaxError: malformed SQL and unknown relations alike are
// compile-stage rejections of the template. Connection-level failures keep
// their original classification.
func (c *Conn) classifyPrepareError(err error) error {
	if errors.Is(err, stddriver.ErrBadConn) {
		return fmt.Errorf("%s: prepare: %w", c.cfg.Engine, err)
	}
	translated := c.codec.TranslateError(err)
	var be *driver.BackendError
	if errors.As(translated, &be) && !be.Retryable {
		return &driver.SyntaxError{Code: be.Code, Message: be.Message}
	}
	return translated
}
