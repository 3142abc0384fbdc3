package postgres

import (
	"container/list"
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/n-takatsu/sqlbridge/driver"
	"github.com/n-takatsu/sqlbridge/value"
)

const defaultStatementCacheSize = 64

// Connector opens native-protocol sessions to one PostgreSQL target.
type Connector struct {
	cfg Config
}

// NewConnector creates a connector for the given configuration. No network
// activity happens until Connect.
func NewConnector(cfg Config) *Connector {
	if cfg.StatementCacheSize <= 0 {
		cfg.StatementCacheSize = defaultStatementCacheSize
	}
	return &Connector{cfg: cfg}
}

// Engine returns "postgres".
func (c *Connector) Engine() string { return "postgres" }

// Dialect returns the PostgreSQL transaction-control dialect.
func (c *Connector) Dialect() driver.Dialect { return Dialect{} }

// connString builds a libpq-style DSN. Unset settings are omitted so pgx
// applies its own defaults; an empty sslmode= pair would be rejected by
// pgx.ParseConfig.
func (c *Connector) connString() string {
	settings := []struct{ key, val string }{
		{"host", c.cfg.Connection.Host},
		{"port", c.cfg.Connection.Port},
		{"user", c.cfg.Connection.User},
		{"password", c.cfg.Connection.Password},
		{"dbname", c.cfg.Connection.DbName},
		{"sslmode", c.cfg.Connection.SSLMode},
	}
	var b strings.Builder
	for _, s := range settings {
		if s.val == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.key)
		b.WriteByte('=')
		b.WriteString(s.val)
	}
	return b.String()
}

// Connect dials and authenticates a single session.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	pgcfg, err := pgx.ParseConfig(c.connString())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	// sqlbridge manages its own statement cache keyed by template text.
	pgcfg.DefaultQueryExecMode = pgx.QueryExecModeDescribeExec

	conn, err := pgx.ConnectConfig(ctx, pgcfg)
	if err != nil {
		return nil, translateError(err)
	}

	return &Conn{
		conn:      conn,
		cacheSize: c.cfg.StatementCacheSize,
		cache:     make(map[string]*list.Element),
		lru:       list.New(),
	}, nil
}

// Conn is one live PostgreSQL session. Not safe for concurrent use; the pool
// guarantees a single owner.
type Conn struct {
	conn *pgx.Conn

	cacheSize int
	cache     map[string]*list.Element
	lru       *list.List
}

type cacheEntry struct {
	template string
	stmt     *Stmt
}

// Prepare compiles template through the extended protocol, reusing the
// server-side prepared statement when this exact template text was prepared
// on this connection before.
func (c *Conn) Prepare(ctx context.Context, template string) (driver.Stmt, error) {
	if el, ok := c.cache[template]; ok {
		c.lru.MoveToFront(el)
		return el.Value.(*cacheEntry).stmt, nil
	}

	name := statementName(template)
	sd, err := c.conn.Prepare(ctx, name, template)
	if err != nil {
		return nil, classifyPrepareError(err)
	}

	st := &Stmt{conn: c, name: name, desc: sd}
	c.cacheInsert(ctx, template, st)
	return st, nil
}

// ExecRaw runs a statement carrying no parameters.
func (c *Conn) ExecRaw(ctx context.Context, sql string) error {
	if _, err := c.conn.Exec(ctx, sql); err != nil {
		return translateError(err)
	}
	return nil
}

// Ping verifies the session with an empty-query round trip.
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.conn.Ping(ctx); err != nil {
		return translateError(err)
	}
	return nil
}

// ServerVersion reports the server_version parameter negotiated at startup;
// no query round trip is needed.
func (c *Conn) ServerVersion(ctx context.Context) (string, error) {
	v := c.conn.PgConn().ParameterStatus("server_version")
	if v == "" {
		return "", fmt.Errorf("postgres: server_version parameter not reported")
	}
	return v, nil
}

// Close terminates the session. Server-side prepared statements die with it.
func (c *Conn) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.cache = nil
	c.lru.Init()
	return c.conn.Close(ctx)
}

func (c *Conn) cacheInsert(ctx context.Context, template string, st *Stmt) {
	for c.lru.Len() >= c.cacheSize {
		back := c.lru.Back()
		entry := back.Value.(*cacheEntry)
		_ = c.conn.Deallocate(ctx, entry.stmt.name)
		delete(c.cache, entry.template)
		c.lru.Remove(back)
	}
	c.cache[template] = c.lru.PushFront(&cacheEntry{template: template, stmt: st})
}

// statementName derives a stable server-side statement name from the
// template text.
func statementName(template string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(template))
	return fmt.Sprintf("sqlbridge_%x", h.Sum64())
}

// Stmt is a server-side prepared statement.
type Stmt struct {
	conn *Conn
	name string
	desc *pgconn.StatementDescription
}

// NumParams returns the placeholder count reported by the server at parse
// time.
func (s *Stmt) NumParams() int { return len(s.desc.ParamOIDs) }

// Query binds params positionally and executes, draining all rows.
func (s *Stmt) Query(ctx context.Context, params []value.Value) (*driver.ResultSet, error) {
	args, err := encodeParams(params, s.desc.ParamOIDs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := s.conn.conn.Query(ctx, s.name, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]driver.Column, len(fields))
	for i, f := range fields {
		columns[i] = driver.Column{Name: string(f.Name), Tag: oidTag(f.DataTypeOID)}
	}

	var out [][]value.Value
	for rows.Next() {
		raw, err := rows.Values()
		if err != nil {
			return nil, translateError(err)
		}
		row := make([]value.Value, len(raw))
		for i, cell := range raw {
			decoded, err := decodeCell(fields[i].DataTypeOID, cell)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", columns[i].Name, err)
			}
			row[i] = decoded
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	return &driver.ResultSet{
		Columns: columns,
		Rows:    out,
		Elapsed: time.Since(start),
	}, nil
}

// Exec binds params positionally and executes a statement returning no rows.
func (s *Stmt) Exec(ctx context.Context, params []value.Value) (driver.ExecResult, error) {
	args, err := encodeParams(params, s.desc.ParamOIDs)
	if err != nil {
		return driver.ExecResult{}, err
	}

	start := time.Now()
	tag, err := s.conn.conn.Exec(ctx, s.name, args...)
	if err != nil {
		return driver.ExecResult{}, translateError(err)
	}
	return driver.ExecResult{RowsAffected: tag.RowsAffected(), Elapsed: time.Since(start)}, nil
}

// Close is a no-op; the statement is owned by the connection's cache and is
// deallocated on eviction or with the connection.
func (s *Stmt) Close() error { return nil }
