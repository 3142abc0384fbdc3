package sqlite

import (
	"context"
	"fmt"
	"net/url"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/n-takatsu/sqlbridge/driver"
	"github.com/n-takatsu/sqlbridge/sqldriver"
)

// Connector opens handles on one SQLite database.
type Connector struct {
	cfg Config
	drv *sqlite3.SQLiteDriver
}

// NewConnector creates a connector for the given configuration.
func NewConnector(cfg Config) *Connector {
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = DefaultBusyTimeout
	}
	return &Connector{cfg: cfg, drv: &sqlite3.SQLiteDriver{}}
}

// Engine returns "sqlite".
func (c *Connector) Engine() string { return "sqlite" }

// Dialect returns the SQLite transaction-control dialect.
func (c *Connector) Dialect() driver.Dialect { return Dialect{} }

// Connect opens a database handle. SQLite has no network layer, so ctx is
// honored only for cancellation checks before the open.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := c.drv.Open(c.dsn())
	if err != nil {
		return nil, translateError(err)
	}
	return sqldriver.NewConn(raw, codec{}, sqldriver.Config{
		Engine:             "sqlite",
		VersionQuery:       "SELECT sqlite_version()",
		StatementCacheSize: c.cfg.StatementCacheSize,
	}), nil
}

func (c *Connector) dsn() string {
	q := url.Values{}
	q.Set("_busy_timeout", fmt.Sprint(c.cfg.BusyTimeout.Milliseconds()))
	if c.cfg.ForeignKeys {
		q.Set("_foreign_keys", "on")
	}
	return fmt.Sprintf("file:%s?%s", c.cfg.Path, q.Encode())
}
