package mariadb

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/n-takatsu/sqlbridge/driver"
	"github.com/n-takatsu/sqlbridge/sqldriver"
)

// Connector opens sessions to one MariaDB/MySQL target.
type Connector struct {
	cfg Config
}

// NewConnector creates a connector for the given configuration. No network
// activity happens until Connect.
func NewConnector(cfg Config) *Connector {
	if cfg.Connection.Charset == "" {
		cfg.Connection.Charset = "utf8mb4"
	}
	return &Connector{cfg: cfg}
}

// Engine returns "mariadb".
func (c *Connector) Engine() string { return "mariadb" }

// Dialect returns the MariaDB transaction-control dialect.
func (c *Connector) Dialect() driver.Dialect { return Dialect{} }

// Connect dials and authenticates a single session, bypassing database/sql's
// own pool: sqlbridge owns pooling.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	mcfg := mysql.NewConfig()
	mcfg.User = c.cfg.Connection.User
	mcfg.Passwd = c.cfg.Connection.Password
	mcfg.Net = "tcp"
	mcfg.Addr = net.JoinHostPort(c.cfg.Connection.Host, c.cfg.Connection.Port)
	mcfg.DBName = c.cfg.Connection.DbName
	mcfg.ParseTime = true
	mcfg.Loc = time.UTC
	mcfg.MultiStatements = c.cfg.MultiStatements
	mcfg.Params = map[string]string{"charset": c.cfg.Connection.Charset}
	if c.cfg.Connection.TLS != "" {
		mcfg.TLSConfig = c.cfg.Connection.TLS
	}

	connector, err := mysql.NewConnector(mcfg)
	if err != nil {
		return nil, fmt.Errorf("mariadb config: %w", err)
	}
	raw, err := connector.Connect(ctx)
	if err != nil {
		return nil, translateError(err)
	}

	return sqldriver.NewConn(raw, codec{}, sqldriver.Config{
		Engine:             "mariadb",
		VersionQuery:       "SELECT VERSION()",
		StatementCacheSize: c.cfg.StatementCacheSize,
	}), nil
}
