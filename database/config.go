package database

import (
	"github.com/n-takatsu/sqlbridge/mariadb"
	"github.com/n-takatsu/sqlbridge/pool"
	"github.com/n-takatsu/sqlbridge/postgres"
	"github.com/n-takatsu/sqlbridge/sqlite"
	"github.com/n-takatsu/sqlbridge/statement"
)

// Config contains configuration for database client creation.
// Use one of the helper functions (PostgresConfig, MariaDBConfig,
// SQLiteConfig) to create it.
type Config struct {
	// Type is the database type ("postgres", "mariadb" or "sqlite")
	Type string

	// Postgres configuration (used when Type = "postgres")
	Postgres *postgres.Config

	// MariaDB configuration (used when Type = "mariadb")
	MariaDB *mariadb.Config

	// SQLite configuration (used when Type = "sqlite")
	SQLite *sqlite.Config

	// Pool tunes the connection pool. Zero fields take package defaults.
	Pool pool.Config

	// Statement tunes the executor: default query timeout, slow statement
	// threshold, logger, metrics observer and tracer.
	Statement statement.Config
}

// PostgresConfig creates a database.Config for PostgreSQL.
//
// Example:
//
//	cfg := database.PostgresConfig(postgres.Config{
//	    Connection: postgres.Connection{
//	        Host: "localhost",
//	        Port: "5432",
//	        // ...
//	    },
//	})
func PostgresConfig(cfg postgres.Config) Config {
	return Config{
		Type:     "postgres",
		Postgres: &cfg,
	}
}

// MariaDBConfig creates a database.Config for MariaDB/MySQL.
//
// Example:
//
//	cfg := database.MariaDBConfig(mariadb.Config{
//	    Connection: mariadb.Connection{
//	        Host: "localhost",
//	        Port: "3306",
//	        // ...
//	    },
//	})
func MariaDBConfig(cfg mariadb.Config) Config {
	return Config{
		Type:    "mariadb",
		MariaDB: &cfg,
	}
}

// SQLiteConfig creates a database.Config for SQLite.
//
// Example:
//
//	cfg := database.SQLiteConfig(sqlite.Config{Path: ":memory:"})
func SQLiteConfig(cfg sqlite.Config) Config {
	return Config{
		Type:   "sqlite",
		SQLite: &cfg,
	}
}

// Validate checks the configuration without touching the network.
func (c Config) Validate() error {
	switch c.Type {
	case "postgres":
		if c.Postgres == nil {
			return &InvalidConfigError{Field: "Postgres", Reason: "required when Type=postgres"}
		}
		if c.Postgres.Connection.Host == "" {
			return &InvalidConfigError{Field: "Postgres.Connection.Host", Reason: "must not be empty"}
		}
		if c.Postgres.Connection.Port == "" {
			return &InvalidConfigError{Field: "Postgres.Connection.Port", Reason: "must not be empty"}
		}
		if c.Postgres.Connection.User == "" {
			return &InvalidConfigError{Field: "Postgres.Connection.User", Reason: "must not be empty"}
		}
		if c.Postgres.Connection.DbName == "" {
			return &InvalidConfigError{Field: "Postgres.Connection.DbName", Reason: "must not be empty"}
		}
	case "mariadb":
		if c.MariaDB == nil {
			return &InvalidConfigError{Field: "MariaDB", Reason: "required when Type=mariadb"}
		}
		if c.MariaDB.Connection.Host == "" {
			return &InvalidConfigError{Field: "MariaDB.Connection.Host", Reason: "must not be empty"}
		}
		if c.MariaDB.Connection.Port == "" {
			return &InvalidConfigError{Field: "MariaDB.Connection.Port", Reason: "must not be empty"}
		}
		if c.MariaDB.Connection.User == "" {
			return &InvalidConfigError{Field: "MariaDB.Connection.User", Reason: "must not be empty"}
		}
		if c.MariaDB.Connection.DbName == "" {
			return &InvalidConfigError{Field: "MariaDB.Connection.DbName", Reason: "must not be empty"}
		}
	case "sqlite":
		if c.SQLite == nil {
			return &InvalidConfigError{Field: "SQLite", Reason: "required when Type=sqlite"}
		}
		if c.SQLite.Path == "" {
			return &InvalidConfigError{Field: "SQLite.Path", Reason: "must not be empty"}
		}
	default:
		return &InvalidConfigError{Field: "Type", Reason: "must be 'postgres', 'mariadb' or 'sqlite'"}
	}
	if c.Pool.MaxSize < 0 {
		return &InvalidConfigError{Field: "Pool.MaxSize", Reason: "must not be negative"}
	}
	if c.Pool.AcquireTimeout < 0 {
		return &InvalidConfigError{Field: "Pool.AcquireTimeout", Reason: "must not be negative"}
	}
	return nil
}
