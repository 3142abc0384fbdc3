package postgres

// Config contains the connection settings for one PostgreSQL target.
type Config struct {
	Connection Connection

	// StatementCacheSize bounds the per-connection prepared statement
	// cache. Zero applies the sqlbridge default.
	StatementCacheSize int
}

// Connection identifies and authenticates against one PostgreSQL instance.
type Connection struct {
	Host     string
	Port     string
	User     string
	Password string
	DbName   string

	// SSLMode is passed through to libpq-style connection parameters:
	// disable, require, verify-ca or verify-full.
	SSLMode string
}
