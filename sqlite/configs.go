package sqlite

import "time"

// Config contains the settings for one SQLite database.
type Config struct {
	// Path is the database file path, or ":memory:" for a private in-memory
	// database per connection.
	Path string

	// BusyTimeout is how long a connection waits on a locked database before
	// failing with SQLITE_BUSY. Default: 5s.
	BusyTimeout time.Duration

	// ForeignKeys enables foreign key enforcement, which SQLite ships
	// disabled.
	ForeignKeys bool

	// StatementCacheSize bounds the per-connection prepared statement
	// cache. Zero applies the sqlbridge default.
	StatementCacheSize int
}

const DefaultBusyTimeout = 5 * time.Second
