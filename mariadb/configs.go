package mariadb

// Config contains the connection settings for one MariaDB/MySQL target.
type Config struct {
	Connection Connection

	// StatementCacheSize bounds the per-connection prepared statement
	// cache. Zero applies the sqlbridge default.
	StatementCacheSize int

	// MultiStatements allows several statements per ExecRaw call, which
	// externally authored migration scripts need. Parameterized statements
	// are unaffected. Default: false.
	MultiStatements bool
}

// Connection identifies and authenticates against one MariaDB/MySQL instance.
type Connection struct {
	Host     string
	Port     string
	User     string
	Password string
	DbName   string

	// Charset defaults to utf8mb4.
	Charset string

	// TLS selects the driver TLS profile: "", "true", "skip-verify" or
	// "preferred".
	TLS string
}
