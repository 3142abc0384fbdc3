// Package database provides a unified client for SQL database operations.
//
// The package ties the sqlbridge layers together behind one engine-agnostic
// surface: typed values (value), bounded connection pooling (pool), prepared
// statement execution (statement) and transactions with savepoints (tx), over
// the engine adapters for PostgreSQL (postgres), MariaDB/MySQL (mariadb) and
// SQLite (sqlite).
//
// # Usage
//
// Applications depend on the database.Client interface for engine-agnostic
// code and select the implementation via configuration:
//
//	client, err := database.NewClient(database.PostgresConfig(postgres.Config{
//	    Connection: postgres.Connection{
//	        Host:     "localhost",
//	        Port:     "5432",
//	        User:     "app",
//	        Password: "secret",
//	        DbName:   "orders",
//	        SSLMode:  "disable",
//	    },
//	}))
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.GracefulShutdown()
//
//	rs, err := client.Query(ctx, "SELECT id, total FROM orders WHERE customer = $1",
//	    value.Text("acme"))
//
// # Engine-Specific Behavior
//
// While the interface is unified, some behavior is engine-specific:
//
// Placeholders:
//   - PostgreSQL: $1, $2, ...
//   - MariaDB and SQLite: ?
//
// Isolation levels:
//   - PostgreSQL: all four accepted (READ UNCOMMITTED runs as READ COMMITTED)
//   - MariaDB: all four native
//   - SQLite: every level degrades to SERIALIZABLE; check Tx.AppliedIsolation
//
// See the individual engine package documentation for details.
package database
