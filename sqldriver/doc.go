// Package sqldriver adapts engines that speak through the standard library's
// database/sql/driver interfaces (go-sql-driver/mysql, mattn/go-sqlite3) to
// the sqlbridge driver contracts.
//
// sqlbridge owns connection pooling itself, so this package deliberately
// bypasses database/sql's pool and works on raw driver.Conn values: one
// sqldriver.Conn wraps exactly one wire connection. Per-engine differences
// are confined to a Codec (value encoding/decoding, column-type mapping,
// error classification); everything else — the bounded per-connection
// prepared-statement cache, row draining, parameter binding — is shared.
package sqldriver
