// Package mariadb implements the sqlbridge engine adapter for MariaDB and
// MySQL over go-sql-driver/mysql, adapted through the shared sqldriver core.
//
// Prepared statements use the binary protocol, so parameters never touch SQL
// text. All four isolation levels are supported natively. JSON columns are
// carried as structured documents; MariaDB stores JSON as text, so documents
// are serialized on the way in and parsed on the way out.
package mariadb
