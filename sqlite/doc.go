// Package sqlite implements the sqlbridge engine adapter for SQLite over
// mattn/go-sqlite3, adapted through the shared sqldriver core.
//
// SQLite is embedded: a connection is a handle on a database file (or an
// in-memory database), so "connect" never crosses a network. Every isolation
// level degrades to SERIALIZABLE, the only level the engine implements; the
// degradation is reported through the transaction's applied level. Column
// types follow SQLite's declared-type affinity rules, with JSON and UUID
// recognized by declaration.
package sqlite
