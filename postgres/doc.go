// Package postgres implements the sqlbridge engine adapter for PostgreSQL
// over the native pgx wire protocol.
//
// Parameters travel through the extended query protocol (parse/bind/execute),
// never through SQL text. The adapter maps PostgreSQL OIDs to value tags,
// carries JSON columns as structured documents (JSONB-friendly), and supports
// all four isolation levels natively. Note that PostgreSQL itself runs
// READ UNCOMMITTED as READ COMMITTED; since the server's behavior is at least
// as strict as requested, the adapter reports the requested level as applied.
package postgres
