// Package driver defines the contracts every engine adapter implements and
// the typed errors those adapters surface.
//
// An adapter covers one backend wire protocol and provides four capabilities:
// opening connections (Connector), preparing and executing parameterized
// statements (Conn, Stmt), translating the engine's native types to and from
// the value model, and expressing transaction control in the engine's SQL
// dialect (Dialect).
//
// The rest of sqlbridge (pool, statement executor, transaction coordinator,
// facade) is written purely against these contracts, so adding a backend
// means implementing this package's interfaces and nothing else.
//
// Parameters are always carried through the backend's native bind protocol
// and never interpolated into SQL text. The only identifiers this layer ever
// splices into SQL are savepoint names, which must pass ValidateIdentifier
// first.
package driver
