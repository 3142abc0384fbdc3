// Package tx implements the transaction coordinator: the state machine of a
// single logical transaction over one exclusively owned pooled connection.
//
// A transaction is Active from Begin until Commit or Rollback moves it to a
// terminal state. While Active it carries the isolation level actually
// applied by the backend and an ordered stack of named savepoints. Once
// terminal, every further operation fails with *TransactionClosedError and
// has no side effect; the connection goes back to the pool only at that
// point, and is destroyed rather than returned if any backend error occurred
// while the transaction was open.
//
// A transaction is single-writer: operations against the same Tx must be
// issued by one caller at a time and execute strictly in submission order.
// The internal mutex protects the state machine against misuse, not to make
// concurrent use a supported pattern.
package tx
