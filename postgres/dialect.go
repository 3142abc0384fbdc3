package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/n-takatsu/sqlbridge/driver"
)

// SQLSTATE codes for transactions that lost a concurrency conflict.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// Dialect expresses transaction control in PostgreSQL SQL. PostgreSQL
// supports all four isolation levels natively (READ UNCOMMITTED is accepted
// and runs as READ COMMITTED, which is stricter than requested).
type Dialect struct{}

// BeginTransaction opens a transaction at the requested level.
func (Dialect) BeginTransaction(level driver.IsolationLevel) ([]string, driver.IsolationLevel, error) {
	if !level.Valid() {
		return nil, 0, &driver.UnsupportedIsolationLevelError{Engine: "postgres", Level: level}
	}
	return []string{"BEGIN ISOLATION LEVEL " + level.String()}, level, nil
}

func (Dialect) CreateSavepoint(name string) string     { return "SAVEPOINT " + name }
func (Dialect) RollbackToSavepoint(name string) string { return "ROLLBACK TO SAVEPOINT " + name }
func (Dialect) ReleaseSavepoint(name string) string    { return "RELEASE SAVEPOINT " + name }
func (Dialect) Commit() string                         { return "COMMIT" }
func (Dialect) Rollback() string                       { return "ROLLBACK" }

// IsSerializationFailure reports serialization failures and deadlocks.
func (Dialect) IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	var be *driver.BackendError
	if errors.As(err, &be) {
		return be.Code == codeSerializationFailure || be.Code == codeDeadlockDetected
	}
	return false
}
