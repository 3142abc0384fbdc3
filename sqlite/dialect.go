package sqlite

import (
	"errors"
	"strconv"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/n-takatsu/sqlbridge/driver"
)

// Dialect expresses transaction control in SQLite SQL. SQLite implements
// only SERIALIZABLE, so every requested level is accepted and the applied
// level reported back is always SERIALIZABLE. BEGIN IMMEDIATE takes the
// write lock up front, failing fast with SQLITE_BUSY instead of deadlocking
// at the first write.
type Dialect struct{}

// BeginTransaction opens a transaction. The requested level only gates
// validity; the applied level is always SERIALIZABLE.
func (Dialect) BeginTransaction(level driver.IsolationLevel) ([]string, driver.IsolationLevel, error) {
	if !level.Valid() {
		return nil, 0, &driver.UnsupportedIsolationLevelError{Engine: "sqlite", Level: level}
	}
	return []string{"BEGIN IMMEDIATE"}, driver.Serializable, nil
}

func (Dialect) CreateSavepoint(name string) string     { return "SAVEPOINT " + name }
func (Dialect) RollbackToSavepoint(name string) string { return "ROLLBACK TO SAVEPOINT " + name }
func (Dialect) ReleaseSavepoint(name string) string    { return "RELEASE SAVEPOINT " + name }
func (Dialect) Commit() string                         { return "COMMIT" }
func (Dialect) Rollback() string                       { return "ROLLBACK" }

// IsSerializationFailure reports lock contention (SQLITE_BUSY, SQLITE_LOCKED).
func (Dialect) IsSerializationFailure(err error) bool {
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code == sqlite3.ErrBusy || sqErr.Code == sqlite3.ErrLocked
	}
	var be *driver.BackendError
	if errors.As(err, &be) {
		return be.Code == strconv.Itoa(int(sqlite3.ErrBusy)) ||
			be.Code == strconv.Itoa(int(sqlite3.ErrLocked))
	}
	return false
}
