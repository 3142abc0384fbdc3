package mariadb

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/n-takatsu/sqlbridge/driver"
)

// Server error numbers for transactions that lost a concurrency conflict.
const (
	codeDeadlock        = 1213
	codeLockWaitTimeout = 1205
)

// Dialect expresses transaction control in MariaDB/MySQL SQL. All four
// isolation levels are supported natively. The level must be set before the
// transaction opens, so BEGIN takes two statements.
type Dialect struct{}

// BeginTransaction opens a transaction at the requested level.
func (Dialect) BeginTransaction(level driver.IsolationLevel) ([]string, driver.IsolationLevel, error) {
	if !level.Valid() {
		return nil, 0, &driver.UnsupportedIsolationLevelError{Engine: "mariadb", Level: level}
	}
	return []string{
		"SET TRANSACTION ISOLATION LEVEL " + level.String(),
		"START TRANSACTION",
	}, level, nil
}

func (Dialect) CreateSavepoint(name string) string     { return "SAVEPOINT " + name }
func (Dialect) RollbackToSavepoint(name string) string { return "ROLLBACK TO SAVEPOINT " + name }
func (Dialect) ReleaseSavepoint(name string) string    { return "RELEASE SAVEPOINT " + name }
func (Dialect) Commit() string                         { return "COMMIT" }
func (Dialect) Rollback() string                       { return "ROLLBACK" }

// IsSerializationFailure reports deadlocks and lock wait timeouts.
func (Dialect) IsSerializationFailure(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == codeDeadlock || myErr.Number == codeLockWaitTimeout
	}
	var be *driver.BackendError
	if errors.As(err, &be) {
		return be.Code == "1213" || be.Code == "1205"
	}
	return false
}
