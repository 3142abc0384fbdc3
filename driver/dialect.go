package driver

import "fmt"

// Dialect expresses transaction control in one engine's SQL.
//
// Adapters whose engine cannot honor a requested isolation level must either
// degrade to the nearest stricter level they do support (reporting the level
// actually applied) or fail with *UnsupportedIsolationLevelError. Degrading
// to a weaker level is never permitted.
type Dialect interface {
	// BeginTransaction returns the statement sequence that opens a
	// transaction at the requested level, plus the level actually applied.
	BeginTransaction(level IsolationLevel) (stmts []string, applied IsolationLevel, err error)

	// CreateSavepoint returns the statement establishing a savepoint.
	// name must already have passed ValidateIdentifier.
	CreateSavepoint(name string) string

	// RollbackToSavepoint returns the statement rolling back to a savepoint.
	RollbackToSavepoint(name string) string

	// ReleaseSavepoint returns the statement releasing a savepoint.
	ReleaseSavepoint(name string) string

	// Commit returns the statement committing the open transaction.
	Commit() string

	// Rollback returns the statement aborting the open transaction.
	Rollback() string

	// IsSerializationFailure reports whether err is the engine's
	// serialization or deadlock failure, i.e. the transaction lost a
	// concurrency conflict and may be retried by the caller.
	IsSerializationFailure(err error) bool
}

// ValidateIdentifier checks that name is a plain SQL identifier
// ([A-Za-z_][A-Za-z0-9_]*, at most 63 bytes). Savepoint names are the only
// caller-supplied text ever spliced into SQL, so anything else is rejected
// before it can reach a statement.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	}
	if len(name) > 63 {
		return fmt.Errorf("%w: %q exceeds 63 bytes", ErrInvalidIdentifier, name)
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return fmt.Errorf("%w: %q starts with a digit", ErrInvalidIdentifier, name)
			}
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidIdentifier, name, r)
		}
	}
	return nil
}
