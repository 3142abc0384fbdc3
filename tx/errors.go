package tx

import (
	"errors"
	"fmt"
)

// TransactionClosedError is returned by any operation attempted after the
// transaction reached a terminal state.
type TransactionClosedError struct {
	// State is the terminal state the transaction is in.
	State State
}

func (e *TransactionClosedError) Error() string {
	return fmt.Sprintf("transaction closed: already %s", e.State)
}

// DuplicateSavepointError is returned when a savepoint name is already on
// the stack; names must be unique within one transaction.
type DuplicateSavepointError struct {
	Name string
}

func (e *DuplicateSavepointError) Error() string {
	return fmt.Sprintf("duplicate savepoint %q", e.Name)
}

// UnknownSavepointError is returned when rolling back to a savepoint that is
// not on the stack.
type UnknownSavepointError struct {
	Name string
}

func (e *UnknownSavepointError) Error() string {
	return fmt.Sprintf("unknown savepoint %q", e.Name)
}

// TransactionConflictError wraps the backend's serialization or deadlock
// failure reported at commit time. It is reported, not retried: retry policy
// belongs to the caller.
type TransactionConflictError struct {
	Cause error
}

func (e *TransactionConflictError) Error() string {
	return fmt.Sprintf("transaction conflict: %v", e.Cause)
}

func (e *TransactionConflictError) Unwrap() error { return e.Cause }

// IsTransactionClosed reports whether err is (or wraps) a
// *TransactionClosedError.
func IsTransactionClosed(err error) bool {
	var tce *TransactionClosedError
	return errors.As(err, &tce)
}

// IsConflict reports whether err is (or wraps) a *TransactionConflictError.
func IsConflict(err error) bool {
	var ce *TransactionConflictError
	return errors.As(err, &ce)
}
