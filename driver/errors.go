package driver

import (
	"errors"
	"fmt"
)

// ErrInvalidIdentifier is returned when a savepoint or other SQL identifier
// fails validation.
var ErrInvalidIdentifier = errors.New("driver: invalid identifier")

// BackendError is any failure surfaced by the underlying engine during
// execution: constraint violations, deadlocks, lock timeouts, missing
// relations and so on. Code carries the engine-native error code (SQLSTATE
// for PostgreSQL, the numeric errno for MySQL/MariaDB, the result code for
// SQLite) so failures can be diagnosed without elevated logging.
type BackendError struct {
	// Code is the engine-native error code.
	Code string

	// Message is the engine-native error message.
	Message string

	// Retryable marks transient failures (deadlock, serialization conflict,
	// lock timeout) that the caller may retry. This layer never retries on
	// its own: retry safety depends on whether the failed operation was
	// idempotent, which only the caller can judge.
	Retryable bool
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error %s: %s", e.Code, e.Message)
}

// SyntaxError is returned when the backend rejects a statement at prepare
// time: malformed SQL, but also unknown relations or columns, since all are
// compile-stage rejections of the template itself.
type SyntaxError struct {
	// Code is the engine-native error code, when the engine reports one.
	Code string

	// Message is the engine's diagnostic.
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("syntax error: %s", e.Message)
	}
	return fmt.Sprintf("syntax error %s: %s", e.Code, e.Message)
}

// ParameterCountMismatchError is returned when the number of bound
// parameters disagrees with the template's placeholder count. It is raised
// before anything reaches the backend.
type ParameterCountMismatchError struct {
	Expected int
	Got      int
}

func (e *ParameterCountMismatchError) Error() string {
	return fmt.Sprintf("parameter count mismatch: template has %d placeholders, %d values bound", e.Expected, e.Got)
}

// UnsupportedIsolationLevelError is returned by a Dialect that can express
// neither the requested isolation level nor any stricter one.
type UnsupportedIsolationLevelError struct {
	Engine string
	Level  IsolationLevel
}

func (e *UnsupportedIsolationLevelError) Error() string {
	return fmt.Sprintf("%s does not support isolation level %s", e.Engine, e.Level)
}

// AsBackendError unwraps err to a *BackendError when one is present.
func AsBackendError(err error) (*BackendError, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsSyntaxError reports whether err is (or wraps) a *SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// IsParameterCountMismatch reports whether err is (or wraps) a
// *ParameterCountMismatchError.
func IsParameterCountMismatch(err error) bool {
	var pe *ParameterCountMismatchError
	return errors.As(err, &pe)
}

// IsRetryable reports whether err is a transient backend failure the caller
// may safely consider retrying.
func IsRetryable(err error) bool {
	if be, ok := AsBackendError(err); ok {
		return be.Retryable
	}
	return false
}
