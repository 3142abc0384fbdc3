package database

import (
	"errors"
	"fmt"
)

// InvalidConfigError reports a configuration that cannot produce a working
// client. It is raised by NewClient before any connection attempt.
type InvalidConfigError struct {
	// Field is the offending configuration field, e.g. "Type" or
	// "Postgres.Connection.Host".
	Field string

	// Reason says what is wrong with it.
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("database: invalid config: %s: %s", e.Field, e.Reason)
}

// IsInvalidConfig reports whether err is (or wraps) an InvalidConfigError.
func IsInvalidConfig(err error) bool {
	var ice *InvalidConfigError
	return errors.As(err, &ice)
}

// ErrNotConnected is returned by operations invoked before Connect or after
// GracefulShutdown.
var ErrNotConnected = errors.New("database: client is not connected")
