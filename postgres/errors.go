package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/n-takatsu/sqlbridge/driver"
)

// translateError converts pgx/pgconn errors into the typed errors of the
// driver package. Unrecognized errors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &driver.BackendError{
			Code:      pgErr.Code,
			Message:   pgErr.Message,
			Retryable: isRetryableCode(pgErr.Code),
		}
	}
	return err
}

// classifyPrepareError folds server rejections at parse time into
// *driver.SyntaxError. Class 42 covers malformed SQL as well as unknown
// relations and columns, all compile-stage rejections of the template.
func classifyPrepareError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "42") {
		return &driver.SyntaxError{Code: pgErr.Code, Message: pgErr.Message}
	}
	return translateError(err)
}

func isRetryableCode(code string) bool {
	return code == codeSerializationFailure || code == codeDeadlockDetected
}
