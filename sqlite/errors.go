package sqlite

import (
	"errors"
	"strconv"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/n-takatsu/sqlbridge/driver"
)

// translateError converts go-sqlite3 errors into the typed errors of the
// driver package. Unrecognized errors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return &driver.BackendError{
			Code:      strconv.Itoa(int(sqErr.Code)),
			Message:   sqErr.Error(),
			Retryable: sqErr.Code == sqlite3.ErrBusy || sqErr.Code == sqlite3.ErrLocked,
		}
	}
	return err
}
