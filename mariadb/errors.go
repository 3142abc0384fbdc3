package mariadb

import (
	"errors"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/n-takatsu/sqlbridge/driver"
)

// translateError converts go-sql-driver errors into the typed errors of the
// driver package. Unrecognized errors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return &driver.BackendError{
			Code:      strconv.FormatUint(uint64(myErr.Number), 10),
			Message:   myErr.Message,
			Retryable: myErr.Number == codeDeadlock || myErr.Number == codeLockWaitTimeout,
		}
	}
	return err
}
