package pool

import "errors"

var (
	// ErrPoolExhausted is returned when no connection becomes available
	// within the acquire timeout.
	ErrPoolExhausted = errors.New("pool: exhausted, no connection available within acquire timeout")

	// ErrPoolClosed is returned when acquiring from a pool that has been
	// torn down.
	ErrPoolClosed = errors.New("pool: closed")

	// ErrConnectionFailed wraps a failure to dial or authenticate a new
	// backend session.
	ErrConnectionFailed = errors.New("pool: connection failed")
)

// IsPoolExhausted reports whether err is (or wraps) ErrPoolExhausted.
func IsPoolExhausted(err error) bool {
	return errors.Is(err, ErrPoolExhausted)
}

// IsConnectionFailed reports whether err is (or wraps) ErrConnectionFailed.
func IsConnectionFailed(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}
