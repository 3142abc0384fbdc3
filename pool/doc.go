// Package pool implements the bounded connection pool that owns every live
// backend session for one configured target.
//
// The pool hands out exclusively owned connections: a checked-out Conn has
// exactly one owner until it is released, and the number of simultaneously
// checked-out connections never exceeds the configured maximum. Callers that
// cannot obtain a connection within the acquire timeout receive
// ErrPoolExhausted instead of blocking indefinitely.
//
// Idle connections past the idle timeout and any connection past the maximum
// lifetime are destroyed by a periodic sweep, not only on the next
// acquisition, so staleness stays bounded even on a quiet pool.
//
// Acquisition order is LIFO: the most recently released connection is handed
// out first, which keeps the working set warm and lets the sweep retire the
// cold tail.
package pool
