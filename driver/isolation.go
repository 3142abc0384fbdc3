package driver

import "fmt"

// IsolationLevel is the concurrency-visibility contract a transaction
// requests from its backend. Levels are ordered from weakest to strictest,
// so a larger level is always an acceptable substitute for a smaller one.
type IsolationLevel int

const (
	ReadUncommitted IsolationLevel = iota
	ReadCommitted
	RepeatableRead
	Serializable
)

// String returns the SQL spelling of the level, e.g. "REPEATABLE READ".
func (l IsolationLevel) String() string {
	switch l {
	case ReadUncommitted:
		return "READ UNCOMMITTED"
	case ReadCommitted:
		return "READ COMMITTED"
	case RepeatableRead:
		return "REPEATABLE READ"
	case Serializable:
		return "SERIALIZABLE"
	default:
		return fmt.Sprintf("ISOLATION(%d)", int(l))
	}
}

// Valid reports whether l is one of the four defined levels.
func (l IsolationLevel) Valid() bool {
	return l >= ReadUncommitted && l <= Serializable
}

// AtLeast reports whether l is the same as or stricter than o.
func (l IsolationLevel) AtLeast(o IsolationLevel) bool { return l >= o }
