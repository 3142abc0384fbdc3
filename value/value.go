package value

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tag identifies which member of the value union a Value holds.
type Tag uint8

const (
	TagNull Tag = iota
	TagBool
	TagInt64
	TagFloat64
	TagText
	TagBytes
	TagDate
	TagTimestamp
	TagUUID
	TagJSON
)

// String returns the lowercase name of the tag, e.g. "int64" or "json".
func (t Tag) String() string {
	switch t {
	case TagNull:
		return "null"
	case TagBool:
		return "bool"
	case TagInt64:
		return "int64"
	case TagFloat64:
		return "float64"
	case TagText:
		return "text"
	case TagBytes:
		return "bytes"
	case TagDate:
		return "date"
	case TagTimestamp:
		return "timestamp"
	case TagUUID:
		return "uuid"
	case TagJSON:
		return "json"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Value is an immutable tagged scalar or JSON document.
// The zero Value is Null.
type Value struct {
	tag Tag
	b   bool
	i   int64
	f   float64
	s   string
	raw []byte
	t   time.Time
	u   uuid.UUID
	doc Document
}

// Null returns the null Value.
func Null() Value { return Value{tag: TagNull} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{tag: TagBool, b: v} }

// Int64 returns a 64-bit integer Value.
func Int64(v int64) Value { return Value{tag: TagInt64, i: v} }

// Float64 returns a 64-bit floating point Value.
func Float64(v float64) Value { return Value{tag: TagFloat64, f: v} }

// Text returns a text Value.
func Text(v string) Value { return Value{tag: TagText, s: v} }

// Bytes returns a binary Value. The input slice is copied.
func Bytes(v []byte) Value {
	cp := make([]byte, len(v))
	copy(cp, v)
	return Value{tag: TagBytes, raw: cp}
}

// Date returns a calendar-date Value. The time portion of t is discarded
// and the date is normalized to UTC midnight.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{tag: TagDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Timestamp returns a point-in-time Value normalized to UTC.
func Timestamp(t time.Time) Value {
	return Value{tag: TagTimestamp, t: t.UTC()}
}

// UUID returns a UUID Value.
func UUID(u uuid.UUID) Value { return Value{tag: TagUUID, u: u} }

// JSON returns a JSON document Value.
func JSON(doc Document) Value { return Value{tag: TagJSON, doc: doc} }

// Tag reports which member of the union the Value holds.
func (v Value) Tag() Tag { return v.tag }

// IsNull reports whether the Value is null.
func (v Value) IsNull() bool { return v.tag == TagNull }

// AsBool returns the boolean payload. ok is false when the tag is not TagBool.
func (v Value) AsBool() (val bool, ok bool) { return v.b, v.tag == TagBool }

// AsInt64 returns the integer payload. ok is false when the tag is not TagInt64.
func (v Value) AsInt64() (val int64, ok bool) { return v.i, v.tag == TagInt64 }

// AsFloat64 returns the float payload. ok is false when the tag is not TagFloat64.
func (v Value) AsFloat64() (val float64, ok bool) { return v.f, v.tag == TagFloat64 }

// AsText returns the text payload. ok is false when the tag is not TagText.
func (v Value) AsText() (val string, ok bool) { return v.s, v.tag == TagText }

// AsBytes returns a copy of the binary payload. ok is false when the tag is
// not TagBytes.
func (v Value) AsBytes() (val []byte, ok bool) {
	if v.tag != TagBytes {
		return nil, false
	}
	cp := make([]byte, len(v.raw))
	copy(cp, v.raw)
	return cp, true
}

// AsTime returns the time payload for Date and Timestamp values.
func (v Value) AsTime() (val time.Time, ok bool) {
	return v.t, v.tag == TagDate || v.tag == TagTimestamp
}

// AsUUID returns the UUID payload. ok is false when the tag is not TagUUID.
func (v Value) AsUUID() (val uuid.UUID, ok bool) { return v.u, v.tag == TagUUID }

// AsJSON returns the JSON document payload. ok is false when the tag is not TagJSON.
func (v Value) AsJSON() (val Document, ok bool) { return v.doc, v.tag == TagJSON }

// Equal reports whether o holds the same tag and the same payload.
// Values of different tags are never equal.
func (v Value) Equal(o Value) bool {
	if v.tag != o.tag {
		return false
	}
	switch v.tag {
	case TagNull:
		return true
	case TagBool:
		return v.b == o.b
	case TagInt64:
		return v.i == o.i
	case TagFloat64:
		return v.f == o.f
	case TagText:
		return v.s == o.s
	case TagBytes:
		return bytes.Equal(v.raw, o.raw)
	case TagDate, TagTimestamp:
		return v.t.Equal(o.t)
	case TagUUID:
		return v.u == o.u
	case TagJSON:
		return v.doc.Equal(o.doc)
	default:
		return false
	}
}

// Compare orders v against o within the same tag, returning -1, 0 or 1.
// Comparing different tags, or JSON documents (which have no total order),
// returns an error.
func (v Value) Compare(o Value) (int, error) {
	if v.tag != o.tag {
		return 0, fmt.Errorf("%w: %s vs %s", ErrTagMismatch, v.tag, o.tag)
	}
	switch v.tag {
	case TagNull:
		return 0, nil
	case TagBool:
		return compareBool(v.b, o.b), nil
	case TagInt64:
		return compareOrdered(v.i, o.i), nil
	case TagFloat64:
		return compareOrdered(v.f, o.f), nil
	case TagText:
		return strings.Compare(v.s, o.s), nil
	case TagBytes:
		return bytes.Compare(v.raw, o.raw), nil
	case TagDate, TagTimestamp:
		return v.t.Compare(o.t), nil
	case TagUUID:
		return bytes.Compare(v.u[:], o.u[:]), nil
	default:
		return 0, fmt.Errorf("%w: %s values have no defined order", ErrTagMismatch, v.tag)
	}
}

// String renders the Value for diagnostics. Binary payloads are summarized
// by length, JSON payloads are re-serialized.
func (v Value) String() string {
	switch v.tag {
	case TagNull:
		return "null"
	case TagBool:
		return fmt.Sprintf("bool(%t)", v.b)
	case TagInt64:
		return fmt.Sprintf("int64(%d)", v.i)
	case TagFloat64:
		return fmt.Sprintf("float64(%g)", v.f)
	case TagText:
		return fmt.Sprintf("text(%q)", v.s)
	case TagBytes:
		return fmt.Sprintf("bytes(%d)", len(v.raw))
	case TagDate:
		return fmt.Sprintf("date(%s)", v.t.Format("2006-01-02"))
	case TagTimestamp:
		return fmt.Sprintf("timestamp(%s)", v.t.Format(time.RFC3339Nano))
	case TagUUID:
		return fmt.Sprintf("uuid(%s)", v.u)
	case TagJSON:
		return fmt.Sprintf("json(%s)", v.doc)
	default:
		return v.tag.String()
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
