// Package value defines the portable value model shared by every engine
// adapter in sqlbridge.
//
// A Value is a tagged union over the closed set of types that all supported
// backends can represent: Null, Bool, Int64, Float64, Text, Bytes, Date,
// Timestamp, UUID and JSON. Values are used in both directions: callers bind
// them as statement parameters, and adapters decode result cells into them.
// This insulates application code from engine-native wire types.
//
// # Immutability
//
// A Value is immutable once constructed. Constructors copy mutable inputs
// (byte slices, JSON trees), and accessors return copies, so a Value can be
// shared freely between goroutines.
//
// # Equality and ordering
//
// Equality and ordering are defined only within the same tag. Comparing
// Values of different tags via Compare returns an error rather than an
// arbitrary answer; Equal simply reports false.
//
// # JSON
//
// JSON values carry a structured Document (a decoded tree), not a
// pre-serialized string, so callers can inspect depth, array lengths and
// nested fields without re-parsing. Serialization uses goccy/go-json.
package value
