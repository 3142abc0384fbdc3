package value

import (
	"errors"
	"fmt"
)

// ErrTagMismatch is returned when two Values of different tags are compared.
var ErrTagMismatch = errors.New("value: tag mismatch")

// TypeConversionError reports a value that cannot be converted between an
// engine-native wire type and the value model (or vice versa). It names both
// sides so the offending column or parameter can be identified without
// re-running with extra logging.
type TypeConversionError struct {
	// SourceType describes the value being converted, e.g. the engine's
	// column type name or the Go type of a decoded cell.
	SourceType string

	// Target is the value tag the conversion was aimed at.
	Target Tag
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("value: cannot convert %s to %s", e.SourceType, e.Target)
}

// NewTypeConversionError builds a TypeConversionError for the given source
// type description and target tag.
func NewTypeConversionError(sourceType string, target Tag) *TypeConversionError {
	return &TypeConversionError{SourceType: sourceType, Target: target}
}

// IsTypeConversionError reports whether err is (or wraps) a TypeConversionError.
func IsTypeConversionError(err error) bool {
	var tce *TypeConversionError
	return errors.As(err, &tce)
}
