package sqlite

import (
	stddriver "database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/n-takatsu/sqlbridge/value"
)

// codec carries values across SQLite's dynamic type system. Storage classes
// are INTEGER, REAL, TEXT, BLOB and NULL; richer tags (bool, date, timestamp,
// uuid, json) ride on declared column types, which SQLite preserves verbatim
// from the CREATE TABLE statement.
type codec struct{}

func (codec) EncodeParam(v value.Value) (stddriver.Value, error) {
	switch v.Tag() {
	case value.TagNull:
		return nil, nil
	case value.TagBool:
		b, _ := v.AsBool()
		return b, nil
	case value.TagInt64:
		i, _ := v.AsInt64()
		return i, nil
	case value.TagFloat64:
		f, _ := v.AsFloat64()
		return f, nil
	case value.TagText:
		s, _ := v.AsText()
		return s, nil
	case value.TagBytes:
		b, _ := v.AsBytes()
		return b, nil
	case value.TagDate, value.TagTimestamp:
		t, _ := v.AsTime()
		return t, nil
	case value.TagUUID:
		u, _ := v.AsUUID()
		return u.String(), nil
	case value.TagJSON:
		doc, _ := v.AsJSON()
		data, err := doc.MarshalJSON()
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		return nil, value.NewTypeConversionError(v.Tag().String(), v.Tag())
	}
}

func (c codec) DecodeColumn(columnType string, v stddriver.Value) (value.Value, error) {
	if v == nil {
		return value.Null(), nil
	}
	switch c.ColumnTag(columnType) {
	case value.TagBool:
		// go-sqlite3 converts BOOLEAN-declared integer cells to bool itself.
		switch n := v.(type) {
		case bool:
			return value.Bool(n), nil
		case int64:
			return value.Bool(n != 0), nil
		}
	case value.TagInt64:
		if i, ok := v.(int64); ok {
			return value.Int64(i), nil
		}
	case value.TagFloat64:
		switch n := v.(type) {
		case float64:
			return value.Float64(n), nil
		case int64:
			return value.Float64(float64(n)), nil
		}
	case value.TagBytes:
		if b, ok := v.([]byte); ok {
			return value.Bytes(b), nil
		}
	case value.TagDate:
		if t, ok := v.(time.Time); ok {
			return value.Date(t), nil
		}
	case value.TagTimestamp:
		if t, ok := v.(time.Time); ok {
			return value.Timestamp(t), nil
		}
	case value.TagUUID:
		if s, ok := asText(v); ok {
			u, err := uuid.Parse(s)
			if err != nil {
				return value.Value{}, value.NewTypeConversionError(columnType, value.TagUUID)
			}
			return value.UUID(u), nil
		}
	case value.TagJSON:
		if s, ok := asText(v); ok {
			doc, err := value.ParseJSON([]byte(s))
			if err != nil {
				return value.Value{}, err
			}
			return value.JSON(doc), nil
		}
	case value.TagText:
		if s, ok := asText(v); ok {
			return value.Text(s), nil
		}
		// Dynamic typing: any storage class can land in a text-affinity
		// column. Surface what actually arrived.
		switch n := v.(type) {
		case int64:
			return value.Int64(n), nil
		case float64:
			return value.Float64(n), nil
		case time.Time:
			return value.Timestamp(n), nil
		}
	}
	return value.Value{}, value.NewTypeConversionError(fmt.Sprintf("%s (%T)", columnType, v), c.ColumnTag(columnType))
}

// ColumnTag maps a declared type to a tag following SQLite's affinity rules,
// with JSON and UUID declarations recognized before the affinity fallback.
func (codec) ColumnTag(columnType string) value.Tag {
	decl := strings.ToUpper(columnType)
	switch {
	case decl == "":
		return value.TagText
	case decl == "BOOLEAN" || decl == "BOOL":
		return value.TagBool
	case decl == "DATE":
		return value.TagDate
	case decl == "DATETIME" || decl == "TIMESTAMP":
		return value.TagTimestamp
	case decl == "UUID":
		return value.TagUUID
	case strings.Contains(decl, "JSON"):
		return value.TagJSON
	case strings.Contains(decl, "INT"):
		return value.TagInt64
	case strings.Contains(decl, "REAL") || strings.Contains(decl, "FLOA") ||
		strings.Contains(decl, "DOUB") || strings.Contains(decl, "DECIMAL") ||
		strings.Contains(decl, "NUMERIC"):
		return value.TagFloat64
	case strings.Contains(decl, "BLOB"):
		return value.TagBytes
	default:
		return value.TagText
	}
}

func (codec) TranslateError(err error) error {
	return translateError(err)
}

func asText(v stddriver.Value) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}
