package mariadb

import (
	stddriver "database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/n-takatsu/sqlbridge/value"
)

// codec carries values across the MySQL binary protocol. The driver hands
// back int64, float64, []byte, string, time.Time and nil; declared column
// type names steer decoding of the text-shaped payloads.
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
		// MariaDB has no native UUID wire type before 10.7; the canonical
		// textual form round-trips against CHAR(36) and UUID columns alike.
		u, _ := v.AsUUID()
		return u.String(), nil
	case value.TagJSON:
		doc, _ := v.AsJSON()
		data, err := doc.MarshalJSON()
		if err != nil {
			return nil, err
		}
		return data, nil
	default:
		return nil, value.NewTypeConversionError(v.Tag().String(), v.Tag())
	}
}

func (c codec) DecodeColumn(columnType string, v stddriver.Value) (value.Value, error) {
	if v == nil {
		return value.Null(), nil
	}
	tag := c.ColumnTag(columnType)
	switch tag {
	case value.TagBool:
		return decodeBool(v)
	case value.TagInt64:
		return decodeInt64(v)
	case value.TagFloat64:
		return decodeFloat64(v)
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
	case value.TagJSON:
		doc, err := value.ParseJSON(asBytes(v))
		if err != nil {
			return value.Value{}, err
		}
		return value.JSON(doc), nil
	case value.TagUUID:
		u, err := uuid.Parse(string(asBytes(v)))
		if err != nil {
			return value.Value{}, value.NewTypeConversionError(columnType, value.TagUUID)
		}
		return value.UUID(u), nil
	case value.TagText:
		return value.Text(string(asBytes(v))), nil
	}
	return value.Value{}, value.NewTypeConversionError(fmt.Sprintf("%s (%T)", columnType, v), tag)
}

func (codec) ColumnTag(columnType string) value.Tag {
	switch strings.ToUpper(columnType) {
	case "TINYINT", "BOOLEAN", "BOOL":
		// go-sql-driver reports BOOLEAN columns as TINYINT.
		return value.TagBool
	case "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "YEAR":
		return value.TagInt64
	case "FLOAT", "DOUBLE", "DECIMAL":
		return value.TagFloat64
	case "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BINARY", "VARBINARY", "BIT":
		return value.TagBytes
	case "DATE":
		return value.TagDate
	case "DATETIME", "TIMESTAMP":
		return value.TagTimestamp
	case "JSON":
		return value.TagJSON
	case "UUID":
		return value.TagUUID
	default:
		// CHAR, VARCHAR, TEXT variants, ENUM, SET and anything unrecognized.
		return value.TagText
	}
}

func (codec) TranslateError(err error) error {
	return translateError(err)
}

func decodeBool(v stddriver.Value) (value.Value, error) {
	switch n := v.(type) {
	case int64:
		return value.Bool(n != 0), nil
	case []byte:
		i, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return value.Value{}, value.NewTypeConversionError(fmt.Sprintf("%T", v), value.TagBool)
		}
		return value.Bool(i != 0), nil
	}
	return value.Value{}, value.NewTypeConversionError(fmt.Sprintf("%T", v), value.TagBool)
}

func decodeInt64(v stddriver.Value) (value.Value, error) {
	switch n := v.(type) {
	case int64:
		return value.Int64(n), nil
	case []byte:
		i, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return value.Value{}, value.NewTypeConversionError(fmt.Sprintf("%T", v), value.TagInt64)
		}
		return value.Int64(i), nil
	}
	return value.Value{}, value.NewTypeConversionError(fmt.Sprintf("%T", v), value.TagInt64)
}

func decodeFloat64(v stddriver.Value) (value.Value, error) {
	switch n := v.(type) {
	case float64:
		return value.Float64(n), nil
	case int64:
		return value.Float64(float64(n)), nil
	case []byte:
		// DECIMAL arrives as text to preserve precision on the wire.
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return value.Value{}, value.NewTypeConversionError(fmt.Sprintf("%T", v), value.TagFloat64)
		}
		return value.Float64(f), nil
	}
	return value.Value{}, value.NewTypeConversionError(fmt.Sprintf("%T", v), value.TagFloat64)
}

func asBytes(v stddriver.Value) []byte {
	switch s := v.(type) {
	case []byte:
		return s
	case string:
		return []byte(s)
	default:
		return []byte(fmt.Sprint(v))
	}
}
