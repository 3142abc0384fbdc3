package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/n-takatsu/sqlbridge/value"
)

// oidTag maps a PostgreSQL type OID to the value tag its cells decode to.
func oidTag(oid uint32) value.Tag {
	switch oid {
	case pgtype.BoolOID:
		return value.TagBool
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID:
		return value.TagInt64
	case pgtype.Float4OID, pgtype.Float8OID, pgtype.NumericOID:
		return value.TagFloat64
	case pgtype.TextOID, pgtype.VarcharOID, pgtype.BPCharOID, pgtype.NameOID:
		return value.TagText
	case pgtype.ByteaOID:
		return value.TagBytes
	case pgtype.DateOID:
		return value.TagDate
	case pgtype.TimestampOID, pgtype.TimestamptzOID:
		return value.TagTimestamp
	case pgtype.UUIDOID:
		return value.TagUUID
	case pgtype.JSONOID, pgtype.JSONBOID:
		return value.TagJSON
	default:
		return value.TagText
	}
}

// encodeParams converts bound values into pgx arguments. The parameter OIDs
// from the statement description let pgx pick the correct wire encoding.
func encodeParams(params []value.Value, paramOIDs []uint32) ([]any, error) {
	args := make([]any, len(params))
	for i, p := range params {
		encoded, err := encodeParam(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		args[i] = encoded
	}
	_ = paramOIDs // binding is by position; OIDs drive pgx's own codec selection
	return args, nil
}

func encodeParam(p value.Value) (any, error) {
	switch p.Tag() {
	case value.TagNull:
		return nil, nil
	case value.TagBool:
		v, _ := p.AsBool()
		return v, nil
	case value.TagInt64:
		v, _ := p.AsInt64()
		return v, nil
	case value.TagFloat64:
		v, _ := p.AsFloat64()
		return v, nil
	case value.TagText:
		v, _ := p.AsText()
		return v, nil
	case value.TagBytes:
		v, _ := p.AsBytes()
		return v, nil
	case value.TagDate, value.TagTimestamp:
		v, _ := p.AsTime()
		return v, nil
	case value.TagUUID:
		v, _ := p.AsUUID()
		return [16]byte(v), nil
	case value.TagJSON:
		doc, _ := p.AsJSON()
		data, err := doc.MarshalJSON()
		if err != nil {
			return nil, value.NewTypeConversionError("json document", value.TagJSON)
		}
		return data, nil
	default:
		return nil, value.NewTypeConversionError(p.Tag().String(), p.Tag())
	}
}

// decodeCell converts one cell produced by pgx into a Value, guided by the
// column OID.
func decodeCell(oid uint32, cell any) (value.Value, error) {
	if cell == nil {
		return value.Null(), nil
	}

	if oid == pgtype.JSONOID || oid == pgtype.JSONBOID {
		return decodeJSONCell(cell)
	}

	switch v := cell.(type) {
	case bool:
		return value.Bool(v), nil
	case int16:
		return value.Int64(int64(v)), nil
	case int32:
		return value.Int64(int64(v)), nil
	case int64:
		return value.Int64(v), nil
	case float32:
		return value.Float64(float64(v)), nil
	case float64:
		return value.Float64(v), nil
	case string:
		return value.Text(v), nil
	case []byte:
		return value.Bytes(v), nil
	case [16]byte:
		return value.UUID(v), nil
	case time.Time:
		if oid == pgtype.DateOID {
			return value.Date(v), nil
		}
		return value.Timestamp(v), nil
	case pgtype.Numeric:
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return value.Null(), value.NewTypeConversionError("numeric", value.TagFloat64)
		}
		return value.Float64(f.Float64), nil
	default:
		return value.Null(), value.NewTypeConversionError(fmt.Sprintf("%T (oid %d)", cell, oid), oidTag(oid))
	}
}

func decodeJSONCell(cell any) (value.Value, error) {
	switch v := cell.(type) {
	case []byte:
		doc, err := value.ParseJSON(v)
		if err != nil {
			return value.Null(), value.NewTypeConversionError("json bytes", value.TagJSON)
		}
		return value.JSON(doc), nil
	default:
		// pgx decodes json/jsonb into the generic tree when scanning into any.
		doc, err := value.NewDocument(v)
		if err != nil {
			return value.Null(), value.NewTypeConversionError(fmt.Sprintf("%T", cell), value.TagJSON)
		}
		return value.JSON(doc), nil
	}
}
