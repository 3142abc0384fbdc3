package value_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n-takatsu/sqlbridge/value"
)

func TestZeroValueIsNull(t *testing.T) {
	var v value.Value
	assert.True(t, v.IsNull())
	assert.Equal(t, value.TagNull, v.Tag())
	assert.True(t, v.Equal(value.Null()))
}

func TestConstructorsAndAccessors(t *testing.T) {
	t.Run("bool", func(t *testing.T) {
		v := value.Bool(true)
		got, ok := v.AsBool()
		require.True(t, ok)
		assert.True(t, got)

		_, ok = v.AsInt64()
		assert.False(t, ok)
	})

	t.Run("int64", func(t *testing.T) {
		v := value.Int64(-42)
		got, ok := v.AsInt64()
		require.True(t, ok)
		assert.Equal(t, int64(-42), got)
	})

	t.Run("float64", func(t *testing.T) {
		v := value.Float64(3.5)
		got, ok := v.AsFloat64()
		require.True(t, ok)
		assert.Equal(t, 3.5, got)
	})

	t.Run("text", func(t *testing.T) {
		v := value.Text("héllo")
		got, ok := v.AsText()
		require.True(t, ok)
		assert.Equal(t, "héllo", got)
	})

	t.Run("uuid", func(t *testing.T) {
		u := uuid.MustParse("0d9bd268-04d5-4ae5-9d02-1d1501b9f0c5")
		v := value.UUID(u)
		got, ok := v.AsUUID()
		require.True(t, ok)
		assert.Equal(t, u, got)
	})
}

func TestBytesAreCopied(t *testing.T) {
	src := []byte{1, 2, 3}
	v := value.Bytes(src)

	src[0] = 99
	got, ok := v.AsBytes()
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)

	// Mutating the accessor result must not leak back either.
	got[1] = 99
	again, _ := v.AsBytes()
	assert.Equal(t, []byte{1, 2, 3}, again)
}

func TestDateDiscardsTimePortion(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	v := value.Date(time.Date(2024, 3, 15, 23, 59, 58, 0, loc))

	got, ok := v.AsTime()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestTimestampNormalizedToUTC(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	in := time.Date(2024, 3, 15, 10, 30, 0, 0, loc)
	v := value.Timestamp(in)

	got, ok := v.AsTime()
	require.True(t, ok)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(in))
}

func TestEqual(t *testing.T) {
	assert.True(t, value.Int64(7).Equal(value.Int64(7)))
	assert.False(t, value.Int64(7).Equal(value.Int64(8)))

	// Same payload, different tag: never equal.
	assert.False(t, value.Int64(1).Equal(value.Float64(1)))
	assert.False(t, value.Text("").Equal(value.Null()))

	assert.True(t, value.Null().Equal(value.Null()))
	assert.True(t, value.Bytes([]byte{1}).Equal(value.Bytes([]byte{1})))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b value.Value
		want int
	}{
		{"int less", value.Int64(1), value.Int64(2), -1},
		{"int equal", value.Int64(2), value.Int64(2), 0},
		{"int greater", value.Int64(3), value.Int64(2), 1},
		{"float", value.Float64(1.5), value.Float64(2.5), -1},
		{"text", value.Text("a"), value.Text("b"), -1},
		{"bool", value.Bool(false), value.Bool(true), -1},
		{"bytes", value.Bytes([]byte{1}), value.Bytes([]byte{2}), -1},
		{"null", value.Null(), value.Null(), 0},
		{
			"timestamp",
			value.Timestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			value.Timestamp(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
			-1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Compare(tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompareTagMismatch(t *testing.T) {
	_, err := value.Int64(1).Compare(value.Text("1"))
	assert.ErrorIs(t, err, value.ErrTagMismatch)
}

func TestCompareJSONHasNoOrder(t *testing.T) {
	doc, err := value.ParseJSON([]byte(`{"a":1}`))
	require.NoError(t, err)
	_, cmpErr := value.JSON(doc).Compare(value.JSON(doc))
	assert.ErrorIs(t, cmpErr, value.ErrTagMismatch)
}

func TestTypeConversionError(t *testing.T) {
	err := value.NewTypeConversionError("money", value.TagFloat64)
	assert.True(t, value.IsTypeConversionError(err))
	assert.Contains(t, err.Error(), "money")
	assert.Contains(t, err.Error(), "float64")
}
