package pushdown

import (
	"testing"
	"time"

	parquet "github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parquetql/pushdown/filter"
)

func testTranslator(config Config) *Translator {
	if config.SessionTimezone == nil {
		config.SessionTimezone = time.UTC
	}
	return &Translator{config: config}
}

func stringColumn(name string) PhysicalColumn {
	return PhysicalColumn{
		Name:        name,
		Kind:        parquet.ByteArray,
		LogicalType: &format.LogicalType{UTF8: &format.StringType{}},
	}
}

func intColumn(name string, kind parquet.Kind, bitWidth int8, signed bool) PhysicalColumn {
	return PhysicalColumn{
		Name: name,
		Kind: kind,
		LogicalType: &format.LogicalType{
			Integer: &format.IntType{BitWidth: bitWidth, IsSigned: signed},
		},
	}
}

func decimalColumn(name string, kind parquet.Kind, scale, precision int32, typeLength int) PhysicalColumn {
	return PhysicalColumn{
		Name: name,
		Kind: kind,
		LogicalType: &format.LogicalType{
			Decimal: &format.DecimalType{Scale: scale, Precision: precision},
		},
		TypeLength: typeLength,
	}
}

func timestampColumn(name string, adjustedToUTC bool, unit format.TimeUnit) PhysicalColumn {
	return PhysicalColumn{
		Name: name,
		Kind: parquet.Int64,
		LogicalType: &format.LogicalType{
			Timestamp: &format.TimestampType{IsAdjustedToUTC: adjustedToUTC, Unit: unit},
		},
	}
}

func mustDecimal(t *testing.T, text string) filter.Value {
	t.Helper()
	out, err := decimal.NewFromString(text)
	require.NoError(t, err)
	return filter.NewDecimal(out)
}

func TestEncode_Primitives(t *testing.T) {
	tr := testTranslator(DefaultConfig())

	tests := []struct {
		name   string
		column PhysicalColumn
		value  filter.Value
		want   parquet.Value
	}{
		{
			name:   "boolean",
			column: PhysicalColumn{Name: "active", Kind: parquet.Boolean},
			value:  filter.NewBoolean(true),
			want:   parquet.BooleanValue(true),
		},
		{
			name:   "int32",
			column: PhysicalColumn{Name: "age", Kind: parquet.Int32},
			value:  filter.NewInt(30),
			want:   parquet.Int32Value(30),
		},
		{
			name:   "int64",
			column: PhysicalColumn{Name: "id", Kind: parquet.Int64},
			value:  filter.NewInt(1 << 40),
			want:   parquet.Int64Value(1 << 40),
		},
		{
			name:   "narrow signed integer widens",
			column: intColumn("small", parquet.Int32, 16, true),
			value:  filter.NewInt(-7),
			want:   parquet.Int32Value(-7),
		},
		{
			name:   "float",
			column: PhysicalColumn{Name: "ratio", Kind: parquet.Float},
			value:  filter.NewFloat(1.5),
			want:   parquet.FloatValue(1.5),
		},
		{
			name:   "double",
			column: PhysicalColumn{Name: "score", Kind: parquet.Double},
			value:  filter.NewFloat(2.25),
			want:   parquet.DoubleValue(2.25),
		},
		{
			name:   "string",
			column: stringColumn("city"),
			value:  filter.NewString("Berlin"),
			want:   parquet.ByteArrayValue([]byte("Berlin")),
		},
		{
			name:   "raw binary",
			column: PhysicalColumn{Name: "payload", Kind: parquet.ByteArray},
			value:  filter.NewBytes([]byte{0x01, 0x02}),
			want:   parquet.ByteArrayValue([]byte{0x01, 0x02}),
		},
		{
			name:   "date as days since epoch",
			column: PhysicalColumn{Name: "day", Kind: parquet.Int32, LogicalType: &format.LogicalType{Date: &format.DateType{}}},
			value:  filter.NewDate(time.Date(1970, time.January, 11, 0, 0, 0, 0, time.UTC)),
			want:   parquet.Int32Value(10),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tr.encode(tt.column, tt.value)
			require.True(t, ok)
			assert.Equal(t, tt.want.Kind(), got.Kind())
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestEncode_NullMarker(t *testing.T) {
	tr := testTranslator(DefaultConfig())

	got, ok := tr.encode(PhysicalColumn{Name: "age", Kind: parquet.Int32}, filter.NewNull())
	require.True(t, ok)
	assert.True(t, got.IsNull())

	got, ok = tr.encode(stringColumn("city"), filter.NewNull())
	require.True(t, ok)
	assert.True(t, got.IsNull())
}

func TestEncode_Refusals(t *testing.T) {
	tr := testTranslator(DefaultConfig())

	tests := []struct {
		name   string
		column PhysicalColumn
		value  filter.Value
	}{
		{
			name:   "int32 overflow",
			column: PhysicalColumn{Name: "age", Kind: parquet.Int32},
			value:  filter.NewInt(1 << 40),
		},
		{
			name:   "unsigned integer column",
			column: intColumn("count", parquet.Int32, 32, false),
			value:  filter.NewInt(1),
		},
		{
			// 0.1 rounds differently at 24 and 53 bits; narrowing it would
			// compare chunks against the wrong literal.
			name:   "float literal not representable as float32",
			column: PhysicalColumn{Name: "ratio", Kind: parquet.Float},
			value:  filter.NewFloat(0.1),
		},
		{
			name:   "kind mismatch",
			column: PhysicalColumn{Name: "age", Kind: parquet.Int32},
			value:  filter.NewString("30"),
		},
		{
			name:   "string value against raw binary",
			column: PhysicalColumn{Name: "payload", Kind: parquet.ByteArray},
			value:  filter.NewString("x"),
		},
		{
			name:   "unsupported annotation",
			column: PhysicalColumn{Name: "id", Kind: parquet.FixedLenByteArray, LogicalType: &format.LogicalType{UUID: &format.UUIDType{}}, TypeLength: 16},
			value:  filter.NewBytes(make([]byte, 16)),
		},
		{
			name:   "nanosecond timestamp",
			column: timestampColumn("ts", true, format.TimeUnit{Nanos: &format.NanoSeconds{}}),
			value:  filter.NewTimestamp(time.Unix(0, 0)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tr.encode(tt.column, tt.value)
			assert.False(t, ok)
		})
	}
}

func TestEncode_FeatureGates(t *testing.T) {
	config := DefaultConfig()
	config.PushDownDate = false
	config.PushDownTimestamp = false
	config.PushDownDecimal = false
	tr := testTranslator(config)

	dateColumn := PhysicalColumn{Name: "day", Kind: parquet.Int32, LogicalType: &format.LogicalType{Date: &format.DateType{}}}
	_, ok := tr.encode(dateColumn, filter.NewDate(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, ok)

	tsColumn := timestampColumn("ts", true, format.TimeUnit{Micros: &format.MicroSeconds{}})
	_, ok = tr.encode(tsColumn, filter.NewTimestamp(time.Unix(1, 0)))
	assert.False(t, ok)

	_, ok = tr.encode(decimalColumn("amount", parquet.Int32, 2, 9, 0), mustDecimal(t, "1.23"))
	assert.False(t, ok)
}

func TestEncode_Timestamps(t *testing.T) {
	config := DefaultConfig()
	config.SessionTimezone = time.FixedZone("UTC+2", 2*60*60)
	tr := testTranslator(config)

	instant := time.Date(2024, time.March, 1, 12, 30, 45, 123456789, time.UTC)

	tests := []struct {
		name   string
		column PhysicalColumn
		want   int64
	}{
		{
			name:   "utc adjusted micros",
			column: timestampColumn("ts", true, format.TimeUnit{Micros: &format.MicroSeconds{}}),
			want:   instant.UnixMicro(),
		},
		{
			name:   "utc adjusted millis",
			column: timestampColumn("ts", true, format.TimeUnit{Millis: &format.MilliSeconds{}}),
			want:   instant.UnixMilli(),
		},
		{
			name: "local storage micros",
			// The session wall clock reads 14:30:45, stored as if it were UTC.
			column: timestampColumn("ts", false, format.TimeUnit{Micros: &format.MicroSeconds{}}),
			want:   instant.Add(2 * time.Hour).UnixMicro(),
		},
		{
			name:   "local storage millis",
			column: timestampColumn("ts", false, format.TimeUnit{Millis: &format.MilliSeconds{}}),
			want:   instant.Add(2 * time.Hour).UnixMilli(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tr.encode(tt.column, filter.NewTimestamp(instant))
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestEncode_Decimals(t *testing.T) {
	tr := testTranslator(DefaultConfig())

	t.Run("int32 backed", func(t *testing.T) {
		got, ok := tr.encode(decimalColumn("amount", parquet.Int32, 2, 9, 0), mustDecimal(t, "1.23"))
		require.True(t, ok)
		assert.Equal(t, int32(123), got.Int32())
	})

	t.Run("int64 backed", func(t *testing.T) {
		got, ok := tr.encode(decimalColumn("amount", parquet.Int64, 2, 18, 0), mustDecimal(t, "-10.50"))
		require.True(t, ok)
		assert.Equal(t, int64(-1050), got.Int64())
	})

	t.Run("fixed length positive", func(t *testing.T) {
		got, ok := tr.encode(decimalColumn("amount", parquet.FixedLenByteArray, 2, 4, 2), mustDecimal(t, "1.23"))
		require.True(t, ok)
		assert.Equal(t, []byte{0x00, 0x7b}, got.ByteArray())
	})

	t.Run("fixed length negative sign extends", func(t *testing.T) {
		got, ok := tr.encode(decimalColumn("amount", parquet.FixedLenByteArray, 2, 4, 2), mustDecimal(t, "-1.00"))
		require.True(t, ok)
		assert.Equal(t, []byte{0xff, 0x9c}, got.ByteArray())
	})

	t.Run("fixed length overflow refused", func(t *testing.T) {
		_, ok := tr.encode(decimalColumn("amount", parquet.FixedLenByteArray, 2, 4, 1), mustDecimal(t, "1.28"))
		assert.False(t, ok)
	})

	t.Run("scale mismatch refused", func(t *testing.T) {
		_, ok := tr.encode(decimalColumn("amount", parquet.Int32, 2, 9, 0), mustDecimal(t, "1.2"))
		assert.False(t, ok)
	})

	t.Run("trailing zero scale matches declared scale", func(t *testing.T) {
		got, ok := tr.encode(decimalColumn("amount", parquet.Int32, 2, 9, 0), mustDecimal(t, "1.20"))
		require.True(t, ok)
		assert.Equal(t, int32(120), got.Int32())
	})
}
