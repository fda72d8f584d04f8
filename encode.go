package pushdown

import (
	"math"
	"math/big"
	"time"

	parquet "github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/parquetql/pushdown/filter"
)

// annotationKind classifies a column's logical type annotation for encoder
// dispatch. Annotations with no encoder (UUID, JSON, enum, ...) all map to
// annotationOther and fall through to "unsupported".
type annotationKind int

const (
	annotationNone annotationKind = iota
	annotationInteger
	annotationString
	annotationDate
	annotationTimestamp
	annotationDecimal
	annotationOther
)

func annotationOf(logicalType *format.LogicalType) annotationKind {
	switch {
	case logicalType == nil:
		return annotationNone
	case logicalType.UTF8 != nil:
		return annotationString
	case logicalType.Integer != nil:
		return annotationInteger
	case logicalType.Date != nil:
		return annotationDate
	case logicalType.Timestamp != nil:
		return annotationTimestamp
	case logicalType.Decimal != nil:
		return annotationDecimal
	default:
		return annotationOther
	}
}

type encoderKey struct {
	kind       parquet.Kind
	annotation annotationKind
}

// An encoderFunc turns a non-null logical value into the physical literal of
// the column it's compared against. Encoders may assume the value's runtime
// kind has been checked against the column.
type encoderFunc func(t *Translator, column PhysicalColumn, value filter.Value) (parquet.Value, bool)

var encoders = map[encoderKey]encoderFunc{
	{parquet.Boolean, annotationNone}:              encodeBoolean,
	{parquet.Int32, annotationNone}:                encodeInt32,
	{parquet.Int32, annotationInteger}:             encodeInt32,
	{parquet.Int64, annotationNone}:                encodeInt64,
	{parquet.Int64, annotationInteger}:             encodeInt64,
	{parquet.Float, annotationNone}:                encodeFloat,
	{parquet.Double, annotationNone}:               encodeDouble,
	{parquet.ByteArray, annotationString}:          encodeString,
	{parquet.ByteArray, annotationNone}:            encodeBinary,
	{parquet.Int32, annotationDate}:                encodeDate,
	{parquet.Int64, annotationTimestamp}:           encodeTimestamp,
	{parquet.Int32, annotationDecimal}:             encodeDecimalInt32,
	{parquet.Int64, annotationDecimal}:             encodeDecimalInt64,
	{parquet.FixedLenByteArray, annotationDecimal}: encodeDecimalFixed,
}

// encoderFor selects the encoder for a column, applying the configured
// feature gates. No encoder means the column can't be pushed down at all.
func (t *Translator) encoderFor(column PhysicalColumn) (encoderFunc, bool) {
	key := encoderKey{kind: column.Kind, annotation: annotationOf(column.LogicalType)}
	encoder, ok := encoders[key]
	if !ok {
		return nil, false
	}

	switch key.annotation {
	case annotationInteger:
		integer := column.LogicalType.Integer
		if !integer.IsSigned {
			return nil, false
		}
		if column.Kind == parquet.Int32 && integer.BitWidth > 32 {
			return nil, false
		}
		if column.Kind == parquet.Int64 && integer.BitWidth != 64 {
			return nil, false
		}
	case annotationDate:
		if !t.config.PushDownDate {
			return nil, false
		}
	case annotationTimestamp:
		if !t.config.PushDownTimestamp {
			return nil, false
		}
		unit := column.LogicalType.Timestamp.Unit
		if unit.Micros == nil && unit.Millis == nil {
			return nil, false
		}
	case annotationDecimal:
		if !t.config.PushDownDecimal {
			return nil, false
		}
	}

	return encoder, true
}

// valueMatches reports whether the literal's runtime kind is the one the
// resolved column expects. A null literal matches any column; the operator
// class it's allowed with is checked by the translator. For decimal columns
// the literal's scale must equal the column's declared scale exactly -
// coercion risks data corruption, so a mismatch refuses pushdown.
func valueMatches(column PhysicalColumn, value filter.Value) bool {
	if value.IsNull() {
		return true
	}
	switch annotationOf(column.LogicalType) {
	case annotationNone, annotationInteger:
		switch column.Kind {
		case parquet.Boolean:
			return value.TypeID == filter.TypeIDBoolean
		case parquet.Int32, parquet.Int64:
			return value.TypeID == filter.TypeIDInt
		case parquet.Float, parquet.Double:
			return value.TypeID == filter.TypeIDFloat
		case parquet.ByteArray:
			return value.TypeID == filter.TypeIDBytes
		}
		return false
	case annotationString:
		return value.TypeID == filter.TypeIDString
	case annotationDate:
		return value.TypeID == filter.TypeIDDate
	case annotationTimestamp:
		return value.TypeID == filter.TypeIDTimestamp
	case annotationDecimal:
		return value.TypeID == filter.TypeIDDecimal &&
			value.DecimalScale() == column.LogicalType.Decimal.Scale
	}
	return false
}

// encode maps a logical literal to the column's physical representation. A
// null literal encodes to the explicit null marker, never to a type-specific
// zero value.
func (t *Translator) encode(column PhysicalColumn, value filter.Value) (parquet.Value, bool) {
	encoder, ok := t.encoderFor(column)
	if !ok {
		return parquet.Value{}, false
	}
	if !valueMatches(column, value) {
		return parquet.Value{}, false
	}
	if value.IsNull() {
		return parquet.NullValue(), true
	}
	return encoder(t, column, value)
}

func encodeBoolean(t *Translator, column PhysicalColumn, value filter.Value) (parquet.Value, bool) {
	return parquet.BooleanValue(value.Boolean), true
}

func encodeInt32(t *Translator, column PhysicalColumn, value filter.Value) (parquet.Value, bool) {
	if value.Int < math.MinInt32 || value.Int > math.MaxInt32 {
		return parquet.Value{}, false
	}
	return parquet.Int32Value(int32(value.Int)), true
}

func encodeInt64(t *Translator, column PhysicalColumn, value filter.Value) (parquet.Value, bool) {
	return parquet.Int64Value(value.Int), true
}

func encodeFloat(t *Translator, column PhysicalColumn, value filter.Value) (parquet.Value, bool) {
	narrowed := float32(value.Float)
	if float64(narrowed) != value.Float {
		return parquet.Value{}, false
	}
	return parquet.FloatValue(narrowed), true
}

func encodeDouble(t *Translator, column PhysicalColumn, value filter.Value) (parquet.Value, bool) {
	return parquet.DoubleValue(value.Float), true
}

func encodeString(t *Translator, column PhysicalColumn, value filter.Value) (parquet.Value, bool) {
	return parquet.ByteArrayValue([]byte(value.Str)), true
}

func encodeBinary(t *Translator, column PhysicalColumn, value filter.Value) (parquet.Value, bool) {
	// The bytes are referenced, not copied; filter trees are immutable.
	return parquet.ByteArrayValue(value.Bytes), true
}

func encodeDate(t *Translator, column PhysicalColumn, value filter.Value) (parquet.Value, bool) {
	// Date values are normalized to midnight UTC, so this division is exact.
	days := value.Time.Unix() / (24 * 60 * 60)
	if days < math.MinInt32 || days > math.MaxInt32 {
		return parquet.Value{}, false
	}
	return parquet.Int32Value(int32(days)), true
}

func encodeTimestamp(t *Translator, column PhysicalColumn, value filter.Value) (parquet.Value, bool) {
	annotation := column.LogicalType.Timestamp

	instant := value.Time
	if !annotation.IsAdjustedToUTC {
		// The column stores session-local wall clock readings, so encode the
		// instant's wall clock in the session timezone as if it were UTC.
		wall := instant.In(t.config.SessionTimezone)
		instant = time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), time.UTC)
	}

	switch {
	case annotation.Unit.Micros != nil:
		return parquet.Int64Value(instant.UnixMicro()), true
	case annotation.Unit.Millis != nil:
		return parquet.Int64Value(instant.UnixMilli()), true
	}
	return parquet.Value{}, false
}

func encodeDecimalInt32(t *Translator, column PhysicalColumn, value filter.Value) (parquet.Value, bool) {
	unscaled := value.Decimal.Coefficient()
	if !unscaled.IsInt64() {
		return parquet.Value{}, false
	}
	out := unscaled.Int64()
	if out < math.MinInt32 || out > math.MaxInt32 {
		return parquet.Value{}, false
	}
	return parquet.Int32Value(int32(out)), true
}

func encodeDecimalInt64(t *Translator, column PhysicalColumn, value filter.Value) (parquet.Value, bool) {
	unscaled := value.Decimal.Coefficient()
	if !unscaled.IsInt64() {
		return parquet.Value{}, false
	}
	return parquet.Int64Value(unscaled.Int64()), true
}

func encodeDecimalFixed(t *Translator, column PhysicalColumn, value filter.Value) (parquet.Value, bool) {
	out, ok := unscaledBytes(value.Decimal.Coefficient(), column.TypeLength)
	if !ok {
		return parquet.Value{}, false
	}
	return parquet.FixedLenByteArrayValue(out), true
}

// unscaledBytes encodes an unscaled decimal value as a big-endian
// two's-complement integer of exactly length bytes, sign-extended. Values
// outside the representable range refuse pushdown rather than wrap.
func unscaledBytes(unscaled *big.Int, length int) ([]byte, bool) {
	if length <= 0 {
		return nil, false
	}

	one := big.NewInt(1)
	max := new(big.Int).Sub(new(big.Int).Lsh(one, uint(8*length-1)), one)
	min := new(big.Int).Neg(new(big.Int).Lsh(one, uint(8*length-1)))
	if unscaled.Cmp(min) < 0 || unscaled.Cmp(max) > 0 {
		return nil, false
	}

	out := make([]byte, length)
	if unscaled.Sign() >= 0 {
		raw := unscaled.Bytes()
		copy(out[length-len(raw):], raw)
		return out, true
	}
	// In-range negative values shifted by 2^(8*length) always occupy exactly
	// length bytes with the sign bit set.
	shifted := new(big.Int).Add(new(big.Int).Lsh(one, uint(8*length)), unscaled)
	raw := shifted.Bytes()
	copy(out[length-len(raw):], raw)
	return out, true
}
