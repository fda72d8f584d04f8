package filter

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TypeID int

const (
	TypeIDNull TypeID = iota
	TypeIDBoolean
	TypeIDInt
	TypeIDFloat
	TypeIDString
	TypeIDBytes
	TypeIDDate
	TypeIDTimestamp
	TypeIDDecimal
)

func (t TypeID) String() string {
	switch t {
	case TypeIDNull:
		return "Null"
	case TypeIDBoolean:
		return "Boolean"
	case TypeIDInt:
		return "Int"
	case TypeIDFloat:
		return "Float"
	case TypeIDString:
		return "String"
	case TypeIDBytes:
		return "Bytes"
	case TypeIDDate:
		return "Date"
	case TypeIDTimestamp:
		return "Timestamp"
	case TypeIDDecimal:
		return "Decimal"
	}
	panic("unexhaustive type id match")
}

// Value is a logical-domain scalar as produced by the query planner.
// Only the field corresponding to the TypeID is meaningful.
type Value struct {
	TypeID  TypeID
	Boolean bool
	Int     int64
	Float   float64
	Str     string
	Bytes   []byte
	Time    time.Time
	Decimal decimal.Decimal
}

func NewNull() Value {
	return Value{
		TypeID: TypeIDNull,
	}
}

func NewBoolean(value bool) Value {
	return Value{
		TypeID:  TypeIDBoolean,
		Boolean: value,
	}
}

func NewInt(value int64) Value {
	return Value{
		TypeID: TypeIDInt,
		Int:    value,
	}
}

func NewFloat(value float64) Value {
	return Value{
		TypeID: TypeIDFloat,
		Float:  value,
	}
}

func NewString(value string) Value {
	return Value{
		TypeID: TypeIDString,
		Str:    value,
	}
}

func NewBytes(value []byte) Value {
	return Value{
		TypeID: TypeIDBytes,
		Bytes:  value,
	}
}

// NewDate creates a date value. Only the civil date part of the given time is
// meaningful; it's normalized to midnight UTC.
func NewDate(value time.Time) Value {
	year, month, day := value.Date()
	return Value{
		TypeID: TypeIDDate,
		Time:   time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
	}
}

func NewTimestamp(value time.Time) Value {
	return Value{
		TypeID: TypeIDTimestamp,
		Time:   value,
	}
}

func NewDecimal(value decimal.Decimal) Value {
	return Value{
		TypeID:  TypeIDDecimal,
		Decimal: value,
	}
}

func NewDecimalFromString(value string) (Value, error) {
	out, err := decimal.NewFromString(value)
	if err != nil {
		return Value{}, fmt.Errorf("couldn't parse decimal: %w", err)
	}
	return NewDecimal(out), nil
}

func (value Value) IsNull() bool {
	return value.TypeID == TypeIDNull
}

// DecimalScale is the number of fractional digits the decimal literal was
// written with. Meaningful only for decimal values.
func (value Value) DecimalScale() int32 {
	return -value.Decimal.Exponent()
}

func (value Value) Equal(other Value) bool {
	if value.TypeID != other.TypeID {
		return false
	}
	switch value.TypeID {
	case TypeIDNull:
		return true
	case TypeIDBoolean:
		return value.Boolean == other.Boolean
	case TypeIDInt:
		return value.Int == other.Int
	case TypeIDFloat:
		return value.Float == other.Float
	case TypeIDString:
		return value.Str == other.Str
	case TypeIDBytes:
		return bytes.Equal(value.Bytes, other.Bytes)
	case TypeIDDate, TypeIDTimestamp:
		return value.Time.Equal(other.Time)
	case TypeIDDecimal:
		// Scale is significant for pushdown, so 1.2 and 1.20 are distinct.
		return value.Decimal.Exponent() == other.Decimal.Exponent() && value.Decimal.Equal(other.Decimal)
	}
	panic("unexhaustive value type match")
}

func (value Value) String() string {
	switch value.TypeID {
	case TypeIDNull:
		return "<null>"
	case TypeIDBoolean:
		return fmt.Sprint(value.Boolean)
	case TypeIDInt:
		return fmt.Sprint(value.Int)
	case TypeIDFloat:
		return fmt.Sprint(value.Float)
	case TypeIDString:
		return fmt.Sprintf("'%s'", value.Str)
	case TypeIDBytes:
		return fmt.Sprintf("0x%x", value.Bytes)
	case TypeIDDate:
		return value.Time.Format("2006-01-02")
	case TypeIDTimestamp:
		return value.Time.Format(time.RFC3339Nano)
	case TypeIDDecimal:
		return value.Decimal.String()
	}
	panic("unexhaustive value type match")
}
