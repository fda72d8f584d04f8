// Package predicate implements the storage-side filter algebra that translated
// filters are expressed in: comparison leaves over physical parquet values,
// AND/OR/NOT combinators, and user-defined leaves backed by chunk pruners.
package predicate

import (
	"fmt"

	parquet "github.com/parquet-go/parquet-go"
)

type Predicate struct {
	PredicateType PredicateType

	// Only one of the below may be non-null.
	Comparison  *Comparison
	And         *And
	Or          *Or
	Not         *Not
	UserDefined *UserDefined
}

type PredicateType int

const (
	PredicateTypeEq PredicateType = iota
	PredicateTypeNotEq
	PredicateTypeLt
	PredicateTypeLtEq
	PredicateTypeGt
	PredicateTypeGtEq
	PredicateTypeAnd
	PredicateTypeOr
	PredicateTypeNot
	PredicateTypeUserDefined
)

// Comparison compares a column against an already-encoded physical literal.
// A null parquet.Value is the explicit "no value" marker; it is never
// conflated with a zero or an empty byte array.
type Comparison struct {
	Column string
	Value  parquet.Value
}

type And struct {
	Left  Predicate
	Right Predicate
}

type Or struct {
	Left  Predicate
	Right Predicate
}

type Not struct {
	Inner Predicate
}

// UserDefined wraps a ChunkPruner evaluated by the storage scan against
// column chunk statistics.
type UserDefined struct {
	Column string
	Pruner ChunkPruner
}

// ChunkPruner decides whether a column chunk can be skipped, based on the
// chunk's byte-lexicographic min/max statistics. Implementations must be
// conservative: returning false is always safe.
type ChunkPruner interface {
	// CanDrop reports whether the chunk cannot contain any matching value.
	CanDrop(min, max []byte) bool
	// InverseCanDrop reports whether the chunk can be skipped for the
	// predicate's negation, i.e. every value in the chunk provably matches.
	InverseCanDrop(min, max []byte) bool
	// Keep is the exact per-value predicate.
	Keep(value []byte) bool
}

func Eq(column string, value parquet.Value) Predicate {
	return Predicate{
		PredicateType: PredicateTypeEq,
		Comparison:    &Comparison{Column: column, Value: value},
	}
}

func NotEq(column string, value parquet.Value) Predicate {
	return Predicate{
		PredicateType: PredicateTypeNotEq,
		Comparison:    &Comparison{Column: column, Value: value},
	}
}

func Lt(column string, value parquet.Value) Predicate {
	return Predicate{
		PredicateType: PredicateTypeLt,
		Comparison:    &Comparison{Column: column, Value: value},
	}
}

func LtEq(column string, value parquet.Value) Predicate {
	return Predicate{
		PredicateType: PredicateTypeLtEq,
		Comparison:    &Comparison{Column: column, Value: value},
	}
}

func Gt(column string, value parquet.Value) Predicate {
	return Predicate{
		PredicateType: PredicateTypeGt,
		Comparison:    &Comparison{Column: column, Value: value},
	}
}

func GtEq(column string, value parquet.Value) Predicate {
	return Predicate{
		PredicateType: PredicateTypeGtEq,
		Comparison:    &Comparison{Column: column, Value: value},
	}
}

func NewAnd(left, right Predicate) Predicate {
	return Predicate{
		PredicateType: PredicateTypeAnd,
		And:           &And{Left: left, Right: right},
	}
}

func NewOr(left, right Predicate) Predicate {
	return Predicate{
		PredicateType: PredicateTypeOr,
		Or:            &Or{Left: left, Right: right},
	}
}

func NewNot(inner Predicate) Predicate {
	return Predicate{
		PredicateType: PredicateTypeNot,
		Not:           &Not{Inner: inner},
	}
}

func NewUserDefined(column string, pruner ChunkPruner) Predicate {
	return Predicate{
		PredicateType: PredicateTypeUserDefined,
		UserDefined:   &UserDefined{Column: column, Pruner: pruner},
	}
}

func (p Predicate) String() string {
	switch p.PredicateType {
	case PredicateTypeEq:
		return fmt.Sprintf("eq(%s, %s)", p.Comparison.Column, formatValue(p.Comparison.Value))
	case PredicateTypeNotEq:
		return fmt.Sprintf("notEq(%s, %s)", p.Comparison.Column, formatValue(p.Comparison.Value))
	case PredicateTypeLt:
		return fmt.Sprintf("lt(%s, %s)", p.Comparison.Column, formatValue(p.Comparison.Value))
	case PredicateTypeLtEq:
		return fmt.Sprintf("ltEq(%s, %s)", p.Comparison.Column, formatValue(p.Comparison.Value))
	case PredicateTypeGt:
		return fmt.Sprintf("gt(%s, %s)", p.Comparison.Column, formatValue(p.Comparison.Value))
	case PredicateTypeGtEq:
		return fmt.Sprintf("gtEq(%s, %s)", p.Comparison.Column, formatValue(p.Comparison.Value))
	case PredicateTypeAnd:
		return fmt.Sprintf("and(%s, %s)", p.And.Left, p.And.Right)
	case PredicateTypeOr:
		return fmt.Sprintf("or(%s, %s)", p.Or.Left, p.Or.Right)
	case PredicateTypeNot:
		return fmt.Sprintf("not(%s)", p.Not.Inner)
	case PredicateTypeUserDefined:
		return fmt.Sprintf("userDefined(%s, %s)", p.UserDefined.Column, p.UserDefined.Pruner)
	}
	panic("unexhaustive predicate type match")
}

func formatValue(value parquet.Value) string {
	if value.IsNull() {
		return "<null>"
	}
	return value.String()
}
