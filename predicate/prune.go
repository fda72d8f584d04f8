package predicate

import (
	"bytes"
	"encoding/binary"
	"math"

	parquet "github.com/parquet-go/parquet-go"
)

// ChunkStatistics exposes the precomputed statistics of a single row group /
// column chunk set. Any "not ok" answer makes the evaluator keep the chunk.
type ChunkStatistics interface {
	// Bounds returns the min and max values of the column's non-null values.
	Bounds(column string) (min, max parquet.Value, ok bool)
	NullCount(column string) (count int64, ok bool)
	RowCount() int64
}

// CanDrop reports whether the chunk described by stats cannot contain any row
// satisfying the predicate. It is conservative: false means "must read", not
// "contains a match".
func CanDrop(p Predicate, stats ChunkStatistics) bool {
	switch p.PredicateType {
	case PredicateTypeEq:
		column, value := p.Comparison.Column, p.Comparison.Value
		if value.IsNull() {
			// eq(null) keeps exactly the null rows.
			count, ok := stats.NullCount(column)
			return ok && count == 0
		}
		if allNull(column, stats) {
			return true
		}
		min, max, ok := stats.Bounds(column)
		if !ok {
			return false
		}
		return lessThan(value, min) || lessThan(max, value)

	case PredicateTypeNotEq:
		column, value := p.Comparison.Column, p.Comparison.Value
		if value.IsNull() {
			// notEq(null) keeps exactly the non-null rows.
			return allNull(column, stats)
		}
		count, ok := stats.NullCount(column)
		if !ok || count > 0 {
			return false
		}
		min, max, ok := stats.Bounds(column)
		if !ok {
			return false
		}
		return equal(min, value) && equal(max, value)

	case PredicateTypeLt:
		return dropOrdered(p.Comparison, stats, func(min, max parquet.Value, value parquet.Value) bool {
			return !lessThan(min, value)
		})
	case PredicateTypeLtEq:
		return dropOrdered(p.Comparison, stats, func(min, max parquet.Value, value parquet.Value) bool {
			return lessThan(value, min)
		})
	case PredicateTypeGt:
		return dropOrdered(p.Comparison, stats, func(min, max parquet.Value, value parquet.Value) bool {
			return !lessThan(value, max)
		})
	case PredicateTypeGtEq:
		return dropOrdered(p.Comparison, stats, func(min, max parquet.Value, value parquet.Value) bool {
			return lessThan(max, value)
		})

	case PredicateTypeAnd:
		return CanDrop(p.And.Left, stats) || CanDrop(p.And.Right, stats)
	case PredicateTypeOr:
		return CanDrop(p.Or.Left, stats) && CanDrop(p.Or.Right, stats)
	case PredicateTypeNot:
		return InverseCanDrop(p.Not.Inner, stats)

	case PredicateTypeUserDefined:
		min, max, ok := stats.Bounds(p.UserDefined.Column)
		if !ok || !isByteKind(min.Kind()) || !isByteKind(max.Kind()) {
			return false
		}
		return p.UserDefined.Pruner.CanDrop(min.ByteArray(), max.ByteArray())
	}
	panic("unexhaustive predicate type match")
}

// InverseCanDrop reports whether every row in the chunk provably satisfies the
// predicate, so the chunk can be skipped when scanning for the predicate's
// negation. Only narrow, certain cases return true.
func InverseCanDrop(p Predicate, stats ChunkStatistics) bool {
	switch p.PredicateType {
	case PredicateTypeEq:
		column, value := p.Comparison.Column, p.Comparison.Value
		if value.IsNull() {
			return allNull(column, stats)
		}
		count, ok := stats.NullCount(column)
		if !ok || count > 0 {
			return false
		}
		min, max, ok := stats.Bounds(column)
		if !ok {
			return false
		}
		return equal(min, value) && equal(max, value)

	case PredicateTypeNotEq:
		column, value := p.Comparison.Column, p.Comparison.Value
		if value.IsNull() {
			count, ok := stats.NullCount(column)
			return ok && count == 0
		}
		// Nulls satisfy notEq against a non-null literal, so only the value
		// range matters.
		if allNull(column, stats) {
			return true
		}
		min, max, ok := stats.Bounds(column)
		if !ok {
			return false
		}
		return lessThan(value, min) || lessThan(max, value)

	case PredicateTypeLt:
		return holdsOrdered(p.Comparison, stats, func(min, max parquet.Value, value parquet.Value) bool {
			return lessThan(max, value)
		})
	case PredicateTypeLtEq:
		return holdsOrdered(p.Comparison, stats, func(min, max parquet.Value, value parquet.Value) bool {
			return !lessThan(value, max)
		})
	case PredicateTypeGt:
		return holdsOrdered(p.Comparison, stats, func(min, max parquet.Value, value parquet.Value) bool {
			return lessThan(value, min)
		})
	case PredicateTypeGtEq:
		return holdsOrdered(p.Comparison, stats, func(min, max parquet.Value, value parquet.Value) bool {
			return !lessThan(min, value)
		})

	case PredicateTypeAnd:
		return InverseCanDrop(p.And.Left, stats) && InverseCanDrop(p.And.Right, stats)
	case PredicateTypeOr:
		return InverseCanDrop(p.Or.Left, stats) || InverseCanDrop(p.Or.Right, stats)
	case PredicateTypeNot:
		return CanDrop(p.Not.Inner, stats)

	case PredicateTypeUserDefined:
		count, ok := stats.NullCount(p.UserDefined.Column)
		if !ok || count > 0 {
			return false
		}
		min, max, ok := stats.Bounds(p.UserDefined.Column)
		if !ok || !isByteKind(min.Kind()) || !isByteKind(max.Kind()) {
			return false
		}
		return p.UserDefined.Pruner.InverseCanDrop(min.ByteArray(), max.ByteArray())
	}
	panic("unexhaustive predicate type match")
}

func dropOrdered(c *Comparison, stats ChunkStatistics, drop func(min, max, value parquet.Value) bool) bool {
	if c.Value.IsNull() || !orderedKind(c.Value.Kind()) {
		return false
	}
	if allNull(c.Column, stats) {
		// An ordered comparison never matches a null.
		return true
	}
	min, max, ok := stats.Bounds(c.Column)
	if !ok {
		return false
	}
	if !comparableValues(min, c.Value) || !comparableValues(max, c.Value) {
		return false
	}
	return drop(min, max, c.Value)
}

func holdsOrdered(c *Comparison, stats ChunkStatistics, holds func(min, max, value parquet.Value) bool) bool {
	if c.Value.IsNull() || !orderedKind(c.Value.Kind()) {
		return false
	}
	count, ok := stats.NullCount(c.Column)
	if !ok || count > 0 {
		return false
	}
	min, max, ok := stats.Bounds(c.Column)
	if !ok {
		return false
	}
	if !comparableValues(min, c.Value) || !comparableValues(max, c.Value) {
		return false
	}
	return holds(min, max, c.Value)
}

// orderedKind reports whether comparing two values of the kind reflects the
// column's sort order. Fixed-length byte arrays hold two's-complement
// decimals, whose signed order is not the byte order.
func orderedKind(kind parquet.Kind) bool {
	return kind != parquet.FixedLenByteArray
}

func allNull(column string, stats ChunkStatistics) bool {
	count, ok := stats.NullCount(column)
	return ok && stats.RowCount() > 0 && count == stats.RowCount()
}

func comparableValues(a, b parquet.Value) bool {
	return !a.IsNull() && !b.IsNull() && a.Kind() == b.Kind()
}

func lessThan(a, b parquet.Value) bool {
	if !comparableValues(a, b) {
		return false
	}
	switch a.Kind() {
	case parquet.Boolean:
		return !a.Boolean() && b.Boolean()
	case parquet.Int32:
		return a.Int32() < b.Int32()
	case parquet.Int64:
		return a.Int64() < b.Int64()
	case parquet.Float:
		return a.Float() < b.Float()
	case parquet.Double:
		return a.Double() < b.Double()
	case parquet.ByteArray:
		return bytes.Compare(a.ByteArray(), b.ByteArray()) < 0
	}
	// Fixed-length byte arrays hold two's-complement decimals, whose sort
	// order is signed, not byte order. No provable ordering keeps the chunk.
	return false
}

func equal(a, b parquet.Value) bool {
	if !comparableValues(a, b) {
		return false
	}
	switch a.Kind() {
	case parquet.Boolean:
		return a.Boolean() == b.Boolean()
	case parquet.Int32:
		return a.Int32() == b.Int32()
	case parquet.Int64:
		return a.Int64() == b.Int64()
	case parquet.Float:
		return a.Float() == b.Float()
	case parquet.Double:
		return a.Double() == b.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return bytes.Equal(a.ByteArray(), b.ByteArray())
	}
	return false
}

func isByteKind(kind parquet.Kind) bool {
	return kind == parquet.ByteArray || kind == parquet.FixedLenByteArray
}

// StatValue decodes a plain-encoded min/max statistic (as stored in the file
// footer's column chunk metadata) into a comparable value.
func StatValue(kind parquet.Kind, raw []byte) (parquet.Value, bool) {
	switch kind {
	case parquet.Boolean:
		if len(raw) != 1 {
			return parquet.Value{}, false
		}
		return parquet.BooleanValue(raw[0] != 0), true
	case parquet.Int32:
		if len(raw) != 4 {
			return parquet.Value{}, false
		}
		return parquet.Int32Value(int32(binary.LittleEndian.Uint32(raw))), true
	case parquet.Int64:
		if len(raw) != 8 {
			return parquet.Value{}, false
		}
		return parquet.Int64Value(int64(binary.LittleEndian.Uint64(raw))), true
	case parquet.Float:
		if len(raw) != 4 {
			return parquet.Value{}, false
		}
		return parquet.FloatValue(math.Float32frombits(binary.LittleEndian.Uint32(raw))), true
	case parquet.Double:
		if len(raw) != 8 {
			return parquet.Value{}, false
		}
		return parquet.DoubleValue(math.Float64frombits(binary.LittleEndian.Uint64(raw))), true
	case parquet.ByteArray:
		return parquet.ByteArrayValue(raw), true
	case parquet.FixedLenByteArray:
		return parquet.FixedLenByteArrayValue(raw), true
	}
	return parquet.Value{}, false
}

// ChunkStats is a map-backed ChunkStatistics, for callers assembling
// statistics from file metadata (and for tests).
type ChunkStats struct {
	Rows    int64
	Columns map[string]ColumnStats
}

type ColumnStats struct {
	Min          parquet.Value
	Max          parquet.Value
	HasBounds    bool
	NullCount    int64
	HasNullCount bool
}

func (s *ChunkStats) Bounds(column string) (min, max parquet.Value, ok bool) {
	stats, ok := s.Columns[column]
	if !ok || !stats.HasBounds {
		return parquet.Value{}, parquet.Value{}, false
	}
	return stats.Min, stats.Max, true
}

func (s *ChunkStats) NullCount(column string) (count int64, ok bool) {
	stats, ok := s.Columns[column]
	if !ok || !stats.HasNullCount {
		return 0, false
	}
	return stats.NullCount, true
}

func (s *ChunkStats) RowCount() int64 {
	return s.Rows
}
