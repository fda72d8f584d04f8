package filter

import (
	"fmt"
	"strings"
)

// Filter is a single node of the logical filter tree handed over by the query
// planner. Trees are immutable after construction.
type Filter struct {
	FilterType FilterType

	// Only one of the below may be non-null.
	Column     *Column
	Comparison *Comparison
	And        *And
	Or         *Or
	Not        *Not
	In         *In
	StartsWith *StartsWith
}

type FilterType int

const (
	FilterTypeIsNull FilterType = iota
	FilterTypeIsNotNull
	FilterTypeEquals
	FilterTypeEqualNullSafe
	FilterTypeNotEquals
	FilterTypeLessThan
	FilterTypeLessOrEqual
	FilterTypeGreaterThan
	FilterTypeGreaterOrEqual
	FilterTypeAnd
	FilterTypeOr
	FilterTypeNot
	FilterTypeIn
	FilterTypeStartsWith
)

type Column struct {
	Name string
}

type Comparison struct {
	Name  string
	Value Value
}

type And struct {
	Left  Filter
	Right Filter
}

type Or struct {
	Left  Filter
	Right Filter
}

type Not struct {
	Inner Filter
}

type In struct {
	Name   string
	Values []Value
}

type StartsWith struct {
	Name   string
	Prefix string
}

func NewIsNull(name string) Filter {
	return Filter{
		FilterType: FilterTypeIsNull,
		Column:     &Column{Name: name},
	}
}

func NewIsNotNull(name string) Filter {
	return Filter{
		FilterType: FilterTypeIsNotNull,
		Column:     &Column{Name: name},
	}
}

func NewEquals(name string, value Value) Filter {
	return Filter{
		FilterType: FilterTypeEquals,
		Comparison: &Comparison{Name: name, Value: value},
	}
}

func NewEqualNullSafe(name string, value Value) Filter {
	return Filter{
		FilterType: FilterTypeEqualNullSafe,
		Comparison: &Comparison{Name: name, Value: value},
	}
}

func NewNotEquals(name string, value Value) Filter {
	return Filter{
		FilterType: FilterTypeNotEquals,
		Comparison: &Comparison{Name: name, Value: value},
	}
}

func NewLessThan(name string, value Value) Filter {
	return Filter{
		FilterType: FilterTypeLessThan,
		Comparison: &Comparison{Name: name, Value: value},
	}
}

func NewLessOrEqual(name string, value Value) Filter {
	return Filter{
		FilterType: FilterTypeLessOrEqual,
		Comparison: &Comparison{Name: name, Value: value},
	}
}

func NewGreaterThan(name string, value Value) Filter {
	return Filter{
		FilterType: FilterTypeGreaterThan,
		Comparison: &Comparison{Name: name, Value: value},
	}
}

func NewGreaterOrEqual(name string, value Value) Filter {
	return Filter{
		FilterType: FilterTypeGreaterOrEqual,
		Comparison: &Comparison{Name: name, Value: value},
	}
}

func NewAnd(left, right Filter) Filter {
	return Filter{
		FilterType: FilterTypeAnd,
		And:        &And{Left: left, Right: right},
	}
}

func NewOr(left, right Filter) Filter {
	return Filter{
		FilterType: FilterTypeOr,
		Or:         &Or{Left: left, Right: right},
	}
}

func NewNot(inner Filter) Filter {
	return Filter{
		FilterType: FilterTypeNot,
		Not:        &Not{Inner: inner},
	}
}

func NewIn(name string, values ...Value) Filter {
	return Filter{
		FilterType: FilterTypeIn,
		In:         &In{Name: name, Values: values},
	}
}

func NewStartsWith(name string, prefix string) Filter {
	return Filter{
		FilterType: FilterTypeStartsWith,
		StartsWith: &StartsWith{Name: name, Prefix: prefix},
	}
}

func (f Filter) String() string {
	switch f.FilterType {
	case FilterTypeIsNull:
		return fmt.Sprintf("isNull(%s)", f.Column.Name)
	case FilterTypeIsNotNull:
		return fmt.Sprintf("isNotNull(%s)", f.Column.Name)
	case FilterTypeEquals:
		return fmt.Sprintf("eq(%s, %s)", f.Comparison.Name, f.Comparison.Value)
	case FilterTypeEqualNullSafe:
		return fmt.Sprintf("eqNullSafe(%s, %s)", f.Comparison.Name, f.Comparison.Value)
	case FilterTypeNotEquals:
		return fmt.Sprintf("notEq(%s, %s)", f.Comparison.Name, f.Comparison.Value)
	case FilterTypeLessThan:
		return fmt.Sprintf("lt(%s, %s)", f.Comparison.Name, f.Comparison.Value)
	case FilterTypeLessOrEqual:
		return fmt.Sprintf("ltEq(%s, %s)", f.Comparison.Name, f.Comparison.Value)
	case FilterTypeGreaterThan:
		return fmt.Sprintf("gt(%s, %s)", f.Comparison.Name, f.Comparison.Value)
	case FilterTypeGreaterOrEqual:
		return fmt.Sprintf("gtEq(%s, %s)", f.Comparison.Name, f.Comparison.Value)
	case FilterTypeAnd:
		return fmt.Sprintf("and(%s, %s)", f.And.Left, f.And.Right)
	case FilterTypeOr:
		return fmt.Sprintf("or(%s, %s)", f.Or.Left, f.Or.Right)
	case FilterTypeNot:
		return fmt.Sprintf("not(%s)", f.Not.Inner)
	case FilterTypeIn:
		values := make([]string, len(f.In.Values))
		for i := range f.In.Values {
			values[i] = f.In.Values[i].String()
		}
		return fmt.Sprintf("in(%s, [%s])", f.In.Name, strings.Join(values, ", "))
	case FilterTypeStartsWith:
		return fmt.Sprintf("startsWith(%s, '%s')", f.StartsWith.Name, f.StartsWith.Prefix)
	}
	panic("unexhaustive filter type match")
}
