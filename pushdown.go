// Package pushdown translates logical filter trees into the parquet filter
// algebra, so that scans can skip row groups and column chunks that cannot
// satisfy a query's predicate. Translation is total and never fails: any
// filter (or subtree) that can't be pushed down safely simply yields no
// predicate, which is the expected outcome for most real filter trees.
package pushdown

import (
	"strings"
	"time"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/parquetql/pushdown/filter"
	"github.com/parquetql/pushdown/predicate"
)

// Config is fixed for the translator's lifetime.
type Config struct {
	PushDownDate       bool
	PushDownTimestamp  bool
	PushDownDecimal    bool
	PushDownStartsWith bool
	// InValueThreshold bounds the size of the disjunction an In filter
	// expands to. In filters with more distinct values yield no predicate.
	InValueThreshold         int
	CaseSensitiveColumnNames bool
	// SessionTimezone interprets timestamps stored as local wall clock
	// readings. Nil means UTC.
	SessionTimezone *time.Location
}

// DefaultConfig enables every pushdown with the defaults query engines
// commonly ship with.
func DefaultConfig() Config {
	return Config{
		PushDownDate:             true,
		PushDownTimestamp:        true,
		PushDownDecimal:          true,
		PushDownStartsWith:       true,
		InValueThreshold:         10,
		CaseSensitiveColumnNames: false,
		SessionTimezone:          time.UTC,
	}
}

// Translator turns logical filters over one stored schema into parquet
// predicates. It's stateless after construction and safe for concurrent use.
type Translator struct {
	config Config
	index  SchemaIndex
}

func NewTranslator(schema *parquet.Schema, config Config) *Translator {
	if config.SessionTimezone == nil {
		config.SessionTimezone = time.UTC
	}
	return &Translator{
		config: config,
		index:  NewSchemaIndex(schema, config.CaseSensitiveColumnNames),
	}
}

// Translate produces the storage predicate equivalent to the given filter.
// ok is false when no predicate can be pushed down; that's not an error, just
// a missed optimization - the caller scans everything.
func (t *Translator) Translate(f filter.Filter) (out predicate.Predicate, ok bool) {
	switch f.FilterType {
	case filter.FilterTypeIsNull:
		return t.translateComparison(f.Column.Name, filter.NewNull(), predicate.Eq)
	case filter.FilterTypeIsNotNull:
		return t.translateComparison(f.Column.Name, filter.NewNull(), predicate.NotEq)

	case filter.FilterTypeEquals, filter.FilterTypeEqualNullSafe:
		// The physical equality is inherently null-safe, so both equality
		// variants collapse to the same predicate.
		return t.translateComparison(f.Comparison.Name, f.Comparison.Value, predicate.Eq)
	case filter.FilterTypeNotEquals:
		return t.translateComparison(f.Comparison.Name, f.Comparison.Value, predicate.NotEq)

	case filter.FilterTypeLessThan:
		return t.translateOrdered(f.Comparison, predicate.Lt)
	case filter.FilterTypeLessOrEqual:
		return t.translateOrdered(f.Comparison, predicate.LtEq)
	case filter.FilterTypeGreaterThan:
		return t.translateOrdered(f.Comparison, predicate.Gt)
	case filter.FilterTypeGreaterOrEqual:
		return t.translateOrdered(f.Comparison, predicate.GtEq)

	case filter.FilterTypeAnd:
		// Partial pushdown of one side alone would be unsound here.
		left, ok := t.Translate(f.And.Left)
		if !ok {
			return predicate.Predicate{}, false
		}
		right, ok := t.Translate(f.And.Right)
		if !ok {
			return predicate.Predicate{}, false
		}
		return predicate.NewAnd(left, right), true

	case filter.FilterTypeOr:
		left, ok := t.Translate(f.Or.Left)
		if !ok {
			return predicate.Predicate{}, false
		}
		right, ok := t.Translate(f.Or.Right)
		if !ok {
			return predicate.Predicate{}, false
		}
		return predicate.NewOr(left, right), true

	case filter.FilterTypeNot:
		inner, ok := t.Translate(f.Not.Inner)
		if !ok {
			return predicate.Predicate{}, false
		}
		return predicate.NewNot(inner), true

	case filter.FilterTypeIn:
		return t.translateIn(f.In)

	case filter.FilterTypeStartsWith:
		if !t.config.PushDownStartsWith {
			return predicate.Predicate{}, false
		}
		column, ok := t.eligible(f.StartsWith.Name, filter.NewString(f.StartsWith.Prefix))
		if !ok {
			return predicate.Predicate{}, false
		}
		return predicate.NewUserDefined(column.Name, predicate.NewPrefixMatch([]byte(f.StartsWith.Prefix))), true
	}
	panic("unexhaustive filter type match")
}

// PushDown splits a conjunct list into predicates the storage layer will
// evaluate and filters the engine has to keep evaluating itself.
func (t *Translator) PushDown(filters []filter.Filter) (pushedDown []predicate.Predicate, rejected []filter.Filter) {
	for _, f := range filters {
		if out, ok := t.Translate(f); ok {
			pushedDown = append(pushedDown, out)
		} else {
			rejected = append(rejected, f)
		}
	}
	return pushedDown, rejected
}

// CanPushDown reports whether comparison filters on the column can be
// translated at all under this translator's configuration.
func (t *Translator) CanPushDown(name string) bool {
	_, ok := t.resolvable(name)
	return ok
}

// resolvable gates every leaf translation: the name must resolve, the
// resolved name must contain no path separator (the physical format can't
// tell a literal dotted name from a nested path, which could silently produce
// wrong prunes), and the column must have an encoder under the current
// configuration.
func (t *Translator) resolvable(name string) (PhysicalColumn, bool) {
	column, ok := t.index.Lookup(name)
	if !ok {
		return PhysicalColumn{}, false
	}
	if strings.ContainsRune(column.Name, '.') {
		return PhysicalColumn{}, false
	}
	if _, ok := t.encoderFor(column); !ok {
		return PhysicalColumn{}, false
	}
	return column, true
}

func (t *Translator) eligible(name string, value filter.Value) (PhysicalColumn, bool) {
	column, ok := t.resolvable(name)
	if !ok {
		return PhysicalColumn{}, false
	}
	if !valueMatches(column, value) {
		return PhysicalColumn{}, false
	}
	return column, true
}

func (t *Translator) translateComparison(name string, value filter.Value, build func(string, parquet.Value) predicate.Predicate) (predicate.Predicate, bool) {
	column, ok := t.eligible(name, value)
	if !ok {
		return predicate.Predicate{}, false
	}
	encoded, ok := t.encode(column, value)
	if !ok {
		return predicate.Predicate{}, false
	}
	return build(column.Name, encoded), true
}

func (t *Translator) translateOrdered(comparison *filter.Comparison, build func(string, parquet.Value) predicate.Predicate) (predicate.Predicate, bool) {
	if comparison.Value.IsNull() {
		return predicate.Predicate{}, false
	}
	return t.translateComparison(comparison.Name, comparison.Value, build)
}

// translateIn expands the filter into a disjunction of per-value equality
// predicates. Values that fail to encode are dropped from the fold - an OR
// over a subset over-approximates who can match, so pruning stays sound as
// long as at least one disjunct remains.
func (t *Translator) translateIn(in *filter.In) (predicate.Predicate, bool) {
	distinct := distinctValues(in.Values)
	if len(distinct) == 0 || len(distinct) > t.config.InValueThreshold {
		return predicate.Predicate{}, false
	}
	// The first value stands in for the whole list when checking eligibility;
	// later values that don't fit the column drop out of the fold instead.
	column, ok := t.eligible(in.Name, distinct[0])
	if !ok {
		return predicate.Predicate{}, false
	}

	var out predicate.Predicate
	found := false
	for _, value := range distinct {
		encoded, ok := t.encode(column, value)
		if !ok {
			continue
		}
		disjunct := predicate.Eq(column.Name, encoded)
		if !found {
			out, found = disjunct, true
		} else {
			out = predicate.NewOr(out, disjunct)
		}
	}
	return out, found
}

func distinctValues(values []filter.Value) []filter.Value {
	out := make([]filter.Value, 0, len(values))
	for _, value := range values {
		duplicate := false
		for _, kept := range out {
			if value.Equal(kept) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, value)
		}
	}
	return out
}
