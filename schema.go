package pushdown

import (
	"strings"

	parquet "github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
)

// PhysicalColumn describes a single top-level primitive column of the stored
// schema. Immutable once built.
type PhysicalColumn struct {
	Name        string
	Kind        parquet.Kind
	LogicalType *format.LogicalType
	// TypeLength is meaningful only for fixed-length byte array columns.
	TypeLength int
}

// SchemaIndex resolves logical column names to physical columns. Under
// case-insensitive resolution, names that collide after lowercasing are
// excluded entirely - resolving to the wrong column would silently corrupt
// results, so ambiguous names are never matched.
type SchemaIndex struct {
	caseSensitive bool
	columns       map[string]PhysicalColumn
}

// NewSchemaIndex builds an index over the schema's top-level primitive
// columns. Nested and group columns don't participate; pushdown is not
// supported for nested paths.
func NewSchemaIndex(schema *parquet.Schema, caseSensitive bool) SchemaIndex {
	fields := schema.Fields()

	columns := make(map[string]PhysicalColumn, len(fields))
	if caseSensitive {
		for _, field := range fields {
			if !field.Leaf() {
				continue
			}
			columns[field.Name()] = physicalColumnOf(field)
		}
		return SchemaIndex{caseSensitive: true, columns: columns}
	}

	grouped := make(map[string][]parquet.Field, len(fields))
	for _, field := range fields {
		if !field.Leaf() {
			continue
		}
		lowercase := strings.ToLower(field.Name())
		grouped[lowercase] = append(grouped[lowercase], field)
	}
	for lowercase, group := range grouped {
		if len(group) != 1 {
			continue
		}
		columns[lowercase] = physicalColumnOf(group[0])
	}
	return SchemaIndex{caseSensitive: false, columns: columns}
}

func physicalColumnOf(field parquet.Field) PhysicalColumn {
	return PhysicalColumn{
		Name:        field.Name(),
		Kind:        field.Type().Kind(),
		LogicalType: field.Type().LogicalType(),
		TypeLength:  field.Type().Length(),
	}
}

// Lookup resolves a filter's column name. The returned column carries the raw
// schema name, which may differ from the argument in case-insensitive mode.
func (index SchemaIndex) Lookup(name string) (PhysicalColumn, bool) {
	if !index.caseSensitive {
		name = strings.ToLower(name)
	}
	column, ok := index.columns[name]
	return column, ok
}
