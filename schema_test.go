package pushdown

import (
	"testing"

	parquet "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaIndex_CaseSensitive(t *testing.T) {
	schema := parquet.NewSchema("events", parquet.Group{
		"id":   parquet.Int(64),
		"Name": parquet.String(),
		"name": parquet.String(),
	})
	index := NewSchemaIndex(schema, true)

	column, ok := index.Lookup("id")
	require.True(t, ok)
	assert.Equal(t, "id", column.Name)
	assert.Equal(t, parquet.Int64, column.Kind)

	column, ok = index.Lookup("Name")
	require.True(t, ok)
	assert.Equal(t, "Name", column.Name)

	column, ok = index.Lookup("name")
	require.True(t, ok)
	assert.Equal(t, "name", column.Name)

	_, ok = index.Lookup("NAME")
	assert.False(t, ok)
}

func TestSchemaIndex_CaseInsensitive(t *testing.T) {
	schema := parquet.NewSchema("events", parquet.Group{
		"id":   parquet.Int(64),
		"City": parquet.String(),
	})
	index := NewSchemaIndex(schema, false)

	for _, name := range []string{"city", "City", "CITY"} {
		column, ok := index.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, "City", column.Name)
	}
}

func TestSchemaIndex_AmbiguousNamesExcluded(t *testing.T) {
	schema := parquet.NewSchema("events", parquet.Group{
		"Name": parquet.String(),
		"name": parquet.String(),
		"id":   parquet.Int(64),
	})
	index := NewSchemaIndex(schema, false)

	// Both spellings collide after lowercasing; neither resolves.
	_, ok := index.Lookup("name")
	assert.False(t, ok)
	_, ok = index.Lookup("Name")
	assert.False(t, ok)

	_, ok = index.Lookup("ID")
	assert.True(t, ok)
}

func TestSchemaIndex_SkipsNestedColumns(t *testing.T) {
	schema := parquet.NewSchema("events", parquet.Group{
		"id": parquet.Int(64),
		"address": parquet.Group{
			"city": parquet.String(),
		},
	})
	index := NewSchemaIndex(schema, false)

	_, ok := index.Lookup("address")
	assert.False(t, ok)
	_, ok = index.Lookup("city")
	assert.False(t, ok)
	_, ok = index.Lookup("id")
	assert.True(t, ok)
}

func TestSchemaIndex_LogicalTypeCarried(t *testing.T) {
	schema := parquet.NewSchema("events", parquet.Group{
		"amount": parquet.Decimal(2, 9, parquet.Int32Type),
		"key":    parquet.Leaf(parquet.FixedLenByteArrayType(16)),
	})
	index := NewSchemaIndex(schema, false)

	column, ok := index.Lookup("amount")
	require.True(t, ok)
	require.NotNil(t, column.LogicalType)
	require.NotNil(t, column.LogicalType.Decimal)
	assert.Equal(t, int32(2), column.LogicalType.Decimal.Scale)
	assert.Equal(t, int32(9), column.LogicalType.Decimal.Precision)

	column, ok = index.Lookup("key")
	require.True(t, ok)
	assert.Equal(t, parquet.FixedLenByteArray, column.Kind)
	assert.Equal(t, 16, column.TypeLength)
}
