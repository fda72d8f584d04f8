package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nulls", NewNull(), NewNull(), true},
		{"null vs int", NewNull(), NewInt(0), false},
		{"ints", NewInt(7), NewInt(7), true},
		{"int vs float", NewInt(7), NewFloat(7), false},
		{"strings", NewString("a"), NewString("a"), true},
		{"bytes", NewBytes([]byte{1, 2}), NewBytes([]byte{1, 2}), true},
		{
			"dates normalize to midnight",
			NewDate(time.Date(2024, time.March, 1, 13, 30, 0, 0, time.UTC)),
			NewDate(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)),
			true,
		},
		{
			"same decimal and scale",
			mustDecimalValue(t, "1.20"),
			mustDecimalValue(t, "1.20"),
			true,
		},
		{
			"same number different scale",
			mustDecimalValue(t, "1.2"),
			mustDecimalValue(t, "1.20"),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestDecimalScale(t *testing.T) {
	assert.Equal(t, int32(2), mustDecimalValue(t, "1.20").DecimalScale())
	assert.Equal(t, int32(0), mustDecimalValue(t, "3").DecimalScale())
}
