package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixMatch_Statistics(t *testing.T) {
	tests := []struct {
		name               string
		prefix             string
		min                string
		max                string
		wantCanDrop        bool
		wantInverseCanDrop bool
	}{
		{
			name:        "whole chunk sorts before the prefix",
			prefix:      "b",
			min:         "apple",
			max:         "apricot",
			wantCanDrop: true,
		},
		{
			name:               "every value starts with the prefix",
			prefix:             "ban",
			min:                "band",
			max:                "banjo",
			wantInverseCanDrop: true,
		},
		{
			name:   "stats shorter than the prefix straddle it",
			prefix: "ban",
			min:    "b",
			max:    "c",
		},
		{
			name:        "whole chunk sorts after the prefix",
			prefix:      "ban",
			min:         "bar",
			max:         "baz",
			wantCanDrop: true,
		},
		{
			name:   "prefix inside the range",
			prefix: "ban",
			min:    "abc",
			max:    "zoo",
		},
		{
			name:               "min and max equal the prefix exactly",
			prefix:             "ban",
			min:                "ban",
			max:                "ban",
			wantInverseCanDrop: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pruner := NewPrefixMatch([]byte(tt.prefix))
			assert.Equal(t, tt.wantCanDrop, pruner.CanDrop([]byte(tt.min), []byte(tt.max)))
			assert.Equal(t, tt.wantInverseCanDrop, pruner.InverseCanDrop([]byte(tt.min), []byte(tt.max)))
		})
	}
}

func TestPrefixMatch_UnsignedComparison(t *testing.T) {
	// 0xC3 0xA9 is utf-8 'é'. With signed byte comparison those bytes would
	// sort before "world" and the chunk would be dropped incorrectly.
	pruner := NewPrefixMatch([]byte("world"))
	assert.False(t, pruner.CanDrop([]byte("hello"), []byte("\xc3\xa9")))

	// Symmetrically, an ascii chunk must be droppable for a prefix above
	// 0x80.
	pruner = NewPrefixMatch([]byte("\xc3"))
	assert.True(t, pruner.CanDrop([]byte("a"), []byte("b")))
}

func TestPrefixMatch_Keep(t *testing.T) {
	pruner := NewPrefixMatch([]byte("Al"))
	assert.True(t, pruner.Keep([]byte("Alice")))
	assert.True(t, pruner.Keep([]byte("Al")))
	assert.False(t, pruner.Keep([]byte("A")))
	assert.False(t, pruner.Keep([]byte("Bob")))
	assert.False(t, pruner.Keep(nil))
}
