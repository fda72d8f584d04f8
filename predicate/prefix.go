package predicate

import (
	"bytes"
	"fmt"
)

// PrefixMatch is a ChunkPruner for "value starts with prefix" over binary and
// string columns. All statistic comparisons use unsigned byte order, matching
// the storage format's sort order for these columns; signed comparison would
// silently break pruning for bytes >= 0x80.
type PrefixMatch struct {
	prefix []byte
}

func NewPrefixMatch(prefix []byte) *PrefixMatch {
	return &PrefixMatch{prefix: prefix}
}

// CanDrop reports whether no value in [min, max] can start with the prefix.
// If max truncated to the prefix length sorts before the prefix, every value
// in the chunk does too; symmetrically for a truncated min sorting after.
func (p *PrefixMatch) CanDrop(min, max []byte) bool {
	if bytes.Compare(truncate(max, len(p.prefix)), p.prefix) < 0 {
		return true
	}
	if bytes.Compare(truncate(min, len(p.prefix)), p.prefix) > 0 {
		return true
	}
	return false
}

// InverseCanDrop reports whether every value in [min, max] provably starts
// with the prefix, so a chunk can be skipped for the negated predicate. This
// holds exactly when both truncated endpoints equal the prefix.
func (p *PrefixMatch) InverseCanDrop(min, max []byte) bool {
	return bytes.Equal(truncate(min, len(p.prefix)), p.prefix) &&
		bytes.Equal(truncate(max, len(p.prefix)), p.prefix)
}

func (p *PrefixMatch) Keep(value []byte) bool {
	return bytes.HasPrefix(value, p.prefix)
}

func (p *PrefixMatch) String() string {
	return fmt.Sprintf("prefixMatch('%s')", p.prefix)
}

func truncate(value []byte, length int) []byte {
	if len(value) <= length {
		return value
	}
	return value[:length]
}
