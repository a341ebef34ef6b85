// Package roaring implements a compressed bitset over the full uint32
// universe: a sparse index of 64K-bit blocks keyed by the high 16 bits of
// each member, composing block-level primitives (internal/block) into
// bitset-level membership, cardinality, rank/select, and set-algebra
// operations, plus a lazy streaming mask pipeline for combining bitsets
// without materializing intermediates.
package roaring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mypmc/go-roaring/internal/block"
)

// Bitset is a sparse set of uint32 values. The zero value is an empty,
// ready-to-use bitset.
type Bitset struct {
	keys   []uint16
	blocks []*block.Block
}

// New returns an empty Bitset.
func New() *Bitset {
	return &Bitset{}
}

// split decomposes x into its high and low 16-bit halves.
func split(x uint32) (hi, lo uint16) {
	return uint16(x >> 16), uint16(x)
}

// join recomposes a key/offset pair into a uint32.
func join(hi, lo uint16) uint32 {
	return uint32(hi)<<16 | uint32(lo)
}

// indexOf returns the position of hi within keys, and whether it is present.
func (s *Bitset) indexOf(hi uint16) (int, bool) {
	i := sort.Search(len(s.keys), func(i int) bool { return s.keys[i] >= hi })
	if i < len(s.keys) && s.keys[i] == hi {
		return i, true
	}
	return i, false
}

// Contains reports whether x is a member of the set.
func (s *Bitset) Contains(x uint32) bool {
	hi, lo := split(x)
	i, ok := s.indexOf(hi)
	if !ok {
		return false
	}
	return s.blocks[i].Contains(lo)
}

// Insert adds x to the set, returning whether the set changed.
func (s *Bitset) Insert(x uint32) bool {
	hi, lo := split(x)
	i, ok := s.indexOf(hi)
	if !ok {
		b := block.NewEmpty()
		b.Insert(lo)
		s.keys = append(s.keys, 0)
		copy(s.keys[i+1:], s.keys[i:])
		s.keys[i] = hi
		s.blocks = append(s.blocks, nil)
		copy(s.blocks[i+1:], s.blocks[i:])
		s.blocks[i] = b
		return true
	}
	return s.blocks[i].Insert(lo)
}

// Remove deletes x from the set, returning whether the set changed. If the
// containing block becomes empty, it is dropped from the index.
func (s *Bitset) Remove(x uint32) bool {
	hi, lo := split(x)
	i, ok := s.indexOf(hi)
	if !ok {
		return false
	}
	changed := s.blocks[i].Remove(lo)
	if changed && s.blocks[i].Count1() == 0 {
		s.keys = append(s.keys[:i], s.keys[i+1:]...)
		s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
	}
	return changed
}

// Count1 returns the total number of members.
func (s *Bitset) Count1() uint64 {
	var total uint64
	for _, b := range s.blocks {
		total += uint64(b.Count1())
	}
	return total
}

// Count0 returns the number of absent values in the full 2^32 universe.
func (s *Bitset) Count0() uint64 {
	return (uint64(1) << 32) - s.Count1()
}

// Rank1 returns the number of members strictly less than x.
func (s *Bitset) Rank1(x uint32) uint64 {
	hi, lo := split(x)
	var total uint64
	for i, k := range s.keys {
		if k < hi {
			total += uint64(s.blocks[i].Count1())
		} else if k == hi {
			total += uint64(s.blocks[i].Rank1(int(lo)))
			break
		} else {
			break
		}
	}
	return total
}

// Select1 returns the n-th (0-indexed) member, or (0, false) if the set has
// at most n members.
func (s *Bitset) Select1(n uint64) (uint32, bool) {
	remaining := n
	for i, k := range s.keys {
		c := uint64(s.blocks[i].Count1())
		if remaining < c {
			lo, _ := s.blocks[i].Select1(int(remaining))
			return join(k, lo), true
		}
		remaining -= c
	}
	return 0, false
}

// Select0 returns the n-th (0-indexed) absent value, or (0, false) if the
// set has at most n absences (impossible in practice since the universe
// vastly exceeds any real cardinality, but checked for completeness).
func (s *Bitset) Select0(n uint64) (uint32, bool) {
	remaining := n
	const blockSpan = uint64(block.Universe)
	prevKey := int64(-1)
	for i, k := range s.keys {
		// Zero-gap between the previous stored key and this one: every
		// intervening hi value is a block of entirely absent values.
		gapBlocks := uint64(k) - uint64(prevKey) - 1
		gapZeros := gapBlocks * blockSpan
		if remaining < gapZeros {
			hi := uint16(uint64(prevKey+1) + remaining/blockSpan)
			lo := uint16(remaining % blockSpan)
			return join(hi, lo), true
		}
		remaining -= gapZeros

		c0 := uint64(s.blocks[i].Count0())
		if remaining < c0 {
			lo, _ := s.blocks[i].Select0(int(remaining))
			return join(k, lo), true
		}
		remaining -= c0
		prevKey = int64(k)
	}
	// Trailing gap after the last stored key, up to key 0xffff.
	gapBlocks := uint64(0x10000) - uint64(prevKey+1)
	gapZeros := gapBlocks * blockSpan
	if remaining < gapZeros {
		hi := uint16(uint64(prevKey+1) + remaining/blockSpan)
		lo := uint16(remaining % blockSpan)
		return join(hi, lo), true
	}
	return 0, false
}

// Optimize re-encodes every block to its minimum-size representation and
// drops any block that became empty.
func (s *Bitset) Optimize() {
	keys := s.keys[:0]
	blocks := s.blocks[:0]
	for i, b := range s.blocks {
		b.Optimize()
		if b.Count1() == 0 {
			continue
		}
		keys = append(keys, s.keys[i])
		blocks = append(blocks, b)
	}
	s.keys = keys
	s.blocks = blocks
}

// Clone returns a deep, independent copy of s.
func (s *Bitset) Clone() *Bitset {
	out := &Bitset{
		keys:   append([]uint16(nil), s.keys...),
		blocks: make([]*block.Block, len(s.blocks)),
	}
	for i, b := range s.blocks {
		out.blocks[i] = b.Clone()
	}
	return out
}

// Equal reports whether s and other represent the same set of values.
func (s *Bitset) Equal(other *Bitset) bool {
	if len(s.keys) != len(other.keys) {
		return false
	}
	for i := range s.keys {
		if s.keys[i] != other.keys[i] {
			return false
		}
		if !s.blocks[i].Equal(other.blocks[i]) {
			return false
		}
	}
	return true
}

// String renders a bounded preview of the set's members, e.g. "{1, 2, 3, ...}".
func (s *Bitset) String() string {
	const maxPreview = 16
	var sb strings.Builder
	sb.WriteByte('{')
	count := 0
	n := uint64(0)
	for {
		v, ok := s.Select1(n)
		if !ok {
			break
		}
		if count >= maxPreview {
			sb.WriteString(", ...")
			break
		}
		if count > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", v)
		count++
		n++
	}
	sb.WriteByte('}')
	return sb.String()
}

// FromValues builds a Bitset containing exactly the given values.
func FromValues(values []uint32) *Bitset {
	s := New()
	for _, v := range values {
		s.Insert(v)
	}
	return s
}
