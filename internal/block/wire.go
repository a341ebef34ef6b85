package block

import "github.com/mypmc/go-roaring/internal/wordops"

// Range is the exported form of an inclusive run, used by the wire codec
// to read and write the Runs encoding without reaching into block
// internals.
type Range struct {
	Start, End uint16
}

// NewArrayExact builds an Array-encoded block from an already sorted,
// deduplicated, non-empty slice, without applying the grow-out threshold.
// Used by the wire decoder, which must reproduce the encoding the writer
// declared rather than re-deriving it.
func NewArrayExact(values []uint16) *Block {
	return &Block{kind: kindArray, arr: append([]uint16(nil), values...)}
}

// NewBitmapExact builds a Bitmap-encoded block from raw words.
func NewBitmapExact(words [bitmapWords]uint64) *Block {
	var weight uint32
	for _, w := range words {
		weight += uint32(wordops.PopCount(w))
	}
	return &Block{kind: kindBitmap, bitmap: words, weight: weight}
}

// NewRunsExact builds a Runs-encoded block from an already sorted, disjoint
// list of ranges.
func NewRunsExact(ranges []Range) *Block {
	rs := make([]runPair, len(ranges))
	var weight uint32
	for i, r := range ranges {
		rs[i] = runPair{Start: r.Start, End: r.End}
		weight += rs[i].length()
	}
	return &Block{kind: kindRuns, runs: rs, weight: weight}
}

// ArrayValues returns the block's sorted values, valid only when
// EncodingKind() == KindArray.
func (b *Block) ArrayValues() []uint16 {
	return b.arr
}

// BitmapWords returns the block's raw words, valid only when
// EncodingKind() == KindBitmap.
func (b *Block) BitmapWords() [bitmapWords]uint64 {
	return b.bitmap
}

// Ranges returns the block's runs, valid only when EncodingKind() == KindRuns.
func (b *Block) Ranges() []Range {
	out := make([]Range, len(b.runs))
	for i, r := range b.runs {
		out[i] = Range{Start: r.Start, End: r.End}
	}
	return out
}

