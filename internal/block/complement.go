package block

import "github.com/mypmc/go-roaring/internal/wordops"

// Complement returns the block-level complement within the 65536-value
// universe as a new block. Bitmap complements word by word; Runs
// complements by walking the gaps between ranges; Array is promoted to
// Bitmap first.
func (b *Block) Complement() *Block {
	switch b.kind {
	case kindBitmap:
		var out [bitmapWords]uint64
		var weight uint32
		for i := 0; i < bitmapWords; i++ {
			out[i] = ^b.bitmap[i]
			weight += uint32(wordops.PopCount(out[i]))
		}
		return &Block{kind: kindBitmap, bitmap: out, weight: weight}
	case kindRuns:
		return &Block{kind: kindRuns, runs: complementRuns(b.runs), weight: uint32(Universe) - b.weight}
	default: // kindArray
		promoted := b.Clone()
		promoted.promoteToBitmap()
		return promoted.Complement()
	}
}

// complementRuns yields the gap intervals between runs, plus the leading
// gap [0, first.Start) and trailing gap (last.End, Universe) when present.
func complementRuns(runs []runPair) []runPair {
	var out []runPair
	prevEnd := -1 // inclusive End of the previous run, widened; -1 before the first
	for _, r := range runs {
		if int(r.Start) > prevEnd+1 {
			out = append(out, runPair{Start: uint16(prevEnd + 1), End: r.Start - 1})
		}
		prevEnd = int(r.End)
	}
	if prevEnd+1 < Universe {
		out = append(out, runPair{Start: uint16(prevEnd + 1), End: uint16(Universe - 1)})
	}
	return out
}
