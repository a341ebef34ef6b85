package block

import (
	"slices"

	"github.com/mypmc/go-roaring/internal/wordops"
)

// op identifies one of the four set-algebra operators.
type op uint8

const (
	opAnd op = iota
	opOr
	opXor
	opAndNot
)

// Intersection returns a new block holding a ∩ b.
func Intersection(a, b *Block) *Block { return combine(opAnd, a, b) }

// Union returns a new block holding a ∪ b.
func Union(a, b *Block) *Block { return combine(opOr, a, b) }

// SymmetricDifference returns a new block holding a △ b.
func SymmetricDifference(a, b *Block) *Block { return combine(opXor, a, b) }

// Difference returns a new block holding a ∖ b.
func Difference(a, b *Block) *Block { return combine(opAndNot, a, b) }

// combine dispatches on the nine (a.kind, b.kind) pairs. Runs/Runs gets the
// linear-time event sweep; Array/Array is a direct merge; Array/Bitmap and
// Bitmap/Array scan the array against the bitmap; Bitmap/Runs expands the
// runs into a scratch bitmap; the remaining pairs promote the left operand
// to Bitmap and re-dispatch.
func combine(o op, a, b *Block) *Block {
	switch {
	case a.kind == kindArray && b.kind == kindArray:
		return combineArrayArray(o, a.arr, b.arr)
	case a.kind == kindArray && b.kind == kindBitmap:
		return combineArrayBitmap(o, a.arr, &b.bitmap)
	case a.kind == kindArray && b.kind == kindRuns:
		promoted := a.Clone()
		promoted.promoteToBitmap()
		return combine(o, promoted, b)
	case a.kind == kindBitmap && b.kind == kindArray:
		return combineBitmapArray(o, &a.bitmap, b.arr)
	case a.kind == kindBitmap && b.kind == kindBitmap:
		return combineBitmapBitmap(o, &a.bitmap, &b.bitmap)
	case a.kind == kindBitmap && b.kind == kindRuns:
		bm := runsToBitmap(b.runs)
		return combineBitmapBitmap(o, &a.bitmap, &bm)
	case a.kind == kindRuns && b.kind == kindArray:
		promoted := a.Clone()
		promoted.promoteToBitmap()
		return combine(o, promoted, b)
	case a.kind == kindRuns && b.kind == kindBitmap:
		promoted := a.Clone()
		promoted.promoteToBitmap()
		return combine(o, promoted, b)
	case a.kind == kindRuns && b.kind == kindRuns:
		var keep func(bool, bool) bool
		switch o {
		case opAnd:
			keep = keepAnd
		case opOr:
			keep = keepOr
		case opXor:
			keep = keepXor
		default:
			keep = keepAndNot
		}
		runs, weight := runSweep(a.runs, b.runs, keep)
		return &Block{kind: kindRuns, runs: runs, weight: weight}
	default:
		panic("block: unreachable kind pair")
	}
}

// runsToBitmap converts a run list to a bitmap on the fly, without
// mutating the source block, used when a Bitmap operand meets a Runs
// operand.
func runsToBitmap(runs []runPair) [bitmapWords]uint64 {
	var bm [bitmapWords]uint64
	for _, r := range runs {
		bitmapSetRange1(&bm, int(r.Start), int(r.End)+1)
	}
	return bm
}

// combineArrayArray merges two sorted, deduplicated slices directly, the
// cheapest of the nine cells.
func combineArrayArray(o op, a, b []uint16) *Block {
	var out []uint16
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			if o == opOr || o == opXor || o == opAndNot {
				out = append(out, a[i])
			}
			i++
		case a[i] > b[j]:
			if o == opOr || o == opXor {
				out = append(out, b[j])
			}
			j++
		default: // equal
			if o == opAnd || o == opOr {
				out = append(out, a[i])
			}
			i++
			j++
		}
	}
	if o == opOr || o == opXor || o == opAndNot {
		out = append(out, a[i:]...)
	}
	if o == opOr || o == opXor {
		out = append(out, b[j:]...)
	}
	return NewFromSorted(out)
}

// combineArrayBitmap handles a self-Array, other-Bitmap pair: scan the
// array, testing membership in the bitmap; union promotes self to Bitmap.
func combineArrayBitmap(o op, arr []uint16, bm *[bitmapWords]uint64) *Block {
	if o == opOr {
		promoted := NewFromSorted(arr)
		promoted.promoteToBitmap()
		return combineBitmapBitmap(o, &promoted.bitmap, bm)
	}
	var out []uint16
	for _, x := range arr {
		in := bitmapContains(bm, x)
		switch o {
		case opAnd:
			if in {
				out = append(out, x)
			}
		case opAndNot:
			if !in {
				out = append(out, x)
			}
		case opXor:
			// self is Array; an Array-side-only element survives xor
			// when absent from the other side. Elements present only
			// on the Bitmap side are added after this loop by
			// iterating the bitmap's set bits.
			if !in {
				out = append(out, x)
			}
		}
	}
	if o == opXor {
		// Add the Bitmap-only members: iterate every set bit not in arr.
		next := (&Block{kind: kindBitmap, bitmap: *bm}).iterate()
		for {
			v, ok := next()
			if !ok {
				break
			}
			if !arrayContains(arr, v) {
				out = append(out, v)
			}
		}
		slices.Sort(out)
	}
	return NewFromSorted(out)
}

// combineBitmapArray handles a self-Bitmap, other-Array pair: word-wise
// for intersection-style membership tests, direct bit ops for the rest.
func combineBitmapArray(o op, bm *[bitmapWords]uint64, arr []uint16) *Block {
	switch o {
	case opAnd:
		var out []uint16
		for _, x := range arr {
			if bitmapContains(bm, x) {
				out = append(out, x)
			}
		}
		return NewFromSorted(out)
	case opOr:
		result := *bm
		var weight uint32
		for i := range result {
			weight += uint32(wordops.PopCount(result[i]))
		}
		for _, x := range arr {
			bitmapInsert(&result, &weight, x)
		}
		return &Block{kind: kindBitmap, bitmap: result, weight: weight}
	case opAndNot:
		result := *bm
		var weight uint32
		for i := range result {
			weight += uint32(wordops.PopCount(result[i]))
		}
		for _, x := range arr {
			bitmapRemove(&result, &weight, x)
		}
		return &Block{kind: kindBitmap, bitmap: result, weight: weight}
	default: // opXor
		result := *bm
		var weight uint32
		for i := range result {
			weight += uint32(wordops.PopCount(result[i]))
		}
		for _, x := range arr {
			if bitmapContains(&result, x) {
				bitmapRemove(&result, &weight, x)
			} else {
				bitmapInsert(&result, &weight, x)
			}
		}
		return &Block{kind: kindBitmap, bitmap: result, weight: weight}
	}
}

// combineBitmapBitmap is the dense word-wise path shared by every cell
// that reduces to two full bitmaps.
func combineBitmapBitmap(o op, a, b *[bitmapWords]uint64) *Block {
	var result [bitmapWords]uint64
	var weight uint32
	for i := 0; i < bitmapWords; i++ {
		var w uint64
		switch o {
		case opAnd:
			w = a[i] & b[i]
		case opOr:
			w = a[i] | b[i]
		case opXor:
			w = a[i] ^ b[i]
		case opAndNot:
			w = a[i] &^ b[i]
		}
		result[i] = w
		weight += uint32(wordops.PopCount(w))
	}
	return &Block{kind: kindBitmap, bitmap: result, weight: weight}
}
