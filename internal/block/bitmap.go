package block

import "github.com/mypmc/go-roaring/internal/wordops"

// bitmapContains reports whether bit x is set.
func bitmapContains(bm *[bitmapWords]uint64, x uint16) bool {
	return bm[x>>6]&(1<<uint(x&63)) != 0
}

// bitmapInsert sets bit x, bumping *weight if it was previously clear.
func bitmapInsert(bm *[bitmapWords]uint64, weight *uint32, x uint16) bool {
	word, bit := x>>6, uint(x&63)
	if bm[word]&(1<<bit) != 0 {
		return false
	}
	bm[word] |= 1 << bit
	*weight++
	return true
}

// bitmapRemove clears bit x, decrementing *weight if it was previously set.
func bitmapRemove(bm *[bitmapWords]uint64, weight *uint32, x uint16) bool {
	word, bit := x>>6, uint(x&63)
	if bm[word]&(1<<bit) == 0 {
		return false
	}
	bm[word] &^= 1 << bit
	*weight--
	return true
}

// bitmapRank1 returns the count of set bits strictly below x.
func bitmapRank1(bm *[bitmapWords]uint64, x int) int {
	word, bit := x>>6, x&63
	count := 0
	for i := 0; i < word; i++ {
		count += wordops.PopCount(bm[i])
	}
	if word < bitmapWords {
		count += wordops.Rank1(bm[word], bit)
	}
	return count
}

// bitmapSelect1 scans words accumulating popcount until it finds the word
// holding the n-th set bit, then finishes with a word-local select.
func bitmapSelect1(bm *[bitmapWords]uint64, n int) (uint16, bool) {
	remaining := n
	for i := 0; i < bitmapWords; i++ {
		w := wordops.PopCount(bm[i])
		if w > remaining {
			pos, _ := wordops.Select1(bm[i], remaining)
			return uint16(i*64 + pos), true
		}
		remaining -= w
	}
	return 0, false
}

// bitmapSetRange1 sets bits [i, j) and returns the number of bits that
// changed from 0 to 1. It decomposes the range into a head partial word,
// zero or more full interior words, and a tail partial word.
func bitmapSetRange1(bm *[bitmapWords]uint64, i, j int) int {
	return bitmapSetRange(bm, i, j, true)
}

// bitmapSetRange0 is the symmetric clear operation.
func bitmapSetRange0(bm *[bitmapWords]uint64, i, j int) int {
	return bitmapSetRange(bm, i, j, false)
}

func bitmapSetRange(bm *[bitmapWords]uint64, i, j int, set bool) int {
	delta := 0
	wi, wj := i>>6, j>>6
	bi, bj := i&63, j&63

	apply := func(word int, lo, hi int) {
		if set {
			v, d := wordops.SetRange1(bm[word], lo, hi)
			bm[word], delta = v, delta+d
		} else {
			v, d := wordops.SetRange0(bm[word], lo, hi)
			bm[word], delta = v, delta+d
		}
	}

	if wi == wj {
		apply(wi, bi, bj)
		return delta
	}
	// head partial word
	apply(wi, bi, 64)
	// full interior words
	for w := wi + 1; w < wj; w++ {
		apply(w, 0, 64)
	}
	// tail partial word
	if bj > 0 {
		apply(wj, 0, bj)
	}
	return delta
}
