package block

// runSearch locates x among the sorted, disjoint ranges. If x falls inside
// ranges[i], it returns (i, true). Otherwise it returns the index i at
// which a new singleton range for x would be inserted to keep ranges
// sorted, and false.
func runSearch(ranges []runPair, x uint16) (int, bool) {
	lo, hi := 0, len(ranges)
	for lo < hi {
		mid := (lo + hi) / 2
		r := ranges[mid]
		switch {
		case x < r.Start:
			hi = mid
		case x > r.End:
			lo = mid + 1
		default:
			return mid, true
		}
	}
	return lo, false
}

// runInsert adds x to *ranges, merging with abutting neighbors per a
// four-case analysis: x can join both neighbors, join one neighbor, or
// stand alone as a new singleton range.
func runInsert(ranges *[]runPair, weight *uint32, x uint16) bool {
	rs := *ranges
	i, found := runSearch(rs, x)
	if found {
		return false
	}

	leftAbuts := i > 0 && rs[i-1].End+1 == x
	rightAbuts := i < len(rs) && x+1 == rs[i].Start

	switch {
	case leftAbuts && rightAbuts:
		// Case 1: neighbors join around x.
		rs[i-1].End = rs[i].End
		rs = append(rs[:i], rs[i+1:]...)
	case leftAbuts:
		// Case 2: left neighbor extends rightward.
		rs[i-1].End = x
	case rightAbuts:
		// Case 3: right neighbor extends leftward.
		rs[i].Start = x
	default:
		// Case 4: standalone singleton.
		rs = append(rs, runPair{})
		copy(rs[i+1:], rs[i:])
		rs[i] = runPair{Start: x, End: x}
	}
	*ranges = rs
	*weight++
	return true
}

// runRemove deletes x from *ranges per the mirrored four-case analysis.
func runRemove(ranges *[]runPair, weight *uint32, x uint16) bool {
	rs := *ranges
	i, found := runSearch(rs, x)
	if !found {
		return false
	}
	r := rs[i]
	switch {
	case r.Start == r.End:
		// Singleton: remove the whole range.
		rs = append(rs[:i], rs[i+1:]...)
	case x == r.Start:
		rs[i].Start = x + 1
	case x == r.End:
		rs[i].End = x - 1
	default:
		// Interior: split into two ranges.
		left := runPair{Start: r.Start, End: x - 1}
		right := runPair{Start: x + 1, End: r.End}
		rs = append(rs, runPair{})
		copy(rs[i+2:], rs[i+1:])
		rs[i] = left
		rs[i+1] = right
	}
	*ranges = rs
	*weight--
	return true
}

// runRank1 returns the count of members strictly below x.
func runRank1(ranges []runPair, x int) int {
	var i int
	var found bool
	if x > 0xffff {
		i, found = len(ranges), false
	} else {
		i, found = runSearch(ranges, uint16(x))
	}
	total := 0
	for _, r := range ranges[:i] {
		total += int(r.length())
	}
	if found {
		total += x - int(ranges[i].Start)
	}
	return total
}

// runSelect1 returns the n-th (0-indexed) member, if present.
func runSelect1(ranges []runPair, n int) (uint16, bool) {
	remaining := n
	for _, r := range ranges {
		l := int(r.length())
		if remaining < l {
			return r.Start + uint16(remaining), true
		}
		remaining -= l
	}
	return 0, false
}
