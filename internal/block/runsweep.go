package block

// The run/run set-algebra sweep: each run contributes two events in a
// widened [0, 65536] integer space, an opening event at Start and a
// closing event at End+1, and a single merged sweep over both sides'
// events classifies every sub-interval as And/Lhs/Rhs/Not purely from
// which of lhsOpen/rhsOpen is true. Filtering the kept region kinds and
// merging abutting boundaries yields the result's runs directly, without
// ever materializing a bitmap.

type runEvent struct {
	pos  int
	lhs  bool // true: this event belongs to the left operand
	open bool // true: opening (Bra); false: closing (Ket)
}

// buildRunEvents returns the sorted event stream for one side's ranges.
// Ranges are already sorted and disjoint, so the Bra/Ket pairs they emit
// are already in position order.
func buildRunEvents(ranges []runPair, lhs bool) []runEvent {
	events := make([]runEvent, 0, 2*len(ranges))
	for _, r := range ranges {
		events = append(events, runEvent{pos: int(r.Start), lhs: lhs, open: true})
		events = append(events, runEvent{pos: int(r.End) + 1, lhs: lhs, open: false})
	}
	return events
}

// mergeRunEvents merges two position-sorted event streams into one.
func mergeRunEvents(a, b []runEvent) []runEvent {
	merged := make([]runEvent, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].pos <= b[j].pos {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return merged
}

// runSweep walks the merged event stream of two operands, keeping the
// sub-intervals for which keep(lhsOpen, rhsOpen) holds, and repairs
// abutting kept intervals into maximal runs as it goes.
func runSweep(lhs, rhs []runPair, keep func(lhsOpen, rhsOpen bool) bool) ([]runPair, uint32) {
	events := mergeRunEvents(buildRunEvents(lhs, true), buildRunEvents(rhs, false))

	var result []runPair
	var weight uint32
	lhsOpen, rhsOpen := false, false
	prevPos := -1

	i := 0
	for i < len(events) {
		pos := events[i].pos
		if prevPos >= 0 && pos > prevPos && keep(lhsOpen, rhsOpen) {
			result, weight = appendRun(result, weight, prevPos, pos)
		}
		for i < len(events) && events[i].pos == pos {
			if events[i].lhs {
				lhsOpen = events[i].open
			} else {
				rhsOpen = events[i].open
			}
			i++
		}
		prevPos = pos
	}
	return result, weight
}

// appendRun appends the half-open widened interval [s, e) as an inclusive
// run, merging it into the previous run if they abut.
func appendRun(result []runPair, weight uint32, s, e int) ([]runPair, uint32) {
	if n := len(result); n > 0 && int(result[n-1].End)+1 == s {
		result[n-1].End = uint16(e - 1)
	} else {
		result = append(result, runPair{Start: uint16(s), End: uint16(e - 1)})
	}
	return result, weight + uint32(e-s)
}

func keepAnd(l, r bool) bool    { return l && r }
func keepOr(l, r bool) bool     { return l || r }
func keepXor(l, r bool) bool    { return l != r }
func keepAndNot(l, r bool) bool { return l && !r }
