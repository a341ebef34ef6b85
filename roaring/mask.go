package roaring

import "github.com/mypmc/go-roaring/internal/block"

// Step is one (key, block) pair yielded by the mask pipeline, in ascending
// key order.
type Step struct {
	Key   uint16
	Block *block.Block
}

// StepIter is a lazy, pull-based iterator over a key-ordered stream of
// Steps. Next reports (Step{}, false) once exhausted. Implementations are
// single-use and single-threaded: pulling the next step is a pure function
// of the iterator's own captured state, and nothing cancels a StepIter
// except dropping it.
type StepIter interface {
	Next() (Step, bool)
}

// sliceIter walks the populated blocks of a Bitset in key order. It
// borrows the bitset: the bitset must not be mutated while the iterator is
// alive.
type sliceIter struct {
	keys   []uint16
	blocks []*block.Block
	i      int
}

// Steps returns the ordered (key, block) stream of every populated block
// in s.
func (s *Bitset) Steps() StepIter {
	return &sliceIter{keys: s.keys, blocks: s.blocks}
}

func (it *sliceIter) Next() (Step, bool) {
	if it.i >= len(it.keys) {
		return Step{}, false
	}
	st := Step{Key: it.keys[it.i], Block: it.blocks[it.i]}
	it.i++
	return st, true
}

// peekable wraps a StepIter with one step of lookahead, the building block
// for the three-way merges below.
type peekable struct {
	it   StepIter
	next Step
	ok   bool
}

func newPeekable(it StepIter) *peekable {
	p := &peekable{it: it}
	p.advance()
	return p
}

func (p *peekable) advance() {
	p.next, p.ok = p.it.Next()
}

// binaryOp is one of And/Or/Xor/AndNot, realized as a stateful iterator
// over two peekable inputs merged by key.
type binaryOp struct {
	l, r *peekable
	mode mergeMode
}

type mergeMode uint8

const (
	modeAnd mergeMode = iota
	modeOr
	modeXor
	modeAndNot
)

func newBinaryOp(l, r StepIter, mode mergeMode) *binaryOp {
	return &binaryOp{l: newPeekable(l), r: newPeekable(r), mode: mode}
}

// Next implements the three-way peek merge: compare the two lookaheads,
// advance the smaller key (or both on a tie), and apply the operator's
// action for matching keys.
func (b *binaryOp) Next() (Step, bool) {
	for {
		switch {
		case !b.l.ok && !b.r.ok:
			return Step{}, false
		case !b.l.ok:
			return b.takeRightOnly()
		case !b.r.ok:
			return b.takeLeftOnly()
		case b.l.next.Key < b.r.next.Key:
			s, emit := b.onLeftOnly()
			b.l.advance()
			if emit {
				return s, true
			}
		case b.l.next.Key > b.r.next.Key:
			s, emit := b.onRightOnly()
			b.r.advance()
			if emit {
				return s, true
			}
		default:
			s, emit := b.onMatch()
			b.l.advance()
			b.r.advance()
			if emit {
				return s, true
			}
		}
	}
}

func (b *binaryOp) takeLeftOnly() (Step, bool) {
	for b.l.ok {
		s, emit := b.onLeftOnly()
		b.l.advance()
		if emit {
			return s, true
		}
	}
	return Step{}, false
}

func (b *binaryOp) takeRightOnly() (Step, bool) {
	for b.r.ok {
		s, emit := b.onRightOnly()
		b.r.advance()
		if emit {
			return s, true
		}
	}
	return Step{}, false
}

// onLeftOnly decides what happens to a step that has no matching key on
// the other side.
func (b *binaryOp) onLeftOnly() (Step, bool) {
	switch b.mode {
	case modeAnd:
		return Step{}, false
	case modeOr, modeXor, modeAndNot:
		return b.l.next, true
	default:
		return Step{}, false
	}
}

func (b *binaryOp) onRightOnly() (Step, bool) {
	switch b.mode {
	case modeAnd, modeAndNot:
		return Step{}, false
	case modeOr, modeXor:
		return b.r.next, true
	default:
		return Step{}, false
	}
}

// onMatch applies the operator to two steps sharing a key.
func (b *binaryOp) onMatch() (Step, bool) {
	key := b.l.next.Key
	lb, rb := b.l.next.Block, b.r.next.Block
	switch b.mode {
	case modeAnd:
		res := block.Intersection(lb, rb)
		if res.Count1() == 0 {
			return Step{}, false
		}
		return Step{Key: key, Block: res}, true
	case modeOr:
		return Step{Key: key, Block: block.Union(lb, rb)}, true
	case modeXor:
		res := block.SymmetricDifference(lb, rb)
		if res.Count1() == 0 {
			return Step{}, false
		}
		return Step{Key: key, Block: res}, true
	case modeAndNot:
		res := block.Difference(lb, rb)
		if res.Count1() == 0 {
			return Step{}, false
		}
		return Step{Key: key, Block: res}, true
	default:
		return Step{}, false
	}
}

// And returns the lazy intersection of two step streams: emit only on
// matching keys.
func And(l, r StepIter) StepIter { return newBinaryOp(l, r, modeAnd) }

// Or returns the lazy union of two step streams.
func Or(l, r StepIter) StepIter { return newBinaryOp(l, r, modeOr) }

// Xor returns the lazy symmetric difference of two step streams.
func Xor(l, r StepIter) StepIter { return newBinaryOp(l, r, modeXor) }

// AndNot returns the lazy difference (l minus r) of two step streams.
func AndNot(l, r StepIter) StepIter { return newBinaryOp(l, r, modeAndNot) }

// Fold reduces a sequence of step streams into one via repeated binary
// application of op, left to right, without materializing an intermediate
// bitset between stages.
func Fold(op func(l, r StepIter) StepIter, iters []StepIter) StepIter {
	if len(iters) == 0 {
		return &sliceIter{}
	}
	acc := iters[0]
	for _, it := range iters[1:] {
		acc = op(acc, it)
	}
	return acc
}

// FromSteps builds a Bitset directly from an already key-ordered slice of
// Steps, e.g. produced by a wire decoder. The slice must be strictly
// ascending by Key and every block must be non-empty.
func FromSteps(steps []Step) *Bitset {
	s := New()
	s.keys = make([]uint16, len(steps))
	s.blocks = make([]*block.Block, len(steps))
	for i, st := range steps {
		s.keys[i] = st.Key
		s.blocks[i] = st.Block
	}
	return s
}

// Collect drains a StepIter into a new Bitset. The result's block
// encodings are whatever the pipeline produced; call Optimize if the
// caller wants the minimum-size representation per block.
func Collect(it StepIter) *Bitset {
	s := New()
	for {
		step, ok := it.Next()
		if !ok {
			break
		}
		s.keys = append(s.keys, step.Key)
		s.blocks = append(s.blocks, step.Block)
	}
	return s
}

// And returns a new Bitset holding s ∩ other.
func (s *Bitset) And(other *Bitset) *Bitset { return Collect(And(s.Steps(), other.Steps())) }

// Or returns a new Bitset holding s ∪ other.
func (s *Bitset) Or(other *Bitset) *Bitset { return Collect(Or(s.Steps(), other.Steps())) }

// Xor returns a new Bitset holding s △ other.
func (s *Bitset) Xor(other *Bitset) *Bitset { return Collect(Xor(s.Steps(), other.Steps())) }

// AndNot returns a new Bitset holding s ∖ other.
func (s *Bitset) AndNot(other *Bitset) *Bitset { return Collect(AndNot(s.Steps(), other.Steps())) }
