package wire

import (
	"encoding/binary"

	"github.com/mypmc/go-roaring/internal/block"
	"github.com/mypmc/go-roaring/roaring"
)

// View is a zero-copy reader over a borrowed, already-framed Roaring
// buffer: it parses the header, run-container bitmap, and descriptor table
// up front (all fixed-size metadata), but defers decoding any block body
// until that block is actually requested by Next, so a consumer that folds
// a View straight into a mask pipeline never materializes more than one
// block at a time.
//
// View implements roaring.StepIter, so it composes directly with And, Or,
// Xor, AndNot, and Fold without first collecting into a Bitset.
type View struct {
	buf    []byte
	metas  []blockMeta
	cursor int   // byte offset of the next unread body
	next   int   // index into metas of the next unread block
	err    error // set if a body failed to decode, see Err
}

// NewView parses buf's metadata and returns a View ready to stream its
// blocks in key order. It returns ErrInvalidFormat if the header or
// descriptor table is malformed; block bodies are validated lazily as each
// is read by Next.
func NewView(buf []byte) (*View, error) {
	if len(buf) < 4 {
		return nil, invalidf("buffer too short for a cookie (%d bytes)", len(buf))
	}
	header := binary.LittleEndian.Uint32(buf)
	pos := 4

	var blockCount int
	var runFlags []bool
	hasRun := header&cookieMask == serialCookie
	switch header & cookieMask {
	case serialCookie:
		blockCount = int(header>>16) + 1
		n := (blockCount + 7) / 8
		if pos+n > len(buf) {
			return nil, invalidf("buffer too short for run-container bitmap")
		}
		runFlags = make([]bool, blockCount)
		for i := range runFlags {
			runFlags[i] = buf[pos+i/8]&(1<<uint(i%8)) != 0
		}
		pos += n
	case serialNoRun:
		if header != serialNoRun {
			return nil, invalidf("no-run cookie must not pack a count (got header 0x%08x)", header)
		}
		if pos+4 > len(buf) {
			return nil, invalidf("buffer too short for block count")
		}
		blockCount = int(binary.LittleEndian.Uint32(buf[pos:]))
		pos += 4
		runFlags = make([]bool, blockCount)
	default:
		return nil, invalidf("unrecognized cookie 0x%08x", header)
	}

	metas := make([]blockMeta, blockCount)
	var prevKey int32 = -1
	for i := 0; i < blockCount; i++ {
		if pos+4 > len(buf) {
			return nil, invalidf("buffer too short for descriptor %d", i)
		}
		key := binary.LittleEndian.Uint16(buf[pos:])
		cardMinusOne := binary.LittleEndian.Uint16(buf[pos+2:])
		pos += 4
		if int32(key) <= prevKey {
			return nil, invalidf("descriptor keys out of order at index %d", i)
		}
		prevKey = int32(key)
		metas[i] = blockMeta{key: key, cardinality: int(cardMinusOne) + 1, isRun: runFlags[i]}
	}

	if !hasRun || blockCount >= 4 {
		n := 4 * blockCount
		if pos+n > len(buf) {
			return nil, invalidf("buffer too short for offset table")
		}
		pos += n
	}

	return &View{buf: buf, metas: metas, cursor: pos}, nil
}

// Next decodes and returns the next (key, block) pair, advancing past its
// body in the underlying buffer. It returns (Step{}, false) once every
// block has been consumed.
func (v *View) Next() (roaring.Step, bool) {
	if v.next >= len(v.metas) {
		return roaring.Step{}, false
	}
	m := v.metas[v.next]
	v.next++

	blk, n, err := decodeBodyAt(v.buf[v.cursor:], m)
	if err != nil {
		// A malformed body this deep in the stream can't be reported through
		// the (Step, bool) signature; surface it the same way an exhausted
		// iterator would and let Err reveal the cause to a caller that cares.
		v.err = err
		return roaring.Step{}, false
	}
	v.cursor += n
	return roaring.Step{Key: m.key, Block: blk}, true
}

// Err returns the error that stopped iteration early, if Next returned
// false before every block in the descriptor table was consumed.
func (v *View) Err() error {
	return v.err
}

// decodeBodyAt decodes one block body from the front of buf and reports
// how many bytes it consumed.
func decodeBodyAt(buf []byte, m blockMeta) (*block.Block, int, error) {
	switch {
	case m.isRun:
		if len(buf) < 2 {
			return nil, 0, invalidf("buffer too short for run count (block key %d)", m.key)
		}
		runCount := int(binary.LittleEndian.Uint16(buf))
		pos := 2
		ranges := make([]block.Range, runCount)
		for i := 0; i < runCount; i++ {
			if pos+4 > len(buf) {
				return nil, 0, invalidf("buffer too short for run %d (block key %d)", i, m.key)
			}
			start := binary.LittleEndian.Uint16(buf[pos:])
			lengthMinusOne := binary.LittleEndian.Uint16(buf[pos+2:])
			pos += 4
			end := uint32(start) + uint32(lengthMinusOne)
			if end > 0xffff {
				return nil, 0, invalidf("run [%d, +%d] overflows the block universe (block key %d)", start, lengthMinusOne, m.key)
			}
			ranges[i] = block.Range{Start: start, End: uint16(end)}
		}
		return block.NewRunsExact(ranges), pos, nil
	case m.cardinality <= arrayMaxCard:
		n := 2 * m.cardinality
		if len(buf) < n {
			return nil, 0, invalidf("buffer too short for array body (block key %d)", m.key)
		}
		values := make([]uint16, m.cardinality)
		for i := range values {
			values[i] = binary.LittleEndian.Uint16(buf[2*i:])
		}
		return block.NewArrayExact(values), n, nil
	default:
		n := 8 * bitmapWordCount
		if len(buf) < n {
			return nil, 0, invalidf("buffer too short for bitmap body (block key %d)", m.key)
		}
		var words [bitmapWordCount]uint64
		for i := range words {
			words[i] = binary.LittleEndian.Uint64(buf[8*i:])
		}
		return block.NewBitmapExact(words), n, nil
	}
}
