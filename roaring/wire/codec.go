package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/mypmc/go-roaring/internal/block"
	"github.com/mypmc/go-roaring/roaring"
)

// Encode writes s to w in the Roaring v1 format described in format.go,
// choosing the "with run containers" variant automatically whenever at
// least one block is Runs-encoded.
func Encode(w io.Writer, s *roaring.Bitset) error {
	steps := collectSteps(s)
	metas := make([]blockMeta, len(steps))
	hasRun := false
	for i, st := range steps {
		isRun := st.Block.EncodingKind() == block.KindRuns
		metas[i] = blockMeta{key: st.Key, cardinality: st.Block.Count1(), isRun: isRun}
		hasRun = hasRun || isRun
	}

	bw := bufio.NewWriter(w)

	if err := writeHeader(bw, metas, hasRun); err != nil {
		return err
	}
	if hasRun {
		if err := writeRunBitmap(bw, metas); err != nil {
			return err
		}
	}
	if err := writeDescriptors(bw, metas); err != nil {
		return err
	}
	if !hasRun || len(metas) >= 4 {
		// Offsets are absolute, counted from the first byte of the cookie:
		// header, run bitmap (if any), descriptors, then the offset table.
		start := 8 * len(metas)
		if hasRun {
			start += 4 + (len(metas)+7)/8
		} else {
			start += 8
		}
		if err := writeOffsets(bw, steps, uint32(start)); err != nil {
			return err
		}
	}
	for _, st := range steps {
		if err := writeBody(bw, st.Block); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func collectSteps(s *roaring.Bitset) []roaring.Step {
	var steps []roaring.Step
	it := s.Steps()
	for {
		st, ok := it.Next()
		if !ok {
			break
		}
		steps = append(steps, st)
	}
	return steps
}

func writeHeader(w io.Writer, metas []blockMeta, hasRun bool) error {
	if hasRun {
		header := serialCookie | (uint32(len(metas)-1) << 16)
		return binary.Write(w, binary.LittleEndian, header)
	}
	if err := binary.Write(w, binary.LittleEndian, serialNoRun); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, uint32(len(metas)))
}

func writeRunBitmap(w io.Writer, metas []blockMeta) error {
	buf := make([]byte, (len(metas)+7)/8)
	for i, m := range metas {
		if m.isRun {
			buf[i/8] |= 1 << uint(i%8)
		}
	}
	_, err := w.Write(buf)
	return err
}

func writeDescriptors(w io.Writer, metas []blockMeta) error {
	for _, m := range metas {
		if m.cardinality == 0 || m.cardinality > bitmapWordCount*64 {
			return fmt.Errorf("roaring/wire: block key %d has invalid cardinality %d", m.key, m.cardinality)
		}
		if err := binary.Write(w, binary.LittleEndian, m.key); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(m.cardinality-1)); err != nil {
			return err
		}
	}
	return nil
}

func writeOffsets(w io.Writer, steps []roaring.Step, offset uint32) error {
	for _, st := range steps {
		if err := binary.Write(w, binary.LittleEndian, offset); err != nil {
			return err
		}
		offset += uint32(bodySize(st.Block))
	}
	return nil
}

// bodySize returns the exact on-wire size of a block's body.
func bodySize(b *block.Block) int {
	switch b.EncodingKind() {
	case block.KindArray:
		return 2 * len(b.ArrayValues())
	case block.KindRuns:
		return 2 + 4*len(b.Ranges())
	default: // KindBitmap
		return 8 * bitmapWordCount
	}
}

func writeBody(w io.Writer, b *block.Block) error {
	switch b.EncodingKind() {
	case block.KindArray:
		for _, v := range b.ArrayValues() {
			if err := binary.Write(w, binary.LittleEndian, v); err != nil {
				return err
			}
		}
	case block.KindBitmap:
		words := b.BitmapWords()
		for _, word := range words {
			if err := binary.Write(w, binary.LittleEndian, word); err != nil {
				return err
			}
		}
	case block.KindRuns:
		ranges := b.Ranges()
		if err := binary.Write(w, binary.LittleEndian, uint16(len(ranges))); err != nil {
			return err
		}
		for _, r := range ranges {
			if err := binary.Write(w, binary.LittleEndian, r.Start); err != nil {
				return err
			}
			length := uint32(r.End) - uint32(r.Start) + 1
			if err := binary.Write(w, binary.LittleEndian, uint16(length-1)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Decode reads a Roaring v1 bitset from r, sequentially consuming header,
// descriptor table, optional offset table, and block bodies in order. The
// offset table is not needed for sequential decoding (body sizes follow
// from the descriptor cardinalities and run flags already read) and is
// only skipped over here, without checking its entries. Input that ends
// early is reported as ErrInvalidFormat, wrapping the underlying EOF error.
func Decode(r io.Reader) (s *roaring.Bitset, err error) {
	defer func() {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("%w: %w", err, ErrInvalidFormat)
		}
	}()
	br := bufio.NewReader(r)

	var header uint32
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("reading cookie: %w", err)
	}

	var blockCount int
	var runFlags []bool
	switch header & cookieMask {
	case serialCookie:
		blockCount = int(header>>16) + 1
		flags, err := readRunBitmap(br, blockCount)
		if err != nil {
			return nil, err
		}
		runFlags = flags
	case serialNoRun:
		if header != serialNoRun {
			return nil, invalidf("no-run cookie must not pack a count (got header 0x%08x)", header)
		}
		var count uint32
		if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("reading block count: %w", err)
		}
		blockCount = int(count)
		runFlags = make([]bool, blockCount)
	default:
		return nil, invalidf("unrecognized cookie 0x%08x", header)
	}

	metas, err := readDescriptors(br, blockCount, runFlags)
	if err != nil {
		return nil, err
	}

	hasRun := header&cookieMask == serialCookie
	if !hasRun || blockCount >= 4 {
		if err := skipOffsets(br, blockCount); err != nil {
			return nil, err
		}
	}

	steps := make([]roaring.Step, blockCount)
	for i, m := range metas {
		blk, err := readBody(br, m)
		if err != nil {
			return nil, fmt.Errorf("reading body for block key %d: %w", m.key, err)
		}
		steps[i] = roaring.Step{Key: m.key, Block: blk}
	}
	return roaring.FromSteps(steps), nil
}

func readRunBitmap(r io.Reader, blockCount int) ([]bool, error) {
	buf := make([]byte, (blockCount+7)/8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading run-container bitmap: %w", err)
	}
	flags := make([]bool, blockCount)
	for i := range flags {
		flags[i] = buf[i/8]&(1<<uint(i%8)) != 0
	}
	return flags, nil
}

func readDescriptors(r io.Reader, blockCount int, runFlags []bool) ([]blockMeta, error) {
	metas := make([]blockMeta, blockCount)
	var prevKey int32 = -1
	for i := 0; i < blockCount; i++ {
		var key, cardMinusOne uint16
		if err := binary.Read(r, binary.LittleEndian, &key); err != nil {
			return nil, fmt.Errorf("reading descriptor %d key: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &cardMinusOne); err != nil {
			return nil, fmt.Errorf("reading descriptor %d cardinality: %w", i, err)
		}
		if int32(key) <= prevKey {
			return nil, invalidf("descriptor keys out of order at index %d", i)
		}
		prevKey = int32(key)
		metas[i] = blockMeta{key: key, cardinality: int(cardMinusOne) + 1, isRun: runFlags[i]}
	}
	return metas, nil
}

func skipOffsets(r io.Reader, blockCount int) error {
	buf := make([]byte, 4*blockCount)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("reading offset table: %w", err)
	}
	return nil
}

func readBody(r io.Reader, m blockMeta) (*block.Block, error) {
	switch {
	case m.isRun:
		var runCount uint16
		if err := binary.Read(r, binary.LittleEndian, &runCount); err != nil {
			return nil, err
		}
		ranges := make([]block.Range, runCount)
		for i := range ranges {
			var start, lengthMinusOne uint16
			if err := binary.Read(r, binary.LittleEndian, &start); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &lengthMinusOne); err != nil {
				return nil, err
			}
			end := uint32(start) + uint32(lengthMinusOne)
			if end > 0xffff {
				return nil, invalidf("run [%d, +%d] overflows the block universe", start, lengthMinusOne)
			}
			ranges[i] = block.Range{Start: start, End: uint16(end)}
		}
		return block.NewRunsExact(ranges), nil
	case m.cardinality <= arrayMaxCard:
		values := make([]uint16, m.cardinality)
		if err := binary.Read(r, binary.LittleEndian, &values); err != nil {
			return nil, err
		}
		return block.NewArrayExact(values), nil
	default:
		var words [bitmapWordCount]uint64
		if err := binary.Read(r, binary.LittleEndian, &words); err != nil {
			return nil, err
		}
		return block.NewBitmapExact(words), nil
	}
}
