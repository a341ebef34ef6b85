// Package wire implements the Roaring Bitmap v1 binary serialization
// format ("with run containers"), compatible with the reference
// implementations: a little-endian cookie header, an optional run-container
// bitmap, a descriptor table, an optional offset table, and block bodies.
//
// Encode/Decode operate on a roaring.Bitset as a whole. View additionally
// offers a zero-copy reader over a borrowed byte slice that materializes
// one block at a time for the mask pipeline, without decoding the whole
// buffer up front.
package wire

import (
	"errors"
	"fmt"
)

// Cookie values. serialCookie marks the "with run containers" variant
// (block count packed into the header's high 16 bits); serialNoRun marks
// the plain variant (block count is a separate following field).
const (
	serialCookie uint32 = 0x0000303B
	serialNoRun  uint32 = 0x0000303A

	cookieMask uint32 = 0x0000ffff

	bitmapWordCount = 1024
	arrayMaxCard    = 4096
)

// ErrInvalidFormat is the single sentinel wrapped by every malformed-input
// error returned from Decode/View. An unknown cookie, input that ends
// before the header, descriptor table, offset table or a block body is
// complete, descriptor keys out of order, or a run exceeding the block
// universe are all distinct causes but one reported kind. The entries of
// the offset table are skipped without being checked against the buffer.
var ErrInvalidFormat = errors.New("roaring/wire: invalid format")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidFormat)
}

// blockMeta is one descriptor-table entry plus its derived fields.
type blockMeta struct {
	key         uint16
	cardinality int // actual cardinality, i.e. cardinality_minus_one + 1
	isRun       bool
}
