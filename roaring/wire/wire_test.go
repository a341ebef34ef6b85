package wire

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypmc/go-roaring/roaring"
)

func roundTrip(t *testing.T, s *roaring.Bitset) *roaring.Bitset {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, s))
	got, err := Decode(&buf)
	require.NoError(t, err)
	return got
}

func TestRoundTripArrayBlock(t *testing.T) {
	s := roaring.FromValues([]uint32{1, 2, 3, 100, 65535, 1 << 20})
	got := roundTrip(t, s)
	assert.True(t, got.Equal(s), "round trip mismatch: got %v, want %v", got, s)
}

func TestRoundTripBitmapBlock(t *testing.T) {
	s := roaring.New()
	for i := uint32(0); i < 20000; i += 2 {
		s.Insert(i)
	}
	got := roundTrip(t, s)
	assert.True(t, got.Equal(s), "round trip mismatch for dense bitmap block")
}

func TestRoundTripRunsBlock(t *testing.T) {
	s := roaring.New()
	for i := uint32(0); i < 10000; i++ {
		s.Insert(i)
	}
	s.Optimize() // should pick Runs for one long contiguous range
	got := roundTrip(t, s)
	assert.True(t, got.Equal(s), "round trip mismatch for run-encoded block")
}

func TestRoundTripManyBlocksMixedEncodings(t *testing.T) {
	s := roaring.New()
	for hi := uint32(0); hi < 6; hi++ {
		base := hi << 16
		switch hi % 3 {
		case 0: // sparse -> Array
			for i := uint32(0); i < 10; i++ {
				s.Insert(base + i*37)
			}
		case 1: // dense -> Bitmap
			for i := uint32(0); i < 40000; i += 3 {
				s.Insert(base + i)
			}
		case 2: // contiguous -> Runs after Optimize
			for i := uint32(0); i < 5000; i++ {
				s.Insert(base + i)
			}
		}
	}
	s.Optimize()
	got := roundTrip(t, s)
	if !got.Equal(s) {
		t.Fatalf("round trip mismatch across mixed block encodings")
	}
}

func TestRoundTripEmpty(t *testing.T) {
	s := roaring.New()
	got := roundTrip(t, s)
	if got.Count1() != 0 {
		t.Fatalf("expected empty bitset, got %d members", got.Count1())
	}
}

func TestDecodeRejectsUnknownCookie(t *testing.T) {
	buf := []byte{0xff, 0xff, 0xff, 0xff}
	if _, err := Decode(bytes.NewReader(buf)); err == nil {
		t.Fatal("expected an error for an unrecognized cookie")
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	s := roaring.FromValues([]uint32{1, 2, 3})
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-2]
	if _, err := Decode(bytes.NewReader(truncated)); err == nil {
		t.Fatal("expected an error for truncated input")
	}
}

// TestBitmapWithRunsVector checks the encoder/decoder against the reference
// test vector used by other Roaring implementations, when present locally.
func TestBitmapWithRunsVector(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "bitmapwithruns.bin"))
	if err != nil {
		t.Skip("Test vector not found; bitmapwithruns.bin is not vendored, see testdata/README.md")
		return
	}
	got, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var reencoded bytes.Buffer
	if err := Encode(&reencoded, got); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got2, err := Decode(&reencoded)
	if err != nil {
		t.Fatalf("Decode (second pass): %v", err)
	}
	if !got.Equal(got2) {
		t.Fatal("value mismatch after re-encoding the reference vector")
	}
}

func TestViewMatchesDecode(t *testing.T) {
	s := roaring.New()
	for i := uint32(0); i < 5000; i++ {
		s.Insert(i * 3)
	}
	s.Optimize()

	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	view, err := NewView(buf.Bytes())
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	viewSet := roaring.Collect(view)
	if err := view.Err(); err != nil {
		t.Fatalf("View iteration error: %v", err)
	}
	if !viewSet.Equal(s) {
		t.Fatal("View-collected bitset does not match the original")
	}
}

// FuzzDecode ensures arbitrary input can never panic the decoder.
func FuzzDecode(f *testing.F) {
	entries, err := os.ReadDir("testdata")
	if err == nil {
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".bin" {
				continue
			}
			data, err := os.ReadFile(filepath.Join("testdata", e.Name()))
			if err == nil {
				f.Add(data)
			}
		}
	}

	seed := roaring.FromValues([]uint32{0, 1, 2, 1 << 16, 1<<32 - 1})
	var buf bytes.Buffer
	if err := Encode(&buf, seed); err == nil {
		f.Add(buf.Bytes())
	}
	f.Add([]byte{0x3a, 0x30, 0x00, 0x00})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		Decode(bytes.NewReader(data)) //nolint:errcheck
		NewView(data)                 //nolint:errcheck
	})
}
