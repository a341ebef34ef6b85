package block

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestInsertContainsRoundTrip(t *testing.T) {
	b := NewEmpty()
	want := []uint16{5, 1, 3, 9000, 0, 65535, 42}
	for _, v := range want {
		if !b.Insert(v) {
			t.Errorf("Insert(%d) returned false on first insert", v)
		}
		if b.Insert(v) {
			t.Errorf("Insert(%d) returned true on duplicate insert", v)
		}
	}
	for _, v := range want {
		if !b.Contains(v) {
			t.Errorf("Contains(%d) = false, want true", v)
		}
	}
	if !b.Contains(7) == false {
		t.Error("unexpected member 7")
	}
}

func TestArrayEscalatesToBitmapPastThreshold(t *testing.T) {
	b := NewEmpty()
	for i := 0; i < arrayMax+10; i++ {
		b.Insert(uint16(i))
	}
	if b.EncodingKind() != KindBitmap {
		t.Fatalf("expected escalation to Bitmap, got kind %v", b.EncodingKind())
	}
	if b.Count1() != arrayMax+10 {
		t.Fatalf("Count1() = %d, want %d", b.Count1(), arrayMax+10)
	}
}

func TestRemove(t *testing.T) {
	b := NewFromSorted([]uint16{1, 2, 3, 4, 5})
	if !b.Remove(3) {
		t.Fatal("Remove(3) = false, want true")
	}
	if b.Remove(3) {
		t.Fatal("Remove(3) on absent value returned true")
	}
	if b.Contains(3) {
		t.Fatal("3 still a member after Remove")
	}
	if b.Count1() != 4 {
		t.Fatalf("Count1() = %d, want 4", b.Count1())
	}
}

func TestRankSelectInverse(t *testing.T) {
	values := []uint16{0, 1, 5, 6, 7, 1000, 1001, 65535}
	for _, kind := range []Kind{KindArray, KindBitmap, KindRuns} {
		b := blockWithKind(t, values, kind)
		for n := 0; n < len(values); n++ {
			v, ok := b.Select1(n)
			if !ok {
				t.Fatalf("[%v] Select1(%d) not ok", kind, n)
			}
			if v != values[n] {
				t.Fatalf("[%v] Select1(%d) = %d, want %d", kind, n, v, values[n])
			}
			if r := b.Rank1(int(v)); r != n {
				t.Fatalf("[%v] Rank1(%d) = %d, want %d", kind, v, r, n)
			}
		}
		if _, ok := b.Select1(len(values)); ok {
			t.Fatalf("[%v] Select1 past cardinality should fail", kind)
		}
	}
}

func TestSelect0(t *testing.T) {
	b := NewFromSorted([]uint16{0, 1, 2, 10, 11})
	// Absent values in ascending order: 3,4,5,6,7,8,9,12,13,...
	v, ok := b.Select0(0)
	if !ok || v != 3 {
		t.Fatalf("Select0(0) = (%d, %v), want (3, true)", v, ok)
	}
	v, ok = b.Select0(6)
	if !ok || v != 9 {
		t.Fatalf("Select0(6) = (%d, %v), want (9, true)", v, ok)
	}
	v, ok = b.Select0(7)
	if !ok || v != 12 {
		t.Fatalf("Select0(7) = (%d, %v), want (12, true)", v, ok)
	}
}

func TestSetRange(t *testing.T) {
	b := NewEmpty()
	delta := b.SetRange1(10, 20)
	if delta != 10 {
		t.Fatalf("SetRange1 delta = %d, want 10", delta)
	}
	for i := 10; i < 20; i++ {
		if !b.Contains(uint16(i)) {
			t.Fatalf("expected %d set after SetRange1", i)
		}
	}
	if b.Contains(9) || b.Contains(20) {
		t.Fatal("SetRange1 set bits outside [10, 20)")
	}
	delta = b.SetRange0(15, 20)
	if delta != 5 {
		t.Fatalf("SetRange0 delta = %d, want 5", delta)
	}
	if b.Count1() != 5 {
		t.Fatalf("Count1() = %d, want 5", b.Count1())
	}
}

func TestCloneIndependence(t *testing.T) {
	b := NewFromSorted([]uint16{1, 2, 3})
	c := b.Clone()
	c.Insert(4)
	if b.Contains(4) {
		t.Fatal("mutating the clone affected the original")
	}
}

func TestEqualAcrossEncodings(t *testing.T) {
	values := []uint16{1, 2, 3, 100, 101, 102}
	arr := blockWithKind(t, values, KindArray)
	bm := blockWithKind(t, values, KindBitmap)
	runs := blockWithKind(t, values, KindRuns)
	if !arr.Equal(bm) || !bm.Equal(runs) || !arr.Equal(runs) {
		t.Fatal("blocks representing the same set compared unequal across encodings")
	}
}

func TestOptimizePicksSmallestEncoding(t *testing.T) {
	// One long contiguous run should optimize to Runs.
	b := NewEmpty()
	for i := 0; i < 5000; i++ {
		b.Insert(uint16(i))
	}
	b.Optimize()
	if b.EncodingKind() != KindRuns {
		t.Fatalf("expected Runs after Optimize, got %v", b.EncodingKind())
	}

	// A handful of scattered values should optimize to Array.
	b2 := NewEmpty()
	for i := 0; i < 5000; i += 137 {
		b2.Insert(uint16(i))
	}
	b2.Optimize()
	if b2.EncodingKind() != KindArray {
		t.Fatalf("expected Array after Optimize for sparse data, got %v", b2.EncodingKind())
	}

	// An empty block resets to Array.
	b3 := NewFromSorted([]uint16{1})
	b3.Remove(1)
	b3.Optimize()
	if b3.EncodingKind() != KindArray || b3.Count1() != 0 {
		t.Fatal("empty block did not reset to empty Array")
	}
}

// blockWithKind builds a block containing values and forces it to kind via
// the package's internal conversion path, for encoding-parameterized tests.
func blockWithKind(t *testing.T, values []uint16, kind Kind) *Block {
	t.Helper()
	b := NewFromSorted(append([]uint16(nil), values...))
	b.convertTo(kind)
	return b
}

func TestRandomizedAgainstReferenceSet(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	ref := map[uint16]bool{}
	b := NewEmpty()
	for i := 0; i < 20000; i++ {
		v := uint16(rng.IntN(1 << 16))
		if rng.IntN(4) == 0 {
			delete(ref, v)
			b.Remove(v)
		} else {
			ref[v] = true
			b.Insert(v)
		}
	}
	if b.Count1() != len(ref) {
		t.Fatalf("Count1() = %d, want %d", b.Count1(), len(ref))
	}
	sorted := make([]uint16, 0, len(ref))
	for v := range ref {
		sorted = append(sorted, v)
	}
	slices.Sort(sorted)
	for i, v := range sorted {
		if !b.Contains(v) {
			t.Fatalf("missing expected member %d", v)
		}
		if r := b.Rank1(int(v)); r != i {
			t.Fatalf("Rank1(%d) = %d, want %d", v, r, i)
		}
	}
}
