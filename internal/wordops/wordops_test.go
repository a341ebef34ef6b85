package wordops

import "testing"

func TestPopCount(t *testing.T) {
	cases := []struct {
		w    uint64
		want int
	}{
		{0, 0},
		{1, 1},
		{0xff, 8},
		{^uint64(0), 64},
	}
	for _, c := range cases {
		if got := PopCount(c.w); got != c.want {
			t.Errorf("PopCount(%#x) = %d, want %d", c.w, got, c.want)
		}
	}
}

func TestRank1(t *testing.T) {
	w := uint16(0b1010_1100)
	cases := []struct {
		i    int
		want int
	}{
		{0, 0},
		{2, 0},
		{3, 1},
		{4, 2},
		{8, 4},
		{16, 4},
	}
	for _, c := range cases {
		if got := Rank1(w, c.i); got != c.want {
			t.Errorf("Rank1(%#b, %d) = %d, want %d", w, c.i, got, c.want)
		}
	}
}

func TestSelect1(t *testing.T) {
	w := uint32(0b1010_1100)
	wantPositions := []int{2, 3, 5, 7}
	for n, want := range wantPositions {
		got, ok := Select1(w, n)
		if !ok || got != want {
			t.Errorf("Select1(%#b, %d) = (%d, %v), want (%d, true)", w, n, got, ok, want)
		}
	}
	if _, ok := Select1(w, 4); ok {
		t.Errorf("Select1(%#b, 4) should report no bit", w)
	}
}

func TestSetRangeRoundTrip(t *testing.T) {
	var w uint64
	w, delta := SetRange1(w, 0, 3)
	if delta != 3 || w != 0b111 {
		t.Fatalf("SetRange1(0,3) = %#b delta %d, want 0b111 delta 3", w, delta)
	}
	w, delta = SetRange1(w, 1, 2)
	if delta != 0 || w != 0b111 {
		t.Fatalf("SetRange1(1,2) should be a no-op, got %#b delta %d", w, delta)
	}
	w, delta = SetRange0(w, 1, 2)
	if delta != 1 || w != 0b101 {
		t.Fatalf("SetRange0(1,2) = %#b delta %d, want 0b101 delta 1", w, delta)
	}
}

func TestSetRangeFullWord(t *testing.T) {
	var w uint64
	w, delta := SetRange1(w, 0, 64)
	if delta != 64 || w != ^uint64(0) {
		t.Fatalf("SetRange1(0,64) = %#x delta %d, want all-ones delta 64", w, delta)
	}
	w, delta = SetRange0(w, 0, 64)
	if delta != 64 || w != 0 {
		t.Fatalf("SetRange0(0,64) = %#x delta %d, want 0 delta 64", w, delta)
	}
}

func TestGetNBits(t *testing.T) {
	w := uint32(0b1101_0110)
	if got := GetNBits(w, 1, 4); got != 0b1011 {
		t.Errorf("GetNBits(%#b, 1, 4) = %#b, want 0b1011", w, got)
	}
	if got := GetNBits(w, 0, 8); got != w {
		t.Errorf("GetNBits(%#b, 0, 8) = %#b, want %#b", w, got, w)
	}
}

func TestRank1PanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-range rank index")
		}
	}()
	Rank1(uint8(0), 9)
}
