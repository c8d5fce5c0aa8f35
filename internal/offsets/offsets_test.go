package offsets

import "testing"

func TestMapToByteOffsetsASCII(t *testing.T) {
	s := "package main\n\nfunc main() {}\n"
	units := Units(s)
	for _, sel := range []Selection{{0, 0}, {0, 7}, {8, 12}, {14, len(units)}} {
		got := MapToByteOffsets(units, sel)
		if got.Start != sel.Start || got.End != sel.End {
			t.Fatalf("MapToByteOffsets(%v) = %v, want identical", sel, got)
		}
	}
}

func TestMapToByteOffsetsMultiByte(t *testing.T) {
	units := Units("héllo")
	got := MapToByteOffsets(units, Selection{Start: 0, End: 5})
	if got != (ByteRange{Start: 0, End: 6}) {
		t.Fatalf("MapToByteOffsets = %v, want {0 6}", got)
	}
	got = MapToByteOffsets(units, Selection{Start: 2, End: 5})
	if got != (ByteRange{Start: 3, End: 6}) {
		t.Fatalf("MapToByteOffsets = %v, want {3 6}", got)
	}
}

func TestMapToByteOffsetsSurrogatePair(t *testing.T) {
	units := Units("a😀x")
	if len(units) != 4 {
		t.Fatalf("len(units) = %d, want 4", len(units))
	}
	got := MapToByteOffsets(units, Selection{Start: 1, End: 4})
	if got.End-got.Start != 5 {
		t.Fatalf("byte length = %d, want 5", got.End-got.Start)
	}
	if got.Start != 1 {
		t.Fatalf("start = %d, want 1", got.Start)
	}
}

func TestByteLengthCosts(t *testing.T) {
	tests := []struct {
		units []uint16
		want  int
	}{
		{[]uint16{'a'}, 1},
		{[]uint16{0x7f}, 1},
		{[]uint16{0x80}, 2},
		{[]uint16{0x7ff}, 2},
		{[]uint16{0x800}, 3},
		{[]uint16{0x4e16}, 3},
		{[]uint16{0xffff}, 3},
		{[]uint16{0xd83d, 0xde00}, 4},
		// unpaired high surrogate still swallows the next unit
		{[]uint16{0xd83d, 'x'}, 4},
		{[]uint16{0xdc00, 'x', 'y'}, 5},
	}
	for _, tt := range tests {
		if got := ByteLength(tt.units, 0, len(tt.units)); got != tt.want {
			t.Fatalf("ByteLength(%x) = %d, want %d", tt.units, got, tt.want)
		}
	}
}

func TestByteLengthMonotonicAdditive(t *testing.T) {
	for _, s := range []string{"", "abc", "héllo wörld", "日本語テキスト", "a😀b😀c", "\t\n€"} {
		units := Units(s)
		n := len(units)
		for i := 0; i <= n; i++ {
			if i < n && units[i] >= 0xdc00 && units[i] <= 0xdfff {
				// a cut inside a surrogate pair is not a character boundary
				continue
			}
			for j := i; j <= n; j++ {
				if j < n && units[j] >= 0xdc00 && units[j] <= 0xdfff {
					continue
				}
				li := ByteLength(units, 0, i)
				lj := ByteLength(units, 0, j)
				if li > lj {
					t.Fatalf("%q: ByteLength(0,%d)=%d > ByteLength(0,%d)=%d", s, i, li, j, lj)
				}
				if mid := ByteLength(units, i, j); lj != li+mid {
					t.Fatalf("%q: %d != %d + %d for [%d,%d]", s, lj, li, mid, i, j)
				}
			}
		}
	}
}

func TestByteLengthMatchesUTF8(t *testing.T) {
	for _, s := range []string{"héllo", "日本語", "a😀x", "Ωmega\n"} {
		units := Units(s)
		if got := ByteLength(units, 0, len(units)); got != len(s) {
			t.Fatalf("ByteLength(%q) = %d, want %d", s, got, len(s))
		}
	}
}

func TestSelectionValid(t *testing.T) {
	if !(Selection{Start: 2, End: 2}).Valid() {
		t.Fatalf("point selection should be valid")
	}
	if (Selection{Start: 3, End: 2}).Valid() {
		t.Fatalf("reversed selection should be invalid")
	}
	if (Selection{Start: -1, End: 2}).Valid() {
		t.Fatalf("negative selection should be invalid")
	}
}
