package position

import (
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		file       string
		start, end int
		want       string
	}{
		{"a.go", 5, 5, "a.go:#5"},
		{"a.go", 5, 9, "a.go:#5,#9"},
		{"/src/x y.go", 0, 0, "/src/x y.go:#0"},
		{"c:/w/b.go", 10, 12, "c:/w/b.go:#10,#12"},
	}
	for _, tt := range tests {
		if got := Encode(tt.file, tt.start, tt.end); got != tt.want {
			t.Fatalf("Encode(%q, %d, %d) = %q, want %q", tt.file, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestRangeString(t *testing.T) {
	r := Range{FromLine: 3, FromCol: 1, ToLine: 4, ToCol: 12}
	if got := r.String(); got != "3.1-4.12" {
		t.Fatalf("String = %q, want %q", got, "3.1-4.12")
	}
	if got := Point(7, 2).String(); got != "7.2-7.2" {
		t.Fatalf("Point.String = %q, want %q", got, "7.2-7.2")
	}
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("10.2-12.30")
	if err != nil {
		t.Fatalf("ParseRange error: %v", err)
	}
	want := Range{FromLine: 10, FromCol: 2, ToLine: 12, ToCol: 30}
	if r != want {
		t.Fatalf("ParseRange = %+v, want %+v", r, want)
	}
	for _, bad := range []string{"", "1.2", "a.b-c.d", "1.2-3.4x", "5.1-4.1", "0.1-0.1"} {
		if _, err := ParseRange(bad); !errors.Is(err, ErrSyntax) {
			t.Fatalf("ParseRange(%q) error = %v, want ErrSyntax", bad, err)
		}
	}
}

func TestRangeIsZero(t *testing.T) {
	if !(Range{}).IsZero() {
		t.Fatalf("zero range not reported as zero")
	}
	if Point(1, 1).IsZero() {
		t.Fatalf("point reported as zero")
	}
}

func TestByteOffsets(t *testing.T) {
	src := []byte("package b\n\nfunc B() {}\n")
	tests := []struct {
		r          Range
		start, end int
		ok         bool
	}{
		{Range{FromLine: 1, FromCol: 1, ToLine: 1, ToCol: 7}, 0, 7, true},
		{Range{FromLine: 3, FromCol: 6, ToLine: 3, ToCol: 6}, 16, 17, true},
		{Range{FromLine: 1, FromCol: 9, ToLine: 3, ToCol: 4}, 8, 15, true},
		{Range{FromLine: 9, FromCol: 1, ToLine: 9, ToCol: 1}, 0, 0, false},
	}
	for _, tt := range tests {
		start, end, ok := tt.r.ByteOffsets(src)
		if start != tt.start || end != tt.end || ok != tt.ok {
			t.Fatalf("%v.ByteOffsets = %d, %d, %v, want %d, %d, %v", tt.r, start, end, ok, tt.start, tt.end, tt.ok)
		}
	}
}
