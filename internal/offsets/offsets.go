// Package offsets converts text selections, measured in UTF-16 code units,
// into byte offsets of the UTF-8 encoding of the same text. The analysis
// engine addresses source files by byte offset.
package offsets

import "unicode/utf16"

// Selection is a half-open range of UTF-16 code units.
type Selection struct {
	Start int
	End   int
}

// Empty reports whether the selection is a single point.
func (s Selection) Empty() bool {
	return s.Start == s.End
}

// Valid reports whether the selection is well ordered and non-negative.
func (s Selection) Valid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// ByteRange is a half-open range of UTF-8 byte offsets.
type ByteRange struct {
	Start int
	End   int
}

// Units returns the UTF-16 code units of s.
func Units(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// ByteLength returns the number of UTF-8 bytes needed for units[from:to].
//
// A unit in the surrogate block is charged 4 bytes and the unit after it is
// skipped without being inspected, so an unpaired surrogate still costs 4
// bytes and swallows its neighbour.
func ByteLength(units []uint16, from, to int) int {
	n := 0
	for i := from; i < to; i++ {
		c := units[i]
		switch {
		case c <= 0x7f:
			n++
		case c <= 0x7ff:
			n += 2
		case c >= 0xd800 && c <= 0xdfff:
			n += 4
			i++
		default:
			n += 3
		}
	}
	return n
}

// MapToByteOffsets translates sel into byte offsets within units.
func MapToByteOffsets(units []uint16, sel Selection) ByteRange {
	a := ByteLength(units, 0, sel.Start)
	b := ByteLength(units, sel.Start, sel.End)
	return ByteRange{Start: a, End: a + b}
}
