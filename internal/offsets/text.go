package offsets

import "unicode/utf8"

// Text is a source text indexed for selection lookups by line and rune
// column, which is how a terminal reports pointer positions.
type Text struct {
	src   string
	lines [][]rune
	// lineStart[i] is the code-unit offset of the first unit of line i.
	lineStart []int
	units     []uint16
}

// NewText indexes s. Lines are split on '\n'; the newline itself counts as
// one code unit belonging to the line it terminates.
func NewText(s string) *Text {
	t := &Text{src: s, units: Units(s)}
	start := 0
	line := make([]rune, 0, 64)
	for _, r := range s {
		if r == '\n' {
			t.lines = append(t.lines, line)
			t.lineStart = append(t.lineStart, start)
			start += unitLen(line) + 1
			line = make([]rune, 0, 64)
			continue
		}
		line = append(line, r)
	}
	t.lines = append(t.lines, line)
	t.lineStart = append(t.lineStart, start)
	return t
}

func unitLen(line []rune) int {
	n := 0
	for _, r := range line {
		if r >= 0x10000 && r <= utf8.MaxRune {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// String returns the indexed text.
func (t *Text) String() string {
	return t.src
}

// Units returns the UTF-16 code units of the whole text.
func (t *Text) Units() []uint16 {
	return t.units
}

// LineCount returns the number of lines, counting a trailing empty line.
func (t *Text) LineCount() int {
	return len(t.lines)
}

// Line returns the runes of line row (0-based).
func (t *Text) Line(row int) []rune {
	if row < 0 || row >= len(t.lines) {
		return nil
	}
	return t.lines[row]
}

// Offset returns the code-unit offset of the given 0-based row and rune
// column. Out-of-range positions are clamped to the text.
func (t *Text) Offset(row, col int) int {
	if row < 0 {
		return 0
	}
	if row >= len(t.lines) {
		return len(t.units)
	}
	line := t.lines[row]
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}
	return t.lineStart[row] + unitLen(line[:col])
}

// Select returns the selection spanning the two positions, in either order.
func (t *Text) Select(row0, col0, row1, col1 int) Selection {
	a := t.Offset(row0, col0)
	b := t.Offset(row1, col1)
	if b < a {
		a, b = b, a
	}
	return Selection{Start: a, End: b}
}

// ByteRange maps sel to byte offsets within this text.
func (t *Text) ByteRange(sel Selection) ByteRange {
	return MapToByteOffsets(t.units, sel)
}
