// Package position encodes source locations in the formats understood by the
// analysis engine and the file server.
package position

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// SelectionHeader is the response header in which the file server reports
// the byte offsets "start:end" of the requested selection.
const SelectionHeader = "X-Qguru-Selection"

// ErrSyntax is returned for a malformed selection parameter.
var ErrSyntax = errors.New("position: malformed selection")

// Encode returns the engine position for a byte range of file:
// "file:#start" for a point, "file:#start,#end" otherwise.
// The file name is not escaped.
func Encode(file string, start, end int) string {
	p := file + ":#" + strconv.Itoa(start)
	if start == end {
		return p
	}
	return p + ",#" + strconv.Itoa(end)
}

// Range is a span of source addressed by 1-based line and column numbers, as
// printed by the engine.
type Range struct {
	FromLine int
	FromCol  int
	ToLine   int
	ToCol    int
}

// Point returns the zero-width range at line.col.
func Point(line, col int) Range {
	return Range{FromLine: line, FromCol: col, ToLine: line, ToCol: col}
}

// IsZero reports whether r is unset.
func (r Range) IsZero() bool {
	return r == Range{}
}

// String formats r as "fromLine.fromCol-toLine.toCol".
func (r Range) String() string {
	return fmt.Sprintf("%d.%d-%d.%d", r.FromLine, r.FromCol, r.ToLine, r.ToCol)
}

// ParseRange parses a selection like "startLine.startCol-endLine.endCol".
func ParseRange(s string) (Range, error) {
	var r Range
	var rest string
	n, _ := fmt.Sscanf(s, "%d.%d-%d.%d%s", &r.FromLine, &r.FromCol, &r.ToLine, &r.ToCol, &rest)
	if n != 4 {
		return Range{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	if r.FromLine < 1 || r.ToLine < r.FromLine || r.FromCol < 0 || r.ToCol < 0 {
		return Range{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	return r, nil
}

// ByteOffsets returns the byte offsets of r within src as a half-open range.
// Columns count bytes from 1 and the end column is inclusive. ok is false if
// a line of r lies past the end of src.
func (r Range) ByteOffsets(src []byte) (start, end int, ok bool) {
	from := lineStart(src, r.FromLine)
	to := lineStart(src, r.ToLine)
	if from < 0 || to < 0 {
		return 0, 0, false
	}
	return from + r.FromCol - 1, to + r.ToCol, true
}

// lineStart returns the offset of the first byte of the 1-based line n.
func lineStart(src []byte, n int) int {
	off := 0
	for i := 1; i < n; i++ {
		j := bytes.IndexByte(src[off:], '\n')
		if j < 0 {
			return -1
		}
		off += j + 1
	}
	return off
}
