// Package linkify turns the engine's plain-text reports into a sequence of
// text and link segments. Lines that carry a source address become links to
// that address; everything else is kept as text.
package linkify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kobzarvs/qguru/internal/position"
)

// Kind classifies a report line.
type Kind int

const (
	Plain Kind = iota
	Unaddressed
	PointAddressed
	RangeAddressed
)

func (k Kind) String() string {
	switch k {
	case Unaddressed:
		return "unaddressed"
	case PointAddressed:
		return "point"
	case RangeAddressed:
		return "range"
	default:
		return "plain"
	}
}

// Arrow prefixes the label of every link.
const Arrow = "▶ "

var (
	// file:line.col-line.col: rest
	rangeAddress = regexp.MustCompile(`(.*):([0-9]+)\.([0-9]+)-([0-9]+)\.([0-9]+): (.*)`)
	// file:line:col: rest
	pointAddress = regexp.MustCompile(`(.*):([0-9]+):([0-9]+): (.*)`)
	// -: rest
	noAddress = regexp.MustCompile(`-: (.*)`)
)

// Line is one parsed report line.
type Line struct {
	Kind  Kind
	Text  string // the line as received
	File  string
	Range position.Range
	Rest  string
}

// Target is where a link leads.
type Target struct {
	File      string
	Line      int
	Selection position.Range
}

// Target returns the navigation target of an addressed line.
func (l Line) Target() (Target, bool) {
	if l.Kind != RangeAddressed && l.Kind != PointAddressed {
		return Target{}, false
	}
	return Target{File: l.File, Line: l.Range.FromLine, Selection: l.Range}, true
}

// Parse splits text into lines and classifies each of them. The first
// matching form wins: range address, point address, no address, plain.
// A trailing "\r" is dropped from every line.
func Parse(text string) []Line {
	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))
	for _, s := range raw {
		lines = append(lines, parseLine(strings.TrimSuffix(s, "\r")))
	}
	return lines
}

func parseLine(s string) Line {
	if m := rangeAddress.FindStringSubmatch(s); m != nil {
		if n, ok := atois(m[2], m[3], m[4], m[5]); ok {
			return Line{
				Kind: RangeAddressed,
				Text: s,
				File: m[1],
				Range: position.Range{
					FromLine: n[0], FromCol: n[1],
					ToLine: n[2], ToCol: n[3],
				},
				Rest: m[6],
			}
		}
	}
	if m := pointAddress.FindStringSubmatch(s); m != nil {
		if n, ok := atois(m[2], m[3]); ok {
			return Line{
				Kind:  PointAddressed,
				Text:  s,
				File:  m[1],
				Range: position.Point(n[0], n[1]),
				Rest:  m[4],
			}
		}
	}
	if m := noAddress.FindStringSubmatch(s); m != nil {
		return Line{Kind: Unaddressed, Text: s, Rest: m[1]}
	}
	return Line{Kind: Plain, Text: s}
}

func atois(fields ...string) ([]int, bool) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// Segment is a run of output: either plain text or a link.
type Segment struct {
	Text    string
	Tooltip string
	Link    *Target
}

// IsLink reports whether the segment navigates somewhere when activated.
func (s Segment) IsLink() bool {
	return s.Link != nil
}

// Newline is the segment emitted after every line.
var Newline = Segment{Text: "\n"}

// Render converts parsed lines into segments, keeping their order. A line
// break follows every line, including the empty line after a trailing "\n".
func Render(lines []Line) []Segment {
	out := make([]Segment, 0, len(lines)*2)
	for _, l := range lines {
		switch l.Kind {
		case RangeAddressed, PointAddressed:
			target, _ := l.Target()
			out = append(out, Segment{Text: Arrow + l.Rest, Tooltip: l.Text, Link: &target})
		case Unaddressed:
			out = append(out, Segment{Text: "  " + l.Rest})
		default:
			out = append(out, Segment{Text: l.Text})
		}
		out = append(out, Newline)
	}
	return out
}

// Linkify parses and renders text in one step.
func Linkify(text string) []Segment {
	return Render(Parse(text))
}

// Lines groups segments back into display lines, dropping the line breaks.
func Lines(segs []Segment) [][]Segment {
	var out [][]Segment
	var cur []Segment
	for _, s := range segs {
		if s == Newline {
			out = append(out, cur)
			cur = nil
			continue
		}
		cur = append(cur, s)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
