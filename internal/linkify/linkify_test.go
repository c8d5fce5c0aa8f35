package linkify

import (
	"testing"

	"github.com/kobzarvs/qguru/internal/position"
)

func TestParseLineKinds(t *testing.T) {
	tests := []struct {
		in   string
		want Line
	}{
		{
			"foo.go:3.1-3.5: undeclared name",
			Line{Kind: RangeAddressed, File: "foo.go", Range: position.Range{FromLine: 3, FromCol: 1, ToLine: 3, ToCol: 5}, Rest: "undeclared name"},
		},
		{
			"foo.go:10:2: used here",
			Line{Kind: PointAddressed, File: "foo.go", Range: position.Point(10, 2), Rest: "used here"},
		},
		{
			"-: no definition found",
			Line{Kind: Unaddressed, Rest: "no definition found"},
		},
		{
			"   (nothing to show)",
			Line{Kind: Plain},
		},
		{
			"",
			Line{Kind: Plain},
		},
		{
			// the file part is greedy; numeric groups keep the address intact
			"/a:b/c.go:1.2-3.4: x:5:6: y",
			Line{Kind: RangeAddressed, File: "/a:b/c.go", Range: position.Range{FromLine: 1, FromCol: 2, ToLine: 3, ToCol: 4}, Rest: "x:5:6: y"},
		},
		{
			"c:/w/main.go:7:9: call to f: result 1.2",
			Line{Kind: PointAddressed, File: "c:/w/main.go", Range: position.Point(7, 9), Rest: "call to f: result 1.2"},
		},
	}
	for _, tt := range tests {
		got := parseLine(tt.in)
		tt.want.Text = tt.in
		if got != tt.want {
			t.Fatalf("parseLine(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseOverflowIsPlain(t *testing.T) {
	got := parseLine("a.go:99999999999999999999:1: too far")
	if got.Kind != Plain {
		t.Fatalf("Kind = %v, want plain", got.Kind)
	}
}

func TestTarget(t *testing.T) {
	l := parseLine("x.go:4.2-6.1: here")
	target, ok := l.Target()
	if !ok {
		t.Fatalf("Target not available")
	}
	if target.File != "x.go" || target.Line != 4 {
		t.Fatalf("Target = %+v, want file x.go line 4", target)
	}
	if target.Selection != (position.Range{FromLine: 4, FromCol: 2, ToLine: 6, ToCol: 1}) {
		t.Fatalf("Selection = %+v", target.Selection)
	}
	if _, ok := parseLine("-: nothing").Target(); ok {
		t.Fatalf("unaddressed line has a target")
	}
}

func TestRenderKeepsOrderAndBreaks(t *testing.T) {
	text := "a.go:1:2: first\n-: note\nplain text\n"
	segs := Linkify(text)
	want := []struct {
		text string
		link bool
	}{
		{Arrow + "first", true},
		{"\n", false},
		{"  note", false},
		{"\n", false},
		{"plain text", false},
		{"\n", false},
		{"", false},
		{"\n", false},
	}
	if len(segs) != len(want) {
		t.Fatalf("len(segs) = %d, want %d", len(segs), len(want))
	}
	for i, w := range want {
		if segs[i].Text != w.text || segs[i].IsLink() != w.link {
			t.Fatalf("segs[%d] = %+v, want text %q link %v", i, segs[i], w.text, w.link)
		}
	}
	if segs[0].Tooltip != "a.go:1:2: first" {
		t.Fatalf("Tooltip = %q", segs[0].Tooltip)
	}
	if segs[0].Link.File != "a.go" || segs[0].Link.Line != 1 {
		t.Fatalf("Link = %+v", segs[0].Link)
	}
}

func TestLines(t *testing.T) {
	lines := Lines(Linkify("one\ntwo"))
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if lines[1][0].Text != "two" {
		t.Fatalf("lines[1] = %+v", lines[1])
	}
}

func TestParseDropsCarriageReturn(t *testing.T) {
	lines := Parse("foo.go:10:2: used here\r\n-: none\r\nplain\r\n")
	if len(lines) != 4 {
		t.Fatalf("len = %d, want 4", len(lines))
	}
	if lines[0].Kind != PointAddressed || lines[0].Rest != "used here" {
		t.Fatalf("line 0 = %+v, want point address with rest %q", lines[0], "used here")
	}
	if lines[1].Rest != "none" {
		t.Fatalf("line 1 rest = %q, want %q", lines[1].Rest, "none")
	}
	if lines[2].Text != "plain" {
		t.Fatalf("line 2 text = %q, want %q", lines[2].Text, "plain")
	}
}
