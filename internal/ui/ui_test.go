package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qguru/internal/config"
	"github.com/kobzarvs/qguru/internal/history"
	"github.com/kobzarvs/qguru/internal/linkify"
	"github.com/kobzarvs/qguru/internal/modes"
	"github.com/kobzarvs/qguru/internal/offsets"
)

type fakeController struct {
	mouseUps  []*offsets.Selection
	chosen    []string
	escapes   int
	outside   int
	activated []linkify.Segment
	restored  []history.Entry
	listed    int
	opened    []string
}

func (c *fakeController) MouseUp(x, y int, sel *offsets.Selection) {
	c.mouseUps = append(c.mouseUps, sel)
}
func (c *fakeController) Choose(id string) bool {
	c.chosen = append(c.chosen, id)
	return true
}
func (c *fakeController) ChooseCurrent() bool { return c.Choose("current") }
func (c *fakeController) Escape()             { c.escapes++ }
func (c *fakeController) ClickOutside()       { c.outside++ }
func (c *fakeController) Activate(seg linkify.Segment) bool {
	c.activated = append(c.activated, seg)
	return seg.IsLink()
}
func (c *fakeController) Restore(e history.Entry) { c.restored = append(c.restored, e) }
func (c *fakeController) ListFiles()              { c.listed++ }
func (c *fakeController) Open(file string)        { c.opened = append(c.opened, file) }

func newTestBrowser(t *testing.T, w, h int) (*Browser, *fakeController, tcell.SimulationScreen, *history.Stack) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(w, h)

	cfg := config.Default()
	hist := history.New()
	b := New(Options{
		Styles:        NewStyles(cfg.Theme),
		TabWidth:      4,
		OutputHeight:  cfg.Browser.OutputHeight,
		JumpHighlight: time.Second,
		Keymap:        cfg.Keymap,
		History:       hist,
	})
	ctrl := &fakeController{}
	b.SetController(ctrl)
	return b, ctrl, s, hist
}

func rowText(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteRune(c.Runes[0])
	}
	return strings.TrimRight(sb.String(), " ")
}

func click(b *Browser, x, y int) {
	b.HandleMouse(tcell.NewEventMouse(x, y, tcell.Button1, 0))
	b.HandleMouse(tcell.NewEventMouse(x, y, tcell.ButtonNone, 0))
}

func TestRenderSourceWithGutter(t *testing.T) {
	b, _, s, _ := newTestBrowser(t, 40, 20)
	b.SetTitle("a.go - Go source code guru")
	b.ShowSource("a.go", offsets.NewText("package a\n\nfunc A() {}\n"))
	b.Render(s)

	if got := rowText(s, 0); got != " a.go - Go source code guru" {
		t.Fatalf("header = %q", got)
	}
	want := []string{"1 package a", "2", "3 func A() {}", ""}
	for i, w := range want {
		if got := rowText(s, 1+i); got != w {
			t.Fatalf("row %d = %q, want %q", 1+i, got, w)
		}
	}
	if got := rowText(s, 7); got != " Output" {
		t.Fatalf("separator = %q, want %q", got, " Output")
	}
}

func TestRenderExpandsTabs(t *testing.T) {
	b, _, s, _ := newTestBrowser(t, 40, 20)
	b.ShowSource("a.go", offsets.NewText("\tx\n"))
	b.Render(s)
	if got := rowText(s, 1); got != "1     x" {
		t.Fatalf("row = %q, want %q", got, "1     x")
	}
}

func TestDragSelection(t *testing.T) {
	b, ctrl, s, _ := newTestBrowser(t, 40, 20)
	b.ShowSource("a.go", offsets.NewText("package a\n\nfunc A() {}\n"))
	b.Render(s)

	gutter := b.layout().gutterW
	b.HandleMouse(tcell.NewEventMouse(gutter, 1, tcell.Button1, 0))
	b.HandleMouse(tcell.NewEventMouse(gutter+3, 1, tcell.Button1, 0))
	b.HandleMouse(tcell.NewEventMouse(gutter+7, 1, tcell.Button1, 0))
	b.HandleMouse(tcell.NewEventMouse(gutter+7, 1, tcell.ButtonNone, 0))
	if len(ctrl.mouseUps) != 1 || ctrl.mouseUps[0] == nil {
		t.Fatalf("mouseUps = %v, want one selection", ctrl.mouseUps)
	}
	if got := *ctrl.mouseUps[0]; got != (offsets.Selection{Start: 0, End: 7}) {
		t.Fatalf("selection = %+v, want 0..7", got)
	}

	// Backwards drag onto the third line.
	b.HandleMouse(tcell.NewEventMouse(gutter+6, 3, tcell.Button1, 0))
	b.HandleMouse(tcell.NewEventMouse(gutter+2, 1, tcell.ButtonNone, 0))
	if got := *ctrl.mouseUps[1]; got != (offsets.Selection{Start: 2, End: 11 + 6}) {
		t.Fatalf("selection = %+v, want 2..17", got)
	}

	click(b, gutter+4, 1)
	if got := *ctrl.mouseUps[2]; got != (offsets.Selection{Start: 4, End: 4}) {
		t.Fatalf("point selection = %+v, want 4..4", got)
	}
}

func TestClickOutsideSourceReportsNoSelection(t *testing.T) {
	b, ctrl, s, _ := newTestBrowser(t, 40, 20)
	b.ShowSource("a.go", offsets.NewText("package a\n"))
	b.Render(s)
	click(b, 3, 0)
	if len(ctrl.mouseUps) != 1 || ctrl.mouseUps[0] != nil {
		t.Fatalf("mouseUps = %v, want one nil selection", ctrl.mouseUps)
	}
}

func TestOutputLinks(t *testing.T) {
	b, ctrl, s, _ := newTestBrowser(t, 40, 20)
	b.ShowOutput(linkify.Linkify("/src/b.go:3:6: func B\n-: no position\nplain"))
	b.Render(s)

	outTop := b.layout().outTop
	want := []string{"▶ func B", "  no position", "plain"}
	for i, w := range want {
		if got := rowText(s, outTop+i); got != w {
			t.Fatalf("output row %d = %q, want %q", i, got, w)
		}
	}
	cells, w, _ := s.GetContents()
	if cells[outTop*w+2].Style != b.styles.Link {
		t.Fatalf("link not drawn with the link style")
	}

	click(b, 2, outTop)
	if len(ctrl.activated) != 1 || ctrl.activated[0].Link == nil || ctrl.activated[0].Link.File != "/src/b.go" {
		t.Fatalf("activated = %+v, want the b.go link", ctrl.activated)
	}
	click(b, 30, outTop)
	if len(ctrl.activated) != 1 {
		t.Fatalf("click past the link activated %+v", ctrl.activated)
	}

	b.Escape()
	b.Render(s)
	if got := rowText(s, outTop); got != "" {
		t.Fatalf("output after escape = %q, want empty", got)
	}
}

func TestMenu(t *testing.T) {
	b, ctrl, s, _ := newTestBrowser(t, 60, 30)
	b.ShowSource("a.go", offsets.NewText("package a\n"))
	reg := modes.GuruModes(false)
	menu := modes.NewMenu(reg)
	sel := offsets.Selection{Start: 0, End: 0}
	menu.Open("a.go", 5, 2, sel, reg.Evaluate(sel))
	b.ShowMenu(menu)
	b.Render(s)

	if got := rowText(s, 2); !strings.HasPrefix(got[5:], " Describe") {
		t.Fatalf("menu row = %q, want Describe at column 5", got)
	}
	if got := rowText(s, b.layout().sepY); !strings.Contains(got, "Describe the selected syntax") {
		t.Fatalf("separator = %q, want the mode description", got)
	}

	b.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	if menu.Index() != 1 {
		t.Fatalf("menu index = %d, want 1", menu.Index())
	}
	b.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if len(ctrl.chosen) != 1 || ctrl.chosen[0] != "current" {
		t.Fatalf("chosen = %q, want [current]", ctrl.chosen)
	}

	click(b, 7, 2+4)
	if len(ctrl.chosen) != 2 || ctrl.chosen[1] != "freevars" {
		t.Fatalf("chosen = %q, want freevars clicked", ctrl.chosen)
	}
	if len(ctrl.mouseUps) != 0 {
		t.Fatalf("menu click reached MouseUp")
	}
}

func TestHistoryKeys(t *testing.T) {
	b, ctrl, _, hist := newTestBrowser(t, 40, 20)
	hist.Replace(history.Entry{File: "a.go"})
	hist.Push(history.Entry{File: "b.go", Line: 3})

	b.HandleKey(tcell.NewEventKey(tcell.KeyRune, '[', tcell.ModNone))
	if len(ctrl.restored) != 1 || ctrl.restored[0].File != "a.go" {
		t.Fatalf("restored = %+v, want a.go", ctrl.restored)
	}
	b.HandleKey(tcell.NewEventKey(tcell.KeyRune, '[', tcell.ModNone))
	if len(ctrl.restored) != 1 {
		t.Fatalf("back past the first entry restored %+v", ctrl.restored)
	}
	b.HandleKey(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModAlt))
	if len(ctrl.restored) != 2 || ctrl.restored[1].Line != 3 {
		t.Fatalf("restored = %+v, want b.go:3", ctrl.restored)
	}
	b.HandleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if ctrl.escapes != 1 {
		t.Fatalf("escapes = %d, want 1", ctrl.escapes)
	}
	if !b.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatalf("q did not quit")
	}
}

func TestJumpTo(t *testing.T) {
	b, _, s, _ := newTestBrowser(t, 40, 20)
	var src strings.Builder
	for i := 1; i <= 100; i++ {
		src.WriteString("line\n")
	}
	b.ShowSource("a.go", offsets.NewText(src.String()))
	b.Render(s)

	now := time.Unix(1000, 0)
	b.now = func() time.Time { return now }
	b.JumpTo(50, nil)
	b.Render(s)

	srcH := b.layout().srcH
	top := 50 - 1 - srcH/3
	if b.scroll != top {
		t.Fatalf("scroll = %d, want %d", b.scroll, top)
	}
	y := 1 + (50 - 1 - top)
	if got := rowText(s, y); got != " 50 line" {
		t.Fatalf("jump row = %q, want %q", got, " 50 line")
	}
	cells, w, _ := s.GetContents()
	_, jumpBg, _ := b.styles.Jump.Decompose()
	if _, bg, _ := cells[y*w+5].Style.Decompose(); bg != jumpBg {
		t.Fatalf("jump line background = %v, want %v", bg, jumpBg)
	}

	now = now.Add(2 * time.Second)
	b.Render(s)
	cells, w, _ = s.GetContents()
	if _, bg, _ := cells[y*w+5].Style.Decompose(); bg == jumpBg {
		t.Fatalf("jump highlight still shown after it expired")
	}
}

func TestVisualToLogicalCol(t *testing.T) {
	tests := []struct {
		line string
		x    int
		want int
	}{
		{"abc", 0, 0},
		{"abc", 2, 2},
		{"abc", 9, 3},
		{"\tx", 2, 0},
		{"\tx", 4, 1},
		{"世界x", 2, 1},
		{"世界x", 3, 1},
		{"世界x", 4, 2},
	}
	for _, tt := range tests {
		if got := visualToLogicalCol([]rune(tt.line), tt.x, 4); got != tt.want {
			t.Fatalf("visualToLogicalCol(%q, %d) = %d, want %d", tt.line, tt.x, got, tt.want)
		}
	}
}

func TestRunExecutesCompletions(t *testing.T) {
	b, _, s, _ := newTestBrowser(t, 40, 20)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop := NewEventLoop(ctx, s)

	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, s, b, loop) }()

	loop.Async(func(ctx context.Context) func() {
		text := offsets.NewText("package a\n")
		return func() {
			b.ShowSource("a.go", text)
			cancel()
		}
	})

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return")
	}
	if b.file != "a.go" {
		t.Fatalf("completion not executed on the loop")
	}
}

func TestRunQuitKey(t *testing.T) {
	b, _, s, _ := newTestBrowser(t, 40, 20)
	ctx := context.Background()
	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, s, b, NewEventLoop(ctx, s)) }()
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return")
	}
}

func TestFilePicker(t *testing.T) {
	b, ctrl, s, _ := newTestBrowser(t, 40, 20)
	b.ShowSource("/src/sub/b.go", offsets.NewText("package sub\n"))
	b.Render(s)

	b.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'o', tcell.ModNone))
	if ctrl.listed != 1 {
		t.Fatalf("ListFiles calls = %d, want 1", ctrl.listed)
	}
	files := []string{"/src/a.go", "/src/sub/b.go", "/src/z.go"}
	b.ShowFiles(files)
	b.Render(s)

	for i, want := range []string{" a.go", " sub/b.go", " z.go"} {
		if got := rowText(s, 1+i); got != want {
			t.Fatalf("picker row %d = %q, want %q", i, got, want)
		}
	}
	if got := rowText(s, b.layout().sepY); got != " Open file (3) /src/" {
		t.Fatalf("separator = %q", got)
	}
	cells, w, _ := s.GetContents()
	if cells[2*w+1].Style != b.styles.MenuSelected {
		t.Fatalf("displayed file not highlighted")
	}

	b.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	b.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if len(ctrl.opened) != 1 || ctrl.opened[0] != "/src/z.go" {
		t.Fatalf("opened = %q, want [/src/z.go]", ctrl.opened)
	}
	if b.picking {
		t.Fatalf("picker still open after a choice")
	}

	b.ShowFiles(files)
	b.Render(s)
	click(b, 3, 1)
	if len(ctrl.opened) != 2 || ctrl.opened[1] != "/src/a.go" {
		t.Fatalf("opened = %q, want /src/a.go clicked", ctrl.opened)
	}
	if len(ctrl.mouseUps) != 0 {
		t.Fatalf("picker click reached MouseUp")
	}

	b.ShowFiles(files)
	b.HandleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if b.picking || ctrl.escapes != 0 {
		t.Fatalf("escape: picking = %v, escapes = %d, want closed picker only", b.picking, ctrl.escapes)
	}
	b.Render(s)
	if got := rowText(s, 1); got != "1 package sub" {
		t.Fatalf("row after closing picker = %q, want the source", got)
	}
}

func TestCommonDir(t *testing.T) {
	tests := []struct {
		files []string
		want  string
	}{
		{nil, ""},
		{[]string{"/a/b/c.go"}, "/a/b/"},
		{[]string{"/a/b/c.go", "/a/bc/d.go"}, "/a/"},
		{[]string{"/a/c.go", "/b/d.go"}, "/"},
		{[]string{"x.go", "y/z.go"}, ""},
	}
	for _, tt := range tests {
		if got := commonDir(tt.files); got != tt.want {
			t.Fatalf("commonDir(%q) = %q, want %q", tt.files, got, tt.want)
		}
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want string
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'o', tcell.ModNone), "o"},
		{tcell.NewEventKey(tcell.KeyRune, '[', tcell.ModNone), "["},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModAlt), "alt+left"},
		{tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModAlt), "alt+right"},
		{tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), "ctrl+c"},
		{tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), "pgdn"},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), "esc"},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), ""},
		{tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), ""},
	}
	cfg := config.Default()
	for _, tt := range tests {
		got := keyString(tt.ev)
		if got != tt.want {
			t.Fatalf("keyString(%v) = %q, want %q", tt.ev.Name(), got, tt.want)
		}
		if got != "" && cfg.Keymap[got] == "" {
			t.Fatalf("key %q has no default binding", got)
		}
	}
}
