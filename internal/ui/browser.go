// Package ui is the terminal host of the navigator: it draws the source,
// output and menu panes with tcell and turns keys and mouse gestures into
// navigator calls.
package ui

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/kobzarvs/qguru/internal/highlight"
	"github.com/kobzarvs/qguru/internal/history"
	"github.com/kobzarvs/qguru/internal/linkify"
	"github.com/kobzarvs/qguru/internal/logger"
	"github.com/kobzarvs/qguru/internal/modes"
	"github.com/kobzarvs/qguru/internal/offsets"
	"github.com/kobzarvs/qguru/internal/position"
)

// Controller receives the gestures the browser recognises.
type Controller interface {
	MouseUp(x, y int, sel *offsets.Selection)
	Choose(id string) bool
	ChooseCurrent() bool
	Escape()
	ClickOutside()
	Activate(seg linkify.Segment) bool
	Restore(e history.Entry)
	ListFiles()
	Open(file string)
}

// History is walked by the back and forward keys.
type History interface {
	Back() (history.Entry, bool)
	Forward() (history.Entry, bool)
}

type Options struct {
	Styles        Styles
	TabWidth      int
	OutputHeight  int
	JumpHighlight time.Duration
	Keymap        map[string]string
	History       History
	// Highlighter is optional.
	Highlighter *highlight.Highlighter
}

type cell struct {
	row, col int
}

// Browser implements the navigator's view.
type Browser struct {
	ctrl    Controller
	hist    History
	hl      *highlight.Highlighter
	styles  Styles
	keymap  map[string]string
	tabW    int
	outH    int
	jumpFor time.Duration

	title string
	file  string
	text  *offsets.Text

	scroll    int
	jumpLine  int
	jumpSel   *position.Range
	jumpUntil time.Time

	// Mouse state. press is where button 1 went down in the source pane,
	// head where it is now.
	pressed   bool
	pressArea area
	press     cell
	head      cell
	menuPress int

	output    [][]linkify.Segment
	outScroll int

	menu *modes.Menu

	// File picker, shown in place of the source pane.
	picking    bool
	picks      []string
	pickDir    string
	pickIndex  int
	pickScroll int

	width, height int
	now           func() time.Time
	after         func(d time.Duration)
}

func New(opts Options) *Browser {
	if opts.TabWidth < 1 {
		opts.TabWidth = 8
	}
	if opts.OutputHeight < 1 {
		opts.OutputHeight = 12
	}
	return &Browser{
		hist:      opts.History,
		hl:        opts.Highlighter,
		styles:    opts.Styles,
		keymap:    opts.Keymap,
		tabW:      opts.TabWidth,
		outH:      opts.OutputHeight,
		jumpFor:   opts.JumpHighlight,
		menuPress: -1,
		now:       time.Now,
	}
}

// SetController connects the browser to the navigator driving it.
func (b *Browser) SetController(c Controller) {
	b.ctrl = c
}

func (b *Browser) ShowSource(file string, text *offsets.Text) {
	b.file = file
	b.text = text
	b.scroll = 0
	b.pressed = false
	b.picking = false
	if b.hl == nil {
		return
	}
	if !highlight.Supported(file) {
		b.hl.Reset()
		return
	}
	if err := b.hl.Parse(context.Background(), text.String()); err != nil {
		logger.Warn("highlight parse failed", "file", file, "error", err)
		b.hl.Reset()
	}
}

func (b *Browser) JumpTo(line int, sel *position.Range) {
	if line <= 0 {
		b.scroll = 0
		b.jumpLine = 0
		b.jumpSel = nil
		return
	}
	b.jumpLine = line
	b.jumpSel = sel
	b.jumpUntil = b.now().Add(b.jumpFor)
	srcH := b.layout().srcH
	b.scroll = max(line-1-srcH/3, 0)
	b.clampScroll()
	if b.after != nil && b.jumpFor > 0 {
		b.after(b.jumpFor)
	}
}

func (b *Browser) SetTitle(title string) {
	b.title = title
}

func (b *Browser) ShowOutput(segs []linkify.Segment) {
	b.output = linkify.Lines(segs)
	b.outScroll = 0
}

func (b *Browser) ShowMenu(m *modes.Menu) {
	b.menu = m
}

func (b *Browser) HideMenu() {
	b.menuPress = -1
}

// ShowFiles opens the file picker on files, with the displayed file
// highlighted.
func (b *Browser) ShowFiles(files []string) {
	b.picks = files
	b.pickDir = commonDir(files)
	b.pickIndex = max(slices.Index(files, b.file), 0)
	b.pickScroll = 0
	b.picking = len(files) > 0
	b.pressed = false
}

func (b *Browser) movePick(delta int) {
	b.pickIndex = min(max(b.pickIndex+delta, 0), max(len(b.picks)-1, 0))
}

func (b *Browser) openPick(i int) {
	if i < 0 || i >= len(b.picks) {
		return
	}
	b.picking = false
	b.ctrl.Open(b.picks[i])
}

// clampPickScroll keeps the highlighted file on screen.
func (b *Browser) clampPickScroll() {
	srcH := b.layout().srcH
	if b.pickIndex < b.pickScroll {
		b.pickScroll = b.pickIndex
	}
	if srcH > 0 && b.pickIndex >= b.pickScroll+srcH {
		b.pickScroll = b.pickIndex - srcH + 1
	}
}

// commonDir returns the deepest directory, with a trailing slash, that
// holds all of files.
func commonDir(files []string) string {
	if len(files) == 0 {
		return ""
	}
	dir := files[0][:strings.LastIndex(files[0], "/")+1]
	for _, f := range files[1:] {
		for !strings.HasPrefix(f, dir) {
			dir = dir[:strings.LastIndex(strings.TrimSuffix(dir, "/"), "/")+1]
		}
	}
	return dir
}

// Escape clears the output pane.
func (b *Browser) Escape() {
	b.output = nil
	b.outScroll = 0
}

func (b *Browser) menuVisible() bool {
	return b.menu != nil && b.menu.Visible()
}

// sourceLines is the number of displayed source lines. A final newline
// does not start a line of its own.
func (b *Browser) sourceLines() int {
	if b.text == nil {
		return 0
	}
	n := b.text.LineCount()
	if n > 1 && len(b.text.Line(n-1)) == 0 {
		n--
	}
	return n
}

func (b *Browser) clampScroll() {
	maxScroll := max(b.sourceLines()-b.layout().srcH, 0)
	b.scroll = min(max(b.scroll, 0), maxScroll)
}

func (b *Browser) clampOutScroll() {
	maxScroll := max(len(b.output)-b.layout().outH, 0)
	b.outScroll = min(max(b.outScroll, 0), maxScroll)
}
