// Package navigator drives the browser: it loads source files into the view,
// turns selections into engine queries, renders the answers as links and
// keeps the navigation history in step with what is shown.
//
// A Navigator is owned by a single event loop. Its methods must be called
// from that loop, and blocking work is handed to a Loop whose completions run
// back on it.
package navigator

import (
	"context"

	"github.com/kobzarvs/qguru/internal/history"
	"github.com/kobzarvs/qguru/internal/linkify"
	"github.com/kobzarvs/qguru/internal/logger"
	"github.com/kobzarvs/qguru/internal/modes"
	"github.com/kobzarvs/qguru/internal/offsets"
	"github.com/kobzarvs/qguru/internal/position"
)

const (
	DefaultTitle        = "Go source code guru"
	DefaultWaitMessage  = "Consulting the guru ..."
	DefaultErrorMessage = "An error occurred."
)

// FileProvider fetches the content of a source file.
type FileProvider interface {
	Fetch(ctx context.Context, path string, sel *position.Range) (string, error)
}

// FileLister lists the files that can be opened.
type FileLister interface {
	Files(ctx context.Context) ([]string, error)
}

// QueryProvider runs an analysis query and returns its plain-text report.
type QueryProvider interface {
	Query(ctx context.Context, mode, pos string) (string, error)
}

// History records navigation entries.
type History interface {
	Replace(e history.Entry)
	Push(e history.Entry)
}

// View displays what the navigator decides to show.
type View interface {
	// ShowSource replaces the displayed source and its line numbers.
	ShowSource(file string, text *offsets.Text)
	// JumpTo scrolls to line and briefly highlights it; line 0 scrolls to
	// the top.
	JumpTo(line int, sel *position.Range)
	SetTitle(title string)
	ShowOutput(segs []linkify.Segment)
	ShowMenu(m *modes.Menu)
	HideMenu()
	// ShowFiles offers files to pick from.
	ShowFiles(files []string)
	// Escape is signalled when escape is pressed with no menu open.
	Escape()
}

// Loop runs work off the event loop. The function returned by work is then
// executed on the event loop.
type Loop interface {
	Async(work func(ctx context.Context) func())
}

// InlineLoop runs work and its completion immediately on the caller.
type InlineLoop struct{}

func (InlineLoop) Async(work func(ctx context.Context) func()) {
	if done := work(context.Background()); done != nil {
		done()
	}
}

type State int

const (
	Idle State = iota
	Loading
	Displaying
	Querying
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Displaying:
		return "displaying"
	case Querying:
		return "querying"
	default:
		return "idle"
	}
}

type Options struct {
	Files    FileProvider
	Lister   FileLister
	Queries  QueryProvider
	Asker    modes.Asker
	Registry *modes.Registry
	View     View
	History  History
	Loop     Loop

	Title        string
	WaitMessage  string
	ErrorMessage string
}

type Navigator struct {
	files    FileProvider
	lister   FileLister
	queries  QueryProvider
	asker    modes.Asker
	registry *modes.Registry
	view     View
	history  History
	loop     Loop
	menu     *modes.Menu

	title   string
	waitMsg string
	errMsg  string

	file string
	text *offsets.Text

	loadSeq      uint64
	querySeq     uint64
	menuSeq      uint64
	listSeq      uint64
	loadPending  bool
	queryPending bool
}

func New(opts Options) *Navigator {
	n := &Navigator{
		files:    opts.Files,
		lister:   opts.Lister,
		queries:  opts.Queries,
		asker:    opts.Asker,
		registry: opts.Registry,
		view:     opts.View,
		history:  opts.History,
		loop:     opts.Loop,
		title:    opts.Title,
		waitMsg:  opts.WaitMessage,
		errMsg:   opts.ErrorMessage,
	}
	if n.registry == nil {
		n.registry = modes.GuruModes(true)
	}
	if n.loop == nil {
		n.loop = InlineLoop{}
	}
	if n.title == "" {
		n.title = DefaultTitle
	}
	if n.waitMsg == "" {
		n.waitMsg = DefaultWaitMessage
	}
	if n.errMsg == "" {
		n.errMsg = DefaultErrorMessage
	}
	n.menu = modes.NewMenu(n.registry)
	return n
}

// Init records file as the current history entry, without growing the
// history, and loads it.
func (n *Navigator) Init(file string) {
	n.history.Replace(history.Entry{File: file})
	n.LoadAndShow(file, 0, nil)
}

// State reports what the navigator is doing.
func (n *Navigator) State() State {
	switch {
	case n.loadPending:
		return Loading
	case n.queryPending:
		return Querying
	case n.text != nil:
		return Displaying
	default:
		return Idle
	}
}

// CurrentFile returns the file on display, or "" before the first load.
func (n *Navigator) CurrentFile() string {
	return n.file
}

// Text returns the displayed source, or nil before the first load.
func (n *Navigator) Text() *offsets.Text {
	return n.text
}

func (n *Navigator) Menu() *modes.Menu {
	return n.menu
}

// LoadAndShow fetches file and displays it, scrolling to line when it is
// positive. History is not touched. On failure the error message replaces
// the output and the previous source stays on display.
func (n *Navigator) LoadAndShow(file string, line int, sel *position.Range) {
	n.loadSeq++
	seq := n.loadSeq
	n.loadPending = true
	logger.Debug("load", "file", file, "line", line, "seq", seq)
	n.loop.Async(func(ctx context.Context) func() {
		src, err := n.files.Fetch(ctx, file, sel)
		return func() {
			if seq != n.loadSeq {
				logger.Debug("dropping stale load", "file", file, "seq", seq)
				return
			}
			n.loadPending = false
			if err != nil {
				logger.Warn("load failed", "file", file, "error", err)
				n.writeOutput(n.errMsg)
				return
			}
			if n.menu.Visible() {
				n.hideMenu()
			}
			n.text = offsets.NewText(src)
			n.view.ShowSource(file, n.text)
			n.setCurrentFile(file)
			n.view.JumpTo(line, sel)
		}
	})
}

// Navigate shows target and pushes a history entry for it.
func (n *Navigator) Navigate(target linkify.Target) {
	sel := target.Selection
	n.LoadAndShow(target.File, target.Line, &sel)
	n.history.Push(history.Entry{File: target.File, Line: target.Line, Selection: &sel})
}

// Open shows file from the top and pushes a history entry for it.
func (n *Navigator) Open(file string) {
	n.LoadAndShow(file, 0, nil)
	n.history.Push(history.Entry{File: file})
}

// ListFiles fetches the files that can be opened and offers them to the
// view. Only the latest listing is shown.
func (n *Navigator) ListFiles() {
	if n.lister == nil {
		return
	}
	if n.menu.Visible() {
		n.hideMenu()
	}
	n.listSeq++
	seq := n.listSeq
	n.loop.Async(func(ctx context.Context) func() {
		files, err := n.lister.Files(ctx)
		return func() {
			if seq != n.listSeq {
				return
			}
			if err != nil {
				logger.Warn("list files failed", "error", err)
				n.writeOutput(n.errMsg)
				return
			}
			n.view.ShowFiles(files)
		}
	})
}

// Restore shows a history entry popped by back/forward navigation. It never
// records history.
func (n *Navigator) Restore(e history.Entry) {
	n.LoadAndShow(e.File, e.Line, e.Selection)
}

// Activate follows a link segment from the output; other segments are
// ignored.
func (n *Navigator) Activate(seg linkify.Segment) bool {
	if seg.Link == nil {
		return false
	}
	n.Navigate(*seg.Link)
	return true
}

func (n *Navigator) setCurrentFile(file string) {
	n.file = file
	n.view.SetTitle(file + " - " + n.title)
}

func (n *Navigator) writeOutput(text string) {
	n.view.ShowOutput(linkify.Linkify(text))
}
