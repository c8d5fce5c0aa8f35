package navigator

import (
	"context"

	"github.com/kobzarvs/qguru/internal/logger"
	"github.com/kobzarvs/qguru/internal/offsets"
	"github.com/kobzarvs/qguru/internal/position"
)

// MouseUp handles the end of a pointer gesture at x, y. sel is the
// selection in the source view, or nil when the gesture ended elsewhere.
//
// An open menu is dismissed and nothing else happens. Otherwise the menu
// opens at the pointer with the locally applicable modes enabled. Modes that
// defer to the engine start disabled and are enabled once it answers.
func (n *Navigator) MouseUp(x, y int, sel *offsets.Selection) {
	if n.menu.Visible() {
		n.hideMenu()
		return
	}
	if sel == nil || n.text == nil {
		return
	}
	s := *sel
	if !n.inBounds(s) {
		s = offsets.Selection{Start: -1, End: -1}
	}
	n.menu.Open(n.file, x, y, s, n.registry.Evaluate(s))
	n.view.ShowMenu(n.menu)
	if !s.Valid() || !n.registry.NeedsRemote() {
		return
	}

	n.menuSeq++
	seq := n.menuSeq
	pos := n.encode(s)
	n.loop.Async(func(ctx context.Context) func() {
		set, err := n.registry.Applicable(ctx, s, pos, n.asker)
		return func() {
			if seq != n.menuSeq || !n.menu.Visible() {
				return
			}
			if err != nil {
				logger.Warn("applicable modes query failed", "pos", pos, "error", err)
			}
			n.menu.Apply(set)
			n.view.ShowMenu(n.menu)
		}
	})
}

// Choose dispatches the menu entry id for the menu's selection. Disabled or
// unknown entries are ignored and the menu stays open. A menu opened on
// another file is dismissed without a query.
func (n *Navigator) Choose(id string) bool {
	if n.menu.Visible() && n.menu.File() != n.file {
		n.hideMenu()
		return false
	}
	mode, ok := n.menu.Choose(id)
	if !ok {
		return false
	}
	sel := n.menu.Selection()
	n.hideMenu()
	n.Query(mode.ID, sel)
	return true
}

// ChooseCurrent dispatches the highlighted menu entry.
func (n *Navigator) ChooseCurrent() bool {
	return n.Choose(n.menu.Current())
}

// Query runs mode on sel in the current file. The wait message is shown at
// once and replaced by the linkified answer, or by the error message. An
// answer arriving after a newer query, or after the file changed, is
// dropped.
func (n *Navigator) Query(mode string, sel offsets.Selection) {
	if n.text == nil || !sel.Valid() || !n.inBounds(sel) {
		return
	}
	n.writeOutput(n.waitMsg)

	n.querySeq++
	seq := n.querySeq
	file := n.file
	pos := n.encode(sel)
	n.queryPending = true
	logger.Debug("query", "mode", mode, "pos", pos, "seq", seq)
	n.loop.Async(func(ctx context.Context) func() {
		out, err := n.queries.Query(ctx, mode, pos)
		return func() {
			if seq != n.querySeq {
				logger.Debug("dropping stale query", "mode", mode, "seq", seq)
				return
			}
			n.queryPending = false
			if file != n.file {
				logger.Debug("dropping query for previous file", "file", file)
				n.view.ShowOutput(nil)
				return
			}
			if err != nil {
				logger.Warn("query failed", "mode", mode, "pos", pos, "error", err)
				n.writeOutput(n.errMsg)
				return
			}
			n.writeOutput(out)
		}
	})
}

// Escape dismisses the menu, or passes escape on to the view when no menu
// is open.
func (n *Navigator) Escape() {
	if n.menu.Visible() {
		n.hideMenu()
		return
	}
	n.view.Escape()
}

// ClickOutside dismisses the menu after a click away from it.
func (n *Navigator) ClickOutside() {
	if n.menu.Visible() {
		n.hideMenu()
	}
}

func (n *Navigator) hideMenu() {
	n.menuSeq++
	n.menu.Hide()
	n.view.HideMenu()
}

func (n *Navigator) inBounds(s offsets.Selection) bool {
	return s.End <= len(n.text.Units())
}

func (n *Navigator) encode(s offsets.Selection) string {
	br := n.text.ByteRange(s)
	return position.Encode(n.file, br.Start, br.End)
}
