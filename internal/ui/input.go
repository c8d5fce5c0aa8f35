package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// HandleKey applies a key press and reports whether the browser should
// quit.
func (b *Browser) HandleKey(ev *tcell.EventKey) bool {
	action := b.keymap[keyString(ev)]
	l := b.layout()
	if b.picking {
		return b.pickKey(action, l)
	}
	switch action {
	case "quit":
		return true
	case "escape":
		b.ctrl.Escape()
	case "up":
		if b.menuVisible() {
			b.menu.Move(-1)
		} else {
			b.scroll--
		}
	case "down":
		if b.menuVisible() {
			b.menu.Move(1)
		} else {
			b.scroll++
		}
	case "page_up":
		b.scroll -= max(l.srcH-1, 1)
	case "page_down":
		b.scroll += max(l.srcH-1, 1)
	case "top":
		b.scroll = 0
	case "bottom":
		b.scroll = b.sourceLines()
	case "choose":
		if b.menuVisible() {
			b.ctrl.ChooseCurrent()
		}
	case "files":
		b.ctrl.ListFiles()
	case "back":
		if e, ok := b.hist.Back(); ok {
			b.ctrl.Restore(e)
		}
	case "forward":
		if e, ok := b.hist.Forward(); ok {
			b.ctrl.Restore(e)
		}
	}
	b.clampScroll()
	return false
}

// pickKey applies a key press while the file picker is open.
func (b *Browser) pickKey(action string, l layout) bool {
	switch action {
	case "quit":
		return true
	case "escape", "files":
		b.picking = false
	case "up":
		b.movePick(-1)
	case "down":
		b.movePick(1)
	case "page_up":
		b.movePick(-max(l.srcH-1, 1))
	case "page_down":
		b.movePick(max(l.srcH-1, 1))
	case "top":
		b.pickIndex = 0
	case "bottom":
		b.movePick(len(b.picks))
	case "choose":
		b.openPick(b.pickIndex)
	}
	return false
}

func (b *Browser) HandleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	switch btn := ev.Buttons(); {
	case btn&tcell.WheelUp != 0:
		b.wheel(x, y, -3)
	case btn&tcell.WheelDown != 0:
		b.wheel(x, y, 3)
	case btn&tcell.Button1 != 0:
		if b.pressed {
			b.drag(x, y)
			return
		}
		b.pressAt(x, y)
	case btn == tcell.ButtonNone:
		if b.pressed {
			b.release(x, y)
			return
		}
		b.hover(x, y)
	}
}

func (b *Browser) wheel(x, y, delta int) {
	if b.picking && b.areaAt(x, y) == areaSource {
		b.movePick(delta)
		return
	}
	if b.areaAt(x, y) == areaOutput {
		b.outScroll += delta
		b.clampOutScroll()
		return
	}
	b.scroll += delta
	b.clampScroll()
}

func (b *Browser) pressAt(x, y int) {
	b.pressed = true
	b.pressArea = b.areaAt(x, y)
	b.menuPress = -1
	switch b.pressArea {
	case areaMenu:
		b.menuPress, _ = b.menuItemAt(x, y)
		b.menu.SetIndex(b.menuPress)
	case areaSource:
		b.press = b.cellAt(x, y)
		b.head = b.press
	}
}

func (b *Browser) drag(x, y int) {
	switch b.pressArea {
	case areaSource:
		l := b.layout()
		// Dragging past the pane edges scrolls it.
		if y < l.srcTop && b.scroll > 0 {
			b.scroll--
		} else if y >= l.srcTop+l.srcH {
			b.scroll++
			b.clampScroll()
		}
		b.head = b.cellAt(x, min(max(y, l.srcTop), l.srcTop+l.srcH-1))
	case areaMenu:
		if i, ok := b.menuItemAt(x, y); ok {
			b.menu.SetIndex(i)
		}
	}
}

func (b *Browser) release(x, y int) {
	b.pressed = false
	switch b.pressArea {
	case areaMenu:
		i, ok := b.menuItemAt(x, y)
		items := b.menu.Items()
		if ok && i == b.menuPress && i < len(items) {
			b.ctrl.Choose(items[i].Mode.ID)
		}
		return
	case areaSource:
		if b.picking {
			if i, ok := b.pickAt(y); ok && b.areaAt(x, y) == areaSource {
				b.openPick(i)
			}
			return
		}
		if b.text == nil {
			b.ctrl.MouseUp(x, y, nil)
			return
		}
		l := b.layout()
		b.head = b.cellAt(x, min(max(y, l.srcTop), l.srcTop+l.srcH-1))
		sel := b.text.Select(b.press.row, b.press.col, b.head.row, b.head.col)
		b.ctrl.MouseUp(x, y, &sel)
		return
	case areaOutput:
		if b.menuVisible() {
			b.ctrl.ClickOutside()
			return
		}
		if seg, ok := b.segmentAt(x, y); ok && b.areaAt(x, y) == areaOutput {
			b.ctrl.Activate(seg)
		}
		return
	}
	b.ctrl.MouseUp(x, y, nil)
}

func (b *Browser) hover(x, y int) {
	if !b.menuVisible() {
		return
	}
	if i, ok := b.menuItemAt(x, y); ok {
		b.menu.SetIndex(i)
	}
}

// cellAt maps a point of the source pane to a line and rune column.
func (b *Browser) cellAt(x, y int) cell {
	l := b.layout()
	row := b.scroll + y - l.srcTop
	n := b.sourceLines()
	if row >= n {
		row = max(n-1, 0)
	}
	if row < 0 {
		row = 0
	}
	var line []rune
	if b.text != nil {
		line = b.text.Line(row)
	}
	return cell{row: row, col: visualToLogicalCol(line, x-l.gutterW, b.tabW)}
}

// visualToLogicalCol returns the rune index at screen column visualX of a
// line with tabs expanded.
func visualToLogicalCol(line []rune, visualX int, tabWidth int) int {
	if tabWidth < 1 {
		tabWidth = 1
	}
	if visualX <= 0 {
		return 0
	}
	col := 0
	for i, r := range line {
		var advance int
		if r == '\t' {
			advance = tabWidth - (col % tabWidth)
		} else {
			advance = runewidth.RuneWidth(r)
		}
		if col+advance > visualX {
			return i
		}
		col += advance
		if col >= visualX {
			return i + 1
		}
	}
	return len(line)
}

// selectionUnits returns the selection to paint, as code-unit offsets, or
// an empty range.
func (b *Browser) selectionUnits() (int, int) {
	if b.text == nil {
		return -1, -1
	}
	if b.pressed && b.pressArea == areaSource && !b.picking {
		sel := b.text.Select(b.press.row, b.press.col, b.head.row, b.head.col)
		return sel.Start, sel.End
	}
	if b.menuVisible() {
		sel := b.menu.Selection()
		if sel.Valid() {
			return sel.Start, sel.End
		}
	}
	return -1, -1
}
