package ui

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kobzarvs/qguru/internal/highlight"
	"github.com/kobzarvs/qguru/internal/linkify"
)

type area int

const (
	areaNone area = iota
	areaHeader
	areaSource
	areaSeparator
	areaOutput
	areaMenu
)

// layout splits the screen into header, source pane, separator and output
// pane, top to bottom.
type layout struct {
	w, h    int
	srcTop  int
	srcH    int
	sepY    int
	outTop  int
	outH    int
	gutterW int
}

func (b *Browser) layout() layout {
	w, h := b.width, b.height
	outH := min(b.outH, max(h-4, 0))
	sepY := max(h-outH-1, 1)
	l := layout{
		w:      w,
		h:      h,
		srcTop: 1,
		srcH:   max(sepY-1, 0),
		sepY:   sepY,
		outTop: sepY + 1,
		outH:   outH,
	}
	l.gutterW = len(strconv.Itoa(max(b.sourceLines(), 1))) + 1
	return l
}

func (b *Browser) areaAt(x, y int) area {
	if b.menuVisible() {
		if _, ok := b.menuItemAt(x, y); ok {
			return areaMenu
		}
	}
	l := b.layout()
	switch {
	case y == 0:
		return areaHeader
	case y >= l.srcTop && y < l.srcTop+l.srcH:
		return areaSource
	case y == l.sepY:
		return areaSeparator
	case y >= l.outTop && y < l.outTop+l.outH:
		return areaOutput
	}
	return areaNone
}

func (b *Browser) Render(s tcell.Screen) {
	b.width, b.height = s.Size()
	b.clampScroll()
	b.clampOutScroll()
	b.clampPickScroll()
	s.Clear()
	l := b.layout()
	b.drawHeader(s, l)
	if b.picking {
		b.drawPicker(s, l)
	} else {
		b.drawSource(s, l)
	}
	b.drawSeparator(s, l)
	b.drawOutput(s, l)
	if b.menuVisible() {
		b.drawMenu(s, l)
	}
	s.HideCursor()
	s.Show()
}

func drawText(s tcell.Screen, x, y, maxX int, text string, style tcell.Style) int {
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > maxX {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x += rw
	}
	return x
}

func fill(s tcell.Screen, x, y, maxX int, style tcell.Style) {
	for ; x < maxX; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func (b *Browser) drawHeader(s tcell.Screen, l layout) {
	title := b.title
	if title == "" {
		title = "qguru"
	}
	fill(s, 0, 0, 1, b.styles.Header)
	x := drawText(s, 1, 0, l.w, title, b.styles.Header)
	fill(s, x, 0, l.w, b.styles.Header)
}

func (b *Browser) drawSource(s tcell.Screen, l layout) {
	if l.srcH <= 0 {
		return
	}
	if b.text == nil {
		for y := l.srcTop; y < l.srcTop+l.srcH; y++ {
			fill(s, 0, y, l.w, b.styles.Main)
		}
		return
	}
	var spans map[int][]highlight.Span
	if b.hl != nil {
		spans = b.hl.Lines(b.scroll, b.scroll+l.srcH-1)
	}
	selStart, selEnd := b.selectionUnits()
	jumping := b.jumpLine > 0 && b.now().Before(b.jumpUntil)
	n := b.sourceLines()
	for i := 0; i < l.srcH; i++ {
		y := l.srcTop + i
		row := b.scroll + i
		if row >= n {
			fill(s, 0, y, l.w, b.styles.Main)
			continue
		}
		num := strconv.Itoa(row + 1)
		x := drawText(s, 0, y, l.gutterW, spaces(l.gutterW-1-len(num))+num, b.styles.LineNumber)
		fill(s, x, y, l.gutterW, b.styles.LineNumber)

		lineStyle := b.styles.Main
		jumpFrom, jumpTo := -1, -1
		if jumping && row == b.jumpLine-1 {
			lineStyle = b.styles.Jump
		}
		if jumping && b.jumpSel != nil {
			jumpFrom, jumpTo = b.jumpColumns(row)
		}
		b.drawLine(s, l, y, row, spans[row], lineStyle, selStart, selEnd, jumpFrom, jumpTo)
	}
}

func (b *Browser) drawLine(s tcell.Screen, l layout, y, row int, spans []highlight.Span, lineStyle tcell.Style, selStart, selEnd, jumpFrom, jumpTo int) {
	line := b.text.Line(row)
	x := l.gutterW
	col := 0
	off := b.text.Offset(row, 0)
	for idx, r := range line {
		if x >= l.w {
			break
		}
		style := lineStyle
		if kind, ok := highlight.KindAt(spans, idx); ok {
			if st, ok := b.styles.forHighlight(kind); ok {
				fg, _, _ := st.Decompose()
				style = style.Foreground(fg)
			}
		}
		if idx >= jumpFrom && idx < jumpTo {
			_, bg, _ := b.styles.Jump.Decompose()
			style = style.Background(bg)
		}
		if off >= selStart && off < selEnd {
			_, bg, _ := b.styles.Selection.Decompose()
			style = style.Background(bg)
		}
		off += utf16Len(r)
		if r == '\t' {
			n := b.tabW - (col % b.tabW)
			for i := 0; i < n && x < l.w; i++ {
				s.SetContent(x, y, ' ', nil, style)
				x++
				col++
			}
			continue
		}
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > l.w {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x += rw
		col += rw
	}
	fill(s, x, y, l.w, lineStyle)
}

// jumpColumns returns the rune columns of row covered by the range of the
// last jump.
func (b *Browser) jumpColumns(row int) (int, int) {
	r := b.jumpSel
	line := row + 1
	if line < r.FromLine || line > r.ToLine {
		return -1, -1
	}
	runes := b.text.Line(row)
	from, to := 0, len(runes)
	if line == r.FromLine {
		from = runeColumn(runes, r.FromCol-1)
	}
	if line == r.ToLine {
		to = runeColumn(runes, r.ToCol-1)
		if to == from {
			to = from + 1
		}
	}
	return from, to
}

// runeColumn converts a 0-based byte column of line into a rune column.
func runeColumn(line []rune, byteCol int) int {
	n := 0
	for i, r := range line {
		if n >= byteCol {
			return i
		}
		n += utf8.RuneLen(r)
	}
	return len(line)
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = ' '
	}
	return string(buf)
}

// drawPicker lists the files to open in the source pane.
func (b *Browser) drawPicker(s tcell.Screen, l layout) {
	for i := 0; i < l.srcH; i++ {
		y := l.srcTop + i
		idx := b.pickScroll + i
		if idx >= len(b.picks) {
			fill(s, 0, y, l.w, b.styles.Main)
			continue
		}
		style := b.styles.Main
		if idx == b.pickIndex {
			style = b.styles.MenuSelected
		}
		x := drawText(s, 0, y, l.w, " "+strings.TrimPrefix(b.picks[idx], b.pickDir), style)
		fill(s, x, y, l.w, style)
	}
}

// pickAt returns the index of the file listed at row y.
func (b *Browser) pickAt(y int) (int, bool) {
	l := b.layout()
	idx := b.pickScroll + y - l.srcTop
	if y < l.srcTop || y >= l.srcTop+l.srcH || idx >= len(b.picks) {
		return -1, false
	}
	return idx, true
}

func (b *Browser) drawSeparator(s tcell.Screen, l layout) {
	label := " Output "
	if b.picking {
		label = fmt.Sprintf(" Open file (%d) %s ", len(b.picks), b.pickDir)
	}
	if b.menuVisible() {
		items := b.menu.Items()
		if i := b.menu.Index(); i >= 0 && i < len(items) {
			label = " " + items[i].Mode.Name + ": " + items[i].Mode.Description + " "
		}
	}
	x := drawText(s, 0, l.sepY, l.w, label, b.styles.Header)
	fill(s, x, l.sepY, l.w, b.styles.Header)
}

func (b *Browser) drawOutput(s tcell.Screen, l layout) {
	for i := 0; i < l.outH; i++ {
		y := l.outTop + i
		row := b.outScroll + i
		x := 0
		if row < len(b.output) {
			for _, seg := range b.output[row] {
				style := b.styles.Output
				if seg.IsLink() {
					style = b.styles.Link
				}
				x = drawText(s, x, y, l.w, seg.Text, style)
			}
		}
		fill(s, x, y, l.w, b.styles.Output)
	}
}

// segmentAt returns the output segment drawn at x, y.
func (b *Browser) segmentAt(x, y int) (linkify.Segment, bool) {
	l := b.layout()
	row := b.outScroll + y - l.outTop
	if y < l.outTop || row < 0 || row >= len(b.output) {
		return linkify.Segment{}, false
	}
	cx := 0
	for _, seg := range b.output[row] {
		w := runewidth.StringWidth(seg.Text)
		if x >= cx && x < cx+w {
			return seg, true
		}
		cx += w
	}
	return linkify.Segment{}, false
}

// menuRect returns the menu box pinned at its anchor and kept on screen.
func (b *Browser) menuRect() (x, y, w, h int) {
	items := b.menu.Items()
	for _, it := range items {
		w = max(w, runewidth.StringWidth(it.Mode.Name)+2)
	}
	h = len(items)
	x, y = b.menu.Anchor()
	if x+w > b.width {
		x = max(b.width-w, 0)
	}
	if y+h > b.height {
		y = max(b.height-h, 0)
	}
	return x, y, w, h
}

func (b *Browser) menuItemAt(x, y int) (int, bool) {
	mx, my, mw, mh := b.menuRect()
	if x < mx || x >= mx+mw || y < my || y >= my+mh {
		return -1, false
	}
	return y - my, true
}

func (b *Browser) drawMenu(s tcell.Screen, l layout) {
	mx, my, mw, _ := b.menuRect()
	for i, it := range b.menu.Items() {
		style := b.styles.Menu
		switch {
		case !it.Enabled:
			style = b.styles.MenuDisabled
		case i == b.menu.Index():
			style = b.styles.MenuSelected
		}
		y := my + i
		x := drawText(s, mx, y, min(mx+mw, l.w), " "+it.Mode.Name, style)
		fill(s, x, y, min(mx+mw, l.w), style)
	}
}
