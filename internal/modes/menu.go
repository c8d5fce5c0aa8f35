package modes

import "github.com/kobzarvs/qguru/internal/offsets"

// Item is a menu entry. Disabled entries stay listed but cannot be chosen.
type Item struct {
	Mode    Mode
	Enabled bool
}

// Menu is the pop-up list of modes shown for a selection.
type Menu struct {
	items   []Item
	index   int
	visible bool
	x, y    int
	file    string
	sel     offsets.Selection
}

// NewMenu creates a hidden menu listing the menu modes of r.
func NewMenu(r *Registry) *Menu {
	m := &Menu{}
	for _, mode := range r.modes {
		if mode.Menu {
			m.items = append(m.items, Item{Mode: mode})
		}
	}
	return m
}

// Open shows the menu pinned at x, y for sel in file, enabling the entries
// in applicable. Entries missing from applicable are disabled.
func (m *Menu) Open(file string, x, y int, sel offsets.Selection, applicable map[string]bool) {
	m.x, m.y = x, y
	m.file = file
	m.sel = sel
	m.index = 0
	m.visible = true
	m.Apply(applicable)
}

// Apply enables exactly the entries whose ids are in applicable.
func (m *Menu) Apply(applicable map[string]bool) {
	for i := range m.items {
		m.items[i].Enabled = applicable[m.items[i].Mode.ID]
	}
}

func (m *Menu) Hide() {
	m.visible = false
}

func (m *Menu) Visible() bool {
	return m.visible
}

// Anchor returns the point the menu is pinned at.
func (m *Menu) Anchor() (int, int) {
	return m.x, m.y
}

// File returns the file the selection belongs to.
func (m *Menu) File() string {
	return m.file
}

// Selection returns the selection the menu was opened for.
func (m *Menu) Selection() offsets.Selection {
	return m.sel
}

// Items returns the entries to display.
func (m *Menu) Items() []Item {
	return append([]Item(nil), m.items...)
}

// Index returns the highlighted entry.
func (m *Menu) Index() int {
	return m.index
}

// SetIndex highlights entry i.
func (m *Menu) SetIndex(i int) {
	if i >= 0 && i < len(m.items) {
		m.index = i
	}
}

// Move shifts the highlight by delta, wrapping around.
func (m *Menu) Move(delta int) {
	n := len(m.items)
	if n == 0 {
		return
	}
	m.index = ((m.index+delta)%n + n) % n
}

// Choose returns the mode with the given id if the menu is visible and the
// entry is enabled. Choosing a disabled entry does nothing.
func (m *Menu) Choose(id string) (Mode, bool) {
	if !m.visible {
		return Mode{}, false
	}
	for _, it := range m.items {
		if it.Mode.ID == id {
			if !it.Enabled {
				return Mode{}, false
			}
			return it.Mode, true
		}
	}
	return Mode{}, false
}

// Current returns the highlighted entry's id.
func (m *Menu) Current() string {
	if m.index < 0 || m.index >= len(m.items) {
		return ""
	}
	return m.items[m.index].Mode.ID
}
