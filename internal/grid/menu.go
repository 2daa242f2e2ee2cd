package grid

import "unicode/utf8"

// Row action names. ActionView routes to OnRowClick, everything else to OnAction.
const (
	ActionView    = "view"
	ActionGallery = "gallery"
	ActionPDF     = "pdf"
	ActionEdit    = "edit"
	ActionHistory = "history"
	ActionDelete  = "delete"
)

// ActionConfig decides which entries the row menu offers.
type ActionConfig struct {
	View    bool
	Edit    bool
	History bool
	Delete  bool
	// GalleryKey/PDFKey name row fields; the entry is offered only when that field is non-empty.
	GalleryKey string
	PDFKey     string
}

type MenuEntry struct {
	Action string
	Label  string
}

func hasValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case []any:
		return len(t) > 0
	case string:
		return t != ""
	case bool:
		return t
	}
	return true
}

// Entries derives the menu entries for row.
func (c ActionConfig) Entries(row Row) []MenuEntry {
	var out []MenuEntry
	if c.View {
		out = append(out, MenuEntry{Action: ActionView, Label: "View"})
	}
	if c.GalleryKey != "" && hasValue(row[c.GalleryKey]) {
		out = append(out, MenuEntry{Action: ActionGallery, Label: "Gallery"})
	}
	if c.PDFKey != "" && hasValue(row[c.PDFKey]) {
		out = append(out, MenuEntry{Action: ActionPDF, Label: "Open PDF"})
	}
	if c.Edit {
		out = append(out, MenuEntry{Action: ActionEdit, Label: "Edit"})
	}
	if c.History {
		out = append(out, MenuEntry{Action: ActionHistory, Label: "History"})
	}
	if c.Delete {
		out = append(out, MenuEntry{Action: ActionDelete, Label: "Delete"})
	}
	return out
}

type Point struct{ X, Y int }

type Size struct{ W, H int }

type Rect struct{ X, Y, W, H int }

func (r Rect) Bottom() int { return r.Y + r.H }

func (r Rect) Right() int { return r.X + r.W }

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

const (
	// NarrowViewport is the width below which the menu spans the viewport.
	NarrowViewport = 60
	menuMargin     = 1
	menuMinWidth   = 16
	// border + horizontal padding
	menuChromeW = 4
	menuChromeH = 2
)

// Menu is the single row-action menu shared by every row of a grid. Owner is the id of the
// row whose trigger opened it; opening it for another row reassigns it.
type Menu struct {
	owner   string
	open    bool
	entries []MenuEntry
	focus   int
	trigger Rect
	rect    Rect
}

func (m *Menu) IsOpen() bool { return m.open }

// Owner returns the row id the menu is bound to ("" when closed).
func (m *Menu) Owner() string {
	if !m.open {
		return ""
	}
	return m.owner
}

func (m *Menu) Entries() []MenuEntry { return m.entries }

func (m *Menu) Focus() int { return m.focus }

// Rect is the menu's placement in viewport coordinates.
func (m *Menu) Rect() Rect { return m.rect }

// Trigger is the placement of the control that opened the menu.
func (m *Menu) Trigger() Rect { return m.trigger }

func menuSize(entries []MenuEntry) Size {
	w := menuMinWidth
	for _, e := range entries {
		if lw := utf8.RuneCountInString(e.Label) + menuChromeW; lw > w {
			w = lw
		}
	}
	return Size{W: w, H: len(entries) + menuChromeH}
}

// placeMenu positions a menu of size sz next to trigger: below when it fits, otherwise above;
// right-aligned to the trigger unless the viewport is narrow.
func placeMenu(trigger Rect, sz Size, vp Size) Rect {
	r := Rect{W: sz.W, H: sz.H}
	if trigger.Bottom()+sz.H <= vp.H {
		r.Y = trigger.Bottom()
	} else {
		r.Y = trigger.Y - sz.H
		if r.Y < 0 {
			r.Y = 0
		}
	}
	if vp.W < NarrowViewport {
		r.X = menuMargin
		r.W = vp.W - 2*menuMargin
		if r.W < 1 {
			r.W = vp.W
			r.X = 0
		}
		return r
	}
	r.X = trigger.Right() - sz.W
	if r.X < 0 {
		r.X = 0
	}
	if r.Right() > vp.W {
		r.X = vp.W - sz.W
		if r.X < 0 {
			r.X = 0
		}
	}
	return r
}

// openFor binds the menu to rowID. It returns false when the call closed the menu instead (the
// same trigger was activated twice).
func (m *Menu) openFor(rowID string, entries []MenuEntry, trigger Rect, vp Size) bool {
	if m.open && m.owner == rowID {
		m.close()
		return false
	}
	m.owner = rowID
	m.open = true
	m.entries = entries
	m.focus = 0
	m.trigger = trigger
	m.rect = placeMenu(trigger, menuSize(entries), vp)
	return true
}

// close hides the menu and returns the row id whose trigger should take focus back.
func (m *Menu) close() string {
	owner := m.owner
	m.open = false
	m.entries = nil
	m.focus = 0
	m.owner = ""
	return owner
}

// MoveFocus moves the highlighted entry by delta with wraparound.
func (m *Menu) MoveFocus(delta int) {
	n := len(m.entries)
	if !m.open || n == 0 {
		return
	}
	m.focus = ((m.focus+delta)%n + n) % n
}

// Reposition recomputes the placement, e.g. after a terminal resize.
func (m *Menu) Reposition(trigger Rect, vp Size) {
	if !m.open {
		return
	}
	m.trigger = trigger
	m.rect = placeMenu(trigger, menuSize(m.entries), vp)
}

// EntryAt returns the index of the entry at p, or -1.
func (m *Menu) EntryAt(p Point) int {
	if !m.open || !m.rect.Contains(p) {
		return -1
	}
	i := p.Y - m.rect.Y - menuChromeH/2
	if i < 0 || i >= len(m.entries) {
		return -1
	}
	return i
}
