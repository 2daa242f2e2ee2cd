package tui

import (
	"strings"

	"propadmin/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

type viewItem struct {
	def store.ViewDef
}

func (i viewItem) Title() string {
	if i.def.Title != "" {
		return i.def.Title
	}
	return i.def.Name
}

func (i viewItem) Description() string {
	parts := []string{i.def.Name, i.def.Path}
	for _, k := range i.def.SortedStaticKeys() {
		parts = append(parts, k+"="+i.def.Static[k])
	}
	return strings.Join(parts, " · ")
}

func (i viewItem) FilterValue() string { return i.def.Name + " " + i.def.Title }

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	// The console draws its own header and footer.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	// Bubble list quits on ESC by default; here ESC cancels.
	l.KeyMap.Quit.SetKeys("q")
	l.KeyMap.CursorUp.SetKeys(append(l.KeyMap.CursorUp.Keys(), "ctrl+p")...)
	l.KeyMap.CursorDown.SetKeys(append(l.KeyMap.CursorDown.Keys(), "ctrl+n")...)
	return l
}

// newViewPicker lists the configured views with last preselected.
func newViewPicker(views *store.Views, last string) list.Model {
	var items []list.Item
	sel := 0
	if views != nil {
		for i, d := range views.Defs() {
			items = append(items, viewItem{def: d})
			if d.Name == last {
				sel = i
			}
		}
	}
	l := newList("Views", items)
	l.Select(sel)
	return l
}

func (m appModel) selectedPickerView() (string, bool) {
	it, ok := m.picker.SelectedItem().(viewItem)
	if !ok {
		return "", false
	}
	return it.def.Name, true
}

func (m appModel) renderPickerScreen() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Render("propadmin") +
		styleMuted().Render(" › views")
	hint := styleMuted().Render("enter: open   /: filter   ctrl+c: quit")
	if m.minibufferText != "" {
		hint = m.renderStatusLine()
	}
	body := m.picker.View()
	out := strings.Join([]string{header, "", body}, "\n")
	out = normalizePane(out, m.width, m.height-1)
	return out + "\n" + fitLine(hint, m.width)
}
