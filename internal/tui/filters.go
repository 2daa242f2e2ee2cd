package tui

import (
	"strings"
	"time"

	"propadmin/internal/grid"

	"github.com/araddon/dateparse"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const dateInputLayout = "2006-01-02"

// filterEntry is one line of the filter panel. A period entry drives the date range through
// named periods instead of a single filter key.
type filterEntry struct {
	key    string
	label  string
	period bool
}

func (t *gridTab) filterEntries() []filterEntry {
	var out []filterEntry
	hasFrom, hasTo := false, false
	for _, f := range t.g.Config().Filters {
		switch f.Key {
		case grid.DateFromKey:
			hasFrom = true
		case grid.DateToKey:
			hasTo = true
		}
	}
	if hasFrom && hasTo {
		out = append(out, filterEntry{key: grid.DateRangeKey, label: "Date range", period: true})
	}
	for _, f := range t.g.Config().Filters {
		out = append(out, filterEntry{key: f.Key, label: f.Label})
	}
	return out
}

func (t *gridTab) filterEntryValue(e filterEntry) string {
	st := t.g.State()
	if e.period {
		for _, c := range t.g.Chips() {
			if c.Key == grid.DateRangeKey {
				return c.Value
			}
		}
		return ""
	}
	v := st.Filter(e.key)
	if v == "" {
		return ""
	}
	if f, ok := t.filterConfig(e.key); ok {
		return f.LabelFor(v)
	}
	return v
}

func (m *appModel) openFilterPanel() {
	m.modal = modalFilters
	t := m.activeTab()
	if t == nil {
		return
	}
	if n := len(t.filterEntries()); m.filterCursor >= n {
		m.filterCursor = 0
	}
}

func (m *appModel) updateFilterPanel(msg tea.KeyMsg) tea.Cmd {
	t := m.activeTab()
	if t == nil {
		m.modal = modalNone
		return nil
	}
	entries := t.filterEntries()
	switch msg.String() {
	case "esc", "q", "f":
		m.modal = modalNone
		return nil
	case "up", "k", "ctrl+p":
		if m.filterCursor > 0 {
			m.filterCursor--
		}
		return nil
	case "down", "j", "ctrl+n":
		if m.filterCursor < len(entries)-1 {
			m.filterCursor++
		}
		return nil
	}
	if m.filterCursor < 0 || m.filterCursor >= len(entries) {
		return nil
	}
	e := entries[m.filterCursor]
	switch msg.String() {
	case "backspace", "delete", "x":
		changed := false
		if e.period {
			changed = t.g.RemoveChip(grid.DateRangeKey)
		} else {
			changed = t.g.SetFilter(e.key, "")
		}
		if changed {
			return m.loadCmd(t)
		}
		return nil
	case "enter":
		return m.editFilter(t, e)
	}
	return nil
}

func (m *appModel) editFilter(t *gridTab, e filterEntry) tea.Cmd {
	m.filterKey = e.key
	m.pickCursor = 0
	m.pickLoading = false
	m.pickPeriod = e.period

	if e.period {
		m.pickOptions = periodPickOptions()
		m.selectPickValue(t.g.State().Filter(grid.PeriodKey))
		m.modal = modalFilterPick
		return nil
	}

	f, ok := t.filterConfig(e.key)
	if !ok {
		return nil
	}
	if f.Kind == grid.FilterText {
		m.filterInput.SetValue(t.g.State().Filter(e.key))
		m.filterInput.CursorEnd()
		m.filterInput.Placeholder = f.Label
		if e.key == grid.DateFromKey || e.key == grid.DateToKey {
			m.filterInput.Placeholder = "YYYY-MM-DD"
		}
		m.modal = modalFilterText
		return m.filterInput.Focus()
	}

	m.modal = modalFilterPick
	m.pickOptions = withAnyOption(f.Options)
	m.selectPickValue(t.g.State().Filter(e.key))
	if _, loaded := t.opts[f.Key]; f.OptionsURL != "" && !loaded {
		m.pickLoading = true
		return m.optionsCmd(t, f)
	}
	return nil
}

func withAnyOption(opts []grid.Option) []grid.Option {
	out := make([]grid.Option, 0, len(opts)+1)
	out = append(out, grid.Option{Value: "", Label: "(any)"})
	return append(out, opts...)
}

func periodPickOptions() []grid.Option {
	opts := make([]grid.Option, 0, len(grid.Periods))
	for _, p := range grid.Periods {
		opts = append(opts, grid.Option{Value: p.Name, Label: p.Label})
	}
	return withAnyOption(opts)
}

func (m *appModel) selectPickValue(v string) {
	for i, o := range m.pickOptions {
		if o.Value == v {
			m.pickCursor = i
			return
		}
	}
}

// normalizeFilterValue accepts loose date input for the date bounds and sends ISO dates.
func normalizeFilterValue(key, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" || (key != grid.DateFromKey && key != grid.DateToKey) {
		return value, true
	}
	d, err := dateparse.ParseAny(value)
	if err != nil {
		return value, false
	}
	return d.Format(dateInputLayout), true
}

func (m *appModel) updateFilterText(msg tea.KeyMsg) tea.Cmd {
	t := m.activeTab()
	switch msg.String() {
	case "esc", "ctrl+g":
		m.filterInput.Blur()
		m.modal = modalFilters
		return nil
	case "enter":
		v, ok := normalizeFilterValue(m.filterKey, m.filterInput.Value())
		if !ok {
			return m.showError("Not a date: " + v)
		}
		m.filterInput.Blur()
		m.modal = modalFilters
		if t != nil && t.g.SetFilter(m.filterKey, v) {
			return m.loadCmd(t)
		}
		return nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return cmd
}

func (m *appModel) updateFilterPick(msg tea.KeyMsg) tea.Cmd {
	t := m.activeTab()
	back := modalFilters
	switch msg.String() {
	case "esc", "ctrl+g", "q":
		m.modal = back
		return nil
	case "up", "k", "ctrl+p":
		if m.pickCursor > 0 {
			m.pickCursor--
		}
		return nil
	case "down", "j", "ctrl+n":
		if m.pickCursor < len(m.pickOptions)-1 {
			m.pickCursor++
		}
		return nil
	case "enter":
		if t == nil || m.pickCursor >= len(m.pickOptions) {
			return nil
		}
		v := m.pickOptions[m.pickCursor].Value
		m.modal = back
		changed := false
		if m.pickPeriod {
			changed = t.g.ApplyPeriod(v, time.Now())
		} else {
			changed = t.g.SetFilter(m.filterKey, v)
		}
		if changed {
			return m.loadCmd(t)
		}
	}
	return nil
}

func (m *appModel) applyOptionsLoaded(msg optionsLoadedMsg) tea.Cmd {
	t := m.tabs[msg.view]
	if t == nil {
		return nil
	}
	if msg.err != nil {
		if m.modal == modalFilterPick && m.filterKey == msg.key {
			m.pickLoading = false
		}
		return m.showError("Could not load options: " + grid.UserMessage(msg.err))
	}
	t.opts[msg.key] = msg.opts
	if m.modal == modalFilterPick && m.filterKey == msg.key && m.active == msg.view {
		cur := ""
		if m.pickCursor < len(m.pickOptions) {
			cur = m.pickOptions[m.pickCursor].Value
		}
		m.pickOptions = withAnyOption(msg.opts)
		m.pickCursor = 0
		m.selectPickValue(cur)
		m.pickLoading = false
	}
	return nil
}

func (m appModel) renderFilterPanel() string {
	t := m.activeTab()
	if t == nil {
		return ""
	}
	bodyW := modalBodyWidth(m.width)
	entries := t.filterEntries()
	if len(entries) == 0 {
		return renderModalBox(m.width, "Filters", styleMuted().Render("This view has no filters."))
	}
	labelW := 0
	for _, e := range entries {
		if w := lipgloss.Width(e.label); w > labelW {
			labelW = w
		}
	}
	sel := lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	var lines []string
	for i, e := range entries {
		v := t.filterEntryValue(e)
		if v == "" {
			v = "any"
		}
		ln := fitLine(e.label+strings.Repeat(" ", labelW-lipgloss.Width(e.label))+"  "+v, bodyW)
		if i == m.filterCursor {
			ln = sel.Render(ln)
		}
		lines = append(lines, ln)
	}
	lines = append(lines, "", styleMuted().Width(bodyW).Render("enter: edit   x: clear   esc: close"))
	return renderModalBox(m.width, "Filters", strings.Join(lines, "\n"))
}

func (m appModel) renderFilterTextModal() string {
	bodyW := modalBodyWidth(m.width)
	title := "Filter"
	if t := m.activeTab(); t != nil {
		if f, ok := t.filterConfig(m.filterKey); ok {
			title = f.Label
		}
	}
	content := inputLine(bodyW, m.filterInput.View()) + "\n\n" +
		styleMuted().Width(bodyW).Render("enter: apply (empty clears)   esc: back")
	return renderModalBox(m.width, title, content)
}

func (m appModel) renderFilterPickModal() string {
	bodyW := modalBodyWidth(m.width)
	title := "Date range"
	if !m.pickPeriod {
		if t := m.activeTab(); t != nil {
			if f, ok := t.filterConfig(m.filterKey); ok {
				title = f.Label
			}
		}
	}
	sel := lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	var lines []string
	for i, o := range m.pickOptions {
		label := o.Label
		if label == "" {
			label = o.Value
		}
		ln := fitLine(label, bodyW)
		if i == m.pickCursor {
			ln = sel.Render(ln)
		}
		lines = append(lines, ln)
	}
	if m.pickLoading {
		lines = append(lines, styleMuted().Render(m.spinner.View()+" loading options…"))
	}
	lines = append(lines, "", styleMuted().Width(bodyW).Render("enter: apply   esc: back"))
	return renderModalBox(m.width, title, strings.Join(lines, "\n"))
}
