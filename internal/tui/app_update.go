package tui

import (
	"strings"
	"time"

	"propadmin/internal/grid"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.picker.SetSize(msg.Width, msg.Height-3)
		if m.screen == screenDetail {
			m.refreshDetail()
		}
		m.resizeSeq++
		seq := m.resizeSeq
		return m, tea.Tick(resizeSettle, func(time.Time) tea.Msg { return resizeDoneMsg{seq: seq} })

	case resizeDoneMsg:
		if msg.seq != m.resizeSeq {
			return m, nil
		}
		if t := m.activeTab(); t != nil {
			m.ensureCursorVisible(t)
			m.ensureColumnVisible(t)
			m.repositionMenu(t)
		}
		return m, nil

	case openViewMsg:
		return m, m.openView(msg.name)

	case loadedMsg:
		return m, m.applyLoaded(msg)

	case optionsLoadedMsg:
		return m, m.applyOptionsLoaded(msg)

	case detailLoadedMsg:
		return m, m.applyDetailLoaded(msg)

	case editFetchedMsg:
		if msg.err != nil {
			return m, m.showError("Could not fetch record: " + grid.UserMessage(msg.err))
		}
		cmd, err := m.openExternalEditor(msg)
		if err != nil {
			return m, m.showError("Edit failed: " + err.Error())
		}
		return m, cmd

	case externalEditorDoneMsg:
		return m, m.applyExternalEditorResult(msg)

	case mutationDoneMsg:
		return m, m.applyMutationDone(msg)

	case urlOpenDoneMsg:
		if msg.err != nil {
			return m, m.showError("Open failed: " + msg.err.Error())
		}
		return m, nil

	case searchDebounceMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		return m, m.applySearch()

	case minibufferTickMsg:
		m.clearMinibufferIfStale(time.Now())
		return m, nil

	case spinner.TickMsg:
		if !m.anyInflight() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m, m.updateMouse(msg)

	case tea.KeyMsg:
		return m, m.updateKey(msg)
	}

	if m.screen == screenPicker {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *appModel) updateKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	switch m.screen {
	case screenPicker:
		return m.updatePicker(msg)
	case screenDetail:
		return m.updateDetail(msg)
	}

	switch m.modal {
	case modalFilters:
		return m.updateFilterPanel(msg)
	case modalFilterText:
		return m.updateFilterText(msg)
	case modalFilterPick:
		return m.updateFilterPick(msg)
	case modalConfirmDelete, modalConfirmBulkDelete:
		return m.updateConfirmDelete(msg)
	}

	t := m.activeTab()
	if t == nil {
		m.screen = screenPicker
		return nil
	}
	if t.g.Menu().IsOpen() {
		return m.updateMenuKey(t, msg)
	}
	switch m.focus {
	case focusSearch:
		return m.updateSearchKey(t, msg)
	case focusChips:
		return m.updateChipsKey(t, msg)
	}
	return tea.Batch(m.updateGridKey(t, msg), m.flushEvents(t))
}

func (m *appModel) updatePicker(msg tea.KeyMsg) tea.Cmd {
	if m.picker.FilterState() != list.Filtering {
		switch msg.String() {
		case "q":
			return tea.Quit
		case "enter":
			if name, ok := m.selectedPickerView(); ok {
				return m.openView(name)
			}
			return nil
		case "esc":
			if m.picker.FilterState() == list.Unfiltered && m.active != "" {
				m.screen = screenGrid
				return nil
			}
		}
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return cmd
}

func (m *appModel) updateMenuKey(t *gridTab, msg tea.KeyMsg) tea.Cmd {
	menu := t.g.Menu()
	switch msg.String() {
	case "up", "k", "ctrl+p", "shift+tab":
		menu.MoveFocus(-1)
	case "down", "j", "ctrl+n", "tab":
		menu.MoveFocus(1)
	case "enter", " ":
		t.g.MenuSelect()
		return m.flushEvents(t)
	case "esc", "x", ".", "q":
		m.focusRow(t, t.g.MenuEscape())
	}
	return nil
}

// focusRow puts the row cursor back on id (the trigger that opened the menu).
func (m *appModel) focusRow(t *gridTab, id string) {
	if i := rowIndex(t, id); i >= 0 {
		t.cursor = i
		m.ensureCursorVisible(t)
	}
}

func (m *appModel) resetRowCursor(t *gridTab) {
	t.cursor = 0
	t.offset = 0
}

func (m *appModel) updateGridKey(t *gridTab, msg tea.KeyMsg) tea.Cmd {
	n := len(t.g.Data())
	switch {
	case key.Matches(msg, m.keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
		m.ensureCursorVisible(t)
	case key.Matches(msg, m.keys.Down):
		if t.cursor < n-1 {
			t.cursor++
		}
		m.ensureCursorVisible(t)
	case msg.String() == "g" || msg.String() == "home":
		t.cursor = 0
		m.ensureCursorVisible(t)
	case msg.String() == "G" || msg.String() == "end":
		t.cursor = n - 1
		t.clampCursor(n)
		m.ensureCursorVisible(t)
	case key.Matches(msg, m.keys.Left):
		if t.col > 0 {
			t.col--
		}
		m.ensureColumnVisible(t)
	case key.Matches(msg, m.keys.Right):
		if t.col < len(t.g.Config().Columns)-1 {
			t.col++
		}
		m.ensureColumnVisible(t)

	case key.Matches(msg, m.keys.NextPage):
		return m.pageMoved(t, t.g.NextPage())
	case key.Matches(msg, m.keys.PrevPage):
		return m.pageMoved(t, t.g.PrevPage())
	case key.Matches(msg, m.keys.FirstPage):
		return m.pageMoved(t, t.g.GoToPage(1))
	case key.Matches(msg, m.keys.LastPage):
		return m.pageMoved(t, t.g.GoToPage(t.g.TotalPages()))
	case key.Matches(msg, m.keys.PerPage):
		if !t.g.CyclePerPage() {
			return nil
		}
		m.resetRowCursor(t)
		return tea.Batch(m.showMinibuffer("Page size: "+perPageLabel(t.g.State().PerPage)), m.loadCmd(t))

	case key.Matches(msg, m.keys.Sort):
		c, ok := t.focusedColumn()
		if !ok {
			return nil
		}
		if !t.g.SortBy(c.Key) {
			return m.showMinibuffer(c.Label + " is not sortable")
		}
		return m.loadCmd(t)
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		m.search.SetValue(t.g.State().Search)
		m.search.CursorEnd()
		return m.search.Focus()
	case key.Matches(msg, m.keys.Filters):
		m.openFilterPanel()
	case key.Matches(msg, m.keys.Chips):
		if len(t.chips()) == 0 {
			return m.showMinibuffer("No active filters")
		}
		m.focus = focusChips
		m.chipCursor = 0

	case key.Matches(msg, m.keys.Toggle):
		if row, ok := t.currentRow(); ok {
			t.g.ToggleRow(row.ID())
			if t.cursor < n-1 {
				t.cursor++
				m.ensureCursorVisible(t)
			}
		}
	case key.Matches(msg, m.keys.ToggleAll):
		t.g.ToggleAll()
	case key.Matches(msg, m.keys.Back):
		if len(t.g.SelectedIDs()) > 0 {
			t.g.ClearSelection()
			return m.showMinibuffer("Selection cleared")
		}

	case key.Matches(msg, m.keys.Menu):
		row, ok := t.currentRow()
		if !ok {
			return nil
		}
		if !t.g.OpenMenu(row.ID(), m.triggerRect(t, t.cursor), m.screenSize()) && len(t.g.Config().Actions.Entries(row)) == 0 {
			return m.showMinibuffer("No actions for this row")
		}
	case key.Matches(msg, m.keys.Open):
		row, ok := t.currentRow()
		if !ok || !t.g.Config().Actions.View {
			return nil
		}
		return m.runAction(t, grid.ActionView, row)
	case key.Matches(msg, m.keys.BulkDelete):
		ids := t.g.SelectedIDs()
		if len(ids) == 0 {
			return m.showMinibuffer("Nothing selected")
		}
		if !t.g.Config().Actions.Delete {
			return m.showError("This view does not allow deleting")
		}
		m.confirmDelete(ids, true)

	case key.Matches(msg, m.keys.Reload):
		return m.loadCmd(t)
	case key.Matches(msg, m.keys.Copy):
		return m.copyAddress(t)
	case key.Matches(msg, m.keys.Appearance):
		return m.cycleAppearance()
	case key.Matches(msg, m.keys.Views):
		t.g.CloseMenu()
		m.screen = screenPicker
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.ensureCursorVisible(t)
	}
	return nil
}

func (m *appModel) pageMoved(t *gridTab, changed bool) tea.Cmd {
	if !changed {
		return nil
	}
	m.resetRowCursor(t)
	return m.loadCmd(t)
}

func (m *appModel) cycleAppearance() tea.Cmd {
	next := knownAppearances[0]
	for i, id := range knownAppearances {
		if id == currentAppearance {
			next = knownAppearances[(i+1)%len(knownAppearances)]
			break
		}
	}
	setAppearanceProfile(next)
	resetMarkdownRenderers()
	return m.showMinibuffer("Appearance: " + appearanceLabel(next))
}

func (m *appModel) updateSearchKey(t *gridTab, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "tab", "down":
		// A pending debounce still applies what was typed.
		m.focus = focusRows
		m.search.Blur()
		return nil
	case "enter":
		m.searchSeq++
		m.focus = focusRows
		m.search.Blur()
		return m.applySearch()
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return cmd
	}
	m.searchSeq++
	seq := m.searchSeq
	return tea.Batch(cmd, tea.Tick(searchDebounce, func(time.Time) tea.Msg { return searchDebounceMsg{seq: seq} }))
}

func (m *appModel) applySearch() tea.Cmd {
	t := m.activeTab()
	if t == nil {
		return nil
	}
	if !t.g.SetSearch(strings.TrimSpace(m.search.Value())) {
		return nil
	}
	m.resetRowCursor(t)
	return m.loadCmd(t)
}

func (m *appModel) updateChipsKey(t *gridTab, msg tea.KeyMsg) tea.Cmd {
	chips := t.chips()
	if len(chips) == 0 {
		m.focus = focusRows
		return nil
	}
	if m.chipCursor >= len(chips) {
		m.chipCursor = len(chips) - 1
	}
	switch msg.String() {
	case "esc", "c", "down", "tab":
		m.focus = focusRows
	case "left", "h":
		if m.chipCursor > 0 {
			m.chipCursor--
		}
	case "right", "l":
		if m.chipCursor < len(chips)-1 {
			m.chipCursor++
		}
	case "x", "enter", "backspace", "delete":
		return m.removeChip(t, chips[m.chipCursor].Key)
	}
	return nil
}

func (m *appModel) removeChip(t *gridTab, key string) tea.Cmd {
	if !t.g.RemoveChip(key) {
		return nil
	}
	if key == grid.SearchChipKey {
		m.search.SetValue("")
		m.searchSeq++
	}
	if n := len(t.chips()); n == 0 {
		m.focus = focusRows
	} else if m.chipCursor >= n {
		m.chipCursor = n - 1
	}
	m.resetRowCursor(t)
	return m.loadCmd(t)
}

func (m *appModel) repositionMenu(t *gridTab) {
	menu := t.g.Menu()
	if !menu.IsOpen() {
		return
	}
	i := rowIndex(t, menu.Owner())
	if i < t.offset || i >= t.offset+m.visibleRows() {
		t.g.CloseMenu()
		return
	}
	menu.Reposition(m.triggerRect(t, i), m.screenSize())
}

func (m *appModel) scrollRows(t *gridTab, delta int) {
	n := len(t.g.Data())
	vr := m.visibleRows()
	maxOff := n - vr
	if maxOff < 0 {
		maxOff = 0
	}
	t.offset += delta
	if t.offset > maxOff {
		t.offset = maxOff
	}
	if t.offset < 0 {
		t.offset = 0
	}
	if t.cursor < t.offset {
		t.cursor = t.offset
	}
	if t.cursor >= t.offset+vr {
		t.cursor = t.offset + vr - 1
	}
	t.clampCursor(n)
}

func (m *appModel) updateMouse(msg tea.MouseMsg) tea.Cmd {
	if m.screen == screenDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return cmd
	}
	t := m.activeTab()
	if m.screen != screenGrid || m.modal != modalNone || t == nil {
		return nil
	}
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	p := grid.Point{X: msg.X, Y: msg.Y}

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		t.g.MenuScroll()
		delta := 3
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -3
		}
		m.scrollRows(t, delta)
		return nil
	case tea.MouseButtonLeft:
	default:
		return nil
	}

	if menu := t.g.Menu(); menu.IsOpen() {
		if i := menu.EntryAt(p); i >= 0 {
			t.g.MenuSelectIndex(i)
			return m.flushEvents(t)
		}
		if menu.Rect().Contains(p) {
			return nil
		}
		// Outside clicks dismiss and still reach what is underneath; a click on the owner's
		// trigger falls through to OpenMenu, which toggles it closed.
		t.g.MenuClickOutside(p)
	}

	switch {
	case p.Y == gridChipsY:
		if c, ok := chipAt(t.chips(), p.X); ok {
			return m.removeChip(t, c.Key)
		}
		return nil
	case p.Y == gridColumnHeadY:
		if p.X < markWidth {
			t.g.ToggleAll()
			return m.flushEvents(t)
		}
		cols := t.g.Config().Columns
		for _, s := range layoutColumns(cols, t.colStart, m.tableWidth()) {
			if p.X >= s.x && p.X < s.x+s.w {
				t.col = s.idx
				if t.g.SortBy(cols[s.idx].Key) {
					return m.loadCmd(t)
				}
				return nil
			}
		}
		return nil
	}

	data := t.g.Data()
	i := t.offset + p.Y - gridHeaderLines
	if p.Y < gridHeaderLines || p.Y >= gridHeaderLines+m.visibleRows() || i >= len(data) {
		return nil
	}
	row := data[i]
	m.focus = focusRows
	t.cursor = i
	switch {
	case p.X >= m.width-triggerWidth:
		t.g.OpenMenu(row.ID(), m.triggerRect(t, i), m.screenSize())
	case p.X < markWidth:
		t.g.ToggleRow(row.ID())
	}
	return m.flushEvents(t)
}
