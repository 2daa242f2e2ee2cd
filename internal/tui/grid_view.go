package tui

import (
	"strconv"
	"strings"

	"propadmin/internal/grid"

	"github.com/charmbracelet/lipgloss"
)

const (
	// title, search, chips, column header, rule
	gridHeaderLines = 5
	gridChipsY      = 2
	gridColumnHeadY = 3
	markWidth       = 4
	triggerWidth    = 3
	minColumnWidth  = 6
)

type colSlot struct {
	idx int
	x   int
	w   int
}

func columnWidth(c grid.Column) int {
	if c.Width > 0 {
		return c.Width + 1
	}
	w := lipgloss.Width(c.Label) + 3
	if w < 14 {
		w = 14
	}
	return w
}

// layoutColumns places columns from start onwards into avail cells. Each slot's width includes
// one trailing gap cell. The last slot absorbs the leftover width.
func layoutColumns(cols []grid.Column, start, avail int) []colSlot {
	var out []colSlot
	used := 0
	for i := start; i < len(cols); i++ {
		w := columnWidth(cols[i])
		if used+w > avail {
			if len(out) == 0 {
				w = avail
			} else {
				break
			}
		}
		if w < minColumnWidth && len(out) > 0 {
			break
		}
		out = append(out, colSlot{idx: i, x: markWidth + used, w: w})
		used += w
	}
	if n := len(out); n > 0 && used < avail {
		out[n-1].w += avail - used
	}
	return out
}

func (m appModel) tableWidth() int {
	w := m.width - markWidth - triggerWidth
	if w < 1 {
		w = 1
	}
	return w
}

func (m appModel) footerHeight() int {
	return 2 + lipgloss.Height(m.renderStatusLine())
}

func (m appModel) visibleRows() int {
	n := m.height - gridHeaderLines - m.footerHeight()
	if n < 1 {
		n = 1
	}
	return n
}

func (m appModel) rowY(t *gridTab, i int) int {
	return gridHeaderLines + i - t.offset
}

// triggerRect is where row i's action trigger is drawn.
func (m appModel) triggerRect(t *gridTab, i int) grid.Rect {
	return grid.Rect{X: m.width - triggerWidth, Y: m.rowY(t, i), W: triggerWidth, H: 1}
}

func (m appModel) screenSize() grid.Size {
	return grid.Size{W: m.width, H: m.height}
}

// rowIndex returns the index of the loaded row with id, or -1.
func rowIndex(t *gridTab, id string) int {
	for i, r := range t.g.Data() {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

func (m *appModel) ensureCursorVisible(t *gridTab) {
	vr := m.visibleRows()
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+vr {
		t.offset = t.cursor - vr + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

func (m *appModel) ensureColumnVisible(t *gridTab) {
	cols := t.g.Config().Columns
	if t.col < t.colStart {
		t.colStart = t.col
	}
	for t.colStart < t.col {
		slots := layoutColumns(cols, t.colStart, m.tableWidth())
		if len(slots) > 0 && slots[len(slots)-1].idx >= t.col {
			break
		}
		t.colStart++
	}
}

func statusStyle(v string) (lipgloss.Style, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "pagada", "paid", "activo", "active", "alquilada", "let", "cobrada":
		return statusGoodStyle, true
	case "pendiente", "pending", "reforma", "borrador", "draft":
		return statusWarnStyle, true
	case "vencida", "overdue", "impagada", "cancelada", "cancelled", "baja":
		return statusBadStyle, true
	}
	return lipgloss.Style{}, false
}

func (m appModel) renderGridScreen() string {
	t := m.activeTab()
	if t == nil {
		return ""
	}
	cfg := t.g.Config()
	slots := layoutColumns(cfg.Columns, t.colStart, m.tableWidth())

	lines := []string{
		m.renderTitleLine(t),
		m.renderSearchLine(t),
		m.renderChipsLine(t),
		m.renderHeaderLine(t, slots),
		styleMuted().Render(strings.Repeat(glyphHRule(), m.width)),
	}

	vr := m.visibleRows()
	data := t.g.Data()
	switch {
	case len(data) == 0 && !t.g.Loaded():
		lines = append(lines, styleMuted().Render("  Loading…"))
	case len(data) == 0:
		lines = append(lines, styleMuted().Render("  No results"))
	}
	for i := t.offset; i < len(data) && i < t.offset+vr; i++ {
		lines = append(lines, m.renderRow(t, slots, i, data[i]))
	}
	for len(lines) < gridHeaderLines+vr {
		lines = append(lines, "")
	}

	lines = append(lines, m.renderTotalsLine(t, slots), m.renderPagerLine(t))
	out := normalizePane(strings.Join(lines, "\n"), m.width, gridHeaderLines+vr+2)
	out += "\n" + m.renderStatusLine()

	if menu := t.g.Menu(); menu.IsOpen() {
		r := menu.Rect()
		out = overlayAt(out, renderMenu(menu), r.X, r.Y)
	}
	return out
}

func (m appModel) renderTitleLine(t *gridTab) string {
	cfg := t.g.Config()
	left := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Render("propadmin") +
		styleMuted().Render(" › ") +
		lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(cfg.Title)
	right := ""
	if t.inflight > 0 {
		right = m.spinner.View() + " "
	}
	if t.g.Loaded() {
		right += styleMuted().Render(strconv.Itoa(t.g.Total()) + " rows")
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m appModel) renderSearchLine(t *gridTab) string {
	if m.focus == focusSearch && m.screen == screenGrid {
		return inputLine(m.width, m.search.View())
	}
	if q := t.g.State().Search; q != "" {
		return lipgloss.NewStyle().Foreground(colorSurfaceFg).Render("/ " + q)
	}
	return styleMuted().Render("/ search")
}

func (m appModel) renderChipsLine(t *gridTab) string {
	chips := t.chips()
	if len(chips) == 0 {
		return styleMuted().Render("no filters · f to add")
	}
	base := lipgloss.NewStyle().Padding(0, 1).Foreground(colorSurfaceFg).Background(colorControlBg)
	active := base.Foreground(colorAccentFg).Background(colorAccent).Bold(true)
	parts := make([]string, 0, len(chips))
	for i, c := range chips {
		st := base
		if m.focus == focusChips && i == m.chipCursor {
			st = active
		}
		parts = append(parts, st.Render(chipText(c)))
	}
	return strings.Join(parts, " ")
}

func chipText(c grid.Chip) string { return c.Label + ": " + c.Value + " " + glyphRemove() }

// chipAt returns the chip drawn at column x of the chips line.
func chipAt(chips []grid.Chip, x int) (grid.Chip, bool) {
	pos := 0
	for _, c := range chips {
		w := lipgloss.Width(chipText(c)) + 2
		if x >= pos && x < pos+w {
			return c, true
		}
		pos += w + 1
	}
	return grid.Chip{}, false
}

func (m appModel) renderHeaderLine(t *gridTab, slots []colSlot) string {
	cols := t.g.Config().Columns
	st := t.g.State()
	var b strings.Builder

	mark := "[ ]"
	switch {
	case len(t.g.Data()) > 0 && t.g.AllSelected():
		mark = "[x]"
	case len(st.Selected) > 0:
		mark = "[-]"
	}
	b.WriteString(fitLine(mark, markWidth))

	head := lipgloss.NewStyle().Bold(true).Foreground(colorChromeMutedFg)
	focused := head.Foreground(colorAccent).Underline(true)
	for _, s := range slots {
		c := cols[s.idx]
		label := c.Label
		if st.SortField == c.Key {
			if st.SortDir == grid.SortDesc {
				label += " " + glyphSortDesc()
			} else {
				label += " " + glyphSortAsc()
			}
		}
		cell := fitLine(label, s.w-1)
		if s.idx == t.col {
			b.WriteString(focused.Render(cell))
		} else {
			b.WriteString(head.Render(cell))
		}
		b.WriteString(" ")
	}
	return b.String()
}

func (m appModel) renderRow(t *gridTab, slots []colSlot, i int, row grid.Row) string {
	cols := t.g.Config().Columns
	isCursor := i == t.cursor && m.focus == focusRows
	var b strings.Builder

	mark := "[ ] "
	if t.g.IsSelected(row.ID()) {
		mark = "[x] "
	}
	if !isCursor && t.g.IsSelected(row.ID()) {
		mark = lipgloss.NewStyle().Foreground(colorMarkFg).Render(mark)
	}
	b.WriteString(mark)

	for _, s := range slots {
		c := cols[s.idx]
		text := c.Cell(row)
		if c.Kind != nil {
			if _, ok := c.Kind.(grid.MultilineKind); ok {
				text = strings.ReplaceAll(text, "\n", " ")
			}
		}
		cell := fitLine(text, s.w-1)
		if !isCursor {
			if _, ok := c.Kind.(grid.StatusKind); ok {
				if st, ok := statusStyle(text); ok {
					cell = st.Render(cell)
				}
			}
		}
		b.WriteString(cell + " ")
	}

	line := fitLine(b.String(), m.width-triggerWidth)
	trigger := " " + glyphTrigger() + " "
	if len(t.g.Config().Actions.Entries(row)) == 0 {
		trigger = "   "
	}
	if t.g.Menu().Owner() == row.ID() {
		trigger = lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent).Render(trigger)
	}
	if isCursor {
		sel := lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
		return sel.Render(line) + trigger
	}
	return line + trigger
}

func (m appModel) renderTotalsLine(t *gridTab, slots []colSlot) string {
	totals := t.g.Totals()
	if len(totals) == 0 {
		return ""
	}
	cols := t.g.Config().Columns
	var b strings.Builder
	b.WriteString(fitLine(glyphSum(), markWidth))
	for _, s := range slots {
		b.WriteString(fitLine(cols[s.idx].Total(totals), s.w-1) + " ")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Render(b.String())
}

func perPageLabel(n int) string {
	if n == grid.Unbounded {
		return "all"
	}
	return strconv.Itoa(n)
}

func (m appModel) renderPagerLine(t *gridTab) string {
	st := t.g.State()
	parts := []string{
		"Page " + t.g.PageLabel(),
		strconv.Itoa(t.g.Total()) + " rows",
		perPageLabel(st.PerPage) + " per page",
	}
	if n := len(t.g.SelectedIDs()); n > 0 {
		parts = append(parts, strconv.Itoa(n)+" selected")
	}
	return lipgloss.NewStyle().Foreground(colorChromeMutedFg).Render(strings.Join(parts, " · "))
}
