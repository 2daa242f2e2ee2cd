package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"

	"propadmin/internal/api"
	"propadmin/internal/grid"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func fieldText(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
	return grid.TextKind{}.Format(v, nil)
}

// recordMarkdown renders a record as a field table. Configured columns come first, with their
// labels and formatting; the remaining fields follow in key order.
func recordMarkdown(title string, cols []grid.Column, rec grid.Row) string {
	var b strings.Builder
	b.WriteString("# " + title + "\n\n| Field | Value |\n|---|---|\n")
	seen := map[string]bool{}
	for _, c := range cols {
		if _, ok := rec[c.Key]; !ok {
			continue
		}
		seen[c.Key] = true
		b.WriteString("| " + mdCell(c.Label) + " | " + mdCell(c.Cell(rec)) + " |\n")
	}
	keys := make([]string, 0, len(rec))
	for k := range rec {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("| " + mdCell(k) + " | " + mdCell(fieldText(rec[k])) + " |\n")
	}
	return b.String()
}

func historyMarkdown(title string, entries []grid.Row) string {
	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	if len(entries) == 0 {
		b.WriteString("_No history recorded._\n")
		return b.String()
	}
	keySet := map[string]bool{}
	for _, e := range entries {
		for k := range e {
			keySet[k] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString("| " + strings.Join(keys, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(keys)) + "\n")
	for _, e := range entries {
		cells := make([]string, len(keys))
		for i, k := range keys {
			cells[i] = mdCell(fieldText(e[k]))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// decodeRecord accepts a bare object or one wrapped as {"data": {...}}.
func decodeRecord(raw []byte) (grid.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec map[string]any
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if inner, ok := rec["data"].(map[string]any); ok && len(rec) == 1 {
		rec = inner
	}
	return grid.Row(rec), nil
}

func rowTitle(t *gridTab, row grid.Row) string {
	return t.g.Config().Title + " · " + row.ID()
}

func (m *appModel) showDetail(title, md string) {
	m.screen = screenDetail
	m.detailTitle = title
	m.detailMD = md
	m.refreshDetail()
	m.detail.GotoTop()
}

func (m *appModel) refreshDetail() {
	m.detail.Width = m.width
	m.detail.Height = m.height - 2
	if m.detail.Height < 1 {
		m.detail.Height = 1
	}
	m.detail.SetContent(renderMarkdown(m.detailMD, m.width-2))
}

func (m *appModel) openRecord(t *gridTab, row grid.Row) tea.Cmd {
	title := rowTitle(t, row)
	cols := t.g.Config().Columns
	m.showDetail(title, recordMarkdown(title, cols, row))

	m.detailSeq++
	m.detailLoading = true
	seq := m.detailSeq
	backend, timeout := m.backend, m.timeout
	path := api.RowPath(t.def.Path, row.ID())
	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		raw, err := backend.Get(ctx, path)
		if err != nil {
			return detailLoadedMsg{seq: seq, title: title, err: err}
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			return detailLoadedMsg{seq: seq, title: title, err: err}
		}
		return detailLoadedMsg{seq: seq, title: title, md: recordMarkdown(title, cols, rec)}
	}
	return tea.Batch(fetch, m.startSpinner())
}

func (m *appModel) openHistory(t *gridTab, row grid.Row) tea.Cmd {
	title := "History · " + rowTitle(t, row)
	m.showDetail(title, "# "+title+"\n\n_Loading…_")

	m.detailSeq++
	m.detailLoading = true
	seq := m.detailSeq
	backend, timeout := m.backend, m.timeout
	listPath, id := t.def.Path, row.ID()
	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		entries, err := backend.History(ctx, listPath, id)
		if err != nil {
			return detailLoadedMsg{seq: seq, title: title, err: err}
		}
		return detailLoadedMsg{seq: seq, title: title, md: historyMarkdown(title, entries)}
	}
	return tea.Batch(fetch, m.startSpinner())
}

func (m *appModel) applyDetailLoaded(msg detailLoadedMsg) tea.Cmd {
	if msg.seq != m.detailSeq {
		return nil
	}
	m.detailLoading = false
	if msg.err != nil {
		if api.IsNotFound(msg.err) {
			return m.showError("Record no longer exists")
		}
		return m.showError("Showing list data: " + grid.UserMessage(msg.err))
	}
	if m.screen == screenDetail && m.detailTitle == msg.title {
		m.detailMD = msg.md
		m.refreshDetail()
	}
	return nil
}

func (m *appModel) updateDetail(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q", "backspace":
		m.screen = screenGrid
		m.detailSeq++
		m.detailLoading = false
		return nil
	case "ctrl+c":
		return tea.Quit
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return cmd
}

func (m appModel) renderDetailScreen() string {
	head := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Render("propadmin") +
		styleMuted().Render(" › ") +
		lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(m.detailTitle)
	if m.detailLoading {
		head += " " + m.spinner.View()
	}
	foot := styleMuted().Render("esc: back   ↑/↓: scroll")
	if m.minibufferText != "" {
		foot = m.renderStatusLine()
	}
	body := normalizePane(m.detail.View(), m.width, m.height-2)
	return fitLine(head, m.width) + "\n" + body + "\n" + fitLine(foot, m.width)
}
