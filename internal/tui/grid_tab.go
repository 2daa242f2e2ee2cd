package tui

import (
	"context"

	"propadmin/internal/grid"
	"propadmin/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// gridTab is one opened view: its grid plus the cursor state the console keeps around it.
type gridTab struct {
	def    store.ViewDef
	g      *grid.Grid
	events *pendingEvents

	cursor   int
	offset   int
	col      int
	colStart int

	inflight int
	// remote select options, by filter key
	opts map[string][]grid.Option
}

func newGridTab(def store.ViewDef, loc grid.Location, fetcher grid.Fetcher, log *zap.Logger) *gridTab {
	t := &gridTab{
		def:    def,
		events: &pendingEvents{},
		opts:   map[string][]grid.Option{},
	}
	cb := grid.Callbacks{
		OnRowClick: func(row grid.Row) {
			t.events.actions = append(t.events.actions, pendingAction{action: grid.ActionView, row: row})
		},
		OnAction: func(action string, row grid.Row) {
			t.events.actions = append(t.events.actions, pendingAction{action: action, row: row})
		},
		OnSelectionChange: func(selected []grid.Row) {
			log.Debug("selection", zap.String("view", def.Name), zap.Int("loaded", len(selected)))
		},
		OnDataLoaded: func(data []grid.Row, _ *grid.Grid) {
			t.clampCursor(len(data))
		},
	}
	t.g = grid.New(def.GridConfig(),
		grid.WithLocation(loc),
		grid.WithFetcher(fetcher),
		grid.WithNotifier(t.events),
		grid.WithLogger(log),
		grid.WithCallbacks(cb),
	)
	return t
}

func (t *gridTab) clampCursor(n int) {
	if t.cursor >= n {
		t.cursor = n - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	if t.offset > t.cursor {
		t.offset = t.cursor
	}
}

// currentRow is the row under the cursor.
func (t *gridTab) currentRow() (grid.Row, bool) {
	data := t.g.Data()
	if t.cursor < 0 || t.cursor >= len(data) {
		return nil, false
	}
	return data[t.cursor], true
}

// focusColumn moves the column cursor to key, if the view has that column.
func (t *gridTab) focusColumn(key string) {
	for i, c := range t.g.Config().Columns {
		if c.Key == key {
			t.col = i
			return
		}
	}
}

func (t *gridTab) focusedColumn() (grid.Column, bool) {
	cols := t.g.Config().Columns
	if t.col < 0 || t.col >= len(cols) {
		return grid.Column{}, false
	}
	return cols[t.col], true
}

// filterConfig returns the view's filter with key, with remotely loaded options merged in.
func (t *gridTab) filterConfig(key string) (grid.FilterConfig, bool) {
	for _, f := range t.g.Config().Filters {
		if f.Key == key {
			if opts, ok := t.opts[key]; ok {
				f.Options = opts
			}
			return f, true
		}
	}
	return grid.FilterConfig{}, false
}

// chips relabels chips of remote select filters once their options are known.
func (t *gridTab) chips() []grid.Chip {
	chips := t.g.Chips()
	st := t.g.State()
	for i, c := range chips {
		if _, ok := t.opts[c.Key]; !ok {
			continue
		}
		if f, ok := t.filterConfig(c.Key); ok {
			chips[i].Value = f.LabelFor(st.Filter(c.Key))
		}
	}
	return chips
}

func (m *appModel) loadCmd(t *gridTab) tea.Cmd {
	req := t.g.Begin()
	t.inflight++
	g, view, timeout := t.g, t.def.Name, m.timeout
	load := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		page, err := g.Fetch(ctx, req)
		return loadedMsg{view: view, req: req, page: page, err: err}
	}
	return tea.Batch(load, m.startSpinner())
}

func (m *appModel) applyLoaded(msg loadedMsg) tea.Cmd {
	t := m.tabs[msg.view]
	if t == nil {
		return nil
	}
	if t.inflight > 0 {
		t.inflight--
	}
	if t.g.Apply(msg.req, msg.page, msg.err) {
		m.ensureCursorVisible(t)
		if t.g.PageClamped() {
			return tea.Batch(m.flushEvents(t), m.loadCmd(t))
		}
	}
	return m.flushEvents(t)
}

func (m *appModel) optionsCmd(t *gridTab, f grid.FilterConfig) tea.Cmd {
	view, timeout := t.def.Name, m.timeout
	backend := m.backend
	u := backend.URL(f.OptionsURL, "")
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		opts, err := backend.Options(ctx, u, f.OptionValue, f.OptionLabel)
		return optionsLoadedMsg{view: view, key: f.Key, opts: opts, err: err}
	}
}

// flushEvents turns what the grid reported during the last call into commands.
func (m *appModel) flushEvents(t *gridTab) tea.Cmd {
	notices, actions := t.events.drain()
	var cmds []tea.Cmd
	for _, n := range notices {
		cmds = append(cmds, m.showError(n))
	}
	for _, a := range actions {
		cmds = append(cmds, m.runAction(t, a.action, a.row))
	}
	return tea.Batch(cmds...)
}
