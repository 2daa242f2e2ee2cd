package tui

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"propadmin/internal/api"
	"propadmin/internal/grid"
	"propadmin/internal/store"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type fakeBackend struct {
	mu sync.Mutex

	list    func(path string, p grid.Params) (*grid.Page, error)
	lists   []grid.Params
	options map[string][]grid.Option
	optURLs []string
	records map[string]json.RawMessage
	history map[string][]grid.Row
	histIDs []string
	deleted []string
	delErr  map[string]error
	updated map[string][]byte
}

func newFakeBackend(rows ...grid.Row) *fakeBackend {
	return &fakeBackend{
		list: func(string, grid.Params) (*grid.Page, error) {
			return &grid.Page{Data: rows, Total: len(rows)}, nil
		},
		options: map[string][]grid.Option{},
		records: map[string]json.RawMessage{},
		history: map[string][]grid.Row{},
		delErr:  map[string]error{},
		updated: map[string][]byte{},
	}
}

func (f *fakeBackend) List(_ context.Context, path string, p grid.Params) (*grid.Page, error) {
	f.mu.Lock()
	f.lists = append(f.lists, p)
	list := f.list
	f.mu.Unlock()
	return list(path, p)
}

func (f *fakeBackend) Options(_ context.Context, rawURL, _, _ string) ([]grid.Option, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.optURLs = append(f.optURLs, rawURL)
	opts, ok := f.options[rawURL]
	if !ok {
		return nil, &api.Error{Status: 404, Message: "no such list"}
	}
	return opts, nil
}

func (f *fakeBackend) Get(_ context.Context, path string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[path]
	if !ok {
		return nil, &api.Error{Status: 404, Message: "Not found"}
	}
	return rec, nil
}

func (f *fakeBackend) Update(_ context.Context, path string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[path] = body
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.delErr[path]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeBackend) History(_ context.Context, listPath, id string) ([]grid.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histIDs = append(f.histIDs, listPath+"#"+id)
	return f.history[id], nil
}

func (f *fakeBackend) URL(path, query string) string {
	u := "http://backend.test" + path
	if query != "" {
		u += "?" + query
	}
	return u
}

func (f *fakeBackend) lastParams() grid.Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.lists) == 0 {
		return nil
	}
	return f.lists[len(f.lists)-1]
}

func (f *fakeBackend) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lists)
}

func propertyRows() []grid.Row {
	return []grid.Row{
		{"id": "1", "ref": "P-001", "direccion": "Calle Mayor 1", "ciudad": "Madrid", "renta": json.Number("950"), "estado": "alquilada",
			"fotos": []any{"/media/p1/front.jpg"}, "ficha_pdf": "/media/p1/ficha.pdf"},
		{"id": "2", "ref": "P-002", "direccion": "Gran Vía 22", "ciudad": "Madrid", "renta": json.Number("1200"), "estado": "libre"},
		{"id": "3", "ref": "P-003", "direccion": "Av. Constitución 5", "ciudad": "Sevilla", "renta": json.Number("700"), "estado": "reforma"},
	}
}

func newTestModel(t *testing.T, b *fakeBackend) appModel {
	t.Helper()
	t.Setenv("PROPADMIN_CONFIG_DIR", t.TempDir())
	t.Setenv("PROPADMIN_TUI_GLYPHS", "")
	views, err := store.LoadViews()
	if err != nil {
		t.Fatalf("LoadViews: %v", err)
	}
	m := newAppModel(Options{Backend: b, Views: views, Timeout: time.Second})
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return mm.(appModel)
}

func runCmd(c tea.Cmd, d time.Duration) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(d):
		return nil, false
	}
}

// pump feeds the messages produced by cmd back into the model until nothing is left. Timers
// (debounce, minibuffer clear) do not fire within the deadline and are dropped.
func pump(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatalf("command loop did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := runCmd(c, 150*time.Millisecond)
		if !ok || msg == nil {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case spinner.TickMsg, tea.QuitMsg:
			continue
		}
		mm, next := m.Update(msg)
		m = mm.(appModel)
		queue = append(queue, next)
	}
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		mm, cmd := m.Update(keyMsg(k))
		m = pump(t, mm.(appModel), cmd)
	}
	return m
}

func click(t *testing.T, m appModel, x, y int) appModel {
	t.Helper()
	mm, cmd := m.Update(tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	return pump(t, mm.(appModel), cmd)
}

func openTestView(t *testing.T, m appModel, name string) appModel {
	t.Helper()
	mm, cmd := m.Update(openViewMsg{name: name})
	return pump(t, mm.(appModel), cmd)
}

func TestOpenView_LoadsWithStaticDefaultsAndRenders(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	m := newTestModel(t, b)
	m = openTestView(t, m, "invoices-income")

	p := b.lastParams()
	if v, _ := p.Get("tipo"); v != "ingreso" {
		t.Fatalf("expected static tipo=ingreso; got %q", p.Encode())
	}
	if v, _ := p.Get("per_page"); v != "100" {
		t.Fatalf("expected the view's page size; got %q", p.Encode())
	}
	if m.screen != screenGrid || m.active != "invoices-income" {
		t.Fatalf("expected grid screen; got screen=%v active=%q", m.screen, m.active)
	}
	if m.tabs["invoices-income"].inflight != 0 {
		t.Fatalf("expected load to settle")
	}
}

func TestGridView_RendersRowsAndPager(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")

	out := m.View()
	for _, want := range []string{"Properties", "Calle Mayor 1", "Page 1 / 1", "3 rows", "50 per page"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestLoadError_ShowsBackendMessage(t *testing.T) {
	b := newFakeBackend()
	b.list = func(string, grid.Params) (*grid.Page, error) {
		return nil, &api.Error{Status: 500, Message: "Database unavailable"}
	}
	m := newTestModel(t, b)
	m = openTestView(t, m, "tenants")

	if m.minibufferText != "Database unavailable" || !m.minibufferErr {
		t.Fatalf("expected backend message as error; got %q (err=%v)", m.minibufferText, m.minibufferErr)
	}

	b.list = func(string, grid.Params) (*grid.Page, error) { return nil, errors.New("dial tcp: refused") }
	m = press(t, m, "r")
	if m.minibufferText != grid.GenericLoadError {
		t.Fatalf("expected generic message; got %q", m.minibufferText)
	}
}

func TestLoaded_StaleResponseIsDropped(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")

	tab := m.tabs["properties"]
	older := tab.g.Begin()
	newer := tab.g.Begin()

	mm, _ := m.Update(loadedMsg{view: "properties", req: newer, page: &grid.Page{Data: []grid.Row{{"id": "9"}}, Total: 1}})
	m = mm.(appModel)
	mm, _ = m.Update(loadedMsg{view: "properties", req: older, page: &grid.Page{Data: []grid.Row{{"id": "8"}}, Total: 1}})
	m = mm.(appModel)

	data := m.tabs["properties"].g.Data()
	if len(data) != 1 || data[0].ID() != "9" {
		t.Fatalf("expected the newer response to stay; got %#v", data)
	}
}

func TestSearch_DebouncesKeystrokes(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")
	before := b.listCount()

	m = press(t, m, "/", "m", "a")
	if m.focus != focusSearch {
		t.Fatalf("expected search focus")
	}
	if b.listCount() != before {
		t.Fatalf("expected no request while typing; got %d", b.listCount()-before)
	}

	// An outdated tick does nothing.
	mm, cmd := m.Update(searchDebounceMsg{seq: m.searchSeq - 1})
	m = pump(t, mm.(appModel), cmd)
	if b.listCount() != before {
		t.Fatalf("expected stale debounce to be ignored")
	}

	mm, cmd = m.Update(searchDebounceMsg{seq: m.searchSeq})
	m = pump(t, mm.(appModel), cmd)
	if b.listCount() != before+1 {
		t.Fatalf("expected one request after the pause; got %d", b.listCount()-before)
	}
	p := b.lastParams()
	if v, _ := p.Get("search"); v != "ma" {
		t.Fatalf("expected search=ma; got %q", p.Encode())
	}
	if v, _ := p.Get("page"); v != "1" {
		t.Fatalf("expected page 1; got %q", p.Encode())
	}
}

func TestSort_UsesFocusedColumnAndKeepsPage(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")

	m = press(t, m, "l", "l", "l", "s")
	p := b.lastParams()
	if v, _ := p.Get("sort"); v != "renta" {
		t.Fatalf("expected sort=renta; got %q", p.Encode())
	}
	m = press(t, m, "s")
	if v, _ := b.lastParams().Get("order"); v != "desc" {
		t.Fatalf("expected order flip; got %q", b.lastParams().Encode())
	}

	// Tags are unsortable.
	m = press(t, m, "l", "l", "s")
	if !strings.Contains(m.minibufferText, "not sortable") {
		t.Fatalf("expected unsortable notice; got %q", m.minibufferText)
	}
}

func TestMenu_KeyboardOpensAndRunsHistory(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	b.history["1"] = []grid.Row{{"fecha": "2024-03-01", "usuario": "ana", "cambio": "renta 900 → 950"}}
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")

	m = press(t, m, "x")
	menu := m.tabs["properties"].g.Menu()
	if !menu.IsOpen() || menu.Owner() != "1" {
		t.Fatalf("expected menu open for row 1")
	}
	labels := []string{}
	for _, e := range menu.Entries() {
		labels = append(labels, e.Label)
	}
	if strings.Join(labels, ",") != "View,Gallery,Open PDF,Edit,History,Delete" {
		t.Fatalf("unexpected entries %v", labels)
	}

	m = press(t, m, "j", "j", "j", "j", "enter")
	if menu.IsOpen() {
		t.Fatalf("expected menu closed after selecting")
	}
	if m.screen != screenDetail {
		t.Fatalf("expected history screen")
	}
	if len(b.histIDs) != 1 || b.histIDs[0] != "/properties#1" {
		t.Fatalf("unexpected history calls %v", b.histIDs)
	}
	if !strings.Contains(m.detailMD, "renta 900 → 950") {
		t.Fatalf("expected history entries; got:\n%s", m.detailMD)
	}

	m = press(t, m, "esc")
	if m.screen != screenGrid {
		t.Fatalf("expected back on the grid")
	}
}

func TestMenu_EscapeReturnsFocusToOwner(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")

	m = click(t, m, 119, gridHeaderLines+2)
	tab := m.tabs["properties"]
	if tab.g.Menu().Owner() != "3" {
		t.Fatalf("expected menu for row 3; got %q", tab.g.Menu().Owner())
	}
	tab.cursor = 0
	m = press(t, m, "esc")
	if tab.g.Menu().IsOpen() || tab.cursor != 2 {
		t.Fatalf("expected menu closed and cursor on row 3; open=%v cursor=%d", tab.g.Menu().IsOpen(), tab.cursor)
	}
}

func TestMenu_MouseClickEntryOutsideAndToggle(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")
	tab := m.tabs["properties"]
	y := gridHeaderLines

	m = click(t, m, 118, y)
	menu := tab.g.Menu()
	if !menu.IsOpen() {
		t.Fatalf("expected menu open")
	}
	r := menu.Rect()
	if r.Y != y+1 || r.Right() != 120 {
		t.Fatalf("expected menu below and right-aligned to the trigger; got %#v", r)
	}
	if !strings.Contains(m.View(), "Open PDF") {
		t.Fatalf("expected menu drawn over the grid")
	}

	// Same trigger again closes it.
	m = click(t, m, 118, y)
	if menu.IsOpen() {
		t.Fatalf("expected second activation to close the menu")
	}

	// Another row takes the menu over; an outside click dismisses it.
	m = click(t, m, 118, y+2)
	m = click(t, m, 118, y)
	if !menu.IsOpen() || menu.Owner() != "1" {
		t.Fatalf("expected menu reassigned to row 1; owner=%q", menu.Owner())
	}
	m = click(t, m, 10, 25)
	if menu.IsOpen() {
		t.Fatalf("expected outside click to close the menu")
	}

	// Clicking an entry runs it: row 1's Edit fetches the record.
	t.Setenv("VISUAL", "true")
	b.records["/properties/1"] = json.RawMessage(`{"id":"1","renta":950}`)
	m = click(t, m, 118, y)
	r = menu.Rect()
	m = click(t, m, r.X+2, r.Y+1+3)
	if menu.IsOpen() {
		t.Fatalf("expected menu closed after entry click")
	}
	if m.editPath == "" {
		t.Fatalf("expected the record to be staged for the editor")
	}
	path := m.editPath
	mm, _ := m.Update(externalEditorDoneMsg{err: errors.New("killed")})
	m = mm.(appModel)
	if m.editPath != "" || !strings.HasPrefix(m.minibufferText, "Editor failed") {
		t.Fatalf("expected editor failure reported; text=%q", m.minibufferText)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected temp file removed; stat err=%v", err)
	}
}

func TestMenu_ClosesWhenOwnerRowVanishes(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")
	tab := m.tabs["properties"]

	m = click(t, m, 118, gridHeaderLines+1)
	if tab.g.Menu().Owner() != "2" {
		t.Fatalf("expected menu for row 2")
	}
	rows := propertyRows()
	b.list = func(string, grid.Params) (*grid.Page, error) {
		return &grid.Page{Data: []grid.Row{rows[0]}, Total: 1}, nil
	}
	m = pump(t, m, (&m).loadCmd(tab))
	if tab.g.Menu().IsOpen() {
		t.Fatalf("expected the menu to close with its row gone")
	}
}

func TestMenu_WheelDismisses(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")
	m = press(t, m, "x")
	mm, _ := m.Update(tea.MouseMsg{X: 40, Y: 8, Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	m = mm.(appModel)
	if m.tabs["properties"].g.Menu().IsOpen() {
		t.Fatalf("expected scroll to close the menu")
	}
}

func TestSelection_BulkDeleteReportsPartialFailure(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	b.delErr["/properties/2"] = &api.Error{Status: 409, Message: "Property has active contracts"}
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")
	tab := m.tabs["properties"]

	m = press(t, m, " ", " ")
	if got := strings.Join(tab.g.SelectedIDs(), ","); got != "1,2" {
		t.Fatalf("expected rows 1,2 selected; got %q", got)
	}
	if !strings.Contains(m.View(), "2 selected") {
		t.Fatalf("expected selection count in the pager")
	}

	m = press(t, m, "D")
	if m.modal != modalConfirmBulkDelete || m.confirmFocus != confirmFocusCancel {
		t.Fatalf("expected bulk confirm focused on cancel")
	}
	loads := b.listCount()
	m = press(t, m, "y")

	if strings.Join(b.deleted, ",") != "/properties/1" {
		t.Fatalf("unexpected deletes %v", b.deleted)
	}
	if m.minibufferText != "Deleted 1; Property has active contracts" {
		t.Fatalf("unexpected notice %q", m.minibufferText)
	}
	if len(tab.g.SelectedIDs()) != 0 {
		t.Fatalf("expected selection cleared")
	}
	if b.listCount() != loads+1 {
		t.Fatalf("expected a reload after deleting")
	}
}

func TestSelection_ToggleAllAndEscape(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")
	tab := m.tabs["properties"]

	m = press(t, m, "a")
	if !tab.g.AllSelected() {
		t.Fatalf("expected every loaded row selected")
	}
	m = press(t, m, "esc")
	if len(tab.g.SelectedIDs()) != 0 {
		t.Fatalf("expected esc to clear the selection")
	}
	m = press(t, m, "D")
	if m.modal != modalNone || m.minibufferText != "Nothing selected" {
		t.Fatalf("expected nothing to delete; modal=%v text=%q", m.modal, m.minibufferText)
	}
}

func TestFilters_RemoteSelectOptions(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	b.options["http://backend.test/owners"] = []grid.Option{{Value: "7", Label: "Ana Ruiz"}, {Value: "8", Label: "Luis Gil"}}
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")

	m = press(t, m, "f", "j", "j", "enter")
	if m.modal != modalFilterPick {
		t.Fatalf("expected option picker")
	}
	if len(b.optURLs) != 1 || m.pickLoading {
		t.Fatalf("expected options fetched once; urls=%v loading=%v", b.optURLs, m.pickLoading)
	}
	if len(m.pickOptions) != 3 || m.pickOptions[0].Label != "(any)" {
		t.Fatalf("unexpected options %#v", m.pickOptions)
	}

	m = press(t, m, "j", "enter")
	if v, _ := b.lastParams().Get("propietario_id"); v != "7" {
		t.Fatalf("expected owner filter; got %q", b.lastParams().Encode())
	}
	chips := m.tabs["properties"].chips()
	if len(chips) != 1 || chips[0].Value != "Ana Ruiz" {
		t.Fatalf("expected chip labelled from the options; got %#v", chips)
	}

	// Options are only fetched once per view.
	m = press(t, m, "enter")
	if len(b.optURLs) != 1 {
		t.Fatalf("expected cached options; urls=%v", b.optURLs)
	}
	m = press(t, m, "esc", "esc")
	if m.modal != modalNone {
		t.Fatalf("expected panel closed")
	}
}

func TestFilters_NamedPeriodFillsDateRange(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b)
	m = openTestView(t, m, "invoices-income")

	idx := -1
	for i, p := range grid.Periods {
		if p.Name == "this_year" {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatalf("missing this_year period")
	}
	keys := []string{"f", "enter"}
	for i := 0; i <= idx; i++ {
		keys = append(keys, "j")
	}
	m = press(t, m, append(keys, "enter")...)

	p := b.lastParams()
	year := time.Now().Format("2006")
	if v, _ := p.Get(grid.DateFromKey); v != year+"-01-01" {
		t.Fatalf("expected range from Jan 1st; got %q", p.Encode())
	}
	if _, ok := p.Get(grid.PeriodKey); ok {
		t.Fatalf("period bookkeeping must not reach the backend: %q", p.Encode())
	}
	found := false
	for _, c := range m.tabs["invoices-income"].chips() {
		if c.Key == grid.DateRangeKey && strings.HasPrefix(c.Value, "This year") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a date range chip")
	}
}

func TestFilters_TextDateIsNormalized(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b)
	m = openTestView(t, m, "invoices-income")

	// Entries: Date range, Status, From, To.
	m = press(t, m, "f", "j", "j", "enter")
	if m.modal != modalFilterText {
		t.Fatalf("expected text input; modal=%v", m.modal)
	}
	for _, r := range "March 5, 2024" {
		m = press(t, m, string(r))
	}
	m = press(t, m, "enter")
	if v, _ := b.lastParams().Get(grid.DateFromKey); v != "2024-03-05" {
		t.Fatalf("expected ISO date; got %q", b.lastParams().Encode())
	}
}

func TestChips_RemoveReloadsFromPageOne(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")
	tab := m.tabs["properties"]
	tab.g.SetSearch("mayor")
	tab.g.SetFilter("estado", "libre")

	m = press(t, m, "c")
	if m.focus != focusChips {
		t.Fatalf("expected chip focus")
	}
	m = press(t, m, "l", "x")
	st := tab.g.State()
	if st.Filter("estado") != "" || st.Search != "mayor" {
		t.Fatalf("expected only the status chip removed; got %#v", st)
	}
	if v, _ := b.lastParams().Get("estado"); v != "" {
		t.Fatalf("expected reload without estado; got %q", b.lastParams().Encode())
	}

	m = press(t, m, "x")
	if tab.g.State().Search != "" || m.focus != focusRows || m.search.Value() != "" {
		t.Fatalf("expected search chip removed and focus back on rows")
	}
}

func TestPaging_KeysLoadAndClamp(t *testing.T) {
	b := newFakeBackend()
	b.list = func(_ string, p grid.Params) (*grid.Page, error) {
		return &grid.Page{Data: []grid.Row{{"id": "x"}}, Total: 120}, nil
	}
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")

	m = press(t, m, "n", "n", "n")
	if v, _ := b.lastParams().Get("page"); v != "3" {
		t.Fatalf("expected to stop at the last page; got %q", b.lastParams().Encode())
	}
	m = press(t, m, "<")
	if v, _ := b.lastParams().Get("page"); v != "1" {
		t.Fatalf("expected first page; got %q", b.lastParams().Encode())
	}
	m = press(t, m, "z")
	if v, _ := b.lastParams().Get("per_page"); v != "100" {
		t.Fatalf("expected page size 100; got %q", b.lastParams().Encode())
	}
	if m.minibufferText != "Page size: 100" {
		t.Fatalf("unexpected notice %q", m.minibufferText)
	}
}

func TestEnter_ShowsRowThenFetchedRecord(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	b.records["/properties/1"] = json.RawMessage(`{"data":{"id":"1","ref":"P-001","notas":"Llaves en conserjería"}}`)
	m := newTestModel(t, b)
	m = openTestView(t, m, "properties")

	m = press(t, m, "enter")
	if m.screen != screenDetail {
		t.Fatalf("expected detail screen")
	}
	if !strings.Contains(m.detailMD, "Llaves en conserjería") {
		t.Fatalf("expected fetched fields; got:\n%s", m.detailMD)
	}

	m = press(t, m, "esc", "j", "enter")
	if !strings.Contains(m.minibufferText, "Record no longer exists") {
		t.Fatalf("expected not-found notice; got %q", m.minibufferText)
	}
	if !strings.Contains(m.detailMD, "Gran Vía 22") {
		t.Fatalf("expected the loaded row to stay on screen")
	}
}

func TestMinibuffer_AutoClears(t *testing.T) {
	m := newTestModel(t, newFakeBackend())

	(&m).showMinibuffer("Hello")
	m.minibufferSetAt = time.Now().Add(-minibufferAutoClearAfter - 100*time.Millisecond)
	mm, _ := m.Update(minibufferTickMsg{})
	m = mm.(appModel)
	if m.minibufferText != "" {
		t.Fatalf("expected minibuffer text to clear, got %q", m.minibufferText)
	}

	(&m).showMinibuffer("Hello")
	mm, _ = m.Update(minibufferTickMsg{})
	m = mm.(appModel)
	if m.minibufferText == "" {
		t.Fatalf("expected recent minibuffer text to remain")
	}
}

func TestPicker_OpensSelectedViewAndQuitSavesState(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	m := newTestModel(t, b)
	if m.screen != screenPicker {
		t.Fatalf("expected to start on the picker")
	}
	m = press(t, m, "j", "enter")
	if m.active != "contracts" || m.screen != screenGrid {
		t.Fatalf("expected contracts open; active=%q", m.active)
	}
	m = press(t, m, "l")
	m.saveUIState()

	st, err := store.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st.LastView != "contracts" || st.FocusedColumn["contracts"] != "inquilino" {
		t.Fatalf("unexpected saved state %#v", st)
	}

	m2 := newAppModel(Options{Backend: b, Views: m.views})
	if name, _ := m2.selectedPickerView(); name != "contracts" {
		t.Fatalf("expected last view preselected; got %q", name)
	}
}

func TestAddressBook_PersistsAcrossSessions(t *testing.T) {
	b := newFakeBackend(propertyRows()...)
	m := newTestModel(t, b)
	book, err := store.OpenAddressBook(context.Background(), t.TempDir()+"/state.sqlite")
	if err != nil {
		t.Fatalf("OpenAddressBook: %v", err)
	}
	defer book.Close()
	m.book = book

	m = openTestView(t, m, "properties")
	m.tabs["properties"].g.SetFilter("estado", "libre")
	m = pump(t, m, (&m).loadCmd(m.tabs["properties"]))

	next := newAppModel(Options{Backend: b, Views: m.views, Book: book})
	next = openTestView(t, next, "properties")
	if got := next.tabs["properties"].g.State().Filter("estado"); got != "libre" {
		t.Fatalf("expected the stored address to restore the filter; got %q", got)
	}
	if v, _ := b.lastParams().Get("estado"); v != "libre" {
		t.Fatalf("expected restored filter in the request; got %q", b.lastParams().Encode())
	}
}
