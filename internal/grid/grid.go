// Package grid is a headless, server-backed data grid: view state (page, size, sort, search,
// filters, selection) mirrored into a navigable address, projected into list requests, plus the
// row selection and the shared row action menu.
//
// A Grid is not safe for concurrent use. Hosts drive it from a single event loop; the only
// blocking step is the fetch, which Load runs inline and Begin/Fetch/Apply let a host run
// elsewhere.
package grid

import (
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Config is the immutable description of one grid view.
type Config struct {
	// Name identifies the view (used for the stored address and logs).
	Name  string
	Title string
	// Path is the list endpoint, relative to the backend base URL.
	Path           string
	Columns        []Column
	Filters        []FilterConfig
	StaticDefaults map[string]string
	Actions        ActionConfig
	DefaultPerPage int
}

// Callbacks are invoked synchronously from the handler that caused them. All are optional.
type Callbacks struct {
	OnRowClick        func(row Row)
	OnAction          func(action string, row Row)
	OnSelectionChange func(selected []Row)
	OnDataLoaded      func(data []Row, g *Grid)
}

// GridOption configures a Grid in New.
type GridOption func(*Grid)

func WithLocation(loc Location) GridOption {
	return func(g *Grid) { g.address.loc = loc }
}

func WithFetcher(f Fetcher) GridOption {
	return func(g *Grid) { g.fetcher = f }
}

func WithNotifier(n Notifier) GridOption {
	return func(g *Grid) { g.notifier = n }
}

func WithLogger(l *zap.Logger) GridOption {
	return func(g *Grid) {
		if l != nil {
			g.log = l
		}
	}
}

func WithCallbacks(cb Callbacks) GridOption {
	return func(g *Grid) { g.cb = cb }
}

type Grid struct {
	cfg   Config
	state ViewState

	data   []Row
	total  int
	totals map[string]any
	loaded bool

	seq     uint64
	// settled is the newest request whose outcome arrived, success or failure.
	settled uint64
	// clamped is set when the last applied page lay past the last page.
	clamped bool

	menu Menu

	address  addressSync
	fetcher  Fetcher
	notifier Notifier
	cb       Callbacks
	log      *zap.Logger
}

// New builds a grid and reads its initial state from the location's query string. The location
// is not read again afterwards.
func New(cfg Config, opts ...GridOption) *Grid {
	if !ValidPerPage(cfg.DefaultPerPage) {
		cfg.DefaultPerPage = DefaultPerPage
	}
	g := &Grid{
		cfg: cfg,
		log: zap.NewNop(),
	}
	g.address.defaults = cfg.StaticDefaults
	for _, opt := range opts {
		opt(g)
	}
	g.address.log = g.log
	g.state = g.address.read(cfg.DefaultPerPage)
	return g
}

func (g *Grid) Config() Config { return g.cfg }

// State returns the current view state. The maps are shared; treat them as read-only.
func (g *Grid) State() ViewState { return g.state }

func (g *Grid) Data() []Row { return g.data }

func (g *Grid) Total() int { return g.total }

func (g *Grid) Totals() map[string]any { return g.totals }

// Loaded reports whether at least one load succeeded.
func (g *Grid) Loaded() bool { return g.loaded }

func (g *Grid) Menu() *Menu { return &g.menu }

// Params is the request the current state would issue.
func (g *Grid) Params() Params { return BuildParams(g.state, g.cfg.StaticDefaults) }

// Address is the query string the current state persists as.
func (g *Grid) Address() string { return BuildAddress(g.state, g.cfg.StaticDefaults) }

// RowByID resolves a loaded row.
func (g *Grid) RowByID(id string) (Row, bool) {
	for _, r := range g.data {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

func (g *Grid) Column(key string) (Column, bool) {
	for _, c := range g.cfg.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// SortBy handles a column header activation: same column flips the direction, another column
// starts ascending. The page is kept. The host reloads afterwards.
func (g *Grid) SortBy(key string) bool {
	if key == "" {
		return false
	}
	if c, ok := g.Column(key); ok && c.Unsortable {
		return false
	}
	g.state.toggleSort(key)
	g.clearSelection()
	return true
}

// TotalPages is 1 when the page size is unbounded.
func (g *Grid) TotalPages() int {
	if g.state.PerPage == Unbounded || g.total <= 0 {
		return 1
	}
	return (g.total + g.state.PerPage - 1) / g.state.PerPage
}

// PageLabel renders the pagination position, e.g. "1 / 3".
func (g *Grid) PageLabel() string {
	return strconv.Itoa(g.state.Page) + " / " + strconv.Itoa(g.TotalPages())
}

// GoToPage moves to p clamped to the valid range. It reports whether the page changed.
func (g *Grid) GoToPage(p int) bool {
	if p < 1 {
		p = 1
	}
	if n := g.TotalPages(); p > n {
		p = n
	}
	if p == g.state.Page {
		return false
	}
	g.state.Page = p
	g.clearSelection()
	return true
}

func (g *Grid) NextPage() bool { return g.GoToPage(g.state.Page + 1) }

func (g *Grid) PrevPage() bool { return g.GoToPage(g.state.Page - 1) }

// SetPerPage changes the page size and returns to page 1. Sizes outside PerPageOptions are
// rejected.
func (g *Grid) SetPerPage(n int) bool {
	if !ValidPerPage(n) {
		return false
	}
	changed := n != g.state.PerPage || g.state.Page != 1
	g.state.PerPage = n
	g.state.Page = 1
	if changed {
		g.clearSelection()
	}
	return changed
}

// CyclePerPage advances to the next page size option.
func (g *Grid) CyclePerPage() bool {
	next := PerPageOptions[0]
	for i, v := range PerPageOptions {
		if v == g.state.PerPage {
			next = PerPageOptions[(i+1)%len(PerPageOptions)]
			break
		}
	}
	return g.SetPerPage(next)
}

// SetSearch replaces the search text, returning to page 1 and clearing the selection.
func (g *Grid) SetSearch(q string) bool {
	if q == g.state.Search {
		return false
	}
	g.state.Search = q
	g.resetForNewQuery()
	return true
}

// SetFilter sets (or with "" clears) one filter value.
func (g *Grid) SetFilter(key, value string) bool {
	if key == "" || g.state.Filter(key) == value {
		return false
	}
	if key != PeriodKey && IsReservedKey(key) {
		return false
	}
	g.state.setFilter(key, value)
	switch key {
	case PeriodKey:
		// bookkeeping only; it never reaches the request
		return false
	case DateFromKey, DateToKey:
		// a hand-edited bound no longer matches the named period
		g.state.setFilter(PeriodKey, "")
	}
	g.resetForNewQuery()
	return true
}

// ApplyPeriod fills the date range from a named period. An empty or unknown name clears the
// range.
func (g *Grid) ApplyPeriod(name string, now time.Time) bool {
	p, ok := FindPeriod(name)
	if !ok {
		return g.RemoveChip(DateRangeKey)
	}
	from, to := p.Resolve(now)
	before := g.state.Filter(DateFromKey) + "|" + g.state.Filter(DateToKey)
	g.state.setFilter(PeriodKey, p.Name)
	g.state.setFilter(DateFromKey, from.Format(dateLayout))
	g.state.setFilter(DateToKey, to.Format(dateLayout))
	if before == g.state.Filter(DateFromKey)+"|"+g.state.Filter(DateToKey) {
		return false
	}
	g.resetForNewQuery()
	return true
}

// Chips derives the active filter summary.
func (g *Grid) Chips() []Chip {
	return deriveChips(g.state, g.cfg.Filters, g.cfg.StaticDefaults)
}

// RemoveChip reverses the filter behind a chip, returns to page 1 and clears the selection.
func (g *Grid) RemoveChip(key string) bool {
	if !removeChip(&g.state, key) {
		return false
	}
	g.resetForNewQuery()
	return true
}

func (g *Grid) resetForNewQuery() {
	g.state.Page = 1
	g.clearSelection()
}

func (g *Grid) IsSelected(id string) bool { return g.state.Selected.Has(id) }

// SelectedIDs returns every selected id, including ids of rows no longer loaded.
func (g *Grid) SelectedIDs() []string { return g.state.Selected.IDs() }

// SelectedRows returns the loaded rows that are selected.
func (g *Grid) SelectedRows() []Row { return g.state.Selected.Rows(g.data) }

// AllSelected reports whether every loaded row is selected.
func (g *Grid) AllSelected() bool { return g.state.Selected.AllLoaded(g.data) }

func (g *Grid) ToggleRow(id string) {
	if id == "" {
		return
	}
	g.ensureSelection()
	g.state.Selected.toggle(id)
	g.fireSelection()
}

// ToggleAll selects every loaded row, or deselects them when all already are. Rows of other
// pages are never touched.
func (g *Grid) ToggleAll() {
	g.ensureSelection()
	g.state.Selected.toggleAll(g.data)
	g.fireSelection()
}

func (g *Grid) ClearSelection() {
	g.ensureSelection()
	g.state.Selected.clear()
	g.fireSelection()
}

// clearSelection is the implicit clear on query changes; it only notifies when something was
// selected.
func (g *Grid) clearSelection() {
	if len(g.state.Selected) == 0 {
		return
	}
	g.state.Selected.clear()
	g.fireSelection()
}

func (g *Grid) ensureSelection() {
	if g.state.Selected == nil {
		g.state.Selected = Selection{}
	}
}

func (g *Grid) fireSelection() {
	if g.cb.OnSelectionChange != nil {
		g.cb.OnSelectionChange(g.SelectedRows())
	}
}

// OpenMenu activates row id's trigger. Activating the owner's trigger again closes the menu;
// any other row takes the menu over. It reports whether the menu is open afterwards.
func (g *Grid) OpenMenu(id string, trigger Rect, viewport Size) bool {
	row, ok := g.RowByID(id)
	if !ok {
		return false
	}
	entries := g.cfg.Actions.Entries(row)
	if len(entries) == 0 {
		g.menu.close()
		return false
	}
	return g.menu.openFor(id, entries, trigger, viewport)
}

// CloseMenu closes the menu and returns the row whose trigger gets focus back.
func (g *Grid) CloseMenu() string {
	if !g.menu.open {
		return ""
	}
	return g.menu.close()
}

// MenuClickOutside dismisses the menu when p is outside both the menu and its trigger.
func (g *Grid) MenuClickOutside(p Point) (string, bool) {
	if !g.menu.open || g.menu.rect.Contains(p) || g.menu.trigger.Contains(p) {
		return "", false
	}
	return g.menu.close(), true
}

// MenuScroll dismisses the menu when the table scrolls.
func (g *Grid) MenuScroll() string { return g.CloseMenu() }

// MenuEscape closes the menu; the returned row's trigger regains focus.
func (g *Grid) MenuEscape() string { return g.CloseMenu() }

// MenuSelect runs the focused entry.
func (g *Grid) MenuSelect() bool { return g.MenuSelectIndex(g.menu.focus) }

// MenuSelectIndex closes the menu and invokes exactly one callback for entry i, resolving the
// row from the current data rather than from when the menu opened.
func (g *Grid) MenuSelectIndex(i int) bool {
	if !g.menu.open || i < 0 || i >= len(g.menu.entries) {
		return false
	}
	action := g.menu.entries[i].Action
	id := g.menu.close()
	row, ok := g.RowByID(id)
	// "view" goes to OnRowClick only; without its row there is nothing to show.
	if action == ActionView {
		if ok && g.cb.OnRowClick != nil {
			g.cb.OnRowClick(row)
		}
		return ok
	}
	if !ok {
		row = nil
	}
	if g.cb.OnAction != nil {
		g.cb.OnAction(action, row)
	}
	return true
}
