package tui

import (
	"context"
	"strings"
	"time"

	"propadmin/internal/grid"
	"propadmin/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const (
	minibufferAutoClearAfter = 4 * time.Second
	searchDebounce           = 300 * time.Millisecond
	resizeSettle             = 60 * time.Millisecond
	defaultBackendTimeout    = 30 * time.Second
)

type appModel struct {
	backend Backend
	views   *store.Views
	book    *store.AddressBook
	log     *zap.Logger
	timeout time.Duration

	width  int
	height int

	screen screen
	modal  modalKind
	focus  focusArea

	picker list.Model
	tabs   map[string]*gridTab
	active string

	keys     gridKeyMap
	help     help.Model
	spinner  spinner.Model
	spinning bool

	search    textinput.Model
	searchSeq int

	chipCursor int

	// filter panel
	filterCursor int
	filterKey    string
	filterInput  textinput.Model
	pickOptions  []grid.Option
	pickCursor   int
	pickLoading  bool
	pickPeriod   bool

	// delete confirmation
	confirmFocus confirmModalFocus
	confirmIDs   []string

	detail        viewport.Model
	detailTitle   string
	detailMD      string
	detailSeq     int
	detailLoading bool

	// record being edited in the external editor
	editPath    string
	editBefore  string
	editRowPath string
	editView    string

	minibufferText  string
	minibufferErr   bool
	minibufferSetAt time.Time

	resizeSeq int
	uiState   *store.TUIState
	startView string
}

func newAppModel(opts Options) appModel {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultBackendTimeout
	}

	st, err := store.LoadTUIState()
	if err != nil {
		log.Warn("load ui state", zap.Error(err))
		st = &store.TUIState{}
	}
	st.Prune(opts.Views.Names())

	m := appModel{
		backend:   opts.Backend,
		views:     opts.Views,
		book:      opts.Book,
		log:       log,
		timeout:   timeout,
		screen:    screenPicker,
		tabs:      map[string]*gridTab{},
		keys:      newGridKeyMap(),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		uiState:   st,
		startView: strings.TrimSpace(opts.View),
	}

	m.search = textinput.New()
	m.search.Prompt = "/ "
	m.search.Placeholder = "search"
	m.search.CharLimit = 200

	m.filterInput = textinput.New()
	m.filterInput.Prompt = ""
	m.filterInput.CharLimit = 200

	m.picker = newViewPicker(opts.Views, st.LastView)
	m.detail = viewport.New(0, 0)
	return m
}

func (m appModel) Init() tea.Cmd {
	if m.startView == "" {
		return nil
	}
	name := m.startView
	return func() tea.Msg { return openViewMsg{name: name} }
}

func (m *appModel) activeTab() *gridTab {
	if m.active == "" {
		return nil
	}
	return m.tabs[m.active]
}

// location returns where a view's address is read from and written to.
func (m *appModel) location(view string) grid.Location {
	if m.book != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		loc, err := m.book.Location(ctx, view)
		if err == nil {
			return loc
		}
		m.log.Warn("address book unavailable", zap.String("view", view), zap.Error(err))
	}
	return grid.NewMemoryLocation("")
}

func (m *appModel) openView(name string) tea.Cmd {
	if m.views == nil {
		return m.showError("No views configured")
	}
	def, err := m.views.Get(name)
	if err != nil {
		return m.showError(err.Error())
	}
	t := m.tabs[def.Name]
	if t == nil {
		t = newGridTab(def, m.location(def.Name), m.backend, m.log.With(zap.String("view", def.Name)))
		if key := m.uiState.Column(def.Name); key != "" {
			t.focusColumn(key)
		}
		m.tabs[def.Name] = t
	}
	m.active = def.Name
	m.screen = screenGrid
	m.modal = modalNone
	m.focus = focusRows
	m.chipCursor = 0
	m.searchSeq++
	m.search.SetValue(t.g.State().Search)
	m.search.Blur()
	return m.loadCmd(t)
}

func (m *appModel) showMinibuffer(text string) tea.Cmd {
	m.minibufferText = text
	m.minibufferErr = false
	m.minibufferSetAt = time.Now()
	return tea.Tick(minibufferAutoClearAfter, func(time.Time) tea.Msg { return minibufferTickMsg{} })
}

func (m *appModel) showError(text string) tea.Cmd {
	cmd := m.showMinibuffer(text)
	m.minibufferErr = true
	return cmd
}

func (m *appModel) clearMinibufferIfStale(now time.Time) {
	if m.minibufferText == "" || m.minibufferSetAt.IsZero() {
		return
	}
	if now.Sub(m.minibufferSetAt) >= minibufferAutoClearAfter {
		m.minibufferText = ""
		m.minibufferErr = false
		m.minibufferSetAt = time.Time{}
	}
}

func (m *appModel) anyInflight() bool {
	for _, t := range m.tabs {
		if t.inflight > 0 {
			return true
		}
	}
	return m.detailLoading
}

func (m *appModel) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// saveUIState records the last view and each view's focused column for the next launch.
func (m appModel) saveUIState() {
	st := m.uiState
	if st == nil {
		return
	}
	if m.active != "" {
		st.LastView = m.active
	}
	for name, t := range m.tabs {
		if c, ok := t.focusedColumn(); ok {
			st.Remember(name, c.Key)
		}
	}
	if err := store.SaveTUIState(st); err != nil {
		m.log.Warn("save ui state", zap.Error(err))
	}
}

func (m appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	var base string
	switch m.screen {
	case screenGrid:
		base = m.renderGridScreen()
	case screenDetail:
		base = m.renderDetailScreen()
	default:
		base = m.renderPickerScreen()
	}

	if modal := m.renderModal(); modal != "" {
		w := lipgloss.Width(modal)
		h := lipgloss.Height(modal)
		base = overlayAt(base, modal, (m.width-w)/2, (m.height-h)/3)
	}
	return base
}

func (m appModel) renderModal() string {
	switch m.modal {
	case modalFilters:
		return m.renderFilterPanel()
	case modalFilterText:
		return m.renderFilterTextModal()
	case modalFilterPick:
		return m.renderFilterPickModal()
	case modalConfirmDelete, modalConfirmBulkDelete:
		return m.renderDeleteConfirm()
	}
	return ""
}

func (m appModel) renderStatusLine() string {
	if m.minibufferText != "" {
		st := lipgloss.NewStyle().Foreground(colorSurfaceFg)
		if m.minibufferErr {
			st = styleError()
		}
		return fitLine(st.Render(m.minibufferText), m.width)
	}
	h := m.help
	h.Width = m.width
	return normalizePane(h.View(m.keys), m.width, 0)
}
