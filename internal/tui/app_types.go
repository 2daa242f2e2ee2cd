package tui

import (
	"propadmin/internal/grid"
)

type screen int

const (
	screenPicker screen = iota
	screenGrid
	screenDetail
)

type modalKind int

const (
	modalNone modalKind = iota
	modalFilters
	modalFilterText
	modalFilterPick
	modalConfirmDelete
	modalConfirmBulkDelete
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

// focusArea is where keyboard input goes on the grid screen when no modal is open.
type focusArea int

const (
	focusRows focusArea = iota
	focusSearch
	focusChips
)

type minibufferTickMsg struct{}

type resizeDoneMsg struct{ seq int }

// loadedMsg carries a list response back to the UI loop. view guards against a response
// arriving after the user switched views.
type loadedMsg struct {
	view string
	req  grid.Request
	page *grid.Page
	err  error
}

type searchDebounceMsg struct{ seq int }

type optionsLoadedMsg struct {
	view string
	key  string
	opts []grid.Option
	err  error
}

type detailLoadedMsg struct {
	seq   int
	title string
	md    string
	err   error
}

type mutationDoneMsg struct {
	view string
	op   string
	// n counts the records the operation succeeded on.
	n   int
	err error
}

// editFetchedMsg carries the record about to be opened in the external editor.
type editFetchedMsg struct {
	view string
	path string
	raw  []byte
	err  error
}

type urlOpenDoneMsg struct{ err error }

// pendingEvents collects what grid callbacks report during one Update. It is shared by
// pointer so the value-copied model and the grid's closures see the same queue.
type pendingEvents struct {
	notices []string
	actions []pendingAction
}

type pendingAction struct {
	action string
	row    grid.Row
}

func (p *pendingEvents) Notify(msg string) { p.notices = append(p.notices, msg) }

func (p *pendingEvents) drain() ([]string, []pendingAction) {
	n, a := p.notices, p.actions
	p.notices, p.actions = nil, nil
	return n, a
}

type openViewMsg struct{ name string }
