package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"propadmin/internal/api"
	"propadmin/internal/grid"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

func (m *appModel) runAction(t *gridTab, action string, row grid.Row) tea.Cmd {
	if row == nil {
		return m.showError("That row is no longer loaded")
	}
	m.log.Debug("row action", zap.String("view", t.def.Name), zap.String("action", action), zap.String("id", row.ID()))
	acts := t.g.Config().Actions
	switch action {
	case grid.ActionView:
		return m.openRecord(t, row)
	case grid.ActionHistory:
		return m.openHistory(t, row)
	case grid.ActionGallery:
		return m.openRowURL(row, acts.GalleryKey)
	case grid.ActionPDF:
		return m.openRowURL(row, acts.PDFKey)
	case grid.ActionEdit:
		return tea.Batch(m.showMinibuffer("Fetching record…"), m.fetchForEdit(t, api.RowPath(t.def.Path, row.ID())))
	case grid.ActionDelete:
		m.confirmDelete([]string{row.ID()}, false)
		return nil
	}
	return m.showError("Unknown action: " + action)
}

// firstURL extracts a link from a row field: a string, a list of strings or objects with a
// url/src field, or such an object.
func firstURL(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, x := range t {
			if u := firstURL(x); u != "" {
				return u
			}
		}
	case map[string]any:
		for _, k := range []string{"url", "src", "href"} {
			if s, ok := t[k].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func (m *appModel) openRowURL(row grid.Row, key string) tea.Cmd {
	u := firstURL(row[key])
	if u == "" {
		return m.showError("Nothing to open")
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = m.backend.URL(u, "")
	}
	return tea.Batch(m.showMinibuffer("Opening "+u), openURL(u))
}

func openURL(u string) tea.Cmd {
	u = strings.TrimSpace(u)
	if u == "" {
		return func() tea.Msg { return urlOpenDoneMsg{err: errors.New("empty url")} }
	}
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", u)
		case "windows":
			cmd = exec.Command("cmd", "/c", "start", "", u)
		default:
			cmd = exec.Command("xdg-open", u)
		}
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		if err := cmd.Start(); err != nil {
			return urlOpenDoneMsg{err: err}
		}
		return urlOpenDoneMsg{err: cmd.Wait()}
	}
}

func (m *appModel) confirmDelete(ids []string, bulk bool) {
	m.confirmIDs = ids
	m.confirmFocus = confirmFocusCancel
	m.modal = modalConfirmDelete
	if bulk {
		m.modal = modalConfirmBulkDelete
	}
}

func (m *appModel) updateConfirmDelete(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+g", "n", "q":
		m.modal = modalNone
		m.confirmIDs = nil
		return nil
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return nil
	case "y":
		m.confirmFocus = confirmFocusConfirm
		fallthrough
	case "enter":
		ids := m.confirmIDs
		m.modal = modalNone
		m.confirmIDs = nil
		t := m.activeTab()
		if m.confirmFocus != confirmFocusConfirm || t == nil || len(ids) == 0 {
			return nil
		}
		return tea.Batch(m.showMinibuffer(fmt.Sprintf("Deleting %d…", len(ids))), m.deleteCmd(t, ids))
	}
	return nil
}

func (m appModel) renderDeleteConfirm() string {
	n := len(m.confirmIDs)
	body := "Delete this record? This cannot be undone."
	if m.modal == modalConfirmBulkDelete {
		body = fmt.Sprintf("Delete %d selected records? This cannot be undone.", n)
	}
	return renderConfirmModal(m.width, "Delete", body, "Delete", "Cancel", m.confirmFocus)
}

// deleteCmd deletes ids one by one. Failures do not stop the rest.
func (m *appModel) deleteCmd(t *gridTab, ids []string) tea.Cmd {
	backend, timeout := m.backend, m.timeout
	view, listPath := t.def.Name, t.def.Path
	return func() tea.Msg {
		var merr *multierror.Error
		ok := 0
		for _, id := range ids {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			err := backend.Delete(ctx, api.RowPath(listPath, id))
			cancel()
			if err != nil {
				merr = multierror.Append(merr, fmt.Errorf("%s: %w", id, err))
				continue
			}
			ok++
		}
		return mutationDoneMsg{view: view, op: "delete", n: ok, err: merr.ErrorOrNil()}
	}
}

func mutationFailure(err error) string {
	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		msg := grid.UserMessage(merr.Errors[0])
		if len(merr.Errors) > 1 {
			return fmt.Sprintf("%d failed: %s", len(merr.Errors), msg)
		}
		return msg
	}
	return grid.UserMessage(err)
}

func (m *appModel) applyMutationDone(msg mutationDoneMsg) tea.Cmd {
	t := m.tabs[msg.view]
	var note tea.Cmd
	switch {
	case msg.err != nil && msg.op == "delete":
		note = m.showError(fmt.Sprintf("Deleted %d; %s", msg.n, mutationFailure(msg.err)))
	case msg.err != nil:
		note = m.showError("Save failed: " + mutationFailure(msg.err))
	case msg.op == "delete" && msg.n == 1:
		note = m.showMinibuffer("Deleted 1 record")
	case msg.op == "delete":
		note = m.showMinibuffer(fmt.Sprintf("Deleted %d records", msg.n))
	default:
		note = m.showMinibuffer("Saved")
	}
	if t == nil || msg.n == 0 {
		return note
	}
	if msg.op == "delete" && len(t.g.SelectedIDs()) > 0 {
		t.g.ClearSelection()
	}
	return tea.Batch(note, m.loadCmd(t))
}

// shareCommand is the command line that reopens the view at its current address.
func shareCommand(t *gridTab) string {
	s := "propadmin browse " + t.def.Name
	if addr := t.g.Address(); addr != "" {
		s += " --query '" + addr + "'"
	}
	return s
}

func (m *appModel) copyAddress(t *gridTab) tea.Cmd {
	s := shareCommand(t)
	if err := copyToClipboard(s); err != nil {
		return m.showError("Copy failed: " + err.Error())
	}
	return m.showMinibuffer("Copied: " + s)
}
