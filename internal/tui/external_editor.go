package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type externalEditorDoneMsg struct {
	err error
}

func externalEditorName() string {
	if v := strings.TrimSpace(os.Getenv("VISUAL")); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("EDITOR")); v != "" {
		return v
	}
	return "vi"
}

// splitShellWords splits an editor command line into argv. Single quotes are literal, double
// quotes group words, and a backslash escapes the next rune outside single quotes.
func splitShellWords(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped, inWord = true, true
		case quote == '"':
			if r == '"' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote, inWord = r, true
		case r == ' ' || r == '\t' || r == '\n':
			if inWord {
				out = append(out, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		out = append(out, cur.String())
	}
	return out
}

func (m *appModel) fetchForEdit(t *gridTab, path string) tea.Cmd {
	backend, timeout, view := m.backend, m.timeout, t.def.Name
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		raw, err := backend.Get(ctx, path)
		return editFetchedMsg{view: view, path: path, raw: raw, err: err}
	}
}

// openExternalEditor writes the record as indented JSON to a temp file and suspends the
// console while the editor runs.
func (m *appModel) openExternalEditor(msg editFetchedMsg) (tea.Cmd, error) {
	args := splitShellWords(externalEditorName())
	if len(args) == 0 {
		args = []string{"vi"}
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, msg.raw, "", "  "); err != nil {
		return nil, fmt.Errorf("record is not JSON: %w", err)
	}
	pretty.WriteByte('\n')

	f, err := os.CreateTemp("", "propadmin-"+msg.view+"-*.json")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	if _, err := f.Write(pretty.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	_ = f.Close()

	m.editPath = path
	m.editBefore = pretty.String()
	m.editRowPath = msg.path
	m.editView = msg.view

	cmd := exec.Command(args[0], append(args[1:], path)...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return externalEditorDoneMsg{err: err}
	}), nil
}

// applyExternalEditorResult validates the edited file and sends it back as an update.
func (m *appModel) applyExternalEditorResult(msg externalEditorDoneMsg) tea.Cmd {
	path, before := m.editPath, m.editBefore
	rowPath, view := m.editRowPath, m.editView
	m.editPath, m.editBefore, m.editRowPath, m.editView = "", "", "", ""

	if strings.TrimSpace(path) == "" {
		return nil
	}
	defer func() { _ = os.Remove(path) }()

	if msg.err != nil {
		return m.showError("Editor failed: " + msg.err.Error())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return m.showError("Editor read failed: " + err.Error())
	}
	if strings.TrimSpace(string(b)) == strings.TrimSpace(before) {
		return m.showMinibuffer(fmt.Sprintf("No changes from %s", externalEditorName()))
	}
	if !json.Valid(b) {
		return m.showError("Not saved: the edited record is not valid JSON")
	}

	backend, timeout := m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := backend.Update(ctx, rowPath, b)
		n := 1
		if err != nil {
			n = 0
		}
		return mutationDoneMsg{view: view, op: "update", n: n, err: err}
	}
}
