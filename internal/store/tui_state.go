package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const (
	tuiStateFileName = "tui_state.json"
	tuiStateVersion  = 1
)

// TUIState is what the console restores on relaunch: the last open view and, per view, the
// column under the column cursor. Losing it is harmless, so corrupt files read as empty.
type TUIState struct {
	Version       int               `json:"version"`
	LastView      string            `json:"lastView,omitempty"`
	FocusedColumn map[string]string `json:"focusedColumn,omitempty"`
}

func newTUIState() *TUIState {
	return &TUIState{Version: tuiStateVersion, FocusedColumn: map[string]string{}}
}

// Column returns the remembered column key for view, or "".
func (s *TUIState) Column(view string) string {
	if s == nil {
		return ""
	}
	return s.FocusedColumn[view]
}

func (s *TUIState) Remember(view, column string) {
	if s.FocusedColumn == nil {
		s.FocusedColumn = map[string]string{}
	}
	if column == "" {
		delete(s.FocusedColumn, view)
		return
	}
	s.FocusedColumn[view] = column
}

// Prune forgets views that are no longer defined.
func (s *TUIState) Prune(known []string) {
	keep := make(map[string]bool, len(known))
	for _, n := range known {
		keep[n] = true
	}
	for view := range s.FocusedColumn {
		if !keep[view] {
			delete(s.FocusedColumn, view)
		}
	}
	if !keep[s.LastView] {
		s.LastView = ""
	}
}

func tuiStatePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tuiStateFileName), nil
}

// LoadTUIState never returns a nil state without an error.
func LoadTUIState() (*TUIState, error) {
	path, err := tuiStatePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return newTUIState(), nil
	}
	if err != nil {
		return nil, err
	}
	st := newTUIState()
	if json.Unmarshal(b, st) != nil {
		return newTUIState(), nil
	}
	st.Version = tuiStateVersion
	if st.FocusedColumn == nil {
		st.FocusedColumn = map[string]string{}
	}
	return st, nil
}

func SaveTUIState(st *TUIState) error {
	if st == nil {
		return nil
	}
	path, err := tuiStatePath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	st.Version = tuiStateVersion
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, tuiStateFileName+".*.tmp", path, b, 0o644)
}
