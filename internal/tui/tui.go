package tui

import (
	"context"
	"encoding/json"
	"time"

	"propadmin/internal/grid"
	"propadmin/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Backend is what the console needs from the REST API.
type Backend interface {
	grid.Fetcher
	Options(ctx context.Context, rawURL, valueKey, labelKey string) ([]grid.Option, error)
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Update(ctx context.Context, path string, body []byte) error
	Delete(ctx context.Context, path string) error
	History(ctx context.Context, listPath, id string) ([]grid.Row, error)
	// URL resolves a backend-relative path (photos, PDFs) into an absolute URL.
	URL(path, query string) string
}

type Options struct {
	Backend Backend
	Views   *store.Views
	// Book persists each view's address. Without it addresses live for the session only.
	Book *store.AddressBook
	// View opens directly; empty starts at the view picker.
	View    string
	Profile string
	Logger  *zap.Logger
	// Timeout bounds every backend call made from the console.
	Timeout time.Duration
}

func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference()
	applyAppearancePreference(opts.Profile)

	m := newAppModel(opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if fm, ok := final.(appModel); ok {
		fm.saveUIState()
	}
	return err
}
