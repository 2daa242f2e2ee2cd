package cli

import (
	"context"
	"strings"

	"propadmin/internal/store"
	"propadmin/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBrowseCmd(app *App) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "browse [view]",
		Short: "Open the interactive console",
		Long: strings.TrimSpace(`
Open the interactive console, optionally straight into a view.

--query replaces the view's stored address before the console reads it, so an address copied
with "y" in the console reopens the same search, filters and sort.
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := ""
			if len(args) == 1 {
				view = args[0]
			}
			return runBrowse(cmd, app, view, query)
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "Address to open the view at (requires a view)")
	return cmd
}

func runBrowse(cmd *cobra.Command, app *App, view, query string) error {
	views, err := store.LoadViews()
	if err != nil {
		return writeErr(cmd, err)
	}
	if view == "" && app.cfg != nil {
		view = app.cfg.DefaultView
	}
	if view != "" {
		def, err := views.Get(view)
		if err != nil {
			return writeErr(cmd, err)
		}
		view = def.Name
	}
	if query != "" && view == "" {
		return writeErr(cmd, errQueryWithoutView)
	}

	client, err := app.client()
	if err != nil {
		return writeErr(cmd, err)
	}

	ctx := context.Background()
	log := app.logger()
	book, err := openBook(ctx)
	if err != nil {
		// Addresses then last for the session only.
		log.Warn("address book unavailable", zap.Error(err))
		book = nil
	} else {
		defer book.Close()
		if query != "" {
			if err := book.Put(ctx, view, strings.TrimPrefix(strings.TrimSpace(query), "?")); err != nil {
				return writeErr(cmd, err)
			}
		}
	}

	profile := ""
	if app.cfg != nil && app.cfg.TUI != nil {
		profile = app.cfg.TUI.Profile
	}
	return tui.Run(tui.Options{
		Backend: client,
		Views:   views,
		Book:    book,
		View:    view,
		Profile: profile,
		Logger:  log,
		Timeout: app.Timeout,
	})
}
