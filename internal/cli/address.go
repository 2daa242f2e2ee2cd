package cli

import (
	"context"
	"time"

	"propadmin/internal/format"
	"propadmin/internal/store"

	"github.com/spf13/cobra"
)

type addressList []store.AddressEntry

func (as addressList) Table() format.Table {
	t := format.Table{Headers: []string{"View", "Address", "Updated"}}
	for _, a := range as {
		t.Rows = append(t.Rows, []string{a.View, a.Query, a.UpdatedAt.Local().Format(time.DateTime)})
	}
	return t
}

func newAddressCmd(app *App) *cobra.Command {
	var forget bool
	cmd := &cobra.Command{
		Use:   "address [view]",
		Short: "Show or clear stored view addresses",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			book, err := openBook(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer book.Close()

			if len(args) == 0 {
				if forget {
					return writeErr(cmd, usageError{msg: "--clear needs a view"})
				}
				all, err := book.All(ctx)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, addressList(all))
			}

			views, err := store.LoadViews()
			if err != nil {
				return writeErr(cmd, err)
			}
			def, err := views.Get(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if forget {
				if err := book.Clear(ctx, def.Name); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"view": def.Name, "cleared": true})
			}
			q, err := book.Get(ctx, def.Name)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, store.AddressEntry{View: def.Name, Query: q})
		},
	}
	cmd.Flags().BoolVar(&forget, "clear", false, "Forget the view's address")
	return cmd
}
