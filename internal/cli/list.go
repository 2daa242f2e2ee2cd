package cli

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"propadmin/internal/format"
	"propadmin/internal/grid"
	"propadmin/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type listResult struct {
	View    string         `json:"view"`
	Address string         `json:"address"`
	Page    int            `json:"page"`
	Pages   int            `json:"pages"`
	PerPage int            `json:"perPage"`
	Total   int            `json:"total"`
	Rows    []grid.Row     `json:"rows"`
	Totals  map[string]any `json:"totals,omitempty"`

	columns []grid.Column
}

func (r listResult) Table() format.Table {
	t := format.Table{}
	for _, c := range r.columns {
		t.Headers = append(t.Headers, c.Label)
	}
	for _, row := range r.Rows {
		cells := make([]string, len(r.columns))
		for i, c := range r.columns {
			cells[i] = c.Cell(row)
		}
		t.Rows = append(t.Rows, cells)
	}
	if len(r.Totals) > 0 {
		t.Footer = make([]string, len(r.columns))
		for i, c := range r.columns {
			t.Footer[i] = c.Total(r.Totals)
		}
	}
	return t
}

// pagedLocation serves the stored address with pagination overrides applied. Writes go to the
// underlying location, which only ever receives addresses without pagination.
type pagedLocation struct {
	grid.Location
	query string
}

func (l pagedLocation) Query() string { return l.query }

func withPagination(query string, page, perPage int) string {
	vals, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil && vals == nil {
		vals = url.Values{}
	}
	if page > 0 {
		vals.Set(grid.ParamPage, strconv.Itoa(page))
	}
	if perPage >= 0 {
		vals.Set(grid.ParamPerPage, strconv.Itoa(perPage))
	}
	return vals.Encode()
}

func newListCmd(app *App) *cobra.Command {
	var (
		query   string
		page    int
		perPage int
		noSave  bool
	)
	cmd := &cobra.Command{
		Use:   "list <view>",
		Short: "Load one page of a view and print it",
		Long: strings.TrimSpace(`
Load one page of a view the way the console does: the stored address (or --query) decides
search, filters and sort, and the resulting address is stored again unless --no-save is given.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("per-page") && !grid.ValidPerPage(perPage) {
				return writeErr(cmd, usageError{msg: fmt.Sprintf("--per-page must be one of %s (0 = all)", perPageChoices())})
			}
			if !cmd.Flags().Changed("per-page") {
				perPage = -1
			}
			if page < 0 {
				return writeErr(cmd, usageError{msg: "--page must be positive"})
			}

			views, err := store.LoadViews()
			if err != nil {
				return writeErr(cmd, err)
			}
			def, err := views.Get(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			client, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx := context.Background()
			log := app.logger().With(zap.String("view", def.Name))
			var loc grid.Location = grid.NewMemoryLocation(query)
			if !noSave {
				book, err := openBook(ctx)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer book.Close()
				if query != "" {
					if err := book.Put(ctx, def.Name, strings.TrimPrefix(query, "?")); err != nil {
						return writeErr(cmd, err)
					}
				}
				if loc, err = book.Location(ctx, def.Name); err != nil {
					return writeErr(cmd, err)
				}
			}
			loc = pagedLocation{Location: loc, query: withPagination(loc.Query(), page, perPage)}

			g := grid.New(def.GridConfig(),
				grid.WithLocation(loc),
				grid.WithFetcher(client),
				grid.WithLogger(log),
			)
			if err := g.Load(ctx); err != nil {
				msg := grid.UserMessage(err)
				if msg == grid.GenericLoadError {
					msg = err.Error()
				}
				return writeErr(cmd, fmt.Errorf("%s: %s", def.Name, msg))
			}

			st := g.State()
			return writeOut(cmd, app, listResult{
				View:    def.Name,
				Address: g.Address(),
				Page:    st.Page,
				Pages:   g.TotalPages(),
				PerPage: st.PerPage,
				Total:   g.Total(),
				Rows:    g.Data(),
				Totals:  g.Totals(),
				columns: g.Config().Columns,
			})
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "Address to load (replaces the stored one)")
	cmd.Flags().IntVar(&page, "page", 0, "Page number (default: 1)")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Rows per page")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not read or store the view's address")
	return cmd
}

func perPageChoices() string {
	parts := make([]string, 0, len(grid.PerPageOptions))
	for _, n := range grid.PerPageOptions {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ", ")
}
