package cli

import (
	"strconv"
	"strings"

	"propadmin/internal/format"
	"propadmin/internal/grid"
	"propadmin/internal/store"

	"github.com/spf13/cobra"
)

type viewSummary struct {
	Name    string            `json:"name"`
	Title   string            `json:"title"`
	Path    string            `json:"path"`
	PerPage int               `json:"perPage"`
	Static  map[string]string `json:"static,omitempty"`
	Columns []string          `json:"columns"`
	Filters []string          `json:"filters,omitempty"`
}

type viewList []viewSummary

func (vs viewList) Table() format.Table {
	t := format.Table{Headers: []string{"Name", "Title", "Path", "Per page", "Filters"}}
	for _, v := range vs {
		per := strconv.Itoa(v.PerPage)
		if v.PerPage == grid.Unbounded {
			per = "all"
		}
		t.Rows = append(t.Rows, []string{v.Name, v.Title, v.Path, per, strings.Join(v.Filters, ", ")})
	}
	return t
}

func summarizeViews(views *store.Views) viewList {
	out := viewList{}
	for _, d := range views.Defs() {
		cfg := d.GridConfig()
		s := viewSummary{
			Name:    d.Name,
			Title:   cfg.Title,
			Path:    cfg.Path,
			PerPage: cfg.DefaultPerPage,
			Static:  cfg.StaticDefaults,
		}
		for _, c := range cfg.Columns {
			s.Columns = append(s.Columns, c.Key)
		}
		for _, f := range cfg.Filters {
			s.Filters = append(s.Filters, f.Key)
		}
		out = append(out, s)
	}
	return out
}

func newViewsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List configured views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := store.LoadViews()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, summarizeViews(views))
		},
	}
}
