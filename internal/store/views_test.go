package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"propadmin/internal/grid"
)

func TestLoadViews_BuiltinsAreValid(t *testing.T) {
	t.Setenv("PROPADMIN_CONFIG_DIR", t.TempDir())

	vs, err := LoadViews()
	if err != nil {
		t.Fatalf("LoadViews: %v", err)
	}
	got := strings.Join(vs.Names(), ",")
	if got != "properties,contracts,invoices-income,invoices-expense,tenants" {
		t.Fatalf("unexpected views: %s", got)
	}

	v, err := vs.Get("invoices-income")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	cfg := v.GridConfig()
	if cfg.Path != "/invoices" || cfg.DefaultPerPage != 100 || cfg.StaticDefaults["tipo"] != "ingreso" {
		t.Fatalf("unexpected grid config: %#v", cfg)
	}
	col, ok := findColumn(cfg.Columns, "importe")
	if !ok {
		t.Fatalf("missing importe column")
	}
	if _, ok := col.Kind.(grid.CurrencyKind); !ok {
		t.Fatalf("expected currency kind; got %T", col.Kind)
	}
	if cfg.Filters[0].Kind != grid.FilterSelect || cfg.Filters[0].LabelFor("pendiente") != "Unpaid" {
		t.Fatalf("unexpected status filter: %#v", cfg.Filters[0])
	}
}

func TestGridConfig_PeriodFilterGetsNamedPeriods(t *testing.T) {
	t.Setenv("PROPADMIN_CONFIG_DIR", t.TempDir())
	vs, err := LoadViews()
	if err != nil {
		t.Fatalf("LoadViews: %v", err)
	}
	v, _ := vs.Get("contracts")
	cfg := v.GridConfig()
	if cfg.DefaultPerPage != grid.DefaultPerPage {
		t.Fatalf("expected default page size; got %d", cfg.DefaultPerPage)
	}
	var period grid.FilterConfig
	for _, f := range cfg.Filters {
		if f.Key == grid.NamedPeriod {
			period = f
		}
	}
	if len(period.Options) != len(grid.Periods) || period.LabelFor("this_year") != "This year" {
		t.Fatalf("expected named period options; got %#v", period.Options)
	}
}

func TestLoadViews_UserFileReplacesByName(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROPADMIN_CONFIG_DIR", dir)
	user := `
views:
  - name: tenants
    title: Inquilinos
    path: /v2/tenants
    perPage: 0
    columns:
      - { key: nombre, label: Nombre }
  - name: owners
    path: /owners
    columns:
      - { key: nombre }
`
	if err := os.WriteFile(filepath.Join(dir, viewsFileName), []byte(user), 0o644); err != nil {
		t.Fatalf("write views.yaml: %v", err)
	}
	vs, err := LoadViews()
	if err != nil {
		t.Fatalf("LoadViews: %v", err)
	}
	names := vs.Names()
	if names[len(names)-2] != "tenants" || names[len(names)-1] != "owners" {
		t.Fatalf("expected tenants replaced in place and owners appended; got %v", names)
	}
	v, _ := vs.Get("tenants")
	cfg := v.GridConfig()
	if cfg.Path != "/v2/tenants" || cfg.DefaultPerPage != grid.Unbounded {
		t.Fatalf("user view not applied: %#v", cfg)
	}
	o, _ := vs.Get("owners")
	if o.GridConfig().Title != "owners" || o.GridConfig().Columns[0].Label != "nombre" {
		t.Fatalf("expected name/key fallbacks; got %#v", o.GridConfig())
	}
}

func TestNewViews_ReportsEveryProblem(t *testing.T) {
	bad := 75
	defs := []ViewDef{
		{Name: "a", Path: "/a", PerPage: &bad, Columns: []ColumnDef{{Key: "x", Type: "sparkline"}}},
		{Name: "a", Path: "", Columns: []ColumnDef{{Key: "y"}, {Key: "y"}}},
		{Name: "b", Path: "/b", Columns: []ColumnDef{{Key: "z"}},
			Filters: []FilterDef{{Key: "page"}, {Key: "estado", Type: "range"}},
			Static:  map[string]string{"sort": "x"}},
		{Path: "/c"},
	}
	_, err := NewViews(defs)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		`perPage 75`,
		`unknown column type "sparkline"`,
		`view "a": duplicate name`,
		`missing path`,
		`duplicate column "y"`,
		`filter key "page" is reserved`,
		`unknown type "range"`,
		`static key "sort" is reserved`,
		`view #4: missing name`,
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in error:\n%s", want, msg)
		}
	}
}

func TestViewsGet_Unknown(t *testing.T) {
	vs, err := NewViews([]ViewDef{{Name: "a", Path: "/a", Columns: []ColumnDef{{Key: "id"}}}})
	if err != nil {
		t.Fatalf("NewViews: %v", err)
	}
	if _, err := vs.Get("zzz"); !errors.Is(err, ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView; got %v", err)
	}
}

func findColumn(cols []grid.Column, key string) (grid.Column, bool) {
	for _, c := range cols {
		if c.Key == key {
			return c, true
		}
	}
	return grid.Column{}, false
}
