package store

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"propadmin/internal/grid"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

//go:embed views.yaml
var defaultViewsYAML []byte

const viewsFileName = "views.yaml"

// ViewDef is one configured entity table, as written in YAML.
type ViewDef struct {
	Name    string            `yaml:"name"`
	Title   string            `yaml:"title,omitempty"`
	Path    string            `yaml:"path"`
	PerPage *int              `yaml:"perPage,omitempty"`
	Static  map[string]string `yaml:"static,omitempty"`
	Columns []ColumnDef       `yaml:"columns"`
	Filters []FilterDef       `yaml:"filters,omitempty"`
	Actions ActionsDef        `yaml:"actions,omitempty"`
}

type ColumnDef struct {
	Key        string `yaml:"key"`
	Label      string `yaml:"label,omitempty"`
	Type       string `yaml:"type,omitempty"`
	Width      int    `yaml:"width,omitempty"`
	Suffix     string `yaml:"suffix,omitempty"`
	Sub        string `yaml:"sub,omitempty"`
	Unsortable bool   `yaml:"unsortable,omitempty"`
	// Currency overrides the currency symbol; DateLayout the rendered date layout.
	Currency   string `yaml:"currency,omitempty"`
	DateLayout string `yaml:"dateLayout,omitempty"`
}

type FilterDef struct {
	Key         string        `yaml:"key"`
	Label       string        `yaml:"label,omitempty"`
	Type        string        `yaml:"type,omitempty"`
	Options     []grid.Option `yaml:"options,omitempty"`
	OptionsURL  string        `yaml:"optionsUrl,omitempty"`
	OptionValue string        `yaml:"optionValue,omitempty"`
	OptionLabel string        `yaml:"optionLabel,omitempty"`
}

type ActionsDef struct {
	View    bool   `yaml:"view,omitempty"`
	Edit    bool   `yaml:"edit,omitempty"`
	History bool   `yaml:"history,omitempty"`
	Delete  bool   `yaml:"delete,omitempty"`
	Gallery string `yaml:"gallery,omitempty"`
	PDF     string `yaml:"pdf,omitempty"`
}

type viewsFile struct {
	Views []ViewDef `yaml:"views"`
}

// Views is the ordered, validated set of configured views.
type Views struct {
	defs []ViewDef
}

var ErrUnknownView = errors.New("unknown view")

func ParseViews(b []byte) ([]ViewDef, error) {
	var f viewsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse views: %w", err)
	}
	return f.Views, nil
}

// LoadViews returns the built-in views with any views.yaml in the config dir merged on top.
// User views with a known name replace the built-in one in place; new names are appended.
func LoadViews() (*Views, error) {
	defs, err := ParseViews(defaultViewsYAML)
	if err != nil {
		return nil, err
	}
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(dir, viewsFileName))
	switch {
	case err == nil:
		user, err := ParseViews(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", viewsFileName, err)
		}
		defs = mergeViews(defs, user)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}
	return NewViews(defs)
}

func mergeViews(base, user []ViewDef) []ViewDef {
	out := append([]ViewDef(nil), base...)
	idx := map[string]int{}
	for i, v := range out {
		idx[v.Name] = i
	}
	for _, v := range user {
		if i, ok := idx[v.Name]; ok {
			out[i] = v
			continue
		}
		idx[v.Name] = len(out)
		out = append(out, v)
	}
	return out
}

// NewViews validates defs and reports every problem at once.
func NewViews(defs []ViewDef) (*Views, error) {
	var result *multierror.Error
	seen := map[string]bool{}
	for i, v := range defs {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			result = multierror.Append(result, fmt.Errorf("view #%d: missing name", i+1))
			continue
		}
		if seen[name] {
			result = multierror.Append(result, fmt.Errorf("view %q: duplicate name", name))
		}
		seen[name] = true
		if err := v.validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &Views{defs: defs}, nil
}

func (v ViewDef) validate() error {
	var result *multierror.Error
	fail := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf("view %q: "+format, append([]any{v.Name}, args...)...))
	}
	if strings.TrimSpace(v.Path) == "" {
		fail("missing path")
	}
	if v.PerPage != nil && !grid.ValidPerPage(*v.PerPage) {
		fail("perPage %d not one of %v", *v.PerPage, grid.PerPageOptions)
	}
	if len(v.Columns) == 0 {
		fail("no columns")
	}
	cols := map[string]bool{}
	for _, c := range v.Columns {
		if strings.TrimSpace(c.Key) == "" {
			fail("column without key")
			continue
		}
		if cols[c.Key] {
			fail("duplicate column %q", c.Key)
		}
		cols[c.Key] = true
		if strings.EqualFold(c.Type, "custom") {
			fail("column %q: custom columns are code-only", c.Key)
		} else if _, err := grid.KindByName(c.Type); err != nil {
			fail("column %q: %v", c.Key, err)
		}
	}
	for _, f := range v.Filters {
		if grid.IsReservedKey(f.Key) {
			fail("filter key %q is reserved", f.Key)
		}
		switch strings.ToLower(f.Type) {
		case "", "text", "select":
		default:
			fail("filter %q: unknown type %q", f.Key, f.Type)
		}
	}
	for k := range v.Static {
		if grid.IsReservedKey(k) {
			fail("static key %q is reserved", k)
		}
	}
	return result.ErrorOrNil()
}

func (vs *Views) Names() []string {
	out := make([]string, 0, len(vs.defs))
	for _, v := range vs.defs {
		out = append(out, v.Name)
	}
	return out
}

func (vs *Views) Defs() []ViewDef { return vs.defs }

func (vs *Views) Get(name string) (ViewDef, error) {
	for _, v := range vs.defs {
		if v.Name == name {
			return v, nil
		}
	}
	return ViewDef{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownView, name, strings.Join(vs.Names(), ", "))
}

// GridConfig converts the definition into the grid's runtime configuration.
func (v ViewDef) GridConfig() grid.Config {
	cfg := grid.Config{
		Name:           v.Name,
		Title:          v.Title,
		Path:           v.Path,
		StaticDefaults: v.Static,
		DefaultPerPage: grid.DefaultPerPage,
		Actions: grid.ActionConfig{
			View:       v.Actions.View,
			Edit:       v.Actions.Edit,
			History:    v.Actions.History,
			Delete:     v.Actions.Delete,
			GalleryKey: v.Actions.Gallery,
			PDFKey:     v.Actions.PDF,
		},
	}
	if cfg.Title == "" {
		cfg.Title = v.Name
	}
	if v.PerPage != nil {
		cfg.DefaultPerPage = *v.PerPage
	}
	for _, c := range v.Columns {
		kind, _ := grid.KindByName(c.Type)
		switch k := kind.(type) {
		case grid.CurrencyKind:
			if c.Currency != "" {
				k.Symbol = c.Currency
				kind = k
			}
		case grid.DateKind:
			if c.DateLayout != "" {
				k.Layout = c.DateLayout
				kind = k
			}
		}
		label := c.Label
		if label == "" {
			label = c.Key
		}
		cfg.Columns = append(cfg.Columns, grid.Column{
			Key:        c.Key,
			Label:      label,
			Kind:       kind,
			Width:      c.Width,
			Suffix:     c.Suffix,
			SubKey:     c.Sub,
			Unsortable: c.Unsortable,
		})
	}
	for _, f := range v.Filters {
		fc := grid.FilterConfig{
			Key:         f.Key,
			Label:       f.Label,
			Options:     f.Options,
			OptionsURL:  f.OptionsURL,
			OptionValue: f.OptionValue,
			OptionLabel: f.OptionLabel,
		}
		if strings.EqualFold(f.Type, "select") {
			fc.Kind = grid.FilterSelect
		}
		if fc.Label == "" {
			fc.Label = f.Key
		}
		if f.Key == grid.NamedPeriod && len(fc.Options) == 0 && fc.OptionsURL == "" {
			fc.Options = periodOptions()
		}
		cfg.Filters = append(cfg.Filters, fc)
	}
	return cfg
}

func periodOptions() []grid.Option {
	out := make([]grid.Option, 0, len(grid.Periods))
	for _, p := range grid.Periods {
		out = append(out, grid.Option{Value: p.Name, Label: p.Label})
	}
	return out
}

// SortedStaticKeys is used by listings that show a view's fixed scope.
func (v ViewDef) SortedStaticKeys() []string {
	keys := make([]string, 0, len(v.Static))
	for k := range v.Static {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
