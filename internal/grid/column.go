package grid

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
)

// Row is one record returned by the list endpoint.
type Row map[string]any

// ID returns the row identifier as a string (backends send both strings and numbers).
func (r Row) ID() string {
	return valueString(r["id"])
}

// String returns field key formatted as plain text.
func (r Row) String(key string) string {
	return valueString(r[key])
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}

func valueFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// Kind is the semantic type of a column. The set is closed: every variant lives in this file,
// so cell formatting is a method call rather than a string switch.
type Kind interface {
	Format(v any, row Row) string
	isKind()
}

type TextKind struct{}

type CurrencyKind struct {
	Symbol string
}

type DateKind struct {
	// Layout is the output layout; inputs are parsed leniently.
	Layout string
}

type StatusKind struct{}

type TagsKind struct{}

type BoolKind struct{}

type ThumbnailKind struct{}

type MultilineKind struct{}

// CustomKind delegates to a caller-supplied renderer.
type CustomKind struct {
	Render func(row Row) string
}

func (TextKind) isKind()      {}
func (CurrencyKind) isKind()  {}
func (DateKind) isKind()      {}
func (StatusKind) isKind()    {}
func (TagsKind) isKind()      {}
func (BoolKind) isKind()      {}
func (ThumbnailKind) isKind() {}
func (MultilineKind) isKind() {}
func (CustomKind) isKind()    {}

func (TextKind) Format(v any, _ Row) string { return valueString(v) }

func (k CurrencyKind) Format(v any, _ Row) string {
	f, ok := valueFloat(v)
	if !ok {
		return valueString(v)
	}
	sym := k.Symbol
	if sym == "" {
		sym = "€"
	}
	return formatThousands(f) + " " + sym
}

func formatThousands(f float64) string {
	neg := f < 0
	if neg {
		f = -f
	}
	s := strconv.FormatFloat(f, 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}

func (k DateKind) Format(v any, _ Row) string {
	s := strings.TrimSpace(valueString(v))
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return s
	}
	layout := k.Layout
	if layout == "" {
		layout = "02/01/2006"
	}
	return t.Format(layout)
}

func (StatusKind) Format(v any, _ Row) string { return valueString(v) }

func (TagsKind) Format(v any, _ Row) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, x := range t {
			if s := valueString(x); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	}
	return valueString(v)
}

func (BoolKind) Format(v any, _ Row) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "yes"
		}
		return "no"
	case nil:
		return ""
	}
	switch strings.ToLower(valueString(v)) {
	case "1", "true", "si", "sí", "yes":
		return "yes"
	case "0", "false", "no":
		return "no"
	}
	return valueString(v)
}

func (ThumbnailKind) Format(v any, _ Row) string {
	if valueString(v) == "" {
		return ""
	}
	return "[img]"
}

func (MultilineKind) Format(v any, _ Row) string {
	return strings.Join(strings.Fields(valueString(v)), " ")
}

func (k CustomKind) Format(v any, row Row) string {
	if k.Render == nil {
		return valueString(v)
	}
	return k.Render(row)
}

// KindByName maps a configuration tag to its variant. Unknown names are an error so a typo in a
// view file is caught at load time.
func KindByName(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text":
		return TextKind{}, nil
	case "currency":
		return CurrencyKind{}, nil
	case "date":
		return DateKind{}, nil
	case "status":
		return StatusKind{}, nil
	case "tags":
		return TagsKind{}, nil
	case "boolean", "bool":
		return BoolKind{}, nil
	case "thumbnail":
		return ThumbnailKind{}, nil
	case "multiline":
		return MultilineKind{}, nil
	case "custom":
		return CustomKind{}, nil
	}
	return nil, fmt.Errorf("unknown column type %q", name)
}

// Column describes one grid column. Columns are configuration, not view state.
type Column struct {
	Key   string
	Label string
	Kind  Kind
	// Width is a hint in cells; 0 lets the renderer decide.
	Width  int
	Suffix string
	// SubKey names a secondary field rendered under/after the main value.
	SubKey string
	// Unsortable headers ignore activation.
	Unsortable bool
}

// Cell formats the column's value for row.
func (c Column) Cell(row Row) string {
	k := c.Kind
	if k == nil {
		k = TextKind{}
	}
	out := k.Format(row[c.Key], row)
	if out != "" && c.Suffix != "" {
		out += c.Suffix
	}
	if c.SubKey != "" {
		if sub := row.String(c.SubKey); sub != "" {
			if out == "" {
				return sub
			}
			out += " · " + sub
		}
	}
	return out
}

// Total formats the aggregate for this column, if the backend sent one.
func (c Column) Total(totals map[string]any) string {
	v, ok := totals[c.Key]
	if !ok {
		return ""
	}
	k := c.Kind
	if k == nil {
		k = TextKind{}
	}
	return k.Format(v, nil)
}
