package grid

import (
	"encoding/json"
	"errors"
	"fmt"
)

type FilterKind int

const (
	FilterText FilterKind = iota
	FilterSelect
)

func (k FilterKind) String() string {
	if k == FilterSelect {
		return "select"
	}
	return "text"
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterConfig describes one filter control.
type FilterConfig struct {
	Key   string
	Label string
	Kind  FilterKind
	// Options is the static option list for select filters.
	Options []Option
	// OptionsURL, when set, is fetched for the option list.
	OptionsURL  string
	OptionValue string
	OptionLabel string
}

// LabelFor returns the display label of value (the option label when known).
func (f FilterConfig) LabelFor(value string) string {
	for _, o := range f.Options {
		if o.Value == value && o.Label != "" {
			return o.Label
		}
	}
	return value
}

// DecodeOptions parses an option endpoint body: either a flat array of scalars or an array of
// objects whose valueKey/labelKey fields become the option value and label.
func DecodeOptions(body []byte, valueKey, labelKey string) ([]Option, error) {
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		// Some endpoints wrap the list like the grid endpoint does.
		var wrapped struct {
			Data []any `json:"data"`
		}
		if err2 := json.Unmarshal(body, &wrapped); err2 != nil || wrapped.Data == nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
		raw = wrapped.Data
	}
	if valueKey == "" {
		valueKey = "value"
	}
	if labelKey == "" {
		labelKey = "label"
	}
	out := make([]Option, 0, len(raw))
	for _, x := range raw {
		switch t := x.(type) {
		case map[string]any:
			v := valueString(t[valueKey])
			if v == "" {
				continue
			}
			l := valueString(t[labelKey])
			if l == "" {
				l = v
			}
			out = append(out, Option{Value: v, Label: l})
		case nil:
		default:
			s := valueString(t)
			out = append(out, Option{Value: s, Label: s})
		}
	}
	if len(raw) > 0 && len(out) == 0 {
		return nil, errors.New("decode options: no usable entries")
	}
	return out, nil
}
