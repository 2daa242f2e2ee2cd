package grid

import (
	"strings"

	"github.com/araddon/dateparse"
)

// Chip summarizes one active filter (or the search text) as a removable token.
type Chip struct {
	Key   string
	Label string
	Value string
}

// SearchChipKey identifies the chip derived from the search text.
const SearchChipKey = "search"

func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return s
	}
	return t.Format(dateLayout)
}

// deriveChips projects the state into chips. The result is never stored.
func deriveChips(s ViewState, filters []FilterConfig, defaults map[string]string) []Chip {
	var chips []Chip
	if q := strings.TrimSpace(s.Search); q != "" {
		chips = append(chips, Chip{Key: SearchChipKey, Label: "Search", Value: q})
	}

	active := func(k string) (string, bool) {
		v := s.Filter(k)
		if v == "" {
			return "", false
		}
		if d, ok := defaults[k]; ok && d == v {
			return "", false
		}
		return v, true
	}

	byKey := make(map[string]FilterConfig, len(filters))
	for _, f := range filters {
		byKey[f.Key] = f
	}
	label := func(k string) string {
		if f, ok := byKey[k]; ok && f.Label != "" {
			return f.Label
		}
		return k
	}

	from, hasFrom := active(DateFromKey)
	to, hasTo := active(DateToKey)
	if hasFrom || hasTo {
		var v string
		switch {
		case hasFrom && hasTo:
			v = normalizeDate(from) + " → " + normalizeDate(to)
		case hasFrom:
			v = "from " + normalizeDate(from)
		default:
			v = "until " + normalizeDate(to)
		}
		if p := s.Filter(PeriodKey); p != "" {
			v = PeriodLabel(p) + " (" + v + ")"
		}
		chips = append(chips, Chip{Key: DateRangeKey, Label: "Dates", Value: v})
	}

	for _, k := range s.ActiveFilterKeys() {
		switch k {
		case PeriodKey, DateFromKey, DateToKey:
			continue
		}
		v, ok := active(k)
		if !ok {
			continue
		}
		if k == NamedPeriod {
			chips = append(chips, Chip{Key: k, Label: "Period", Value: PeriodLabel(v)})
			continue
		}
		display := v
		if f, ok := byKey[k]; ok {
			display = f.LabelFor(v)
		}
		chips = append(chips, Chip{Key: k, Label: label(k), Value: display})
	}
	return chips
}

// removeChip undoes everything the control behind chip key had set. It reports whether the
// state changed.
func removeChip(s *ViewState, key string) bool {
	switch key {
	case SearchChipKey:
		if s.Search == "" {
			return false
		}
		s.Search = ""
		return true
	case DateRangeKey:
		changed := s.Filter(DateFromKey) != "" || s.Filter(DateToKey) != "" || s.Filter(PeriodKey) != ""
		s.setFilter(DateFromKey, "")
		s.setFilter(DateToKey, "")
		s.setFilter(PeriodKey, "")
		return changed
	}
	if s.Filter(key) == "" {
		return false
	}
	s.setFilter(key, "")
	return true
}
