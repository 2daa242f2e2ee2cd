package grid

import "sort"

// Selection is a set of selected row ids. Ids stay selected when their rows are unloaded;
// only an explicit clear drops them, while Rows only ever returns loaded rows.
type Selection map[string]struct{}

func (s Selection) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Selection) toggle(id string) {
	if id == "" {
		return
	}
	if s.Has(id) {
		delete(s, id)
		return
	}
	s[id] = struct{}{}
}

// toggleAll selects every loaded id, or deselects them all when they already are.
func (s Selection) toggleAll(rows []Row) {
	all := len(rows) > 0
	for _, r := range rows {
		if !s.Has(r.ID()) {
			all = false
			break
		}
	}
	for _, r := range rows {
		id := r.ID()
		if id == "" {
			continue
		}
		if all {
			delete(s, id)
		} else {
			s[id] = struct{}{}
		}
	}
}

func (s Selection) clear() {
	for id := range s {
		delete(s, id)
	}
}

// IDs returns the selected ids, sorted.
func (s Selection) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Rows returns the loaded rows whose id is selected, in display order.
func (s Selection) Rows(data []Row) []Row {
	var out []Row
	for _, r := range data {
		if s.Has(r.ID()) {
			out = append(out, r)
		}
	}
	return out
}

// AllLoaded reports whether every loaded row is selected (header checkbox state).
func (s Selection) AllLoaded(data []Row) bool {
	if len(data) == 0 {
		return false
	}
	for _, r := range data {
		if !s.Has(r.ID()) {
			return false
		}
	}
	return true
}
