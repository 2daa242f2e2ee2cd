package grid

import "sort"

// SortDir is the direction applied to the current sort field.
type SortDir int

const (
	SortAsc SortDir = iota
	SortDesc
)

func (d SortDir) String() string {
	if d == SortDesc {
		return "desc"
	}
	return "asc"
}

func parseSortDir(s string) SortDir {
	if s == "desc" {
		return SortDesc
	}
	return SortAsc
}

// PeriodKey is the reserved filter key holding the named relative date range picked in the
// date control. It is a UI convenience: never sent to the backend, never written to the address.
const PeriodKey = "_period"

const (
	DefaultPage    = 1
	DefaultPerPage = 200
	// Unbounded asks the backend for every matching row.
	Unbounded = 0
)

// PerPageOptions is the fixed set of page sizes, in selector order.
var PerPageOptions = []int{50, 100, 200, Unbounded}

// ValidPerPage reports whether n is one of PerPageOptions.
func ValidPerPage(n int) bool {
	for _, v := range PerPageOptions {
		if v == n {
			return true
		}
	}
	return false
}

// ViewState is everything that describes what a grid is showing.
type ViewState struct {
	Page    int
	PerPage int

	SortField string
	SortDir   SortDir

	Search string

	// Filters maps filter key to value. Empty values count as not set.
	Filters map[string]string

	Selected Selection
}

// NewViewState returns the initial state: page 1, no sort, no filters.
func NewViewState(perPage int) ViewState {
	if !ValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	return ViewState{
		Page:     DefaultPage,
		PerPage:  perPage,
		Filters:  map[string]string{},
		Selected: Selection{},
	}
}

// Filter returns the value set for key, or "".
func (s ViewState) Filter(key string) string {
	if s.Filters == nil {
		return ""
	}
	return s.Filters[key]
}

// ActiveFilterKeys returns the keys with a non-empty value, sorted.
func (s ViewState) ActiveFilterKeys() []string {
	keys := make([]string, 0, len(s.Filters))
	for k, v := range s.Filters {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *ViewState) setFilter(key, value string) {
	if s.Filters == nil {
		s.Filters = map[string]string{}
	}
	if value == "" {
		delete(s.Filters, key)
		return
	}
	s.Filters[key] = value
}

// toggleSort applies a column header activation.
func (s *ViewState) toggleSort(field string) {
	if s.SortField == field {
		if s.SortDir == SortAsc {
			s.SortDir = SortDesc
		} else {
			s.SortDir = SortAsc
		}
		return
	}
	s.SortField = field
	s.SortDir = SortAsc
}
