package grid

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Location is the navigable address a grid mirrors its state into. Replace must overwrite the
// current entry rather than add a new one.
type Location interface {
	Query() string
	Replace(query string) error
}

var ErrAddressUnsupported = errors.New("address: replace not supported")

// MemoryLocation keeps the address in memory.
type MemoryLocation struct {
	query    string
	replaced int
}

func NewMemoryLocation(query string) *MemoryLocation {
	return &MemoryLocation{query: strings.TrimPrefix(query, "?")}
}

func (l *MemoryLocation) Query() string { return l.query }

func (l *MemoryLocation) Replace(query string) error {
	l.query = query
	l.replaced++
	return nil
}

// Replacements counts Replace calls.
func (l *MemoryLocation) Replacements() int { return l.replaced }

// NopLocation is a read-only address (headless hosts, piped output).
type NopLocation struct{ Initial string }

func (l NopLocation) Query() string { return l.Initial }

func (NopLocation) Replace(string) error { return ErrAddressUnsupported }

// ParseAddress reads a query string into a fresh view state. Malformed pagination falls back to
// page 1 and defaultPerPage; unknown keys become filters.
func ParseAddress(query string, defaultPerPage int) ViewState {
	s := NewViewState(defaultPerPage)
	vals, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		// ParseQuery keeps whatever pairs it could decode.
		if vals == nil {
			return s
		}
	}
	for k, vs := range vals {
		if len(vs) == 0 {
			continue
		}
		v := vs[len(vs)-1]
		switch k {
		case ParamPage:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 1 {
				s.Page = n
			}
		case ParamPerPage:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && ValidPerPage(n) {
				s.PerPage = n
			}
		case ParamSearch:
			s.Search = v
		case ParamSort:
			s.SortField = v
		case ParamOrder:
			s.SortDir = parseSortDir(v)
		case PeriodKey:
			// never persisted; ignore stale values from hand-edited links
		default:
			s.setFilter(k, v)
		}
	}
	if s.SortField == "" {
		s.SortDir = SortAsc
	}
	return s
}

// BuildAddress is the query string persisted for s: the request params minus pagination.
func BuildAddress(s ViewState, defaults map[string]string) string {
	return BuildParams(s, defaults).Without(ParamPage, ParamPerPage).Encode()
}

type addressSync struct {
	loc      Location
	defaults map[string]string
	log      *zap.Logger
}

func (a addressSync) read(defaultPerPage int) ViewState {
	if a.loc == nil {
		return NewViewState(defaultPerPage)
	}
	return ParseAddress(a.loc.Query(), defaultPerPage)
}

// persist writes the address; failures are logged and swallowed.
// persist writes the parameters of an applied request, minus pagination.
func (a addressSync) persist(p Params) {
	if a.loc == nil {
		return
	}
	q := p.Without(ParamPage, ParamPerPage).Encode()
	if err := a.loc.Replace(q); err != nil {
		a.log.Debug("address persist skipped", zap.String("query", q), zap.Error(err))
	}
}
