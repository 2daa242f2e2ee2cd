package grid

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Wire names of the reserved query parameters.
const (
	ParamPage    = "page"
	ParamPerPage = "per_page"
	ParamSearch  = "search"
	ParamSort    = "sort"
	ParamOrder   = "order"
)

// IsReservedKey reports whether k belongs to the grid itself and cannot name a filter.
func IsReservedKey(k string) bool {
	switch k {
	case ParamPage, ParamPerPage, ParamSearch, ParamSort, ParamOrder, PeriodKey:
		return true
	}
	return false
}

type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list. Order is part of the contract: the same state always
// produces the same encoding.
type Params []Param

// Get returns the value for key and whether it is present.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Without returns a copy of p minus the given keys.
func (p Params) Without(keys ...string) Params {
	out := make(Params, 0, len(p))
	for _, kv := range p {
		skip := false
		for _, k := range keys {
			if kv.Key == k {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, kv)
		}
	}
	return out
}

func (p Params) set(key, value string) Params {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Param{Key: key, Value: value})
}

// Values converts p into url.Values (order is lost).
func (p Params) Values() url.Values {
	v := url.Values{}
	for _, kv := range p {
		v.Set(kv.Key, kv.Value)
	}
	return v
}

// Encode renders p as a query string, keeping the order of p.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// BuildParams projects a view state (plus the hosting page's static default filters) into the
// request parameters sent to the backend.
//
// Order: page, per_page, search, sort/order, user filters by key, then static defaults, which
// replace colliding keys so user input can never widen the view past its scope.
func BuildParams(s ViewState, defaults map[string]string) Params {
	page := s.Page
	if page < 1 {
		page = DefaultPage
	}
	p := Params{
		{Key: ParamPage, Value: strconv.Itoa(page)},
		{Key: ParamPerPage, Value: strconv.Itoa(s.PerPage)},
	}
	if s.Search != "" {
		p = append(p, Param{Key: ParamSearch, Value: s.Search})
	}
	if s.SortField != "" {
		p = append(p,
			Param{Key: ParamSort, Value: s.SortField},
			Param{Key: ParamOrder, Value: s.SortDir.String()},
		)
	}
	for _, k := range s.ActiveFilterKeys() {
		if k == PeriodKey {
			continue
		}
		p = append(p, Param{Key: k, Value: s.Filters[k]})
	}

	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p = p.set(k, defaults[k])
	}
	return p
}
