// Package listing turns list-page query strings into backend queries and
// keeps list views consistent when filters change quickly.
package listing

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	maxLimit     = 100
)

// Filter is the query filter of one list page. Unset values are empty strings.
type Filter struct {
	Page   int
	Limit  int
	Search string
	Status string
	Sort   string
	// Extra holds domain filters such as brand or date_from, keyed by name.
	Extra map[string]string
	keys  []string
}

// ParseFilter reads page, limit, query (or search), status, sort and the given
// domain keys from the request URL.
func ParseFilter(r *http.Request, domainKeys ...string) Filter {
	q := r.URL.Query()
	f := Filter{
		Page:   positiveInt(q.Get("page"), DefaultPage),
		Limit:  positiveInt(q.Get("limit"), DefaultLimit),
		Search: strings.TrimSpace(q.Get("query")),
		Status: strings.TrimSpace(q.Get("status")),
		Sort:   strings.TrimSpace(q.Get("sort")),
		Extra:  make(map[string]string, len(domainKeys)),
		keys:   domainKeys,
	}
	if f.Search == "" {
		f.Search = strings.TrimSpace(q.Get("search"))
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	for _, key := range domainKeys {
		f.Extra[key] = strings.TrimSpace(q.Get(key))
	}
	return f
}

// Get returns a domain filter value.
func (f Filter) Get(key string) string {
	return f.Extra[key]
}

// Key concatenates every filter value. Any change to any value changes the
// key, so the list is recomputed as a unit.
func (f Filter) Key() string {
	parts := []string{strconv.Itoa(f.Page), strconv.Itoa(f.Limit), f.Search, f.Status, f.Sort}
	for _, key := range f.keys {
		parts = append(parts, f.Extra[key])
	}
	return strings.Join(parts, "|")
}

// Query converts the filter into the backend query.
func (f Filter) Query() apiclient.Query {
	filters := make(map[string]string, len(f.Extra))
	for k, v := range f.Extra {
		filters[k] = v
	}
	return apiclient.Query{
		Page:    f.Page,
		Limit:   f.Limit,
		Search:  f.Search,
		Status:  f.Status,
		Sort:    f.Sort,
		Filters: filters,
	}
}

// Values re-encodes the filter for links on the list page, replacing page.
func (f Filter) Values(page int) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(f.Limit))
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("query", f.Search)
	set("status", f.Status)
	set("sort", f.Sort)
	for _, key := range f.keys {
		set(key, f.Extra[key])
	}
	return v
}

// MetaOrDefault substitutes an empty-but-valid meta block when the backend
// omitted one.
func MetaOrDefault(meta *apiclient.Meta) apiclient.Meta {
	if meta == nil {
		return apiclient.Meta{Pages: 0, Page: DefaultPage, Limit: DefaultLimit, Total: 0}
	}
	return *meta
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
