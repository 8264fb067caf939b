package apiclient

import (
	"net/url"
	"strconv"
)

// Query is the list filter sent to collection endpoints.
type Query struct {
	Page    int
	Limit   int
	Search  string
	Status  string
	Sort    string
	Filters map[string]string
}

// Values encodes only the parameters that are set. When alwaysSearch is true
// the search parameter is sent even when empty; some collections on the
// backend have always received it that way.
func (q Query) Values(alwaysSearch bool) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" || alwaysSearch {
		v.Set("search", q.Search)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	for key, value := range q.Filters {
		if key == "" || value == "" {
			continue
		}
		v.Set(key, value)
	}
	return v
}
