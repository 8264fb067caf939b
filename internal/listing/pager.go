package listing

import (
	"math"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
)

// Pager contains what the pagination control renders.
type Pager struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
	PrevURL    string
	NextURL    string
}

// NewPager derives pagination links from the response meta. When the backend
// reports no page count it is computed from total and limit.
func NewPager(basePath string, f Filter, meta apiclient.Meta) Pager {
	limit := meta.Limit
	if limit <= 0 {
		limit = f.Limit
	}
	page := meta.Page
	if page <= 0 {
		page = DefaultPage
	}
	pages := meta.Pages
	if pages <= 0 && meta.Total > 0 && limit > 0 {
		pages = int(math.Ceil(float64(meta.Total) / float64(limit)))
	}
	p := Pager{Page: page, Limit: limit, Total: meta.Total, TotalPages: pages}
	if page > 1 {
		p.PrevURL = basePath + "?" + f.Values(page-1).Encode()
	}
	if page < pages {
		p.NextURL = basePath + "?" + f.Values(page+1).Encode()
	}
	return p
}
