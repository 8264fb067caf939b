package console

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
	"github.com/odyssey-erp/backoffice/internal/listing"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

// ListConfig describes one resource list page.
type ListConfig[T any] struct {
	Title    string
	BasePath string
	NewURL   string
	Resource *apiclient.Resource[T]
	// Keys are the domain filters read from the URL besides the common ones.
	Keys    []string
	Columns []string
	Row     func(T) view.Row
	Filters func(listing.Filter) []view.FormField
	Empty   string
}

// List serves a list page. The rendered page is a pure function of the
// filter tuple; a response superseded by a newer request for the same list
// is dropped with 204.
func List[T any](k *Kit, cfg ListConfig[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := listing.ParseFilter(r, cfg.Keys...)
		sess := session.FromContext(r.Context())

		page, err := listing.Fetch(r.Context(), k.Tracker, queryKey(r, cfg.Resource.Path()), func(ctx context.Context) (apiclient.Page[T], error) {
			return cfg.Resource.List(ctx, sess, f.Query())
		})
		if errors.Is(err, listing.ErrStale) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err != nil {
			k.Logger.Error("list "+cfg.Resource.Path(), slog.String("filter", f.Key()), slog.Any("error", err))
			k.Responder.ServerError(w, k.Page(r, cfg.Title, nil), "")
			return
		}

		rows := make([]view.Row, 0, len(page.Items))
		for _, item := range page.Items {
			rows = append(rows, cfg.Row(item))
		}
		data := view.ListPage{
			Heading:  cfg.Title,
			BasePath: cfg.BasePath,
			NewURL:   cfg.NewURL,
			Search:   f.Search,
			Table:    view.Table{Columns: cfg.Columns, Rows: rows, Empty: cfg.Empty},
			Pager:    listing.NewPager(cfg.BasePath, f, listing.MetaOrDefault(page.Meta)),
		}
		if cfg.Filters != nil {
			data.Filters = cfg.Filters(f)
		}
		k.Render(w, r, http.StatusOK, "pages/list.html", cfg.Title, data)
	}
}

// queryKey identifies one logical list query: the browser session plus the
// resource. Filter changes reuse the key so newer requests supersede older.
func queryKey(r *http.Request, resource string) string {
	id := ""
	if webSess := shared.SessionFromContext(r.Context()); webSess != nil {
		id = webSess.ID
	}
	return id + "|" + resource
}

// DetailConfig describes one resource detail page.
type DetailConfig[T any] struct {
	Title    string
	What     string
	BackURL  string
	Resource *apiclient.Resource[T]
	Build    func(r *http.Request, item T) view.DetailPage
}

// Detail serves a detail page. Any fetch failure or empty data renders the
// not-found state.
func Detail[T any](k *Kit, cfg DetailConfig[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, ok := Load(k, r, cfg.Resource)
		if !ok {
			k.Responder.NotFound(w, k.Page(r, cfg.What+" not found", nil), view.NotFoundPage{What: cfg.What, BackURL: cfg.BackURL})
			return
		}
		page := cfg.Build(r, item)
		if page.BackURL == "" {
			page.BackURL = cfg.BackURL
		}
		k.Render(w, r, http.StatusOK, "pages/detail.html", cfg.Title, page)
	}
}

// Load fetches the record named by the {id} route parameter.
func Load[T any](k *Kit, r *http.Request, res *apiclient.Resource[T]) (T, bool) {
	id := chi.URLParam(r, "id")
	item, err := res.Get(r.Context(), session.FromContext(r.Context()), id)
	if err != nil {
		k.Logger.Warn("detail "+res.Path(), slog.String("id", id), slog.String("kind", string(apiclient.KindOf(err))), slog.Any("error", err))
		var zero T
		return zero, false
	}
	return item, true
}

// RouteID returns the {id} route parameter.
func RouteID(r *http.Request) string {
	return chi.URLParam(r, "id")
}
