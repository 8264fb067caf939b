package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/listing"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

// termSection configures the shared category/brand pages.
type termSection struct {
	route    string
	singular string
	plural   string
	viewPerm string
	editPerm string
	resource *apiclient.Resource[Term]
}

func categorySection(res *apiclient.Resource[Term]) termSection {
	return termSection{route: "categories", singular: "Category", plural: "Categories", viewPerm: shared.PermCategoryView, editPerm: shared.PermCategoryManage, resource: res}
}

func brandSection(res *apiclient.Resource[Term]) termSection {
	return termSection{route: "brands", singular: "Brand", plural: "Brands", viewPerm: shared.PermBrandView, editPerm: shared.PermBrandManage, resource: res}
}

func (s termSection) base() string { return "/catalog/" + s.route }

func (h *Handler) mountTerms(r chi.Router, s termSection) {
	r.Route("/"+s.route, func(r chi.Router) {
		read := h.rbac.RequireAny(s.viewPerm)
		manage := h.rbac.RequireAny(s.editPerm)
		deleteCfg := console.DeleteConfig{What: s.singular, BasePath: s.base(), Remove: s.resource.Delete}

		r.With(read).Get("/", console.List(h.kit, console.ListConfig[Term]{
			Title:    s.plural,
			BasePath: s.base(),
			NewURL:   s.base() + "/new",
			Resource: s.resource,
			Columns:  []string{"Name", "Slug", "Products", "Status", "Updated"},
			Row: func(t Term) view.Row {
				return view.Row{
					Href:  s.base() + "/" + t.ID,
					Cells: []string{t.Name, t.Slug, strconv.Itoa(t.ProductCount), t.Status, view.FormatDate(t.UpdatedAt)},
				}
			},
			Filters: func(f listing.Filter) []view.FormField {
				return []view.FormField{{Name: "status", Label: "Status", Type: "select", Options: view.Options(f.Status, termStatuses...)}}
			},
		}))
		r.With(manage).Get("/new", func(w http.ResponseWriter, r *http.Request) {
			h.kit.RenderForm(w, r, http.StatusOK, s.formPage("New "+strings.ToLower(s.singular), s.base(), s.base(), termForm{Status: "active"}))
		})
		r.With(manage).Post("/", h.saveTerm(s, false))
		r.With(read).Get("/{id}", console.Detail(h.kit, console.DetailConfig[Term]{
			Title:    s.singular,
			What:     s.singular,
			BackURL:  s.base(),
			Resource: s.resource,
			Build: func(r *http.Request, t Term) view.DetailPage {
				page := view.DetailPage{
					Heading: t.Name,
					Fields: []view.Field{
						{Label: "Slug", Value: t.Slug},
						{Label: "Status", Value: t.Status},
						{Label: "Products", Value: strconv.Itoa(t.ProductCount)},
						{Label: "Description", Value: t.Description},
						{Label: "Created", Value: view.FormatDate(t.CreatedAt)},
						{Label: "Updated", Value: view.FormatDate(t.UpdatedAt)},
					},
				}
				if session.FromContext(r.Context()).Can(s.editPerm) {
					page.Actions = []view.Action{
						{Label: "Edit", Href: s.base() + "/" + t.ID + "/edit"},
						{Label: "Delete", Href: s.base() + "/" + t.ID + "/delete"},
					}
				}
				return page
			},
		}))
		r.With(manage).Get("/{id}/edit", func(w http.ResponseWriter, r *http.Request) {
			t, ok := console.Load(h.kit, r, s.resource)
			if !ok {
				h.kit.Responder.NotFound(w, h.kit.Page(r, s.singular+" not found", nil), view.NotFoundPage{What: s.singular, BackURL: s.base()})
				return
			}
			detail := s.base() + "/" + t.ID
			form := termForm{Name: t.Name, Slug: t.Slug, Description: t.Description, Status: t.Status}
			h.kit.RenderForm(w, r, http.StatusOK, s.formPage("Edit "+t.Name, detail, detail, form))
		})
		r.With(manage).Post("/{id}", h.saveTerm(s, true))
		r.With(manage).Get("/{id}/delete", console.ConfirmDelete(h.kit, deleteCfg))
		r.With(manage).Post("/{id}/delete", console.Delete(h.kit, deleteCfg))
	})
}

var termStatuses = []string{"", "All statuses", "active", "Active", "inactive", "Inactive"}

func (s termSection) formPage(heading, action, cancel string, form termForm) view.FormPage {
	return view.FormPage{
		Heading:   heading,
		Action:    action,
		CancelURL: cancel,
		Sections: []view.FormSection{{Fields: []view.FormField{
			{Name: "name", Label: "Name", Value: form.Name, Required: true},
			{Name: "slug", Label: "Slug", Value: form.Slug, Placeholder: "generated from the name when empty"},
			{Name: "status", Label: "Status", Type: "select", Required: true, Options: view.Options(form.Status, termStatuses[2:]...)},
			{Name: "description", Label: "Description", Type: "textarea", Value: form.Description},
		}}},
	}
}

func (h *Handler) saveTerm(s termSection, update bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		form := parseTermForm(r)
		action, heading, cancel := s.base(), "New "+strings.ToLower(s.singular), s.base()
		id := console.RouteID(r)
		if update {
			action, heading, cancel = s.base()+"/"+id, "Edit "+strings.ToLower(s.singular), s.base()+"/"+id
		}
		page := s.formPage(heading, action, cancel, form)
		if errs := h.kit.Check(form); len(errs) > 0 {
			h.kit.RenderForm(w, r, http.StatusBadRequest, page.WithErrors(errs))
			return
		}

		sess := session.FromContext(r.Context())
		var (
			saved Term
			err   error
		)
		if update {
			saved, err = s.resource.Update(r.Context(), sess, id, form)
		} else {
			saved, err = s.resource.Create(r.Context(), sess, form)
		}
		if err != nil {
			h.kit.MutationFailed(w, r, page, "save "+strings.ToLower(s.singular), err)
			return
		}
		target := s.base()
		if update {
			target += "/" + id
		} else if saved.ID != "" {
			target += "/" + saved.ID
		}
		h.kit.RedirectWithFlash(w, r, target, "success", s.singular+" saved")
	}
}

