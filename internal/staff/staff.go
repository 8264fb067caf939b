// Package staff manages back-office accounts.
package staff

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/listing"
	"github.com/odyssey-erp/backoffice/internal/rbac"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

const staffPath = "/staff/staffs"

// Member is one staff account.
type Member struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Mobile      string       `json:"mobile"`
	Email       string       `json:"email"`
	Role        session.Role `json:"role"`
	OutletID    string       `json:"outlet_id"`
	Status      string       `json:"status"`
	LastLoginAt *time.Time   `json:"last_login_at"`
	CreatedAt   time.Time    `json:"created_at"`
}

var (
	roles    = []string{string(session.RoleAdmin), "Admin", string(session.RoleManager), "Manager", string(session.RoleStaff), "Staff"}
	statuses = []string{"active", "Active", "inactive", "Inactive", "suspended", "Suspended"}
)

type memberForm struct {
	Name     string `form:"name" json:"name" validate:"required,max=120"`
	Mobile   string `form:"mobile" json:"mobile" validate:"required,numeric,min=6,max=20"`
	Email    string `form:"email" json:"email,omitempty" validate:"omitempty,email"`
	Role     string `form:"role" json:"role" validate:"required,oneof=admin manager staff"`
	OutletID string `form:"outlet_id" json:"outlet_id,omitempty"`
	Status   string `form:"status" json:"status" validate:"required,oneof=active inactive suspended"`
	Password string `form:"password" json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

// Handler serves the staff section.
type Handler struct {
	kit     *console.Kit
	rbac    rbac.Middleware
	members *apiclient.Resource[Member]
}

// NewHandler builds the staff handler.
func NewHandler(kit *console.Kit, client *apiclient.Client, rbac rbac.Middleware) *Handler {
	return &Handler{kit: kit, rbac: rbac, members: apiclient.NewResource[Member](client, staffPath)}
}

// MountRoutes registers staff routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	deleteCfg := console.DeleteConfig{What: "Staff member", BasePath: "/staff", Remove: h.members.Delete}
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermStaffView))
		r.Get("/", h.list())
		r.Get("/{id}", h.show())
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermStaffManage))
		r.Get("/new", h.newMember)
		r.Post("/", h.save(false))
		r.Get("/{id}/edit", h.edit)
		r.Post("/{id}", h.save(true))
		r.Get("/{id}/delete", console.ConfirmDelete(h.kit, deleteCfg))
		r.Post("/{id}/delete", console.Delete(h.kit, deleteCfg))
	})
}

func (h *Handler) list() http.HandlerFunc {
	return console.List(h.kit, console.ListConfig[Member]{
		Title:    "Staff",
		BasePath: "/staff",
		NewURL:   "/staff/new",
		Resource: h.members,
		Keys:     []string{"role"},
		Columns:  []string{"Name", "Mobile", "Role", "Status", "Last sign-in"},
		Empty:    "No staff found",
		Row: func(m Member) view.Row {
			last := ""
			if m.LastLoginAt != nil {
				last = view.FormatDate(*m.LastLoginAt)
			}
			return view.Row{Href: "/staff/" + m.ID, Cells: []string{m.Name, m.Mobile, string(m.Role), m.Status, last}}
		},
		Filters: func(f listing.Filter) []view.FormField {
			return []view.FormField{
				{Name: "role", Label: "Role", Type: "select", Options: view.Options(f.Get("role"), append([]string{"", "All roles"}, roles...)...)},
				{Name: "status", Label: "Status", Type: "select", Options: view.Options(f.Status, append([]string{"", "All statuses"}, statuses...)...)},
			}
		},
	})
}

func (h *Handler) show() http.HandlerFunc {
	return console.Detail(h.kit, console.DetailConfig[Member]{
		Title:    "Staff member",
		What:     "Staff member",
		BackURL:  "/staff",
		Resource: h.members,
		Build: func(r *http.Request, m Member) view.DetailPage {
			page := view.DetailPage{
				Heading: m.Name,
				Fields: []view.Field{
					{Label: "Mobile", Value: m.Mobile},
					{Label: "Email", Value: m.Email},
					{Label: "Role", Value: string(m.Role)},
					{Label: "Outlet", Value: m.OutletID},
					{Label: "Status", Value: m.Status},
					{Label: "Joined", Value: view.FormatDate(m.CreatedAt)},
				},
			}
			if session.FromContext(r.Context()).Can(shared.PermStaffManage) {
				page.Actions = []view.Action{
					{Label: "Edit", Href: "/staff/" + m.ID + "/edit"},
					{Label: "Delete", Href: "/staff/" + m.ID + "/delete"},
				}
			}
			return page
		},
	})
}

func formPage(heading, action, cancel string, form memberForm, creating bool) view.FormPage {
	account := []view.FormField{
		{Name: "role", Label: "Role", Type: "select", Required: true, Options: view.Options(form.Role, roles...)},
		{Name: "status", Label: "Status", Type: "select", Required: true, Options: view.Options(form.Status, statuses...)},
		{Name: "outlet_id", Label: "Outlet ID", Value: form.OutletID},
	}
	if creating {
		account = append(account, view.FormField{Name: "password", Label: "Initial password", Type: "password", Required: true})
	}
	return view.FormPage{
		Heading:   heading,
		Action:    action,
		CancelURL: cancel,
		Sections: []view.FormSection{
			{Title: "Profile", Fields: []view.FormField{
				{Name: "name", Label: "Name", Value: form.Name, Required: true},
				{Name: "mobile", Label: "Mobile", Type: "tel", Value: form.Mobile, Required: true},
				{Name: "email", Label: "Email", Type: "email", Value: form.Email},
			}},
			{Title: "Account", Fields: account},
		},
	}
}

func (h *Handler) newMember(w http.ResponseWriter, r *http.Request) {
	h.kit.RenderForm(w, r, http.StatusOK, formPage("New staff member", "/staff", "/staff", memberForm{Role: "staff", Status: "active"}, true))
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	m, ok := console.Load(h.kit, r, h.members)
	if !ok {
		h.kit.Responder.NotFound(w, h.kit.Page(r, "Staff member not found", nil), view.NotFoundPage{What: "Staff member", BackURL: "/staff"})
		return
	}
	detail := "/staff/" + m.ID
	form := memberForm{Name: m.Name, Mobile: m.Mobile, Email: m.Email, Role: string(m.Role), OutletID: m.OutletID, Status: m.Status}
	h.kit.RenderForm(w, r, http.StatusOK, formPage("Edit "+m.Name, detail, detail, form, false))
}

func (h *Handler) save(update bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		form := memberForm{
			Name:     strings.TrimSpace(r.PostFormValue("name")),
			Mobile:   strings.TrimPrefix(strings.TrimSpace(r.PostFormValue("mobile")), "+"),
			Email:    strings.TrimSpace(r.PostFormValue("email")),
			Role:     r.PostFormValue("role"),
			OutletID: strings.TrimSpace(r.PostFormValue("outlet_id")),
			Status:   r.PostFormValue("status"),
			Password: r.PostFormValue("password"),
		}
		id := console.RouteID(r)
		page := formPage("New staff member", "/staff", "/staff", form, true)
		if update {
			// passwords are managed by the account owner
			form.Password = ""
			page = formPage("Edit staff member", "/staff/"+id, "/staff/"+id, form, false)
		}
		errs := h.kit.Check(form)
		if !update && form.Password == "" {
			if errs == nil {
				errs = map[string]string{}
			}
			errs["password"] = "Initial password is required"
		}
		if len(errs) > 0 {
			h.kit.RenderForm(w, r, http.StatusBadRequest, page.WithErrors(errs))
			return
		}

		sess := session.FromContext(r.Context())
		var (
			saved Member
			err   error
		)
		if update {
			saved, err = h.members.Update(r.Context(), sess, id, form)
		} else {
			saved, err = h.members.Create(r.Context(), sess, form)
		}
		if err != nil {
			h.kit.MutationFailed(w, r, page, "save staff member", err)
			return
		}
		target := "/staff"
		switch {
		case update:
			target += "/" + id
		case saved.ID != "":
			target += "/" + saved.ID
		}
		h.kit.RedirectWithFlash(w, r, target, "success", "Staff member saved")
	}
}
