package sales

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/listing"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

var customerStatuses = []string{"active", "Active", "blocked", "Blocked"}

func (h *Handler) listCustomers() http.HandlerFunc {
	return console.List(h.kit, console.ListConfig[Customer]{
		Title:    "Customers",
		BasePath: "/sales/customers",
		Resource: h.customers,
		Columns:  []string{"Name", "Mobile", "Email", "Orders", "Spent", "Status"},
		Empty:    "No customers found",
		Row: func(c Customer) view.Row {
			return view.Row{
				Href:  "/sales/customers/" + c.ID,
				Cells: []string{c.Name, c.Mobile, c.Email, strconv.Itoa(c.OrderCount), view.FormatMoney(c.TotalSpent), c.Status},
			}
		},
		Filters: func(f listing.Filter) []view.FormField {
			return []view.FormField{{Name: "status", Label: "Status", Type: "select", Options: view.Options(f.Status, anyStatus(customerStatuses)...)}}
		},
	})
}

func customerStatusForm(id, current string) view.FormPage {
	return view.FormPage{
		Heading: "Account status",
		Action:  "/sales/customers/" + id + "/status",
		Submit:  "Save",
		Sections: []view.FormSection{{Fields: []view.FormField{
			{Name: "status", Label: "Status", Type: "select", Required: true, Options: view.Options(current, customerStatuses...)},
			{Name: "note", Label: "Reason", Type: "textarea"},
		}}},
	}
}

func (h *Handler) showCustomer() http.HandlerFunc {
	return console.Detail(h.kit, console.DetailConfig[Customer]{
		Title:    "Customer",
		What:     "Customer",
		BackURL:  "/sales/customers",
		Resource: h.customers,
		Build: func(r *http.Request, c Customer) view.DetailPage {
			page := view.DetailPage{
				Heading: c.Name,
				Fields: []view.Field{
					{Label: "Mobile", Value: c.Mobile},
					{Label: "Email", Value: c.Email},
					{Label: "Status", Value: c.Status},
					{Label: "Orders", Value: strconv.Itoa(c.OrderCount)},
					{Label: "Total spent", Value: view.FormatMoney(c.TotalSpent)},
					{Label: "Joined", Value: view.FormatDate(c.CreatedAt)},
				},
				Actions: []view.Action{{Label: "Orders", Href: "/sales/orders?query=" + url.QueryEscape(c.Mobile)}},
			}
			if session.FromContext(r.Context()).Can(shared.PermCustomerUpdate) {
				page.Forms = []view.FormPage{customerStatusForm(c.ID, c.Status)}
			}
			return page
		},
	})
}

func (h *Handler) updateCustomerStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := console.RouteID(r)
	detail := "/sales/customers/" + id
	form := statusForm{Status: r.PostFormValue("status"), Note: strings.TrimSpace(r.PostFormValue("note"))}
	errs := h.kit.Check(form)
	if len(errs) == 0 && !validChoice(form.Status, customerStatuses) {
		errs = map[string]string{"status": "Status is invalid"}
	}
	page := customerStatusForm(id, form.Status)
	page.CancelURL = detail
	if len(errs) > 0 {
		h.kit.RenderForm(w, r, http.StatusBadRequest, page.WithErrors(errs))
		return
	}
	if _, err := h.customers.Update(r.Context(), session.FromContext(r.Context()), id, form); err != nil {
		h.kit.MutationFailed(w, r, page, "update customer status", err)
		return
	}
	h.kit.RedirectWithFlash(w, r, detail, "success", "Customer status updated")
}
