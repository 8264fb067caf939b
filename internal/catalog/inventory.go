package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/listing"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

var stockStatuses = []string{"", "All statuses", "in_stock", "In stock", "low_stock", "Low stock", "out_of_stock", "Out of stock"}

var adjustReasons = []string{"restock", "Restock", "damage", "Damage", "correction", "Correction", "return", "Customer return"}

func (h *Handler) listInventory() http.HandlerFunc {
	return console.List(h.kit, console.ListConfig[StockItem]{
		Title:    "Inventory",
		BasePath: "/catalog/inventory",
		Resource: h.inventory,
		Keys:     []string{"outlet"},
		Columns:  []string{"Product", "SKU", "Outlet", "On hand", "Reserved", "Available", "Status"},
		Empty:    "No stock records",
		Row: func(s StockItem) view.Row {
			return view.Row{
				Href: "/catalog/inventory/" + s.ID,
				Cells: []string{
					s.Product.Label(), s.SKU, s.Outlet.Label(),
					strconv.Itoa(s.Quantity), strconv.Itoa(s.Reserved), strconv.Itoa(s.Available()), s.Status,
				},
			}
		},
		Filters: func(f listing.Filter) []view.FormField {
			return []view.FormField{
				{Name: "status", Label: "Status", Type: "select", Options: view.Options(f.Status, stockStatuses...)},
				{Name: "outlet", Label: "Outlet ID", Value: f.Get("outlet")},
			}
		},
	})
}

func adjustFormPage(id string, form adjustForm) view.FormPage {
	return view.FormPage{
		Heading: "Adjust stock",
		Action:  "/catalog/inventory/" + id + "/adjust",
		Submit:  "Apply adjustment",
		Sections: []view.FormSection{{Fields: []view.FormField{
			{Name: "adjustment", Label: "Adjustment (+/-)", Type: "number", Value: form.Adjustment, Required: true},
			{Name: "reason", Label: "Reason", Type: "select", Required: true, Options: view.Options(form.Reason, adjustReasons...)},
			{Name: "note", Label: "Note", Type: "textarea", Value: form.Note},
		}}},
	}
}

func (h *Handler) showInventory() http.HandlerFunc {
	return console.Detail(h.kit, console.DetailConfig[StockItem]{
		Title:    "Stock",
		What:     "Stock record",
		BackURL:  "/catalog/inventory",
		Resource: h.inventory,
		Build: func(r *http.Request, s StockItem) view.DetailPage {
			page := view.DetailPage{
				Heading: s.Product.Label(),
				Fields: []view.Field{
					{Label: "SKU", Value: s.SKU},
					{Label: "Outlet", Value: s.Outlet.Label()},
					{Label: "On hand", Value: strconv.Itoa(s.Quantity)},
					{Label: "Reserved", Value: strconv.Itoa(s.Reserved)},
					{Label: "Available", Value: strconv.Itoa(s.Available())},
					{Label: "Status", Value: s.Status},
					{Label: "Updated", Value: view.FormatDate(s.UpdatedAt)},
				},
			}
			if session.FromContext(r.Context()).Can(shared.PermInventoryAdjust) {
				page.Forms = []view.FormPage{adjustFormPage(s.ID, adjustForm{Reason: "restock"})}
			}
			return page
		},
	})
}

func (h *Handler) adjustInventory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := console.RouteID(r)
	form := adjustForm{
		Adjustment: strings.TrimSpace(r.PostFormValue("adjustment")),
		Reason:     r.PostFormValue("reason"),
		Note:       strings.TrimSpace(r.PostFormValue("note")),
	}
	page := adjustFormPage(id, form)
	page.CancelURL = "/catalog/inventory/" + id
	errs := h.kit.Check(form)
	delta, convErr := strconv.Atoi(strings.TrimPrefix(form.Adjustment, "+"))
	if len(errs) == 0 && (convErr != nil || delta == 0) {
		errs = map[string]string{"adjustment": "Adjustment must be a whole number other than zero"}
	}
	if len(errs) > 0 {
		h.kit.RenderForm(w, r, http.StatusBadRequest, page.WithErrors(errs))
		return
	}
	payload := adjustPayload{Adjustment: delta, Reason: form.Reason, Note: form.Note}
	if _, err := h.inventory.Update(r.Context(), session.FromContext(r.Context()), id, payload); err != nil {
		h.kit.MutationFailed(w, r, page, "adjust inventory", err)
		return
	}
	h.kit.RedirectWithFlash(w, r, "/catalog/inventory/"+id, "success", "Stock adjusted")
}
