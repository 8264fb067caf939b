package sales

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/listing"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/view"
)

var paymentMethods = []string{"cash", "Cash", "card", "Card", "mobile_banking", "Mobile banking"}

type inStoreForm struct {
	OutletID       string `form:"outlet_id" validate:"required"`
	CustomerName   string `form:"customer_name" validate:"max=120"`
	CustomerMobile string `form:"customer_mobile" validate:"omitempty,min=6,max=20"`
	PaymentMethod  string `form:"payment_method" validate:"required,oneof=cash card mobile_banking"`
	Items          string `form:"items" validate:"required"`
}

type inStoreLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type inStorePayload struct {
	OutletID       string        `json:"outlet_id"`
	CustomerName   string        `json:"customer_name,omitempty"`
	CustomerMobile string        `json:"customer_mobile,omitempty"`
	PaymentMethod  string        `json:"payment_method"`
	Items          []inStoreLine `json:"items"`
}

var errBadLine = errors.New("each line must be product_id,quantity with a positive quantity")

// parseLines reads one "product_id,quantity" pair per line.
func parseLines(raw string) ([]inStoreLine, error) {
	var lines []inStoreLine
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		productID, qty, ok := strings.Cut(line, ",")
		if !ok {
			return nil, errBadLine
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil || n <= 0 || strings.TrimSpace(productID) == "" {
			return nil, errBadLine
		}
		lines = append(lines, inStoreLine{ProductID: strings.TrimSpace(productID), Quantity: n})
	}
	if len(lines) == 0 {
		return nil, errBadLine
	}
	return lines, nil
}

func inStoreFormPage(form inStoreForm) view.FormPage {
	return view.FormPage{
		Heading:   "New in-store order",
		Action:    "/sales/in-store-orders",
		Submit:    "Create order",
		CancelURL: "/sales/in-store-orders",
		Sections: []view.FormSection{
			{Title: "Outlet", Fields: []view.FormField{
				{Name: "outlet_id", Label: "Outlet ID", Value: form.OutletID, Required: true},
			}},
			{Title: "Customer", Fields: []view.FormField{
				{Name: "customer_name", Label: "Name", Value: form.CustomerName},
				{Name: "customer_mobile", Label: "Mobile", Type: "tel", Value: form.CustomerMobile},
			}},
			{Title: "Items", Fields: []view.FormField{
				{Name: "items", Label: "Items (product_id,quantity per line)", Type: "textarea", Value: form.Items, Required: true},
				{Name: "payment_method", Label: "Payment method", Type: "select", Required: true, Options: view.Options(form.PaymentMethod, paymentMethods...)},
			}},
		},
	}
}

func (h *Handler) listInStoreOrders() http.HandlerFunc {
	return console.List(h.kit, console.ListConfig[InStoreOrder]{
		Title:    "In-store orders",
		BasePath: "/sales/in-store-orders",
		NewURL:   "/sales/in-store-orders/new",
		Resource: h.inStore,
		Keys:     []string{"outlet", "payment_status", "date_from", "date_to"},
		Columns:  []string{"Order", "Outlet", "Customer", "Total", "Payment", "Created"},
		Empty:    "No in-store orders found",
		Row: func(o InStoreOrder) view.Row {
			return view.Row{
				Href:  "/sales/in-store-orders/" + o.ID,
				Cells: []string{o.Number, o.Outlet.Label(), o.CustomerName, view.FormatMoney(o.Total), o.PaymentStatus, view.FormatDate(o.CreatedAt)},
			}
		},
		Filters: func(f listing.Filter) []view.FormField {
			fields := []view.FormField{
				{Name: "outlet", Label: "Outlet ID", Value: f.Get("outlet")},
				{Name: "payment_status", Label: "Payment", Type: "select", Options: view.Options(f.Get("payment_status"), paymentStatuses...)},
			}
			return append(fields, dateFilters(f)...)
		},
	})
}

func (h *Handler) showInStoreOrder() http.HandlerFunc {
	return console.Detail(h.kit, console.DetailConfig[InStoreOrder]{
		Title:    "In-store order",
		What:     "In-store order",
		BackURL:  "/sales/in-store-orders",
		Resource: h.inStore,
		Build: func(_ *http.Request, o InStoreOrder) view.DetailPage {
			fields := []view.Field{
				{Label: "Outlet", Value: o.Outlet.Label()},
				{Label: "Customer", Value: strings.TrimSpace(o.CustomerName + " " + o.CustomerMobile)},
				{Label: "Payment", Value: strings.TrimSpace(o.PaymentStatus + " " + o.PaymentMethod)},
				{Label: "Created", Value: view.FormatDate(o.CreatedAt)},
			}
			fields = append(fields, lineFields(o.Items)...)
			fields = append(fields, view.Field{Label: "Total", Value: view.FormatMoney(o.Total)})
			return view.DetailPage{Heading: "In-store order " + o.Number, Fields: fields}
		},
	})
}

func (h *Handler) newInStoreOrder(w http.ResponseWriter, r *http.Request) {
	h.kit.RenderForm(w, r, http.StatusOK, inStoreFormPage(inStoreForm{PaymentMethod: "cash"}))
}

func (h *Handler) createInStoreOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := inStoreForm{
		OutletID:       strings.TrimSpace(r.PostFormValue("outlet_id")),
		CustomerName:   strings.TrimSpace(r.PostFormValue("customer_name")),
		CustomerMobile: strings.TrimPrefix(strings.TrimSpace(r.PostFormValue("customer_mobile")), "+"),
		PaymentMethod:  r.PostFormValue("payment_method"),
		Items:          r.PostFormValue("items"),
	}
	page := inStoreFormPage(form)
	errs := h.kit.Check(form)
	lines, lineErr := parseLines(form.Items)
	if lineErr != nil {
		if errs == nil {
			errs = map[string]string{}
		}
		if _, ok := errs["items"]; !ok {
			errs["items"] = "Each line must be product_id,quantity with a positive quantity"
		}
	}
	if len(errs) > 0 {
		h.kit.RenderForm(w, r, http.StatusBadRequest, page.WithErrors(errs))
		return
	}

	payload := inStorePayload{
		OutletID:       form.OutletID,
		CustomerName:   form.CustomerName,
		CustomerMobile: form.CustomerMobile,
		PaymentMethod:  form.PaymentMethod,
		Items:          lines,
	}
	created, err := h.inStore.Create(r.Context(), session.FromContext(r.Context()), payload)
	if err != nil {
		h.kit.MutationFailed(w, r, page, "create in-store order", err)
		return
	}
	target := "/sales/in-store-orders"
	if created.ID != "" {
		target += "/" + created.ID
	}
	h.kit.RedirectWithFlash(w, r, target, "success", "In-store order created")
}
