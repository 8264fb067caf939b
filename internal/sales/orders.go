package sales

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

var (
	orderStatuses   = []string{"pending", "Pending", "confirmed", "Confirmed", "processing", "Processing", "shipped", "Shipped", "delivered", "Delivered", "cancelled", "Cancelled"}
	paymentStatuses = []string{"", "Any payment", "unpaid", "Unpaid", "paid", "Paid", "partially_paid", "Partially paid", "refunded", "Refunded"}
)

func anyStatus(pairs []string) []string {
	return append([]string{"", "All statuses"}, pairs...)
}

func dateFilters(f listing.Filter) []view.FormField {
	return []view.FormField{
		{Name: "date_from", Label: "From", Type: "date", Value: f.Get("date_from")},
		{Name: "date_to", Label: "To", Type: "date", Value: f.Get("date_to")},
	}
}

func (h *Handler) listOrders() http.HandlerFunc {
	return console.List(h.kit, console.ListConfig[Order]{
		Title:    "Orders",
		BasePath: "/sales/orders",
		Resource: h.orders,
		Keys:     []string{"payment_status", "date_from", "date_to"},
		Columns:  []string{"Order", "Customer", "Items", "Total", "Status", "Payment", "Placed"},
		Empty:    "No orders found",
		Row: func(o Order) view.Row {
			return view.Row{
				Href: "/sales/orders/" + o.ID,
				Cells: []string{
					o.Number, o.Customer.Label(), strconv.Itoa(len(o.Items)), view.FormatMoney(o.Total),
					o.Status, o.PaymentStatus, view.FormatDate(o.CreatedAt),
				},
			}
		},
		Filters: func(f listing.Filter) []view.FormField {
			fields := []view.FormField{
				{Name: "status", Label: "Status", Type: "select", Options: view.Options(f.Status, anyStatus(orderStatuses)...)},
				{Name: "payment_status", Label: "Payment", Type: "select", Options: view.Options(f.Get("payment_status"), paymentStatuses...)},
			}
			return append(fields, dateFilters(f)...)
		},
	})
}

func lineFields(items []LineItem) []view.Field {
	fields := make([]view.Field, 0, len(items))
	for _, it := range items {
		fields = append(fields, view.Field{
			Label: it.Name,
			Value: strconv.Itoa(it.Quantity) + " × " + view.FormatMoney(it.UnitPrice) + " = " + view.FormatMoney(it.Total),
		})
	}
	return fields
}

type statusForm struct {
	Status string `form:"status" json:"status" validate:"required"`
	Note   string `form:"note" json:"note,omitempty" validate:"max=500"`
}

func orderStatusForm(id, current string) view.FormPage {
	return view.FormPage{
		Heading: "Update status",
		Action:  "/sales/orders/" + id + "/status",
		Submit:  "Update status",
		Sections: []view.FormSection{{Fields: []view.FormField{
			{Name: "status", Label: "Status", Type: "select", Required: true, Options: view.Options(current, orderStatuses...)},
			{Name: "note", Label: "Note", Type: "textarea"},
		}}},
	}
}

func (h *Handler) showOrder() http.HandlerFunc {
	return console.Detail(h.kit, console.DetailConfig[Order]{
		Title:    "Order",
		What:     "Order",
		BackURL:  "/sales/orders",
		Resource: h.orders,
		Build: func(r *http.Request, o Order) view.DetailPage {
			fields := []view.Field{
				{Label: "Customer", Value: o.Customer.Label()},
				{Label: "Status", Value: o.Status},
				{Label: "Payment", Value: strings.TrimSpace(o.PaymentStatus + " " + o.PaymentMethod)},
				{Label: "Shipping address", Value: o.ShippingAddress},
				{Label: "Placed", Value: view.FormatDate(o.CreatedAt)},
			}
			fields = append(fields, lineFields(o.Items)...)
			fields = append(fields,
				view.Field{Label: "Subtotal", Value: view.FormatMoney(o.Subtotal)},
				view.Field{Label: "Discount", Value: view.FormatMoney(o.Discount)},
				view.Field{Label: "Shipping", Value: view.FormatMoney(o.ShippingFee)},
				view.Field{Label: "Total", Value: view.FormatMoney(o.Total)},
			)
			page := view.DetailPage{Heading: "Order " + o.Number, Fields: fields}
			if session.FromContext(r.Context()).Can(shared.PermOrderUpdate) {
				page.Forms = []view.FormPage{orderStatusForm(o.ID, o.Status)}
			}
			return page
		},
	})
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := console.RouteID(r)
	detail := "/sales/orders/" + id
	form := statusForm{Status: r.PostFormValue("status"), Note: strings.TrimSpace(r.PostFormValue("note"))}
	errs := h.kit.Check(form)
	if len(errs) == 0 && !validChoice(form.Status, orderStatuses) {
		errs = map[string]string{"status": "Status is invalid"}
	}
	page := orderStatusForm(id, form.Status)
	page.CancelURL = detail
	if len(errs) > 0 {
		h.kit.RenderForm(w, r, http.StatusBadRequest, page.WithErrors(errs))
		return
	}
	if _, err := h.orders.Update(r.Context(), session.FromContext(r.Context()), id, form); err != nil {
		h.kit.MutationFailed(w, r, page, "update order status", err)
		return
	}
	h.kit.RedirectWithFlash(w, r, detail, "success", "Order status updated")
}

// validChoice reports whether value is one of the option values in pairs.
func validChoice(value string, pairs []string) bool {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i] == value && value != "" {
			return true
		}
	}
	return false
}
