package sales

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/listing"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

var (
	discountStatuses = []string{"active", "Active", "scheduled", "Scheduled", "expired", "Expired", "disabled", "Disabled"}
	discountTypes    = []string{"percentage", "Percentage", "fixed", "Fixed amount"}
)

const dateLayout = "2006-01-02"

type discountForm struct {
	Code     string `form:"code" validate:"required,alphanum,max=32"`
	Name     string `form:"name" validate:"required,max=120"`
	Type     string `form:"type" validate:"required,oneof=percentage fixed"`
	Value    string `form:"value" validate:"required,numeric"`
	MinOrder string `form:"min_order_amount" validate:"omitempty,numeric"`
	MaxUses  string `form:"max_uses" validate:"omitempty,number"`
	StartsAt string `form:"starts_at" validate:"required,datetime=2006-01-02"`
	EndsAt   string `form:"ends_at" validate:"omitempty,datetime=2006-01-02"`
	Status   string `form:"status" validate:"required,oneof=active scheduled expired disabled"`
}

type discountPayload struct {
	Code     string           `json:"code"`
	Name     string           `json:"name"`
	Type     string           `json:"type"`
	Value    decimal.Decimal  `json:"value"`
	MinOrder *decimal.Decimal `json:"min_order_amount,omitempty"`
	MaxUses  int              `json:"max_uses,omitempty"`
	StartsAt string           `json:"starts_at"`
	EndsAt   string           `json:"ends_at,omitempty"`
	Status   string           `json:"status"`
}

func parseDiscountForm(r *http.Request) discountForm {
	return discountForm{
		Code:     strings.ToUpper(strings.TrimSpace(r.PostFormValue("code"))),
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Type:     r.PostFormValue("type"),
		Value:    strings.TrimSpace(r.PostFormValue("value")),
		MinOrder: strings.TrimSpace(r.PostFormValue("min_order_amount")),
		MaxUses:  strings.TrimSpace(r.PostFormValue("max_uses")),
		StartsAt: r.PostFormValue("starts_at"),
		EndsAt:   r.PostFormValue("ends_at"),
		Status:   r.PostFormValue("status"),
	}
}

// check adds the cross-field rules the struct tags cannot express.
func (f discountForm) check(errs map[string]string) map[string]string {
	add := func(field, msg string) {
		if errs == nil {
			errs = map[string]string{}
		}
		if _, ok := errs[field]; !ok {
			errs[field] = msg
		}
	}
	if v, err := decimal.NewFromString(f.Value); err == nil {
		if !v.IsPositive() {
			add("value", "Value must be greater than zero")
		} else if f.Type == "percentage" && v.GreaterThan(decimal.NewFromInt(100)) {
			add("value", "Percentage cannot exceed 100")
		}
	}
	if f.EndsAt != "" {
		start, errStart := time.Parse(dateLayout, f.StartsAt)
		end, errEnd := time.Parse(dateLayout, f.EndsAt)
		if errStart == nil && errEnd == nil && end.Before(start) {
			add("ends_at", "End date must not be before the start date")
		}
	}
	return errs
}

func (f discountForm) payload() discountPayload {
	p := discountPayload{
		Code:     f.Code,
		Name:     f.Name,
		Type:     f.Type,
		Value:    decimal.RequireFromString(f.Value),
		StartsAt: f.StartsAt,
		EndsAt:   f.EndsAt,
		Status:   f.Status,
	}
	if f.MinOrder != "" {
		floor := decimal.RequireFromString(f.MinOrder)
		p.MinOrder = &floor
	}
	if f.MaxUses != "" {
		p.MaxUses, _ = strconv.Atoi(f.MaxUses)
	}
	return p
}

func discountFormFrom(d Discount) discountForm {
	form := discountForm{
		Code:     d.Code,
		Name:     d.Name,
		Type:     d.Type,
		Value:    d.Value.String(),
		StartsAt: trimDate(d.StartsAt),
		EndsAt:   trimDate(d.EndsAt),
		Status:   d.Status,
	}
	if !d.MinOrder.IsZero() {
		form.MinOrder = d.MinOrder.StringFixed(2)
	}
	if d.MaxUses > 0 {
		form.MaxUses = strconv.Itoa(d.MaxUses)
	}
	return form
}

// trimDate keeps the date part of an RFC 3339 timestamp.
func trimDate(s string) string {
	if len(s) > len(dateLayout) {
		return s[:len(dateLayout)]
	}
	return s
}

func discountFormPage(heading, action, cancel string, form discountForm) view.FormPage {
	return view.FormPage{
		Heading:   heading,
		Action:    action,
		CancelURL: cancel,
		Submit:    "Save discount",
		Sections: []view.FormSection{
			{Title: "Code", Fields: []view.FormField{
				{Name: "code", Label: "Code", Value: form.Code, Required: true},
				{Name: "name", Label: "Name", Value: form.Name, Required: true},
				{Name: "status", Label: "Status", Type: "select", Required: true, Options: view.Options(form.Status, discountStatuses...)},
			}},
			{Title: "Value", Fields: []view.FormField{
				{Name: "type", Label: "Type", Type: "select", Required: true, Options: view.Options(form.Type, discountTypes...)},
				{Name: "value", Label: "Value", Value: form.Value, Required: true},
				{Name: "min_order_amount", Label: "Minimum order", Value: form.MinOrder},
				{Name: "max_uses", Label: "Maximum uses", Type: "number", Value: form.MaxUses},
			}},
			{Title: "Schedule", Fields: []view.FormField{
				{Name: "starts_at", Label: "Starts", Type: "date", Value: form.StartsAt, Required: true},
				{Name: "ends_at", Label: "Ends", Type: "date", Value: form.EndsAt},
			}},
		},
	}
}

func (h *Handler) listDiscounts() http.HandlerFunc {
	return console.List(h.kit, console.ListConfig[Discount]{
		Title:    "Discounts",
		BasePath: "/sales/discounts",
		NewURL:   "/sales/discounts/new",
		Resource: h.discounts,
		Columns:  []string{"Code", "Name", "Value", "Used", "Starts", "Ends", "Status"},
		Empty:    "No discounts found",
		Row: func(d Discount) view.Row {
			used := strconv.Itoa(d.UsedCount)
			if d.MaxUses > 0 {
				used += " / " + strconv.Itoa(d.MaxUses)
			}
			return view.Row{
				Href:  "/sales/discounts/" + d.ID,
				Cells: []string{d.Code, d.Name, d.ValueLabel(), used, trimDate(d.StartsAt), trimDate(d.EndsAt), d.Status},
			}
		},
		Filters: func(f listing.Filter) []view.FormField {
			return []view.FormField{{Name: "status", Label: "Status", Type: "select", Options: view.Options(f.Status, anyStatus(discountStatuses)...)}}
		},
	})
}

func (h *Handler) showDiscount() http.HandlerFunc {
	return console.Detail(h.kit, console.DetailConfig[Discount]{
		Title:    "Discount",
		What:     "Discount",
		BackURL:  "/sales/discounts",
		Resource: h.discounts,
		Build: func(r *http.Request, d Discount) view.DetailPage {
			page := view.DetailPage{
				Heading: d.Code,
				Fields: []view.Field{
					{Label: "Name", Value: d.Name},
					{Label: "Value", Value: d.ValueLabel()},
					{Label: "Minimum order", Value: view.FormatMoney(d.MinOrder)},
					{Label: "Used", Value: strconv.Itoa(d.UsedCount)},
					{Label: "Maximum uses", Value: strconv.Itoa(d.MaxUses)},
					{Label: "Starts", Value: trimDate(d.StartsAt)},
					{Label: "Ends", Value: trimDate(d.EndsAt)},
					{Label: "Status", Value: d.Status},
				},
			}
			if session.FromContext(r.Context()).Can(shared.PermDiscountManage) {
				page.Actions = []view.Action{
					{Label: "Edit", Href: "/sales/discounts/" + d.ID + "/edit"},
					{Label: "Delete", Href: "/sales/discounts/" + d.ID + "/delete"},
				}
			}
			return page
		},
	})
}

func (h *Handler) newDiscount(w http.ResponseWriter, r *http.Request) {
	form := discountForm{Type: "percentage", Status: "active", StartsAt: time.Now().Format(dateLayout)}
	h.kit.RenderForm(w, r, http.StatusOK, discountFormPage("New discount", "/sales/discounts", "/sales/discounts", form))
}

func (h *Handler) editDiscount(w http.ResponseWriter, r *http.Request) {
	d, ok := console.Load(h.kit, r, h.discounts)
	if !ok {
		h.kit.Responder.NotFound(w, h.kit.Page(r, "Discount not found", nil), view.NotFoundPage{What: "Discount", BackURL: "/sales/discounts"})
		return
	}
	detail := "/sales/discounts/" + d.ID
	h.kit.RenderForm(w, r, http.StatusOK, discountFormPage("Edit "+d.Code, detail, detail, discountFormFrom(d)))
}

func (h *Handler) saveDiscount(update bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		form := parseDiscountForm(r)
		id := console.RouteID(r)
		page := discountFormPage("New discount", "/sales/discounts", "/sales/discounts", form)
		if update {
			detail := "/sales/discounts/" + id
			page = discountFormPage("Edit discount", detail, detail, form)
		}
		if errs := form.check(h.kit.Check(form)); len(errs) > 0 {
			h.kit.RenderForm(w, r, http.StatusBadRequest, page.WithErrors(errs))
			return
		}

		sess := session.FromContext(r.Context())
		var (
			saved Discount
			err   error
		)
		if update {
			saved, err = h.discounts.Update(r.Context(), sess, id, form.payload())
		} else {
			saved, err = h.discounts.Create(r.Context(), sess, form.payload())
		}
		if err != nil {
			h.kit.MutationFailed(w, r, page, "save discount", err)
			return
		}
		target := "/sales/discounts"
		switch {
		case update:
			target += "/" + id
		case saved.ID != "":
			target += "/" + saved.ID
		}
		h.kit.RedirectWithFlash(w, r, target, "success", "Discount saved")
	}
}
