package sales

import (
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/listing"
	"github.com/odyssey-erp/backoffice/internal/view"
)

var transactionStatuses = []string{"pending", "Pending", "succeeded", "Succeeded", "failed", "Failed", "refunded", "Refunded"}

func (h *Handler) listTransactions() http.HandlerFunc {
	return console.List(h.kit, console.ListConfig[Transaction]{
		Title:    "Transactions",
		BasePath: "/sales/transactions",
		Resource: h.transactions,
		Keys:     []string{"date_from", "date_to"},
		Columns:  []string{"Reference", "Order", "Amount", "Method", "Status", "Date"},
		Empty:    "No transactions found",
		Row: func(t Transaction) view.Row {
			return view.Row{
				Href:  "/sales/transactions/" + t.ID,
				Cells: []string{t.Reference, t.Order.Label(), view.FormatMoney(t.Amount), t.Method, t.Status, view.FormatDate(t.CreatedAt)},
			}
		},
		Filters: func(f listing.Filter) []view.FormField {
			fields := []view.FormField{{Name: "status", Label: "Status", Type: "select", Options: view.Options(f.Status, anyStatus(transactionStatuses)...)}}
			return append(fields, dateFilters(f)...)
		},
	})
}

func (h *Handler) showTransaction() http.HandlerFunc {
	return console.Detail(h.kit, console.DetailConfig[Transaction]{
		Title:    "Transaction",
		What:     "Transaction",
		BackURL:  "/sales/transactions",
		Resource: h.transactions,
		Build: func(_ *http.Request, t Transaction) view.DetailPage {
			return view.DetailPage{
				Heading: "Transaction " + t.Reference,
				Fields: []view.Field{
					{Label: "Order", Value: t.Order.Label()},
					{Label: "Amount", Value: view.FormatMoney(t.Amount)},
					{Label: "Method", Value: t.Method},
					{Label: "Provider", Value: t.Provider},
					{Label: "Status", Value: t.Status},
					{Label: "Date", Value: view.FormatDate(t.CreatedAt)},
				},
			}
		},
	})
}
