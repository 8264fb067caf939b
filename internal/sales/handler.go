package sales

import (
	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/rbac"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Handler serves the sales section.
type Handler struct {
	kit          *console.Kit
	rbac         rbac.Middleware
	orders       *apiclient.Resource[Order]
	inStore      *apiclient.Resource[InStoreOrder]
	transactions *apiclient.Resource[Transaction]
	customers    *apiclient.Resource[Customer]
	discounts    *apiclient.Resource[Discount]
}

// NewHandler builds the sales handler. Transactions and discounts always
// send the search parameter, even when empty; the other lists omit it.
func NewHandler(kit *console.Kit, client *apiclient.Client, rbac rbac.Middleware) *Handler {
	return &Handler{
		kit:          kit,
		rbac:         rbac,
		orders:       apiclient.NewResource[Order](client, ordersPath),
		inStore:      apiclient.NewResource[InStoreOrder](client, inStoreOrderPath),
		transactions: apiclient.NewResource[Transaction](client, transactionsPath).WithAlwaysSearch(),
		customers:    apiclient.NewResource[Customer](client, customersPath),
		discounts:    apiclient.NewResource[Discount](client, discountsPath).WithAlwaysSearch(),
	}
}

// MountRoutes registers sales routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermOrderView))
		r.Get("/orders", h.listOrders())
		r.Get("/orders/{id}", h.showOrder())
	})
	r.With(h.rbac.RequireAll(shared.PermOrderUpdate)).Post("/orders/{id}/status", h.updateOrderStatus)

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermInStoreOrderView))
		r.Get("/in-store-orders", h.listInStoreOrders())
		r.Get("/in-store-orders/{id}", h.showInStoreOrder())
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermInStoreOrderCreate))
		r.Get("/in-store-orders/new", h.newInStoreOrder)
		r.Post("/in-store-orders", h.createInStoreOrder)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermTransactionView))
		r.Get("/transactions", h.listTransactions())
		r.Get("/transactions/{id}", h.showTransaction())
	})

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermCustomerView))
		r.Get("/customers", h.listCustomers())
		r.Get("/customers/{id}", h.showCustomer())
	})
	r.With(h.rbac.RequireAll(shared.PermCustomerUpdate)).Post("/customers/{id}/status", h.updateCustomerStatus)

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermDiscountView))
		r.Get("/discounts", h.listDiscounts())
		r.Get("/discounts/{id}", h.showDiscount())
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermDiscountManage))
		deleteCfg := console.DeleteConfig{What: "Discount", BasePath: "/sales/discounts", Remove: h.discounts.Delete}
		r.Get("/discounts/new", h.newDiscount)
		r.Post("/discounts", h.saveDiscount(false))
		r.Get("/discounts/{id}/edit", h.editDiscount)
		r.Post("/discounts/{id}", h.saveDiscount(true))
		r.Get("/discounts/{id}/delete", console.ConfirmDelete(h.kit, deleteCfg))
		r.Post("/discounts/{id}/delete", console.Delete(h.kit, deleteCfg))
	})
}
