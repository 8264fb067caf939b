package catalog

import (
	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/rbac"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Handler serves the catalog section.
type Handler struct {
	kit        *console.Kit
	rbac       rbac.Middleware
	products   *apiclient.Resource[Product]
	categories *apiclient.Resource[Term]
	brands     *apiclient.Resource[Term]
	inventory  *apiclient.Resource[StockItem]
}

// NewHandler builds the catalog handler on top of the shared client.
func NewHandler(kit *console.Kit, client *apiclient.Client, rbac rbac.Middleware) *Handler {
	return &Handler{
		kit:        kit,
		rbac:       rbac,
		products:   apiclient.NewResource[Product](client, productsPath),
		categories: apiclient.NewResource[Term](client, categoriesPath),
		brands:     apiclient.NewResource[Term](client, brandsPath),
		inventory:  apiclient.NewResource[StockItem](client, inventoryPath),
	}
}

// MountRoutes registers catalog routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		view := h.rbac.RequireAny(shared.PermProductView)
		create := h.rbac.RequireAny(shared.PermProductCreate)
		edit := h.rbac.RequireAny(shared.PermProductEdit)
		remove := h.rbac.RequireAny(shared.PermProductDelete)
		deleteCfg := console.DeleteConfig{What: "Product", BasePath: "/catalog/products", Remove: h.products.Delete}

		r.With(view).Get("/", h.listProducts())
		r.With(create).Get("/new", h.newProduct)
		r.With(create).Post("/", h.createProduct)
		r.With(view).Get("/{id}", h.showProduct())
		r.With(edit).Get("/{id}/edit", h.editProduct)
		r.With(edit).Post("/{id}", h.updateProduct)
		r.With(remove).Get("/{id}/delete", console.ConfirmDelete(h.kit, deleteCfg))
		r.With(remove).Post("/{id}/delete", console.Delete(h.kit, deleteCfg))
	})
	h.mountTerms(r, categorySection(h.categories))
	h.mountTerms(r, brandSection(h.brands))
	r.Route("/inventory", func(r chi.Router) {
		view := h.rbac.RequireAny(shared.PermInventoryView)
		adjust := h.rbac.RequireAny(shared.PermInventoryAdjust)

		r.With(view).Get("/", h.listInventory())
		r.With(view).Get("/{id}", h.showInventory())
		r.With(adjust).Post("/{id}/adjust", h.adjustInventory)
	})
}
