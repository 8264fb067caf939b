package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
	"github.com/odyssey-erp/backoffice/internal/console"
	"github.com/odyssey-erp/backoffice/internal/listing"
	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

var productStatuses = []string{"", "All statuses", "draft", "Draft", "active", "Active", "archived", "Archived"}

func (h *Handler) listProducts() http.HandlerFunc {
	return console.List(h.kit, console.ListConfig[Product]{
		Title:    "Products",
		BasePath: "/catalog/products",
		NewURL:   "/catalog/products/new",
		Resource: h.products,
		Keys:     []string{"brand", "category"},
		Columns:  []string{"Name", "SKU", "Category", "Brand", "Price", "Stock", "Status"},
		Empty:    "No products match these filters",
		Row: func(p Product) view.Row {
			return view.Row{
				Href:  "/catalog/products/" + p.ID,
				Cells: []string{p.Name, p.SKU, p.Category.Label(), p.Brand.Label(), view.FormatMoney(p.Price), strconv.Itoa(p.Stock), p.Status},
			}
		},
		Filters: func(f listing.Filter) []view.FormField {
			return []view.FormField{
				{Name: "status", Label: "Status", Type: "select", Options: view.Options(f.Status, productStatuses...)},
				{Name: "category", Label: "Category ID", Value: f.Get("category")},
				{Name: "brand", Label: "Brand ID", Value: f.Get("brand")},
				{Name: "sort", Label: "Sort", Type: "select", Options: view.Options(f.Sort,
					"", "Newest", "created_at-asc", "Oldest", "price-asc", "Price: low to high", "price-desc", "Price: high to low", "name-asc", "Name")},
			}
		},
	})
}

func (h *Handler) showProduct() http.HandlerFunc {
	return console.Detail(h.kit, console.DetailConfig[Product]{
		Title:    "Product",
		What:     "Product",
		BackURL:  "/catalog/products",
		Resource: h.products,
		Build: func(r *http.Request, p Product) view.DetailPage {
			sess := session.FromContext(r.Context())
			page := view.DetailPage{
				Heading: p.Name,
				Fields: []view.Field{
					{Label: "SKU", Value: p.SKU},
					{Label: "Slug", Value: p.Slug},
					{Label: "Category", Value: p.Category.Label()},
					{Label: "Brand", Value: p.Brand.Label()},
					{Label: "Price", Value: view.FormatMoney(p.Price)},
					{Label: "Sale price", Value: salePrice(p)},
					{Label: "Stock", Value: strconv.Itoa(p.Stock)},
					{Label: "Status", Value: p.Status},
					{Label: "Images", Value: strconv.Itoa(len(p.Images))},
					{Label: "Description", Value: p.Description},
					{Label: "Created", Value: view.FormatDate(p.CreatedAt)},
					{Label: "Updated", Value: view.FormatDate(p.UpdatedAt)},
				},
			}
			if sess.Can(shared.PermProductEdit) {
				page.Actions = append(page.Actions, view.Action{Label: "Edit", Href: "/catalog/products/" + p.ID + "/edit"})
			}
			if sess.Can(shared.PermProductDelete) {
				page.Actions = append(page.Actions, view.Action{Label: "Delete", Href: "/catalog/products/" + p.ID + "/delete"})
			}
			return page
		},
	})
}

func salePrice(p Product) string {
	if p.SalePrice.IsZero() {
		return ""
	}
	return view.FormatMoney(p.SalePrice)
}

// termOptions loads category and brand choices concurrently. A failed
// lookup leaves that select with only its placeholder.
func (h *Handler) termOptions(ctx context.Context, sess *session.Session) (categories, brands []Term) {
	q := apiclient.Query{Page: 1, Limit: 100, Status: "active"}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := h.categories.List(ctx, sess, q)
		if err != nil {
			h.kit.Logger.Warn("load category options", slog.Any("error", err))
			return nil
		}
		categories = page.Items
		return nil
	})
	g.Go(func() error {
		page, err := h.brands.List(ctx, sess, q)
		if err != nil {
			h.kit.Logger.Warn("load brand options", slog.Any("error", err))
			return nil
		}
		brands = page.Items
		return nil
	})
	_ = g.Wait()
	return categories, brands
}

func termChoices(current, placeholder string, terms []Term) []view.Option {
	opts := []view.Option{{Value: "", Label: placeholder, Selected: current == ""}}
	for _, t := range terms {
		opts = append(opts, view.Option{Value: t.ID, Label: t.Name, Selected: t.ID == current})
	}
	return opts
}

func (h *Handler) productFormPage(r *http.Request, heading, action, cancel string, form productForm) view.FormPage {
	categories, brands := h.termOptions(r.Context(), session.FromContext(r.Context()))
	return view.FormPage{
		Heading:   heading,
		Action:    action,
		Submit:    "Save product",
		CancelURL: cancel,
		Sections: []view.FormSection{
			{Title: "Basics", Fields: []view.FormField{
				{Name: "name", Label: "Name", Value: form.Name, Required: true},
				{Name: "sku", Label: "SKU", Value: form.SKU, Required: true},
				{Name: "category_id", Label: "Category", Type: "select", Required: true, Options: termChoices(form.CategoryID, "Choose a category", categories)},
				{Name: "brand_id", Label: "Brand", Type: "select", Options: termChoices(form.BrandID, "No brand", brands)},
				{Name: "status", Label: "Status", Type: "select", Required: true, Options: view.Options(form.Status, productStatuses[2:]...)},
				{Name: "description", Label: "Description", Type: "textarea", Value: form.Description},
			}},
			{Title: "Pricing", Fields: []view.FormField{
				{Name: "price", Label: "Price", Value: form.Price, Placeholder: "0.00", Required: true},
				{Name: "sale_price", Label: "Sale price", Value: form.SalePrice, Placeholder: "0.00"},
			}},
			{Title: "Inventory", Fields: []view.FormField{
				{Name: "stock", Label: "Stock", Type: "number", Value: form.Stock, Required: true},
				{Name: "low_stock_threshold", Label: "Low stock threshold", Type: "number", Value: form.LowStockAt},
			}},
			{Title: "Media", Fields: []view.FormField{
				{Name: "image_keys", Label: "Image keys (one per line)", Type: "textarea", Value: form.ImageKeys},
			}},
		},
	}
}

func (h *Handler) newProduct(w http.ResponseWriter, r *http.Request) {
	form := productForm{Status: "draft", Stock: "0"}
	h.kit.RenderForm(w, r, http.StatusOK, h.productFormPage(r, "New product", "/catalog/products", "/catalog/products", form))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := parseProductForm(r)
	page := func() view.FormPage {
		return h.productFormPage(r, "New product", "/catalog/products", "/catalog/products", form)
	}
	if errs := h.kit.Check(form); len(errs) > 0 {
		h.kit.RenderForm(w, r, http.StatusBadRequest, page().WithErrors(errs))
		return
	}
	created, err := h.products.Create(r.Context(), session.FromContext(r.Context()), form.payload())
	if err != nil {
		h.kit.MutationFailed(w, r, page(), "create product", err)
		return
	}
	target := "/catalog/products"
	if created.ID != "" {
		target += "/" + created.ID
	}
	h.kit.RedirectWithFlash(w, r, target, "success", "Product created")
}

func (h *Handler) editProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := console.Load(h.kit, r, h.products)
	if !ok {
		h.kit.Responder.NotFound(w, h.kit.Page(r, "Product not found", nil), view.NotFoundPage{What: "Product", BackURL: "/catalog/products"})
		return
	}
	detail := "/catalog/products/" + p.ID
	h.kit.RenderForm(w, r, http.StatusOK, h.productFormPage(r, "Edit "+p.Name, detail, detail, productFormFrom(p)))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := console.RouteID(r)
	detail := "/catalog/products/" + id
	form := parseProductForm(r)
	page := func() view.FormPage {
		return h.productFormPage(r, "Edit product", detail, detail, form)
	}
	if errs := h.kit.Check(form); len(errs) > 0 {
		h.kit.RenderForm(w, r, http.StatusBadRequest, page().WithErrors(errs))
		return
	}
	if _, err := h.products.Update(r.Context(), session.FromContext(r.Context()), id, form.payload()); err != nil {
		h.kit.MutationFailed(w, r, page(), "update product", err)
		return
	}
	h.kit.RedirectWithFlash(w, r, detail, "success", "Product updated")
}
