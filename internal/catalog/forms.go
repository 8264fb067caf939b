package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type productForm struct {
	Name        string `form:"name" validate:"required,max=160"`
	SKU         string `form:"sku" validate:"required,max=64"`
	CategoryID  string `form:"category_id" validate:"required"`
	BrandID     string `form:"brand_id"`
	Description string `form:"description" validate:"max=4000"`
	Status      string `form:"status" validate:"required,oneof=draft active archived"`
	Price       string `form:"price" validate:"required,numeric"`
	SalePrice   string `form:"sale_price" validate:"omitempty,numeric"`
	Stock       string `form:"stock" validate:"required,number"`
	LowStockAt  string `form:"low_stock_threshold" validate:"omitempty,number"`
	ImageKeys   string `form:"image_keys"`
}

type productPayload struct {
	Name        string           `json:"name"`
	SKU         string           `json:"sku"`
	CategoryID  string           `json:"category_id"`
	BrandID     string           `json:"brand_id,omitempty"`
	Description string           `json:"description,omitempty"`
	Status      string           `json:"status"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
	Stock       int              `json:"stock"`
	LowStockAt  int              `json:"low_stock_threshold,omitempty"`
	Images      []string         `json:"images"`
}

func parseProductForm(r *http.Request) productForm {
	return productForm{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		SKU:         strings.TrimSpace(r.PostFormValue("sku")),
		CategoryID:  r.PostFormValue("category_id"),
		BrandID:     r.PostFormValue("brand_id"),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Status:      r.PostFormValue("status"),
		Price:       strings.TrimSpace(r.PostFormValue("price")),
		SalePrice:   strings.TrimSpace(r.PostFormValue("sale_price")),
		Stock:       strings.TrimSpace(r.PostFormValue("stock")),
		LowStockAt:  strings.TrimSpace(r.PostFormValue("low_stock_threshold")),
		ImageKeys:   r.PostFormValue("image_keys"),
	}
}

func productFormFrom(p Product) productForm {
	form := productForm{
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		Status:      p.Status,
		Price:       p.Price.StringFixed(2),
		Stock:       strconv.Itoa(p.Stock),
		ImageKeys:   strings.Join(p.Images, "\n"),
	}
	if p.Category != nil {
		form.CategoryID = p.Category.ID
	}
	if p.Brand != nil {
		form.BrandID = p.Brand.ID
	}
	if !p.SalePrice.IsZero() {
		form.SalePrice = p.SalePrice.StringFixed(2)
	}
	if p.LowStockAt > 0 {
		form.LowStockAt = strconv.Itoa(p.LowStockAt)
	}
	return form
}

// payload converts a validated form; the numeric fields were checked by
// the validator so conversion errors cannot occur.
func (f productForm) payload() productPayload {
	p := productPayload{
		Name:        f.Name,
		SKU:         f.SKU,
		CategoryID:  f.CategoryID,
		BrandID:     f.BrandID,
		Description: f.Description,
		Status:      f.Status,
		Price:       decimal.RequireFromString(f.Price),
		Images:      splitKeys(f.ImageKeys),
	}
	if f.SalePrice != "" {
		sale := decimal.RequireFromString(f.SalePrice)
		p.SalePrice = &sale
	}
	p.Stock, _ = strconv.Atoi(f.Stock)
	if f.LowStockAt != "" {
		p.LowStockAt, _ = strconv.Atoi(f.LowStockAt)
	}
	return p
}

func splitKeys(raw string) []string {
	keys := []string{}
	for _, k := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ',' || r == '\r' }) {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// termForm doubles as the request body for categories and brands.
type termForm struct {
	Name        string `form:"name" json:"name" validate:"required,max=120"`
	Slug        string `form:"slug" json:"slug,omitempty" validate:"omitempty,max=120"`
	Description string `form:"description" json:"description,omitempty" validate:"max=2000"`
	Status      string `form:"status" json:"status" validate:"required,oneof=active inactive"`
}

func parseTermForm(r *http.Request) termForm {
	return termForm{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Slug:        strings.TrimSpace(r.PostFormValue("slug")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Status:      r.PostFormValue("status"),
	}
}

type adjustForm struct {
	Adjustment string `form:"adjustment" validate:"required,numeric"`
	Reason     string `form:"reason" validate:"required,oneof=restock damage correction return"`
	Note       string `form:"note" validate:"max=500"`
}

type adjustPayload struct {
	Adjustment int    `json:"adjustment"`
	Reason     string `json:"reason"`
	Note       string `json:"note,omitempty"`
}
