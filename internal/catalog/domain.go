// Package catalog serves the product, category, brand and inventory pages.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ref is an embedded reference to another resource.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label returns the reference name, if any.
func (r *Ref) Label() string {
	if r == nil {
		return ""
	}
	return r.Name
}

// Product is a sellable catalog item.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Category    *Ref            `json:"category"`
	Brand       *Ref            `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	Stock       int             `json:"stock"`
	LowStockAt  int             `json:"low_stock_threshold"`
	Images      []string        `json:"images"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Term is a category or a brand.
type Term struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StockItem is the stock level of one product at one outlet.
type StockItem struct {
	ID        string    `json:"id"`
	Product   *Ref      `json:"product"`
	Outlet    *Ref      `json:"outlet"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	Reserved  int       `json:"reserved"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available is stock that is not reserved by open orders.
func (s StockItem) Available() int {
	if s.Reserved > s.Quantity {
		return 0
	}
	return s.Quantity - s.Reserved
}

const (
	productsPath   = "/product/products"
	categoriesPath = "/category/categories"
	brandsPath     = "/brand/brands"
	inventoryPath  = "/inventory/inventories"
)
