// Package analytics serves the dashboard: a summary, a sales trend and the
// best selling products, each fetched from the backend on its own.
package analytics

import "github.com/shopspring/decimal"

const (
	summaryPath     = "/analytics/summary"
	salesTrendPath  = "/analytics/sales-trend"
	topProductsPath = "/analytics/top-products"
)

// Summary is the headline figures for a period.
type Summary struct {
	Revenue           decimal.Decimal `json:"total_revenue"`
	Orders            int             `json:"total_orders"`
	Customers         int             `json:"total_customers"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	PendingOrders     int             `json:"pending_orders"`
}

// TrendPoint is one bucket of the sales trend.
type TrendPoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// TopProduct is one row of the best sellers.
type TopProduct struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Range limits the dashboard to a period. Empty bounds are left to the
// backend.
type Range struct {
	From string
	To   string
}

// Dashboard holds every section. A section whose fetch failed carries its
// error and zero data; the others are unaffected.
type Dashboard struct {
	Range       Range
	Summary     Summary
	SummaryErr  error
	Trend       []TrendPoint
	TrendErr    error
	TopProducts []TopProduct
	TopErr      error
}
