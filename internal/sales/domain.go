// Package sales serves orders, in-store orders, transactions, customers and
// discounts.
package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ordersPath       = "/order/orders"
	inStoreOrderPath = "/in-store-order/in-store-orders"
	transactionsPath = "/transaction/transactions"
	customersPath    = "/customer/customers"
	discountsPath    = "/discount/discounts"
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

// LineItem is one product line of an order.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// Order is an online storefront order.
type Order struct {
	ID              string          `json:"id"`
	Number          string          `json:"order_number"`
	Customer        *Ref            `json:"customer"`
	Items           []LineItem      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	Total           decimal.Decimal `json:"total"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	PaymentMethod   string          `json:"payment_method"`
	ShippingAddress string          `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// InStoreOrder is a sale rung up at an outlet.
type InStoreOrder struct {
	ID             string          `json:"id"`
	Number         string          `json:"order_number"`
	Outlet         *Ref            `json:"outlet"`
	CustomerName   string          `json:"customer_name"`
	CustomerMobile string          `json:"customer_mobile"`
	Items          []LineItem      `json:"items"`
	Total          decimal.Decimal `json:"total"`
	PaymentStatus  string          `json:"payment_status"`
	PaymentMethod  string          `json:"payment_method"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Transaction is a payment attempt against an order.
type Transaction struct {
	ID        string          `json:"id"`
	Reference string          `json:"reference"`
	Order     *Ref            `json:"order"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Provider  string          `json:"provider"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// Customer is a storefront shopper.
type Customer struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Mobile     string          `json:"mobile"`
	Email      string          `json:"email"`
	Status     string          `json:"status"`
	OrderCount int             `json:"order_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Discount is a promotional code. Its rules are evaluated by the backend.
type Discount struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Value     decimal.Decimal `json:"value"`
	MinOrder  decimal.Decimal `json:"min_order_amount"`
	MaxUses   int             `json:"max_uses"`
	UsedCount int             `json:"used_count"`
	StartsAt  string          `json:"starts_at"`
	EndsAt    string          `json:"ends_at"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// ValueLabel renders the discount amount with its unit.
func (d Discount) ValueLabel() string {
	if d.Type == "percentage" {
		return d.Value.String() + "%"
	}
	return d.Value.StringFixed(2)
}
