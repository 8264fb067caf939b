package rbac

import (
	"strings"

	"github.com/odyssey-erp/backoffice/internal/session"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

type navEntry struct {
	label string
	href  string
	perm  string
}

var navEntries = []navEntry{
	{label: "Dashboard", href: "/analytics", perm: shared.PermAnalyticsView},
	{label: "Products", href: "/catalog/products", perm: shared.PermProductView},
	{label: "Categories", href: "/catalog/categories", perm: shared.PermCategoryView},
	{label: "Brands", href: "/catalog/brands", perm: shared.PermBrandView},
	{label: "Inventory", href: "/catalog/inventory", perm: shared.PermInventoryView},
	{label: "Orders", href: "/sales/orders", perm: shared.PermOrderView},
	{label: "In-store orders", href: "/sales/in-store-orders", perm: shared.PermInStoreOrderView},
	{label: "Transactions", href: "/sales/transactions", perm: shared.PermTransactionView},
	{label: "Customers", href: "/sales/customers", perm: shared.PermCustomerView},
	{label: "Discounts", href: "/sales/discounts", perm: shared.PermDiscountView},
	{label: "Staff", href: "/staff", perm: shared.PermStaffView},
}

// Navigation returns the sidebar entries the session may see, marking the
// entry that owns currentPath as active.
func Navigation(sess *session.Session, currentPath string) []view.NavItem {
	if !sess.Authenticated() {
		return nil
	}
	items := make([]view.NavItem, 0, len(navEntries))
	for _, entry := range navEntries {
		if !sess.Can(entry.perm) {
			continue
		}
		active := currentPath == entry.href || strings.HasPrefix(currentPath, entry.href+"/")
		items = append(items, view.NavItem{Label: entry.label, Href: entry.href, Active: active})
	}
	return items
}
