package shared

// Catalog permissions.
const (
	PermProductView   = "product.view"
	PermProductCreate = "product.create"
	PermProductEdit   = "product.edit"
	PermProductDelete = "product.delete"

	PermCategoryView   = "category.view"
	PermCategoryManage = "category.manage"

	PermBrandView   = "brand.view"
	PermBrandManage = "brand.manage"

	PermInventoryView   = "inventory.view"
	PermInventoryAdjust = "inventory.adjust"
)

// Sales permissions.
const (
	PermOrderView   = "order.view"
	PermOrderUpdate = "order.update"

	PermInStoreOrderView   = "in_store_order.view"
	PermInStoreOrderCreate = "in_store_order.create"

	PermTransactionView = "transaction.view"

	PermCustomerView   = "customer.view"
	PermCustomerUpdate = "customer.update"

	PermDiscountView   = "discount.view"
	PermDiscountManage = "discount.manage"
)

// Staff, analytics and upload permissions.
const (
	PermStaffView   = "staff.view"
	PermStaffManage = "staff.manage"

	PermAnalyticsView = "analytics.view"

	PermUploadCreate = "upload.create"
)
