package model

// Order statuses.
const (
	OrderActive    = "active"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Order is an open or closed tab for one table.  At most one active
// order exists per table at any time.  Total is derived state and is
// recomputed from the order's items after every item mutation.
// TableName is a denormalized snapshot so completed orders stay
// accurate even if the table is later renamed or deleted.
//
// Fields:
//  ID          – primary key identifier.
//  TableID     – table the order belongs to.
//  TableName   – table name snapshot taken at creation.
//  Status      – active, completed or cancelled.
//  Total       – sum of item total prices, minor currency units.
//  CreatedAt   – creation timestamp (ISO-8601 string).
//  CompletedAt – set when the order is completed or cancelled.
//  UpdatedAt   – last mutation timestamp.
//  Note        – optional free-text annotation.
type Order struct {
	ID          uint64  `json:"id"`          // orders.id
	TableID     uint64  `json:"tableId"`     // orders.table_id
	TableName   string  `json:"tableName"`   // orders.table_name
	Status      string  `json:"status"`      // orders.status
	Total       int64   `json:"total"`       // orders.total
	CreatedAt   string  `json:"createdAt"`   // orders.created_at
	CompletedAt *string `json:"completedAt"` // orders.completed_at (nullable)
	UpdatedAt   string  `json:"updatedAt"`   // orders.updated_at
	Note        *string `json:"note"`        // orders.note (nullable)
}

// OrderItem is one line within an order.  MenuItemName and UnitPrice
// are snapshots taken when the line is added; MenuItemID is nullable
// so the line survives deletion of the menu item it came from.
//
// Fields:
//  ID           – primary key identifier.
//  OrderID      – owning order; lines are cascade-deleted with it.
//  MenuItemID   – source menu item, nil once that item is deleted.
//  MenuItemName – name snapshot taken at add-time.
//  Quantity     – number of units, always >= 1 while the line exists.
//  UnitPrice    – price snapshot taken at add-time.
//  TotalPrice   – UnitPrice * Quantity, kept consistent on update.
//  Note         – optional per-line note ("no sugar").
type OrderItem struct {
	ID           uint64  `json:"id"`           // order_items.id
	OrderID      uint64  `json:"orderId"`      // order_items.order_id
	MenuItemID   *uint64 `json:"menuItemId"`   // order_items.menu_item_id (nullable)
	MenuItemName string  `json:"menuItemName"` // order_items.menu_item_name
	Quantity     int     `json:"quantity"`     // order_items.quantity
	UnitPrice    int64   `json:"unitPrice"`    // order_items.unit_price
	TotalPrice   int64   `json:"totalPrice"`   // order_items.total_price
	Note         *string `json:"note"`         // order_items.note (nullable)
}

// OrderWithItems is the shape returned by endpoints that load an
// order together with its current lines.
type OrderWithItems struct {
	Order
	Items []OrderItem `json:"items"`
}
