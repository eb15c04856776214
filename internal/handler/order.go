package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/hoangnecon/cafe-pos/internal/model"
	"github.com/hoangnecon/cafe-pos/internal/repository"
	"github.com/hoangnecon/cafe-pos/internal/utils"
	"github.com/labstack/echo/v4"
)

// OrderHandler serves the order ledger: opening orders, line item
// mutations and cancellation.  Every mutation that touches more than
// one row runs inside a single transaction, and the order total is
// recomputed from the surviving items before that transaction commits.
type OrderHandler struct {
	OrderRepo    *repository.OrderRepo
	TableRepo    *repository.TableRepo
	MenuItemRepo *repository.MenuItemRepo
}

// NewOrderHandler constructs an OrderHandler and panics if any
// dependency is nil.
func NewOrderHandler(orderRepo *repository.OrderRepo, tableRepo *repository.TableRepo, menuItemRepo *repository.MenuItemRepo) *OrderHandler {
	if orderRepo == nil || tableRepo == nil || menuItemRepo == nil {
		panic("nil repository passed to NewOrderHandler")
	}
	return &OrderHandler{OrderRepo: orderRepo, TableRepo: tableRepo, MenuItemRepo: menuItemRepo}
}

// ListOrders handles GET /api/orders.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.OrderRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load orders"})
	}
	return c.JSON(http.StatusOK, orders)
}

// ActiveOrder handles GET /api/tables/:id/active-order.  It returns
// the table's active order together with its items, or a JSON null
// when the table has no open tab.
func (h *OrderHandler) ActiveOrder(c echo.Context) error {
	tableID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	ctx := c.Request().Context()
	order, err := h.OrderRepo.GetActiveByTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusOK, nil)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load active order"})
	}
	items, err := h.OrderRepo.ItemsByOrder(ctx, order.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order items"})
	}
	return c.JSON(http.StatusOK, model.OrderWithItems{Order: *order, Items: items})
}

// CreateOrder handles POST /api/orders.  Opening an order and marking
// its table occupied commit together; the storage-level guard on the
// insert turns a second open tab for the same table into a 409.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var body struct {
		TableID   uint64  `json:"tableId"`
		TableName string  `json:"tableName"`
		Note      *string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tableId is required"})
	}
	ctx := c.Request().Context()
	table, err := h.TableRepo.GetByID(ctx, body.TableID)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load table"})
	}
	// The stored table name is a snapshot; prefer the live table name
	// over whatever the client sent.
	name := table.Name
	if strings.TrimSpace(body.TableName) != "" {
		name = strings.TrimSpace(body.TableName)
	}

	tx, err := h.OrderRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	order := &model.Order{TableID: body.TableID, TableName: name, Note: body.Note}
	if err := h.OrderRepo.CreateTx(ctx, tx, order); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "table already has an active order"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
	}
	if err := h.TableRepo.UpdateStatusTx(ctx, tx, body.TableID, model.TableOccupied); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update table status"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, order)
}

// AddItem handles POST /api/orders/:id/items.  The current menu item
// name and price are snapshotted onto the new line; the order total is
// recomputed in the same transaction.  Returns the order with its
// items so the UI can redraw the tab in one round trip.
func (h *OrderHandler) AddItem(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var body struct {
		MenuItemID uint64  `json:"menuItemId"`
		Quantity   int     `json:"quantity"`
		Note       *string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.MenuItemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "menuItemId is required"})
	}
	if body.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be at least 1"})
	}
	ctx := c.Request().Context()
	order, err := h.OrderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order"})
	}
	if order.Status != model.OrderActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "order is not active"})
	}
	menuItem, err := h.MenuItemRepo.GetByID(ctx, body.MenuItemID)
	if err != nil {
		if errors.Is(err, repository.ErrMenuItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load menu item"})
	}

	tx, err := h.OrderRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	menuItemID := menuItem.ID
	item := &model.OrderItem{
		OrderID:      orderID,
		MenuItemID:   &menuItemID,
		MenuItemName: menuItem.Name,
		Quantity:     body.Quantity,
		UnitPrice:    menuItem.Price,
		TotalPrice:   menuItem.Price * int64(body.Quantity),
		Note:         body.Note,
	}
	if err := h.OrderRepo.InsertItemTx(ctx, tx, item); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add order item"})
	}
	if _, err := h.OrderRepo.RecomputeTotalTx(ctx, tx, orderID, utils.NowISO()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to recompute order total"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	updated, err := h.OrderRepo.GetByID(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order"})
	}
	items, err := h.OrderRepo.ItemsByOrder(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order items"})
	}
	return c.JSON(http.StatusCreated, model.OrderWithItems{Order: *updated, Items: items})
}

// ListItems handles GET /api/orders/:id/items.
func (h *OrderHandler) ListItems(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	items, err := h.OrderRepo.ItemsByOrder(c.Request().Context(), orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order items"})
	}
	return c.JSON(http.StatusOK, items)
}

// UpdateItem handles PUT /api/order-items/:id.  Quantity changes keep
// the line's total price and the parent order's total consistent.  A
// quantity below 1 is rejected; removing a line is DELETE's job.
func (h *OrderHandler) UpdateItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order item id"})
	}
	var body struct {
		Quantity *int    `json:"quantity"`
		Note     *string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Quantity != nil && *body.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be at least 1"})
	}
	ctx := c.Request().Context()
	item, err := h.OrderRepo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order item"})
	}
	if body.Quantity != nil {
		item.Quantity = *body.Quantity
		item.TotalPrice = item.UnitPrice * int64(*body.Quantity)
	}
	if body.Note != nil {
		item.Note = body.Note
	}

	tx, err := h.OrderRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.OrderRepo.UpdateItemTx(ctx, tx, id, item.Quantity, item.TotalPrice, item.Note); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update order item"})
	}
	if _, err := h.OrderRepo.RecomputeTotalTx(ctx, tx, item.OrderID, utils.NowISO()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to recompute order total"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, item)
}

// RemoveItem handles DELETE /api/order-items/:id.
func (h *OrderHandler) RemoveItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order item id"})
	}
	ctx := c.Request().Context()
	item, err := h.OrderRepo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order item"})
	}

	tx, err := h.OrderRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.OrderRepo.DeleteItemTx(ctx, tx, id); err != nil {
		if errors.Is(err, repository.ErrOrderItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove order item"})
	}
	if _, err := h.OrderRepo.RecomputeTotalTx(ctx, tx, item.OrderID, utils.NowISO()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to recompute order total"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// SetNote handles PUT /api/orders/:id/note.  An empty or whitespace
// note clears the annotation.
func (h *OrderHandler) SetNote(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var body struct {
		Note *string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	note := body.Note
	if note != nil {
		trimmed := strings.TrimSpace(*note)
		if trimmed == "" {
			note = nil
		} else {
			note = &trimmed
		}
	}
	order, err := h.OrderRepo.SetNote(c.Request().Context(), id, note)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update order note"})
	}
	return c.JSON(http.StatusOK, order)
}

// CancelOrder handles PUT /api/orders/:id/cancel.  Deleting the
// order's items, marking it cancelled and releasing the table happen
// in one transaction; a repeat cancel matches no active order and
// returns 404 without touching the table.
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var body struct {
		TableID uint64 `json:"tableId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()

	tx, err := h.OrderRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	order, err := h.OrderRepo.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order"})
	}
	if body.TableID != 0 && body.TableID != order.TableID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tableId does not match order"})
	}
	if err := h.OrderRepo.DeleteItemsByOrderTx(ctx, tx, orderID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete order items"})
	}
	if err := h.OrderRepo.MarkCancelledTx(ctx, tx, orderID, utils.NowISO()); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			// Order exists but is no longer active.
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order is not active"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel order"})
	}
	if err := h.TableRepo.UpdateStatusTx(ctx, tx, order.TableID, model.TableAvailable); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update table status"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "order cancelled"})
}
