package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hoangnecon/cafe-pos/internal/model"
	"github.com/hoangnecon/cafe-pos/internal/queue"
	"github.com/hoangnecon/cafe-pos/internal/repository"
	"github.com/hoangnecon/cafe-pos/internal/service"
	"github.com/hoangnecon/cafe-pos/internal/utils"
	"github.com/labstack/echo/v4"
)

// BillingHandler settles orders.  Full checkout and partial payment
// both write a bill inside the same transaction that mutates the order
// and its table, so money collected and order state can never
// disagree.  A Publisher, when configured, announces each bill after
// the transaction commits; publish failures are logged and never roll
// work back.
type BillingHandler struct {
	OrderRepo *repository.OrderRepo
	TableRepo *repository.TableRepo
	BillRepo  *repository.BillRepo
	Publisher *service.QueuePublisher // optional, may be nil
}

// NewBillingHandler constructs a BillingHandler.  Publisher is
// optional; the repositories are not.
func NewBillingHandler(orderRepo *repository.OrderRepo, tableRepo *repository.TableRepo, billRepo *repository.BillRepo, pub *service.QueuePublisher) *BillingHandler {
	if orderRepo == nil || tableRepo == nil || billRepo == nil {
		panic("nil repository passed to NewBillingHandler")
	}
	return &BillingHandler{OrderRepo: orderRepo, TableRepo: tableRepo, BillRepo: billRepo, Publisher: pub}
}

// CompleteOrder handles PUT /api/orders/:id/complete.  It marks the
// order completed, frees its table and writes one bill for the full
// order total minus the discount.  The bill amount is recorded as is,
// even when a discount larger than the total drives it negative.
func (h *BillingHandler) CompleteOrder(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var body struct {
		PaymentMethod  string `json:"paymentMethod"`
		DiscountAmount int64  `json:"discountAmount"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidPaymentMethod(body.PaymentMethod) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment method"})
	}
	if body.DiscountAmount < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "discountAmount must not be negative"})
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
	now := utils.NowISO()
	if err := h.OrderRepo.MarkCompletedTx(ctx, tx, orderID, now); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order is not active"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to complete order"})
	}
	if err := h.TableRepo.UpdateStatusTx(ctx, tx, order.TableID, model.TableAvailable); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update table status"})
	}
	bill := &model.Bill{
		OrderID:        orderID,
		TableID:        order.TableID,
		TableName:      order.TableName,
		TotalAmount:    order.Total - body.DiscountAmount,
		PaymentMethod:  body.PaymentMethod,
		CreatedAt:      now,
		DiscountAmount: body.DiscountAmount,
	}
	if err := h.BillRepo.CreateTx(ctx, tx, bill); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create bill"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.publishBill(c, bill)

	order.Status = model.OrderCompleted
	order.CompletedAt = &now
	order.UpdatedAt = now
	return c.JSON(http.StatusOK, echo.Map{"order": order, "bill": bill})
}

// paymentLine is one "pay for N units of this line" entry of a partial
// payment request.  Lines are addressed by order item id, not menu
// item: the same dish can appear as several lines (different notes)
// and a line keeps working after its menu item is deleted from the
// catalog.
type paymentLine struct {
	OrderItemID uint64 `json:"orderItemId"`
	Quantity    int    `json:"quantity"`
}

// itemDecrement describes an order line left with a reduced quantity
// after a partial payment consumed part of it.
type itemDecrement struct {
	ID         uint64
	Quantity   int
	TotalPrice int64
}

// paymentPlan is the outcome of matching a partial payment request
// against an order's current lines, computed before anything is
// written.
type paymentPlan struct {
	Subtotal   int64           // sum collected, at the lines' snapshot prices
	DeleteIDs  []uint64        // lines paid in full
	Decrements []itemDecrement // lines paid in part
}

// planPartialPayment validates a partial payment request against the
// order's lines and computes what to charge and how each line changes.
// Entries with a non-positive quantity are skipped.  Any entry naming
// a line not on the order, or asking for more units than the line
// holds, fails the whole request; the caller persists nothing in that
// case.
func planPartialPayment(items []model.OrderItem, toPay []paymentLine) (*paymentPlan, error) {
	byID := make(map[uint64]*model.OrderItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	// Quantities are accumulated per line first so a request naming the
	// same line twice cannot slip past the per-entry bound check.
	paid := make(map[uint64]int, len(toPay))
	order := make([]uint64, 0, len(toPay))
	for _, p := range toPay {
		if p.Quantity <= 0 {
			continue
		}
		line, ok := byID[p.OrderItemID]
		if !ok {
			return nil, fmt.Errorf("order item %d is not on this order", p.OrderItemID)
		}
		if _, seen := paid[p.OrderItemID]; !seen {
			order = append(order, p.OrderItemID)
		}
		paid[p.OrderItemID] += p.Quantity
		if paid[p.OrderItemID] > line.Quantity {
			return nil, fmt.Errorf("cannot pay for %d of %q, only %d on the order", paid[p.OrderItemID], line.MenuItemName, line.Quantity)
		}
	}
	plan := &paymentPlan{}
	for _, id := range order {
		line := byID[id]
		qty := paid[id]
		plan.Subtotal += line.UnitPrice * int64(qty)
		if qty == line.Quantity {
			plan.DeleteIDs = append(plan.DeleteIDs, line.ID)
		} else {
			remaining := line.Quantity - qty
			plan.Decrements = append(plan.Decrements, itemDecrement{
				ID:         line.ID,
				Quantity:   remaining,
				TotalPrice: line.UnitPrice * int64(remaining),
			})
		}
	}
	return plan, nil
}

// PartialPayment handles POST /api/orders/:id/partial-payment.  The
// request is planned against the order's lines first; only a fully
// valid plan is applied.  Paid lines are removed or reduced, a bill is
// written for the paid subtotal minus the discount, and when nothing
// remains on the order it is completed and its table freed, all in one
// transaction.
func (h *BillingHandler) PartialPayment(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var body struct {
		ItemsToPay            []paymentLine `json:"itemsToPay"`
		PaymentMethod         string        `json:"paymentMethod"`
		PartialDiscountAmount int64         `json:"partialDiscountAmount"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidPaymentMethod(body.PaymentMethod) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment method"})
	}
	if body.PartialDiscountAmount < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "partialDiscountAmount must not be negative"})
	}
	if len(body.ItemsToPay) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "itemsToPay is required"})
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
	if order.Status != model.OrderActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "order is not active"})
	}
	lines, err := h.OrderRepo.ItemsByOrderTx(ctx, tx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order items"})
	}
	plan, err := planPartialPayment(lines, body.ItemsToPay)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if err := h.OrderRepo.DeleteItemsByIDsTx(ctx, tx, plan.DeleteIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove paid items"})
	}
	for _, d := range plan.Decrements {
		if err := h.OrderRepo.DecrementItemTx(ctx, tx, d.ID, d.Quantity, d.TotalPrice); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update paid items"})
		}
	}
	now := utils.NowISO()
	bill := &model.Bill{
		OrderID:        orderID,
		TableID:        order.TableID,
		TableName:      order.TableName,
		TotalAmount:    plan.Subtotal - body.PartialDiscountAmount,
		PaymentMethod:  body.PaymentMethod,
		CreatedAt:      now,
		DiscountAmount: body.PartialDiscountAmount,
	}
	if err := h.BillRepo.CreateTx(ctx, tx, bill); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create bill"})
	}
	if _, err := h.OrderRepo.RecomputeTotalTx(ctx, tx, orderID, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to recompute order total"})
	}
	remaining := len(lines) - len(plan.DeleteIDs)
	if remaining == 0 {
		if err := h.OrderRepo.SetStateTx(ctx, tx, orderID, 0, model.OrderCompleted, &now, now); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to complete order"})
		}
		if err := h.TableRepo.UpdateStatusTx(ctx, tx, order.TableID, model.TableAvailable); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update table status"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.publishBill(c, bill)

	updated, err := h.OrderRepo.GetByID(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load order"})
	}
	return c.JSON(http.StatusOK, echo.Map{"order": updated, "bill": bill})
}

// publishBill emits a bill.created event when a publisher is wired.
// Billing already committed at this point, so failures only get
// logged.
func (h *BillingHandler) publishBill(c echo.Context, b *model.Bill) {
	if h.Publisher == nil {
		return
	}
	evt := queue.BillCreatedEvent{
		BillID:        b.ID,
		OrderID:       b.OrderID,
		TableID:       b.TableID,
		TableName:     b.TableName,
		TotalAmount:   b.TotalAmount,
		PaymentMethod: b.PaymentMethod,
		CreatedAt:     b.CreatedAt,
	}
	if err := h.Publisher.PublishBillCreated(c.Request().Context(), evt); err != nil {
		c.Logger().Errorf("failed to publish bill.created for bill %d: %v", b.ID, err)
	}
}
