package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangnecon/cafe-pos/internal/model"
	"github.com/hoangnecon/cafe-pos/internal/repository"
)

func uintPtr(v uint64) *uint64 { return &v }

func TestPlanPartialPayment(t *testing.T) {
	// Two coffees at 30000 and three teas at 35000.
	lines := []model.OrderItem{
		{ID: 1, OrderID: 9, MenuItemID: uintPtr(101), MenuItemName: "Cà phê sữa", Quantity: 2, UnitPrice: 30000, TotalPrice: 60000},
		{ID: 2, OrderID: 9, MenuItemID: uintPtr(102), MenuItemName: "Trà đào", Quantity: 3, UnitPrice: 35000, TotalPrice: 105000},
	}

	tests := []struct {
		name           string
		toPay          []paymentLine
		wantErr        string
		wantSubtotal   int64
		wantDeleteIDs  []uint64
		wantDecrements []itemDecrement
	}{
		{
			name:           "partial_quantity_decrements_line",
			toPay:          []paymentLine{{OrderItemID: 2, Quantity: 1}},
			wantSubtotal:   35000,
			wantDecrements: []itemDecrement{{ID: 2, Quantity: 2, TotalPrice: 70000}},
		},
		{
			name:          "full_quantity_deletes_line",
			toPay:         []paymentLine{{OrderItemID: 1, Quantity: 2}},
			wantSubtotal:  60000,
			wantDeleteIDs: []uint64{1},
		},
		{
			name:           "mixed_delete_and_decrement",
			toPay:          []paymentLine{{OrderItemID: 1, Quantity: 2}, {OrderItemID: 2, Quantity: 2}},
			wantSubtotal:   130000,
			wantDeleteIDs:  []uint64{1},
			wantDecrements: []itemDecrement{{ID: 2, Quantity: 1, TotalPrice: 35000}},
		},
		{
			name:         "zero_and_negative_quantities_skipped",
			toPay:        []paymentLine{{OrderItemID: 1, Quantity: 0}, {OrderItemID: 2, Quantity: -3}},
			wantSubtotal: 0,
		},
		{
			name:          "repeated_line_entries_accumulate",
			toPay:         []paymentLine{{OrderItemID: 2, Quantity: 1}, {OrderItemID: 2, Quantity: 2}},
			wantSubtotal:  105000,
			wantDeleteIDs: []uint64{2},
		},
		{
			name:    "repeated_entries_cannot_overpay_a_line",
			toPay:   []paymentLine{{OrderItemID: 1, Quantity: 2}, {OrderItemID: 1, Quantity: 1}},
			wantErr: "only 2 on the order",
		},
		{
			name:    "line_not_on_order_fails",
			toPay:   []paymentLine{{OrderItemID: 1, Quantity: 1}, {OrderItemID: 999, Quantity: 1}},
			wantErr: "not on this order",
		},
		{
			name:    "overpaying_a_line_fails",
			toPay:   []paymentLine{{OrderItemID: 2, Quantity: 4}},
			wantErr: "only 3 on the order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planPartialPayment(lines, tt.toPay)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, plan)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubtotal, plan.Subtotal)
			assert.Equal(t, tt.wantDeleteIDs, plan.DeleteIDs)
			assert.Equal(t, tt.wantDecrements, plan.Decrements)
		})
	}
}

// The same dish may sit on an order as several lines (different
// notes).  Addressing by order item id keeps both lines independently
// payable, and their combined quantity can be settled across entries.
func TestPlanPartialPaymentDuplicateDishLines(t *testing.T) {
	lines := []model.OrderItem{
		{ID: 1, OrderID: 9, MenuItemID: uintPtr(101), MenuItemName: "Cà phê đen", Quantity: 1, UnitPrice: 25000, TotalPrice: 25000},
		{ID: 2, OrderID: 9, MenuItemID: uintPtr(101), MenuItemName: "Cà phê đen", Quantity: 1, UnitPrice: 25000, TotalPrice: 25000},
	}

	plan, err := planPartialPayment(lines, []paymentLine{
		{OrderItemID: 1, Quantity: 1},
		{OrderItemID: 2, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50000), plan.Subtotal)
	assert.ElementsMatch(t, []uint64{1, 2}, plan.DeleteIDs)
	assert.Empty(t, plan.Decrements)

	// Paying just one of the two lines leaves the other untouched.
	plan, err = planPartialPayment(lines, []paymentLine{{OrderItemID: 1, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, plan.DeleteIDs)
}

// A line whose menu item was deleted from the catalog keeps its id and
// price snapshot, so it stays payable.
func TestPlanPartialPaymentUnlinkedLine(t *testing.T) {
	lines := []model.OrderItem{
		{ID: 1, OrderID: 9, MenuItemID: nil, MenuItemName: "Món cũ", Quantity: 2, UnitPrice: 20000, TotalPrice: 40000},
	}
	plan, err := planPartialPayment(lines, []paymentLine{{OrderItemID: 1, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), plan.Subtotal)
	assert.Equal(t, []itemDecrement{{ID: 1, Quantity: 1, TotalPrice: 20000}}, plan.Decrements)
}

// A discount larger than the amount paid produces a negative bill
// amount rather than being clipped to zero.
func TestBillAmountNotFlooredAtZero(t *testing.T) {
	lines := []model.OrderItem{
		{ID: 1, OrderID: 9, MenuItemID: uintPtr(101), Quantity: 1, UnitPrice: 25000, TotalPrice: 25000},
	}
	plan, err := planPartialPayment(lines, []paymentLine{{OrderItemID: 1, Quantity: 1}})
	require.NoError(t, err)

	var discount int64 = 30000
	assert.Equal(t, int64(-5000), plan.Subtotal-discount)
}

func newJSONRequest(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCompleteOrderRejectsBadInput(t *testing.T) {
	h := &BillingHandler{}

	tests := []struct {
		name string
		id   string
		body string
	}{
		{"invalid_order_id", "abc", `{"paymentMethod":"Cash"}`},
		{"unknown_payment_method", "1", `{"paymentMethod":"Bitcoin"}`},
		{"missing_payment_method", "1", `{}`},
		{"negative_discount", "1", `{"paymentMethod":"Cash","discountAmount":-500}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONRequest(http.MethodPut, "/api/orders/"+tt.id+"/complete", tt.body)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)
			require.NoError(t, h.CompleteOrder(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPartialPaymentRejectsBadInput(t *testing.T) {
	h := &BillingHandler{}

	tests := []struct {
		name string
		id   string
		body string
	}{
		{"invalid_order_id", "0", `{"paymentMethod":"Cash","itemsToPay":[{"orderItemId":1,"quantity":1}]}`},
		{"unknown_payment_method", "1", `{"paymentMethod":"IOU","itemsToPay":[{"orderItemId":1,"quantity":1}]}`},
		{"negative_discount", "1", `{"paymentMethod":"Card","partialDiscountAmount":-1,"itemsToPay":[{"orderItemId":1,"quantity":1}]}`},
		{"no_items", "1", `{"paymentMethod":"Transfer"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONRequest(http.MethodPost, "/api/orders/"+tt.id+"/partial-payment", tt.body)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)
			require.NoError(t, h.PartialPayment(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

// --- transactional flows against a mocked database ---

const (
	orderCols     = "id, table_id, table_name, status, total, created_at, completed_at, updated_at, note"
	orderItemCols = "id, order_id, menu_item_id, menu_item_name, quantity, unit_price, total_price, note"
)

func newBillingFlowHandler(t *testing.T) (*BillingHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewBillingHandler(
		repository.NewOrderRepo(db),
		repository.NewTableRepo(db),
		repository.NewBillRepo(db),
		nil,
	)
	return h, mock, func() { db.Close() }
}

func orderRows(status string, total int64, completedAt interface{}) *sqlmock.Rows {
	now := "2026-08-31T10:00:00+07:00"
	return sqlmock.NewRows(strings.Split(orderCols, ", ")).
		AddRow(9, 3, "Bàn 3", status, total, now, completedAt, now, nil)
}

// An over-quantity entry must fail before anything is written: the
// transaction rolls back and no bill row, item delete or table update
// is ever issued.
func TestPartialPaymentOverQuantityRollsBackEverything(t *testing.T) {
	h, mock, cleanup := newBillingFlowHandler(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM orders WHERE id").WillReturnRows(orderRows(model.OrderActive, 25000, nil))
	mock.ExpectQuery("SELECT .+ FROM order_items WHERE order_id").
		WillReturnRows(sqlmock.NewRows(strings.Split(orderItemCols, ", ")).
			AddRow(1, 9, 101, "Cà phê đen", 1, 25000, 25000, nil))
	mock.ExpectRollback()

	c, rec := newJSONRequest(http.MethodPost, "/api/orders/9/partial-payment",
		`{"paymentMethod":"Cash","partialDiscountAmount":0,"itemsToPay":[{"orderItemId":1,"quantity":5}]}`)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.PartialPayment(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Paying for every remaining unit completes the order and frees its
// table inside the same transaction as the bill insert.
func TestPartialPaymentForAllItemsCompletesOrder(t *testing.T) {
	h, mock, cleanup := newBillingFlowHandler(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM orders WHERE id").WillReturnRows(orderRows(model.OrderActive, 25000, nil))
	mock.ExpectQuery("SELECT .+ FROM order_items WHERE order_id").
		WillReturnRows(sqlmock.NewRows(strings.Split(orderItemCols, ", ")).
			AddRow(1, 9, 101, "Cà phê đen", 1, 25000, 25000, nil))
	mock.ExpectExec("DELETE FROM order_items WHERE id IN").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bills").WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 1)) // total recompute
	mock.ExpectQuery("SELECT total FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(0))
	mock.ExpectExec("UPDATE orders SET total").WillReturnResult(sqlmock.NewResult(0, 1)) // completed state
	mock.ExpectExec("UPDATE tables SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT .+ FROM orders WHERE id").
		WillReturnRows(orderRows(model.OrderCompleted, 0, "2026-08-31T10:05:00+07:00"))

	c, rec := newJSONRequest(http.MethodPost, "/api/orders/9/partial-payment",
		`{"paymentMethod":"Cash","partialDiscountAmount":0,"itemsToPay":[{"orderItemId":1,"quantity":1}]}`)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.PartialPayment(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Paying part of an order leaves it active: lines shrink, a bill is
// written, and neither order status nor table status changes.
func TestPartialPaymentLeavesOrderActive(t *testing.T) {
	h, mock, cleanup := newBillingFlowHandler(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM orders WHERE id").WillReturnRows(orderRows(model.OrderActive, 105000, nil))
	mock.ExpectQuery("SELECT .+ FROM order_items WHERE order_id").
		WillReturnRows(sqlmock.NewRows(strings.Split(orderItemCols, ", ")).
			AddRow(2, 9, 102, "Trà đào", 3, 35000, 105000, nil))
	mock.ExpectExec("UPDATE order_items SET quantity").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bills").WillReturnResult(sqlmock.NewResult(6, 1))
	mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT total FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(70000))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT .+ FROM orders WHERE id").WillReturnRows(orderRows(model.OrderActive, 70000, nil))

	c, rec := newJSONRequest(http.MethodPost, "/api/orders/9/partial-payment",
		`{"paymentMethod":"Card","partialDiscountAmount":0,"itemsToPay":[{"orderItemId":2,"quantity":1}]}`)
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.PartialPayment(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"active"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
