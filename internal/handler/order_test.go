package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangnecon/cafe-pos/internal/model"
	"github.com/hoangnecon/cafe-pos/internal/repository"
)

func TestAddItemRejectsBadInput(t *testing.T) {
	h := &OrderHandler{}

	tests := []struct {
		name string
		id   string
		body string
	}{
		{"invalid_order_id", "x", `{"menuItemId":1,"quantity":1}`},
		{"missing_menu_item", "1", `{"quantity":1}`},
		{"zero_quantity", "1", `{"menuItemId":1,"quantity":0}`},
		{"negative_quantity", "1", `{"menuItemId":1,"quantity":-2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONRequest(http.MethodPost, "/api/orders/"+tt.id+"/items", tt.body)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)
			require.NoError(t, h.AddItem(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

// A quantity update below 1 must be refused; shrinking a line to
// nothing goes through DELETE, not PUT.
func TestUpdateItemRejectsNonPositiveQuantity(t *testing.T) {
	h := &OrderHandler{}

	for _, qty := range []string{"0", "-1"} {
		c, rec := newJSONRequest(http.MethodPut, "/api/order-items/5", `{"quantity":`+qty+`}`)
		c.SetParamNames("id")
		c.SetParamValues("5")
		require.NoError(t, h.UpdateItem(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

// --- transactional flows against a mocked database ---

func newOrderFlowHandler(t *testing.T) (*OrderHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewOrderHandler(
		repository.NewOrderRepo(db),
		repository.NewTableRepo(db),
		repository.NewMenuItemRepo(db),
	)
	return h, mock, func() { db.Close() }
}

// The storage-level guard makes a second open tab for the same table a
// conflict: the guarded insert affects zero rows, the transaction
// rolls back and the table's status is never touched.
func TestCreateOrderConflictsOnSecondActiveOrder(t *testing.T) {
	h, mock, cleanup := newOrderFlowHandler(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM tables WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "status"}).
			AddRow(3, "Bàn 3", "regular", "occupied"))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	c, rec := newJSONRequest(http.MethodPost, "/api/orders", `{"tableId":3}`)
	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Cancelling wipes the order's items, marks it cancelled and frees the
// table in one transaction.
func TestCancelOrderWipesItemsAndFreesTable(t *testing.T) {
	h, mock, cleanup := newOrderFlowHandler(t)
	defer cleanup()

	now := "2026-08-31T10:00:00+07:00"
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM orders WHERE id").
		WillReturnRows(sqlmock.NewRows(strings.Split(orderCols, ", ")).
			AddRow(9, 3, "Bàn 3", model.OrderActive, 60000, now, nil, now, nil))
	mock.ExpectExec("DELETE FROM order_items WHERE order_id").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE orders SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tables SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newJSONRequest(http.MethodPut, "/api/orders/9/cancel", `{"tableId":3}`)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.CancelOrder(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A repeat cancel finds no active order to update; the handler answers
// 404 and the transaction rolls back without reaching the table.
func TestCancelOrderRepeatedReturnsNotFound(t *testing.T) {
	h, mock, cleanup := newOrderFlowHandler(t)
	defer cleanup()

	now := "2026-08-31T10:00:00+07:00"
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM orders WHERE id").
		WillReturnRows(sqlmock.NewRows(strings.Split(orderCols, ", ")).
			AddRow(9, 3, "Bàn 3", model.OrderCancelled, 0, now, now, now, nil))
	mock.ExpectExec("DELETE FROM order_items WHERE order_id").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE orders SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	c, rec := newJSONRequest(http.MethodPut, "/api/orders/9/cancel", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.CancelOrder(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
