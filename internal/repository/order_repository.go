package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/hoangnecon/cafe-pos/internal/model"
	"github.com/hoangnecon/cafe-pos/internal/utils"
)

// OrderRepo provides persistence for orders and their line items.
// Orders own their items exclusively (cascade delete).  Multi-step
// mutations — opening an order, item changes with total recompute,
// cancellation, checkout, partial payment — run inside one transaction
// supplied by the caller; the Tx-suffixed methods take that
// transaction.  The invariant maintained throughout is that an order's
// total always equals the sum of its current items' total prices.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions.
func (r *OrderRepo) DB() *sql.DB { return r.db }

const orderColumns = `id, table_id, table_name, status, total, created_at, completed_at, updated_at, note`

// scanOrder scans one order row from any row scanner.
func scanOrder(scan func(dest ...interface{}) error) (*model.Order, error) {
	var o model.Order
	var completedAt, note sql.NullString
	if err := scan(
		&o.ID, &o.TableID, &o.TableName, &o.Status, &o.Total,
		&o.CreatedAt, &completedAt, &o.UpdatedAt, &note,
	); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		v := completedAt.String
		o.CompletedAt = &v
	}
	if note.Valid {
		v := note.String
		o.Note = &v
	}
	return &o, nil
}

// List retrieves all orders, newest first.
func (r *OrderRepo) List(ctx context.Context) ([]model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a single order by its id.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// GetByIDTx is GetByID within an existing transaction.
func (r *OrderRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	o, err := scanOrder(tx.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// GetActiveByTable returns the table's active order, or
// ErrOrderNotFound when the table has none.
func (r *OrderRepo) GetActiveByTable(ctx context.Context, tableID uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE table_id = ? AND status = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, tableID, model.OrderActive).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// CreateTx inserts a new active order for a table within an existing
// transaction.  The one-active-order-per-table invariant is enforced in
// the INSERT itself via a NOT EXISTS guard, so two racing creates
// cannot both succeed; the loser gets ErrConflict.  On success the
// order's ID, timestamps and zero total are populated.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	now := utils.NowISO()
	const q = `INSERT INTO orders (table_id, table_name, status, total, created_at, updated_at, note)
	           SELECT ?, ?, ?, 0, ?, ?, ?
	           FROM DUAL
	           WHERE NOT EXISTS (SELECT 1 FROM orders WHERE table_id = ? AND status = ?)`
	res, err := tx.ExecContext(ctx, q,
		o.TableID, o.TableName, model.OrderActive, now, now, o.Note,
		o.TableID, model.OrderActive,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	o.Status = model.OrderActive
	o.Total = 0
	o.CreatedAt = now
	o.UpdatedAt = now
	o.CompletedAt = nil
	return nil
}

// SetNote updates an order's free-text note.  Returns the updated
// order or ErrOrderNotFound.
func (r *OrderRepo) SetNote(ctx context.Context, id uint64, note *string) (*model.Order, error) {
	const q = `UPDATE orders SET note = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, note, utils.NowISO(), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish missing row from a no-op write of the same note.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// MarkCancelledTx transitions an active order to cancelled with a zero
// total.  The status predicate makes a repeat cancellation a NotFound
// rather than a second mutation, so table state cannot be corrupted.
func (r *OrderRepo) MarkCancelledTx(ctx context.Context, tx *sql.Tx, id uint64, now string) error {
	const q = `UPDATE orders SET status = ?, total = 0, completed_at = ?, updated_at = ?
	           WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.OrderCancelled, now, now, id, model.OrderActive)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkCompletedTx transitions an active order to completed.
func (r *OrderRepo) MarkCompletedTx(ctx context.Context, tx *sql.Tx, id uint64, now string) error {
	const q = `UPDATE orders SET status = ?, completed_at = ?, updated_at = ?
	           WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.OrderCompleted, now, now, id, model.OrderActive)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// SetStateTx writes total/status/completed_at in one statement.  Used
// by partial payment where the new state depends on the remaining
// items.
func (r *OrderRepo) SetStateTx(ctx context.Context, tx *sql.Tx, id uint64, total int64, status string, completedAt *string, now string) error {
	const q = `UPDATE orders SET total = ?, status = ?, completed_at = ?, updated_at = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, total, status, completedAt, now, id)
	return err
}

// RecomputeTotalTx recomputes and persists the order's total from its
// current items and returns the new value.  Called after every item
// mutation inside the same transaction.
func (r *OrderRepo) RecomputeTotalTx(ctx context.Context, tx *sql.Tx, orderID uint64, now string) (int64, error) {
	const q = `UPDATE orders
	           SET total = COALESCE((SELECT SUM(total_price) FROM order_items WHERE order_id = ?), 0),
	               updated_at = ?
	           WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, orderID, now, orderID); err != nil {
		return 0, err
	}
	var total int64
	if err := tx.QueryRowContext(ctx, `SELECT total FROM orders WHERE id = ?`, orderID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

const orderItemColumns = `id, order_id, menu_item_id, menu_item_name, quantity, unit_price, total_price, note`

// scanOrderItem scans one order item row from any row scanner.
func scanOrderItem(scan func(dest ...interface{}) error) (*model.OrderItem, error) {
	var it model.OrderItem
	var menuItemID sql.NullInt64
	var note sql.NullString
	if err := scan(
		&it.ID, &it.OrderID, &menuItemID, &it.MenuItemName,
		&it.Quantity, &it.UnitPrice, &it.TotalPrice, &note,
	); err != nil {
		return nil, err
	}
	if menuItemID.Valid {
		v := uint64(menuItemID.Int64)
		it.MenuItemID = &v
	}
	if note.Valid {
		v := note.String
		it.Note = &v
	}
	return &it, nil
}

// ItemsByOrder retrieves all current items of an order ordered by id.
func (r *OrderRepo) ItemsByOrder(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	const q = `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.OrderItem, 0)
	for rows.Next() {
		it, err := scanOrderItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ItemsByOrderTx is ItemsByOrder within an existing transaction.
func (r *OrderRepo) ItemsByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]model.OrderItem, error) {
	const q = `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = ? ORDER BY id`
	rows, err := tx.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.OrderItem, 0)
	for rows.Next() {
		it, err := scanOrderItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetItem retrieves a single order item by its id.
func (r *OrderRepo) GetItem(ctx context.Context, id uint64) (*model.OrderItem, error) {
	const q = `SELECT ` + orderItemColumns + ` FROM order_items WHERE id = ?`
	it, err := scanOrderItem(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderItemNotFound
		}
		return nil, err
	}
	return it, nil
}

// InsertItemTx inserts a new line with the caller-supplied name/price
// snapshots.  On success the item's ID is populated.
func (r *OrderRepo) InsertItemTx(ctx context.Context, tx *sql.Tx, it *model.OrderItem) error {
	const q = `INSERT INTO order_items (order_id, menu_item_id, menu_item_name, quantity, unit_price, total_price, note)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		it.OrderID, it.MenuItemID, it.MenuItemName, it.Quantity, it.UnitPrice, it.TotalPrice, it.Note,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// UpdateItemTx writes a line's quantity, total price and note.
func (r *OrderRepo) UpdateItemTx(ctx context.Context, tx *sql.Tx, id uint64, quantity int, totalPrice int64, note *string) error {
	const q = `UPDATE order_items SET quantity = ?, total_price = ?, note = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, quantity, totalPrice, note, id)
	return err
}

// DecrementItemTx reduces a line to the given remaining quantity after
// a partial payment consumed part of it.
func (r *OrderRepo) DecrementItemTx(ctx context.Context, tx *sql.Tx, id uint64, quantity int, totalPrice int64) error {
	const q = `UPDATE order_items SET quantity = ?, total_price = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, quantity, totalPrice, id)
	return err
}

// DeleteItemTx removes one line.  Returns ErrOrderItemNotFound when
// the line does not exist.
func (r *OrderRepo) DeleteItemTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `DELETE FROM order_items WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderItemNotFound
	}
	return nil
}

// DeleteItemsByIDsTx removes the fully-paid lines of a partial payment
// in one statement.  Passing an empty slice has no effect.
func (r *OrderRepo) DeleteItemsByIDsTx(ctx context.Context, tx *sql.Tx, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `DELETE FROM order_items WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// DeleteItemsByOrderTx removes all lines of an order (cancellation).
func (r *OrderRepo) DeleteItemsByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) error {
	const q = `DELETE FROM order_items WHERE order_id = ?`
	_, err := tx.ExecContext(ctx, q, orderID)
	return err
}
