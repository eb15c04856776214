package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hoangnecon/cafe-pos/internal/model"
)

// BillRepo provides access to the bills table.  Bills form an
// append-only ledger: there is deliberately no update or delete method
// here, and reporting reads are the only non-insert operations.
type BillRepo struct {
	db *sql.DB
}

// NewBillRepo returns a new BillRepo bound to the given database.
func NewBillRepo(db *sql.DB) *BillRepo { return &BillRepo{db: db} }

const billColumns = `id, order_id, table_id, table_name, total_amount, payment_method, created_at, discount_amount`

// scanBill scans one bill row from any row scanner.
func scanBill(scan func(dest ...interface{}) error) (*model.Bill, error) {
	var b model.Bill
	if err := scan(
		&b.ID, &b.OrderID, &b.TableID, &b.TableName,
		&b.TotalAmount, &b.PaymentMethod, &b.CreatedAt, &b.DiscountAmount,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateTx inserts a bill within the payment transaction that produced
// it, so a rolled-back payment leaves no bill behind.  On success the
// bill's ID is populated.
func (r *BillRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Bill) error {
	const q = `INSERT INTO bills (order_id, table_id, table_name, total_amount, payment_method, created_at, discount_amount)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.OrderID, b.TableID, b.TableName, b.TotalAmount, b.PaymentMethod, b.CreatedAt, b.DiscountAmount,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID retrieves a single bill by its id.
func (r *BillRepo) GetByID(ctx context.Context, id uint64) (*model.Bill, error) {
	const q = `SELECT ` + billColumns + ` FROM bills WHERE id = ?`
	b, err := scanBill(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	return b, nil
}

// List retrieves bills, optionally restricted to the half-open range
// [start, end) on created_at.  Both bounds must be set together; empty
// strings mean no restriction.  Stored timestamps share one fixed
// offset so string comparison orders them correctly.
func (r *BillRepo) List(ctx context.Context, start, end string) ([]model.Bill, error) {
	q := `SELECT ` + billColumns + ` FROM bills`
	args := []interface{}{}
	if start != "" && end != "" {
		q += ` WHERE created_at >= ? AND created_at < ?`
		args = append(args, start, end)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Bill, 0)
	for rows.Next() {
		b, err := scanBill(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DailyRevenue sums total_amount over [start, end).  An empty day
// yields zero, not an error.
func (r *BillRepo) DailyRevenue(ctx context.Context, start, end string) (int64, error) {
	const q = `SELECT COALESCE(SUM(total_amount), 0) FROM bills WHERE created_at >= ? AND created_at < ?`
	var revenue int64
	if err := r.db.QueryRowContext(ctx, q, start, end).Scan(&revenue); err != nil {
		return 0, err
	}
	return revenue, nil
}

// RevenueByTable groups bills in [start, end) by table name with a
// payment count and revenue sum per table.
func (r *BillRepo) RevenueByTable(ctx context.Context, start, end string) ([]model.TableRevenue, error) {
	const q = `SELECT table_name, COUNT(order_id), COALESCE(SUM(total_amount), 0)
	           FROM bills
	           WHERE created_at >= ? AND created_at < ?
	           GROUP BY table_name
	           ORDER BY table_name`
	rows, err := r.db.QueryContext(ctx, q, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.TableRevenue, 0)
	for rows.Next() {
		var tr model.TableRevenue
		if err := rows.Scan(&tr.TableName, &tr.OrderCount, &tr.Revenue); err != nil {
			return nil, err
		}
		result = append(result, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
