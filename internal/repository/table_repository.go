package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hoangnecon/cafe-pos/internal/model"
)

// TableRepo provides CRUD operations for restaurant tables.  Table
// status transitions that belong to an order lifecycle (occupied on
// order creation, available on settlement or cancellation) are done
// through the Tx variants inside the owning transaction.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// List retrieves all tables ordered by id.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	const q = `SELECT id, name, type, status FROM tables ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.Name, &t.Type, &t.Status); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a single table by its id.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	const q = `SELECT id, name, type, status FROM tables WHERE id = ?`
	var t model.Table
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Type, &t.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts a new table. On success the table's ID is populated.
// New tables always start as available.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	const q = `INSERT INTO tables (name, type, status) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Type, model.TableAvailable)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.Status = model.TableAvailable
	return nil
}

// UpdateStatus forces a table into the given status.  Returns
// ErrTableNotFound when no table with the id exists.
func (r *TableRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	const q = `UPDATE tables SET status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	// RowsAffected is zero both for a missing row and for a no-op
	// update to the same status, so check existence separately.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatusTx updates a table's status within an existing
// transaction.  Used by order creation, cancellation and billing so the
// table flip commits or rolls back together with the order mutation.
func (r *TableRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	const q = `UPDATE tables SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}

// Delete removes a table, but only while it is available.  The status
// guard lives in the DELETE predicate itself so there is no window
// between checking and deleting.  Returns ErrTableNotFound when the
// table does not exist and ErrConflict when it exists but is occupied
// or reserved.
func (r *TableRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM tables WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, id, model.TableAvailable)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}
