package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hoangnecon/cafe-pos/internal/model"
	"github.com/hoangnecon/cafe-pos/internal/utils"
)

// MenuCollectionRepo provides CRUD operations for menu collections.
// Collections group menu items; deleting one is blocked while items
// still reference it.
type MenuCollectionRepo struct {
	db *sql.DB
}

// NewMenuCollectionRepo returns a new MenuCollectionRepo bound to the
// given database.
func NewMenuCollectionRepo(db *sql.DB) *MenuCollectionRepo {
	return &MenuCollectionRepo{db: db}
}

// List retrieves all menu collections ordered by id.
func (r *MenuCollectionRepo) List(ctx context.Context) ([]model.MenuCollection, error) {
	const q = `SELECT id, name, description, is_active, created_at FROM menu_collections ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.MenuCollection, 0)
	for rows.Next() {
		var c model.MenuCollection
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &desc, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			c.Description = &d
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a single menu collection by its id.
func (r *MenuCollectionRepo) GetByID(ctx context.Context, id uint64) (*model.MenuCollection, error) {
	const q = `SELECT id, name, description, is_active, created_at FROM menu_collections WHERE id = ?`
	var c model.MenuCollection
	var desc sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &desc, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMenuCollectionNotFound
		}
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		c.Description = &d
	}
	return &c, nil
}

// Create inserts a new menu collection and populates its ID and
// CreatedAt.  The unique index on name surfaces duplicates as a driver
// error which callers may report as a conflict.
func (r *MenuCollectionRepo) Create(ctx context.Context, c *model.MenuCollection) error {
	c.CreatedAt = utils.NowISO()
	const q = `INSERT INTO menu_collections (name, description, is_active, created_at) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Description, c.IsActive, c.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Update applies a partial update.  Nil pointers leave the column
// untouched.  Returns ErrMenuCollectionNotFound when the id does not
// exist.
func (r *MenuCollectionRepo) Update(ctx context.Context, id uint64, name *string, description *string, isActive *bool) (*model.MenuCollection, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		existing.Name = *name
	}
	if description != nil {
		existing.Description = description
	}
	if isActive != nil {
		existing.IsActive = *isActive
	}
	const q = `UPDATE menu_collections SET name = ?, description = ?, is_active = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, existing.Name, existing.Description, existing.IsActive, id); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a menu collection.  Returns ErrConflict while any
// menu item still references the collection and
// ErrMenuCollectionNotFound when it does not exist.
func (r *MenuCollectionRepo) Delete(ctx context.Context, id uint64) error {
	const linked = `SELECT 1 FROM menu_items WHERE menu_collection_id = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, linked, id).Scan(&one)
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	const q = `DELETE FROM menu_collections WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMenuCollectionNotFound
	}
	return nil
}
