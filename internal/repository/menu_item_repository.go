package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/hoangnecon/cafe-pos/internal/model"
)

// MenuItemRepo provides CRUD operations for menu items.  Items are the
// price/name snapshot source for order lines: order mutations read the
// current row here and copy it, they never reference it afterwards.
type MenuItemRepo struct {
	db *sql.DB
}

// NewMenuItemRepo returns a new MenuItemRepo bound to the given database.
func NewMenuItemRepo(db *sql.DB) *MenuItemRepo { return &MenuItemRepo{db: db} }

// MenuItemFilter narrows List results.  Zero values mean "no filter";
// all set filters are combined with AND.
type MenuItemFilter struct {
	CollectionID uint64 // menu_collection_id equality, 0 = any
	SearchTerm   string // substring match on name
	Category     string // category equality
}

// buildMenuItemQuery assembles the SELECT for the given filter and the
// matching argument list.  Split out so the SQL construction is
// testable without a database.
func buildMenuItemQuery(f MenuItemFilter) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, name, price, category, image_url, available, menu_collection_id FROM menu_items`)
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if f.CollectionID != 0 {
		conds = append(conds, "menu_collection_id = ?")
		args = append(args, f.CollectionID)
	}
	if f.SearchTerm != "" {
		conds = append(conds, "name LIKE ?")
		args = append(args, "%"+f.SearchTerm+"%")
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY id")
	return sb.String(), args
}

// List retrieves menu items matching the filter, ordered by id.
func (r *MenuItemRepo) List(ctx context.Context, f MenuItemFilter) ([]model.MenuItem, error) {
	q, args := buildMenuItemQuery(f)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.MenuItem, 0)
	for rows.Next() {
		var m model.MenuItem
		var img sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.Category, &img, &m.Available, &m.MenuCollectionID); err != nil {
			return nil, err
		}
		if img.Valid {
			u := img.String
			m.ImageURL = &u
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a single menu item by its id.
func (r *MenuItemRepo) GetByID(ctx context.Context, id uint64) (*model.MenuItem, error) {
	const q = `SELECT id, name, price, category, image_url, available, menu_collection_id FROM menu_items WHERE id = ?`
	var m model.MenuItem
	var img sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&m.ID, &m.Name, &m.Price, &m.Category, &img, &m.Available, &m.MenuCollectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMenuItemNotFound
		}
		return nil, err
	}
	if img.Valid {
		u := img.String
		m.ImageURL = &u
	}
	return &m, nil
}

// Create inserts a new menu item. On success the item's ID is populated.
func (r *MenuItemRepo) Create(ctx context.Context, m *model.MenuItem) error {
	const q = `INSERT INTO menu_items (name, price, category, image_url, available, menu_collection_id)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Name, m.Price, m.Category, m.ImageURL, m.Available, m.MenuCollectionID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// MenuItemUpdate carries a partial update; nil fields are left untouched.
type MenuItemUpdate struct {
	Name             *string
	Price            *int64
	Category         *string
	ImageURL         *string
	Available        *bool
	MenuCollectionID *uint64
}

// Update applies a partial update and returns the updated row.
// Returns ErrMenuItemNotFound when the id does not exist.  Changing
// the price only affects future order lines; existing lines keep
// their snapshot.
func (r *MenuItemRepo) Update(ctx context.Context, id uint64, u MenuItemUpdate) (*model.MenuItem, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		existing.Name = *u.Name
	}
	if u.Price != nil {
		existing.Price = *u.Price
	}
	if u.Category != nil {
		existing.Category = *u.Category
	}
	if u.ImageURL != nil {
		existing.ImageURL = u.ImageURL
	}
	if u.Available != nil {
		existing.Available = *u.Available
	}
	if u.MenuCollectionID != nil {
		existing.MenuCollectionID = *u.MenuCollectionID
	}
	const q = `UPDATE menu_items SET name = ?, price = ?, category = ?, image_url = ?, available = ?, menu_collection_id = ?
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q,
		existing.Name, existing.Price, existing.Category, existing.ImageURL,
		existing.Available, existing.MenuCollectionID, id,
	); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a menu item.  Order lines that reference it keep
// their name/price snapshots; the FK sets their menu_item_id to NULL.
func (r *MenuItemRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM menu_items WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}
