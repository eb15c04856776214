// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict indicates that an operation cannot proceed due
// to conflicting state (deleting a table that is not available, or a
// menu collection that menu items still reference), while the
// per-entity not-found sentinels map to HTTP 404 responses.
package repository

import "errors"

// ErrConflict is returned when a delete or insert cannot be performed
// because of conflicting state, such as deleting an occupied table,
// deleting a menu collection with linked items, or opening a second
// active order on a table. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrTableNotFound is returned when a table lookup yields no rows.
var ErrTableNotFound = errors.New("table not found")

// ErrMenuCollectionNotFound is returned when a menu collection lookup
// yields no rows.
var ErrMenuCollectionNotFound = errors.New("menu collection not found")

// ErrMenuItemNotFound is returned when a menu item lookup yields no rows.
var ErrMenuItemNotFound = errors.New("menu item not found")

// ErrOrderNotFound is returned when an order lookup yields no rows, or
// when a state-changing update matches no active order.
var ErrOrderNotFound = errors.New("order not found")

// ErrOrderItemNotFound is returned when an order item lookup yields no rows.
var ErrOrderItemNotFound = errors.New("order item not found")

// ErrBillNotFound is returned when a bill lookup yields no rows.
var ErrBillNotFound = errors.New("bill not found")
