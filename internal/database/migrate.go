package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the DDL statements for all persisted tables, leaf tables
// first so foreign keys resolve.  Statements are idempotent; Migrate is
// run on every startup.  Monetary columns are integers in minor
// currency units and timestamps are ISO-8601 strings normalized to the
// business timezone at write time.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS tables (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(100) NOT NULL,
		type VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'available',
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS menu_collections (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(100) NOT NULL,
		description TEXT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at VARCHAR(40) NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_menu_collections_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS menu_items (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(200) NOT NULL,
		price BIGINT NOT NULL,
		category VARCHAR(100) NOT NULL,
		image_url TEXT NULL,
		available TINYINT(1) NOT NULL DEFAULT 1,
		menu_collection_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (id),
		KEY idx_menu_items_collection (menu_collection_id),
		CONSTRAINT fk_menu_items_collection FOREIGN KEY (menu_collection_id)
			REFERENCES menu_collections (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		table_id BIGINT UNSIGNED NOT NULL,
		table_name VARCHAR(100) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		total BIGINT NOT NULL DEFAULT 0,
		created_at VARCHAR(40) NOT NULL,
		completed_at VARCHAR(40) NULL,
		updated_at VARCHAR(40) NOT NULL,
		note TEXT NULL,
		PRIMARY KEY (id),
		KEY idx_orders_table_status (table_id, status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		order_id BIGINT UNSIGNED NOT NULL,
		menu_item_id BIGINT UNSIGNED NULL,
		menu_item_name VARCHAR(200) NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		unit_price BIGINT NOT NULL,
		total_price BIGINT NOT NULL,
		note TEXT NULL,
		PRIMARY KEY (id),
		KEY idx_order_items_order (order_id),
		CONSTRAINT fk_order_items_order FOREIGN KEY (order_id)
			REFERENCES orders (id) ON DELETE CASCADE,
		CONSTRAINT fk_order_items_menu_item FOREIGN KEY (menu_item_id)
			REFERENCES menu_items (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bills (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		order_id BIGINT UNSIGNED NOT NULL,
		table_id BIGINT UNSIGNED NOT NULL,
		table_name VARCHAR(100) NOT NULL,
		total_amount BIGINT NOT NULL,
		payment_method VARCHAR(20) NOT NULL DEFAULT 'Cash',
		created_at VARCHAR(40) NOT NULL,
		discount_amount BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		KEY idx_bills_created_at (created_at),
		CONSTRAINT fk_bills_order FOREIGN KEY (order_id)
			REFERENCES orders (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema statements in order.  It is safe to call
// repeatedly on an already-migrated database.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
