package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the CREATE statements applied by Migrate, in dependency
// order. Every statement is idempotent.
//
// coupons.active_user_id is NULL for inactive coupons and the owner id for
// the active one; its unique index lets MySQL itself refuse a second active
// coupon for the same user.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(120) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          ENUM('customer','admin') NOT NULL DEFAULT 'customer',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS products (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		price       DECIMAL(10,2) NOT NULL,
		image       VARCHAR(1024) NOT NULL DEFAULT '',
		category    VARCHAR(120) NOT NULL,
		is_featured TINYINT(1) NOT NULL DEFAULT 0,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_products_category (category),
		KEY idx_products_featured (is_featured)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id                  BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		code                VARCHAR(32) NOT NULL,
		discount_percentage TINYINT UNSIGNED NOT NULL,
		expiration_date     DATETIME NOT NULL,
		user_id             BIGINT UNSIGNED NOT NULL,
		is_active           TINYINT(1) NOT NULL DEFAULT 1,
		active_user_id      BIGINT UNSIGNED GENERATED ALWAYS AS (IF(is_active = 1, user_id, NULL)) STORED,
		created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_coupons_user_code (user_id, code),
		UNIQUE KEY uq_coupons_active_user (active_user_id),
		CONSTRAINT fk_coupons_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                 BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id            BIGINT UNSIGNED NOT NULL,
		total_amount_cents BIGINT NOT NULL,
		stripe_session_id  VARCHAR(255) NOT NULL,
		created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_orders_session (stripe_session_id),
		CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		order_id   BIGINT UNSIGNED NOT NULL,
		product_id BIGINT UNSIGNED NOT NULL,
		quantity   INT UNSIGNED NOT NULL,
		price      DECIMAL(10,2) NOT NULL,
		CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
