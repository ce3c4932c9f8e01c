package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/theatre-booking/internal/config"
)

// Timestamps are written by the application as UTC "YYYY-MM-DD
// HH:MM:SS" strings, which keeps date range filters plain string
// comparisons in both dialects. Money columns hold integer cents.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		role          TEXT NOT NULL DEFAULT 'customer' CHECK (role IN ('admin', 'customer')),
		created_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS shows (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		poster      TEXT,
		duration    INTEGER NOT NULL CHECK (duration > 0),
		created_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS show_times (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		show_id     INTEGER NOT NULL REFERENCES shows(id),
		show_date   TEXT NOT NULL,
		start_time  TEXT NOT NULL,
		price_cents INTEGER NOT NULL CHECK (price_cents > 0),
		seating_map TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      INTEGER NOT NULL REFERENCES users(id),
		show_time_id INTEGER NOT NULL REFERENCES show_times(id),
		seats        TEXT NOT NULL,
		seat_count   INTEGER NOT NULL,
		total_cents  INTEGER NOT NULL,
		status       TEXT NOT NULL DEFAULT 'confirmed',
		created_at   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		type        TEXT NOT NULL CHECK (type IN ('snack', 'drink')),
		price_cents INTEGER NOT NULL CHECK (price_cents > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		booking_id INTEGER REFERENCES bookings(id),
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity   INTEGER NOT NULL CHECK (quantity > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS system_logs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		action     TEXT NOT NULL,
		details    TEXT NOT NULL DEFAULT '',
		user_id    INTEGER REFERENCES users(id),
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_show_times_slot ON show_times (show_id, show_date, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_created ON bookings (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_booking ON order_items (booking_id)`,
	`CREATE INDEX IF NOT EXISTS idx_system_logs_created ON system_logs (created_at)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(64) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL UNIQUE,
		role          ENUM('admin', 'customer') NOT NULL DEFAULT 'customer',
		created_at    DATETIME NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS shows (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title       VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		poster      VARCHAR(512) NULL,
		duration    INT NOT NULL,
		created_at  DATETIME NOT NULL,
		CHECK (duration > 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS show_times (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		show_id     BIGINT UNSIGNED NOT NULL,
		show_date   CHAR(10) NOT NULL,
		start_time  CHAR(5) NOT NULL,
		price_cents BIGINT NOT NULL,
		seating_map TEXT NOT NULL,
		created_at  DATETIME NOT NULL,
		KEY idx_show_times_slot (show_id, show_date, start_time),
		CONSTRAINT fk_show_times_show FOREIGN KEY (show_id) REFERENCES shows(id),
		CHECK (price_cents > 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id      BIGINT UNSIGNED NOT NULL,
		show_time_id BIGINT UNSIGNED NOT NULL,
		seats        TEXT NOT NULL,
		seat_count   INT NOT NULL,
		total_cents  BIGINT NOT NULL,
		status       VARCHAR(16) NOT NULL DEFAULT 'confirmed',
		created_at   DATETIME NOT NULL,
		KEY idx_bookings_user (user_id, created_at),
		KEY idx_bookings_created (created_at),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users(id),
		CONSTRAINT fk_bookings_show_time FOREIGN KEY (show_time_id) REFERENCES show_times(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS products (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		type        ENUM('snack', 'drink') NOT NULL,
		price_cents BIGINT NOT NULL,
		CHECK (price_cents > 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT UNSIGNED NULL,
		product_id BIGINT UNSIGNED NOT NULL,
		quantity   INT NOT NULL,
		KEY idx_order_items_booking (booking_id),
		CONSTRAINT fk_order_items_booking FOREIGN KEY (booking_id) REFERENCES bookings(id),
		CONSTRAINT fk_order_items_product FOREIGN KEY (product_id) REFERENCES products(id),
		CHECK (quantity > 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS system_logs (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		action     VARCHAR(64) NOT NULL,
		details    TEXT NOT NULL,
		user_id    BIGINT UNSIGNED NULL,
		created_at DATETIME NOT NULL,
		KEY idx_system_logs_created (created_at),
		CONSTRAINT fk_system_logs_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// InitSchema creates any missing tables. It is additive only: existing
// tables are never altered or dropped.
func InitSchema(ctx context.Context, db *sql.DB, driver string) error {
	stmts := sqliteSchema
	if driver == config.DriverMySQL {
		stmts = mysqlSchema
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("exec %.40q: %w", s, err)
		}
	}
	return nil
}
