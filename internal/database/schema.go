package database

import (
	"context"
	"database/sql"
	"fmt"
)

// The bookings table carries the uniqueness constraint that makes the ledger
// the single authority on seat ownership.  shows is owned by catalog tooling;
// it is created here only so a fresh database is usable.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS shows (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title       VARCHAR(255)    NOT NULL,
		starts_at   DATETIME        NOT NULL,
		total_seats INT UNSIGNED    NOT NULL,
		created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT chk_shows_total_seats CHECK (total_seats > 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id          CHAR(36)        NOT NULL PRIMARY KEY,
		show_id     BIGINT UNSIGNED NOT NULL,
		seat_label  VARCHAR(16)     NOT NULL,
		claimant_id VARCHAR(128)    NOT NULL,
		created_at  DATETIME        NOT NULL,
		UNIQUE KEY uq_bookings_show_seat (show_id, seat_label),
		CONSTRAINT fk_bookings_show FOREIGN KEY (show_id) REFERENCES shows(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS shows (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT        NOT NULL,
		starts_at   TIMESTAMPTZ NOT NULL,
		total_seats INT         NOT NULL CHECK (total_seats > 0),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id          UUID        PRIMARY KEY,
		show_id     BIGINT      NOT NULL REFERENCES shows(id),
		seat_label  TEXT        NOT NULL,
		claimant_id TEXT        NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		CONSTRAINT uq_bookings_show_seat UNIQUE (show_id, seat_label)
	)`,
}

// EnsureSchema creates the shows and bookings tables when they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	stmts := mysqlSchema
	if driver == "postgres" {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
