package database

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the gateway's local tables when they do not
// exist.  The gateway owns this database outright, so idempotent DDL at
// startup replaces a migration tool.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_events (
			id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			station     VARCHAR(64)  NOT NULL,
			operator    VARCHAR(64)  NOT NULL DEFAULT '',
			payload     VARCHAR(512) NOT NULL,
			schedule_id BIGINT UNSIGNED NULL,
			status      VARCHAR(16)  NOT NULL,
			message     VARCHAR(512) NOT NULL DEFAULT '',
			created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_scan_events_station (station, id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS stations (
			id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name       VARCHAR(64)  NOT NULL,
			key_hash   VARCHAR(128) NOT NULL,
			is_active  TINYINT(1)   NOT NULL DEFAULT 1,
			created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_stations_name (name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
