package store

import (
	"database/sql"

	"github.com/narumiruna/powerflow/internal/errors"
	"github.com/narumiruna/powerflow/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS power_readings (
	       id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	       timestamp            TEXT NOT NULL,
	       watts_actual         REAL NOT NULL,
	       watts_negotiated     INTEGER NOT NULL,
	       voltage              REAL NOT NULL,
	       amperage             REAL NOT NULL,
	       current_capacity     INTEGER NOT NULL,
	       max_capacity         INTEGER NOT NULL,
	       battery_percent      INTEGER NOT NULL,
	       is_charging          INTEGER NOT NULL CHECK (is_charging IN (0, 1)),
	       external_connected   INTEGER NOT NULL CHECK (external_connected IN (0, 1)),
	       charger_name         TEXT,
	       charger_manufacturer TEXT
	   );
	   CREATE INDEX IF NOT EXISTS idx_timestamp ON power_readings(timestamp DESC);`

	insertReadingSQL = `
    INSERT INTO power_readings (
        timestamp,
        watts_actual, watts_negotiated,
        voltage, amperage,
        current_capacity, max_capacity, battery_percent,
        is_charging, external_connected,
        charger_name, charger_manufacturer
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// initSchema creates the readings table and records the schema version
func initSchema(db *sql.DB) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				logger.Debug().Err(err).Msg("Failed to rollback transaction")
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	if _, err := tx.Exec(`
        INSERT OR IGNORE INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	return nil
}

// GetSchemaVersion returns the current schema version, 0 if the
// database is fresh.
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	var version int
	err := db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	return version, nil
}
