package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/narumiruna/powerflow/internal/collector"
	"github.com/narumiruna/powerflow/internal/errors"
	"github.com/narumiruna/powerflow/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

// Repository persists power readings and answers history queries.
type Repository interface {
	Insert(ctx context.Context, reading *collector.PowerReading) (int64, error)
	History(ctx context.Context, limit int) ([]collector.PowerReading, error)
	Statistics(ctx context.Context, limit int) (*Statistics, error)
	Cleanup(ctx context.Context, days int) (int64, error)
	Clear(ctx context.Context) (int64, error)
	HealthTrend(ctx context.Context, days int) ([]HealthPoint, error)
	Close() error
}

// Statistics summarizes recent readings.
type Statistics struct {
	Count      int
	AvgWatts   float64
	MinWatts   float64
	MaxWatts   float64
	AvgBattery float64
	Earliest   string
	Latest     string
}

// HealthPoint is one day's average battery capacity.
type HealthPoint struct {
	Date           string
	AvgMaxCapacity float64
	Count          int
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().Str("path", cfg.DBPath).Msg("Initializing readings repository")

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) Insert(ctx context.Context, reading *collector.PowerReading) (int64, error) {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, insertReadingSQL,
		reading.Timestamp.UTC().Format(time.RFC3339Nano),
		reading.WattsActual,
		reading.WattsNegotiated,
		reading.Voltage,
		reading.Amperage,
		reading.CurrentCapacity,
		reading.MaxCapacity,
		reading.BatteryPercent,
		boolToInt(reading.IsCharging),
		boolToInt(reading.ExternalConnected),
		nullIfEmpty(reading.ChargerName),
		nullIfEmpty(reading.ChargerManufacturer),
	)
	if err != nil {
		return 0, errFactory.Wrap(ErrStorageAccess, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errFactory.Wrap(ErrStorageAccess, err)
	}

	return id, nil
}

// History returns the most recent readings, newest first. A limit of
// zero or less returns everything.
func (r *sqliteRepository) History(ctx context.Context, limit int) ([]collector.PowerReading, error) {
	errFactory := errors.New()

	rows, err := r.db.QueryContext(ctx, `
        SELECT timestamp,
               watts_actual, watts_negotiated,
               voltage, amperage,
               current_capacity, max_capacity, battery_percent,
               is_charging, external_connected,
               charger_name, charger_manufacturer
        FROM power_readings
        ORDER BY timestamp DESC
        LIMIT ?
    `, sqlLimit(limit))
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var readings []collector.PowerReading
	for rows.Next() {
		var (
			reading      collector.PowerReading
			timestamp    string
			isCharging   int
			external     int
			name         sql.NullString
			manufacturer sql.NullString
		)

		if err := rows.Scan(
			&timestamp,
			&reading.WattsActual, &reading.WattsNegotiated,
			&reading.Voltage, &reading.Amperage,
			&reading.CurrentCapacity, &reading.MaxCapacity, &reading.BatteryPercent,
			&isCharging, &external,
			&name, &manufacturer,
		); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}

		if ts, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
			reading.Timestamp = ts
		}
		reading.IsCharging = isCharging != 0
		reading.ExternalConnected = external != 0
		reading.ChargerName = name.String
		reading.ChargerManufacturer = manufacturer.String

		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return readings, nil
}

// Statistics summarizes the most recent readings. A limit of zero or
// less includes everything.
func (r *sqliteRepository) Statistics(ctx context.Context, limit int) (*Statistics, error) {
	errFactory := errors.New()

	stats := &Statistics{}
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(AVG(watts_actual), 0),
               COALESCE(MIN(watts_actual), 0),
               COALESCE(MAX(watts_actual), 0),
               COALESCE(AVG(battery_percent), 0),
               COALESCE(MIN(timestamp), ''),
               COALESCE(MAX(timestamp), '')
        FROM (
            SELECT watts_actual, battery_percent, timestamp
            FROM power_readings
            ORDER BY timestamp DESC
            LIMIT ?
        )
    `, sqlLimit(limit)).Scan(
		&stats.Count,
		&stats.AvgWatts, &stats.MinWatts, &stats.MaxWatts,
		&stats.AvgBattery,
		&stats.Earliest, &stats.Latest,
	)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return stats, nil
}

// Cleanup deletes readings older than the given number of days.
func (r *sqliteRepository) Cleanup(ctx context.Context, days int) (int64, error) {
	errFactory := errors.New()

	if days <= 0 {
		return 0, errFactory.WithData(ErrInvalidRange, days)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339Nano)

	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM power_readings WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, errFactory.Wrap(ErrStorageAccess, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, errFactory.Wrap(ErrStorageAccess, err)
	}

	return deleted, nil
}

// Clear deletes all readings.
func (r *sqliteRepository) Clear(ctx context.Context) (int64, error) {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM power_readings`)
	if err != nil {
		return 0, errFactory.Wrap(ErrStorageAccess, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, errFactory.Wrap(ErrStorageAccess, err)
	}

	return deleted, nil
}

// HealthTrend returns the daily average of max_capacity over the given
// period, oldest day first.
func (r *sqliteRepository) HealthTrend(ctx context.Context, days int) ([]HealthPoint, error) {
	errFactory := errors.New()

	if days <= 0 {
		return nil, errFactory.WithData(ErrInvalidRange, days)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339Nano)

	rows, err := r.db.QueryContext(ctx, `
        SELECT DATE(timestamp), AVG(max_capacity), COUNT(*)
        FROM power_readings
        WHERE timestamp >= ?
        GROUP BY DATE(timestamp)
        ORDER BY DATE(timestamp) ASC
    `, cutoff)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var trend []HealthPoint
	for rows.Next() {
		var point HealthPoint
		if err := rows.Scan(&point.Date, &point.AvgMaxCapacity, &point.Count); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		trend = append(trend, point)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return trend, nil
}

func (r *sqliteRepository) Close() error {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Checkpoint WAL and cleanup on close
	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	return nil
}

// sqlLimit maps "no limit" to the negative value SQLite treats as
// unbounded.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
