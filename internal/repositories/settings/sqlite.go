package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mxcollect/cobradash/internal/dbx"
	"github.com/mxcollect/cobradash/internal/livequery"
	"github.com/mxcollect/cobradash/internal/logging"
)

const (
	darkModeKey      = "is_dark_mode"
	notificationsKey = "notifications_enabled"
	kpiKeysKey       = "custom_kpi_keys"
)

type SQLiteRepository struct {
	db  dbx.DBTX
	bus *livequery.Bus
	log logging.Logger
}

func NewSQLiteRepository(db dbx.DBTX, bus *livequery.Bus, log logging.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, bus: bus, log: log}
}

// get returns ("", false, nil) when the key has never been written.
func (r *SQLiteRepository) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting[%s]: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting[%s]: %w", key, err)
	}
	r.bus.Notify(Table)
	return nil
}

func (r *SQLiteRepository) getBool(ctx context.Context, key string, def bool) (bool, error) {
	v, ok, err := r.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return v == "1", nil
}

func (r *SQLiteRepository) DarkMode(ctx context.Context) (bool, error) {
	return r.getBool(ctx, darkModeKey, false)
}

func (r *SQLiteRepository) NotificationsEnabled(ctx context.Context) (bool, error) {
	return r.getBool(ctx, notificationsKey, true)
}

func (r *SQLiteRepository) KPIKeys(ctx context.Context) ([]string, error) {
	v, ok, err := r.get(ctx, kpiKeysKey)
	if err != nil || !ok {
		return nil, err
	}
	var keys []string
	if err := json.Unmarshal([]byte(v), &keys); err != nil {
		return nil, fmt.Errorf("corrupt kpi key selection: %w", err)
	}
	return keys, nil
}

func (r *SQLiteRepository) ObserveDarkMode(ctx context.Context) <-chan bool {
	return livequery.Observe(ctx, r.bus, r.log, []string{Table}, r.DarkMode)
}

func (r *SQLiteRepository) ObserveNotificationsEnabled(ctx context.Context) <-chan bool {
	return livequery.Observe(ctx, r.bus, r.log, []string{Table}, r.NotificationsEnabled)
}

func (r *SQLiteRepository) ObserveKPIKeys(ctx context.Context) <-chan []string {
	return livequery.Observe(ctx, r.bus, r.log, []string{Table}, r.KPIKeys)
}

func (r *SQLiteRepository) SetDarkMode(ctx context.Context, on bool) error {
	return r.set(ctx, darkModeKey, boolValue(on))
}

func (r *SQLiteRepository) SetNotificationsEnabled(ctx context.Context, on bool) error {
	return r.set(ctx, notificationsKey, boolValue(on))
}

func (r *SQLiteRepository) SetKPIKeys(ctx context.Context, keys []string) error {
	b, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("failed to encode kpi key selection: %w", err)
	}
	return r.set(ctx, kpiKeysKey, string(b))
}

func boolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
