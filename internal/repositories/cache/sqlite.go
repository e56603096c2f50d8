package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mxcollect/cobradash/internal/dbx"
	"github.com/mxcollect/cobradash/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) get(ctx context.Context, query, key string) (*models.CacheEntry, error) {
	var e models.CacheEntry
	var createdAt int64
	err := r.db.QueryRowContext(ctx, query, key).Scan(&e.Key, &e.Payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache[%s]: %w", key, err)
	}
	e.CreatedAt = time.UnixMilli(createdAt)
	return &e, nil
}

func (r *SQLiteRepository) GetKPI(ctx context.Context, key string) (*models.CacheEntry, error) {
	return r.get(ctx, `SELECT cache_key, json_payload, created_at FROM kpi_cache WHERE cache_key = ?`, key)
}

func (r *SQLiteRepository) PutKPI(ctx context.Context, e *models.CacheEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kpi_cache (cache_key, json_payload, created_at) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET json_payload = excluded.json_payload, created_at = excluded.created_at
	`, e.Key, e.Payload, e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write kpi cache[%s]: %w", e.Key, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteKPI(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kpi_cache WHERE cache_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete kpi cache[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) ClearKPI(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kpi_cache`)
	if err != nil {
		return fmt.Errorf("failed to clear kpi cache: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetChart(ctx context.Context, chartID string) (*models.CacheEntry, error) {
	return r.get(ctx, `SELECT chart_id, json_payload, created_at FROM chart_data_cache WHERE chart_id = ?`, chartID)
}

func (r *SQLiteRepository) PutChart(ctx context.Context, e *models.CacheEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chart_data_cache (chart_id, json_payload, created_at) VALUES (?, ?, ?)
		ON CONFLICT(chart_id) DO UPDATE SET json_payload = excluded.json_payload, created_at = excluded.created_at
	`, e.Key, e.Payload, e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write chart cache[%s]: %w", e.Key, err)
	}
	return nil
}

func (r *SQLiteRepository) ClearChart(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chart_data_cache`)
	if err != nil {
		return fmt.Errorf("failed to clear chart cache: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SweepOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	for _, q := range []string{
		`DELETE FROM kpi_cache WHERE created_at < ?`,
		`DELETE FROM chart_data_cache WHERE created_at < ?`,
	} {
		res, err := r.db.ExecContext(ctx, q, cutoff.UnixMilli())
		if err != nil {
			return total, fmt.Errorf("failed to sweep cache: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("failed to get rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}
