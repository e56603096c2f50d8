// Package cache persists computed KPI and chart results in their own tables,
// layered over the canonical entity tables. The repository enforces
// replace-on-write per key; it deliberately does NOT interpret timestamps.
// TTL is a read-time policy owned by the consumer, and stale rows are
// removed by the periodic sweep.
package cache

import (
	"context"
	"time"

	"github.com/mxcollect/cobradash/internal/models"
)

// Repository describes the two cache tables. Absent entries are returned as
// (nil, nil), never as an error: a cache miss is an expected outcome.
//
// Cache writes do not notify the change bus. Cached rows are derived data;
// invalidating live queries on cache writes would recompute the very values
// that were just written.
type Repository interface {
	GetKPI(ctx context.Context, key string) (*models.CacheEntry, error)
	PutKPI(ctx context.Context, e *models.CacheEntry) error
	DeleteKPI(ctx context.Context, key string) error
	ClearKPI(ctx context.Context) error

	GetChart(ctx context.Context, chartID string) (*models.CacheEntry, error)
	PutChart(ctx context.Context, e *models.CacheEntry) error
	ClearChart(ctx context.Context) error

	// SweepOlderThan deletes entries from both tables created before cutoff
	// and reports how many rows were removed.
	SweepOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
