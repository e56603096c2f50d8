package issues

import (
	"context"

	"github.com/mxcollect/cobradash/internal/models"
)

// Table is the change-bus key for the issues table.
const Table = "issues"

// Repository describes persistence operations for Issue records.
type Repository interface {
	// Insert stores a new issue and returns its generated id.
	Insert(ctx context.Context, i *models.Issue) (int64, error)

	// Update replaces an existing record by id. Returns common.ErrNotFound
	// if no such issue exists.
	Update(ctx context.Context, i *models.Issue) error

	// Delete removes an issue. Returns common.ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error

	// GetByID is a one-shot lookup. Returns common.ErrNotFound when absent.
	GetByID(ctx context.Context, id int64) (*models.Issue, error)

	// GetAll is a one-shot snapshot, newest first. Used by batch consumers
	// (KPI derivation, report export) that need exactly one read.
	GetAll(ctx context.Context) ([]models.Issue, error)

	// ObserveAll emits the full list, newest first, live.
	ObserveAll(ctx context.Context) <-chan []models.Issue

	// ObserveByID emits the record (nil when absent) live, so a detail
	// view reflects concurrent edits without refresh.
	ObserveByID(ctx context.Context, id int64) <-chan *models.Issue
}
