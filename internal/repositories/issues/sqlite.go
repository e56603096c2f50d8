package issues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mxcollect/cobradash/internal/common"
	"github.com/mxcollect/cobradash/internal/dbx"
	"github.com/mxcollect/cobradash/internal/livequery"
	"github.com/mxcollect/cobradash/internal/logging"
	"github.com/mxcollect/cobradash/internal/models"
)

// SQLiteRepository implements Repository on the local SQLite database.
type SQLiteRepository struct {
	db  dbx.DBTX
	bus *livequery.Bus
	log logging.Logger
}

func NewSQLiteRepository(db dbx.DBTX, bus *livequery.Bus, log logging.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, bus: bus, log: log}
}

const issueColumns = `id, title, description, priority, status, assigned_to, created_at, updated_at, is_synced`

func scanIssue(row interface{ Scan(...any) error }) (*models.Issue, error) {
	var i models.Issue
	var assignedTo sql.NullString
	var createdAt, updatedAt int64
	var isSynced int
	err := row.Scan(&i.ID, &i.Title, &i.Description, &i.Priority, &i.Status,
		&assignedTo, &createdAt, &updatedAt, &isSynced)
	if err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		i.AssignedTo = &assignedTo.String
	}
	i.CreatedAt = time.UnixMilli(createdAt)
	i.UpdatedAt = time.UnixMilli(updatedAt)
	i.IsSynced = isSynced != 0
	return &i, nil
}

func assignedToArg(i *models.Issue) any {
	if i.AssignedTo == nil {
		return nil
	}
	return *i.AssignedTo
}

func (r *SQLiteRepository) Insert(ctx context.Context, i *models.Issue) (int64, error) {
	now := time.Now()
	query := `INSERT INTO issues (title, description, priority, status, assigned_to, created_at, updated_at, is_synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`
	res, err := r.db.ExecContext(ctx, query,
		i.Title, i.Description, string(i.Priority), string(i.Status),
		assignedToArg(i), now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to insert issue: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted issue id: %w", err)
	}
	i.ID = id
	i.CreatedAt = now
	i.UpdatedAt = now
	r.bus.Notify(Table)
	return id, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, i *models.Issue) error {
	now := time.Now()
	query := `UPDATE issues SET title=?, description=?, priority=?, status=?, assigned_to=?, updated_at=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, query,
		i.Title, i.Description, string(i.Priority), string(i.Status),
		assignedToArg(i), now.UnixMilli(), i.ID)
	if err != nil {
		return fmt.Errorf("failed to update issue: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	i.UpdatedAt = now
	r.bus.Notify(Table)
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	r.bus.Notify(Table)
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Issue, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE id = ? LIMIT 1`, id)
	i, err := scanIssue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get issue by id: %w", err)
	}
	return i, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Issue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+issueColumns+` FROM issues ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select issues: %w", err)
	}
	defer rows.Close()

	var result []models.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *i)
	}
	return result, rows.Err()
}

func (r *SQLiteRepository) ObserveAll(ctx context.Context) <-chan []models.Issue {
	return livequery.Observe(ctx, r.bus, r.log, []string{Table}, r.GetAll)
}

func (r *SQLiteRepository) ObserveByID(ctx context.Context, id int64) <-chan *models.Issue {
	return livequery.Observe(ctx, r.bus, r.log, []string{Table},
		func(ctx context.Context) (*models.Issue, error) {
			i, err := r.GetByID(ctx, id)
			if errors.Is(err, common.ErrNotFound) {
				return nil, nil
			}
			return i, err
		})
}
