package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/mxcollect/cobradash/internal/dbx"
	"github.com/mxcollect/cobradash/internal/livequery"
	"github.com/mxcollect/cobradash/internal/logging"
)

const userIDKey = "user_id"

type SQLiteRepository struct {
	db  dbx.DBTX
	bus *livequery.Bus
	log logging.Logger
}

func NewSQLiteRepository(db dbx.DBTX, bus *livequery.Bus, log logging.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, bus: bus, log: log}
}

func (r *SQLiteRepository) UserID(ctx context.Context) (*int64, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, userIDKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session value %q: %w", value, err)
	}
	return &id, nil
}

func (r *SQLiteRepository) ObserveUserID(ctx context.Context) <-chan *int64 {
	return livequery.Observe(ctx, r.bus, r.log, []string{Table}, r.UserID)
}

func (r *SQLiteRepository) Save(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, userIDKey, strconv.FormatInt(userID, 10))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	r.bus.Notify(Table)
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session WHERE key = ?`, userIDKey)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	r.bus.Notify(Table)
	return nil
}
