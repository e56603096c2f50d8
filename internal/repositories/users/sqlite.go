package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mxcollect/cobradash/internal/common"
	"github.com/mxcollect/cobradash/internal/dbx"
	"github.com/mxcollect/cobradash/internal/livequery"
	"github.com/mxcollect/cobradash/internal/logging"
	"github.com/mxcollect/cobradash/internal/models"
)

// SQLiteRepository implements Repository on the local SQLite database.
// Every write notifies the change bus so live queries refetch.
type SQLiteRepository struct {
	db  dbx.DBTX
	bus *livequery.Bus
	log logging.Logger
}

func NewSQLiteRepository(db dbx.DBTX, bus *livequery.Bus, log logging.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, bus: bus, log: log}
}

// WithTx binds the repository to a transaction handle. The bus and logger
// are shared, so a commit still notifies live queries.
func (r *SQLiteRepository) WithTx(tx dbx.DBTX) Repository {
	return &SQLiteRepository{db: tx, bus: r.bus, log: r.log}
}

const userColumns = `id, name, email, password_hash, is_admin, employee_number, title, company, city, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var isAdmin int
	var createdAt, updatedAt int64
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &isAdmin,
		&u.EmployeeNumber, &u.Title, &u.Company, &u.City, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	u.IsAdmin = isAdmin != 0
	u.CreatedAt = time.UnixMilli(createdAt)
	u.UpdatedAt = time.UnixMilli(updatedAt)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// Insert stores a new user. The unique email index (COLLATE NOCASE) makes a
// case-insensitive duplicate fail distinguishably as common.ErrEmailTaken.
func (r *SQLiteRepository) Insert(ctx context.Context, u *models.User) (int64, error) {
	now := time.Now()
	query := `INSERT INTO users (name, email, password_hash, is_admin, employee_number, title, company, city, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		u.Name, u.Email, u.PasswordHash, boolToInt(u.IsAdmin),
		u.EmployeeNumber, u.Title, u.Company, u.City,
		now.UnixMilli(), now.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, common.ErrEmailTaken
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted user id: %w", err)
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	r.bus.Notify(Table)
	return id, nil
}

// Update replaces all mutable columns of the record identified by u.ID.
func (r *SQLiteRepository) Update(ctx context.Context, u *models.User) error {
	now := time.Now()
	query := `UPDATE users SET name=?, email=?, password_hash=?, is_admin=?, employee_number=?, title=?, company=?, city=?, updated_at=?
		WHERE id=?`
	res, err := r.db.ExecContext(ctx, query,
		u.Name, u.Email, u.PasswordHash, boolToInt(u.IsAdmin),
		u.EmployeeNumber, u.Title, u.Company, u.City,
		now.UnixMilli(), u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	u.UpdatedAt = now
	r.bus.Notify(Table)
	return nil
}

func (r *SQLiteRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// ObserveByID emits nil (not an error) when the row is absent so consumers
// can represent "user deleted while observed" as a state.
func (r *SQLiteRepository) ObserveByID(ctx context.Context, id int64) <-chan *models.User {
	return livequery.Observe(ctx, r.bus, r.log, []string{Table},
		func(ctx context.Context) (*models.User, error) {
			u, err := r.GetByID(ctx, id)
			if errors.Is(err, common.ErrNotFound) {
				return nil, nil
			}
			return u, err
		})
}

func (r *SQLiteRepository) ObserveAll(ctx context.Context) <-chan []models.User {
	return livequery.Observe(ctx, r.bus, r.log, []string{Table},
		func(ctx context.Context) ([]models.User, error) {
			rows, err := r.db.QueryContext(ctx,
				`SELECT `+userColumns+` FROM users ORDER BY name ASC`)
			if err != nil {
				return nil, fmt.Errorf("failed to select users: %w", err)
			}
			defer rows.Close()

			var result []models.User
			for rows.Next() {
				u, err := scanUser(rows)
				if err != nil {
					return nil, err
				}
				result = append(result, *u)
			}
			return result, rows.Err()
		})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
