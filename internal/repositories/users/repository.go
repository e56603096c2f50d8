package users

import (
	"context"

	"github.com/mxcollect/cobradash/internal/dbx"
	"github.com/mxcollect/cobradash/internal/models"
)

// Table is the change-bus key for the users table.
const Table = "users"

// Repository describes persistence operations for User records.
//
// Read paths that back persistent UI state (a profile screen, the current
// session) are live; read paths that back a single transactional decision
// (login, duplicate checks) are one-shot.
type Repository interface {
	// Insert stores a new user and returns its generated id. A duplicate
	// email (case-insensitive) fails with common.ErrEmailTaken.
	Insert(ctx context.Context, u *models.User) (int64, error)

	// Update replaces an existing record by id. Returns common.ErrNotFound
	// if no such user exists.
	Update(ctx context.Context, u *models.User) error

	// FindByEmail is a one-shot lookup used by login and duplicate checks.
	// Returns common.ErrNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID is a one-shot lookup. Returns common.ErrNotFound when absent.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// ObserveByID is the live variant of GetByID: it emits the current
	// record (nil when absent) and again after every change to the users
	// table, until ctx is cancelled.
	ObserveByID(ctx context.Context, id int64) <-chan *models.User

	// ObserveAll emits all users ordered by name, live.
	ObserveAll(ctx context.Context) <-chan []models.User

	// WithTx returns a view of the repository bound to the given
	// transaction handle, so multi-step read-modify-write flows commit
	// or roll back as a unit.
	WithTx(tx dbx.DBTX) Repository
}
