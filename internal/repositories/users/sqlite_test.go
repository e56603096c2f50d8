package users

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mxcollect/cobradash/internal/common"
	"github.com/mxcollect/cobradash/internal/dbx"
	"github.com/mxcollect/cobradash/internal/livequery"
	"github.com/mxcollect/cobradash/internal/logging"
	"github.com/mxcollect/cobradash/internal/models"
	"github.com/mxcollect/cobradash/internal/store"
)

func setupRepo(t *testing.T) (*SQLiteRepository, *sql.DB, *livequery.Bus) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.RunMigrations(context.Background(), db))

	bus := livequery.NewBus()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewSQLiteRepository(db, bus, log), db, bus
}

func testUser(email string) *models.User {
	return &models.User{
		Name:           "Maria Lopez",
		Email:          email,
		PasswordHash:   "$2a$10$hash",
		EmployeeNumber: "12345",
		Title:          "Agente de Cobranza",
		Company:        "Coppel S.A. de C.V.",
		City:           "Culiacán",
	}
}

func TestInsert_AssignsIDAndTimestamps(t *testing.T) {
	r, _, _ := setupRepo(t)
	ctx := context.Background()

	u := testUser("maria@x.com")
	id, err := r.Insert(ctx, u)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "maria@x.com", got.Email)
	assert.False(t, got.IsAdmin)
}

func TestInsert_DuplicateEmailCaseInsensitive(t *testing.T) {
	r, _, _ := setupRepo(t)
	ctx := context.Background()

	_, err := r.Insert(ctx, testUser("a@x.com"))
	require.NoError(t, err)

	_, err = r.Insert(ctx, testUser("A@x.com"))
	require.ErrorIs(t, err, common.ErrEmailTaken)

	// exactly one row made it in, and lookups match case-insensitively
	got, err := r.FindByEmail(ctx, "A@X.COM")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestFindByEmail_NotFound(t *testing.T) {
	r, _, _ := setupRepo(t)
	_, err := r.FindByEmail(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdate_NotFound(t *testing.T) {
	r, _, _ := setupRepo(t)
	u := testUser("ghost@x.com")
	u.ID = 999
	require.ErrorIs(t, r.Update(context.Background(), u), common.ErrNotFound)
}

func TestWithTx_RollbackDiscardsWrites(t *testing.T) {
	r, db, _ := setupRepo(t)
	ctx := context.Background()

	u := testUser("tx@x.com")
	id, err := r.Insert(ctx, u)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := r.WithTx(tx)
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		got.Name = "Renamed Inside Tx"
		require.NoError(t, repo.Update(ctx, got))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Maria Lopez", got.Name, "rolled-back update must not stick")
}

func TestWithTx_CommitPersistsWrites(t *testing.T) {
	r, db, _ := setupRepo(t)
	ctx := context.Background()

	u := testUser("tx2@x.com")
	id, err := r.Insert(ctx, u)
	require.NoError(t, err)

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := r.WithTx(tx)
		got, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		got.Name = "Maria Lopez de la Cruz"
		return repo.Update(ctx, got)
	})
	require.NoError(t, err)

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Maria Lopez de la Cruz", got.Name)
}

func TestObserveByID_ReflectsEdits(t *testing.T) {
	r, _, _ := setupRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	u := testUser("live@x.com")
	id, err := r.Insert(ctx, u)
	require.NoError(t, err)

	ch := r.ObserveByID(ctx, id)
	first := recvUser(t, ch)
	require.NotNil(t, first)
	assert.Equal(t, "Maria Lopez", first.Name)

	u.Name = "Maria Lopez de la Cruz"
	require.NoError(t, r.Update(ctx, u))

	second := recvUser(t, ch)
	require.NotNil(t, second)
	assert.Equal(t, "Maria Lopez de la Cruz", second.Name)
}

func TestObserveByID_AbsentIsNil(t *testing.T) {
	r, _, _ := setupRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := r.ObserveByID(ctx, 42)
	assert.Nil(t, recvUser(t, ch))
}

func recvUser(t *testing.T, ch <-chan *models.User) *models.User {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for user emission")
		return nil
	}
}
