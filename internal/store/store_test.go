package store

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mxcollect/cobradash/internal/logging"
	"github.com/mxcollect/cobradash/internal/store/migrations"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func openRaw(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestRunMigrations_FreshDatabase(t *testing.T) {
	db := openRaw(t)
	require.NoError(t, RunMigrations(context.Background(), db))

	for _, tbl := range []string{"users", "issues", "kpi_cache", "chart_data_cache", "session", "settings"} {
		assert.True(t, tableExists(t, db, tbl), "missing table %s", tbl)
	}
	assert.False(t, tableExists(t, db, "incidents"), "legacy table must be renamed")
}

func TestMigration_PreservesLegacyRows(t *testing.T) {
	ctx := context.Background()
	db := openRaw(t)

	// Bring the schema to v1 only and seed a legacy row.
	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpToContext(ctx, db, ".", 1))

	_, err := db.Exec(`INSERT INTO incidents (id, title, description, priority, status, created_at)
		VALUES (1, 'X', 'legacy row', 'high', 'new', 1000)`)
	require.NoError(t, err)

	// Migrate the rest of the way.
	require.NoError(t, RunMigrations(ctx, db))

	var title string
	var assignedTo sql.NullString
	var isSynced int
	err = db.QueryRow(`SELECT title, assigned_to, is_synced FROM issues WHERE id = 1`).
		Scan(&title, &assignedTo, &isSynced)
	require.NoError(t, err)
	assert.Equal(t, "X", title)
	assert.False(t, assignedTo.Valid, "assigned_to must default to NULL")
	assert.Equal(t, 0, isSynced)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kpi_cache`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM chart_data_cache`).Scan(&n))
	assert.Zero(t, n)
}

func TestRunMigrations_Rerun(t *testing.T) {
	ctx := context.Background()
	db := openRaw(t)
	require.NoError(t, RunMigrations(ctx, db))

	_, err := db.Exec(`INSERT INTO issues (title, description, priority, status, created_at)
		VALUES ('once', 'd', 'low', 'new', 1)`)
	require.NoError(t, err)

	// A second run must be a guarded no-op: no error, no row changes.
	require.NoError(t, RunMigrations(ctx, db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM issues`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen_UnusableDSN(t *testing.T) {
	_, err := Open(context.Background(), "file:/nonexistent-dir/sub/db.sqlite?mode=ro", testLogger())
	require.Error(t, err)
}
