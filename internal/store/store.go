// Package store owns the durable SQLite database: opening, schema
// migrations, and the change bus every live query hangs off.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/mxcollect/cobradash/internal/livequery"
	"github.com/mxcollect/cobradash/internal/logging"
	"github.com/mxcollect/cobradash/internal/store/migrations"
)

// Store bundles the database handle with the change-notification bus.
// It is constructed once at startup and handed to every repository;
// the database is the single owner of all persisted rows.
type Store struct {
	DB  *sql.DB
	Bus *livequery.Bus
}

// Open opens (or creates) the database at dsn and brings the schema up to
// the latest version. A migration failure is fatal to startup by contract,
// so errors here should abort the process.
func Open(ctx context.Context, dsn string, log logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc's driver serializes writes per connection; a single
	// connection avoids SQLITE_BUSY between concurrent live queries
	// and writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	log.Info(ctx, "database ready", "dsn", dsn)
	return &Store{DB: db, Bus: livequery.NewBus()}, nil
}

// RunMigrations applies all pending goose migrations from the embedded FS.
// goose records applied versions in its own table, so re-running is a no-op
// and intermediate/unknown versions fail instead of being guessed at.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func (s *Store) Close() error {
	return s.DB.Close()
}
