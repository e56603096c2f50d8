package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mxcollect/cobradash/internal/creds"
	"github.com/mxcollect/cobradash/internal/livequery"
	"github.com/mxcollect/cobradash/internal/logging"
	"github.com/mxcollect/cobradash/internal/models"
	"github.com/mxcollect/cobradash/internal/report"
	"github.com/mxcollect/cobradash/internal/repositories/cache"
	"github.com/mxcollect/cobradash/internal/repositories/issues"
	"github.com/mxcollect/cobradash/internal/repositories/session"
	"github.com/mxcollect/cobradash/internal/repositories/settings"
	"github.com/mxcollect/cobradash/internal/repositories/users"
	"github.com/mxcollect/cobradash/internal/store"
)

// env wires real in-memory repositories behind the services under test.
type env struct {
	db       *sql.DB
	bus      *livequery.Bus
	log      logging.Logger
	users    users.Repository
	issues   issues.Repository
	cache    cache.Repository
	sessions session.Repository
	prefs    settings.Repository
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.RunMigrations(context.Background(), db))

	bus := livequery.NewBus()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &env{
		db:       db,
		bus:      bus,
		log:      log,
		users:    users.NewSQLiteRepository(db, bus, log),
		issues:   issues.NewSQLiteRepository(db, bus, log),
		cache:    cache.NewSQLiteRepository(db),
		sessions: session.NewSQLiteRepository(db, bus, log),
		prefs:    settings.NewSQLiteRepository(db, bus, log),
	}
}

func (e *env) sessionService() *SessionService {
	return NewSessionService(e.sessions, e.users, e.log)
}

func (e *env) authService() *AuthService {
	return NewAuthService(e.db, e.users, e.sessionService(), creds.NewBcryptHasher(), e.log)
}

func (e *env) dashboardService(refresh, ttl time.Duration) *DashboardService {
	return NewDashboardService(e.issues, e.cache, e.prefs, report.NewPDFExporter(), e.log, refresh, ttl)
}

func (e *env) addUser(t *testing.T, name, email string, admin bool) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email, PasswordHash: "$2a$10$x", IsAdmin: admin}
	_, err := e.users.Insert(context.Background(), u)
	require.NoError(t, err)
	return u
}

func (e *env) addIssue(t *testing.T, title string, st models.Status, pr models.Priority) *models.Issue {
	t.Helper()
	i := &models.Issue{Title: title, Status: st, Priority: pr}
	_, err := e.issues.Insert(context.Background(), i)
	require.NoError(t, err)
	return i
}

func recvSession(t *testing.T, ch <-chan Session) Session {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session emission")
		return Session{}
	}
}

func recvState(t *testing.T, ch <-chan DashboardState) DashboardState {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dashboard emission")
		return DashboardState{}
	}
}
