// Package cli is the interactive terminal surface of the dashboard. It wires
// the services together and runs a read-eval-print loop; every command
// handler prints its own outcome so the loop itself stays dumb.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/mxcollect/cobradash/internal/config"
	"github.com/mxcollect/cobradash/internal/creds"
	"github.com/mxcollect/cobradash/internal/logging"
	"github.com/mxcollect/cobradash/internal/models"
	"github.com/mxcollect/cobradash/internal/report"
	"github.com/mxcollect/cobradash/internal/repositories/cache"
	"github.com/mxcollect/cobradash/internal/repositories/issues"
	"github.com/mxcollect/cobradash/internal/repositories/session"
	"github.com/mxcollect/cobradash/internal/repositories/settings"
	"github.com/mxcollect/cobradash/internal/repositories/users"
	"github.com/mxcollect/cobradash/internal/services"
	"github.com/mxcollect/cobradash/internal/store"
)

type App struct {
	config *config.Config
	log    logging.Logger
	store  *store.Store

	prefs     settings.Repository
	sessions  *services.SessionService
	auth      *services.AuthService
	issues    *services.IssueService
	dashboard *services.DashboardService
	sweeper   *services.Sweeper

	reader *bufio.Reader

	mu      sync.Mutex
	current services.Session
}

// consoleNotifier satisfies services.Notifier by printing to the terminal.
type consoleNotifier struct{}

func (consoleNotifier) AssigneeChanged(_ context.Context, i *models.Issue) {
	printlnFn(fmt.Sprintf("[notificación] incidencia #%d asignada a %s", i.ID, *i.AssignedTo))
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	st, err := store.Open(ctx, cfg.DatabasePath, log)
	if err != nil {
		return nil, err
	}

	userRepo := users.NewSQLiteRepository(st.DB, st.Bus, log)
	issueRepo := issues.NewSQLiteRepository(st.DB, st.Bus, log)
	cacheRepo := cache.NewSQLiteRepository(st.DB)
	sessionRepo := session.NewSQLiteRepository(st.DB, st.Bus, log)
	prefRepo := settings.NewSQLiteRepository(st.DB, st.Bus, log)

	exporter := report.NewPDFExporter()
	sessionSvc := services.NewSessionService(sessionRepo, userRepo, log)
	authSvc := services.NewAuthService(st.DB, userRepo, sessionSvc, creds.NewBcryptHasher(), log)
	issueSvc := services.NewIssueService(issueRepo, prefRepo, consoleNotifier{}, exporter, log)
	dashSvc := services.NewDashboardService(issueRepo, cacheRepo, prefRepo, exporter, log, cfg.RefreshInterval, cfg.CacheTTL)
	sweeper := services.NewSweeper(cacheRepo, log, cfg.SweepSchedule, cfg.SweepRetention)

	if err := authSvc.SeedAdmin(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	return &App{
		config:    cfg,
		log:       log,
		store:     st,
		prefs:     prefRepo,
		sessions:  sessionSvc,
		auth:      authSvc,
		issues:    issueSvc,
		dashboard: dashSvc,
		sweeper:   sweeper,
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the background pipelines and blocks in the REPL until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer func() { _ = a.store.Close() }()

	if err := a.sweeper.Start(ctx); err != nil {
		return err
	}
	go a.watchSession(ctx)

	printlnFn("Welcome to cobradash (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
	return nil
}

// watchSession keeps the prompt's session snapshot current, including the
// implicit logout when a logged-in user's record disappears.
func (a *App) watchSession(ctx context.Context) {
	for s := range a.sessions.Observe(ctx) {
		a.mu.Lock()
		prev := a.current
		a.current = s
		a.mu.Unlock()
		if prev.State == services.StateAuthenticated && s.State == services.StateAnonymous {
			printlnFn("Session ended.")
		}
	}
}

func (a *App) snapshot() services.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *App) isLoggedIn() bool {
	return a.snapshot().State == services.StateAuthenticated
}

func (a *App) status() string {
	s := a.snapshot()
	if s.State == services.StateAuthenticated {
		return fmt.Sprintf("(%s)", s.User.Email)
	}
	return ""
}
