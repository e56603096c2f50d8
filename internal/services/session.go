// Package services implements the application use cases on top of the
// repositories: session tracking, authentication, dashboard derivation and
// issue management.
package services

import (
	"context"
	"errors"

	"github.com/mxcollect/cobradash/internal/common"
	"github.com/mxcollect/cobradash/internal/livequery"
	"github.com/mxcollect/cobradash/internal/logging"
	"github.com/mxcollect/cobradash/internal/models"
	"github.com/mxcollect/cobradash/internal/repositories/session"
	"github.com/mxcollect/cobradash/internal/repositories/users"
)

// SessionState is the authentication state of the application.
type SessionState int

const (
	// StateInitializing is held only until the first persisted session
	// value has been read at cold start.
	StateInitializing SessionState = iota
	StateAnonymous
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Session is one snapshot of "who is logged in right now". User is non-nil
// exactly when State is StateAuthenticated.
type Session struct {
	State SessionState
	User  *models.User
}

// SessionService reconciles the persisted session slot with the live users
// table into a single reactive session signal.
type SessionService struct {
	sessions session.Repository
	users    users.Repository
	log      logging.Logger
}

func NewSessionService(sessions session.Repository, users users.Repository, log logging.Logger) *SessionService {
	return &SessionService{sessions: sessions, users: users, log: log}
}

// Observe emits StateInitializing immediately, then tracks the persisted
// user id. Each id change switches the inner live user lookup atomically:
// the previous lookup is cancelled before the new one is consumed, so an
// emission can never pair the new id with the previous user's record.
//
// A stored id that no longer resolves to a user row is treated as an
// implicit logout and surfaces as StateAnonymous.
func (s *SessionService) Observe(ctx context.Context) <-chan Session {
	inner := livequery.SwitchLatest(ctx, s.sessions.ObserveUserID(ctx),
		func(ictx context.Context, id *int64) <-chan Session {
			if id == nil {
				return livequery.Just(ictx, Session{State: StateAnonymous})
			}
			uid := *id
			return livequery.Map(ictx, s.users.ObserveByID(ictx, uid), func(u *models.User) Session {
				if u == nil {
					s.log.Warn(ictx, "session references missing user, treating as logged out", "user_id", uid)
					return Session{State: StateAnonymous}
				}
				return Session{State: StateAuthenticated, User: u}
			})
		})

	out := make(chan Session)
	go func() {
		defer close(out)
		select {
		case out <- Session{State: StateInitializing}:
		case <-ctx.Done():
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-inner:
				if !ok {
					return
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// RecordLogin persists the user id after a successful login or registration.
// Observers pick up the live user record for that id, not the object the
// caller authenticated with, so later profile edits show up without re-login.
func (s *SessionService) RecordLogin(ctx context.Context, userID int64) error {
	return s.sessions.Save(ctx, userID)
}

// Logout clears the persisted session. Preferences are untouched.
func (s *SessionService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// CurrentUser resolves the session one-shot, for transactional decisions
// that do not need a live subscription. Returns common.ErrNoSession when
// nobody is logged in or the stored id is orphaned.
func (s *SessionService) CurrentUser(ctx context.Context) (*models.User, error) {
	id, err := s.sessions.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, common.ErrNoSession
	}
	u, err := s.users.GetByID(ctx, *id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
