// Package session persists the single "logged-in user id" slot in its own
// durable namespace, independent of user rows and preferences: clearing
// preferences never clears the session and vice versa.
package session

import "context"

// Table is the change-bus key for the session slot.
const Table = "session"

// Repository is the persisted session slot.
//
// The slot holds at most one user id. Clear removes the slot entirely
// rather than writing a zero value, so a stored id of 0 or 1 (a valid,
// possibly seeded account) can never be confused with "logged out".
type Repository interface {
	// UserID returns the stored id, or nil when no session exists.
	UserID(ctx context.Context) (*int64, error)

	// ObserveUserID emits the stored id (nil when absent) and re-emits on
	// every session change, until ctx is cancelled.
	ObserveUserID(ctx context.Context) <-chan *int64

	// Save stores the id. Saving the same id again is a no-op for readers
	// but still idempotent and safe.
	Save(ctx context.Context, userID int64) error

	// Clear removes the slot.
	Clear(ctx context.Context) error
}
