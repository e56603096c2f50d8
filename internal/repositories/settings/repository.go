// Package settings persists user-chosen preferences (theme, notification
// toggle, selected KPI keys) in their own durable namespace, separate from
// the session slot.
package settings

import "context"

// Table is the change-bus key for the settings namespace.
const Table = "settings"

// Repository reads and writes the persisted preferences. Absent values fall
// back to defaults: dark mode off, notifications on, empty KPI selection
// (which downstream means "show all", not "show none").
type Repository interface {
	DarkMode(ctx context.Context) (bool, error)
	NotificationsEnabled(ctx context.Context) (bool, error)
	KPIKeys(ctx context.Context) ([]string, error)

	ObserveDarkMode(ctx context.Context) <-chan bool
	ObserveNotificationsEnabled(ctx context.Context) <-chan bool
	ObserveKPIKeys(ctx context.Context) <-chan []string

	SetDarkMode(ctx context.Context, on bool) error
	SetNotificationsEnabled(ctx context.Context, on bool) error
	SetKPIKeys(ctx context.Context, keys []string) error
}
