package models

import "time"

// Priority is the urgency level of an issue.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Status is the lifecycle state of an issue.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
	StatusBlocked    Status = "blocked"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusClosed, StatusBlocked:
		return true
	}
	return false
}

// Issue is a tracked incident record.
type Issue struct {
	// ID is the auto-generated primary key.
	ID int64

	// Title is a short summary.
	Title string

	// Description holds the full details.
	Description string

	Priority Priority
	Status   Status

	// AssignedTo is the display name of the assignee, nil when unassigned.
	// It is a plain name reference, not a foreign key.
	AssignedTo *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// IsSynced is reserved for a future remote-sync feature and is never
	// set locally.
	IsSynced bool
}
