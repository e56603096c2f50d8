// Package models defines the domain entities persisted in the local database.
package models

import "time"

// User is an account that can log into the dashboard. Email is unique
// case-insensitively; uniqueness is enforced by the store, not here.
type User struct {
	// ID is the auto-generated primary key.
	ID int64

	// Name is the user's display name.
	Name string

	// Email identifies the user at login. Stored once, compared
	// case-insensitively.
	Email string

	// PasswordHash is the hashed credential secret. The hashing scheme is
	// owned by the creds package; this layer never sees plaintext.
	PasswordHash string

	// IsAdmin grants issue-management capabilities.
	IsAdmin bool

	// EmployeeNumber is the company-issued employee identifier.
	EmployeeNumber string

	// Title is the user's job title.
	Title string

	// Company the user belongs to.
	Company string

	// City where the user is based.
	City string

	// CreatedAt is when the record was inserted.
	CreatedAt time.Time

	// UpdatedAt is when the record was last modified.
	UpdatedAt time.Time
}
