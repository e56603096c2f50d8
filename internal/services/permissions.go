package services

import "github.com/mxcollect/cobradash/internal/models"

// CanManageIssues reports whether the actor may create, edit or delete
// issues. Centralized here so callers gate once at command dispatch instead
// of checking the admin flag ad hoc.
func CanManageIssues(u *models.User) bool {
	return u != nil && u.IsAdmin
}
