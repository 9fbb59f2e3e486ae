package auth

import "abacus_backend/internal/models"

// Actor identifies the authenticated user for a single operation. Services
// take it as an explicit argument; nothing reads the current user from
// ambient state.
type Actor struct {
	UserID string
	Role   models.UserRole
}

// Capabilities are enumerated per action. The seven roles do not form a
// privilege ladder, so no predicate is derived from an ordering.

// IsAdmin reports whether the actor sees every brand and task without the
// membership row filter.
func (a Actor) IsAdmin() bool {
	return a.Role == models.UserRoleSuperAdmin || a.Role == models.UserRoleAdmin
}

// CanManageBrands covers brand create/update/delete and membership edits.
func (a Actor) CanManageBrands() bool {
	return a.IsAdmin()
}

// CanManageCalendars covers calendar create/update, scope edits and task
// generation.
func (a Actor) CanManageCalendars() bool {
	return a.IsAdmin() || a.Role == models.UserRoleAccountManager
}

// CanDeleteCalendars is tighter than CanManageCalendars: account managers
// plan content but cannot drop a month wholesale.
func (a Actor) CanDeleteCalendars() bool {
	return a.IsAdmin()
}

// CanListUsers covers the user directory.
func (a Actor) CanListUsers() bool {
	return a.IsAdmin()
}

// CanManageUsers covers profile-level edits of other users.
func (a Actor) CanManageUsers() bool {
	return a.IsAdmin()
}

// CanCreateUsers: only the super admin creates accounts with an arbitrary
// role.
func (a Actor) CanCreateUsers() bool {
	return a.Role == models.UserRoleSuperAdmin
}

// CanChangeRole: sole capability of the super admin; an ADMIN asking is
// denied like everyone else.
func (a Actor) CanChangeRole() bool {
	return a.Role == models.UserRoleSuperAdmin
}

// CanDeleteUsers: hard deletes are super-admin only. Self-deletion is
// rejected separately regardless of role.
func (a Actor) CanDeleteUsers() bool {
	return a.Role == models.UserRoleSuperAdmin
}

// CanViewActivity gates the audit trail read API.
func (a Actor) CanViewActivity() bool {
	return a.IsAdmin()
}
