// Package models - user.go defines the User account model and the closed Role
// enumeration that drives every authorization decision in internal/authz.
package models

import "time"

// Role is the closed set of user roles. It is deliberately a tagged string
// type rather than free text: the authorization policy switches exhaustively
// over these values and denies anything outside the set.
type Role string

const (
	// RoleOwner has unrestricted visibility and may mutate any task.
	RoleOwner Role = "OWNER"
	// RoleAdmin may create tasks and mutate tasks they personally own;
	// their visibility is scoped to their organization.
	RoleAdmin Role = "ADMIN"
	// RoleViewer has organization-scoped read access and no write access.
	RoleViewer Role = "VIEWER"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleViewer:
		return true
	}
	return false
}

// User represents an account in the system. OrganizationID is nullable:
// a user without an organization is a representable (if discouraged)
// bootstrap state, and such a user sees no organization-scoped tasks
// unless they hold the OWNER role.
type User struct {
	ID             int64     `db:"id"`
	Username       string    `db:"username"`
	PasswordHash   string    `db:"password_hash"`
	Role           Role      `db:"role"`
	OrganizationID *int64    `db:"organization_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
