// Package authz implements the authorization policy for tasks.
//
// The policy is pure: every function is a synchronous boolean decision (or an
// opaque filter descriptor) over an actor and a target, with no I/O and no
// error path. Callers translate a deny into the externally visible failure
// (403, or 404 when the target is outside the actor's visibility).
//
// The rules are deliberately asymmetric and must stay that way:
//
//   - Listing and reading are organization-scoped: a non-OWNER actor sees
//     every task whose owner belongs to the actor's organization.
//   - Mutation is ownership-scoped: an ADMIN may update or delete only tasks
//     they personally own, even within their own organization. Only OWNER
//     mutates freely. VIEWER never writes.
//
// Roles form a closed enumeration; anything outside it denies rather than
// falling through to a default.
package authz

import "github.com/taskboard/taskboard/internal/db/models"

// Filter describes the visibility scope applied by the task store at query
// time. It is applied in SQL, not by post-filtering in memory, because it
// changes the semantics of list and count.
type Filter struct {
	// Unrestricted is true only for OWNER actors: the query spans all
	// organizations.
	Unrestricted bool

	// OrganizationID scopes the query to tasks whose owner belongs to this
	// organization. A nil value (actor without an organization) matches no
	// tasks: SQL NULL equality is never true, and that is the intended
	// behavior for the bootstrap state.
	OrganizationID *int64
}

// CanCreate reports whether the actor may create tasks.
func CanCreate(actor *models.User) bool {
	switch actor.Role {
	case models.RoleOwner, models.RoleAdmin:
		return true
	case models.RoleViewer:
		return false
	}
	return false
}

// CanMutate reports whether the actor may update or delete the task. Update
// and delete are governed identically: OWNER may mutate any task, ADMIN only
// tasks they own, VIEWER nothing.
func CanMutate(actor *models.User, task *models.Task) bool {
	switch actor.Role {
	case models.RoleOwner:
		return true
	case models.RoleAdmin:
		return task.OwnerID == actor.ID
	case models.RoleViewer:
		return false
	}
	return false
}

// CanRead reports whether the actor may read the task. Reads are broader
// than writes: any actor may read any task within their organization.
func CanRead(actor *models.User, task *models.Task) bool {
	switch actor.Role {
	case models.RoleOwner:
		return true
	case models.RoleAdmin, models.RoleViewer:
		return sameOrganization(actor.OrganizationID, task.OwnerOrganizationID)
	}
	return false
}

// VisibilityFilter derives the scope the task store applies when listing on
// behalf of the actor.
func VisibilityFilter(actor *models.User) Filter {
	if actor.Role == models.RoleOwner {
		return Filter{Unrestricted: true}
	}
	return Filter{OrganizationID: actor.OrganizationID}
}

func sameOrganization(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}
