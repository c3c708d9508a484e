package models

import "time"

// Audit actions recorded by the service. The set is small and fixed; new
// actions require a deliberate addition here, not ad-hoc strings at call
// sites.
const (
	ActionCreateTask    = "CREATE_TASK"
	ActionUpdateTask    = "UPDATE_TASK"
	ActionDeleteTask    = "DELETE_TASK"
	ActionLoginFailed   = "LOGIN_FAILED"
	ActionViewAuditLogs = "VIEW_AUDIT_LOGS"
)

// AuditLog is an immutable record of who did what to which resource.
// UserID is nullable only for pre-authentication events (failed logins
// with no resolved identity). Rows are never updated or deleted.
type AuditLog struct {
	ID        int64     `db:"id"`
	UserID    *int64    `db:"user_id"`
	Action    string    `db:"action"`
	Resource  string    `db:"resource"`
	CreatedAt time.Time `db:"created_at"`

	// Username is the actor's username resolved at query time via a LEFT
	// JOIN; nil when the actor is unresolved or since deleted.
	Username *string `db:"username"`
}
