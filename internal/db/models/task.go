package models

import "time"

// TaskStatus is the closed set of task workflow states.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// TaskPriority is the closed set of task priorities.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DefaultCategory is applied when a task is created without a category.
const DefaultCategory = "WORK"

// Task is a unit of work owned by exactly one user. A task is never
// reassigned to a different owner; it inherits the owner's organization
// for visibility scoping.
type Task struct {
	ID          int64        `db:"id"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	Status      TaskStatus   `db:"status"`
	Priority    TaskPriority `db:"priority"`
	Category    string       `db:"category"`
	DueDate     *time.Time   `db:"due_date"`
	OwnerID     int64        `db:"owner_id"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`

	// OwnerOrganizationID is populated by queries that join through the
	// owner; it is not a column on the tasks table itself.
	OwnerOrganizationID *int64 `db:"owner_organization_id"`
}
