// task_repository.go implements TaskRepository. Every read joins through the
// owning user so the authorization policy's visibility filter can be applied
// in SQL — scoping happens at query time, never by post-filtering in memory.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/taskboard/taskboard/internal/authz"
	"github.com/taskboard/taskboard/internal/db/models"
)

// taskColumns is the shared select list; owner_organization_id is resolved
// through the owner join, not stored on the task row.
const taskColumns = `
	t.id, t.title, t.description, t.status, t.priority, t.category,
	t.due_date, t.owner_id, t.created_at, t.updated_at,
	u.organization_id AS owner_organization_id
`

// TaskRepository handles task database operations.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Find retrieves tasks visible under the filter, newest first. An
// unrestricted filter spans all organizations; a scoped filter matches tasks
// whose owner belongs to the filter's organization. A scoped filter with a
// nil organization matches nothing (SQL NULL equality), which is the correct
// result for an actor without an organization.
func (r *TaskRepository) Find(ctx context.Context, filter authz.Filter) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN users u ON u.id = t.owner_id
	`
	args := []interface{}{}
	if !filter.Unrestricted {
		query += ` WHERE u.organization_id = $1`
		args = append(args, filter.OrganizationID)
	}
	query += ` ORDER BY t.created_at DESC`

	tasks := make([]*models.Task, 0)
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindOne retrieves a single task by ID subject to the same visibility
// filter as Find. Returns (nil, nil) both when the task does not exist and
// when it exists outside the filter's scope — callers cannot distinguish the
// two, which prevents existence leakage across organizations.
func (r *TaskRepository) FindOne(ctx context.Context, id int64, filter authz.Filter) (*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN users u ON u.id = t.owner_id
		WHERE t.id = $1
	`
	args := []interface{}{id}
	if !filter.Unrestricted {
		query += ` AND u.organization_id = $2`
		args = append(args, filter.OrganizationID)
	}

	task := &models.Task{}
	err := r.db.GetContext(ctx, task, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Create inserts a new task and fills in the generated ID and timestamps.
// Zero-valued status, priority, and category fall back to the schema
// defaults (TODO, MEDIUM, WORK).
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Category == "" {
		task.Category = models.DefaultCategory
	}

	query := `
		INSERT INTO tasks (title, description, status, priority, category, due_date, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.Category,
		task.DueDate,
		task.OwnerID,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

// TaskUpdate holds the partial-update fields for a task. Nil fields are left
// unchanged. Ownership is deliberately absent: tasks are never reassigned.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	Category    *string
	DueDate     *time.Time
}

// Empty reports whether the update names no fields at all.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil &&
		u.Priority == nil && u.Category == nil && u.DueDate == nil
}

// Update applies a partial update and returns the number of affected rows.
// An affected count of zero means the task did not exist at write time; the
// caller decides how to surface that.
func (r *TaskRepository) Update(ctx context.Context, id int64, update TaskUpdate) (int64, error) {
	sets := []string{}
	args := []interface{}{id}
	param := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, param))
		args = append(args, value)
		param++
	}

	if update.Title != nil {
		addSet("title", *update.Title)
	}
	if update.Description != nil {
		addSet("description", *update.Description)
	}
	if update.Status != nil {
		addSet("status", *update.Status)
	}
	if update.Priority != nil {
		addSet("priority", *update.Priority)
	}
	if update.Category != nil {
		addSet("category", *update.Category)
	}
	if update.DueDate != nil {
		addSet("due_date", *update.DueDate)
	}

	if len(sets) == 0 {
		return 0, nil
	}
	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $1`, strings.Join(sets, ", "))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Delete removes a task and returns the number of affected rows.
func (r *TaskRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
