// audit_repository.go implements AuditRepository, the append-only audit
// trail. Entries are never updated or deleted; the only read is the recent
// window, newest first, with the actor's username resolved when present.
package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/taskboard/taskboard/internal/db/models"
)

// DefaultRecentLimit is the window size returned to audit-log viewers.
const DefaultRecentLimit = 100

// AuditRepository handles audit log database operations.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends an audit entry. actorUserID is nil only for
// pre-authentication events such as failed logins. A failed append is
// returned to the caller for logging but must never roll back the mutation
// it describes — the mutation has already committed.
func (r *AuditRepository) Record(ctx context.Context, actorUserID *int64, action, resource string) (*models.AuditLog, error) {
	entry := &models.AuditLog{
		UserID:   actorUserID,
		Action:   action,
		Resource: resource,
	}

	query := `
		INSERT INTO audit_logs (user_id, action, resource)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query, actorUserID, action, resource).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Recent returns the most recent entries, newest first, with each actor's
// username resolved via a LEFT JOIN (nil for unresolved or deleted actors).
// A non-positive limit falls back to DefaultRecentLimit.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query := `
		SELECT a.id, a.user_id, a.action, a.resource, a.created_at, u.username
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC
		LIMIT $1
	`

	logs := make([]*models.AuditLog, 0)
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, err
	}
	return logs, nil
}
