package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskboard/taskboard/internal/db/models"
	"github.com/taskboard/taskboard/internal/db/repositories"
	"github.com/taskboard/taskboard/internal/middleware"
	"github.com/taskboard/taskboard/internal/telemetry"
)

// AuditHandlers serves the audit trail read endpoint.
type AuditHandlers struct {
	audit *repositories.AuditRepository
}

// NewAuditHandlers creates the audit handler set.
func NewAuditHandlers(audit *repositories.AuditRepository) *AuditHandlers {
	return &AuditHandlers{audit: audit}
}

type auditLogResponse struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id"`
	Username  *string   `json:"username"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	CreatedAt time.Time `json:"created_at"`
}

func toAuditLogResponse(entry *models.AuditLog) auditLogResponse {
	return auditLogResponse{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Username:  entry.Username,
		Action:    entry.Action,
		Resource:  entry.Resource,
		CreatedAt: entry.CreatedAt,
	}
}

// List returns the most recent audit entries, newest first, and then records
// one VIEW_AUDIT_LOGS entry for the viewing itself. The read happens first,
// so the viewer's own entry is not part of the returned window.
func (h *AuditHandlers) List(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	entries, err := h.audit.Recent(c.Request.Context(), repositories.DefaultRecentLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audit log"})
		return
	}

	recordAudit(c, h.audit, &user.ID, models.ActionViewAuditLogs, "User accessed audit logs")

	out := make([]auditLogResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toAuditLogResponse(entry))
	}
	c.JSON(http.StatusOK, out)
}

// recordAudit appends an audit entry for an operation that already succeeded.
// A failed append is counted and logged but never propagated: the guarded
// operation has committed, and surfacing the audit failure would misreport it
// as failed.
func recordAudit(c *gin.Context, audit *repositories.AuditRepository, actorID *int64, action, resource string) {
	if _, err := audit.Record(c.Request.Context(), actorID, action, resource); err != nil {
		telemetry.AuditWriteErrorsTotal.Inc()
		slog.Error("audit write failed", "action", action, "resource", resource, "error", err)
		return
	}
	telemetry.AuditWritesTotal.WithLabelValues(action).Inc()
}
