package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
)

// Audit event types recorded for supervisory actions.
const (
	AuditPrimaryAssigned = "delegation.primary_assigned"
	AuditSlotCommitted   = "delegation.slot_committed"
	AuditSlotReleased    = "delegation.slot_released"
	AuditRoleChanged     = "directory.role_changed"
	AuditGrantIssued     = "grant.issued"
	AuditReportReviewed  = "report.reviewed"
	AuditIdentitySwitch  = "identity.switched"
)

// recordAudit appends an audit event; failures are logged but never fail
// the operation that triggered them.
func recordAudit(ctx context.Context, repo repositories.Repository, logger *slog.Logger, eventType, actorID string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to marshal audit payload", "error", err, "type", eventType)
		return
	}

	event := &models.AuditEvent{
		Type:    eventType,
		ActorID: actorID,
		Payload: datatypes.JSON(data),
	}

	if err := repo.Audit().Record(ctx, event); err != nil {
		logger.ErrorContext(ctx, "Failed to record audit event", "error", err, "type", eventType)
	}
}

type auditListService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAuditService(repo repositories.Repository, logger *slog.Logger) AuditService {
	return &auditListService{repo: repo, logger: logger}
}

// List returns audit events; only admin-capable accounts may read the
// trail.
func (s *auditListService) List(ctx context.Context, filters repositories.AuditFilters, actorID string) ([]*models.AuditEvent, int64, error) {
	actor, err := s.repo.Account().GetByID(ctx, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, 0, ErrAccountNotFound
		}
		return nil, 0, err
	}
	if !actor.Role.IsAdminCapable() {
		return nil, 0, NewPermissionError(actorID, nil, "audit", "list", "admin role required")
	}

	return s.repo.Audit().List(ctx, filters)
}
