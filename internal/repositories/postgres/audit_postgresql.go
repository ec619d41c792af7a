package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
)

type AuditPostgreSQL struct {
	db *gorm.DB
}

func NewAuditPostgreSQL(db *gorm.DB) repositories.AuditRepository {
	return &AuditPostgreSQL{db: db}
}

// Record appends one audit event. Events are never updated or deleted.
func (a *AuditPostgreSQL) Record(ctx context.Context, event *models.AuditEvent) error {
	if err := a.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}

func (a *AuditPostgreSQL) List(ctx context.Context, filters repositories.AuditFilters) ([]*models.AuditEvent, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.AuditEvent{})

	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.ActorID != nil {
		query = query.Where("actor_id = ?", *filters.ActorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var events []*models.AuditEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
