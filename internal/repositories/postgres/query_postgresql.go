package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
)

type QueryPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQueryPostgreSQL(db *gorm.DB) repositories.QueryRepository {
	return &QueryPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (q *QueryPostgreSQL) Create(ctx context.Context, query *models.Query) error {
	if err := q.db.WithContext(ctx).Create(query).Error; err != nil {
		return fmt.Errorf("failed to create query: %w", err)
	}
	return nil
}

func (q *QueryPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Query, error) {
	var query models.Query
	err := q.db.WithContext(ctx).
		Preload("Mentee").
		Preload("Mentor").
		First(&query, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get query: %w", err)
	}
	return &query, nil
}

// SetAnswer writes the answer text and status together. answered_at is set
// only on the pending -> answered transition; later edits keep the original
// timestamp.
func (q *QueryPostgreSQL) SetAnswer(ctx context.Context, id uint, answer string, status models.QueryStatus) error {
	updates := map[string]interface{}{
		"answer": answer,
		"status": status,
	}
	result := q.db.WithContext(ctx).Model(&models.Query{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to set query answer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	// Stamp answered_at only where it is still unset
	if status == models.QueryAnswered {
		now := time.Now()
		if err := q.db.WithContext(ctx).Model(&models.Query{}).
			Where("id = ? AND answered_at IS NULL", id).
			Update("answered_at", now).Error; err != nil {
			return fmt.Errorf("failed to stamp answer time: %w", err)
		}
	}

	return nil
}

func (q *QueryPostgreSQL) ListByMentor(ctx context.Context, mentorID string, filters repositories.QueryFilters) ([]*models.Query, int64, error) {
	query := q.db.WithContext(ctx).Model(&models.Query{}).
		Where("mentor_id = ?", mentorID)

	query = q.helpers.ApplyQueryFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = q.helpers.ApplyPaginationAndSort(query, "asked_at", "desc", filters.Limit, filters.Offset)

	var queries []*models.Query
	if err := query.Preload("Mentee").Find(&queries).Error; err != nil {
		return nil, 0, err
	}

	return queries, total, nil
}

func (q *QueryPostgreSQL) ListByMentee(ctx context.Context, menteeID string, filters repositories.QueryFilters) ([]*models.Query, int64, error) {
	query := q.db.WithContext(ctx).Model(&models.Query{}).
		Where("mentee_id = ?", menteeID)

	query = q.helpers.ApplyQueryFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = q.helpers.ApplyPaginationAndSort(query, "asked_at", "desc", filters.Limit, filters.Offset)

	var queries []*models.Query
	if err := query.Preload("Mentor").Find(&queries).Error; err != nil {
		return nil, 0, err
	}

	return queries, total, nil
}
