package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mentortrack/mentorship-service/internal/cache"
	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
)

type ReportPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewReportPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ReportRepository {
	return &ReportPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// Create persists the report together with its recipient snapshot. gorm
// inserts the Recipients association in the same statement batch.
func (r *ReportPostgreSQL) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, r.cacheManager.Report, "recipient:*")
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Report, fmt.Sprintf("author:%s:*", report.AuthorID))

	return nil
}

// GetByID retrieves a report with its frozen recipients and author
func (r *ReportPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var report models.Report

	err := r.cacheManager.Report.CacheOrExecute(ctx, cacheKey, &report, cache.ReportCacheConfig.TTL, func() (interface{}, error) {
		var dbReport models.Report
		err := r.db.WithContext(ctx).
			Preload("Author").
			Preload("Recipients").
			First(&dbReport, id).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get report: %w", err)
		}
		return &dbReport, nil
	})

	if err != nil {
		return nil, err
	}

	return &report, nil
}

// UpdateReview writes status and feedback as a single decision
func (r *ReportPostgreSQL) UpdateReview(ctx context.Context, id uint, status models.ReportStatus, feedback *string) error {
	result := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":   status,
			"feedback": feedback,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update report review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	r.invalidate(ctx, id)

	return nil
}

// UpdateFeedback touches only the feedback column, used on closed reports
func (r *ReportPostgreSQL) UpdateFeedback(ctx context.Context, id uint, feedback *string) error {
	result := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Update("feedback", feedback)
	if result.Error != nil {
		return fmt.Errorf("failed to update report feedback: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	r.invalidate(ctx, id)

	return nil
}

// MarkViewed sets the viewed flag; repeated calls are harmless
func (r *ReportPostgreSQL) MarkViewed(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Update("viewed", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark report viewed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	r.invalidate(ctx, id)

	return nil
}

// ListForRecipient retrieves reports whose snapshot names the account,
// optionally narrowed by the role held at submission
func (r *ReportPostgreSQL) ListForRecipient(ctx context.Context, accountID string, filters repositories.ReportFilters) ([]*models.Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Report{}).
		Joins("JOIN report_recipients ON report_recipients.report_id = reports.id").
		Where("report_recipients.account_id = ?", accountID)

	if filters.Role != nil {
		query = query.Where("report_recipients.role = ?", *filters.Role)
	}
	query = r.helpers.ApplyReportFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.helpers.ApplyPaginationAndSort(query, "submitted_at", "desc", filters.Limit, filters.Offset)

	var reports []*models.Report
	err := query.Preload("Author").Preload("Recipients").Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

// ListByAuthor retrieves the mentee's own submissions
func (r *ReportPostgreSQL) ListByAuthor(ctx context.Context, authorID string, filters repositories.ReportFilters) ([]*models.Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("author_id = ?", authorID)

	query = r.helpers.ApplyReportFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.helpers.ApplyPaginationAndSort(query, "submitted_at", "desc", filters.Limit, filters.Offset)

	var reports []*models.Report
	err := query.Preload("Recipients").Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

// GetStats computes review statistics for a recipient, cached
func (r *ReportPostgreSQL) GetStats(ctx context.Context, recipientID string) (*repositories.ReportStats, error) {
	cacheKey := fmt.Sprintf("report:%s", recipientID)
	var stats repositories.ReportStats

	err := r.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		result := &repositories.ReportStats{
			StatusBreakdown: make(map[models.ReportStatus]int),
			ByRole:          make(map[models.RecipientRole]int),
		}

		type row struct {
			Status models.ReportStatus
			Role   models.RecipientRole
			Viewed bool
			Count  int
		}
		var rows []row
		err := r.db.WithContext(ctx).Model(&models.Report{}).
			Select("reports.status, report_recipients.role, reports.viewed, COUNT(*) as count").
			Joins("JOIN report_recipients ON report_recipients.report_id = reports.id").
			Where("report_recipients.account_id = ?", recipientID).
			Group("reports.status, report_recipients.role, reports.viewed").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get report stats: %w", err)
		}

		for _, rec := range rows {
			result.Total += rec.Count
			result.StatusBreakdown[rec.Status] += rec.Count
			result.ByRole[rec.Role] += rec.Count
			if !rec.Viewed {
				result.UnviewedCount += rec.Count
			}
		}

		return result, nil
	})

	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *ReportPostgreSQL) invalidate(ctx context.Context, id uint) {
	cache.SafeDelete(ctx, r.cacheManager.Report, fmt.Sprintf("id:%d", id))
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Report, "recipient:*")
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Report, "author:*")
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Stats, "report:*")
}
