package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// CountMenteesByMentor counts mentees under a primary mentor
func (h *SharedHelpers) CountMenteesByMentor(ctx context.Context, mentorID string) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.MenteeProfile{}).
		Where("primary_mentor_id = ?", mentorID).
		Count(&count).Error
	return count, err
}

// CountMenteesBySlotHolder counts mentees for which the mentor holds either
// delegation slot
func (h *SharedHelpers) CountMenteesBySlotHolder(ctx context.Context, mentorID string) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.MenteeProfile{}).
		Where("guide_id = ? OR co_guide_id = ?", mentorID, mentorID).
		Count(&count).Error
	return count, err
}

// CountPendingReportsForRecipient counts unreviewed reports addressed to
// the account
func (h *SharedHelpers) CountPendingReportsForRecipient(ctx context.Context, accountID string) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.Report{}).
		Joins("JOIN report_recipients ON report_recipients.report_id = reports.id").
		Where("report_recipients.account_id = ? AND reports.status = ?", accountID, models.ReportPending).
		Count(&count).Error
	return count, err
}

// CountPendingQueriesForMentor counts unanswered queries frozen to the mentor
func (h *SharedHelpers) CountPendingQueriesForMentor(ctx context.Context, mentorID string) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.Query{}).
		Where("mentor_id = ? AND status = ?", mentorID, models.QueryPending).
		Count(&count).Error
	return count, err
}

// ApplyAccountFilters applies common filters to account queries
func (h *SharedHelpers) ApplyAccountFilters(query *gorm.DB, filters repositories.AccountFilters) *gorm.DB {
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	return query
}

// ApplyMenteeFilters applies common filters to mentee profile queries
func (h *SharedHelpers) ApplyMenteeFilters(query *gorm.DB, filters repositories.MenteeFilters) *gorm.DB {
	if filters.MentorID != nil {
		query = query.Where("primary_mentor_id = ?", *filters.MentorID)
	}
	if filters.ClassID != nil {
		query = query.Where("class_id = ?", *filters.ClassID)
	}
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where(
			"enrollment_no ILIKE ? OR account_id IN (SELECT id FROM accounts WHERE full_name ILIKE ?)",
			pattern, pattern)
	}
	return query
}

// ApplyReportFilters applies common filters to report queries
func (h *SharedHelpers) ApplyReportFilters(query *gorm.DB, filters repositories.ReportFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("reports.status = ?", *filters.Status)
	}
	if filters.Viewed != nil {
		query = query.Where("reports.viewed = ?", *filters.Viewed)
	}
	if filters.DateFrom != nil {
		query = query.Where("reports.submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("reports.submitted_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyQueryFilters applies common filters to query listings
func (h *SharedHelpers) ApplyQueryFilters(query *gorm.DB, filters repositories.QueryFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at":    true,
		"updated_at":    true,
		"id":            true,
		"full_name":     true,
		"email":         true,
		"enrollment_no": true,
		"submitted_at":  true,
		"asked_at":      true,
		"status":        true,
	}

	// Validate and set sort column
	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	// Validate and set sort order
	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
