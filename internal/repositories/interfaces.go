package repositories

import (
	"time"

	"github.com/mentortrack/mentorship-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type AccountFilters struct {
	Role      *models.AccountRole `json:"role"`
	Query     string              `json:"query"` // name or email search
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
	SortBy    string              `json:"sort_by"`    // "created_at", "full_name"
	SortOrder string              `json:"sort_order"` // "asc", "desc"
}

type MenteeFilters struct {
	MentorID *string `json:"mentor_id"` // primary assignment
	ClassID  *uint   `json:"class_id"`
	Query    string  `json:"query"` // name or enrollment number
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
}

type ReportFilters struct {
	Status   *models.ReportStatus  `json:"status"`
	Role     *models.RecipientRole `json:"role"` // recipient role at submission
	Viewed   *bool                 `json:"viewed"`
	DateFrom *time.Time            `json:"date_from"`
	DateTo   *time.Time            `json:"date_to"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

type QueryFilters struct {
	Status *models.QueryStatus `json:"status"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

type AuditFilters struct {
	Type    *string `json:"type"`
	ActorID *string `json:"actor_id"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type MentorStats struct {
	MenteeCount    int `json:"mentee_count"`
	GuidedCount    int `json:"guided_count"` // guide or co-guide slots held
	PendingReports int `json:"pending_reports"`
	PendingQueries int `json:"pending_queries"`
	ClassCount     int `json:"class_count"`
}

type ReportStats struct {
	Total           int                          `json:"total"`
	StatusBreakdown map[models.ReportStatus]int  `json:"status_breakdown"`
	ByRole          map[models.RecipientRole]int `json:"by_role"`
	UnviewedCount   int                          `json:"unviewed_count"`
}
