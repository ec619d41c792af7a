package repositories

import (
	"context"

	"github.com/mentortrack/mentorship-service/internal/models"
)

// ReportRepository persists reports together with their frozen recipient
// snapshot. Recipients are written once at Create and never touched again.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)

	// UpdateReview writes status and feedback together; UpdateFeedback
	// touches feedback only (closed-report self-loop).
	UpdateReview(ctx context.Context, id uint, status models.ReportStatus, feedback *string) error
	UpdateFeedback(ctx context.Context, id uint, feedback *string) error
	MarkViewed(ctx context.Context, id uint) error

	// ListForRecipient is recipients-scoped: only reports where the account
	// is named in the snapshot.
	ListForRecipient(ctx context.Context, accountID string, filters ReportFilters) ([]*models.Report, int64, error)
	ListByAuthor(ctx context.Context, authorID string, filters ReportFilters) ([]*models.Report, int64, error)

	GetStats(ctx context.Context, recipientID string) (*ReportStats, error)
}

// QueryRepository persists mentee questions and mentor answers.
type QueryRepository interface {
	Create(ctx context.Context, query *models.Query) error
	GetByID(ctx context.Context, id uint) (*models.Query, error)
	SetAnswer(ctx context.Context, id uint, answer string, status models.QueryStatus) error

	ListByMentor(ctx context.Context, mentorID string, filters QueryFilters) ([]*models.Query, int64, error)
	ListByMentee(ctx context.Context, menteeID string, filters QueryFilters) ([]*models.Query, int64, error)
}

// AuditRepository is the append-only audit trail.
type AuditRepository interface {
	Record(ctx context.Context, event *models.AuditEvent) error
	List(ctx context.Context, filters AuditFilters) ([]*models.AuditEvent, int64, error)
}
