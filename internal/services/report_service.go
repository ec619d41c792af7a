package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mentortrack/mentorship-service/internal/events"
	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/validator"
)

type reportService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewReportService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) ReportService {
	return &reportService{
		repo:           repo,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
	}
}

// Submit stores a report with the recipient set snapshotted from the
// author's supervisors at this moment, narrowed to the roles the author
// asked for. Later delegation changes never alter who reviews an
// already-submitted report. A wanted role with no holder is simply
// dropped from the snapshot.
func (s *reportService) Submit(ctx context.Context, req *SubmitReportRequest, authorID string) (*ReportResponse, error) {
	s.logger.Info("Submitting report", "author_id", authorID, "title", req.Title)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	profile, err := s.repo.Mentee().GetProfile(ctx, authorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMenteeNotFound
		}
		return nil, err
	}

	recipients := snapshotRecipients(profile, req.WantedRoles)
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	report := &models.Report{
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		BlobRef:     req.BlobRef,
		Status:      models.ReportPending,
		SubmittedAt: time.Now(),
		Recipients:  recipients,
	}

	if err := s.repo.Report().Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.publish(ctx, events.EventReportSubmitted, map[string]interface{}{
		"report_id": report.ID,
		"author_id": authorID,
		"recipients": func() []string {
			ids := make([]string, len(recipients))
			for i, r := range recipients {
				ids[i] = r.AccountID
			}
			return ids
		}(),
	})

	return &ReportResponse{Report: report}, nil
}

// Review closes a pending report with approved or rejected. A report
// closes exactly once; reviewing it again updates the feedback text and
// leaves the recorded decision alone.
func (s *reportService) Review(ctx context.Context, reportID uint, req *ReviewReportRequest, reviewerID string) (*ReportResponse, error) {
	s.logger.Info("Reviewing report", "report_id", reportID, "reviewer_id", reviewerID, "status", req.Status)

	if errs := s.validator.GetBusinessValidator().ValidateReportReview(req); len(errs) > 0 {
		return nil, errs
	}

	report, err := s.loadForRecipient(ctx, reportID, reviewerID, "review")
	if err != nil {
		return nil, err
	}

	if report.Status.Closed() {
		if req.Feedback != nil {
			if err := s.repo.Report().UpdateFeedback(ctx, reportID, req.Feedback); err != nil {
				return nil, fmt.Errorf("failed to update feedback: %w", err)
			}
			report.Feedback = req.Feedback
		}
		return &ReportResponse{Report: report}, nil
	}

	if err := s.repo.Report().UpdateReview(ctx, reportID, req.Status, req.Feedback); err != nil {
		return nil, fmt.Errorf("failed to record review: %w", err)
	}

	recordAudit(ctx, s.repo, s.logger, AuditReportReviewed, reviewerID, map[string]interface{}{
		"report_id": reportID,
		"status":    req.Status,
	})

	s.publish(ctx, events.EventReportReviewed, map[string]interface{}{
		"report_id":   reportID,
		"author_id":   report.AuthorID,
		"reviewer_id": reviewerID,
		"status":      req.Status,
	})

	report.Status = req.Status
	report.Feedback = req.Feedback
	return &ReportResponse{Report: report}, nil
}

// UpdateFeedback revises the feedback text on a closed report without
// reopening the decision.
func (s *reportService) UpdateFeedback(ctx context.Context, reportID uint, req *FeedbackRequest, reviewerID string) (*ReportResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	report, err := s.loadForRecipient(ctx, reportID, reviewerID, "feedback")
	if err != nil {
		return nil, err
	}

	if err := s.repo.Report().UpdateFeedback(ctx, reportID, &req.Feedback); err != nil {
		return nil, fmt.Errorf("failed to update feedback: %w", err)
	}

	report.Feedback = &req.Feedback
	return &ReportResponse{Report: report}, nil
}

// MarkViewed flags the report seen by a recipient. Repeat calls are
// harmless.
func (s *reportService) MarkViewed(ctx context.Context, reportID uint, viewerID string) error {
	if _, err := s.loadForRecipient(ctx, reportID, viewerID, "view"); err != nil {
		return err
	}

	if err := s.repo.Report().MarkViewed(ctx, reportID); err != nil {
		return fmt.Errorf("failed to mark report viewed: %w", err)
	}
	return nil
}

// GetByID returns the report to its author or any snapshotted recipient.
// The first recipient read flips the viewed flag, whatever the status.
func (s *reportService) GetByID(ctx context.Context, reportID uint, viewerID string) (*ReportResponse, error) {
	report, err := s.repo.Report().GetByID(ctx, reportID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	isRecipient := report.HasRecipient(viewerID)
	if report.AuthorID != viewerID && !isRecipient {
		return nil, NewPermissionError(viewerID, reportID, "report", "read", "not the author or a recipient")
	}

	if isRecipient && !report.Viewed {
		if err := s.repo.Report().MarkViewed(ctx, reportID); err != nil {
			return nil, fmt.Errorf("failed to mark report viewed: %w", err)
		}
		report.Viewed = true
	}

	return &ReportResponse{
		Report:    report,
		CanReview: isRecipient && !report.Status.Closed(),
	}, nil
}

func (s *reportService) ListForRecipient(ctx context.Context, recipientID string, filters repositories.ReportFilters) (*ReportListResponse, error) {
	reports, total, err := s.repo.Report().ListForRecipient(ctx, recipientID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	items := make([]*ReportResponse, len(reports))
	for i, r := range reports {
		items[i] = &ReportResponse{Report: r, CanReview: !r.Status.Closed()}
	}

	return &ReportListResponse{
		Reports:  items,
		Total:    total,
		Page:     pageFromOffset(filters.Offset, filters.Limit),
		Size:     filters.Limit,
	}, nil
}

func (s *reportService) ListByAuthor(ctx context.Context, authorID string, filters repositories.ReportFilters) (*ReportListResponse, error) {
	reports, total, err := s.repo.Report().ListByAuthor(ctx, authorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	items := make([]*ReportResponse, len(reports))
	for i, r := range reports {
		items[i] = &ReportResponse{Report: r}
	}

	return &ReportListResponse{
		Reports:  items,
		Total:    total,
		Page:     pageFromOffset(filters.Offset, filters.Limit),
		Size:     filters.Limit,
	}, nil
}

func (s *reportService) GetStats(ctx context.Context, recipientID string) (*repositories.ReportStats, error) {
	stats, err := s.repo.Report().GetStats(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report stats: %w", err)
	}
	return stats, nil
}

func (s *reportService) loadForRecipient(ctx context.Context, reportID uint, accountID, action string) (*models.Report, error) {
	report, err := s.repo.Report().GetByID(ctx, reportID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if !report.HasRecipient(accountID) {
		return nil, NewPermissionError(accountID, reportID, "report", action, "not in the recipient snapshot")
	}
	return report, nil
}

func (s *reportService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "error", err, "event_type", eventType)
	}
}

// snapshotRecipients builds the frozen recipient set from the mentee's
// current supervisors, restricted to the wanted roles and skipping roles
// without a holder. An empty wanted set means every supervisor. The same
// account holding two roles appears once per role.
func snapshotRecipients(profile *models.MenteeProfile, wanted []models.RecipientRole) []models.ReportRecipient {
	if len(wanted) == 0 {
		wanted = []models.RecipientRole{models.RecipientMentor, models.RecipientGuide, models.RecipientCoGuide}
	}

	recipients := make([]models.ReportRecipient, 0, len(wanted))
	seen := make(map[models.RecipientRole]bool, len(wanted))
	for _, role := range wanted {
		if seen[role] {
			continue
		}
		seen[role] = true
		if holder := profile.HolderForRole(role); holder != nil {
			recipients = append(recipients, models.ReportRecipient{AccountID: *holder, Role: role})
		}
	}
	return recipients
}
