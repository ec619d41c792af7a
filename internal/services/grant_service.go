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

type grantService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewGrantService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) GrantService {
	return &grantService{
		repo:           repo,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
	}
}

// Grant opens an edit window for a mentee. A mentee carries at most one
// grant, so issuing a new one replaces whatever was there before, whether
// it was consumed, expired or still open.
func (s *grantService) Grant(ctx context.Context, req *GrantRequest, actorID string) (*EditWindow, error) {
	s.logger.Info("Issuing edit grant", "actor_id", actorID, "mentee_id", req.MenteeID, "duration_hours", req.DurationHours)

	if errs := s.validator.GetBusinessValidator().ValidateGrant(req); len(errs) > 0 {
		return nil, errs
	}

	granter, err := s.loadGranter(ctx, actorID)
	if err != nil {
		return nil, err
	}

	window, err := s.issue(ctx, s.repo, req.MenteeID, req.DurationHours, granter)
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.repo, s.logger, AuditGrantIssued, actorID, map[string]interface{}{
		"mentee_id":      req.MenteeID,
		"duration_hours": req.DurationHours,
		"expires_at":     window.ExpiresAt,
	})

	s.publish(ctx, events.EventEditGranted, map[string]interface{}{
		"mentee_id":  req.MenteeID,
		"granted_by": actorID,
		"expires_at": window.ExpiresAt,
	})

	return window, nil
}

// BulkGrant issues the same window to many mentees. Each mentee is handled
// independently, one unknown ID does not fail the batch.
func (s *grantService) BulkGrant(ctx context.Context, req *BulkGrantRequest, actorID string) (*BulkGrantResult, error) {
	s.logger.Info("Issuing bulk edit grants", "actor_id", actorID, "count", len(req.MenteeIDs), "duration_hours", req.DurationHours)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	granter, err := s.loadGranter(ctx, actorID)
	if err != nil {
		return nil, err
	}

	result := &BulkGrantResult{
		Granted: make([]string, 0, len(req.MenteeIDs)),
		Failed:  make(map[string]string),
	}

	var expiresAt *time.Time
	for _, menteeID := range req.MenteeIDs {
		window, err := s.issue(ctx, s.repo, menteeID, req.DurationHours, granter)
		if err != nil {
			result.Failed[menteeID] = err.Error()
			continue
		}
		expiresAt = window.ExpiresAt
		result.Granted = append(result.Granted, menteeID)
	}

	if len(result.Granted) > 0 {
		recordAudit(ctx, s.repo, s.logger, AuditGrantIssued, actorID, map[string]interface{}{
			"mentee_ids":     result.Granted,
			"duration_hours": req.DurationHours,
			"expires_at":     expiresAt,
		})

		s.publish(ctx, events.EventBulkNotification, map[string]interface{}{
			"kind":       "edit_granted",
			"mentee_ids": result.Granted,
			"granted_by": actorID,
			"expires_at": expiresAt,
		})
	}

	return result, nil
}

// IsEditable reports whether the mentee's grant is currently usable. A
// grant that was consumed or has expired reports a closed window.
func (s *grantService) IsEditable(ctx context.Context, menteeID string) (*EditWindow, error) {
	profile, err := s.repo.Mentee().GetProfile(ctx, menteeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMenteeNotFound
		}
		return nil, err
	}

	grant := profile.EditGrant
	if !grant.Active(time.Now()) {
		return &EditWindow{Allowed: false}, nil
	}

	return &EditWindow{
		Allowed:   true,
		ExpiresAt: grant.ExpiresAt,
		AllowedBy: grant.AllowedBy,
	}, nil
}

// Consume marks the grant spent. Consuming an already spent or missing
// grant is a no-op.
func (s *grantService) Consume(ctx context.Context, menteeID string) error {
	if err := s.repo.Mentee().SetGrantConsumed(ctx, menteeID, true); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrMenteeNotFound
		}
		return fmt.Errorf("failed to consume grant: %w", err)
	}
	return nil
}

// SaveProfile applies a mentee's self-service edit. The write is allowed
// exactly once per grant: the grant is consumed in the same transaction as
// the profile update.
func (s *grantService) SaveProfile(ctx context.Context, menteeID string, req *UpdateMenteeProfileRequest) (*MenteeResponse, error) {
	s.logger.Info("Saving mentee profile", "mentee_id", menteeID)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	var updated *models.MenteeProfile
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		profile, err := txRepo.Mentee().GetProfile(ctx, menteeID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrMenteeNotFound
			}
			return err
		}

		if !profile.EditGrant.Active(time.Now()) {
			return ErrGrantLocked
		}

		if req.EnrollmentNo != nil {
			profile.EnrollmentNo = *req.EnrollmentNo
		}
		if req.Year != nil {
			profile.Year = *req.Year
		}
		if req.Semester != nil {
			profile.Semester = req.Semester
		}
		if err := txRepo.Mentee().UpdateProfile(ctx, profile); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		if req.FullName != nil || req.Phone != nil {
			account, err := txRepo.Account().GetByID(ctx, menteeID)
			if err != nil {
				return err
			}
			if req.FullName != nil {
				account.FullName = *req.FullName
			}
			if req.Phone != nil {
				account.Phone = req.Phone
			}
			if err := txRepo.Account().Update(ctx, account); err != nil {
				return fmt.Errorf("failed to update account: %w", err)
			}
		}

		if err := txRepo.Mentee().SetGrantConsumed(ctx, menteeID, true); err != nil {
			return fmt.Errorf("failed to consume grant: %w", err)
		}

		updated, err = txRepo.Mentee().GetProfile(ctx, menteeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventEditConsumed, map[string]interface{}{
		"mentee_id": menteeID,
	})

	return &MenteeResponse{MenteeProfile: updated, EditAllowed: false}, nil
}

func (s *grantService) issue(ctx context.Context, repo repositories.Repository, menteeID string, durationHours int, granter *models.Account) (*EditWindow, error) {
	profile, err := repo.Mentee().GetProfile(ctx, menteeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			if account, accErr := repo.Account().GetByID(ctx, menteeID); accErr == nil {
				return nil, &RoleMismatchError{AccountID: menteeID, Required: "mentee", Actual: string(account.Role)}
			}
			return nil, ErrMenteeNotFound
		}
		return nil, err
	}

	if !granter.Role.IsAdminCapable() {
		if profile.PrimaryMentorID == nil || *profile.PrimaryMentorID != granter.ID {
			return nil, NewPermissionError(granter.ID, menteeID, "grant", "issue", "not the mentee's primary mentor")
		}
	}

	allowedAt, expiresAt := validator.GrantWindow(time.Now(), durationHours)
	grant := models.ProfileEditGrant{
		AllowedAt: &allowedAt,
		ExpiresAt: &expiresAt,
		AllowedBy: &granter.ID,
		Consumed:  false,
	}

	if err := repo.Mentee().ReplaceGrant(ctx, menteeID, grant); err != nil {
		return nil, fmt.Errorf("failed to store grant: %w", err)
	}

	return &EditWindow{Allowed: true, ExpiresAt: &expiresAt, AllowedBy: &granter.ID}, nil
}

// loadGranter resolves the issuing account. Admin-capable accounts may
// grant to anyone; a mentor may grant only to their own primary mentees,
// which issue enforces per mentee.
func (s *grantService) loadGranter(ctx context.Context, actorID string) (*models.Account, error) {
	actor, err := s.repo.Account().GetByID(ctx, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if !actor.Role.IsAdminCapable() && !actor.Role.IsMentorCapable() {
		return nil, NewPermissionError(actorID, nil, "grant", "issue", "mentor or admin role required")
	}
	return actor, nil
}

func (s *grantService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "error", err, "event_type", eventType)
	}
}
