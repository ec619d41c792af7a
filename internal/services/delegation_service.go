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

type delegationService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewDelegationService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) DelegationService {
	return &delegationService{
		repo:           repo,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
	}
}

// AssignPrimaryMentor sets the mentee's primary mentor, silently replacing
// any previous assignment. The overwrite is recorded in the audit trail.
// Delegation slots are not touched.
func (s *delegationService) AssignPrimaryMentor(ctx context.Context, req *AssignMentorRequest, actorID string) error {
	s.logger.Info("Assigning primary mentor", "actor_id", actorID, "mentee_id", req.MenteeID, "mentor_id", req.MentorID)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	if err := s.requireAdmin(ctx, actorID, "assignment", "assign"); err != nil {
		return err
	}

	mentor, err := s.repo.Account().GetByID(ctx, req.MentorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrMentorNotFound
		}
		return err
	}
	if !mentor.Role.IsMentorCapable() {
		return &RoleMismatchError{AccountID: req.MentorID, Required: "mentor", Actual: string(mentor.Role)}
	}

	profile, err := s.repo.Mentee().GetProfile(ctx, req.MenteeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrMenteeNotFound
		}
		return err
	}

	previous := profile.PrimaryMentorID
	if err := s.repo.Mentee().SetPrimaryMentor(ctx, req.MenteeID, &req.MentorID); err != nil {
		return fmt.Errorf("failed to set primary mentor: %w", err)
	}

	recordAudit(ctx, s.repo, s.logger, AuditPrimaryAssigned, actorID, map[string]interface{}{
		"mentee_id": req.MenteeID,
		"mentor_id": req.MentorID,
		"previous":  previous,
	})

	s.publish(ctx, events.EventPrimaryAssigned, map[string]interface{}{
		"mentee_id": req.MenteeID,
		"mentor_id": req.MentorID,
	})

	return nil
}

// Verify resolves a mentee email against a delegation slot without
// writing anything. The caller is the candidate; Commit is a separate
// step so they see who currently occupies a contested slot first.
func (s *delegationService) Verify(ctx context.Context, req *VerifyDelegationRequest, actorID string) (*VerificationResult, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if err := s.requireMentorCapable(ctx, actorID); err != nil {
		return nil, err
	}

	account, err := s.repo.Account().GetByEmail(ctx, req.MenteeEmail)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &VerificationResult{Outcome: VerificationNotFound}, nil
		}
		return nil, err
	}
	if account.Role != models.RoleMentee {
		return &VerificationResult{Outcome: VerificationNotFound}, nil
	}

	profile, err := s.repo.Mentee().GetProfile(ctx, account.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &VerificationResult{Outcome: VerificationNotFound}, nil
		}
		return nil, err
	}

	mentee := &MenteeResponse{MenteeProfile: profile, EditAllowed: profile.EditGrant.Active(time.Now())}

	holder := profile.SlotHolder(req.Slot)
	switch {
	case holder != nil && *holder == actorID:
		return &VerificationResult{Outcome: VerificationHeldBySelf, Mentee: mentee}, nil
	case holder != nil:
		held, err := s.repo.Account().GetByID(ctx, *holder)
		if err != nil && !repositories.IsNotFoundError(err) {
			return nil, err
		}
		return &VerificationResult{Outcome: VerificationHeldByOther, Mentee: mentee, HeldBy: held}, nil
	default:
		return &VerificationResult{Outcome: VerificationOK, Mentee: mentee}, nil
	}
}

// Commit places the caller into a slot. Committing a slot the caller
// already holds is a no-op; committing over a different holder is
// rejected, that mentor must release first. The other slot and the
// primary assignment are never touched.
func (s *delegationService) Commit(ctx context.Context, req *CommitDelegationRequest, actorID string) error {
	s.logger.Info("Committing delegation", "actor_id", actorID, "mentee_id", req.MenteeID, "slot", req.Slot)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	if err := s.requireMentorCapable(ctx, actorID); err != nil {
		return err
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		profile, err := txRepo.Mentee().GetProfile(ctx, req.MenteeID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrMenteeNotFound
			}
			return err
		}

		holder := profile.SlotHolder(req.Slot)
		if holder != nil {
			if *holder == actorID {
				return nil
			}
			return &SlotOccupiedError{MenteeID: req.MenteeID, Slot: string(req.Slot), HeldBy: *holder}
		}

		if err := txRepo.Mentee().SetSlot(ctx, req.MenteeID, req.Slot, &actorID); err != nil {
			return fmt.Errorf("failed to commit slot: %w", err)
		}

		recordAudit(ctx, txRepo, s.logger, AuditSlotCommitted, actorID, map[string]interface{}{
			"mentee_id": req.MenteeID,
			"mentor_id": actorID,
			"slot":      req.Slot,
		})

		s.publish(ctx, events.EventSlotCommitted, map[string]interface{}{
			"mentee_id": req.MenteeID,
			"mentor_id": actorID,
			"slot":      req.Slot,
		})

		return nil
	})
}

// Release vacates a slot the caller holds. A slot that is empty or held
// by someone else is left alone; neither case is an error.
func (s *delegationService) Release(ctx context.Context, req *ReleaseDelegationRequest, actorID string) error {
	s.logger.Info("Releasing delegation", "actor_id", actorID, "mentee_id", req.MenteeID, "slot", req.Slot)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		profile, err := txRepo.Mentee().GetProfile(ctx, req.MenteeID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrMenteeNotFound
			}
			return err
		}

		holder := profile.SlotHolder(req.Slot)
		if holder == nil || *holder != actorID {
			return nil
		}

		if err := txRepo.Mentee().SetSlot(ctx, req.MenteeID, req.Slot, nil); err != nil {
			return fmt.Errorf("failed to release slot: %w", err)
		}

		recordAudit(ctx, txRepo, s.logger, AuditSlotReleased, actorID, map[string]interface{}{
			"mentee_id": req.MenteeID,
			"slot":      req.Slot,
			"released":  *holder,
		})

		s.publish(ctx, events.EventSlotReleased, map[string]interface{}{
			"mentee_id": req.MenteeID,
			"slot":      req.Slot,
		})

		return nil
	})
}

func (s *delegationService) ListMenteesForMentor(ctx context.Context, mentorID string) ([]*MenteeResponse, error) {
	profiles, err := s.repo.Mentee().ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentees: %w", err)
	}
	return menteeResponses(profiles), nil
}

func (s *delegationService) ListMenteesForSlotHolder(ctx context.Context, slot models.DelegationSlot, mentorID string) ([]*MenteeResponse, error) {
	if !slot.Valid() {
		return nil, ErrBadRequest
	}

	profiles, err := s.repo.Mentee().ListBySlotHolder(ctx, slot, mentorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentees by slot: %w", err)
	}
	return menteeResponses(profiles), nil
}

func (s *delegationService) requireAdmin(ctx context.Context, actorID, resource, action string) error {
	actor, err := s.repo.Account().GetByID(ctx, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAccountNotFound
		}
		return err
	}
	if !actor.Role.IsAdminCapable() {
		return NewPermissionError(actorID, nil, resource, action, "admin role required")
	}
	return nil
}

func (s *delegationService) requireMentorCapable(ctx context.Context, actorID string) error {
	actor, err := s.repo.Account().GetByID(ctx, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAccountNotFound
		}
		return err
	}
	if !actor.Role.IsMentorCapable() {
		return &RoleMismatchError{AccountID: actorID, Required: "mentor", Actual: string(actor.Role)}
	}
	return nil
}

func (s *delegationService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "error", err, "event_type", eventType)
	}
}

func menteeResponses(profiles []*models.MenteeProfile) []*MenteeResponse {
	now := time.Now()
	responses := make([]*MenteeResponse, len(profiles))
	for i, profile := range profiles {
		responses[i] = &MenteeResponse{
			MenteeProfile: profile,
			EditAllowed:   profile.EditGrant.Active(now),
		}
	}
	return responses
}
