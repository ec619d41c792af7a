package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/validator"
)

type classService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewClassService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) ClassService {
	return &classService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *classService) Create(ctx context.Context, req *CreateClassRequest, mentorID string) (*models.MentorClass, error) {
	s.logger.Info("Creating class", "mentor_id", mentorID, "name", req.Name)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	mentor, err := s.repo.Account().GetByID(ctx, mentorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if !mentor.Role.IsMentorCapable() {
		return nil, NewPermissionError(mentorID, nil, "class", "create", "mentor role required")
	}

	class := &models.MentorClass{
		MentorID: mentorID,
		Name:     req.Name,
		Year:     req.Year,
	}

	if err := s.repo.Class().Create(ctx, class); err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}

	return class, nil
}

func (s *classService) GetByID(ctx context.Context, id uint) (*models.MentorClass, error) {
	class, err := s.repo.Class().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

// Update edits a class; only the owning mentor may write.
func (s *classService) Update(ctx context.Context, id uint, req *UpdateClassRequest, actorID string) (*models.MentorClass, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	class, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if class.MentorID != actorID {
		return nil, NewPermissionError(actorID, id, "class", "update", "not the class owner")
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Year != nil {
		class.Year = *req.Year
	}

	if err := s.repo.Class().Update(ctx, class); err != nil {
		return nil, fmt.Errorf("failed to update class: %w", err)
	}

	return class, nil
}

// Delete removes a class. Member mentees are detached, never deleted.
func (s *classService) Delete(ctx context.Context, id uint, actorID string) error {
	class, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if class.MentorID != actorID {
		return NewPermissionError(actorID, id, "class", "delete", "not the class owner")
	}

	if err := s.repo.Class().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete class: %w", err)
	}

	s.logger.Info("Class deleted", "class_id", id, "mentor_id", actorID)
	return nil
}

func (s *classService) ListByMentor(ctx context.Context, mentorID string) ([]*models.MentorClass, error) {
	classes, err := s.repo.Class().ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return classes, nil
}
