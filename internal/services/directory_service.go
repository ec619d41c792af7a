package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mentortrack/mentorship-service/internal/auth"
	"github.com/mentortrack/mentorship-service/internal/events"
	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/validator"
)

type directoryService struct {
	repo           repositories.Repository
	authenticator  auth.Authenticator
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewDirectoryService(repo repositories.Repository, authenticator auth.Authenticator, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) DirectoryService {
	return &directoryService{
		repo:           repo,
		authenticator:  authenticator,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
	}
}

// CreateAccount registers a mentor or admin account. Registration happens
// in two steps: the identity provider first, then the directory record
// keyed by the provider ID.
func (s *directoryService) CreateAccount(ctx context.Context, req *CreateAccountRequest, actorID string) (*AccountResponse, error) {
	s.logger.Info("Creating account", "actor_id", actorID, "email", req.Email, "role", req.Role)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if err := s.requireAdmin(ctx, actorID, "account", "create"); err != nil {
		return nil, err
	}

	if req.Role == models.RoleMentee {
		return nil, &RoleMismatchError{AccountID: "", Required: "mentor or admin", Actual: string(req.Role)}
	}

	taken, err := s.repo.Account().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	providerID, err := s.authenticator.CreateIdentity(ctx, auth.NewIdentity{
		Email:       req.Email,
		DisplayName: req.FullName,
		Secret:      req.Secret,
		Type:        string(req.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register identity: %w", err)
	}

	account := &models.Account{
		ID:       providerID,
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
		Phone:    req.Phone,
	}

	if err := s.repo.Account().Create(ctx, account); err != nil {
		// Roll back the provider registration so the two stores stay
		// consistent.
		if delErr := s.authenticator.DeleteIdentity(ctx, providerID); delErr != nil {
			s.logger.ErrorContext(ctx, "Failed to roll back identity after create failure",
				"error", delErr, "account_id", providerID)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.publish(ctx, events.EventAccountCreated, map[string]interface{}{
		"account_id": account.ID,
		"role":       account.Role,
	})

	return &AccountResponse{Account: account}, nil
}

// CreateMentee registers a mentee account with its profile. The enrollment
// number is checked against every existing mentee before anything is
// written.
func (s *directoryService) CreateMentee(ctx context.Context, req *CreateMenteeRequest, actorID string) (*MenteeResponse, error) {
	s.logger.Info("Creating mentee", "actor_id", actorID, "enrollment_no", req.EnrollmentNo)

	req.EnrollmentNo = strings.ToUpper(strings.TrimSpace(req.EnrollmentNo))
	if errs := s.validator.GetBusinessValidator().ValidateMenteeCreate(req); len(errs) > 0 {
		return nil, errs
	}

	actor, err := s.repo.Account().GetByID(ctx, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if !actor.Role.IsAdminCapable() && !actor.Role.IsMentorCapable() {
		return nil, NewPermissionError(actorID, nil, "mentee", "create", "mentor or admin role required")
	}

	duplicate, err := s.IsDuplicateEnrollment(ctx, req.EnrollmentNo)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, &DuplicateEnrollmentError{EnrollmentNo: req.EnrollmentNo}
	}

	taken, err := s.repo.Account().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	if req.MentorID != nil {
		if err := s.requireMentorCapable(ctx, *req.MentorID); err != nil {
			return nil, err
		}
	} else if actor.Role.IsMentorCapable() {
		// a mentor enrolling a mentee takes them on by default
		req.MentorID = &actor.ID
	}

	providerID, err := s.authenticator.CreateIdentity(ctx, auth.NewIdentity{
		Email:       req.Email,
		DisplayName: req.FullName,
		Secret:      req.Secret,
		Type:        string(models.RoleMentee),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register identity: %w", err)
	}

	var profile *models.MenteeProfile
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		account := &models.Account{
			ID:       providerID,
			FullName: req.FullName,
			Email:    req.Email,
			Role:     models.RoleMentee,
		}
		if err := txRepo.Account().Create(ctx, account); err != nil {
			return fmt.Errorf("failed to create mentee account: %w", err)
		}

		profile = &models.MenteeProfile{
			AccountID:       providerID,
			EnrollmentNo:    req.EnrollmentNo,
			Year:            req.Year,
			ClassID:         req.ClassID,
			Semester:        req.Semester,
			PrimaryMentorID: req.MentorID,
		}
		if err := txRepo.Mentee().CreateProfile(ctx, profile); err != nil {
			return fmt.Errorf("failed to create mentee profile: %w", err)
		}

		profile.Account = account
		return nil
	})
	if err != nil {
		if delErr := s.authenticator.DeleteIdentity(ctx, providerID); delErr != nil {
			s.logger.ErrorContext(ctx, "Failed to roll back identity after create failure",
				"error", delErr, "account_id", providerID)
		}
		return nil, err
	}

	s.publish(ctx, events.EventMenteeEnrolled, map[string]interface{}{
		"account_id":    providerID,
		"enrollment_no": req.EnrollmentNo,
		"mentor_id":     req.MentorID,
	})

	return &MenteeResponse{MenteeProfile: profile, EditAllowed: false}, nil
}

func (s *directoryService) GetAccount(ctx context.Context, id string) (*AccountResponse, error) {
	account, err := s.repo.Account().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &AccountResponse{Account: account}, nil
}

// UpdateAccount edits unlocked profile fields. Only the owner or an admin
// may write.
func (s *directoryService) UpdateAccount(ctx context.Context, id string, req *UpdateAccountRequest, actorID string) (*AccountResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if actorID != id {
		if err := s.requireAdmin(ctx, actorID, "account", "update"); err != nil {
			return nil, err
		}
	}

	account, err := s.repo.Account().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if req.FullName != nil {
		account.FullName = *req.FullName
	}
	if req.Phone != nil {
		account.Phone = req.Phone
	}
	if req.PhotoRef != nil {
		account.PhotoRef = req.PhotoRef
	}

	if err := s.repo.Account().Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	return &AccountResponse{Account: account}, nil
}

// SetRole toggles a mentor between mentor and admin+mentor. Admin-only,
// and never applicable to mentees.
func (s *directoryService) SetRole(ctx context.Context, id string, req *RoleChangeRequest, actorID string) (*AccountResponse, error) {
	s.logger.Info("Changing account role", "actor_id", actorID, "account_id", id, "role", req.Role)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if err := s.requireAdmin(ctx, actorID, "account", "set_role"); err != nil {
		return nil, err
	}

	account, err := s.repo.Account().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateRoleChange(account.Role, req.Role); len(errs) > 0 {
		return nil, errs
	}

	previous := account.Role
	if err := s.repo.Account().UpdateRole(ctx, id, req.Role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	account.Role = req.Role

	recordAudit(ctx, s.repo, s.logger, AuditRoleChanged, actorID, map[string]interface{}{
		"account_id": id,
		"from":       previous,
		"to":         req.Role,
	})

	s.publish(ctx, events.EventRoleChanged, map[string]interface{}{
		"account_id": id,
		"from":       previous,
		"to":         req.Role,
	})

	return &AccountResponse{Account: account}, nil
}

func (s *directoryService) ListAccounts(ctx context.Context, filters repositories.AccountFilters) (*AccountListResponse, error) {
	accounts, total, err := s.repo.Account().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	responses := make([]*AccountResponse, len(accounts))
	for i, account := range accounts {
		responses[i] = &AccountResponse{Account: account}
	}

	return &AccountListResponse{
		Accounts: responses,
		Total:    total,
		Page:     pageFromOffset(filters.Offset, filters.Limit),
		Size:     filters.Limit,
	}, nil
}

// ListMentors returns every mentor-capable account, both plain mentors
// and admin+mentor holders.
func (s *directoryService) ListMentors(ctx context.Context) ([]*AccountResponse, error) {
	mentors, err := s.repo.Account().ListByRole(ctx, models.RoleMentor)
	if err != nil {
		return nil, err
	}
	adminMentors, err := s.repo.Account().ListByRole(ctx, models.RoleAdminMentor)
	if err != nil {
		return nil, err
	}

	responses := make([]*AccountResponse, 0, len(mentors)+len(adminMentors))
	for _, account := range mentors {
		responses = append(responses, &AccountResponse{Account: account})
	}
	for _, account := range adminMentors {
		responses = append(responses, &AccountResponse{Account: account})
	}
	return responses, nil
}

func (s *directoryService) ListMentees(ctx context.Context, filters repositories.MenteeFilters) (*MenteeListResponse, error) {
	profiles, total, err := s.repo.Mentee().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentees: %w", err)
	}

	now := time.Now()
	responses := make([]*MenteeResponse, len(profiles))
	for i, profile := range profiles {
		responses[i] = &MenteeResponse{
			MenteeProfile: profile,
			EditAllowed:   profile.EditGrant.Active(now),
		}
	}

	return &MenteeListResponse{
		Mentees: responses,
		Total:   total,
		Page:    pageFromOffset(filters.Offset, filters.Limit),
		Size:    filters.Limit,
	}, nil
}

func (s *directoryService) GetMenteeProfile(ctx context.Context, accountID string) (*MenteeResponse, error) {
	profile, err := s.repo.Mentee().GetProfile(ctx, accountID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMenteeNotFound
		}
		return nil, err
	}

	return &MenteeResponse{
		MenteeProfile: profile,
		EditAllowed:   profile.EditGrant.Active(time.Now()),
	}, nil
}

// UpdateMenteeProfile applies a supervisor-side edit. Unlike the
// grant-gated self-service path, the actor must currently supervise the
// mentee (or be an admin) and no edit window is required or consumed.
func (s *directoryService) UpdateMenteeProfile(ctx context.Context, menteeID string, req *UpdateMenteeProfileRequest, actorID string) (*MenteeResponse, error) {
	s.logger.Info("Updating mentee profile", "actor_id", actorID, "mentee_id", menteeID)

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

		if !s.supervises(ctx, profile, actorID) {
			return NewPermissionError(actorID, menteeID, "mentee profile", "update", "supervisor or admin role required")
		}

		if req.EnrollmentNo != nil {
			profile.EnrollmentNo = strings.ToUpper(strings.TrimSpace(*req.EnrollmentNo))
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

		updated, err = txRepo.Mentee().GetProfile(ctx, menteeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &MenteeResponse{
		MenteeProfile: updated,
		EditAllowed:   updated.EditGrant.Active(time.Now()),
	}, nil
}

func (s *directoryService) supervises(ctx context.Context, profile *models.MenteeProfile, actorID string) bool {
	for _, holder := range []*string{profile.PrimaryMentorID, profile.GuideID, profile.CoGuideID} {
		if holder != nil && *holder == actorID {
			return true
		}
	}
	return s.requireAdmin(ctx, actorID, "mentee profile", "update") == nil
}

func (s *directoryService) IsDuplicateEnrollment(ctx context.Context, enrollmentNo string) (bool, error) {
	exists, err := s.repo.Mentee().ExistsByEnrollment(ctx, strings.ToUpper(strings.TrimSpace(enrollmentNo)))
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}

// ===== HELPERS =====

func (s *directoryService) requireAdmin(ctx context.Context, actorID, resource, action string) error {
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

func (s *directoryService) requireMentorCapable(ctx context.Context, mentorID string) error {
	mentor, err := s.repo.Account().GetByID(ctx, mentorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrMentorNotFound
		}
		return err
	}
	if !mentor.Role.IsMentorCapable() {
		return &RoleMismatchError{AccountID: mentorID, Required: "mentor", Actual: string(mentor.Role)}
	}
	return nil
}

func (s *directoryService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "error", err, "event_type", eventType)
	}
}

func pageFromOffset(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}
