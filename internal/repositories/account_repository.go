package repositories

import (
	"context"

	"github.com/mentortrack/mentorship-service/internal/models"
)

// AccountRepository is the canonical identity directory. The directory
// performs no uniqueness check on enrollment numbers; that pre-condition
// lives on MenteeRepository and is the creation flow's responsibility.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	UpdateRole(ctx context.Context, id string, role models.AccountRole) error

	List(ctx context.Context, filters AccountFilters) ([]*models.Account, int64, error)
	ListByRole(ctx context.Context, role models.AccountRole) ([]*models.Account, error)

	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Credential vault; callers enforce owner-only access.
	GetCredentialLink(ctx context.Context, accountID string) (*models.CredentialLink, error)
	SaveCredentialLink(ctx context.Context, link *models.CredentialLink) error
	DeleteCredentialLink(ctx context.Context, accountID string) error
}

// MenteeRepository owns the mentee-scoped sub-records: assignment,
// delegation slots and the profile-edit grant.
type MenteeRepository interface {
	CreateProfile(ctx context.Context, profile *models.MenteeProfile) error
	GetProfile(ctx context.Context, accountID string) (*models.MenteeProfile, error)
	UpdateProfile(ctx context.Context, profile *models.MenteeProfile) error

	List(ctx context.Context, filters MenteeFilters) ([]*models.MenteeProfile, int64, error)
	ListByMentor(ctx context.Context, mentorID string) ([]*models.MenteeProfile, error)
	ListBySlotHolder(ctx context.Context, slot models.DelegationSlot, mentorID string) ([]*models.MenteeProfile, error)

	SetPrimaryMentor(ctx context.Context, accountID string, mentorID *string) error
	SetSlot(ctx context.Context, accountID string, slot models.DelegationSlot, holderID *string) error

	// ReplaceGrant overwrites all grant fields together; SetGrantConsumed
	// flips only the consumed flag.
	ReplaceGrant(ctx context.Context, accountID string, grant models.ProfileEditGrant) error
	SetGrantConsumed(ctx context.Context, accountID string, consumed bool) error

	ExistsByEnrollment(ctx context.Context, enrollmentNo string) (bool, error)
}

// ClassRepository manages mentor-owned cohorts.
type ClassRepository interface {
	Create(ctx context.Context, class *models.MentorClass) error
	GetByID(ctx context.Context, id uint) (*models.MentorClass, error)
	Update(ctx context.Context, class *models.MentorClass) error
	Delete(ctx context.Context, id uint) error
	ListByMentor(ctx context.Context, mentorID string) ([]*models.MentorClass, error)
}
