package services

import (
	"context"
	"time"

	"github.com/mentortrack/mentorship-service/internal/auth"
	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateAccountRequest = validator.AccountCreateRequest
type UpdateAccountRequest = validator.AccountUpdateRequest
type RoleChangeRequest = validator.RoleChangeRequest
type CreateMenteeRequest = validator.MenteeCreateRequest
type UpdateMenteeProfileRequest = validator.MenteeProfileUpdateRequest
type CreateClassRequest = validator.ClassCreateRequest
type UpdateClassRequest = validator.ClassUpdateRequest
type AssignMentorRequest = validator.AssignMentorRequest
type VerifyDelegationRequest = validator.DelegationVerifyRequest
type CommitDelegationRequest = validator.DelegationCommitRequest
type ReleaseDelegationRequest = validator.DelegationReleaseRequest
type GrantRequest = validator.GrantRequest
type BulkGrantRequest = validator.BulkGrantRequest
type SubmitReportRequest = validator.ReportSubmitRequest
type ReviewReportRequest = validator.ReportReviewRequest
type FeedbackRequest = validator.FeedbackRequest
type AskQueryRequest = validator.QueryAskRequest
type AnswerQueryRequest = validator.QueryAnswerRequest
type LinkIdentityRequest = validator.LinkIdentityRequest

type AccountResponse struct {
	*models.Account
}

type AccountListResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Size     int                `json:"size"`
}

type MenteeResponse struct {
	*models.MenteeProfile
	EditAllowed bool `json:"edit_allowed"`
}

type MenteeListResponse struct {
	Mentees []*MenteeResponse `json:"mentees"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

type ReportResponse struct {
	*models.Report
	CanReview bool `json:"can_review"`
}

type ReportListResponse struct {
	Reports []*ReportResponse `json:"reports"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

type QueryResponse struct {
	*models.Query
	CanAnswer bool `json:"can_answer"`
}

type QueryListResponse struct {
	Queries []*QueryResponse `json:"queries"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

// VerificationOutcome classifies a pre-commit delegation check.
type VerificationOutcome string

const (
	// VerificationOK means the email resolved to a mentee whose slot is
	// open for the caller.
	VerificationOK VerificationOutcome = "verified"
	// VerificationHeldBySelf means the caller already holds this exact
	// slot for the resolved mentee.
	VerificationHeldBySelf VerificationOutcome = "already_held_by_self"
	// VerificationHeldByOther means a different mentor occupies the slot.
	VerificationHeldByOther VerificationOutcome = "already_held_by_other"
	// VerificationNotFound means no mentee account matched the email.
	VerificationNotFound VerificationOutcome = "not_found"
)

type VerificationResult struct {
	Outcome VerificationOutcome `json:"outcome"`
	Mentee  *MenteeResponse     `json:"mentee,omitempty"`
	HeldBy  *models.Account     `json:"held_by,omitempty"`
}

// BulkGrantResult reports per-mentee outcomes; one failure never rolls
// back the others.
type BulkGrantResult struct {
	Granted []string          `json:"granted"`
	Failed  map[string]string `json:"failed,omitempty"`
}

type EditWindow struct {
	Allowed   bool       `json:"allowed"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	AllowedBy *string    `json:"allowed_by,omitempty"`
}

// SwitchResult is the outcome of a successful identity switch: a new
// session bound to the linked account.
type SwitchResult struct {
	Session *auth.Session   `json:"session"`
	Account *models.Account `json:"account"`
}

type LinkResponse struct {
	LinkedEmail     string  `json:"linked_email"`
	LinkedAccountID *string `json:"linked_account_id,omitempty"`
}

// ===== SERVICE INTERFACES =====

// DirectoryService owns account registration, role changes and lookups.
type DirectoryService interface {
	CreateAccount(ctx context.Context, req *CreateAccountRequest, actorID string) (*AccountResponse, error)
	CreateMentee(ctx context.Context, req *CreateMenteeRequest, actorID string) (*MenteeResponse, error)
	GetAccount(ctx context.Context, id string) (*AccountResponse, error)
	UpdateAccount(ctx context.Context, id string, req *UpdateAccountRequest, actorID string) (*AccountResponse, error)
	SetRole(ctx context.Context, id string, req *RoleChangeRequest, actorID string) (*AccountResponse, error)

	ListAccounts(ctx context.Context, filters repositories.AccountFilters) (*AccountListResponse, error)
	ListMentors(ctx context.Context) ([]*AccountResponse, error)
	ListMentees(ctx context.Context, filters repositories.MenteeFilters) (*MenteeListResponse, error)
	GetMenteeProfile(ctx context.Context, accountID string) (*MenteeResponse, error)
	UpdateMenteeProfile(ctx context.Context, menteeID string, req *UpdateMenteeProfileRequest, actorID string) (*MenteeResponse, error)

	IsDuplicateEnrollment(ctx context.Context, enrollmentNo string) (bool, error)
}

// ClassService manages mentor-owned cohorts.
type ClassService interface {
	Create(ctx context.Context, req *CreateClassRequest, mentorID string) (*models.MentorClass, error)
	GetByID(ctx context.Context, id uint) (*models.MentorClass, error)
	Update(ctx context.Context, id uint, req *UpdateClassRequest, actorID string) (*models.MentorClass, error)
	Delete(ctx context.Context, id uint, actorID string) error
	ListByMentor(ctx context.Context, mentorID string) ([]*models.MentorClass, error)
}

// DelegationService owns the primary assignment and the two delegation
// slots.
type DelegationService interface {
	AssignPrimaryMentor(ctx context.Context, req *AssignMentorRequest, actorID string) error
	Verify(ctx context.Context, req *VerifyDelegationRequest, actorID string) (*VerificationResult, error)
	Commit(ctx context.Context, req *CommitDelegationRequest, actorID string) error
	Release(ctx context.Context, req *ReleaseDelegationRequest, actorID string) error

	ListMenteesForMentor(ctx context.Context, mentorID string) ([]*MenteeResponse, error)
	ListMenteesForSlotHolder(ctx context.Context, slot models.DelegationSlot, mentorID string) ([]*MenteeResponse, error)
}

// GrantService owns the time-boxed profile-edit window.
type GrantService interface {
	Grant(ctx context.Context, req *GrantRequest, actorID string) (*EditWindow, error)
	BulkGrant(ctx context.Context, req *BulkGrantRequest, actorID string) (*BulkGrantResult, error)
	IsEditable(ctx context.Context, menteeID string) (*EditWindow, error)
	Consume(ctx context.Context, menteeID string) error
	SaveProfile(ctx context.Context, menteeID string, req *UpdateMenteeProfileRequest) (*MenteeResponse, error)
}

// ReportService owns report submission, routing and review.
type ReportService interface {
	Submit(ctx context.Context, req *SubmitReportRequest, authorID string) (*ReportResponse, error)
	Review(ctx context.Context, reportID uint, req *ReviewReportRequest, reviewerID string) (*ReportResponse, error)
	UpdateFeedback(ctx context.Context, reportID uint, req *FeedbackRequest, reviewerID string) (*ReportResponse, error)
	MarkViewed(ctx context.Context, reportID uint, viewerID string) error
	GetByID(ctx context.Context, reportID uint, viewerID string) (*ReportResponse, error)

	ListForRecipient(ctx context.Context, recipientID string, filters repositories.ReportFilters) (*ReportListResponse, error)
	ListByAuthor(ctx context.Context, authorID string, filters repositories.ReportFilters) (*ReportListResponse, error)
	GetStats(ctx context.Context, recipientID string) (*repositories.ReportStats, error)
}

// QueryService owns the mentee-to-mentor question workflow.
type QueryService interface {
	Ask(ctx context.Context, req *AskQueryRequest, menteeID string) (*QueryResponse, error)
	Answer(ctx context.Context, queryID uint, req *AnswerQueryRequest, mentorID string) (*QueryResponse, error)
	GetByID(ctx context.Context, queryID uint, viewerID string) (*QueryResponse, error)

	ListForMentor(ctx context.Context, mentorID string, filters repositories.QueryFilters) (*QueryListResponse, error)
	ListForMentee(ctx context.Context, menteeID string, filters repositories.QueryFilters) (*QueryListResponse, error)
}

// IdentityLinkService owns the dual-identity vault and switch.
type IdentityLinkService interface {
	LinkIdentity(ctx context.Context, req *LinkIdentityRequest, ownerID string) (*LinkResponse, error)
	GetLink(ctx context.Context, ownerID string) (*LinkResponse, error)
	Unlink(ctx context.Context, ownerID string) error
	SwitchTo(ctx context.Context, ownerID, sessionToken string) (*SwitchResult, error)
}

// RosterImportResult reports per-row outcomes of a roster import; one
// rejected row never rolls back the others.
type RosterImportResult struct {
	Created []string          `json:"created"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// RosterService moves mentee rosters and review summaries in and out as
// spreadsheets.
type RosterService interface {
	ImportMenteeRoster(ctx context.Context, data []byte, actorID string) (*RosterImportResult, error)
	ExportMenteeRoster(ctx context.Context, mentorID string) ([]byte, error)
	ExportReportSummary(ctx context.Context, recipientID string, filters repositories.ReportFilters) ([]byte, error)
}

// AuditService exposes the audit trail to admins.
type AuditService interface {
	List(ctx context.Context, filters repositories.AuditFilters, actorID string) ([]*models.AuditEvent, int64, error)
}

// ServiceManager provides access to all services and owns their
// lifecycle.
type ServiceManager interface {
	Directory() DirectoryService
	Class() ClassService
	Delegation() DelegationService
	Grant() GrantService
	Report() ReportService
	Query() QueryService
	Identity() IdentityLinkService
	Roster() RosterService
	Audit() AuditService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}
