package validator

import (
	"github.com/mentortrack/mentorship-service/internal/models"
)

// AccountCreateRequest represents the request structure for registering
// a mentor or admin account
type AccountCreateRequest struct {
	FullName string             `json:"full_name" validate:"required,min=1,max=100"`
	Email    string             `json:"email" validate:"required,email"`
	Secret   string             `json:"secret" validate:"required,secret_strength"`
	Role     models.AccountRole `json:"role" validate:"required,account_role"`
	Phone    *string            `json:"phone" validate:"omitempty,max=20"`
}

// AccountUpdateRequest represents editable account fields
type AccountUpdateRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	PhotoRef *string `json:"photo_ref" validate:"omitempty,max=500"`
}

// RoleChangeRequest toggles a mentor between mentor and admin-capable
type RoleChangeRequest struct {
	Role models.AccountRole `json:"role" validate:"required,account_role"`
}

// MenteeCreateRequest registers a mentee account with its profile in one step
type MenteeCreateRequest struct {
	FullName     string  `json:"full_name" validate:"required,min=1,max=100"`
	Email        string  `json:"email" validate:"required,email"`
	Secret       string  `json:"secret" validate:"required,secret_strength"`
	EnrollmentNo string  `json:"enrollment_no" validate:"required,enrollment_no"`
	Year         string  `json:"year" validate:"required,max=20"`
	ClassID      *uint   `json:"class_id"`
	Semester     *string `json:"semester" validate:"omitempty,max=20"`
	MentorID     *string `json:"mentor_id"`
}

// MenteeProfileUpdateRequest carries the locked-field edit a mentee performs
// while holding an active grant
type MenteeProfileUpdateRequest struct {
	FullName     *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	EnrollmentNo *string `json:"enrollment_no" validate:"omitempty,enrollment_no"`
	Year         *string `json:"year" validate:"omitempty,max=20"`
	Semester     *string `json:"semester" validate:"omitempty,max=20"`
	Phone        *string `json:"phone" validate:"omitempty,max=20"`
}

// ClassCreateRequest creates a mentor-owned cohort
type ClassCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Year string `json:"year" validate:"required,max=20"`
}

// ClassUpdateRequest renames a cohort
type ClassUpdateRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=100"`
	Year *string `json:"year" validate:"omitempty,max=20"`
}

// AssignMentorRequest sets or overwrites a mentee's primary mentor
type AssignMentorRequest struct {
	MenteeID string `json:"mentee_id" validate:"required"`
	MentorID string `json:"mentor_id" validate:"required"`
}

// DelegationVerifyRequest resolves a mentee email against a slot before
// the requesting mentor commits themselves
type DelegationVerifyRequest struct {
	MenteeEmail string                `json:"mentee_email" validate:"required,email"`
	Slot        models.DelegationSlot `json:"slot" validate:"required,delegation_slot"`
}

// DelegationCommitRequest places the requesting mentor into a verified slot
type DelegationCommitRequest struct {
	MenteeID string                `json:"mentee_id" validate:"required"`
	Slot     models.DelegationSlot `json:"slot" validate:"required,delegation_slot"`
}

// DelegationReleaseRequest vacates a slot
type DelegationReleaseRequest struct {
	MenteeID string                `json:"mentee_id" validate:"required"`
	Slot     models.DelegationSlot `json:"slot" validate:"required,delegation_slot"`
}

// GrantRequest issues a time-boxed profile edit window to one mentee.
// Zero hours is a valid revocation: the window opens already expired.
type GrantRequest struct {
	MenteeID      string `json:"mentee_id" validate:"required"`
	DurationHours int    `json:"duration_hours" validate:"grant_duration"`
}

// BulkGrantRequest issues the same window to several mentees; each grant
// succeeds or fails independently
type BulkGrantRequest struct {
	MenteeIDs     []string `json:"mentee_ids" validate:"required,min=1,max=200,dive,required"`
	DurationHours int      `json:"duration_hours" validate:"grant_duration"`
}

// ReportSubmitRequest submits a report artifact for review. WantedRoles
// narrows the recipient set; an empty list addresses every supervisor.
type ReportSubmitRequest struct {
	Title       string                 `json:"title" validate:"required,min=1,max=200"`
	Description *string                `json:"description" validate:"omitempty,max=2000"`
	BlobRef     string                 `json:"blob_ref" validate:"required,max=500"`
	WantedRoles []models.RecipientRole `json:"wanted_roles" validate:"omitempty,max=3,dive,recipient_role"`
}

// ReportReviewRequest records the recipient's decision
type ReportReviewRequest struct {
	Status   models.ReportStatus `json:"status" validate:"required,review_status"`
	Feedback *string             `json:"feedback" validate:"omitempty,max=2000"`
}

// FeedbackRequest updates feedback on an already-closed report
type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,max=2000"`
}

// QueryAskRequest sends a question to the mentee's current primary mentor
type QueryAskRequest struct {
	Subject  string `json:"subject" validate:"required,min=1,max=200"`
	Question string `json:"question" validate:"required,min=1,max=4000"`
}

// QueryAnswerRequest answers or revises the answer to a query
type QueryAnswerRequest struct {
	Answer string `json:"answer" validate:"required,min=1,max=4000"`
}

// LinkIdentityRequest stores the caller's second-identity credentials
type LinkIdentityRequest struct {
	LinkedEmail  string `json:"linked_email" validate:"required,email"`
	LinkedSecret string `json:"linked_secret" validate:"required,secret_strength"`
}
