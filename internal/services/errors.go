package services

import (
	"errors"
	"fmt"
)

// ===== GENERIC ERRORS =====

var (
	ErrValidationFailed        = errors.New("validation failed")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrBadRequest              = errors.New("bad request")
	ErrConflict                = errors.New("resource conflict")
)

// ===== DOMAIN ERRORS =====

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrMenteeNotFound  = errors.New("mentee not found")
	ErrMentorNotFound  = errors.New("mentor not found")
	ErrClassNotFound   = errors.New("class not found")
	ErrReportNotFound  = errors.New("report not found")
	ErrQueryNotFound   = errors.New("query not found")
	ErrLinkNotFound    = errors.New("no linked identity")

	// ErrEmailTaken means the email already belongs to a directory account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrNoMentorAssigned means the mentee has no primary mentor, so a
	// query has no destination.
	ErrNoMentorAssigned = errors.New("no primary mentor assigned")

	// ErrNoRecipients means none of the mentee's supervisory roles are
	// occupied, so a report submission would reach nobody.
	ErrNoRecipients = errors.New("no recipients for report")

	// ErrReportClosed means the review decision was already made; only
	// feedback may still change.
	ErrReportClosed = errors.New("report review already closed")

	// ErrGrantLocked means the mentee's edit window is expired, consumed
	// or was never issued.
	ErrGrantLocked = errors.New("profile edit not allowed")

	// ErrAuthenticationFailed means the identity provider rejected the
	// linked credentials during a switch.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// PermissionError carries the who/what/why of a denied operation.
type PermissionError struct {
	UserID     string
	ResourceID interface{}
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %v: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrForbidden
}

func NewPermissionError(userID string, resourceID interface{}, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// RoleMismatchError is returned when an account exists but does not hold
// the role the operation requires.
type RoleMismatchError struct {
	AccountID string
	Required  string
	Actual    string
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("account %s holds role %s, operation requires %s", e.AccountID, e.Actual, e.Required)
}

func (e *RoleMismatchError) Is(target error) bool {
	return target == ErrForbidden
}

// SlotOccupiedError is returned when a delegation commit targets a slot
// already held by a different mentor.
type SlotOccupiedError struct {
	MenteeID string
	Slot     string
	HeldBy   string
}

func (e *SlotOccupiedError) Error() string {
	return fmt.Sprintf("slot %s for mentee %s is held by %s", e.Slot, e.MenteeID, e.HeldBy)
}

func (e *SlotOccupiedError) Is(target error) bool {
	return target == ErrConflict
}

// DuplicateEnrollmentError is returned when a mentee registration reuses
// an enrollment number already present in the directory.
type DuplicateEnrollmentError struct {
	EnrollmentNo string
}

func (e *DuplicateEnrollmentError) Error() string {
	return fmt.Sprintf("enrollment number %s is already registered", e.EnrollmentNo)
}

func (e *DuplicateEnrollmentError) Is(target error) bool {
	return target == ErrConflict
}
