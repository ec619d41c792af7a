package validator

import (
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/mentortrack/mentorship-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateMenteeCreate validates mentee registration business rules
func (bv *BusinessValidator) ValidateMenteeCreate(req *MenteeCreateRequest) ValidationErrors {
	var errors ValidationErrors

	// Basic struct validation
	errors = append(errors, bv.Validate(req)...)

	// Enrollment numbers are stored upper-case
	if req.EnrollmentNo != strings.ToUpper(req.EnrollmentNo) {
		errors = append(errors, ValidationError{
			Field:   "enrollment_no",
			Message: "must be upper-case",
			Value:   req.EnrollmentNo,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateGrant validates a profile-edit grant request. Zero hours is
// allowed and acts as a revocation.
func (bv *BusinessValidator) ValidateGrant(req *GrantRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateReportReview checks the shape of a review decision. Whether the
// report is still open is the service's concern; a decision against a
// closed report degrades to a feedback edit there.
func (bv *BusinessValidator) ValidateReportReview(req *ReportReviewRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateRoleChange limits role toggling to the mentor/admin+mentor pair.
// Mentee accounts never change role.
func (bv *BusinessValidator) ValidateRoleChange(current, requested models.AccountRole) ValidationErrors {
	var errors ValidationErrors

	if current == models.RoleMentee || requested == models.RoleMentee {
		errors = append(errors, ValidationError{
			Field:   "role",
			Message: "mentee role cannot be changed",
			Value:   requested,
			Rule:    "business_logic",
		})
		return errors
	}

	allowed := map[models.AccountRole][]models.AccountRole{
		models.RoleMentor:      {models.RoleAdminMentor},
		models.RoleAdminMentor: {models.RoleMentor},
	}

	for _, next := range allowed[current] {
		if requested == next {
			return errors
		}
	}

	errors = append(errors, ValidationError{
		Field:   "role",
		Message: "role change not permitted",
		Value:   requested,
		Rule:    "business_logic",
	})

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Secret strength (minimum 8 characters)
	bv.validate.RegisterValidation("secret_strength", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) >= 8
	})

	// Grant duration (0-720 hours; zero issues an already-expired window)
	bv.validate.RegisterValidation("grant_duration", func(fl validator.FieldLevel) bool {
		hours := fl.Field().Int()
		return hours >= 0 && hours <= 720
	})

	// Enrollment number format (4-20 alphanumeric characters)
	bv.validate.RegisterValidation("enrollment_no", func(fl validator.FieldLevel) bool {
		no := strings.TrimSpace(fl.Field().String())
		if len(no) < 4 || len(no) > 20 {
			return false
		}
		for _, r := range no {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
		return true
	})

	// Account role validation
	bv.validate.RegisterValidation("account_role", func(fl validator.FieldLevel) bool {
		return models.AccountRole(fl.Field().String()).Valid()
	})

	// Delegation slot validation
	bv.validate.RegisterValidation("delegation_slot", func(fl validator.FieldLevel) bool {
		return models.DelegationSlot(fl.Field().String()).Valid()
	})

	// Recipient role validation
	bv.validate.RegisterValidation("recipient_role", func(fl validator.FieldLevel) bool {
		return models.RecipientRole(fl.Field().String()).Valid()
	})

	// Review decisions may only close a report
	bv.validate.RegisterValidation("review_status", func(fl validator.FieldLevel) bool {
		status := models.ReportStatus(fl.Field().String())
		return status == models.ReportApproved || status == models.ReportRejected
	})
}

// GrantWindow computes the edit window for a duration in hours, anchored
// at now.
func GrantWindow(now time.Time, durationHours int) (allowedAt, expiresAt time.Time) {
	return now, now.Add(time.Duration(durationHours) * time.Hour)
}
