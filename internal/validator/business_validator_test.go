package validator

import (
	"testing"
	"time"

	"github.com/mentortrack/mentorship-service/internal/models"
)

func TestSecretStrength(t *testing.T) {
	v := New()

	cases := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"long enough", "longenough", false},
		{"exactly eight", "eight888", false},
		{"too short", "short", true},
		{"empty", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &AccountCreateRequest{
				FullName: "Test Mentor",
				Email:    "test@example.com",
				Secret:   tc.secret,
				Role:     models.RoleMentor,
			}
			errs := v.Validate(req)
			if tc.wantErr && !errs.HasErrors() {
				t.Error("Expected validation failure")
			}
			if !tc.wantErr && errs.HasErrors() {
				t.Errorf("Expected valid request, got %v", errs)
			}
		})
	}
}

func TestGrantDuration(t *testing.T) {
	v := New()

	cases := []struct {
		hours   int
		wantErr bool
	}{
		{1, false},
		{24, false},
		{720, false},
		{0, false},
		{721, true},
		{-5, true},
	}

	for _, tc := range cases {
		errs := v.Validate(&GrantRequest{MenteeID: "m1", DurationHours: tc.hours})
		if tc.wantErr && !errs.HasErrors() {
			t.Errorf("Expected %d hours to fail", tc.hours)
		}
		if !tc.wantErr && errs.HasErrors() {
			t.Errorf("Expected %d hours to pass, got %v", tc.hours, errs)
		}
	}
}

func TestEnrollmentNo(t *testing.T) {
	v := New()

	cases := []struct {
		no      string
		wantErr bool
	}{
		{"EN2301", false},
		{"2023CS042", false},
		{"ab1", true},
		{"EN 2301", true},
		{"EN-2301", true},
	}

	for _, tc := range cases {
		req := &MenteeCreateRequest{
			FullName:     "Test Mentee",
			Email:        "mentee@example.com",
			Secret:       "longenough",
			EnrollmentNo: tc.no,
			Year:         "2023",
		}
		errs := v.Validate(req)
		if tc.wantErr && !errs.HasErrors() {
			t.Errorf("Expected %q to fail", tc.no)
		}
		if !tc.wantErr && errs.HasErrors() {
			t.Errorf("Expected %q to pass, got %v", tc.no, errs)
		}
	}
}

func TestDelegationSlot(t *testing.T) {
	v := New()

	valid := &DelegationCommitRequest{MenteeID: "m1", Slot: models.SlotGuide}
	if errs := v.Validate(valid); errs.HasErrors() {
		t.Errorf("Expected guide slot to pass, got %v", errs)
	}

	invalid := &DelegationCommitRequest{MenteeID: "m1", Slot: models.DelegationSlot("supervisor")}
	if errs := v.Validate(invalid); !errs.HasErrors() {
		t.Error("Expected unknown slot to fail")
	}
}

func TestReviewStatus(t *testing.T) {
	v := New()

	for _, status := range []models.ReportStatus{models.ReportApproved, models.ReportRejected} {
		if errs := v.Validate(&ReportReviewRequest{Status: status}); errs.HasErrors() {
			t.Errorf("Expected %s to pass, got %v", status, errs)
		}
	}

	// A review may only close a report, never set it back to pending.
	if errs := v.Validate(&ReportReviewRequest{Status: models.ReportPending}); !errs.HasErrors() {
		t.Error("Expected pending to fail as a review decision")
	}
}

func TestValidateReportReview(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("closing decisions pass", func(t *testing.T) {
		for _, status := range []models.ReportStatus{models.ReportApproved, models.ReportRejected} {
			errs := bv.ValidateReportReview(&ReportReviewRequest{Status: status})
			if errs.HasErrors() {
				t.Errorf("Expected %s decision to pass, got %v", status, errs)
			}
		}
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		errs := bv.ValidateReportReview(&ReportReviewRequest{Status: models.ReportPending})
		if !errs.HasErrors() {
			t.Error("Expected pending to be rejected as a review decision")
		}
	})
}

func TestValidateRoleChange(t *testing.T) {
	bv := NewBusinessValidator()

	cases := []struct {
		name      string
		current   models.AccountRole
		requested models.AccountRole
		wantErr   bool
	}{
		{"mentor to admin+mentor", models.RoleMentor, models.RoleAdminMentor, false},
		{"admin+mentor to mentor", models.RoleAdminMentor, models.RoleMentor, false},
		{"mentor to admin", models.RoleMentor, models.RoleAdmin, true},
		{"mentor to mentee", models.RoleMentor, models.RoleMentee, true},
		{"mentee to mentor", models.RoleMentee, models.RoleMentor, true},
		{"admin to mentor", models.RoleAdmin, models.RoleMentor, true},
		{"mentor to mentor", models.RoleMentor, models.RoleMentor, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := bv.ValidateRoleChange(tc.current, tc.requested)
			if tc.wantErr && !errs.HasErrors() {
				t.Error("Expected role change to be rejected")
			}
			if !tc.wantErr && errs.HasErrors() {
				t.Errorf("Expected role change to pass, got %v", errs)
			}
		})
	}
}

func TestGrantWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	allowedAt, expiresAt := GrantWindow(now, 48)

	if !allowedAt.Equal(now) {
		t.Errorf("Expected window anchored at now, got %v", allowedAt)
	}
	if want := now.Add(48 * time.Hour); !expiresAt.Equal(want) {
		t.Errorf("Expected expiry %v, got %v", want, expiresAt)
	}
}
