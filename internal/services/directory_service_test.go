package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mentortrack/mentorship-service/internal/events"
	"github.com/mentortrack/mentorship-service/internal/models"
)

func newDirectoryService(repo *MockRepository, authenticator *mockAuthenticator, publisher *events.MockEventPublisher) *directoryService {
	return &directoryService{
		repo:           repo,
		authenticator:  authenticator,
		eventPublisher: publisher,
		logger:         testLogger(),
		validator:      newTestValidator(),
	}
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a mentor keyed by the provider ID", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newDirectoryService(repo, newMockAuthenticator(), publisher)

		resp, err := service.CreateAccount(ctx, &CreateAccountRequest{
			FullName: "Nia Newmentor",
			Email:    "nia@mentortrack.io",
			Secret:   "nia-secret-1",
			Role:     models.RoleMentor,
		}, "admin-1")
		if err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
		if resp.ID == "" {
			t.Error("Expected provider-assigned account ID")
		}
		if resp.Role != models.RoleMentor {
			t.Errorf("Expected mentor role, got %s", resp.Role)
		}
		if got := publisher.EventsOfType(events.EventAccountCreated); len(got) != 1 {
			t.Errorf("Expected 1 account-created event, got %d", len(got))
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newDirectoryService(repo, newMockAuthenticator(), publisher)

		_, err := service.CreateAccount(ctx, &CreateAccountRequest{
			FullName: "Shadow Mina",
			Email:    "mina@mentortrack.io",
			Secret:   "another-secret-1",
			Role:     models.RoleMentor,
		}, "admin-1")
		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("Expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("mentee role goes through CreateMentee instead", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newDirectoryService(repo, newMockAuthenticator(), publisher)

		_, err := service.CreateAccount(ctx, &CreateAccountRequest{
			FullName: "Misplaced Mentee",
			Email:    "misplaced@mentortrack.io",
			Secret:   "whatever-secret",
			Role:     models.RoleMentee,
		}, "admin-1")
		var mismatch *RoleMismatchError
		if !errors.As(err, &mismatch) {
			t.Errorf("Expected RoleMismatchError, got %v", err)
		}
	})

	t.Run("non-admin actor is rejected", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newDirectoryService(repo, newMockAuthenticator(), publisher)

		_, err := service.CreateAccount(ctx, &CreateAccountRequest{
			FullName: "Nia Newmentor",
			Email:    "nia@mentortrack.io",
			Secret:   "nia-secret-1",
			Role:     models.RoleMentor,
		}, "mentor-1")
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})
}

func TestCreateMentee(t *testing.T) {
	ctx := context.Background()

	menteeReq := func() *CreateMenteeRequest {
		return &CreateMenteeRequest{
			FullName:     "Noor Newmentee",
			Email:        "noor@mentortrack.io",
			Secret:       "noor-secret-1",
			EnrollmentNo: "EN2402",
			Year:         "2024",
			MentorID:     strPtr("mentor-1"),
		}
	}

	t.Run("creates account and profile together", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newDirectoryService(repo, newMockAuthenticator(), publisher)

		resp, err := service.CreateMentee(ctx, menteeReq(), "admin-1")
		if err != nil {
			t.Fatalf("CreateMentee failed: %v", err)
		}
		if resp.EnrollmentNo != "EN2402" {
			t.Errorf("Expected enrollment EN2402, got %s", resp.EnrollmentNo)
		}
		if resp.EditAllowed {
			t.Error("Expected no edit window on a fresh mentee")
		}

		account, err := repo.Account().GetByID(ctx, resp.AccountID)
		if err != nil {
			t.Fatalf("Expected directory account, got %v", err)
		}
		if account.Role != models.RoleMentee {
			t.Errorf("Expected mentee role, got %s", account.Role)
		}
		if got := publisher.EventsOfType(events.EventMenteeEnrolled); len(got) != 1 {
			t.Errorf("Expected 1 mentee-enrolled event, got %d", len(got))
		}
	})

	t.Run("enrollment numbers are normalized before the duplicate check", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newDirectoryService(repo, newMockAuthenticator(), publisher)

		req := menteeReq()
		req.EnrollmentNo = "  en2301 "

		_, err := service.CreateMentee(ctx, req, "admin-1")
		var dup *DuplicateEnrollmentError
		if !errors.As(err, &dup) {
			t.Fatalf("Expected DuplicateEnrollmentError, got %v", err)
		}
		if dup.EnrollmentNo != "EN2301" {
			t.Errorf("Expected normalized enrollment EN2301, got %s", dup.EnrollmentNo)
		}
		if !errors.Is(err, ErrConflict) {
			t.Error("Expected DuplicateEnrollmentError to match ErrConflict")
		}
	})

	t.Run("a mentor creator becomes the primary mentor by default", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newDirectoryService(repo, newMockAuthenticator(), publisher)

		req := menteeReq()
		req.MentorID = nil

		resp, err := service.CreateMentee(ctx, req, "mentor-2")
		if err != nil {
			t.Fatalf("CreateMentee by mentor failed: %v", err)
		}
		if resp.PrimaryMentorID == nil || *resp.PrimaryMentorID != "mentor-2" {
			t.Errorf("Expected mentor-2 as primary mentor, got %v", resp.PrimaryMentorID)
		}
	})

	t.Run("a mentee cannot create mentees", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newDirectoryService(repo, newMockAuthenticator(), publisher)

		_, err := service.CreateMentee(ctx, menteeReq(), "mentee-1")
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unknown mentor is rejected before registration", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		authenticator := newMockAuthenticator()
		service := newDirectoryService(repo, authenticator, publisher)

		req := menteeReq()
		req.MentorID = strPtr("nobody")

		_, err := service.CreateMentee(ctx, req, "admin-1")
		if !errors.Is(err, ErrMentorNotFound) {
			t.Errorf("Expected ErrMentorNotFound, got %v", err)
		}
		if len(authenticator.ids) != 0 {
			t.Error("Expected no provider registration for a rejected mentee")
		}
	})
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		accountID string
		requested models.AccountRole
		wantErr   bool
	}{
		{"mentor promoted to admin+mentor", "mentor-1", models.RoleAdminMentor, false},
		{"mentor to plain admin is not a toggle", "mentor-1", models.RoleAdmin, true},
		{"mentee role is immutable", "mentee-1", models.RoleMentor, true},
		{"mentor to mentee is never allowed", "mentor-1", models.RoleMentee, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, publisher, _, _ := newTestDeps()
			service := newDirectoryService(repo, newMockAuthenticator(), publisher)

			resp, err := service.SetRole(ctx, tc.accountID, &RoleChangeRequest{Role: tc.requested}, "admin-1")
			if tc.wantErr {
				if err == nil {
					t.Fatal("Expected role change to be rejected")
				}
				return
			}
			if err != nil {
				t.Fatalf("SetRole failed: %v", err)
			}
			if resp.Role != tc.requested {
				t.Errorf("Expected role %s, got %s", tc.requested, resp.Role)
			}
			if got := publisher.EventsOfType(events.EventRoleChanged); len(got) != 1 {
				t.Errorf("Expected 1 role-changed event, got %d", len(got))
			}
		})
	}

	t.Run("demotes admin+mentor back to mentor", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		repo.accounts["mentor-1"].Role = models.RoleAdminMentor
		service := newDirectoryService(repo, newMockAuthenticator(), publisher)

		resp, err := service.SetRole(ctx, "mentor-1", &RoleChangeRequest{Role: models.RoleMentor}, "admin-1")
		if err != nil {
			t.Fatalf("SetRole failed: %v", err)
		}
		if resp.Role != models.RoleMentor {
			t.Errorf("Expected mentor role, got %s", resp.Role)
		}

		audits, _, _ := repo.Audit().List(ctx, auditFiltersFor(AuditRoleChanged))
		if len(audits) != 1 {
			t.Errorf("Expected 1 audit event, got %d", len(audits))
		}
	})
}

func TestListMentors(t *testing.T) {
	ctx := context.Background()

	repo, publisher, _, _ := newTestDeps()
	repo.accounts["mentor-1"].Role = models.RoleAdminMentor
	service := newDirectoryService(repo, newMockAuthenticator(), publisher)

	mentors, err := service.ListMentors(ctx)
	if err != nil {
		t.Fatalf("ListMentors failed: %v", err)
	}
	if len(mentors) != 2 {
		t.Errorf("Expected both mentor-capable accounts, got %d", len(mentors))
	}
	for _, mentor := range mentors {
		if !mentor.Role.IsMentorCapable() {
			t.Errorf("Expected mentor-capable role, got %s", mentor.Role)
		}
	}
}

func TestIsDuplicateEnrollment(t *testing.T) {
	ctx := context.Background()

	repo, publisher, _, _ := newTestDeps()
	service := newDirectoryService(repo, newMockAuthenticator(), publisher)

	taken, err := service.IsDuplicateEnrollment(ctx, "en2301")
	if err != nil {
		t.Fatalf("IsDuplicateEnrollment failed: %v", err)
	}
	if !taken {
		t.Error("Expected EN2301 to be reported as taken")
	}

	free, err := service.IsDuplicateEnrollment(ctx, "EN9999")
	if err != nil {
		t.Fatalf("IsDuplicateEnrollment failed: %v", err)
	}
	if free {
		t.Error("Expected EN9999 to be free")
	}
}

func TestUpdateMenteeProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("primary mentor edits without a grant", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newDirectoryService(repo, newMockAuthenticator(), publisher)

		resp, err := service.UpdateMenteeProfile(ctx, "mentee-1", &UpdateMenteeProfileRequest{
			Year:     strPtr("2024"),
			Semester: strPtr("S2"),
		}, "mentor-1")
		if err != nil {
			t.Fatalf("UpdateMenteeProfile failed: %v", err)
		}
		if resp.Year != "2024" {
			t.Errorf("Expected year 2024, got %s", resp.Year)
		}
		if repo.profiles["mentee-1"].Semester == nil || *repo.profiles["mentee-1"].Semester != "S2" {
			t.Error("Expected semester persisted")
		}
		if repo.profiles["mentee-1"].EditGrant.Consumed {
			t.Error("Supervisor edit must not consume the mentee's grant")
		}
	})

	t.Run("admin edits any mentee", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newDirectoryService(repo, newMockAuthenticator(), publisher)

		if _, err := service.UpdateMenteeProfile(ctx, "mentee-1", &UpdateMenteeProfileRequest{
			FullName: strPtr("Mya M. Mentee"),
		}, "admin-1"); err != nil {
			t.Fatalf("UpdateMenteeProfile failed: %v", err)
		}
		if repo.accounts["mentee-1"].FullName != "Mya M. Mentee" {
			t.Errorf("Expected account name updated, got %s", repo.accounts["mentee-1"].FullName)
		}
	})

	t.Run("non-supervising mentor is rejected", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newDirectoryService(repo, newMockAuthenticator(), publisher)

		_, err := service.UpdateMenteeProfile(ctx, "mentee-1", &UpdateMenteeProfileRequest{
			Year: strPtr("2024"),
		}, "mentor-2")
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("Expected ErrForbidden, got %v", err)
		}
		if repo.profiles["mentee-1"].Year != "2023" {
			t.Error("Expected the profile to stay unchanged")
		}
	})

	t.Run("guide holder may edit", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		repo.profiles["mentee-1"].GuideID = strPtr("mentor-2")
		service := newDirectoryService(repo, newMockAuthenticator(), publisher)

		if _, err := service.UpdateMenteeProfile(ctx, "mentee-1", &UpdateMenteeProfileRequest{
			Year: strPtr("2024"),
		}, "mentor-2"); err != nil {
			t.Fatalf("UpdateMenteeProfile failed: %v", err)
		}
	})
}
