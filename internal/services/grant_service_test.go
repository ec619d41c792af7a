package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mentortrack/mentorship-service/internal/events"
	"github.com/mentortrack/mentorship-service/internal/models"
)

func newGrantService(repo *MockRepository, publisher *events.MockEventPublisher) *grantService {
	return &grantService{
		repo:           repo,
		eventPublisher: publisher,
		logger:         testLogger(),
		validator:      newTestValidator(),
	}
}

func activeGrant(issuedBy string, hours int) models.ProfileEditGrant {
	now := time.Now()
	expires := now.Add(time.Duration(hours) * time.Hour)
	return models.ProfileEditGrant{AllowedAt: &now, ExpiresAt: &expires, AllowedBy: &issuedBy}
}

func TestGrant(t *testing.T) {
	ctx := context.Background()

	t.Run("opens an edit window", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newGrantService(repo, publisher)

		window, err := service.Grant(ctx, &GrantRequest{MenteeID: "mentee-1", DurationHours: 48}, "admin-1")
		if err != nil {
			t.Fatalf("Grant failed: %v", err)
		}
		if !window.Allowed {
			t.Error("Expected window to be open")
		}
		if window.ExpiresAt == nil || time.Until(*window.ExpiresAt) > 48*time.Hour {
			t.Errorf("Expected expiry within 48h, got %v", window.ExpiresAt)
		}
		if got := publisher.EventsOfType(events.EventEditGranted); len(got) != 1 {
			t.Errorf("Expected 1 edit-granted event, got %d", len(got))
		}
	})

	t.Run("reissue replaces the previous grant", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		repo.profiles["mentee-1"].EditGrant = models.ProfileEditGrant{Consumed: true}
		service := newGrantService(repo, publisher)

		_, err := service.Grant(ctx, &GrantRequest{MenteeID: "mentee-1", DurationHours: 24}, "admin-1")
		if err != nil {
			t.Fatalf("Grant failed: %v", err)
		}

		profile, _ := repo.Mentee().GetProfile(ctx, "mentee-1")
		if profile.EditGrant.Consumed {
			t.Error("Expected fresh grant to be unconsumed")
		}
		if !profile.EditGrant.Active(time.Now()) {
			t.Error("Expected fresh grant to be active")
		}
	})

	t.Run("zero hours issues an already expired window", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newGrantService(repo, publisher)

		if _, err := service.Grant(ctx, &GrantRequest{MenteeID: "mentee-1", DurationHours: 0}, "admin-1"); err != nil {
			t.Fatalf("Grant failed: %v", err)
		}

		window, err := service.IsEditable(ctx, "mentee-1")
		if err != nil {
			t.Fatalf("IsEditable failed: %v", err)
		}
		if window.Allowed {
			t.Error("Expected zero-hour grant to leave the window closed")
		}
	})

	t.Run("primary mentor grants to their own mentee", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newGrantService(repo, publisher)

		window, err := service.Grant(ctx, &GrantRequest{MenteeID: "mentee-1", DurationHours: 24}, "mentor-1")
		if err != nil {
			t.Fatalf("Grant by primary mentor failed: %v", err)
		}
		if window.AllowedBy == nil || *window.AllowedBy != "mentor-1" {
			t.Errorf("Expected grant issued by mentor-1, got %v", window.AllowedBy)
		}
	})

	t.Run("rejects a mentor who is not the primary", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newGrantService(repo, publisher)

		_, err := service.Grant(ctx, &GrantRequest{MenteeID: "mentee-1", DurationHours: 24}, "mentor-2")
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("rejects a mentee actor", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newGrantService(repo, publisher)

		_, err := service.Grant(ctx, &GrantRequest{MenteeID: "mentee-1", DurationHours: 24}, "mentee-1")
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unknown mentee", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newGrantService(repo, publisher)

		_, err := service.Grant(ctx, &GrantRequest{MenteeID: "nobody", DurationHours: 24}, "admin-1")
		if !errors.Is(err, ErrMenteeNotFound) {
			t.Errorf("Expected ErrMenteeNotFound, got %v", err)
		}
	})

	t.Run("grant to a mentor names the role mismatch", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newGrantService(repo, publisher)

		_, err := service.Grant(ctx, &GrantRequest{MenteeID: "mentor-2", DurationHours: 24}, "admin-1")
		var mismatch *RoleMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("Expected RoleMismatchError, got %v", err)
		}
		if mismatch.Required != "mentee" {
			t.Errorf("Expected required role mentee, got %s", mismatch.Required)
		}
	})
}

func TestBulkGrant(t *testing.T) {
	ctx := context.Background()

	t.Run("one failure does not roll back the batch", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newGrantService(repo, publisher)

		result, err := service.BulkGrant(ctx, &BulkGrantRequest{
			MenteeIDs:     []string{"mentee-1", "nobody"},
			DurationHours: 24,
		}, "admin-1")
		if err != nil {
			t.Fatalf("BulkGrant failed: %v", err)
		}
		if len(result.Granted) != 1 || result.Granted[0] != "mentee-1" {
			t.Errorf("Expected mentee-1 granted, got %v", result.Granted)
		}
		if _, ok := result.Failed["nobody"]; !ok {
			t.Errorf("Expected nobody in failed map, got %v", result.Failed)
		}

		profile, _ := repo.Mentee().GetProfile(ctx, "mentee-1")
		if !profile.EditGrant.Active(time.Now()) {
			t.Error("Expected mentee-1 grant to be active despite the failed entry")
		}
		if got := publisher.EventsOfType(events.EventBulkNotification); len(got) != 1 {
			t.Errorf("Expected 1 bulk notification, got %d", len(got))
		}
	})

	t.Run("all failures publish nothing", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newGrantService(repo, publisher)

		result, err := service.BulkGrant(ctx, &BulkGrantRequest{
			MenteeIDs:     []string{"ghost-1", "ghost-2"},
			DurationHours: 24,
		}, "admin-1")
		if err != nil {
			t.Fatalf("BulkGrant failed: %v", err)
		}
		if len(result.Granted) != 0 || len(result.Failed) != 2 {
			t.Errorf("Expected 0 granted and 2 failed, got %+v", result)
		}
		if got := publisher.GetPublishedEvents(); len(got) != 0 {
			t.Errorf("Expected no events, got %d", len(got))
		}
	})
}

func TestIsEditable(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		grant   models.ProfileEditGrant
		allowed bool
	}{
		{"no grant issued", models.ProfileEditGrant{}, false},
		{"active grant", activeGrant("admin-1", 24), true},
		{"consumed grant", func() models.ProfileEditGrant {
			g := activeGrant("admin-1", 24)
			g.Consumed = true
			return g
		}(), false},
		{"expired grant", activeGrant("admin-1", -1), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, publisher, _, _ := newTestDeps()
			repo.profiles["mentee-1"].EditGrant = tc.grant
			service := newGrantService(repo, publisher)

			window, err := service.IsEditable(ctx, "mentee-1")
			if err != nil {
				t.Fatalf("IsEditable failed: %v", err)
			}
			if window.Allowed != tc.allowed {
				t.Errorf("Expected allowed=%v, got %v", tc.allowed, window.Allowed)
			}
		})
	}
}

func TestSaveProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("applies the edit and consumes the grant", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		repo.profiles["mentee-1"].EditGrant = activeGrant("admin-1", 24)
		service := newGrantService(repo, publisher)

		resp, err := service.SaveProfile(ctx, "mentee-1", &UpdateMenteeProfileRequest{
			EnrollmentNo: strPtr("EN2399"),
			FullName:     strPtr("Mya M. Mentee"),
		})
		if err != nil {
			t.Fatalf("SaveProfile failed: %v", err)
		}
		if resp.EditAllowed {
			t.Error("Expected edit window closed after save")
		}

		profile, _ := repo.Mentee().GetProfile(ctx, "mentee-1")
		if profile.EnrollmentNo != "EN2399" {
			t.Errorf("Expected enrollment EN2399, got %s", profile.EnrollmentNo)
		}
		if !profile.EditGrant.Consumed {
			t.Error("Expected grant consumed in the same transaction")
		}

		account, _ := repo.Account().GetByID(ctx, "mentee-1")
		if account.FullName != "Mya M. Mentee" {
			t.Errorf("Expected account name updated, got %s", account.FullName)
		}
		if got := publisher.EventsOfType(events.EventEditConsumed); len(got) != 1 {
			t.Errorf("Expected 1 edit-consumed event, got %d", len(got))
		}
	})

	t.Run("second save is locked", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		repo.profiles["mentee-1"].EditGrant = activeGrant("admin-1", 24)
		service := newGrantService(repo, publisher)

		if _, err := service.SaveProfile(ctx, "mentee-1", &UpdateMenteeProfileRequest{Year: strPtr("2024")}); err != nil {
			t.Fatalf("First save failed: %v", err)
		}

		_, err := service.SaveProfile(ctx, "mentee-1", &UpdateMenteeProfileRequest{Year: strPtr("2025")})
		if !errors.Is(err, ErrGrantLocked) {
			t.Errorf("Expected ErrGrantLocked on second save, got %v", err)
		}

		profile, _ := repo.Mentee().GetProfile(ctx, "mentee-1")
		if profile.Year != "2024" {
			t.Errorf("Expected year 2024 from first save, got %s", profile.Year)
		}
	})

	t.Run("expired grant rejects the save", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		repo.profiles["mentee-1"].EditGrant = activeGrant("admin-1", -1)
		service := newGrantService(repo, publisher)

		_, err := service.SaveProfile(ctx, "mentee-1", &UpdateMenteeProfileRequest{Year: strPtr("2025")})
		if !errors.Is(err, ErrGrantLocked) {
			t.Errorf("Expected ErrGrantLocked, got %v", err)
		}
	})

	t.Run("no grant rejects the save", func(t *testing.T) {
		repo, publisher, _, _ := newTestDeps()
		service := newGrantService(repo, publisher)

		_, err := service.SaveProfile(ctx, "mentee-1", &UpdateMenteeProfileRequest{Year: strPtr("2025")})
		if !errors.Is(err, ErrGrantLocked) {
			t.Errorf("Expected ErrGrantLocked, got %v", err)
		}
	})
}
