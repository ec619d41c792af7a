package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mentortrack/mentorship-service/internal/auth"
	"github.com/mentortrack/mentorship-service/internal/events"
	"github.com/mentortrack/mentorship-service/internal/models"
)

const testSealKey = "5d41402abc4b2a76b9719d911017c5925d41402abc4b2a76b9719d911017c592"

type identityTestEnv struct {
	repo          *MockRepository
	publisher     *events.MockEventPublisher
	authenticator *mockAuthenticator
	sessions      *mockSessionStore
	service       IdentityLinkService
}

func newIdentityEnv(t *testing.T) *identityTestEnv {
	t.Helper()

	repo, publisher, v, logger := newTestDeps()
	authenticator := newMockAuthenticator()
	sessions := newMockSessionStore()

	// mentor-1 works under two identities; mentor-2 is the second one.
	authenticator.register("mina@mentortrack.io", "mina-secret-1")
	authenticator.register("max@mentortrack.io", "second-secret-1")

	service, err := NewIdentityLinkService(repo, authenticator, sessions, publisher, logger, v, testSealKey)
	if err != nil {
		t.Fatalf("NewIdentityLinkService failed: %v", err)
	}

	return &identityTestEnv{
		repo:          repo,
		publisher:     publisher,
		authenticator: authenticator,
		sessions:      sessions,
		service:       service,
	}
}

func TestNewIdentityLinkService(t *testing.T) {
	repo, publisher, v, logger := newTestDeps()

	cases := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid 32-byte key", testSealKey, false},
		{"short key", "abcdef", true},
		{"not hex", strings.Repeat("zz", 32), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewIdentityLinkService(repo, newMockAuthenticator(), newMockSessionStore(), publisher, logger, v, tc.key)
			if tc.wantErr && err == nil {
				t.Error("Expected constructor to fail")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected constructor to succeed, got %v", err)
			}
		})
	}
}

func TestLinkIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("verifies and seals the linked secret", func(t *testing.T) {
		env := newIdentityEnv(t)

		resp, err := env.service.LinkIdentity(ctx, &LinkIdentityRequest{
			LinkedEmail:  "max@mentortrack.io",
			LinkedSecret: "second-secret-1",
		}, "mentor-1")
		if err != nil {
			t.Fatalf("LinkIdentity failed: %v", err)
		}
		if resp.LinkedAccountID == nil || *resp.LinkedAccountID != "mentor-2" {
			t.Errorf("Expected link resolved to mentor-2, got %v", resp.LinkedAccountID)
		}

		link, _ := env.repo.Account().GetCredentialLink(ctx, "mentor-1")
		if bytes.Contains(link.LinkedSecretEnc, []byte("second-secret-1")) {
			t.Error("Expected the stored secret to be sealed, found plaintext")
		}
	})

	t.Run("wrong secret stores nothing", func(t *testing.T) {
		env := newIdentityEnv(t)

		_, err := env.service.LinkIdentity(ctx, &LinkIdentityRequest{
			LinkedEmail:  "max@mentortrack.io",
			LinkedSecret: "wrong-secret-1",
		}, "mentor-1")
		if !errors.Is(err, ErrAuthenticationFailed) {
			t.Fatalf("Expected ErrAuthenticationFailed, got %v", err)
		}
		if _, err := env.repo.Account().GetCredentialLink(ctx, "mentor-1"); err == nil {
			t.Error("Expected no vault entry after failed verification")
		}
	})

	t.Run("cannot link to the owner's own email", func(t *testing.T) {
		env := newIdentityEnv(t)

		_, err := env.service.LinkIdentity(ctx, &LinkIdentityRequest{
			LinkedEmail:  "mina@mentortrack.io",
			LinkedSecret: "mina-secret-1",
		}, "mentor-1")
		if !errors.Is(err, ErrBadRequest) {
			t.Errorf("Expected ErrBadRequest, got %v", err)
		}
	})
}

func TestUnlink(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the vault entry", func(t *testing.T) {
		env := newIdentityEnv(t)

		if _, err := env.service.LinkIdentity(ctx, &LinkIdentityRequest{
			LinkedEmail:  "max@mentortrack.io",
			LinkedSecret: "second-secret-1",
		}, "mentor-1"); err != nil {
			t.Fatalf("LinkIdentity failed: %v", err)
		}

		if err := env.service.Unlink(ctx, "mentor-1"); err != nil {
			t.Fatalf("Unlink failed: %v", err)
		}
		if _, err := env.service.GetLink(ctx, "mentor-1"); !errors.Is(err, ErrLinkNotFound) {
			t.Errorf("Expected ErrLinkNotFound after unlink, got %v", err)
		}
	})

	t.Run("unlink without a link", func(t *testing.T) {
		env := newIdentityEnv(t)

		if err := env.service.Unlink(ctx, "mentor-1"); !errors.Is(err, ErrLinkNotFound) {
			t.Errorf("Expected ErrLinkNotFound, got %v", err)
		}
	})
}

func TestSwitchTo(t *testing.T) {
	ctx := context.Background()

	link := func(env *identityTestEnv) {
		if _, err := env.service.LinkIdentity(ctx, &LinkIdentityRequest{
			LinkedEmail:  "max@mentortrack.io",
			LinkedSecret: "second-secret-1",
		}, "mentor-1"); err != nil {
			panic(err)
		}
	}

	startSession := func(env *identityTestEnv) *auth.Session {
		session := env.sessions.NewSession("mentor-1", "mina@mentortrack.io", string(models.RoleMentor))
		if err := env.sessions.Create(ctx, session); err != nil {
			panic(err)
		}
		return session
	}

	t.Run("switch issues a session for the linked account", func(t *testing.T) {
		env := newIdentityEnv(t)
		link(env)
		old := startSession(env)

		result, err := env.service.SwitchTo(ctx, "mentor-1", old.Token)
		if err != nil {
			t.Fatalf("SwitchTo failed: %v", err)
		}
		if result.Account.ID != "mentor-2" {
			t.Errorf("Expected switch to mentor-2, got %s", result.Account.ID)
		}
		if result.Session.AccountID != "mentor-2" {
			t.Errorf("Expected new session bound to mentor-2, got %s", result.Session.AccountID)
		}

		if _, err := env.sessions.Get(ctx, old.Token); !errors.Is(err, auth.ErrSessionNotFound) {
			t.Error("Expected the old session to be gone")
		}
		if _, err := env.sessions.Get(ctx, result.Session.Token); err != nil {
			t.Errorf("Expected the new session to be stored, got %v", err)
		}
		if got := env.publisher.EventsOfType(events.EventIdentitySwitched); len(got) != 1 {
			t.Errorf("Expected 1 identity-switched event, got %d", len(got))
		}
	})

	t.Run("failed switch leaves the caller signed out", func(t *testing.T) {
		env := newIdentityEnv(t)
		link(env)
		old := startSession(env)

		// The linked identity's secret changed at the provider after
		// linking, so the stored credentials no longer work.
		env.authenticator.register("max@mentortrack.io", "rotated-secret-1")

		_, err := env.service.SwitchTo(ctx, "mentor-1", old.Token)
		if !errors.Is(err, ErrAuthenticationFailed) {
			t.Fatalf("Expected ErrAuthenticationFailed, got %v", err)
		}

		if _, err := env.sessions.Get(ctx, old.Token); !errors.Is(err, auth.ErrSessionNotFound) {
			t.Error("Expected the old session to stay deleted after the failed switch")
		}
	})

	t.Run("switch without a link", func(t *testing.T) {
		env := newIdentityEnv(t)
		old := startSession(env)

		_, err := env.service.SwitchTo(ctx, "mentor-1", old.Token)
		if !errors.Is(err, ErrLinkNotFound) {
			t.Errorf("Expected ErrLinkNotFound, got %v", err)
		}
		if _, err := env.sessions.Get(ctx, old.Token); err != nil {
			t.Error("Expected the session to survive a switch with no link")
		}
	})
}
