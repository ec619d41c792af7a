package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisSessionStore(client, time.Hour), mr
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get round trip", func(t *testing.T) {
		store, _ := newTestStore(t)

		session := store.NewSession("acc-1", "mina@mentortrack.io", "mentor")
		if err := store.Create(ctx, session); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		got, err := store.Get(ctx, session.Token)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.AccountID != "acc-1" || got.Email != "mina@mentortrack.io" || got.Role != "mentor" {
			t.Errorf("Unexpected session contents: %+v", got)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		store, _ := newTestStore(t)

		if _, err := store.Get(ctx, "no-such-token"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("delete removes the session", func(t *testing.T) {
		store, _ := newTestStore(t)

		session := store.NewSession("acc-1", "mina@mentortrack.io", "mentor")
		if err := store.Create(ctx, session); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := store.Delete(ctx, session.Token); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := store.Get(ctx, session.Token); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store, _ := newTestStore(t)

		if err := store.Delete(ctx, "no-such-token"); err != nil {
			t.Errorf("Expected no error deleting a missing session, got %v", err)
		}
	})

	t.Run("expired session is gone", func(t *testing.T) {
		store, mr := newTestStore(t)

		session := store.NewSession("acc-1", "mina@mentortrack.io", "mentor")
		if err := store.Create(ctx, session); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		mr.FastForward(2 * time.Hour)

		if _, err := store.Get(ctx, session.Token); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound after expiry, got %v", err)
		}
	})

	t.Run("creating an already expired session fails", func(t *testing.T) {
		store, _ := newTestStore(t)

		session := store.NewSession("acc-1", "mina@mentortrack.io", "mentor")
		session.ExpiresAt = time.Now().Add(-time.Minute)

		if err := store.Create(ctx, session); err == nil {
			t.Error("Expected an error for an already expired session")
		}
	})
}
