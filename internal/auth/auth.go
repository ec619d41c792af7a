package auth

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidCredentials is returned when the identity provider rejects an
// email/secret pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Identity is what the identity provider knows about a principal. Role
// interpretation happens in the directory, not here.
type Identity struct {
	ID            string
	Email         string
	DisplayName   string
	Avatar        string
	IsAdmin       bool
	EmailVerified bool
}

// NewIdentity describes a principal to be registered with the provider.
type NewIdentity struct {
	Email       string
	DisplayName string
	Secret      string
	Type        string
}

// Authenticator abstracts the external identity provider. The service owns
// roles and permissions; the provider owns credentials.
type Authenticator interface {
	// CreateIdentity registers the principal and returns its provider ID.
	CreateIdentity(ctx context.Context, identity NewIdentity) (string, error)

	// Authenticate verifies an email/secret pair and returns the identity.
	// A rejected pair yields ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, secret string) (*Identity, error)

	// DeleteIdentity removes the principal from the provider.
	DeleteIdentity(ctx context.Context, id string) error

	// ParseToken validates an access token and returns the identity it
	// was issued to.
	ParseToken(ctx context.Context, token string) (*Identity, error)
}

// Session is the server-side record behind a bearer token. Switching
// identities deletes the active session before a new one is created; there
// is no in-place mutation.
type Session struct {
	Token     string    `json:"token"`
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrSessionNotFound is returned for expired or deleted sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists active sessions.
type SessionStore interface {
	NewSession(accountID, email, role string) *Session
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
