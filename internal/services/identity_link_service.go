package services

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mentortrack/mentorship-service/internal/auth"
	"github.com/mentortrack/mentorship-service/internal/events"
	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/validator"
)

type identityLinkService struct {
	repo           repositories.Repository
	authenticator  auth.Authenticator
	sessions       auth.SessionStore
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
	sealKey        []byte
}

// NewIdentityLinkService wires the credential vault. sealKeyHex must decode
// to 32 bytes; the key seals linked secrets with AES-256-GCM.
func NewIdentityLinkService(repo repositories.Repository, authenticator auth.Authenticator, sessions auth.SessionStore, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator, sealKeyHex string) (IdentityLinkService, error) {
	key, err := hex.DecodeString(sealKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid link seal key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("link seal key must be 32 bytes, got %d", len(key))
	}

	return &identityLinkService{
		repo:           repo,
		authenticator:  authenticator,
		sessions:       sessions,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
		sealKey:        key,
	}, nil
}

// LinkIdentity stores the owner's second set of credentials. The
// credentials are verified against the identity provider before anything
// is persisted, so a vault entry is always usable at write time.
func (s *identityLinkService) LinkIdentity(ctx context.Context, req *LinkIdentityRequest, ownerID string) (*LinkResponse, error) {
	s.logger.Info("Linking identity", "owner_id", ownerID, "linked_email", req.LinkedEmail)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	owner, err := s.repo.Account().GetByID(ctx, ownerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if owner.Email == req.LinkedEmail {
		return nil, fmt.Errorf("%w: cannot link an account to itself", ErrBadRequest)
	}

	identity, err := s.authenticator.Authenticate(ctx, req.LinkedEmail, req.LinkedSecret)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to verify linked credentials: %w", err)
	}

	sealed, err := s.seal([]byte(req.LinkedSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to seal linked secret: %w", err)
	}

	link := &models.CredentialLink{
		AccountID:       ownerID,
		LinkedEmail:     req.LinkedEmail,
		LinkedSecretEnc: sealed,
	}
	if linked, err := s.repo.Account().GetByEmail(ctx, req.LinkedEmail); err == nil {
		link.LinkedAccountID = &linked.ID
	} else if !repositories.IsNotFoundError(err) {
		return nil, err
	}

	if err := s.repo.Account().SaveCredentialLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to save credential link: %w", err)
	}

	s.logger.Info("Identity linked", "owner_id", ownerID, "provider_id", identity.ID)

	return &LinkResponse{LinkedEmail: link.LinkedEmail, LinkedAccountID: link.LinkedAccountID}, nil
}

// GetLink returns the owner's vault entry without the sealed secret.
func (s *identityLinkService) GetLink(ctx context.Context, ownerID string) (*LinkResponse, error) {
	link, err := s.repo.Account().GetCredentialLink(ctx, ownerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &LinkResponse{LinkedEmail: link.LinkedEmail, LinkedAccountID: link.LinkedAccountID}, nil
}

// Unlink removes the vault entry.
func (s *identityLinkService) Unlink(ctx context.Context, ownerID string) error {
	if _, err := s.repo.Account().GetCredentialLink(ctx, ownerID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLinkNotFound
		}
		return err
	}
	return s.repo.Account().DeleteCredentialLink(ctx, ownerID)
}

// SwitchTo ends the current session and authenticates as the linked
// identity. The current session is deleted before the provider is called,
// so a failed switch leaves the caller signed out rather than silently
// restoring the old session.
func (s *identityLinkService) SwitchTo(ctx context.Context, ownerID, sessionToken string) (*SwitchResult, error) {
	s.logger.Info("Switching identity", "owner_id", ownerID)

	link, err := s.repo.Account().GetCredentialLink(ctx, ownerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	secret, err := s.unseal(link.LinkedSecretEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal linked secret: %w", err)
	}

	if err := s.sessions.Delete(ctx, sessionToken); err != nil {
		return nil, fmt.Errorf("failed to end current session: %w", err)
	}

	identity, err := s.authenticator.Authenticate(ctx, link.LinkedEmail, string(secret))
	if err != nil {
		s.logger.Warn("Identity switch failed after session ended", "owner_id", ownerID, "error", err)
		return nil, ErrAuthenticationFailed
	}

	account, err := s.repo.Account().GetByEmail(ctx, link.LinkedEmail)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	session := s.sessions.NewSession(account.ID, account.Email, string(account.Role))
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	recordAudit(ctx, s.repo, s.logger, AuditIdentitySwitch, ownerID, map[string]interface{}{
		"to_account_id": account.ID,
		"linked_email":  link.LinkedEmail,
	})

	s.publish(ctx, events.EventIdentitySwitched, map[string]interface{}{
		"from_account_id": ownerID,
		"to_account_id":   account.ID,
	})

	s.logger.Info("Identity switched", "owner_id", ownerID, "to_account_id", account.ID, "provider_id", identity.ID)

	return &SwitchResult{Session: session, Account: account}, nil
}

func (s *identityLinkService) seal(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.sealKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *identityLinkService) unseal(sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.sealKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, fmt.Errorf("sealed secret too short")
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func (s *identityLinkService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "error", err, "event_type", eventType)
	}
}
