package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"golang.org/x/oauth2"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// CasdoorAuthenticator implements Authenticator against a Casdoor instance.
// Registration and lookup use the management SDK; credential verification
// uses the OAuth2 resource-owner password grant so a wrong secret fails at
// the token endpoint instead of leaking through a lookup.
type CasdoorAuthenticator struct {
	client *casdoorsdk.Client
	config CasdoorConfig
	oauth  *oauth2.Config
}

func NewCasdoorAuthenticator(config CasdoorConfig) *CasdoorAuthenticator {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return &CasdoorAuthenticator{
		client: client,
		config: config,
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: strings.TrimRight(config.Endpoint, "/") + "/api/login/oauth/access_token",
			},
		},
	}
}

// CreateIdentity registers the principal with Casdoor. The provider ID is
// the Casdoor user ID, which the directory also uses as account ID.
func (c *CasdoorAuthenticator) CreateIdentity(ctx context.Context, identity NewIdentity) (string, error) {
	user := &casdoorsdk.User{
		Owner:       c.config.OrganizationName,
		Name:        identity.Email,
		DisplayName: identity.DisplayName,
		Email:       identity.Email,
		Password:    identity.Secret,
		Type:        identity.Type,
	}

	ok, err := c.client.AddUser(user)
	if err != nil {
		return "", fmt.Errorf("failed to create identity: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("identity provider rejected registration for %s", identity.Email)
	}

	created, err := c.client.GetUserByEmail(identity.Email)
	if err != nil {
		return "", fmt.Errorf("failed to look up created identity: %w", err)
	}
	if created == nil {
		return "", fmt.Errorf("created identity not found for %s", identity.Email)
	}

	return created.Id, nil
}

// Authenticate exchanges the email/secret pair for a token, then resolves
// the identity from the provider.
func (c *CasdoorAuthenticator) Authenticate(ctx context.Context, email, secret string) (*Identity, error) {
	token, err := c.oauth.PasswordCredentialsToken(ctx, email, secret)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	claims, err := c.client.ParseJwtToken(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	return identityFromUser(&claims.User), nil
}

// DeleteIdentity removes the principal from Casdoor.
func (c *CasdoorAuthenticator) DeleteIdentity(ctx context.Context, id string) error {
	user, err := c.client.GetUserByUserId(id)
	if err != nil {
		return fmt.Errorf("failed to look up identity: %w", err)
	}
	if user == nil {
		return nil
	}

	if _, err := c.client.DeleteUser(user); err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	return nil
}

// ParseToken validates a Casdoor-issued JWT.
func (c *CasdoorAuthenticator) ParseToken(ctx context.Context, token string) (*Identity, error) {
	claims, err := c.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	identity := identityFromUser(&claims.User)
	if identity.ID == "" {
		identity.ID = claims.Id
	}
	return identity, nil
}

func identityFromUser(user *casdoorsdk.User) *Identity {
	return &Identity{
		ID:            user.Id,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		Avatar:        user.Avatar,
		IsAdmin:       user.IsAdmin,
		EmailVerified: user.EmailVerified,
	}
}
