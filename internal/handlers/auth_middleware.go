package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mentortrack/mentorship-service/internal/auth"
	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
)

// AuthMiddleware authenticates requests against either a service session
// (issued on identity switch) or a provider-issued JWT, and resolves the
// caller's directory account.
type AuthMiddleware struct {
	authenticator auth.Authenticator
	sessions      auth.SessionStore
	accountRepo   repositories.AccountRepository
}

func NewAuthMiddleware(authenticator auth.Authenticator, sessions auth.SessionStore, accountRepo repositories.AccountRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		sessions:      sessions,
		accountRepo:   accountRepo,
	}
}

// Authenticate returns a Gin middleware resolving the bearer token to an
// account. Session tokens win over provider tokens so a switched identity
// stays switched until the session ends.
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "missing or malformed authorization header",
			})
			c.Abort()
			return
		}

		account, sessionToken, err := am.resolveAccount(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": err.Error(),
			})
			c.Abort()
			return
		}

		c.Set("user_id", account.ID)
		c.Set("user", account)
		c.Set("user_role", account.Role)
		c.Set("user_email", account.Email)
		if sessionToken != "" {
			c.Set("session_token", sessionToken)
		}

		c.Next()
	}
}

// RequireRole checks that the caller holds one of the listed roles.
// Admin-capable accounts pass every check.
func (am *AuthMiddleware) RequireRole(requiredRoles ...models.AccountRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "user role not found in context",
			})
			c.Abort()
			return
		}

		allowed := role.IsAdminCapable()
		for _, required := range requiredRoles {
			if allowed {
				break
			}
			switch required {
			case models.RoleMentor:
				allowed = role.IsMentorCapable()
			default:
				allowed = role == required
			}
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (am *AuthMiddleware) resolveAccount(ctx context.Context, token string) (*models.Account, string, error) {
	if am.sessions != nil {
		session, err := am.sessions.Get(ctx, token)
		if err == nil {
			account, err := am.accountRepo.GetByID(ctx, session.AccountID)
			if err != nil {
				return nil, "", fmt.Errorf("session account not found")
			}
			return account, session.Token, nil
		}
		if !errors.Is(err, auth.ErrSessionNotFound) {
			return nil, "", fmt.Errorf("session lookup failed")
		}
	}

	identity, err := am.authenticator.ParseToken(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("invalid token")
	}

	account, err := am.accountRepo.GetByID(ctx, identity.ID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, "", fmt.Errorf("account lookup failed")
		}
		account, err = am.accountRepo.GetByEmail(ctx, identity.Email)
		if err != nil {
			return nil, "", fmt.Errorf("no directory account for identity")
		}
	}

	return account, "", nil
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// GetAccountFromContext extracts the authenticated account from Gin context
func GetAccountFromContext(c *gin.Context) (*models.Account, error) {
	value, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	account, ok := value.(*models.Account)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}
	return account, nil
}

// GetUserIDFromContext extracts the account ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	value, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}
	return id, nil
}

// GetUserRoleFromContext extracts the account role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.AccountRole, error) {
	value, exists := c.Get("user_role")
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := value.(models.AccountRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}
	return role, nil
}
