package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentortrack/mentorship-service/internal/auth"
	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/utils"
)

// SessionHandler issues and ends service sessions. Sessions back the
// identity switch flow; provider JWTs remain valid for API access either
// way.
type SessionHandler struct {
	BaseHandler
	authenticator auth.Authenticator
	sessions      auth.SessionStore
	accountRepo   repositories.AccountRepository
}

func NewSessionHandler(authenticator auth.Authenticator, sessions auth.SessionStore, accountRepo repositories.AccountRepository, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:   NewBaseHandler(logger),
		authenticator: authenticator,
		sessions:      sessions,
		accountRepo:   accountRepo,
	}
}

type loginRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Secret string `json:"secret" binding:"required"`
}

// Login authenticates credentials and opens a session
// @Summary Log in
// @Tags sessions
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} auth.Session
// @Failure 401 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	if _, err := h.authenticator.Authenticate(ctx, req.Email, req.Secret); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid credentials"})
			return
		}
		h.LogError(c, err, "Authentication backend failure")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Authentication unavailable"})
		return
	}

	account, err := h.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "No directory account for identity"})
		return
	}

	session := h.sessions.NewSession(account.ID, account.Email, string(account.Role))
	if err := h.sessions.Create(ctx, session); err != nil {
		h.LogError(c, err, "Failed to create session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, session)
}

// Logout ends the caller's session
// @Summary Log out
// @Tags sessions
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /sessions [delete]
func (h *SessionHandler) Logout(c *gin.Context) {
	token := c.GetString("session_token")
	if token == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "No active session for this token",
		})
		return
	}

	if err := h.sessions.Delete(c.Request.Context(), token); err != nil {
		h.LogError(c, err, "Failed to delete session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to end session"})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Logged out successfully"})
}
