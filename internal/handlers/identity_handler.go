package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentortrack/mentorship-service/internal/services"
	"github.com/mentortrack/mentorship-service/internal/utils"
)

type IdentityHandler struct {
	BaseHandler
	identityService services.IdentityLinkService
}

func NewIdentityHandler(identityService services.IdentityLinkService, logger utils.Logger) *IdentityHandler {
	return &IdentityHandler{
		BaseHandler:     NewBaseHandler(logger),
		identityService: identityService,
	}
}

// LinkIdentity stores the caller's second set of credentials
// @Summary Link identity
// @Description Verifies and stores credentials for the caller's second identity
// @Tags identity
// @Accept json
// @Produce json
// @Param link body services.LinkIdentityRequest true "Linked credentials"
// @Success 200 {object} services.LinkResponse
// @Failure 401 {object} ErrorResponse
// @Router /identity/link [post]
func (h *IdentityHandler) LinkIdentity(c *gin.Context) {
	var req services.LinkIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	ownerID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	link, err := h.identityService.LinkIdentity(c.Request.Context(), &req, ownerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// GetLink returns the caller's vault entry without the secret
// @Summary Get identity link
// @Tags identity
// @Produce json
// @Success 200 {object} services.LinkResponse
// @Failure 404 {object} ErrorResponse
// @Router /identity/link [get]
func (h *IdentityHandler) GetLink(c *gin.Context) {
	ownerID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	link, err := h.identityService.GetLink(c.Request.Context(), ownerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// Unlink removes the caller's vault entry
// @Summary Unlink identity
// @Tags identity
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /identity/link [delete]
func (h *IdentityHandler) Unlink(c *gin.Context) {
	ownerID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.identityService.Unlink(c.Request.Context(), ownerID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Identity unlinked successfully"})
}

// Switch ends the current session and signs in as the linked identity
// @Summary Switch identity
// @Description Ends the current session, then authenticates as the linked identity. A failed switch leaves the caller signed out.
// @Tags identity
// @Produce json
// @Success 200 {object} services.SwitchResult
// @Failure 401 {object} ErrorResponse
// @Router /identity/switch [post]
func (h *IdentityHandler) Switch(c *gin.Context) {
	ownerID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	sessionToken := c.GetString("session_token")
	if sessionToken == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Identity switch requires a session-based login",
		})
		return
	}

	result, err := h.identityService.SwitchTo(c.Request.Context(), ownerID, sessionToken)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
