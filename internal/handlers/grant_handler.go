package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentortrack/mentorship-service/internal/services"
	"github.com/mentortrack/mentorship-service/internal/utils"
)

type GrantHandler struct {
	BaseHandler
	grantService services.GrantService
}

func NewGrantHandler(grantService services.GrantService, logger utils.Logger) *GrantHandler {
	return &GrantHandler{
		BaseHandler:  NewBaseHandler(logger),
		grantService: grantService,
	}
}

// IssueGrant opens a time-boxed edit window for a mentee
// @Summary Issue edit grant
// @Description Opens an edit window, replacing any previous grant on the mentee
// @Tags grants
// @Accept json
// @Produce json
// @Param grant body services.GrantRequest true "Grant data"
// @Success 200 {object} services.EditWindow
// @Failure 404 {object} ErrorResponse
// @Router /grants [post]
func (h *GrantHandler) IssueGrant(c *gin.Context) {
	var req services.GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	window, err := h.grantService.Grant(c.Request.Context(), &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, window)
}

// IssueBulkGrant opens the same edit window for many mentees
// @Summary Issue bulk edit grants
// @Tags grants
// @Accept json
// @Produce json
// @Param grants body services.BulkGrantRequest true "Bulk grant data"
// @Success 200 {object} services.BulkGrantResult
// @Failure 400 {object} ErrorResponse
// @Router /grants/bulk [post]
func (h *GrantHandler) IssueBulkGrant(c *gin.Context) {
	var req services.BulkGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	result, err := h.grantService.BulkGrant(c.Request.Context(), &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyEditWindow reports the caller's current edit window state
// @Summary Get my edit window
// @Tags grants
// @Produce json
// @Success 200 {object} services.EditWindow
// @Router /grants/me [get]
func (h *GrantHandler) GetMyEditWindow(c *gin.Context) {
	menteeID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	window, err := h.grantService.IsEditable(c.Request.Context(), menteeID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, window)
}

// SaveMyProfile applies the caller's one-shot profile edit
// @Summary Save my profile
// @Description Applies the edit and consumes the active grant in one step
// @Tags grants
// @Accept json
// @Produce json
// @Param profile body services.UpdateMenteeProfileRequest true "Profile fields"
// @Success 200 {object} services.MenteeResponse
// @Failure 403 {object} ErrorResponse
// @Router /grants/me/profile [put]
func (h *GrantHandler) SaveMyProfile(c *gin.Context) {
	var req services.UpdateMenteeProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	menteeID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	mentee, err := h.grantService.SaveProfile(c.Request.Context(), menteeID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, mentee)
}
