package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/services"
	"github.com/mentortrack/mentorship-service/internal/utils"
)

type DelegationHandler struct {
	BaseHandler
	delegationService services.DelegationService
}

func NewDelegationHandler(delegationService services.DelegationService, logger utils.Logger) *DelegationHandler {
	return &DelegationHandler{
		BaseHandler:       NewBaseHandler(logger),
		delegationService: delegationService,
	}
}

// AssignPrimaryMentor sets a mentee's primary mentor
// @Summary Assign primary mentor
// @Description Sets the primary mentor, silently replacing any previous assignment
// @Tags delegation
// @Accept json
// @Produce json
// @Param assignment body services.AssignMentorRequest true "Assignment data"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /delegation/assign [post]
func (h *DelegationHandler) AssignPrimaryMentor(c *gin.Context) {
	var req services.AssignMentorRequest
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

	if err := h.delegationService.AssignPrimaryMentor(c.Request.Context(), &req, actorID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Primary mentor assigned successfully"})
}

// VerifyDelegation resolves a mentee email against a slot without writing
// @Summary Verify delegation
// @Description Checks whether the caller can take the slot and reports the current holder
// @Tags delegation
// @Accept json
// @Produce json
// @Param verification body services.VerifyDelegationRequest true "Verification data"
// @Success 200 {object} services.VerificationResult
// @Failure 404 {object} ErrorResponse
// @Router /delegation/verify [post]
func (h *DelegationHandler) VerifyDelegation(c *gin.Context) {
	var req services.VerifyDelegationRequest
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

	result, err := h.delegationService.Verify(c.Request.Context(), &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CommitDelegation places the caller into a delegation slot
// @Summary Commit delegation
// @Tags delegation
// @Accept json
// @Produce json
// @Param commit body services.CommitDelegationRequest true "Commit data"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /delegation/commit [post]
func (h *DelegationHandler) CommitDelegation(c *gin.Context) {
	var req services.CommitDelegationRequest
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

	if err := h.delegationService.Commit(c.Request.Context(), &req, actorID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Delegation committed successfully"})
}

// ReleaseDelegation vacates a delegation slot the caller holds
// @Summary Release delegation
// @Tags delegation
// @Accept json
// @Produce json
// @Param release body services.ReleaseDelegationRequest true "Release data"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /delegation/release [post]
func (h *DelegationHandler) ReleaseDelegation(c *gin.Context) {
	var req services.ReleaseDelegationRequest
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

	if err := h.delegationService.Release(c.Request.Context(), &req, actorID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Delegation released successfully"})
}

// ListMyMentees lists mentees assigned to the caller as primary mentor
// @Summary List my mentees
// @Tags delegation
// @Produce json
// @Success 200 {array} services.MenteeResponse
// @Router /delegation/mentees [get]
func (h *DelegationHandler) ListMyMentees(c *gin.Context) {
	mentorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	mentees, err := h.delegationService.ListMenteesForMentor(c.Request.Context(), mentorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mentees": mentees})
}

// ListMySlotMentees lists mentees the caller supervises through a slot
// @Summary List mentees by slot
// @Tags delegation
// @Produce json
// @Param slot path string true "Delegation slot (guide or co-guide)"
// @Success 200 {array} services.MenteeResponse
// @Failure 400 {object} ErrorResponse
// @Router /delegation/mentees/{slot} [get]
func (h *DelegationHandler) ListMySlotMentees(c *gin.Context) {
	slot := models.DelegationSlot(c.Param("slot"))
	if !slot.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid delegation slot",
		})
		return
	}

	mentorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	mentees, err := h.delegationService.ListMenteesForSlotHolder(c.Request.Context(), slot, mentorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mentees": mentees, "slot": slot})
}
