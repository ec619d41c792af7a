package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/services"
	"github.com/mentortrack/mentorship-service/internal/utils"
)

type AuditHandler struct {
	BaseHandler
	auditService services.AuditService
}

func NewAuditHandler(auditService services.AuditService, logger utils.Logger) *AuditHandler {
	return &AuditHandler{
		BaseHandler:  NewBaseHandler(logger),
		auditService: auditService,
	}
}

// ListAuditEvents lists supervisory audit events
// @Summary List audit events
// @Tags audit
// @Produce json
// @Param type query string false "Filter by event type"
// @Param actor_id query string false "Filter by actor"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /audit [get]
func (h *AuditHandler) ListAuditEvents(c *gin.Context) {
	actorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	filters := repositories.AuditFilters{
		Limit: 20,
	}

	if eventType := c.Query("type"); eventType != "" {
		filters.Type = &eventType
	}
	if filterActor := c.Query("actor_id"); filterActor != "" {
		filters.ActorID = &filterActor
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		if size, err := strconv.Atoi(c.DefaultQuery("size", "20")); err == nil && size > 0 {
			if size > 100 {
				size = 100
			}
			filters.Limit = size
			filters.Offset = (page - 1) * size
		}
	}

	events, total, err := h.auditService.List(c.Request.Context(), filters, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  total,
	})
}
