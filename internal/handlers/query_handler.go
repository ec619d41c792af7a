package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/services"
	"github.com/mentortrack/mentorship-service/internal/utils"
)

type QueryHandler struct {
	BaseHandler
	queryService services.QueryService
}

func NewQueryHandler(queryService services.QueryService, logger utils.Logger) *QueryHandler {
	return &QueryHandler{
		BaseHandler:  NewBaseHandler(logger),
		queryService: queryService,
	}
}

// AskQuery routes a question to the caller's primary mentor
// @Summary Ask query
// @Description Creates a query addressed to the caller's primary mentor at ask time
// @Tags queries
// @Accept json
// @Produce json
// @Param query body services.AskQueryRequest true "Query data"
// @Success 201 {object} services.QueryResponse
// @Failure 422 {object} ErrorResponse
// @Router /queries [post]
func (h *QueryHandler) AskQuery(c *gin.Context) {
	var req services.AskQueryRequest
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

	query, err := h.queryService.Ask(c.Request.Context(), &req, menteeID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, query)
}

// AnswerQuery records the mentor's reply
// @Summary Answer query
// @Tags queries
// @Accept json
// @Produce json
// @Param id path uint true "Query ID"
// @Param answer body services.AnswerQueryRequest true "Answer text"
// @Success 200 {object} services.QueryResponse
// @Failure 403 {object} ErrorResponse
// @Router /queries/{id}/answer [post]
func (h *QueryHandler) AnswerQuery(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.AnswerQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	mentorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	query, err := h.queryService.Answer(c.Request.Context(), id, &req, mentorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, query)
}

// GetQuery retrieves a single query
// @Summary Get query
// @Tags queries
// @Produce json
// @Param id path uint true "Query ID"
// @Success 200 {object} services.QueryResponse
// @Failure 404 {object} ErrorResponse
// @Router /queries/{id} [get]
func (h *QueryHandler) GetQuery(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	viewerID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	query, err := h.queryService.GetByID(c.Request.Context(), id, viewerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, query)
}

// ListInbox lists queries routed to the caller as mentor
// @Summary List query inbox
// @Tags queries
// @Produce json
// @Param status query string false "Filter by status (pending, answered)"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.QueryListResponse
// @Router /queries/inbox [get]
func (h *QueryHandler) ListInbox(c *gin.Context) {
	mentorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	queries, err := h.queryService.ListForMentor(c.Request.Context(), mentorID, h.parseQueryFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, queries)
}

// ListMyQueries lists queries the caller has asked
// @Summary List my queries
// @Tags queries
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.QueryListResponse
// @Router /queries/mine [get]
func (h *QueryHandler) ListMyQueries(c *gin.Context) {
	menteeID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	queries, err := h.queryService.ListForMentee(c.Request.Context(), menteeID, h.parseQueryFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, queries)
}

func (h *QueryHandler) parseQueryFilters(c *gin.Context) repositories.QueryFilters {
	filters := repositories.QueryFilters{
		Limit:  10,
		Offset: 0,
	}

	if status := c.Query("status"); status != "" {
		s := models.QueryStatus(status)
		filters.Status = &s
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		if size, err := strconv.Atoi(c.DefaultQuery("size", "10")); err == nil && size > 0 {
			if size > 100 {
				size = 100
			}
			filters.Limit = size
			filters.Offset = (page - 1) * size
		}
	}

	return filters
}
