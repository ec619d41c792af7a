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

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// SubmitReport submits a report for review
// @Summary Submit report
// @Description Submits a report; the recipient set is frozen from the caller's current supervisors
// @Tags reports
// @Accept json
// @Produce json
// @Param report body services.SubmitReportRequest true "Report data"
// @Success 201 {object} services.ReportResponse
// @Failure 422 {object} ErrorResponse
// @Router /reports [post]
func (h *ReportHandler) SubmitReport(c *gin.Context) {
	var req services.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	authorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	report, err := h.reportService.Submit(c.Request.Context(), &req, authorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ReviewReport closes a pending report with approved or rejected
// @Summary Review report
// @Tags reports
// @Accept json
// @Produce json
// @Param id path uint true "Report ID"
// @Param review body services.ReviewReportRequest true "Review decision"
// @Success 200 {object} services.ReportResponse
// @Failure 409 {object} ErrorResponse
// @Router /reports/{id}/review [post]
func (h *ReportHandler) ReviewReport(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ReviewReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	reviewerID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	report, err := h.reportService.Review(c.Request.Context(), id, &req, reviewerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// UpdateFeedback revises feedback on a closed report
// @Summary Update report feedback
// @Tags reports
// @Accept json
// @Produce json
// @Param id path uint true "Report ID"
// @Param feedback body services.FeedbackRequest true "Feedback text"
// @Success 200 {object} services.ReportResponse
// @Failure 403 {object} ErrorResponse
// @Router /reports/{id}/feedback [put]
func (h *ReportHandler) UpdateFeedback(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	reviewerID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	report, err := h.reportService.UpdateFeedback(c.Request.Context(), id, &req, reviewerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// MarkViewed flags a report as seen by the caller
// @Summary Mark report viewed
// @Tags reports
// @Produce json
// @Param id path uint true "Report ID"
// @Success 200 {object} SuccessResponse
// @Router /reports/{id}/viewed [post]
func (h *ReportHandler) MarkViewed(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	viewerID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.reportService.MarkViewed(c.Request.Context(), id, viewerID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Report marked as viewed"})
}

// GetReport retrieves a single report
// @Summary Get report
// @Tags reports
// @Produce json
// @Param id path uint true "Report ID"
// @Success 200 {object} services.ReportResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	viewerID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	report, err := h.reportService.GetByID(c.Request.Context(), id, viewerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListInbox lists reports addressed to the caller
// @Summary List report inbox
// @Tags reports
// @Produce json
// @Param status query string false "Filter by status (pending, approved, rejected)"
// @Param role query string false "Filter by recipient role (mentor, guide, co-guide)"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.ReportListResponse
// @Router /reports/inbox [get]
func (h *ReportHandler) ListInbox(c *gin.Context) {
	recipientID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	reports, err := h.reportService.ListForRecipient(c.Request.Context(), recipientID, h.parseReportFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// ListMyReports lists reports submitted by the caller
// @Summary List my reports
// @Tags reports
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.ReportListResponse
// @Router /reports/mine [get]
func (h *ReportHandler) ListMyReports(c *gin.Context) {
	authorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	reports, err := h.reportService.ListByAuthor(c.Request.Context(), authorID, h.parseReportFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// GetInboxStats summarizes the caller's report inbox
// @Summary Get report inbox stats
// @Tags reports
// @Produce json
// @Success 200 {object} repositories.ReportStats
// @Router /reports/inbox/stats [get]
func (h *ReportHandler) GetInboxStats(c *gin.Context) {
	recipientID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	stats, err := h.reportService.GetStats(c.Request.Context(), recipientID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ReportHandler) parseReportFilters(c *gin.Context) repositories.ReportFilters {
	filters := repositories.ReportFilters{
		Limit:  10,
		Offset: 0,
	}

	if status := c.Query("status"); status != "" {
		s := models.ReportStatus(status)
		filters.Status = &s
	}
	if role := c.Query("role"); role != "" {
		r := models.RecipientRole(role)
		filters.Role = &r
	}
	if viewed := c.Query("viewed"); viewed != "" {
		v := viewed == "true"
		filters.Viewed = &v
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
