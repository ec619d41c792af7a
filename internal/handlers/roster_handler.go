package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentortrack/mentorship-service/internal/models"
	"github.com/mentortrack/mentorship-service/internal/repositories"
	"github.com/mentortrack/mentorship-service/internal/services"
	"github.com/mentortrack/mentorship-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RosterHandler struct {
	BaseHandler
	rosterService services.RosterService
}

func NewRosterHandler(rosterService services.RosterService, logger utils.Logger) *RosterHandler {
	return &RosterHandler{
		BaseHandler:   NewBaseHandler(logger),
		rosterService: rosterService,
	}
}

// ImportRoster registers mentees from an uploaded xlsx workbook
// @Summary Import mentee roster
// @Tags exports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Roster workbook"
// @Success 200 {object} services.RosterImportResult
// @Failure 400 {object} ErrorResponse
// @Router /imports/roster [post]
func (h *RosterHandler) ImportRoster(c *gin.Context) {
	actorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file in multipart form",
			Details: err.Error(),
		})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Message: "File exceeds the 20 MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded roster")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to read upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.LogError(c, err, "Failed to read uploaded roster")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to read upload"})
		return
	}

	h.LogRequest(c, "Importing mentee roster", "filename", fileHeader.Filename, "size", fileHeader.Size)

	result, err := h.rosterService.ImportMenteeRoster(c.Request.Context(), data, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportRoster downloads the caller's mentee roster as xlsx
// @Summary Export mentee roster
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /exports/roster [get]
func (h *RosterHandler) ExportRoster(c *gin.Context) {
	mentorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	h.LogRequest(c, "Exporting mentee roster")

	data, err := h.rosterService.ExportMenteeRoster(c.Request.Context(), mentorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("mentee-roster-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ExportReportSummary downloads the caller's report inbox as xlsx
// @Summary Export report summary
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Filter by status"
// @Success 200 {file} binary
// @Router /exports/reports [get]
func (h *RosterHandler) ExportReportSummary(c *gin.Context) {
	recipientID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	h.LogRequest(c, "Exporting report summary")

	filters := repositories.ReportFilters{
		Limit: 1000,
	}

	if status := c.Query("status"); status != "" {
		s := models.ReportStatus(status)
		filters.Status = &s
	}

	data, err := h.rosterService.ExportReportSummary(c.Request.Context(), recipientID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("report-summary-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
