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

type DirectoryHandler struct {
	BaseHandler
	directoryService services.DirectoryService
}

func NewDirectoryHandler(directoryService services.DirectoryService, logger utils.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		BaseHandler:      NewBaseHandler(logger),
		directoryService: directoryService,
	}
}

// CreateAccount registers a mentor or admin account
// @Summary Create account
// @Description Registers a staff account in the directory and the identity provider
// @Tags directory
// @Accept json
// @Produce json
// @Param account body services.CreateAccountRequest true "Account data"
// @Success 201 {object} services.AccountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /accounts [post]
func (h *DirectoryHandler) CreateAccount(c *gin.Context) {
	var req services.CreateAccountRequest
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

	account, err := h.directoryService.CreateAccount(c.Request.Context(), &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// CreateMentee enrolls a mentee with profile and optional mentor
// @Summary Enroll mentee
// @Description Creates a mentee account with its profile in one step
// @Tags directory
// @Accept json
// @Produce json
// @Param mentee body services.CreateMenteeRequest true "Mentee data"
// @Success 201 {object} services.MenteeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /mentees [post]
func (h *DirectoryHandler) CreateMentee(c *gin.Context) {
	var req services.CreateMenteeRequest
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

	mentee, err := h.directoryService.CreateMentee(c.Request.Context(), &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mentee)
}

// GetAccount retrieves an account by ID
// @Summary Get account
// @Tags directory
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} services.AccountResponse
// @Failure 404 {object} ErrorResponse
// @Router /accounts/{id} [get]
func (h *DirectoryHandler) GetAccount(c *gin.Context) {
	id := c.Param("id")

	account, err := h.directoryService.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// UpdateAccount updates an account's editable fields
// @Summary Update account
// @Tags directory
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param account body services.UpdateAccountRequest true "Updated fields"
// @Success 200 {object} services.AccountResponse
// @Failure 403 {object} ErrorResponse
// @Router /accounts/{id} [put]
func (h *DirectoryHandler) UpdateAccount(c *gin.Context) {
	id := c.Param("id")

	var req services.UpdateAccountRequest
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

	account, err := h.directoryService.UpdateAccount(c.Request.Context(), id, &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// SetRole toggles an account between mentor and admin-mentor
// @Summary Change account role
// @Tags directory
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param role body services.RoleChangeRequest true "Target role"
// @Success 200 {object} services.AccountResponse
// @Failure 403 {object} ErrorResponse
// @Router /accounts/{id}/role [put]
func (h *DirectoryHandler) SetRole(c *gin.Context) {
	id := c.Param("id")

	var req services.RoleChangeRequest
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

	account, err := h.directoryService.SetRole(c.Request.Context(), id, &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// ListAccounts lists directory accounts with optional filtering
// @Summary List accounts
// @Tags directory
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param q query string false "Search query (name or email)"
// @Param role query string false "Filter by role"
// @Success 200 {object} services.AccountListResponse
// @Router /accounts [get]
func (h *DirectoryHandler) ListAccounts(c *gin.Context) {
	h.LogRequest(c, "Listing accounts")

	filters := h.parseAccountFilters(c)

	accounts, err := h.directoryService.ListAccounts(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}

// ListMentors lists all mentor-capable accounts
// @Summary List mentors
// @Tags directory
// @Produce json
// @Success 200 {array} services.AccountResponse
// @Router /mentors [get]
func (h *DirectoryHandler) ListMentors(c *gin.Context) {
	mentors, err := h.directoryService.ListMentors(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mentors": mentors})
}

// ListMentees lists enrolled mentees with optional filtering
// @Summary List mentees
// @Tags directory
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param q query string false "Search query (name or enrollment number)"
// @Param mentor_id query string false "Filter by primary mentor"
// @Param class_id query int false "Filter by class"
// @Success 200 {object} services.MenteeListResponse
// @Router /mentees [get]
func (h *DirectoryHandler) ListMentees(c *gin.Context) {
	filters := h.parseMenteeFilters(c)

	mentees, err := h.directoryService.ListMentees(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, mentees)
}

// GetMenteeProfile retrieves a mentee profile including edit window state
// @Summary Get mentee profile
// @Tags directory
// @Produce json
// @Param id path string true "Mentee account ID"
// @Success 200 {object} services.MenteeResponse
// @Failure 404 {object} ErrorResponse
// @Router /mentees/{id} [get]
func (h *DirectoryHandler) GetMenteeProfile(c *gin.Context) {
	id := c.Param("id")

	mentee, err := h.directoryService.GetMenteeProfile(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, mentee)
}

// UpdateMenteeProfile applies a supervisor-side profile edit
// @Summary Update mentee profile
// @Tags directory
// @Accept json
// @Produce json
// @Param id path string true "Mentee account ID"
// @Param profile body services.UpdateMenteeProfileRequest true "Profile fields"
// @Success 200 {object} services.MenteeResponse
// @Failure 403 {object} ErrorResponse
// @Router /mentees/{id} [put]
func (h *DirectoryHandler) UpdateMenteeProfile(c *gin.Context) {
	actorID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req services.UpdateMenteeProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	mentee, err := h.directoryService.UpdateMenteeProfile(c.Request.Context(), c.Param("id"), &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, mentee)
}

// CheckEnrollment reports whether an enrollment number is already taken
// @Summary Check enrollment number
// @Tags directory
// @Produce json
// @Param enrollment_no query string true "Enrollment number"
// @Success 200 {object} map[string]interface{}
// @Router /mentees/check-enrollment [get]
func (h *DirectoryHandler) CheckEnrollment(c *gin.Context) {
	enrollmentNo := c.Query("enrollment_no")
	if enrollmentNo == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Query parameter 'enrollment_no' is required",
		})
		return
	}

	taken, err := h.directoryService.IsDuplicateEnrollment(c.Request.Context(), enrollmentNo)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"enrollment_no": enrollmentNo, "taken": taken})
}

func (h *DirectoryHandler) parseAccountFilters(c *gin.Context) repositories.AccountFilters {
	filters := repositories.AccountFilters{
		Query:  c.Query("q"),
		Limit:  10,
		Offset: 0,
	}

	if role := c.Query("role"); role != "" {
		r := models.AccountRole(role)
		filters.Role = &r
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

	filters.SortBy = c.DefaultQuery("sort_by", "created_at")
	filters.SortOrder = c.DefaultQuery("sort_order", "desc")

	return filters
}

func (h *DirectoryHandler) parseMenteeFilters(c *gin.Context) repositories.MenteeFilters {
	filters := repositories.MenteeFilters{
		Query:  c.Query("q"),
		Limit:  10,
		Offset: 0,
	}

	if mentorID := c.Query("mentor_id"); mentorID != "" {
		filters.MentorID = &mentorID
	}
	if classID, err := strconv.ParseUint(c.Query("class_id"), 10, 32); err == nil && classID > 0 {
		id := uint(classID)
		filters.ClassID = &id
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
