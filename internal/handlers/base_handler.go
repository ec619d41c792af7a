package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mentortrack/mentorship-service/internal/services"
	"github.com/mentortrack/mentorship-service/internal/utils"
	"github.com/mentortrack/mentorship-service/internal/validator"
)

// ErrorResponse is the error envelope for all handlers
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps operations that return no resource body
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c.Request.Context()).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.FromContext(c.Request.Context()).Error(msg, args...)
}

// parseIDParam reads a numeric path parameter; on failure it writes the
// 400 response itself and returns 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	// Handle custom error types first
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	var roleMismatch *services.RoleMismatchError
	if errors.As(err, &roleMismatch) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Role requirement not met",
			Details: map[string]interface{}{
				"required": roleMismatch.Required,
				"actual":   roleMismatch.Actual,
			},
		})
		return
	}

	var slotOccupied *services.SlotOccupiedError
	if errors.As(err, &slotOccupied) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Delegation slot is already occupied",
			Details: map[string]interface{}{
				"slot":    slotOccupied.Slot,
				"held_by": slotOccupied.HeldBy,
			},
		})
		return
	}

	var duplicateEnrollment *services.DuplicateEnrollmentError
	if errors.As(err, &duplicateEnrollment) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Enrollment number already registered",
			Details: map[string]interface{}{
				"enrollment_no": duplicateEnrollment.EnrollmentNo,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrMenteeNotFound),
		errors.Is(err, services.ErrMentorNotFound),
		errors.Is(err, services.ErrClassNotFound),
		errors.Is(err, services.ErrReportNotFound),
		errors.Is(err, services.ErrQueryNotFound),
		errors.Is(err, services.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Resource not found",
		})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Email address already registered",
		})
	case errors.Is(err, services.ErrReportClosed):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Report review is already closed",
		})
	case errors.Is(err, services.ErrGrantLocked):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Profile is locked, no active edit grant",
		})
	case errors.Is(err, services.ErrNoRecipients):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "No supervisors assigned to receive the report",
		})
	case errors.Is(err, services.ErrNoMentorAssigned):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "No primary mentor assigned",
		})
	case errors.Is(err, services.ErrAuthenticationFailed):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Authentication failed",
		})
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrInsufficientPermissions):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
		})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Request conflicts with current state",
		})
	case errors.Is(err, services.ErrValidationFailed), errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Unauthorized",
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
