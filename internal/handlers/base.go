package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/services"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
)

// ErrorResponse is the body of every non-2xx reply. Detail repeats Message;
// the client SDK reads Detail first.
type ErrorResponse struct {
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// MessageResponse acknowledges a mutation without a body.
type MessageResponse struct {
	Message string `json:"message"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	args = append(args, "method", c.Request.Method, "path", c.FullPath())
	utils.GetLogger(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err, "path", c.FullPath())
	utils.GetLogger(c, h.logger).Error(msg, args...)
}

// currentUser returns the profile loaded by the auth middleware, or writes
// a 401 and returns nil.
func (h *BaseHandler) currentUser(c *gin.Context) *models.User {
	if value, exists := c.Get("user"); exists {
		if user, ok := value.(*models.User); ok {
			return user
		}
	}
	abortWithError(c, http.StatusUnauthorized, "User not authenticated", nil)
	return nil
}

func (h *BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return false
	}
	return true
}

func abortWithError(c *gin.Context, status int, message string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message, Detail: message, Details: details})
}

// handleServiceError maps service errors onto HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		abortWithError(c, http.StatusBadRequest, "Validation failed", validationErrors)
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		abortWithError(c, http.StatusUnprocessableEntity, businessRuleError.Message, map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Detail:  permissionError.Reason,
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, "User profile not found", nil)
	case errors.Is(err, services.ErrClassroomNotFound):
		abortWithError(c, http.StatusNotFound, "Classroom not found", nil)
	case errors.Is(err, services.ErrSubjectNotFound):
		abortWithError(c, http.StatusNotFound, "Subject not found", nil)
	case errors.Is(err, services.ErrChapterNotFound):
		abortWithError(c, http.StatusNotFound, "Chapter not found", nil)
	case errors.Is(err, services.ErrNoteNotFound):
		abortWithError(c, http.StatusNotFound, "Note not found", nil)
	case errors.Is(err, services.ErrQuestionNotFound):
		abortWithError(c, http.StatusNotFound, "Question not found", nil)
	case errors.Is(err, services.ErrTeacherAccessNotFound):
		abortWithError(c, http.StatusNotFound, "Teacher access not found", nil)
	case errors.Is(err, services.ErrTeacherNotFound):
		abortWithError(c, http.StatusNotFound, "Teacher not found", nil)

	case errors.Is(err, services.ErrProfileExists):
		abortWithError(c, http.StatusBadRequest, "User profile already exists", nil)
	case errors.Is(err, services.ErrEmailRegistered):
		abortWithError(c, http.StatusBadRequest, "Email already registered", nil)
	case errors.Is(err, services.ErrInvalidClassroomCode):
		abortWithError(c, http.StatusBadRequest, "Invalid classroom code", nil)
	case errors.Is(err, services.ErrAlreadyMember):
		abortWithError(c, http.StatusBadRequest, "Already a member of this classroom", nil)
	case errors.Is(err, services.ErrAccessExists):
		abortWithError(c, http.StatusBadRequest, "Teacher already has access to this subject", nil)
	case errors.Is(err, services.ErrUnsupportedFileType):
		abortWithError(c, http.StatusBadRequest, "Only PDF and TXT files are supported", nil)
	case errors.Is(err, services.ErrDocumentProcessing):
		abortWithError(c, http.StatusBadRequest, "Error processing document", err.Error())

	case errors.Is(err, services.ErrTeacherRequired):
		abortWithError(c, http.StatusForbidden, "Teacher access required", nil)
	case errors.Is(err, services.ErrForbidden):
		abortWithError(c, http.StatusForbidden, "Access denied", nil)

	default:
		h.LogError(c, err, "Unhandled service error")
		abortWithError(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// Page is the optional page/per_page window applied to list responses.
type Page struct {
	Number  int
	PerPage int
}

const maxPerPage = 100

// parsePage reads page and per_page. ok is false when the client asked for
// the whole list.
func parsePage(c *gin.Context) (Page, bool) {
	raw := c.Query("page")
	if raw == "" {
		return Page{}, false
	}
	p := Page{Number: 1, PerPage: 20}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(c.Query("per_page")); err == nil && n > 0 {
		p.PerPage = min(n, maxPerPage)
	}
	return p, true
}

// paginate slices items to the requested page and reports the total in the
// X-Total-Count header.
func paginate[T any](c *gin.Context, items []T) []T {
	p, ok := parsePage(c)
	if !ok {
		return items
	}
	c.Header("X-Total-Count", strconv.Itoa(len(items)))
	start := (p.Number - 1) * p.PerPage
	if start >= len(items) {
		return []T{}
	}
	end := min(start+p.PerPage, len(items))
	return items[start:end]
}
