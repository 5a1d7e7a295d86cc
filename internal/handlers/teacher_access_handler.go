package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/edunexus-service/internal/services"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
)

type TeacherAccessHandler struct {
	BaseHandler
	service services.TeacherAccessService
}

func NewTeacherAccessHandler(service services.TeacherAccessService, logger utils.Logger) *TeacherAccessHandler {
	return &TeacherAccessHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// AssignTeacher grants a teacher access to a subject by email
// @Summary Assign teacher
// @Tags teacher-access
// @Accept json
// @Produce json
// @Param access body services.AssignTeacherRequest true "Subject and teacher email"
// @Success 201 {object} services.TeacherAccessResponse
// @Failure 400 {object} ErrorResponse "Teacher already assigned"
// @Failure 404 {object} ErrorResponse "Teacher not found"
// @Failure 422 {object} ErrorResponse "User is not a teacher"
// @Router /teacher-access [post]
func (h *TeacherAccessHandler) AssignTeacher(c *gin.Context) {
	h.LogRequest(c, "Assigning teacher")

	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req services.AssignTeacherRequest
	if !h.bindJSON(c, &req) {
		return
	}

	access, err := h.service.Assign(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, access)
}

// ListSubjectTeachers
// @Summary List teachers of a subject
// @Tags teacher-access
// @Produce json
// @Param subject_id path string true "Subject ID"
// @Success 200 {array} services.TeacherAccessResponse
// @Router /teacher-access/subject/{subject_id} [get]
func (h *TeacherAccessHandler) ListSubjectTeachers(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	list, err := h.service.List(c.Request.Context(), c.Param("subject_id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// RemoveTeacher
// @Summary Remove teacher access
// @Tags teacher-access
// @Param id path string true "Teacher access ID"
// @Success 200 {object} MessageResponse
// @Router /teacher-access/{id} [delete]
func (h *TeacherAccessHandler) RemoveTeacher(c *gin.Context) {
	h.LogRequest(c, "Removing teacher access", "access_id", c.Param("id"))

	user := h.currentUser(c)
	if user == nil {
		return
	}

	if err := h.service.Remove(c.Request.Context(), c.Param("id"), user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Teacher access removed successfully"})
}
