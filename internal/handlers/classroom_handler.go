package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/edunexus-service/internal/services"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
)

type ClassroomHandler struct {
	BaseHandler
	classrooms services.ClassroomService
	subjects   services.SubjectService
}

func NewClassroomHandler(classrooms services.ClassroomService, subjects services.SubjectService, logger utils.Logger) *ClassroomHandler {
	return &ClassroomHandler{
		BaseHandler: NewBaseHandler(logger),
		classrooms:  classrooms,
		subjects:    subjects,
	}
}

// ===== CLASSROOMS =====

// CreateClassroom creates a classroom with a generated join code
// @Summary Create classroom
// @Tags classrooms
// @Accept json
// @Produce json
// @Param classroom body services.CreateClassroomRequest true "Classroom data"
// @Success 201 {object} services.ClassroomResponse
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 403 {object} ErrorResponse "Teacher access required"
// @Router /classrooms [post]
func (h *ClassroomHandler) CreateClassroom(c *gin.Context) {
	h.LogRequest(c, "Creating classroom")

	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req services.CreateClassroomRequest
	if !h.bindJSON(c, &req) {
		return
	}

	classroom, err := h.classrooms.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, classroom)
}

// JoinClassroom adds the caller to the classroom with the given code
// @Summary Join classroom
// @Description Join a classroom by its six character code. Codes are case-insensitive.
// @Tags classrooms
// @Accept json
// @Produce json
// @Param join body services.JoinClassroomRequest true "Classroom code"
// @Success 200 {object} services.ClassroomResponse
// @Failure 400 {object} ErrorResponse "Invalid code or already a member"
// @Router /classrooms/join [post]
func (h *ClassroomHandler) JoinClassroom(c *gin.Context) {
	h.LogRequest(c, "Joining classroom")

	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req services.JoinClassroomRequest
	if !h.bindJSON(c, &req) {
		return
	}

	classroom, err := h.classrooms.Join(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, classroom)
}

// ListClassrooms returns the caller's classrooms with subjects and chapters
// @Summary List classrooms
// @Description Students get joined classrooms. Teachers get created and assigned classrooms.
// @Tags classrooms
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Page size (max 100)"
// @Success 200 {array} services.ClassroomResponse
// @Router /classrooms [get]
func (h *ClassroomHandler) ListClassrooms(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	classrooms, err := h.classrooms.List(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, classrooms))
}

// DeleteClassroom removes a classroom and everything under it
// @Summary Delete classroom
// @Tags classrooms
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse "Only the creator can delete"
// @Failure 404 {object} ErrorResponse "Classroom not found"
// @Router /classrooms/{id} [delete]
func (h *ClassroomHandler) DeleteClassroom(c *gin.Context) {
	h.LogRequest(c, "Deleting classroom", "classroom_id", c.Param("id"))

	user := h.currentUser(c)
	if user == nil {
		return
	}

	if err := h.classrooms.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Classroom deleted successfully"})
}

// ===== SUBJECTS =====

// CreateSubject
// @Summary Create subject
// @Tags subjects
// @Accept json
// @Produce json
// @Param subject body services.CreateSubjectRequest true "Subject data"
// @Success 201 {object} services.SubjectResponse
// @Router /subjects [post]
func (h *ClassroomHandler) CreateSubject(c *gin.Context) {
	h.LogRequest(c, "Creating subject")

	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req services.CreateSubjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	subject, err := h.subjects.CreateSubject(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

// ListSubjects
// @Summary List subjects of a classroom
// @Tags subjects
// @Produce json
// @Param classroom_id path string true "Classroom ID"
// @Success 200 {array} services.SubjectResponse
// @Router /subjects/classroom/{classroom_id} [get]
func (h *ClassroomHandler) ListSubjects(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	subjects, err := h.subjects.ListSubjects(c.Request.Context(), c.Param("classroom_id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, subjects))
}

// DeleteSubject
// @Summary Delete subject
// @Tags subjects
// @Param id path string true "Subject ID"
// @Success 200 {object} MessageResponse
// @Router /subjects/{id} [delete]
func (h *ClassroomHandler) DeleteSubject(c *gin.Context) {
	h.LogRequest(c, "Deleting subject", "subject_id", c.Param("id"))

	user := h.currentUser(c)
	if user == nil {
		return
	}

	if err := h.subjects.DeleteSubject(c.Request.Context(), c.Param("id"), user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Subject deleted successfully"})
}

// ===== CHAPTERS =====

// CreateChapter
// @Summary Create chapter
// @Tags chapters
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param chapter body services.CreateChapterRequest true "Chapter data"
// @Success 201 {object} services.ChapterResponse
// @Router /subjects/{id}/chapters [post]
func (h *ClassroomHandler) CreateChapter(c *gin.Context) {
	h.LogRequest(c, "Creating chapter", "subject_id", c.Param("id"))

	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req services.CreateChapterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	chapter, err := h.subjects.CreateChapter(c.Request.Context(), c.Param("id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, chapter)
}

// ListChapters
// @Summary List chapters with note counts
// @Tags chapters
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {array} services.ChapterResponse
// @Router /subjects/{id}/chapters [get]
func (h *ClassroomHandler) ListChapters(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	chapters, err := h.subjects.ListChapters(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, chapters))
}

// DeleteChapter
// @Summary Delete chapter
// @Tags chapters
// @Param id path string true "Chapter ID"
// @Success 200 {object} MessageResponse
// @Router /chapters/{id} [delete]
func (h *ClassroomHandler) DeleteChapter(c *gin.Context) {
	h.LogRequest(c, "Deleting chapter", "chapter_id", c.Param("id"))

	user := h.currentUser(c)
	if user == nil {
		return
	}

	if err := h.subjects.DeleteChapter(c.Request.Context(), c.Param("id"), user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Chapter deleted successfully"})
}
