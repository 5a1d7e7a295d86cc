package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/services"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
)

// MaxUploadSize bounds a single note file.
const MaxUploadSize = 20 << 20

type NoteHandler struct {
	BaseHandler
	service services.NoteService
}

func NewNoteHandler(service services.NoteService, logger utils.Logger) *NoteHandler {
	return &NoteHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListChapterNotes returns the notes of a chapter visible to the caller
// @Summary List chapter notes
// @Description Students see approved public notes plus their own. Teachers see every note.
// @Tags notes
// @Produce json
// @Param chapter_id path string true "Chapter ID"
// @Success 200 {array} services.NoteResponse
// @Failure 403 {object} ErrorResponse "No access to chapter"
// @Failure 404 {object} ErrorResponse "Chapter not found"
// @Router /notes/chapter/{chapter_id} [get]
func (h *NoteHandler) ListChapterNotes(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	notes, err := h.service.ListChapterNotes(c.Request.Context(), c.Param("chapter_id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, notes))
}

// MyNotes
// @Summary List my notes
// @Tags notes
// @Produce json
// @Success 200 {array} services.NoteResponse
// @Router /notes/my-notes [get]
func (h *NoteHandler) MyNotes(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	notes, err := h.service.MyNotes(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, notes))
}

// UploadNote stores a PDF or text file as a chapter note
// @Summary Upload note
// @Description Teacher uploads and private student uploads are approved immediately. Public student uploads wait for review.
// @Tags notes
// @Accept multipart/form-data
// @Produce json
// @Param chapter_id path string true "Chapter ID"
// @Param title formData string false "Note title (defaults to the file name)"
// @Param visibility formData string false "public or private (default public)"
// @Param file formData file true "PDF or TXT file"
// @Success 201 {object} services.NoteResponse
// @Failure 400 {object} ErrorResponse "Unsupported or unreadable file"
// @Failure 413 {object} ErrorResponse "File too large"
// @Router /upload/chapter/{chapter_id}/note [post]
func (h *NoteHandler) UploadNote(c *gin.Context) {
	h.LogRequest(c, "Uploading note", "chapter_id", c.Param("chapter_id"))

	user := h.currentUser(c)
	if user == nil {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request payload", "file is required")
		return
	}
	if header.Size > MaxUploadSize {
		abortWithError(c, http.StatusRequestEntityTooLarge, "File too large",
			fmt.Sprintf("maximum size is %d MB", MaxUploadSize>>20))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded file")
		abortWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		h.LogError(c, err, "Failed to read uploaded file")
		abortWithError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	req := services.UploadNoteRequest{
		Title:      title,
		Visibility: models.NoteVisibility(c.DefaultPostForm("visibility", string(models.VisibilityPublic))),
		FileName:   header.Filename,
		Data:       data,
	}

	note, err := h.service.Upload(c.Request.Context(), c.Param("chapter_id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, note)
}

// SetApproval approves or rejects a pending note
// @Summary Review note
// @Tags notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param decision body services.NoteApprovalRequest true "approved or rejected"
// @Success 200 {object} services.NoteResponse
// @Failure 403 {object} ErrorResponse "Not a teacher of this subject"
// @Router /notes/{id}/approval [patch]
func (h *NoteHandler) SetApproval(c *gin.Context) {
	h.LogRequest(c, "Reviewing note", "note_id", c.Param("id"))

	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req services.NoteApprovalRequest
	if !h.bindJSON(c, &req) {
		return
	}

	note, err := h.service.SetApproval(c.Request.Context(), c.Param("id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, note)
}

// DeleteNote
// @Summary Delete note
// @Description Allowed for the uploader and for teachers of the subject.
// @Tags notes
// @Param id path string true "Note ID"
// @Success 200 {object} MessageResponse
// @Router /notes/{id} [delete]
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	h.LogRequest(c, "Deleting note", "note_id", c.Param("id"))

	user := h.currentUser(c)
	if user == nil {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Note deleted successfully"})
}
