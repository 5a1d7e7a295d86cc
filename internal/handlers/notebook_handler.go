package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/edunexus-service/internal/services"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
)

type NotebookHandler struct {
	BaseHandler
	service services.NotebookService
}

func NewNotebookHandler(service services.NotebookService, logger utils.Logger) *NotebookHandler {
	return &NotebookHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Query answers a question from the chapter's approved public notes
// @Summary Ask the chapter notebook
// @Tags notebook
// @Accept json
// @Produce json
// @Param chapter_id path string true "Chapter ID"
// @Param query body services.NotebookQueryRequest true "Question"
// @Success 200 {object} services.NotebookResponse
// @Failure 403 {object} ErrorResponse "No access to chapter"
// @Router /notebook/chapter/{chapter_id}/query [post]
func (h *NotebookHandler) Query(c *gin.Context) {
	h.LogRequest(c, "Notebook query", "chapter_id", c.Param("chapter_id"))

	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req services.NotebookQueryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Query(c.Request.Context(), c.Param("chapter_id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Recommendations
// @Summary Study recommendations
// @Tags notebook
// @Produce json
// @Param chapter_id path string true "Chapter ID"
// @Param query query string false "Topic to focus on"
// @Success 200 {object} services.RecommendationsResponse
// @Router /notebook/chapter/{chapter_id}/recommendations [get]
func (h *NotebookHandler) Recommendations(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	resp, err := h.service.Recommendations(c.Request.Context(), c.Param("chapter_id"), c.Query("query"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
