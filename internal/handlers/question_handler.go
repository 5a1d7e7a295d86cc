package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/edunexus-service/internal/services"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	service services.QuestionService
}

func NewQuestionHandler(service services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateQuestion asks a question on a chapter
// @Summary Ask question
// @Tags questions
// @Accept json
// @Produce json
// @Param question body services.CreateQuestionRequest true "Question data"
// @Success 201 {object} services.QuestionResponse
// @Failure 403 {object} ErrorResponse "No access to chapter"
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req services.CreateQuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	question, err := h.service.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// ListChapterQuestions
// @Summary List chapter questions
// @Description Students see public questions plus their own. Teachers see all.
// @Tags questions
// @Produce json
// @Param chapter_id path string true "Chapter ID"
// @Success 200 {array} services.QuestionResponse
// @Router /questions/chapter/{chapter_id} [get]
func (h *QuestionHandler) ListChapterQuestions(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	questions, err := h.service.ListChapter(c.Request.Context(), c.Param("chapter_id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, questions))
}

// ListCommunityQuestions returns answered public questions
// @Summary List community questions
// @Tags questions
// @Produce json
// @Param chapter_id path string true "Chapter ID"
// @Success 200 {array} services.QuestionResponse
// @Router /questions/chapter/{chapter_id}/community [get]
func (h *QuestionHandler) ListCommunityQuestions(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	questions, err := h.service.ListCommunity(c.Request.Context(), c.Param("chapter_id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, questions))
}

// MyQuestions
// @Summary List my questions
// @Tags questions
// @Produce json
// @Success 200 {array} services.QuestionResponse
// @Router /questions/my-questions [get]
func (h *QuestionHandler) MyQuestions(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	questions, err := h.service.ListMine(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, questions))
}

// AnswerQuestion
// @Summary Answer question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param answer body services.AnswerQuestionRequest true "Answer"
// @Success 200 {object} services.QuestionResponse
// @Failure 403 {object} ErrorResponse "Not a teacher of this subject"
// @Router /questions/{id}/answer [post]
func (h *QuestionHandler) AnswerQuestion(c *gin.Context) {
	h.LogRequest(c, "Answering question", "question_id", c.Param("id"))

	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req services.AnswerQuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	question, err := h.service.Answer(c.Request.Context(), c.Param("id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion
// @Summary Delete question
// @Description Only the author may delete.
// @Tags questions
// @Param id path string true "Question ID"
// @Success 200 {object} MessageResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	h.LogRequest(c, "Deleting question", "question_id", c.Param("id"))

	user := h.currentUser(c)
	if user == nil {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Question deleted successfully"})
}
