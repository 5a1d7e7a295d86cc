package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/edunexus-service/internal/services"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
)

type CommunityHandler struct {
	BaseHandler
	service services.AnnouncementService
}

func NewCommunityHandler(service services.AnnouncementService, logger utils.Logger) *CommunityHandler {
	return &CommunityHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateAnnouncement
// @Summary Post announcement
// @Tags community
// @Accept json
// @Produce json
// @Param announcement body services.CreateAnnouncementRequest true "Announcement"
// @Success 201 {object} services.AnnouncementResponse
// @Failure 403 {object} ErrorResponse "Not a teacher of this subject"
// @Router /community/announcements [post]
func (h *CommunityHandler) CreateAnnouncement(c *gin.Context) {
	h.LogRequest(c, "Creating announcement")

	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req services.CreateAnnouncementRequest
	if !h.bindJSON(c, &req) {
		return
	}

	announcement, err := h.service.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, announcement)
}

// ListChapterAnnouncements
// @Summary List chapter announcements
// @Tags community
// @Produce json
// @Param chapter_id path string true "Chapter ID"
// @Success 200 {array} services.AnnouncementResponse
// @Router /community/chapter/{chapter_id}/announcements [get]
func (h *CommunityHandler) ListChapterAnnouncements(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	announcements, err := h.service.ListChapter(c.Request.Context(), c.Param("chapter_id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, announcements))
}

// ListAllAnnouncements returns announcements across the caller's classrooms
// @Summary List all announcements
// @Tags community
// @Produce json
// @Success 200 {array} services.AnnouncementResponse
// @Router /community/all [get]
func (h *CommunityHandler) ListAllAnnouncements(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	announcements, err := h.service.ListAll(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, announcements))
}
