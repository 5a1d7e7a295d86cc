package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/edunexus-service/internal/services"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
}

func NewAuthHandler(service services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateProfile links a profile to the caller's identity
// @Summary Create user profile
// @Description Create the local profile for an identity provider account. The bearer token is optional; when present its subject must match provider_uid.
// @Tags auth
// @Accept json
// @Produce json
// @Param profile body services.CreateProfileRequest true "Profile data"
// @Success 201 {object} services.UserResponse
// @Failure 400 {object} ErrorResponse "Invalid request or profile already exists"
// @Failure 403 {object} ErrorResponse "Token belongs to another account"
// @Router /auth/profile [post]
func (h *AuthHandler) CreateProfile(c *gin.Context) {
	h.LogRequest(c, "Creating user profile")

	var req services.CreateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	profile, err := h.service.CreateProfile(c.Request.Context(), &req, GetIdentityFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// Me returns the current profile
// @Summary Get current user
// @Tags auth
// @Produce json
// @Success 200 {object} services.UserResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User profile not found"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}
	resp, err := h.service.Me(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
