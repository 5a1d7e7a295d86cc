package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/services"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
)

// IdentityVerifier validates a bearer token issued by the identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

// CasdoorAuthMiddleware resolves Casdoor tokens into local profiles.
type CasdoorAuthMiddleware struct {
	verifier IdentityVerifier
	users    services.AuthService
	logger   utils.Logger
}

func NewCasdoorAuthMiddleware(verifier IdentityVerifier, users services.AuthService, logger utils.Logger) *CasdoorAuthMiddleware {
	return &CasdoorAuthMiddleware{
		verifier: verifier,
		users:    users,
		logger:   logger,
	}
}

// AuthMiddleware requires a valid token whose identity has a profile.
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error(), nil)
			return
		}

		identity, err := cam.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			utils.GetLogger(c, cam.logger).Warn("Token verification failed", "error", err)
			abortWithError(c, http.StatusUnauthorized, "Invalid authentication credentials", nil)
			return
		}

		user, err := cam.users.GetByProviderUID(c.Request.Context(), identity.UID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				abortWithError(c, http.StatusNotFound, "User profile not found", nil)
				return
			}
			utils.GetLogger(c, cam.logger).Error("Failed to load user profile", "error", err, "uid", identity.UID)
			abortWithError(c, http.StatusInternalServerError, "Internal server error", nil)
			return
		}

		c.Set("identity", identity)
		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("user_role", user.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware records the token identity when one is present and
// valid. It never loads a profile, so it serves profile creation.
func (cam *CasdoorAuthMiddleware) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.Next()
			return
		}
		if identity, err := cam.verifier.Verify(c.Request.Context(), token); err == nil {
			c.Set("identity", identity)
		}
		c.Next()
	}
}

// RequireRoleMiddleware checks the profile role set by AuthMiddleware.
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusForbidden, "user role not found in context", nil)
			return
		}
		for _, required := range requiredRoles {
			if role == required {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles), nil)
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

// GetIdentityFromContext returns the verified token identity, if any.
func GetIdentityFromContext(c *gin.Context) *models.Identity {
	value, exists := c.Get("identity")
	if !exists {
		return nil
	}
	identity, _ := value.(*models.Identity)
	return identity
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get("user_role")
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}
