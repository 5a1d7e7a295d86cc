package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
	"github.com/SAP-F-2025/edunexus-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *authService) CreateProfile(ctx context.Context, req *CreateProfileRequest, identity *models.Identity) (*UserResponse, error) {
	if identity != nil && req.ProviderUID == "" {
		req.ProviderUID = identity.UID
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	s.logger.Info("Creating user profile", "provider_uid", req.ProviderUID, "role", req.Role)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if identity != nil && identity.UID != req.ProviderUID {
		return nil, NewPermissionError(identity.UID, req.ProviderUID, "profile", "create", "Token does not match provider_uid")
	}

	if _, err := s.repo.User().GetByProviderUID(ctx, req.ProviderUID); err == nil {
		return nil, ErrProfileExists
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}

	if _, err := s.repo.User().GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailRegistered
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := &models.User{
		ProviderUID: req.ProviderUID,
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User profile created", "user_id", user.ID)
	return toUserResponse(user)
}

func (s *authService) GetByProviderUID(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.repo.User().GetByProviderUID(ctx, uid)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *authService) Me(ctx context.Context, actor *models.User) (*UserResponse, error) {
	return toUserResponse(actor)
}
