package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/SAP-F-2025/edunexus-service/internal/cache"
	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
	"github.com/SAP-F-2025/edunexus-service/internal/validator"
)

type teacherAccessService struct {
	repo      repositories.Repository
	access    *accessControl
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTeacherAccessService(repo repositories.Repository, cm *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) TeacherAccessService {
	return &teacherAccessService{
		repo:      repo,
		access:    newAccessControl(repo),
		cache:     cm,
		logger:    logger,
		validator: validator,
	}
}

// Assign grants a teacher, looked up by email, the right to manage a subject.
func (s *teacherAccessService) Assign(ctx context.Context, req *AssignTeacherRequest, actor *models.User) (*TeacherAccessResponse, error) {
	req.TeacherEmail = strings.TrimSpace(req.TeacherEmail)
	s.logger.Info("Assigning teacher", "subject_id", req.SubjectID, "teacher_email", req.TeacherEmail, "user_id", actor.ID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, _, err := s.access.requireSubjectTeacher(ctx, req.SubjectID, actor, "assign teacher"); err != nil {
		return nil, err
	}

	teacher, err := s.repo.User().GetByEmail(ctx, req.TeacherEmail)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("failed to find teacher: %w", err)
	}
	if !teacher.IsTeacher() {
		return nil, NewBusinessRuleError("assignee_must_be_teacher", "User is not a teacher",
			map[string]interface{}{"email": req.TeacherEmail})
	}

	exists, err := s.repo.TeacherAccess().Exists(ctx, req.SubjectID, teacher.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check teacher access: %w", err)
	}
	if exists {
		return nil, ErrAccessExists
	}

	grant := &models.TeacherAccess{SubjectID: req.SubjectID, TeacherID: teacher.ID}
	if err := s.repo.TeacherAccess().Create(ctx, grant); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrAccessExists
		}
		return nil, fmt.Errorf("failed to create teacher access: %w", err)
	}

	cache.InvalidateClassroomLists(ctx, s.cache, teacher.ID)
	cache.InvalidateDashboards(ctx, s.cache)

	s.logger.Info("Teacher assigned", "access_id", grant.ID, "teacher_id", teacher.ID)
	resp, err := toTeacherAccessResponse(grant, userDirectory{teacher.ID: teacher})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *teacherAccessService) List(ctx context.Context, subjectID string, actor *models.User) ([]TeacherAccessResponse, error) {
	s.logger.Info("Listing teacher access", "subject_id", subjectID)

	if _, _, err := s.access.requireSubjectTeacher(ctx, subjectID, actor, "list teachers"); err != nil {
		return nil, err
	}
	grants, err := s.repo.TeacherAccess().ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teacher access: %w", err)
	}
	users, err := loadUsers(ctx, s.repo, lo.Map(grants, func(g *models.TeacherAccess, _ int) string { return g.TeacherID })...)
	if err != nil {
		return nil, err
	}
	return mapAll(grants, func(g *models.TeacherAccess) (TeacherAccessResponse, error) {
		return toTeacherAccessResponse(g, users)
	})
}

func (s *teacherAccessService) Remove(ctx context.Context, id string, actor *models.User) error {
	s.logger.Info("Removing teacher access", "access_id", id, "user_id", actor.ID)

	grant, err := s.repo.TeacherAccess().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTeacherAccessNotFound
		}
		return fmt.Errorf("failed to get teacher access: %w", err)
	}
	if _, _, err := s.access.requireSubjectTeacher(ctx, grant.SubjectID, actor, "remove teacher"); err != nil {
		return err
	}

	if err := s.repo.TeacherAccess().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTeacherAccessNotFound
		}
		return fmt.Errorf("failed to delete teacher access: %w", err)
	}

	cache.InvalidateClassroomLists(ctx, s.cache, grant.TeacherID)
	cache.InvalidateDashboards(ctx, s.cache)
	return nil
}
