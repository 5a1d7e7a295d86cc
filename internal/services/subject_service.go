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

type subjectService struct {
	repo      repositories.Repository
	access    *accessControl
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSubjectService(repo repositories.Repository, cm *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) SubjectService {
	return &subjectService{
		repo:      repo,
		access:    newAccessControl(repo),
		cache:     cm,
		logger:    logger,
		validator: validator,
	}
}

func (s *subjectService) CreateSubject(ctx context.Context, req *CreateSubjectRequest, actor *models.User) (*SubjectResponse, error) {
	s.logger.Info("Creating subject", "classroom_id", req.ClassroomID, "name", req.Name, "user_id", actor.ID)

	if !actor.IsTeacher() {
		return nil, ErrTeacherRequired
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.access.requireClassroomAccess(ctx, req.ClassroomID, actor); err != nil {
		return nil, err
	}

	subject := &models.Subject{
		ClassroomID: req.ClassroomID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := s.repo.Subject().Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	cache.InvalidateClassroomLists(ctx, s.cache)

	s.logger.Info("Subject created", "subject_id", subject.ID)
	resp, err := toSubjectResponse(subject)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *subjectService) ListSubjects(ctx context.Context, classroomID string, actor *models.User) ([]SubjectResponse, error) {
	s.logger.Info("Listing subjects", "classroom_id", classroomID)

	if _, err := s.access.requireClassroomAccess(ctx, classroomID, actor); err != nil {
		return nil, err
	}
	subjects, err := s.repo.Subject().ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return mapAll(subjects, toSubjectResponse)
}

func (s *subjectService) DeleteSubject(ctx context.Context, id string, actor *models.User) error {
	s.logger.Info("Deleting subject", "subject_id", id, "user_id", actor.ID)

	_, classroom, err := s.access.loadSubject(ctx, id)
	if err != nil {
		return err
	}
	if classroom.CreatedBy != actor.ID {
		return NewPermissionError(actor.ID, id, "subject", "delete", "Not authorized to delete this subject")
	}

	if err := s.repo.Subject().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSubjectNotFound
		}
		return fmt.Errorf("failed to delete subject: %w", err)
	}

	cache.InvalidateClassroomLists(ctx, s.cache)
	cache.InvalidateDashboards(ctx, s.cache)
	return nil
}

func (s *subjectService) CreateChapter(ctx context.Context, subjectID string, req *CreateChapterRequest, actor *models.User) (*ChapterResponse, error) {
	s.logger.Info("Creating chapter", "subject_id", subjectID, "name", req.Name, "user_id", actor.ID)

	req.SubjectID = subjectID
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, _, err := s.access.requireSubjectTeacher(ctx, subjectID, actor, "create chapter"); err != nil {
		return nil, err
	}

	chapter := &models.Chapter{
		SubjectID:   subjectID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := s.repo.Chapter().Create(ctx, chapter); err != nil {
		return nil, fmt.Errorf("failed to create chapter: %w", err)
	}

	cache.InvalidateClassroomLists(ctx, s.cache)

	s.logger.Info("Chapter created", "chapter_id", chapter.ID)
	resp, err := toChapterResponse(chapter, 0)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *subjectService) ListChapters(ctx context.Context, subjectID string, actor *models.User) ([]ChapterResponse, error) {
	s.logger.Info("Listing chapters", "subject_id", subjectID)

	if _, _, err := s.access.loadSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	chapters, err := s.repo.Chapter().ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	counts, err := s.repo.Note().CountByChapters(ctx,
		lo.Map(chapters, func(c *models.Chapter, _ int) string { return c.ID }), models.ApprovalApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}
	return mapAll(chapters, func(c *models.Chapter) (ChapterResponse, error) {
		return toChapterResponse(c, counts[c.ID])
	})
}

func (s *subjectService) DeleteChapter(ctx context.Context, id string, actor *models.User) error {
	s.logger.Info("Deleting chapter", "chapter_id", id, "user_id", actor.ID)

	chapter, err := s.repo.Chapter().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrChapterNotFound
		}
		return fmt.Errorf("failed to get chapter: %w", err)
	}
	if _, _, err := s.access.requireSubjectTeacher(ctx, chapter.SubjectID, actor, "delete chapter"); err != nil {
		return err
	}

	if err := s.repo.Chapter().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrChapterNotFound
		}
		return fmt.Errorf("failed to delete chapter: %w", err)
	}

	cache.InvalidateClassroomLists(ctx, s.cache)
	cache.InvalidateDashboards(ctx, s.cache)
	return nil
}
