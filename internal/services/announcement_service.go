package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
	"github.com/SAP-F-2025/edunexus-service/internal/validator"
)

type announcementService struct {
	repo      repositories.Repository
	access    *accessControl
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAnnouncementService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) AnnouncementService {
	return &announcementService{
		repo:      repo,
		access:    newAccessControl(repo),
		logger:    logger,
		validator: validator,
	}
}

func (s *announcementService) Create(ctx context.Context, req *CreateAnnouncementRequest, actor *models.User) (*AnnouncementResponse, error) {
	s.logger.Info("Creating announcement", "chapter_id", req.ChapterID, "user_id", actor.ID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.access.requireChapterTeacher(ctx, req.ChapterID, actor, "announce"); err != nil {
		return nil, err
	}

	announcement := &models.Announcement{
		ChapterID: req.ChapterID,
		Title:     strings.TrimSpace(req.Title),
		Content:   strings.TrimSpace(req.Content),
		CreatedBy: actor.ID,
	}
	if err := s.repo.Announcement().Create(ctx, announcement); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}

	responses, err := toAnnouncementResponses(ctx, s.repo, []*models.Announcement{announcement})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

func (s *announcementService) ListChapter(ctx context.Context, chapterID string, actor *models.User) ([]AnnouncementResponse, error) {
	s.logger.Info("Listing chapter announcements", "chapter_id", chapterID)

	if _, err := s.access.chapterAccess(ctx, chapterID, actor); err != nil {
		return nil, err
	}
	items, err := s.repo.Announcement().ListByChapters(ctx, []string{chapterID})
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return toAnnouncementResponses(ctx, s.repo, items)
}

// ListAll gathers announcements from every chapter of every classroom the
// user can open, newest first.
func (s *announcementService) ListAll(ctx context.Context, actor *models.User) ([]AnnouncementResponse, error) {
	s.logger.Info("Listing all announcements", "user_id", actor.ID)

	classroomIDs, err := s.access.accessibleClassroomIDs(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(classroomIDs) == 0 {
		return []AnnouncementResponse{}, nil
	}
	subjects, err := s.repo.Subject().ListByClassrooms(ctx, classroomIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	chapters, err := s.repo.Chapter().ListBySubjects(ctx,
		lo.Map(subjects, func(s *models.Subject, _ int) string { return s.ID }))
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	items, err := s.repo.Announcement().ListByChapters(ctx,
		lo.Map(chapters, func(c *models.Chapter, _ int) string { return c.ID }))
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return toAnnouncementResponses(ctx, s.repo, items)
}
