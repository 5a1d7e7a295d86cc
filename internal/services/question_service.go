package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/SAP-F-2025/edunexus-service/internal/cache"
	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
	"github.com/SAP-F-2025/edunexus-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	access    *accessControl
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, cm *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		access:    newAccessControl(repo),
		cache:     cm,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, actor *models.User) (*QuestionResponse, error) {
	s.logger.Info("Creating question", "chapter_id", req.ChapterID, "user_id", actor.ID, "is_private", req.IsPrivate)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.access.chapterAccess(ctx, req.ChapterID, actor); err != nil {
		return nil, err
	}

	question := &models.Question{
		ChapterID: req.ChapterID,
		UserID:    actor.ID,
		Title:     strings.TrimSpace(req.Title),
		Content:   strings.TrimSpace(req.Content),
		IsPrivate: req.IsPrivate,
	}
	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	cache.InvalidateDashboards(ctx, s.cache)

	resp, err := toQuestionResponse(question, userDirectory{actor.ID: actor})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListChapter shows teachers every question; students see public questions
// and their own private ones.
func (s *questionService) ListChapter(ctx context.Context, chapterID string, actor *models.User) ([]QuestionResponse, error) {
	s.logger.Info("Listing chapter questions", "chapter_id", chapterID, "user_id", actor.ID)

	if _, err := s.access.chapterAccess(ctx, chapterID, actor); err != nil {
		return nil, err
	}
	questions, err := s.repo.Question().List(ctx, repositories.QuestionFilters{ChapterID: &chapterID})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	if !actor.IsTeacher() {
		questions = lo.Filter(questions, func(q *models.Question, _ int) bool {
			return !q.IsPrivate || q.UserID == actor.ID
		})
	}
	return toQuestionResponses(ctx, s.repo, questions)
}

// ListCommunity returns public questions that have an answer.
func (s *questionService) ListCommunity(ctx context.Context, chapterID string, actor *models.User) ([]QuestionResponse, error) {
	s.logger.Info("Listing community questions", "chapter_id", chapterID)

	if _, err := s.access.chapterAccess(ctx, chapterID, actor); err != nil {
		return nil, err
	}
	questions, err := s.repo.Question().List(ctx, repositories.QuestionFilters{
		ChapterID:  &chapterID,
		IsPrivate:  lo.ToPtr(false),
		IsAnswered: lo.ToPtr(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return toQuestionResponses(ctx, s.repo, questions)
}

func (s *questionService) ListMine(ctx context.Context, actor *models.User) ([]QuestionResponse, error) {
	s.logger.Info("Listing own questions", "user_id", actor.ID)

	questions, err := s.repo.Question().List(ctx, repositories.QuestionFilters{UserID: &actor.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return toQuestionResponses(ctx, s.repo, questions)
}

func (s *questionService) Answer(ctx context.Context, id string, req *AnswerQuestionRequest, actor *models.User) (*QuestionResponse, error) {
	s.logger.Info("Answering question", "question_id", id, "user_id", actor.ID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireChapterTeacher(ctx, question.ChapterID, actor, "answer question"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	question.Answer = lo.ToPtr(strings.TrimSpace(req.Content))
	question.AnsweredBy = &actor.ID
	question.AnsweredAt = &now
	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	cache.InvalidateDashboards(ctx, s.cache)

	responses, err := toQuestionResponses(ctx, s.repo, []*models.Question{question})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// Delete is allowed to the author only.
func (s *questionService) Delete(ctx context.Context, id string, actor *models.User) error {
	s.logger.Info("Deleting question", "question_id", id, "user_id", actor.ID)

	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return err
	}
	if question.UserID != actor.ID {
		return NewPermissionError(actor.ID, id, "question", "delete", "Not allowed to delete this question")
	}
	if err := s.repo.Question().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}

	cache.InvalidateDashboards(ctx, s.cache)
	return nil
}

func (s *questionService) getQuestion(ctx context.Context, id string) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}
