package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/SAP-F-2025/edunexus-service/internal/cache"
	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, cm *cache.CacheManager, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		cache:  cm,
		logger: logger,
	}
}

// Teacher aggregates everything the teacher home screen shows. Accessed
// classrooms only carry the subjects the teacher was granted.
func (s *dashboardService) Teacher(ctx context.Context, actor *models.User) (*TeacherDashboardResponse, error) {
	s.logger.Info("Getting teacher dashboard", "teacher_id", actor.ID)

	if !actor.IsTeacher() {
		return nil, ErrTeacherRequired
	}

	var result TeacherDashboardResponse
	err := s.cache.Dashboard.CacheOrExecute(ctx, cache.DashboardKey(actor.ID), &result, func() (interface{}, error) {
		return s.build(ctx, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *dashboardService) build(ctx context.Context, teacherID string) (*TeacherDashboardResponse, error) {
	created, err := s.repo.Classroom().ListByCreator(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list created classrooms: %w", err)
	}
	createdTrees, err := buildClassroomTrees(ctx, s.repo, created, nil)
	if err != nil {
		return nil, err
	}

	accessedTrees, err := s.accessedClassrooms(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	noteRows, err := s.repo.Dashboard().PendingNotes(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending notes: %w", err)
	}
	questionRows, err := s.repo.Dashboard().UnansweredQuestions(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unanswered questions: %w", err)
	}

	pendingNotes, err := mapAll(noteRows, func(row repositories.PendingNoteRow) (PendingNoteResponse, error) {
		note := row.Note
		users := userDirectory{note.UploadedBy: {ID: note.UploadedBy, Name: row.Scope.AuthorName}}
		resp, err := toNoteResponse(&note, users)
		if err != nil {
			return PendingNoteResponse{}, err
		}
		return PendingNoteResponse{
			NoteResponse: resp,
			ChapterName:  row.Scope.ChapterName,
			AuthorID:     note.UploadedBy,
			AuthorName:   row.Scope.AuthorName,
			Status:       string(note.ApprovalStatus),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	pendingQuestions, err := mapAll(questionRows, func(row repositories.PendingQuestionRow) (PendingQuestionResponse, error) {
		question := row.Question
		users := userDirectory{question.UserID: {ID: question.UserID, Name: row.Scope.AuthorName}}
		resp, err := toQuestionResponse(&question, users)
		if err != nil {
			return PendingQuestionResponse{}, err
		}
		return PendingQuestionResponse{
			QuestionResponse: resp,
			ChapterName:      row.Scope.ChapterName,
			AuthorID:         question.UserID,
			AuthorName:       row.Scope.AuthorName,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &TeacherDashboardResponse{
		CreatedClassrooms:  createdTrees,
		AccessedClassrooms: accessedTrees,
		PendingNotes:       pendingNotes,
		PendingQuestions:   pendingQuestions,
	}, nil
}

func (s *dashboardService) accessedClassrooms(ctx context.Context, teacherID string) ([]ClassroomResponse, error) {
	grants, err := s.repo.TeacherAccess().ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teacher access: %w", err)
	}
	if len(grants) == 0 {
		return []ClassroomResponse{}, nil
	}

	subjectIDs := lo.Map(grants, func(g *models.TeacherAccess, _ int) string { return g.SubjectID })
	subjects, err := s.repo.Subject().ListByIDs(ctx, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list granted subjects: %w", err)
	}
	classroomIDs := lo.Uniq(lo.Map(subjects, func(s *models.Subject, _ int) string { return s.ClassroomID }))
	classrooms, err := s.repo.Classroom().ListByIDs(ctx, classroomIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list accessed classrooms: %w", err)
	}
	return buildClassroomTrees(ctx, s.repo, classrooms, lo.SliceToMap(subjectIDs, func(id string) (string, bool) {
		return id, true
	}))
}
