package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/SAP-F-2025/edunexus-service/internal/cache"
	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
	"github.com/SAP-F-2025/edunexus-service/internal/validator"
)

// maxCodeAttempts bounds join code regeneration on collision.
const maxCodeAttempts = 10

type classroomService struct {
	repo      repositories.Repository
	access    *accessControl
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewClassroomService(repo repositories.Repository, cm *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) ClassroomService {
	return &classroomService{
		repo:      repo,
		access:    newAccessControl(repo),
		cache:     cm,
		logger:    logger,
		validator: validator,
	}
}

func (s *classroomService) Create(ctx context.Context, req *CreateClassroomRequest, actor *models.User) (*ClassroomResponse, error) {
	s.logger.Info("Creating classroom", "name", req.Name, "creator_id", actor.ID)

	if !actor.IsTeacher() {
		return nil, ErrTeacherRequired
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	classroom := &models.Classroom{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedBy:   actor.ID,
	}

	var err error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		if classroom.Code, err = s.uniqueCode(ctx); err != nil {
			return nil, err
		}
		err = s.repo.Classroom().Create(ctx, classroom)
		if err == nil || !repositories.IsDuplicateError(err) {
			break
		}
		s.logger.Warn("Classroom code collision, retrying", "code", classroom.Code)
		classroom.ID = ""
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create classroom: %w", err)
	}

	cache.InvalidateClassroomLists(ctx, s.cache, actor.ID)
	cache.InvalidateDashboards(ctx, s.cache)

	s.logger.Info("Classroom created", "classroom_id", classroom.ID, "code", classroom.Code)
	resp, err := toClassroomResponse(classroom)
	if err != nil {
		return nil, err
	}
	resp.CreatorName = actor.Name
	return &resp, nil
}

func (s *classroomService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := utils.GenerateClassroomCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate classroom code: %w", err)
		}
		taken, err := s.repo.Classroom().ExistsByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check classroom code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique classroom code")
}

func (s *classroomService) Join(ctx context.Context, req *JoinClassroomRequest, actor *models.User) (*ClassroomResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	s.logger.Info("Joining classroom", "code", code, "user_id", actor.ID)

	if err := s.validator.Validate(req); err != nil {
		return nil, ErrInvalidClassroomCode
	}

	classroom, err := s.repo.Classroom().GetByCode(ctx, code)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidClassroomCode
		}
		return nil, fmt.Errorf("failed to find classroom: %w", err)
	}

	member, err := s.repo.Classroom().IsMember(ctx, classroom.ID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member {
		return nil, ErrAlreadyMember
	}

	if err := s.repo.Classroom().AddMember(ctx, &models.ClassroomMember{
		ClassroomID: classroom.ID,
		UserID:      actor.ID,
	}); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	// Every viewer of the classroom sees its member count.
	cache.InvalidateClassroomLists(ctx, s.cache)
	cache.InvalidateDashboards(ctx, s.cache)

	s.logger.Info("Joined classroom", "classroom_id", classroom.ID, "user_id", actor.ID)
	trees, err := buildClassroomTrees(ctx, s.repo, []*models.Classroom{classroom}, nil)
	if err != nil {
		return nil, err
	}
	return &trees[0], nil
}

// List returns joined classrooms for students and created plus assigned
// classrooms for teachers, each with its subject and chapter tree.
func (s *classroomService) List(ctx context.Context, actor *models.User) ([]ClassroomResponse, error) {
	s.logger.Info("Listing classrooms", "user_id", actor.ID, "role", actor.Role)

	var result []ClassroomResponse
	err := s.cache.Classroom.CacheOrExecute(ctx, cache.ClassroomListKey(actor.ID), &result, func() (interface{}, error) {
		return s.listUncached(ctx, actor)
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []ClassroomResponse{}
	}
	return result, nil
}

func (s *classroomService) listUncached(ctx context.Context, actor *models.User) ([]ClassroomResponse, error) {
	var classrooms []*models.Classroom
	if actor.IsTeacher() {
		ids, err := s.access.accessibleClassroomIDs(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if classrooms, err = s.repo.Classroom().ListByIDs(ctx, ids); err != nil {
			return nil, fmt.Errorf("failed to list classrooms: %w", err)
		}
		// Created classrooms first, then joined, then assigned.
		position := make(map[string]int, len(ids))
		for i, id := range ids {
			position[id] = i
		}
		sort.SliceStable(classrooms, func(i, j int) bool {
			return position[classrooms[i].ID] < position[classrooms[j].ID]
		})
	} else {
		var err error
		if classrooms, err = s.repo.Classroom().ListByMember(ctx, actor.ID); err != nil {
			return nil, fmt.Errorf("failed to list joined classrooms: %w", err)
		}
	}
	return buildClassroomTrees(ctx, s.repo, classrooms, nil)
}

// buildClassroomTrees attaches creator names, member counts, subjects and
// chapters. When onlySubjects is non-nil, subjects outside it are left out.
func buildClassroomTrees(ctx context.Context, repo repositories.Repository, classrooms []*models.Classroom, onlySubjects map[string]bool) ([]ClassroomResponse, error) {
	out := make([]ClassroomResponse, 0, len(classrooms))
	if len(classrooms) == 0 {
		return out, nil
	}

	classroomIDs := lo.Map(classrooms, func(c *models.Classroom, _ int) string { return c.ID })
	creators, err := loadUsers(ctx, repo, lo.Map(classrooms, func(c *models.Classroom, _ int) string { return c.CreatedBy })...)
	if err != nil {
		return nil, err
	}
	counts, err := repo.Classroom().CountMembers(ctx, classroomIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	subjects, err := repo.Subject().ListByClassrooms(ctx, classroomIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	if onlySubjects != nil {
		subjects = lo.Filter(subjects, func(s *models.Subject, _ int) bool { return onlySubjects[s.ID] })
	}

	subjectIDs := lo.Map(subjects, func(s *models.Subject, _ int) string { return s.ID })
	chapters, err := repo.Chapter().ListBySubjects(ctx, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	noteCounts, err := repo.Note().CountByChapters(ctx,
		lo.Map(chapters, func(c *models.Chapter, _ int) string { return c.ID }), models.ApprovalApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}

	chaptersBySubject := lo.GroupBy(chapters, func(c *models.Chapter) string { return c.SubjectID })
	subjectsByClassroom := lo.GroupBy(subjects, func(s *models.Subject) string { return s.ClassroomID })

	for _, c := range classrooms {
		resp, err := toClassroomResponse(c)
		if err != nil {
			return nil, err
		}
		resp.CreatorName = creators.name(c.CreatedBy)
		resp.MemberCount = counts[c.ID]
		for _, subj := range subjectsByClassroom[c.ID] {
			sr, err := toSubjectResponse(subj)
			if err != nil {
				return nil, err
			}
			sr.Chapters, err = mapAll(chaptersBySubject[subj.ID], func(ch *models.Chapter) (ChapterResponse, error) {
				return toChapterResponse(ch, noteCounts[ch.ID])
			})
			if err != nil {
				return nil, err
			}
			resp.Subjects = append(resp.Subjects, sr)
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *classroomService) Delete(ctx context.Context, id string, actor *models.User) error {
	s.logger.Info("Deleting classroom", "classroom_id", id, "user_id", actor.ID)

	classroom, err := s.access.loadClassroom(ctx, id)
	if err != nil {
		return err
	}
	if classroom.CreatedBy != actor.ID {
		return NewPermissionError(actor.ID, id, "classroom", "delete", "Only the creator can delete this classroom")
	}

	if err := s.repo.Classroom().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrClassroomNotFound
		}
		return fmt.Errorf("failed to delete classroom: %w", err)
	}

	cache.InvalidateClassroomLists(ctx, s.cache)
	cache.InvalidateDashboards(ctx, s.cache)

	s.logger.Info("Classroom deleted", "classroom_id", id)
	return nil
}
