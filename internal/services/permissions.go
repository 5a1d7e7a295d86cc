package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
)

// chapterScope is a chapter together with the entities above it and what the
// caller may do there.
type chapterScope struct {
	Chapter   *models.Chapter
	Subject   *models.Subject
	Classroom *models.Classroom
	IsTeacher bool
}

// accessControl answers the membership questions every feature asks.
type accessControl struct {
	repo repositories.Repository
}

func newAccessControl(repo repositories.Repository) *accessControl {
	return &accessControl{repo: repo}
}

// classroomAccess: member, creator, or granted on any subject of the classroom.
func (a *accessControl) classroomAccess(ctx context.Context, classroom *models.Classroom, userID string) (bool, error) {
	if classroom.CreatedBy == userID {
		return true, nil
	}

	member, err := a.repo.Classroom().IsMember(ctx, classroom.ID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	if member {
		return true, nil
	}

	grants, err := a.repo.TeacherAccess().ListByTeacher(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to list teacher access: %w", err)
	}
	if len(grants) == 0 {
		return false, nil
	}
	subjects, err := a.repo.Subject().ListByClassroom(ctx, classroom.ID)
	if err != nil {
		return false, fmt.Errorf("failed to list subjects: %w", err)
	}
	inClassroom := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		inClassroom[s.ID] = true
	}
	for _, g := range grants {
		if inClassroom[g.SubjectID] {
			return true, nil
		}
	}
	return false, nil
}

// subjectTeacher: explicit grant on the subject, or creator of its classroom.
func (a *accessControl) subjectTeacher(ctx context.Context, subject *models.Subject, classroom *models.Classroom, userID string) (bool, error) {
	if classroom != nil && classroom.CreatedBy == userID {
		return true, nil
	}
	granted, err := a.repo.TeacherAccess().Exists(ctx, subject.ID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check teacher access: %w", err)
	}
	return granted, nil
}

func (a *accessControl) loadClassroom(ctx context.Context, id string) (*models.Classroom, error) {
	classroom, err := a.repo.Classroom().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassroomNotFound
		}
		return nil, fmt.Errorf("failed to get classroom: %w", err)
	}
	return classroom, nil
}

func (a *accessControl) loadSubject(ctx context.Context, id string) (*models.Subject, *models.Classroom, error) {
	subject, err := a.repo.Subject().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrSubjectNotFound
		}
		return nil, nil, fmt.Errorf("failed to get subject: %w", err)
	}
	classroom, err := a.loadClassroom(ctx, subject.ClassroomID)
	if err != nil {
		return nil, nil, err
	}
	return subject, classroom, nil
}

// requireClassroomAccess loads the classroom and rejects callers outside it.
func (a *accessControl) requireClassroomAccess(ctx context.Context, classroomID string, actor *models.User) (*models.Classroom, error) {
	classroom, err := a.loadClassroom(ctx, classroomID)
	if err != nil {
		return nil, err
	}
	ok, err := a.classroomAccess(ctx, classroom, actor.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewPermissionError(actor.ID, classroomID, "classroom", "access", "No access to this classroom")
	}
	return classroom, nil
}

// requireSubjectTeacher loads the subject and rejects anyone but its teachers.
func (a *accessControl) requireSubjectTeacher(ctx context.Context, subjectID string, actor *models.User, action string) (*models.Subject, *models.Classroom, error) {
	subject, classroom, err := a.loadSubject(ctx, subjectID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.IsTeacher() {
		return nil, nil, NewPermissionError(actor.ID, subjectID, "subject", action, "Teacher access required")
	}
	ok, err := a.subjectTeacher(ctx, subject, classroom, actor.ID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, NewPermissionError(actor.ID, subjectID, "subject", action, "No teacher access to this subject")
	}
	return subject, classroom, nil
}

// chapterAccess resolves the chapter tree and the caller's rights in it.
func (a *accessControl) chapterAccess(ctx context.Context, chapterID string, actor *models.User) (*chapterScope, error) {
	chapter, err := a.repo.Chapter().GetByID(ctx, chapterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	subject, classroom, err := a.loadSubject(ctx, chapter.SubjectID)
	if err != nil {
		return nil, err
	}

	ok, err := a.classroomAccess(ctx, classroom, actor.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewPermissionError(actor.ID, chapterID, "chapter", "access", "No access to this chapter")
	}

	scope := &chapterScope{Chapter: chapter, Subject: subject, Classroom: classroom}
	if actor.IsTeacher() {
		if scope.IsTeacher, err = a.subjectTeacher(ctx, subject, classroom, actor.ID); err != nil {
			return nil, err
		}
	}
	return scope, nil
}

// requireChapterTeacher is chapterAccess plus the subject teacher check.
func (a *accessControl) requireChapterTeacher(ctx context.Context, chapterID string, actor *models.User, action string) (*chapterScope, error) {
	scope, err := a.chapterAccess(ctx, chapterID, actor)
	if err != nil {
		return nil, err
	}
	if !scope.IsTeacher {
		return nil, NewPermissionError(actor.ID, chapterID, "chapter", action, "Teacher access required for this chapter")
	}
	return scope, nil
}

// accessibleClassroomIDs lists every classroom the user can open: joined,
// created, and those holding a subject they were granted.
func (a *accessControl) accessibleClassroomIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	seen := map[string]bool{}
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	created, err := a.repo.Classroom().ListByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list created classrooms: %w", err)
	}
	for _, c := range created {
		add(c.ID)
	}

	joined, err := a.repo.Classroom().ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined classrooms: %w", err)
	}
	for _, c := range joined {
		add(c.ID)
	}

	grants, err := a.repo.TeacherAccess().ListByTeacher(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teacher access: %w", err)
	}
	if len(grants) > 0 {
		subjectIDs := make([]string, len(grants))
		for i, g := range grants {
			subjectIDs[i] = g.SubjectID
		}
		subjects, err := a.repo.Subject().ListByIDs(ctx, subjectIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to list granted subjects: %w", err)
		}
		for _, s := range subjects {
			add(s.ClassroomID)
		}
	}
	return ids, nil
}
