package services

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/samber/lo"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
)

// userDirectory resolves display names for a batch of user ids.
type userDirectory map[string]*models.User

func loadUsers(ctx context.Context, repo repositories.Repository, ids ...string) (userDirectory, error) {
	ids = lo.Uniq(lo.Compact(ids))
	if len(ids) == 0 {
		return userDirectory{}, nil
	}
	users, err := repo.User().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return lo.KeyBy(users, func(u *models.User) string { return u.ID }), nil
}

func (d userDirectory) name(id string) string {
	if u, ok := d[id]; ok {
		return u.Name
	}
	return ""
}

func (d userDirectory) namePtr(id *string) *string {
	if id == nil {
		return nil
	}
	if u, ok := d[*id]; ok {
		return &u.Name
	}
	return nil
}

// mapAll maps items in order and stops at the first error.
func mapAll[S, T any](items []S, fn func(S) (T, error)) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		mapped, err := fn(item)
		if err != nil {
			return nil, err
		}
		out = append(out, mapped)
	}
	return out, nil
}

func toUserResponse(user *models.User) (*UserResponse, error) {
	resp := &UserResponse{}
	if err := copier.Copy(resp, user); err != nil {
		return nil, fmt.Errorf("failed to map user: %w", err)
	}
	return resp, nil
}

func toChapterResponse(chapter *models.Chapter, noteCount int64) (ChapterResponse, error) {
	var resp ChapterResponse
	if err := copier.Copy(&resp, chapter); err != nil {
		return resp, fmt.Errorf("failed to map chapter: %w", err)
	}
	resp.NoteCount = noteCount
	return resp, nil
}

func toSubjectResponse(subject *models.Subject) (SubjectResponse, error) {
	var resp SubjectResponse
	if err := copier.Copy(&resp, subject); err != nil {
		return resp, fmt.Errorf("failed to map subject: %w", err)
	}
	resp.Chapters = []ChapterResponse{}
	return resp, nil
}

func toClassroomResponse(classroom *models.Classroom) (ClassroomResponse, error) {
	var resp ClassroomResponse
	if err := copier.Copy(&resp, classroom); err != nil {
		return resp, fmt.Errorf("failed to map classroom: %w", err)
	}
	resp.Subjects = []SubjectResponse{}
	return resp, nil
}

func toNoteResponse(note *models.Note, users userDirectory) (NoteResponse, error) {
	var resp NoteResponse
	if err := copier.Copy(&resp, note); err != nil {
		return resp, fmt.Errorf("failed to map note: %w", err)
	}
	resp.UploaderName = users.name(note.UploadedBy)
	if u, ok := users[note.UploadedBy]; ok {
		resp.UploaderRole = u.Role
	}
	resp.ApproverName = users.namePtr(note.ApprovedBy)
	return resp, nil
}

func toNoteResponses(ctx context.Context, repo repositories.Repository, notes []*models.Note) ([]NoteResponse, error) {
	ids := make([]string, 0, len(notes)*2)
	for _, n := range notes {
		ids = append(ids, n.UploadedBy, lo.FromPtr(n.ApprovedBy))
	}
	users, err := loadUsers(ctx, repo, ids...)
	if err != nil {
		return nil, err
	}
	return mapAll(notes, func(n *models.Note) (NoteResponse, error) {
		return toNoteResponse(n, users)
	})
}

func toQuestionResponse(question *models.Question, users userDirectory) (QuestionResponse, error) {
	var resp QuestionResponse
	if err := copier.Copy(&resp, question); err != nil {
		return resp, fmt.Errorf("failed to map question: %w", err)
	}
	resp.UserName = users.name(question.UserID)
	resp.AnswererName = users.namePtr(question.AnsweredBy)
	return resp, nil
}

func toQuestionResponses(ctx context.Context, repo repositories.Repository, questions []*models.Question) ([]QuestionResponse, error) {
	ids := make([]string, 0, len(questions)*2)
	for _, q := range questions {
		ids = append(ids, q.UserID, lo.FromPtr(q.AnsweredBy))
	}
	users, err := loadUsers(ctx, repo, ids...)
	if err != nil {
		return nil, err
	}
	return mapAll(questions, func(q *models.Question) (QuestionResponse, error) {
		return toQuestionResponse(q, users)
	})
}

func toAnnouncementResponses(ctx context.Context, repo repositories.Repository, items []*models.Announcement) ([]AnnouncementResponse, error) {
	users, err := loadUsers(ctx, repo, lo.Map(items, func(a *models.Announcement, _ int) string { return a.CreatedBy })...)
	if err != nil {
		return nil, err
	}
	return mapAll(items, func(a *models.Announcement) (AnnouncementResponse, error) {
		var resp AnnouncementResponse
		if err := copier.Copy(&resp, a); err != nil {
			return resp, fmt.Errorf("failed to map announcement: %w", err)
		}
		resp.CreatorName = users.name(a.CreatedBy)
		return resp, nil
	})
}

func toTeacherAccessResponse(access *models.TeacherAccess, users userDirectory) (TeacherAccessResponse, error) {
	var resp TeacherAccessResponse
	if err := copier.Copy(&resp, access); err != nil {
		return resp, fmt.Errorf("failed to map teacher access: %w", err)
	}
	if u, ok := users[access.TeacherID]; ok {
		resp.TeacherName = u.Name
		resp.TeacherEmail = u.Email
	}
	return resp, nil
}
