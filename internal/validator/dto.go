package validator

import (
	"github.com/SAP-F-2025/edunexus-service/internal/models"
)

type CreateProfileRequest struct {
	ProviderUID string          `json:"provider_uid" validate:"required,max=255"`
	Email       string          `json:"email" validate:"required,email,max=255"`
	Name        string          `json:"name" validate:"required,not_blank,max=100"`
	Role        models.UserRole `json:"role" validate:"required,user_role"`
}

type CreateClassroomRequest struct {
	Name        string  `json:"name" validate:"required,not_blank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type JoinClassroomRequest struct {
	Code string `json:"code" validate:"required,classroom_code"`
}

type CreateSubjectRequest struct {
	ClassroomID string  `json:"classroom_id" validate:"required"`
	Name        string  `json:"name" validate:"required,not_blank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type CreateChapterRequest struct {
	SubjectID   string  `json:"subject_id"`
	Name        string  `json:"name" validate:"required,not_blank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type NoteApprovalRequest struct {
	Status models.ApprovalStatus `json:"status" validate:"required,approval_decision"`
	Reason *string               `json:"reason" validate:"omitempty,max=1000"`
}

// UploadNoteRequest carries the multipart form fields of a note upload.
type UploadNoteRequest struct {
	Title      string                `validate:"required,not_blank,max=255"`
	Visibility models.NoteVisibility `validate:"required,note_visibility"`
	FileName   string                `validate:"required,max=255"`
	Data       []byte                `validate:"required"`
}

type CreateQuestionRequest struct {
	ChapterID string `json:"chapter_id" validate:"required"`
	Title     string `json:"title" validate:"required,not_blank,max=255"`
	Content   string `json:"content" validate:"required,not_blank,max=5000"`
	IsPrivate bool   `json:"is_private"`
}

type AnswerQuestionRequest struct {
	Content string `json:"content" validate:"required,not_blank,max=5000"`
}

type CreateAnnouncementRequest struct {
	ChapterID string `json:"chapter_id" validate:"required"`
	Title     string `json:"title" validate:"required,not_blank,max=255"`
	Content   string `json:"content" validate:"required,not_blank,max=5000"`
}

type NotebookQueryRequest struct {
	Question string `json:"question" validate:"required,not_blank,max=2000"`
}

type AssignTeacherRequest struct {
	SubjectID    string `json:"subject_id" validate:"required"`
	TeacherEmail string `json:"teacher_email" validate:"required,email"`
}
