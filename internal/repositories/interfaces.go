package repositories

import (
	"context"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type NoteFilters struct {
	ChapterID  *string                `json:"chapter_id"`
	ChapterIDs []string               `json:"chapter_ids"`
	UploadedBy *string                `json:"uploaded_by"`
	Status     *models.ApprovalStatus `json:"status"`
	Visibility *models.NoteVisibility `json:"visibility"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
	SortBy     string                 `json:"sort_by"`    // "created_at", "title"
	SortOrder  string                 `json:"sort_order"` // "asc", "desc"
}

type QuestionFilters struct {
	ChapterID  *string `json:"chapter_id"`
	UserID     *string `json:"user_id"`
	IsPrivate  *bool   `json:"is_private"`
	IsAnswered *bool   `json:"is_answered"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
	SortBy     string  `json:"sort_by"`
	SortOrder  string  `json:"sort_order"`
}

// ===== CLASSROOM TREE =====

type ClassroomRepository interface {
	Create(ctx context.Context, classroom *models.Classroom) error
	GetByID(ctx context.Context, id string) (*models.Classroom, error)
	GetByCode(ctx context.Context, code string) (*models.Classroom, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Delete(ctx context.Context, id string) error

	ListByCreator(ctx context.Context, userID string) ([]*models.Classroom, error)
	ListByMember(ctx context.Context, userID string) ([]*models.Classroom, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.Classroom, error)

	AddMember(ctx context.Context, member *models.ClassroomMember) error
	IsMember(ctx context.Context, classroomID, userID string) (bool, error)
	CountMembers(ctx context.Context, classroomIDs []string) (map[string]int64, error)
}

type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id string) (*models.Subject, error)
	Delete(ctx context.Context, id string) error
	ListByClassroom(ctx context.Context, classroomID string) ([]*models.Subject, error)
	ListByClassrooms(ctx context.Context, classroomIDs []string) ([]*models.Subject, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.Subject, error)
}

type ChapterRepository interface {
	Create(ctx context.Context, chapter *models.Chapter) error
	GetByID(ctx context.Context, id string) (*models.Chapter, error)
	Delete(ctx context.Context, id string) error
	ListBySubject(ctx context.Context, subjectID string) ([]*models.Chapter, error)
	ListBySubjects(ctx context.Context, subjectIDs []string) ([]*models.Chapter, error)
}

type TeacherAccessRepository interface {
	Create(ctx context.Context, access *models.TeacherAccess) error
	GetByID(ctx context.Context, id string) (*models.TeacherAccess, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, subjectID, teacherID string) (bool, error)
	ListBySubject(ctx context.Context, subjectID string) ([]*models.TeacherAccess, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]*models.TeacherAccess, error)
	// SubjectsWithTeachers returns the subset of subjectIDs that have at least one grant.
	SubjectsWithTeachers(ctx context.Context, subjectIDs []string) ([]string, error)
}

// ===== CHAPTER CONTENT =====

type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id string) (*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters NoteFilters) ([]*models.Note, error)
	CountByChapters(ctx context.Context, chapterIDs []string, status models.ApprovalStatus) (map[string]int64, error)
}

type NoteEmbeddingRepository interface {
	Upsert(ctx context.Context, embedding *models.NoteEmbedding) error
	Delete(ctx context.Context, noteID string) error
	ListByChapter(ctx context.Context, chapterID string) ([]*models.NoteEmbedding, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, error)
}

type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	// ListByChapters returns announcements newest first.
	ListByChapters(ctx context.Context, chapterIDs []string) ([]*models.Announcement, error)
}

// ===== DASHBOARD =====

// PendingItemScope carries the joined context the approval queues need to
// decide who may act on an item.
type PendingItemScope struct {
	ChapterID          string `json:"chapter_id"`
	ChapterName        string `json:"chapter_name"`
	SubjectID          string `json:"subject_id"`
	ClassroomID        string `json:"classroom_id"`
	ClassroomCreatedBy string `json:"classroom_created_by"`
	AuthorName         string `json:"author_name"`
}

type PendingNoteRow struct {
	Note  models.Note
	Scope PendingItemScope
}

type PendingQuestionRow struct {
	Question models.Question
	Scope    PendingItemScope
}

type DashboardRepository interface {
	// PendingNotes returns pending public notes in subjects the teacher was
	// granted, and in subjects of classrooms they created that nobody else
	// was granted.
	PendingNotes(ctx context.Context, teacherID string) ([]PendingNoteRow, error)
	// UnansweredQuestions applies the same scope to questions without an answer.
	UnansweredQuestions(ctx context.Context, teacherID string) ([]PendingQuestionRow, error)
}
