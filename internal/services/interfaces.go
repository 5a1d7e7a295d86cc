package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/validator"
)

// ===== REQUEST DTOs =====

type CreateProfileRequest = validator.CreateProfileRequest
type CreateClassroomRequest = validator.CreateClassroomRequest
type JoinClassroomRequest = validator.JoinClassroomRequest
type CreateSubjectRequest = validator.CreateSubjectRequest
type CreateChapterRequest = validator.CreateChapterRequest
type NoteApprovalRequest = validator.NoteApprovalRequest
type UploadNoteRequest = validator.UploadNoteRequest
type CreateQuestionRequest = validator.CreateQuestionRequest
type AnswerQuestionRequest = validator.AnswerQuestionRequest
type CreateAnnouncementRequest = validator.CreateAnnouncementRequest
type NotebookQueryRequest = validator.NotebookQueryRequest
type AssignTeacherRequest = validator.AssignTeacherRequest

// ===== RESPONSE DTOs =====

type UserResponse struct {
	ID          string          `json:"id"`
	ProviderUID string          `json:"provider_uid"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        models.UserRole `json:"role"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ChapterResponse struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subject_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	NoteCount   int64     `json:"note_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type SubjectResponse struct {
	ID          string            `json:"id"`
	ClassroomID string            `json:"classroom_id"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
	Chapters    []ChapterResponse `json:"chapters"`
}

type ClassroomResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Code        string            `json:"code"`
	CreatedBy   string            `json:"created_by"`
	CreatorName string            `json:"creator_name,omitempty"`
	MemberCount int64             `json:"member_count"`
	CreatedAt   time.Time         `json:"created_at"`
	Subjects    []SubjectResponse `json:"subjects"`
}

type NoteResponse struct {
	ID             string                `json:"id"`
	ChapterID      string                `json:"chapter_id"`
	Title          string                `json:"title"`
	Content        string                `json:"content"`
	FileURL        *string               `json:"file_url"`
	FileName       *string               `json:"file_name"`
	Visibility     models.NoteVisibility `json:"visibility"`
	ApprovalStatus models.ApprovalStatus `json:"approval_status"`
	UploadedBy     string                `json:"uploaded_by"`
	UploaderName   string                `json:"uploader_name"`
	UploaderRole   models.UserRole       `json:"uploader_role,omitempty"`
	ApprovedBy     *string               `json:"approved_by"`
	ApproverName   *string               `json:"approver_name"`
	ApprovedAt     *time.Time            `json:"approved_at"`
	RejectReason   *string               `json:"reject_reason,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

type QuestionResponse struct {
	ID           string     `json:"id"`
	ChapterID    string     `json:"chapter_id"`
	UserID       string     `json:"user_id"`
	UserName     string     `json:"user_name"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	IsPrivate    bool       `json:"is_private"`
	Answer       *string    `json:"answer"`
	AnsweredBy   *string    `json:"answered_by"`
	AnswererName *string    `json:"answerer_name"`
	AnsweredAt   *time.Time `json:"answered_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

type AnnouncementResponse struct {
	ID          string    `json:"id"`
	ChapterID   string    `json:"chapter_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedBy   string    `json:"created_by"`
	CreatorName string    `json:"creator_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type TeacherAccessResponse struct {
	ID           string    `json:"id"`
	SubjectID    string    `json:"subject_id"`
	TeacherID    string    `json:"teacher_id"`
	TeacherName  string    `json:"teacher_name"`
	TeacherEmail string    `json:"teacher_email"`
	CreatedAt    time.Time `json:"created_at"`
}

type NotebookSource struct {
	Title      string `json:"title"`
	UploadedBy string `json:"uploaded_by"`
}

type NotebookResponse struct {
	Answer      string           `json:"answer"`
	Sources     []NotebookSource `json:"sources"`
	NoteCount   int              `json:"note_count"`
	ChapterName string           `json:"chapter_name"`
}

type Recommendation struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"` // "video" or "article"
	URL         string `json:"url"`
	Description string `json:"description"`
}

type RecommendationsResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Chapter         string           `json:"chapter"`
	Subject         string           `json:"subject"`
}

type PendingNoteResponse struct {
	NoteResponse
	ChapterName string `json:"chapter_name"`
	AuthorID    string `json:"author_id"`
	AuthorName  string `json:"author_name"`
	Status      string `json:"status"`
}

type PendingQuestionResponse struct {
	QuestionResponse
	ChapterName string `json:"chapter_name"`
	AuthorID    string `json:"author_id"`
	AuthorName  string `json:"author_name"`
}

type TeacherDashboardResponse struct {
	CreatedClassrooms  []ClassroomResponse       `json:"created_classrooms"`
	AccessedClassrooms []ClassroomResponse       `json:"accessed_classrooms"`
	PendingNotes       []PendingNoteResponse     `json:"pending_notes"`
	PendingQuestions   []PendingQuestionResponse `json:"pending_questions"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	// CreateProfile links a new profile to an identity. identity may be nil
	// when the caller sent no token.
	CreateProfile(ctx context.Context, req *CreateProfileRequest, identity *models.Identity) (*UserResponse, error)
	GetByProviderUID(ctx context.Context, uid string) (*models.User, error)
	Me(ctx context.Context, actor *models.User) (*UserResponse, error)
}

type ClassroomService interface {
	Create(ctx context.Context, req *CreateClassroomRequest, actor *models.User) (*ClassroomResponse, error)
	Join(ctx context.Context, req *JoinClassroomRequest, actor *models.User) (*ClassroomResponse, error)
	List(ctx context.Context, actor *models.User) ([]ClassroomResponse, error)
	Delete(ctx context.Context, id string, actor *models.User) error
}

type SubjectService interface {
	CreateSubject(ctx context.Context, req *CreateSubjectRequest, actor *models.User) (*SubjectResponse, error)
	ListSubjects(ctx context.Context, classroomID string, actor *models.User) ([]SubjectResponse, error)
	DeleteSubject(ctx context.Context, id string, actor *models.User) error

	CreateChapter(ctx context.Context, subjectID string, req *CreateChapterRequest, actor *models.User) (*ChapterResponse, error)
	ListChapters(ctx context.Context, subjectID string, actor *models.User) ([]ChapterResponse, error)
	DeleteChapter(ctx context.Context, id string, actor *models.User) error
}

type NoteService interface {
	ListChapterNotes(ctx context.Context, chapterID string, actor *models.User) ([]NoteResponse, error)
	MyNotes(ctx context.Context, actor *models.User) ([]NoteResponse, error)
	Upload(ctx context.Context, chapterID string, req *UploadNoteRequest, actor *models.User) (*NoteResponse, error)
	SetApproval(ctx context.Context, id string, req *NoteApprovalRequest, actor *models.User) (*NoteResponse, error)
	Delete(ctx context.Context, id string, actor *models.User) error
}

type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, actor *models.User) (*QuestionResponse, error)
	ListChapter(ctx context.Context, chapterID string, actor *models.User) ([]QuestionResponse, error)
	ListCommunity(ctx context.Context, chapterID string, actor *models.User) ([]QuestionResponse, error)
	ListMine(ctx context.Context, actor *models.User) ([]QuestionResponse, error)
	Answer(ctx context.Context, id string, req *AnswerQuestionRequest, actor *models.User) (*QuestionResponse, error)
	Delete(ctx context.Context, id string, actor *models.User) error
}

type AnnouncementService interface {
	Create(ctx context.Context, req *CreateAnnouncementRequest, actor *models.User) (*AnnouncementResponse, error)
	ListChapter(ctx context.Context, chapterID string, actor *models.User) ([]AnnouncementResponse, error)
	ListAll(ctx context.Context, actor *models.User) ([]AnnouncementResponse, error)
}

type NotebookService interface {
	Query(ctx context.Context, chapterID string, req *NotebookQueryRequest, actor *models.User) (*NotebookResponse, error)
	Recommendations(ctx context.Context, chapterID, topic string, actor *models.User) (*RecommendationsResponse, error)
}

type TeacherAccessService interface {
	Assign(ctx context.Context, req *AssignTeacherRequest, actor *models.User) (*TeacherAccessResponse, error)
	List(ctx context.Context, subjectID string, actor *models.User) ([]TeacherAccessResponse, error)
	Remove(ctx context.Context, id string, actor *models.User) error
}

type DashboardService interface {
	Teacher(ctx context.Context, actor *models.User) (*TeacherDashboardResponse, error)
}

type ExportService interface {
	// TeacherDashboard renders the teacher dashboard as an XLSX workbook.
	TeacherDashboard(ctx context.Context, actor *models.User) ([]byte, error)
}
