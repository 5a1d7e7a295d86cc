package apiclient

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type ApprovalStatus string

const (
	StatusApproved ApprovalStatus = "approved"
	StatusPending  ApprovalStatus = "pending"
	StatusRejected ApprovalStatus = "rejected"
)

type User struct {
	ID          string    `json:"id"`
	ProviderUID string    `json:"provider_uid"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) IsTeacher() bool { return u != nil && u.Role == RoleTeacher }

type Chapter struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subject_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	NoteCount   int64     `json:"note_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type Subject struct {
	ID          string    `json:"id"`
	ClassroomID string    `json:"classroom_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Chapters    []Chapter `json:"chapters"`
}

type Classroom struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Code        string    `json:"code"`
	CreatedBy   string    `json:"created_by"`
	CreatorName string    `json:"creator_name,omitempty"`
	MemberCount int64     `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	Subjects    []Subject `json:"subjects"`
}

type Note struct {
	ID             string         `json:"id"`
	ChapterID      string         `json:"chapter_id"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	FileURL        *string        `json:"file_url"`
	FileName       *string        `json:"file_name"`
	Visibility     Visibility     `json:"visibility"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	UploadedBy     string         `json:"uploaded_by"`
	UploaderName   string         `json:"uploader_name"`
	ApprovedBy     *string        `json:"approved_by"`
	ApproverName   *string        `json:"approver_name"`
	ApprovedAt     *time.Time     `json:"approved_at"`
	CreatedAt      time.Time      `json:"created_at"`
}

type Question struct {
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

// Answered reports whether the question has a non-empty answer.
func (q Question) Answered() bool { return q.Answer != nil && *q.Answer != "" }

type Announcement struct {
	ID          string    `json:"id"`
	ChapterID   string    `json:"chapter_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedBy   string    `json:"created_by"`
	CreatorName string    `json:"creator_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type TeacherAccess struct {
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

type NotebookAnswer struct {
	Answer      string           `json:"answer"`
	Sources     []NotebookSource `json:"sources"`
	NoteCount   int              `json:"note_count"`
	ChapterName string           `json:"chapter_name"`
}

type Recommendation struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type PendingNote struct {
	Note
	ChapterName string `json:"chapter_name"`
	AuthorID    string `json:"author_id"`
	AuthorName  string `json:"author_name"`
}

type PendingQuestion struct {
	Question
	ChapterName string `json:"chapter_name"`
	AuthorID    string `json:"author_id"`
	AuthorName  string `json:"author_name"`
}

type TeacherDashboard struct {
	CreatedClassrooms  []Classroom       `json:"created_classrooms"`
	AccessedClassrooms []Classroom       `json:"accessed_classrooms"`
	PendingNotes       []PendingNote     `json:"pending_notes"`
	PendingQuestions   []PendingQuestion `json:"pending_questions"`
}

type CreateProfileRequest struct {
	ProviderUID string `json:"provider_uid"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        Role   `json:"role"`
}
