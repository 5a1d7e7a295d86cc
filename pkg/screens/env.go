// Package screens holds the state behind each client screen: what it
// fetches on mount, how it filters, and which mutations it offers.
package screens

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/edunexus-service/pkg/apiclient"
	"github.com/SAP-F-2025/edunexus-service/pkg/navigation"
	"github.com/SAP-F-2025/edunexus-service/pkg/session"
)

type ClassroomAPI interface {
	List(ctx context.Context) ([]apiclient.Classroom, error)
	Join(ctx context.Context, code string) (*apiclient.Classroom, error)
	Create(ctx context.Context, name string, description *string) (*apiclient.Classroom, error)
	Delete(ctx context.Context, id string) error
}

type SubjectAPI interface {
	Create(ctx context.Context, classroomID, name string, description *string) (*apiclient.Subject, error)
	ListByClassroom(ctx context.Context, classroomID string) ([]apiclient.Subject, error)
	Delete(ctx context.Context, id string) error
	ListChapters(ctx context.Context, subjectID string) ([]apiclient.Chapter, error)
	CreateChapter(ctx context.Context, subjectID, name string, description *string) (*apiclient.Chapter, error)
	DeleteChapter(ctx context.Context, chapterID string) error
}

type ChapterAPI interface {
	ListNotes(ctx context.Context, chapterID string) ([]apiclient.Note, error)
	ListMyNotes(ctx context.Context) ([]apiclient.Note, error)
	UploadNote(ctx context.Context, chapterID, title string, visibility apiclient.Visibility, fileName string, data []byte) (*apiclient.Note, error)
	DeleteNote(ctx context.Context, noteID string) error
	ApproveNote(ctx context.Context, noteID string, status apiclient.ApprovalStatus) (*apiclient.Note, error)

	CreateQuestion(ctx context.Context, chapterID, title, content string, isPrivate bool) (*apiclient.Question, error)
	ListQuestions(ctx context.Context, chapterID string) ([]apiclient.Question, error)
	ListCommunityQuestions(ctx context.Context, chapterID string) ([]apiclient.Question, error)
	ListMyQuestions(ctx context.Context) ([]apiclient.Question, error)
	DeleteQuestion(ctx context.Context, questionID string) error
	AnswerQuestion(ctx context.Context, questionID, content string) (*apiclient.Question, error)

	CreateAnnouncement(ctx context.Context, chapterID, title, content string) (*apiclient.Announcement, error)
	ListAnnouncements(ctx context.Context, chapterID string) ([]apiclient.Announcement, error)
	ListAllAnnouncements(ctx context.Context) ([]apiclient.Announcement, error)

	QueryNotebook(ctx context.Context, chapterID, question string) (*apiclient.NotebookAnswer, error)
	Recommendations(ctx context.Context, chapterID, topic string) ([]apiclient.Recommendation, error)
}

type DashboardAPI interface {
	Teacher(ctx context.Context) (*apiclient.TeacherDashboard, error)
	Export(ctx context.Context) ([]byte, error)
}

type TeacherAccessAPI interface {
	Assign(ctx context.Context, subjectID, teacherEmail string) (*apiclient.TeacherAccess, error)
	List(ctx context.Context, subjectID string) ([]apiclient.TeacherAccess, error)
	Remove(ctx context.Context, accessID string) error
}

// Env is what every screen needs from the rest of the client.
type Env struct {
	Classrooms ClassroomAPI
	Subjects   SubjectAPI
	Chapters   ChapterAPI
	Dashboard  DashboardAPI
	Access     TeacherAccessAPI

	Sync        *Sync
	Nav         *navigation.Navigator
	Notifier    session.Notifier
	Logger      *slog.Logger
	CurrentUser func() *apiclient.User
}

// NewEnv wires screens to the API client. currentUser is usually
// (*session.Store).User.
func NewEnv(client *apiclient.Client, currentUser func() *apiclient.User, nav *navigation.Navigator, notifier session.Notifier, logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = session.NewLogNotifier(logger)
	}
	return &Env{
		Classrooms:  client.Classrooms(),
		Subjects:    client.Subjects(),
		Chapters:    client.Chapters(),
		Dashboard:   client.Dashboard(),
		Access:      client.TeacherAccess(),
		Sync:        NewSync(notifier, logger),
		Nav:         nav,
		Notifier:    notifier,
		Logger:      logger,
		CurrentUser: currentUser,
	}
}

func (e *Env) user() *apiclient.User {
	if e.CurrentUser == nil {
		return nil
	}
	return e.CurrentUser()
}

func (e *Env) invalidate(kind navigation.Kind, id string) {
	if e.Nav != nil {
		e.Nav.Invalidate(kind, id)
	}
}
