package screens

import (
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/edunexus-service/internal/ai"
	"github.com/SAP-F-2025/edunexus-service/internal/events"
	"github.com/SAP-F-2025/edunexus-service/internal/handlers"
	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories/memory"
	"github.com/SAP-F-2025/edunexus-service/internal/services"
	"github.com/SAP-F-2025/edunexus-service/internal/storage"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
	"github.com/SAP-F-2025/edunexus-service/internal/validator"
	"github.com/SAP-F-2025/edunexus-service/pkg/apiclient"
	"github.com/SAP-F-2025/edunexus-service/pkg/navigation"
)

type tokenVerifier struct{}

func (tokenVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	uid, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return nil, errors.New("bad token")
	}
	return &models.Identity{UID: uid}, nil
}

type cannedGenerator struct{}

func (cannedGenerator) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	return "Quicksort partitions around a pivot.", nil
}

type backend struct {
	t    *testing.T
	url  string
	repo *memory.Repository
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	files, err := storage.NewLocalStore(t.TempDir(), "/files")
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	repo := memory.NewRepository()
	sm := services.NewServiceManager(services.ServiceDependencies{
		Repo:      repo,
		Files:     files,
		Publisher: events.NewMockEventPublisher(logger),
		Embedder:  ai.NewHashEmbedder(),
		Generator: cannedGenerator{},
		Logger:    logger,
		Validator: validator.New(),
	})
	if err := sm.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize services: %v", err)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, utils.NewSlogLogger(logger), nil)
	handlers.NewHandlerManager(sm, tokenVerifier{}, utils.NewSlogLogger(logger)).SetupRoutes(router, "/api/v1")

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &backend{t: t, url: srv.URL + "/api/v1", repo: repo}
}

type clientUser struct {
	user     *apiclient.User
	env      *Env
	notifier *recordingNotifier
}

// signUp creates a profile and returns a screen environment acting as it.
func (b *backend) signUp(uid, name string, role apiclient.Role) *clientUser {
	b.t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	client := apiclient.New(apiclient.Config{BaseURL: b.url, Logger: logger}, apiclient.TokenFunc(func(context.Context) (string, error) {
		return "token-" + uid, nil
	}))
	user, err := client.Auth().CreateProfile(context.Background(), apiclient.CreateProfileRequest{
		ProviderUID: uid,
		Email:       uid + "@school.edu",
		Name:        name,
		Role:        role,
	})
	if err != nil {
		b.t.Fatalf("create profile %s: %v", uid, err)
	}

	notifier := &recordingNotifier{}
	env := NewEnv(client, func() *apiclient.User { return user }, navigation.New(), notifier, logger)
	return &clientUser{user: user, env: env, notifier: notifier}
}

func TestE2E_JoinClassroomByCode(t *testing.T) {
	b := newBackend(t)
	teacher := b.signUp("teacher-1", "Ms. Rivera", apiclient.RoleTeacher)
	student := b.signUp("student-1", "Sam", apiclient.RoleStudent)

	if err := b.repo.Classroom().Create(context.Background(), &models.Classroom{
		Name:      "Computer Science",
		Code:      "CS2024",
		CreatedBy: teacher.user.ID,
	}); err != nil {
		t.Fatalf("seed classroom: %v", err)
	}

	dashboard := NewStudentDashboard(student.env)
	dashboard.Mount(context.Background())
	defer dashboard.Unmount()

	if got := dashboard.Classrooms().Status; got != StatusEmpty {
		t.Fatalf("before join status = %s, want empty", got)
	}

	if err := dashboard.Join(context.Background(), "CS2024"); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	got := dashboard.Classrooms()
	if got.Status != StatusPopulated || len(got.Items) != 1 || got.Items[0].Name != "Computer Science" {
		t.Fatalf("after join = %+v", got)
	}
	if student.notifier.last() != "info: Successfully joined classroom!" {
		t.Errorf("notification = %q", student.notifier.last())
	}

	err := dashboard.Join(context.Background(), "CS2024")
	if apiclient.StatusCode(err) != 400 {
		t.Errorf("second join error = %v, want 400", err)
	}
	if len(dashboard.Classrooms().Items) != 1 {
		t.Errorf("classrooms changed after failed join")
	}
}

func TestE2E_ApprovePendingNote(t *testing.T) {
	b := newBackend(t)
	teacher := b.signUp("teacher-1", "Ms. Rivera", apiclient.RoleTeacher)
	student := b.signUp("student-1", "Sam", apiclient.RoleStudent)
	ctx := context.Background()

	teacherDash := NewTeacherDashboard(teacher.env)
	teacherDash.Mount(ctx)
	defer teacherDash.Unmount()

	classroom, err := teacherDash.CreateClassroom(ctx, "Computer Science", []SubjectPlan{{Name: "Algorithms", Units: 2}})
	if err != nil {
		t.Fatalf("CreateClassroom() error = %v", err)
	}
	if created := teacherDash.CreatedClassrooms(); len(created.Items) != 1 {
		t.Fatalf("created classrooms = %+v", created)
	}

	studentDash := NewStudentDashboard(student.env)
	studentDash.Mount(ctx)
	defer studentDash.Unmount()
	if err := studentDash.Join(ctx, classroom.Code); err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	joined := studentDash.Classrooms().Items[0]
	if len(joined.Subjects) != 1 || len(joined.Subjects[0].Chapters) != 2 {
		t.Fatalf("classroom tree = %+v", joined)
	}
	chapter := joined.Subjects[0].Chapters[0]
	if chapter.Name != "Unit 1: Algorithms - Part 1" {
		t.Errorf("chapter name = %q", chapter.Name)
	}

	upload := NewUploadPanel(student.env, chapter.ID)
	upload.Mount(ctx)
	defer upload.Unmount()
	if _, err := upload.Upload(ctx, UploadInput{Title: "Quicksort", Body: "Pick a pivot and partition."}); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	mine := upload.MyUploads()
	if len(mine.Items) != 1 || mine.Items[0].ApprovalStatus != apiclient.StatusPending {
		t.Fatalf("my uploads = %+v", mine)
	}

	studentNotes := NewChapterNotes(student.env, chapter.ID)
	studentNotes.Mount(ctx)
	defer studentNotes.Unmount()
	if got := studentNotes.Notes().Status; got != StatusEmpty {
		t.Fatalf("public notes before approval = %s, want empty", got)
	}

	teacherNotes := NewChapterNotes(teacher.env, chapter.ID)
	teacherNotes.Mount(ctx)
	defer teacherNotes.Unmount()

	teacherDash.Refresh(ctx)
	pending := teacherDash.PendingNotes()
	if len(pending.Items) != 1 || pending.Items[0].Title != "Quicksort" {
		t.Fatalf("pending notes = %+v", pending)
	}

	if err := teacherDash.ApproveNote(ctx, pending.Items[0]); err != nil {
		t.Fatalf("ApproveNote() error = %v", err)
	}
	if got := teacherDash.PendingNotes().Status; got != StatusEmpty {
		t.Errorf("pending after approval = %s, want empty", got)
	}
	if got := teacherNotes.Notes(); len(got.Items) != 1 {
		t.Errorf("teacher chapter notes after approval = %+v", got)
	}

	studentNotes.Refresh(ctx)
	if got := studentNotes.Notes(); len(got.Items) != 1 || got.Items[0].ApprovalStatus != apiclient.StatusApproved {
		t.Errorf("student chapter notes after approval = %+v", got)
	}
}

func TestE2E_DeleteChapterInvalidatesNavigation(t *testing.T) {
	b := newBackend(t)
	teacher := b.signUp("teacher-1", "Ms. Rivera", apiclient.RoleTeacher)
	ctx := context.Background()

	dash := NewTeacherDashboard(teacher.env)
	classroom, err := dash.CreateClassroom(ctx, "Physics", []SubjectPlan{{Name: "Mechanics", Units: 1}})
	if err != nil {
		t.Fatalf("CreateClassroom() error = %v", err)
	}

	classroomScreen := NewClassroomScreen(teacher.env, *classroom)
	classroomScreen.Mount(ctx)
	defer classroomScreen.Unmount()
	subject := classroomScreen.Subjects().Items[0]

	subjectScreen := NewSubjectScreen(teacher.env, subject)
	subjectScreen.Mount(ctx)
	defer subjectScreen.Unmount()
	chapter := subjectScreen.Chapters().Items[0]

	nav := teacher.env.Nav
	nav.SelectClassroom(*classroom)
	nav.SelectSubject(subject)
	nav.SelectChapter(chapter)

	if err := subjectScreen.DeleteChapter(ctx, chapter.ID); err != nil {
		t.Fatalf("DeleteChapter() error = %v", err)
	}
	if nav.Render() != navigation.ViewSubject {
		t.Errorf("view = %s, want subject", nav.Render())
	}
	if got := subjectScreen.Chapters().Status; got != StatusEmpty {
		t.Errorf("chapters after delete = %s, want empty", got)
	}
}

func TestE2E_RejectedNoteStaysInMyNotes(t *testing.T) {
	b := newBackend(t)
	teacher := b.signUp("teacher-1", "Ms. Rivera", apiclient.RoleTeacher)
	student := b.signUp("student-1", "Sam", apiclient.RoleStudent)
	ctx := context.Background()

	teacherDash := NewTeacherDashboard(teacher.env)
	teacherDash.Mount(ctx)
	defer teacherDash.Unmount()
	classroom, err := teacherDash.CreateClassroom(ctx, "History", []SubjectPlan{{Name: "Rome", Units: 1}})
	if err != nil {
		t.Fatalf("CreateClassroom() error = %v", err)
	}

	studentDash := NewStudentDashboard(student.env)
	studentDash.Mount(ctx)
	defer studentDash.Unmount()
	if err := studentDash.Join(ctx, classroom.Code); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	chapterID := studentDash.Classrooms().Items[0].Subjects[0].Chapters[0].ID

	myNotes := NewMyNotes(student.env)
	myNotes.Mount(ctx)
	defer myNotes.Unmount()

	upload := NewUploadPanel(student.env, chapterID)
	upload.Mount(ctx)
	defer upload.Unmount()
	if _, err := upload.Upload(ctx, UploadInput{Title: "Emperors", Body: "Augustus first."}); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if got := myNotes.Notes(); len(got.Items) != 1 {
		t.Fatalf("my notes after upload = %+v", got)
	}

	teacherDash.Refresh(ctx)
	pending := teacherDash.PendingNotes()
	if len(pending.Items) != 1 {
		t.Fatalf("pending notes = %+v", pending)
	}
	if err := teacherDash.RejectNote(ctx, pending.Items[0]); err != nil {
		t.Fatalf("RejectNote() error = %v", err)
	}
	if got := teacherDash.PendingNotes().Status; got != StatusEmpty {
		t.Errorf("pending after rejection = %s, want empty", got)
	}

	myNotes.Refresh(ctx)
	got := myNotes.Notes()
	if len(got.Items) != 1 || got.Items[0].ApprovalStatus != apiclient.StatusRejected {
		t.Fatalf("my notes after rejection = %+v", got)
	}

	if err := myNotes.Delete(ctx, got.Items[0]); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := myNotes.Notes().Status; got != StatusEmpty {
		t.Errorf("my notes after delete = %s, want empty", got)
	}
}

func TestE2E_Announcements(t *testing.T) {
	b := newBackend(t)
	teacher := b.signUp("teacher-1", "Ms. Rivera", apiclient.RoleTeacher)
	student := b.signUp("student-1", "Sam", apiclient.RoleStudent)
	ctx := context.Background()

	classroom, err := NewTeacherDashboard(teacher.env).CreateClassroom(ctx, "Biology", []SubjectPlan{{Name: "Cells", Units: 1}})
	if err != nil {
		t.Fatalf("CreateClassroom() error = %v", err)
	}
	studentDash := NewStudentDashboard(student.env)
	studentDash.Mount(ctx)
	defer studentDash.Unmount()
	if err := studentDash.Join(ctx, classroom.Code); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	chapterID := studentDash.Classrooms().Items[0].Subjects[0].Chapters[0].ID

	board := NewAnnouncements(teacher.env, chapterID)
	board.Mount(ctx)
	defer board.Unmount()
	if _, err := board.Post(ctx, "  ", "Bring a microscope"); !errors.Is(err, ErrMissingField) {
		t.Fatalf("Post(blank title) error = %v, want ErrMissingField", err)
	}
	if _, err := board.Post(ctx, "Lab day", "Bring a microscope"); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if got := board.Items(); len(got.Items) != 1 {
		t.Fatalf("chapter announcements = %+v", got)
	}

	feed := NewAnnouncements(student.env, "")
	feed.Mount(ctx)
	defer feed.Unmount()
	got := feed.Items()
	if len(got.Items) != 1 || got.Items[0].Title != "Lab day" {
		t.Errorf("student announcements = %+v", got)
	}
}

func TestE2E_TeacherAnswersFromChapter(t *testing.T) {
	b := newBackend(t)
	teacher := b.signUp("teacher-1", "Ms. Rivera", apiclient.RoleTeacher)
	student := b.signUp("student-1", "Sam", apiclient.RoleStudent)
	ctx := context.Background()

	classroom, err := NewTeacherDashboard(teacher.env).CreateClassroom(ctx, "Chemistry", []SubjectPlan{{Name: "Bonds", Units: 1}})
	if err != nil {
		t.Fatalf("CreateClassroom() error = %v", err)
	}
	studentDash := NewStudentDashboard(student.env)
	studentDash.Mount(ctx)
	defer studentDash.Unmount()
	if err := studentDash.Join(ctx, classroom.Code); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	chapterID := studentDash.Classrooms().Items[0].Subjects[0].Chapters[0].ID

	studentAsk := NewAskPanel(student.env, chapterID)
	studentAsk.Mount(ctx)
	defer studentAsk.Unmount()
	public, err := studentAsk.Ask(ctx, "Ionic bonds", "How do they form?", false)
	if err != nil {
		t.Fatalf("Ask(public) error = %v", err)
	}
	if _, err := studentAsk.Ask(ctx, "Grades", "Can I retake the quiz?", true); err != nil {
		t.Fatalf("Ask(private) error = %v", err)
	}
	if got := studentAsk.All().Status; got != StatusEmpty {
		t.Errorf("student All() status = %s, want empty", got)
	}

	teacherAsk := NewAskPanel(teacher.env, chapterID)
	teacherAsk.Mount(ctx)
	defer teacherAsk.Unmount()
	if got := teacherAsk.All(); len(got.Items) != 2 {
		t.Fatalf("teacher All() = %+v, want both questions", got)
	}
	if got := teacherAsk.Community().Status; got != StatusEmpty {
		t.Errorf("community before answer = %s, want empty", got)
	}

	if err := teacherAsk.Answer(ctx, public.ID, "  "); !errors.Is(err, ErrMissingField) {
		t.Fatalf("Answer(blank) error = %v, want ErrMissingField", err)
	}
	if err := teacherAsk.Answer(ctx, public.ID, "Electrons transfer between atoms."); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got := teacherAsk.Community(); len(got.Items) != 1 || got.Items[0].ID != public.ID {
		t.Errorf("teacher community after answer = %+v", got)
	}

	studentAsk.Refresh(ctx)
	if got := studentAsk.Community(); len(got.Items) != 1 || got.Items[0].ID != public.ID {
		t.Errorf("student community after answer = %+v", got)
	}
}
