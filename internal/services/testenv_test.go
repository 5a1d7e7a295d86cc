package services

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/edunexus-service/internal/ai"
	"github.com/SAP-F-2025/edunexus-service/internal/cache"
	"github.com/SAP-F-2025/edunexus-service/internal/events"
	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories/memory"
	"github.com/SAP-F-2025/edunexus-service/internal/storage"
	"github.com/SAP-F-2025/edunexus-service/internal/validator"
)

// fakeGenerator answers every prompt with a fixed reply and records prompts.
type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *fakeGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

// testEnv is a classroom "Computer Science" (code CS2024) owned by owner,
// with one subject and one chapter. student has joined it; delegate and
// outsider are teachers without any grant yet.
type testEnv struct {
	ctx       context.Context
	repo      *memory.Repository
	files     *storage.LocalStore
	publisher *events.MockEventPublisher
	generator *fakeGenerator
	manager   ServiceManager

	owner    *models.User
	delegate *models.User
	outsider *models.User
	student  *models.User
	stranger *models.User

	classroom *models.Classroom
	subject   *models.Subject
	chapter   *models.Chapter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return buildTestEnv(t, cache.NewCacheManager(nil))
}

// newCachedTestEnv is newTestEnv backed by a miniredis cache.
func newCachedTestEnv(t *testing.T) (*testEnv, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return buildTestEnv(t, cache.NewCacheManager(client)), mr
}

func buildTestEnv(t *testing.T, cm *cache.CacheManager) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	files, err := storage.NewLocalStore(t.TempDir(), "/files")
	if err != nil {
		t.Fatalf("local store: %v", err)
	}

	env := &testEnv{
		ctx:       context.Background(),
		repo:      memory.NewRepository(),
		files:     files,
		publisher: events.NewMockEventPublisher(logger),
		generator: &fakeGenerator{reply: "Velocity is the rate of change of position."},
	}

	env.owner = env.addUser(t, "Ms. Owner", "owner@school.edu", models.RoleTeacher)
	env.delegate = env.addUser(t, "Mr. Delegate", "delegate@school.edu", models.RoleTeacher)
	env.outsider = env.addUser(t, "Dr. Outsider", "outsider@school.edu", models.RoleTeacher)
	env.student = env.addUser(t, "Sam Student", "sam@school.edu", models.RoleStudent)
	env.stranger = env.addUser(t, "Pat Stranger", "pat@school.edu", models.RoleStudent)

	env.classroom = &models.Classroom{Name: "Computer Science", Code: "CS2024", CreatedBy: env.owner.ID}
	if err := env.repo.Classroom().Create(env.ctx, env.classroom); err != nil {
		t.Fatalf("create classroom: %v", err)
	}
	env.subject = &models.Subject{ClassroomID: env.classroom.ID, Name: "Algorithms"}
	if err := env.repo.Subject().Create(env.ctx, env.subject); err != nil {
		t.Fatalf("create subject: %v", err)
	}
	env.chapter = &models.Chapter{SubjectID: env.subject.ID, Name: "Sorting"}
	if err := env.repo.Chapter().Create(env.ctx, env.chapter); err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	if err := env.repo.Classroom().AddMember(env.ctx, &models.ClassroomMember{
		ClassroomID: env.classroom.ID,
		UserID:      env.student.ID,
	}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	env.manager = NewServiceManager(ServiceDependencies{
		Repo:      env.repo,
		Cache:     cm,
		Files:     files,
		Publisher: env.publisher,
		Embedder:  ai.NewHashEmbedder(),
		Generator: env.generator,
		Logger:    logger,
		Validator: validator.New(),
	})
	if err := env.manager.Initialize(env.ctx); err != nil {
		t.Fatalf("initialize services: %v", err)
	}
	return env
}

func (e *testEnv) addUser(t *testing.T, name, email string, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{
		ProviderUID: "uid-" + strings.SplitN(email, "@", 2)[0],
		Name:        name,
		Email:       email,
		Role:        role,
	}
	if err := e.repo.User().Create(e.ctx, u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func (e *testEnv) grant(t *testing.T, teacher *models.User) {
	t.Helper()
	if err := e.repo.TeacherAccess().Create(e.ctx, &models.TeacherAccess{
		SubjectID: e.subject.ID,
		TeacherID: teacher.ID,
	}); err != nil {
		t.Fatalf("grant access: %v", err)
	}
}

func (e *testEnv) uploadText(t *testing.T, actor *models.User, title string, visibility models.NoteVisibility, body string) *NoteResponse {
	t.Helper()
	note, err := e.manager.Note().Upload(e.ctx, e.chapter.ID, &UploadNoteRequest{
		Title:      title,
		Visibility: visibility,
		FileName:   "notes.txt",
		Data:       []byte(body),
	}, actor)
	if err != nil {
		t.Fatalf("upload %q: %v", title, err)
	}
	return note
}

// indexAll runs the indexer over every event published so far.
func (e *testEnv) indexAll(t *testing.T) {
	t.Helper()
	for _, event := range e.publisher.GetPublishedEvents() {
		if err := e.manager.Indexer().HandleEvent(e.ctx, event); err != nil {
			t.Fatalf("index %s: %v", event.Type, err)
		}
	}
	e.publisher.ClearEvents()
}
