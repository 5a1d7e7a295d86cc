// Package memory keeps every table in process memory. It backs local runs
// with DATABASE_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
)

// table holds rows by primary key and remembers insertion order.
type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() table[T] {
	return table[T]{rows: make(map[string]T)}
}

func (t *table[T]) put(id string, row T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) get(id string) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) has(id string) bool {
	_, ok := t.rows[id]
	return ok
}

func (t *table[T]) del(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// each visits rows oldest first. The callback may not mutate the table.
func (t *table[T]) each(fn func(T) bool) {
	for _, id := range t.order {
		if !fn(t.rows[id]) {
			return
		}
	}
}

func (t *table[T]) clone() table[T] {
	c := table[T]{rows: make(map[string]T, len(t.rows)), order: make([]string, len(t.order))}
	for k, v := range t.rows {
		c.rows[k] = v
	}
	copy(c.order, t.order)
	return c
}

type state struct {
	users         table[models.User]
	classrooms    table[models.Classroom]
	members       table[models.ClassroomMember]
	subjects      table[models.Subject]
	chapters      table[models.Chapter]
	teacherAccess table[models.TeacherAccess]
	notes         table[models.Note]
	embeddings    table[models.NoteEmbedding]
	questions     table[models.Question]
	announcements table[models.Announcement]
}

func newState() state {
	return state{
		users:         newTable[models.User](),
		classrooms:    newTable[models.Classroom](),
		members:       newTable[models.ClassroomMember](),
		subjects:      newTable[models.Subject](),
		chapters:      newTable[models.Chapter](),
		teacherAccess: newTable[models.TeacherAccess](),
		notes:         newTable[models.Note](),
		embeddings:    newTable[models.NoteEmbedding](),
		questions:     newTable[models.Question](),
		announcements: newTable[models.Announcement](),
	}
}

func (s *state) clone() state {
	return state{
		users:         s.users.clone(),
		classrooms:    s.classrooms.clone(),
		members:       s.members.clone(),
		subjects:      s.subjects.clone(),
		chapters:      s.chapters.clone(),
		teacherAccess: s.teacherAccess.clone(),
		notes:         s.notes.clone(),
		embeddings:    s.embeddings.clone(),
		questions:     s.questions.clone(),
		announcements: s.announcements.clone(),
	}
}

// Repository implements repositories.Repository on top of in-memory tables.
type Repository struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data state
}

func NewRepository() *Repository {
	return &Repository{data: newState()}
}

func (r *Repository) User() repositories.UserRepository { return &userStore{r} }

func (r *Repository) Classroom() repositories.ClassroomRepository { return &classroomStore{r} }

func (r *Repository) Subject() repositories.SubjectRepository { return &subjectStore{r} }

func (r *Repository) Chapter() repositories.ChapterRepository { return &chapterStore{r} }

func (r *Repository) TeacherAccess() repositories.TeacherAccessRepository {
	return &teacherAccessStore{r}
}

func (r *Repository) Note() repositories.NoteRepository { return &noteStore{r} }

func (r *Repository) NoteEmbedding() repositories.NoteEmbeddingRepository {
	return &embeddingStore{r}
}

func (r *Repository) Question() repositories.QuestionRepository { return &questionStore{r} }

func (r *Repository) Announcement() repositories.AnnouncementRepository {
	return &announcementStore{r}
}

func (r *Repository) Dashboard() repositories.DashboardRepository { return &dashboardStore{r} }

// WithTransaction serializes transactions and restores the previous state
// when fn fails. Writes made outside a transaction while one is running are
// lost on rollback.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.RLock()
	snapshot := r.data.clone()
	r.mu.RUnlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.data = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error { return ctx.Err() }

func (r *Repository) Close() error { return nil }

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// RepositoryManager wraps an in-memory repository in the manager lifecycle.
type RepositoryManager struct {
	repo *Repository
}

func NewRepositoryManager() repositories.RepositoryManager {
	return &RepositoryManager{}
}

func (rm *RepositoryManager) Initialize() error {
	rm.repo = NewRepository()
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	return nil
}
