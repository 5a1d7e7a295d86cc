package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
)

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, repositories.ErrNotFound)
}

func duplicate(op string) error {
	return fmt.Errorf("%s: %w", op, repositories.ErrDuplicate)
}

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// ===== USERS =====

type userStore struct{ r *Repository }

func (s *userStore) Create(ctx context.Context, user *models.User) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	ensureID(&user.ID)
	dup := s.r.data.users.has(user.ID)
	s.r.data.users.each(func(u models.User) bool {
		if u.ProviderUID == user.ProviderUID || strings.EqualFold(u.Email, user.Email) {
			dup = true
			return false
		}
		return true
	})
	if dup {
		return duplicate("create user")
	}
	stamp(&user.CreatedAt, &user.UpdatedAt)
	s.r.data.users.put(user.ID, *user)
	return nil
}

func (s *userStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	if u, ok := s.r.data.users.get(id); ok {
		return &u, nil
	}
	return nil, notFound("get user by id")
}

func (s *userStore) find(op string, match func(models.User) bool) (*models.User, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	var found *models.User
	s.r.data.users.each(func(u models.User) bool {
		if match(u) {
			found = &u
			return false
		}
		return true
	})
	if found == nil {
		return nil, notFound(op)
	}
	return found, nil
}

func (s *userStore) GetByProviderUID(ctx context.Context, uid string) (*models.User, error) {
	return s.find("get user by provider uid", func(u models.User) bool { return u.ProviderUID == uid })
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.find("get user by email", func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *userStore) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	want := toSet(ids)
	users := []*models.User{}
	s.r.data.users.each(func(u models.User) bool {
		if want[u.ID] {
			users = append(users, &u)
		}
		return true
	})
	return users, nil
}

// ===== CLASSROOMS =====

type classroomStore struct{ r *Repository }

func (s *classroomStore) Create(ctx context.Context, classroom *models.Classroom) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	ensureID(&classroom.ID)
	classroom.Code = strings.ToUpper(classroom.Code)
	if s.r.data.classrooms.has(classroom.ID) || s.r.codeTaken(classroom.Code) {
		return duplicate("create classroom")
	}
	stamp(&classroom.CreatedAt, &classroom.UpdatedAt)
	s.r.data.classrooms.put(classroom.ID, *classroom)
	return nil
}

func (r *Repository) codeTaken(code string) bool {
	taken := false
	r.data.classrooms.each(func(c models.Classroom) bool {
		taken = c.Code == code
		return !taken
	})
	return taken
}

func (s *classroomStore) GetByID(ctx context.Context, id string) (*models.Classroom, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	if c, ok := s.r.data.classrooms.get(id); ok {
		return &c, nil
	}
	return nil, notFound("get classroom by id")
}

func (s *classroomStore) GetByCode(ctx context.Context, code string) (*models.Classroom, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	code = strings.ToUpper(code)
	var found *models.Classroom
	s.r.data.classrooms.each(func(c models.Classroom) bool {
		if c.Code == code {
			found = &c
			return false
		}
		return true
	})
	if found == nil {
		return nil, notFound("get classroom by code")
	}
	return found, nil
}

func (s *classroomStore) ExistsByCode(ctx context.Context, code string) (bool, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	return s.r.codeTaken(strings.ToUpper(code)), nil
}

func (s *classroomStore) Delete(ctx context.Context, id string) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if !s.r.data.classrooms.has(id) {
		return notFound("delete classroom")
	}
	s.r.deleteClassroom(id)
	return nil
}

func (s *classroomStore) ListByCreator(ctx context.Context, userID string) ([]*models.Classroom, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	classrooms := []*models.Classroom{}
	s.r.data.classrooms.each(func(c models.Classroom) bool {
		if c.CreatedBy == userID {
			classrooms = append(classrooms, &c)
		}
		return true
	})
	return reversed(classrooms), nil
}

func (s *classroomStore) ListByMember(ctx context.Context, userID string) ([]*models.Classroom, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	classrooms := []*models.Classroom{}
	s.r.data.members.each(func(m models.ClassroomMember) bool {
		if m.UserID == userID {
			if c, ok := s.r.data.classrooms.get(m.ClassroomID); ok {
				classrooms = append(classrooms, &c)
			}
		}
		return true
	})
	return reversed(classrooms), nil
}

func (s *classroomStore) ListByIDs(ctx context.Context, ids []string) ([]*models.Classroom, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	want := toSet(ids)
	classrooms := []*models.Classroom{}
	s.r.data.classrooms.each(func(c models.Classroom) bool {
		if want[c.ID] {
			classrooms = append(classrooms, &c)
		}
		return true
	})
	return reversed(classrooms), nil
}

func (s *classroomStore) AddMember(ctx context.Context, member *models.ClassroomMember) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	ensureID(&member.ID)
	if s.r.isMember(member.ClassroomID, member.UserID) {
		return duplicate("add classroom member")
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	s.r.data.members.put(member.ID, *member)
	return nil
}

func (r *Repository) isMember(classroomID, userID string) bool {
	found := false
	r.data.members.each(func(m models.ClassroomMember) bool {
		found = m.ClassroomID == classroomID && m.UserID == userID
		return !found
	})
	return found
}

func (s *classroomStore) IsMember(ctx context.Context, classroomID, userID string) (bool, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	return s.r.isMember(classroomID, userID), nil
}

func (s *classroomStore) CountMembers(ctx context.Context, classroomIDs []string) (map[string]int64, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	want := toSet(classroomIDs)
	counts := make(map[string]int64, len(classroomIDs))
	s.r.data.members.each(func(m models.ClassroomMember) bool {
		if want[m.ClassroomID] {
			counts[m.ClassroomID]++
		}
		return true
	})
	return counts, nil
}

// ===== SUBJECTS =====

type subjectStore struct{ r *Repository }

func (s *subjectStore) Create(ctx context.Context, subject *models.Subject) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	ensureID(&subject.ID)
	if s.r.data.subjects.has(subject.ID) {
		return duplicate("create subject")
	}
	stamp(&subject.CreatedAt, &subject.UpdatedAt)
	s.r.data.subjects.put(subject.ID, *subject)
	return nil
}

func (s *subjectStore) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	if v, ok := s.r.data.subjects.get(id); ok {
		return &v, nil
	}
	return nil, notFound("get subject by id")
}

func (s *subjectStore) Delete(ctx context.Context, id string) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if !s.r.data.subjects.has(id) {
		return notFound("delete subject")
	}
	s.r.deleteSubject(id)
	return nil
}

func (s *subjectStore) ListByClassroom(ctx context.Context, classroomID string) ([]*models.Subject, error) {
	return s.ListByClassrooms(ctx, []string{classroomID})
}

func (s *subjectStore) ListByClassrooms(ctx context.Context, classroomIDs []string) ([]*models.Subject, error) {
	want := toSet(classroomIDs)
	return s.filter(func(v models.Subject) bool { return want[v.ClassroomID] }), nil
}

func (s *subjectStore) ListByIDs(ctx context.Context, ids []string) ([]*models.Subject, error) {
	want := toSet(ids)
	return s.filter(func(v models.Subject) bool { return want[v.ID] }), nil
}

func (s *subjectStore) filter(match func(models.Subject) bool) []*models.Subject {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	subjects := []*models.Subject{}
	s.r.data.subjects.each(func(v models.Subject) bool {
		if match(v) {
			subjects = append(subjects, &v)
		}
		return true
	})
	return subjects
}

// ===== CHAPTERS =====

type chapterStore struct{ r *Repository }

func (s *chapterStore) Create(ctx context.Context, chapter *models.Chapter) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	ensureID(&chapter.ID)
	if s.r.data.chapters.has(chapter.ID) {
		return duplicate("create chapter")
	}
	stamp(&chapter.CreatedAt, &chapter.UpdatedAt)
	s.r.data.chapters.put(chapter.ID, *chapter)
	return nil
}

func (s *chapterStore) GetByID(ctx context.Context, id string) (*models.Chapter, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	if v, ok := s.r.data.chapters.get(id); ok {
		return &v, nil
	}
	return nil, notFound("get chapter by id")
}

func (s *chapterStore) Delete(ctx context.Context, id string) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if !s.r.data.chapters.has(id) {
		return notFound("delete chapter")
	}
	s.r.deleteChapter(id)
	return nil
}

func (s *chapterStore) ListBySubject(ctx context.Context, subjectID string) ([]*models.Chapter, error) {
	return s.ListBySubjects(ctx, []string{subjectID})
}

func (s *chapterStore) ListBySubjects(ctx context.Context, subjectIDs []string) ([]*models.Chapter, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	want := toSet(subjectIDs)
	chapters := []*models.Chapter{}
	s.r.data.chapters.each(func(v models.Chapter) bool {
		if want[v.SubjectID] {
			chapters = append(chapters, &v)
		}
		return true
	})
	return chapters, nil
}

// ===== TEACHER ACCESS =====

type teacherAccessStore struct{ r *Repository }

func (s *teacherAccessStore) Create(ctx context.Context, access *models.TeacherAccess) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	ensureID(&access.ID)
	if s.r.data.teacherAccess.has(access.ID) || s.r.hasGrant(access.SubjectID, access.TeacherID) {
		return duplicate("create teacher access")
	}
	stamp(&access.CreatedAt, nil)
	s.r.data.teacherAccess.put(access.ID, *access)
	return nil
}

func (r *Repository) hasGrant(subjectID, teacherID string) bool {
	found := false
	r.data.teacherAccess.each(func(a models.TeacherAccess) bool {
		found = a.SubjectID == subjectID && (teacherID == "" || a.TeacherID == teacherID)
		return !found
	})
	return found
}

func (s *teacherAccessStore) GetByID(ctx context.Context, id string) (*models.TeacherAccess, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	if v, ok := s.r.data.teacherAccess.get(id); ok {
		return &v, nil
	}
	return nil, notFound("get teacher access by id")
}

func (s *teacherAccessStore) Delete(ctx context.Context, id string) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if !s.r.data.teacherAccess.del(id) {
		return notFound("delete teacher access")
	}
	return nil
}

func (s *teacherAccessStore) Exists(ctx context.Context, subjectID, teacherID string) (bool, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	return s.r.hasGrant(subjectID, teacherID), nil
}

func (s *teacherAccessStore) list(match func(models.TeacherAccess) bool) []*models.TeacherAccess {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	grants := []*models.TeacherAccess{}
	s.r.data.teacherAccess.each(func(a models.TeacherAccess) bool {
		if match(a) {
			grants = append(grants, &a)
		}
		return true
	})
	return grants
}

func (s *teacherAccessStore) ListBySubject(ctx context.Context, subjectID string) ([]*models.TeacherAccess, error) {
	return s.list(func(a models.TeacherAccess) bool { return a.SubjectID == subjectID }), nil
}

func (s *teacherAccessStore) ListByTeacher(ctx context.Context, teacherID string) ([]*models.TeacherAccess, error) {
	return s.list(func(a models.TeacherAccess) bool { return a.TeacherID == teacherID }), nil
}

func (s *teacherAccessStore) SubjectsWithTeachers(ctx context.Context, subjectIDs []string) ([]string, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	ids := []string{}
	for _, id := range subjectIDs {
		if s.r.hasGrant(id, "") {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ===== NOTES =====

type noteStore struct{ r *Repository }

func (s *noteStore) Create(ctx context.Context, note *models.Note) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	ensureID(&note.ID)
	if s.r.data.notes.has(note.ID) {
		return duplicate("create note")
	}
	stamp(&note.CreatedAt, &note.UpdatedAt)
	s.r.data.notes.put(note.ID, *note)
	return nil
}

func (s *noteStore) GetByID(ctx context.Context, id string) (*models.Note, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	if v, ok := s.r.data.notes.get(id); ok {
		return &v, nil
	}
	return nil, notFound("get note by id")
}

func (s *noteStore) Update(ctx context.Context, note *models.Note) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if !s.r.data.notes.has(note.ID) {
		return notFound("update note")
	}
	stamp(nil, &note.UpdatedAt)
	s.r.data.notes.put(note.ID, *note)
	return nil
}

func (s *noteStore) Delete(ctx context.Context, id string) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if !s.r.data.notes.has(id) {
		return notFound("delete note")
	}
	s.r.deleteNote(id)
	return nil
}

func (s *noteStore) List(ctx context.Context, filters repositories.NoteFilters) ([]*models.Note, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()

	chapters := toSet(filters.ChapterIDs)
	notes := []*models.Note{}
	s.r.data.notes.each(func(n models.Note) bool {
		switch {
		case filters.ChapterID != nil && n.ChapterID != *filters.ChapterID:
		case len(chapters) > 0 && !chapters[n.ChapterID]:
		case filters.UploadedBy != nil && n.UploadedBy != *filters.UploadedBy:
		case filters.Status != nil && n.ApprovalStatus != *filters.Status:
		case filters.Visibility != nil && n.Visibility != *filters.Visibility:
		default:
			notes = append(notes, &n)
		}
		return true
	})

	if filters.SortBy == "title" {
		sort.SliceStable(notes, func(i, j int) bool { return notes[i].Title < notes[j].Title })
	}
	if !strings.EqualFold(filters.SortOrder, "asc") {
		notes = reversed(notes)
	}
	return paginate(notes, filters.Limit, filters.Offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (s *noteStore) CountByChapters(ctx context.Context, chapterIDs []string, status models.ApprovalStatus) (map[string]int64, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	want := toSet(chapterIDs)
	counts := make(map[string]int64, len(chapterIDs))
	s.r.data.notes.each(func(n models.Note) bool {
		if want[n.ChapterID] && n.ApprovalStatus == status {
			counts[n.ChapterID]++
		}
		return true
	})
	return counts, nil
}

// ===== EMBEDDINGS =====

type embeddingStore struct{ r *Repository }

func (s *embeddingStore) Upsert(ctx context.Context, embedding *models.NoteEmbedding) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if !s.r.data.notes.has(embedding.NoteID) {
		return notFound("upsert note embedding")
	}
	if existing, ok := s.r.data.embeddings.get(embedding.NoteID); ok {
		embedding.CreatedAt = existing.CreatedAt
	}
	stamp(&embedding.CreatedAt, &embedding.UpdatedAt)
	s.r.data.embeddings.put(embedding.NoteID, *embedding)
	return nil
}

func (s *embeddingStore) Delete(ctx context.Context, noteID string) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.data.embeddings.del(noteID)
	return nil
}

func (s *embeddingStore) ListByChapter(ctx context.Context, chapterID string) ([]*models.NoteEmbedding, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	embeddings := []*models.NoteEmbedding{}
	s.r.data.embeddings.each(func(e models.NoteEmbedding) bool {
		if e.ChapterID == chapterID {
			embeddings = append(embeddings, &e)
		}
		return true
	})
	return embeddings, nil
}

// ===== QUESTIONS =====

type questionStore struct{ r *Repository }

func (s *questionStore) Create(ctx context.Context, question *models.Question) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	ensureID(&question.ID)
	if s.r.data.questions.has(question.ID) {
		return duplicate("create question")
	}
	stamp(&question.CreatedAt, &question.UpdatedAt)
	s.r.data.questions.put(question.ID, *question)
	return nil
}

func (s *questionStore) GetByID(ctx context.Context, id string) (*models.Question, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	if v, ok := s.r.data.questions.get(id); ok {
		return &v, nil
	}
	return nil, notFound("get question by id")
}

func (s *questionStore) Update(ctx context.Context, question *models.Question) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if !s.r.data.questions.has(question.ID) {
		return notFound("update question")
	}
	stamp(nil, &question.UpdatedAt)
	s.r.data.questions.put(question.ID, *question)
	return nil
}

func (s *questionStore) Delete(ctx context.Context, id string) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if !s.r.data.questions.del(id) {
		return notFound("delete question")
	}
	return nil
}

func (s *questionStore) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()

	questions := []*models.Question{}
	s.r.data.questions.each(func(q models.Question) bool {
		switch {
		case filters.ChapterID != nil && q.ChapterID != *filters.ChapterID:
		case filters.UserID != nil && q.UserID != *filters.UserID:
		case filters.IsPrivate != nil && q.IsPrivate != *filters.IsPrivate:
		case filters.IsAnswered != nil && q.IsAnswered() != *filters.IsAnswered:
		default:
			questions = append(questions, &q)
		}
		return true
	})

	if filters.SortBy == "title" {
		sort.SliceStable(questions, func(i, j int) bool { return questions[i].Title < questions[j].Title })
	}
	if !strings.EqualFold(filters.SortOrder, "asc") {
		questions = reversed(questions)
	}
	return paginate(questions, filters.Limit, filters.Offset), nil
}

// ===== ANNOUNCEMENTS =====

type announcementStore struct{ r *Repository }

func (s *announcementStore) Create(ctx context.Context, announcement *models.Announcement) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	ensureID(&announcement.ID)
	if s.r.data.announcements.has(announcement.ID) {
		return duplicate("create announcement")
	}
	stamp(&announcement.CreatedAt, nil)
	s.r.data.announcements.put(announcement.ID, *announcement)
	return nil
}

func (s *announcementStore) ListByChapters(ctx context.Context, chapterIDs []string) ([]*models.Announcement, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	want := toSet(chapterIDs)
	announcements := []*models.Announcement{}
	s.r.data.announcements.each(func(a models.Announcement) bool {
		if want[a.ChapterID] {
			announcements = append(announcements, &a)
		}
		return true
	})
	return reversed(announcements), nil
}

// ===== DASHBOARD =====

type dashboardStore struct{ r *Repository }

// scope resolves the chapter ancestry and applies the delegation rule: a
// granted teacher owns the subject, otherwise the classroom creator does.
func (r *Repository) scope(chapterID, teacherID string) (repositories.PendingItemScope, bool) {
	chapter, ok := r.data.chapters.get(chapterID)
	if !ok {
		return repositories.PendingItemScope{}, false
	}
	subject, ok := r.data.subjects.get(chapter.SubjectID)
	if !ok {
		return repositories.PendingItemScope{}, false
	}
	classroom, ok := r.data.classrooms.get(subject.ClassroomID)
	if !ok {
		return repositories.PendingItemScope{}, false
	}

	visible := r.hasGrant(subject.ID, teacherID) ||
		(classroom.CreatedBy == teacherID && !r.hasGrant(subject.ID, ""))
	return repositories.PendingItemScope{
		ChapterID:          chapter.ID,
		ChapterName:        chapter.Name,
		SubjectID:          subject.ID,
		ClassroomID:        classroom.ID,
		ClassroomCreatedBy: classroom.CreatedBy,
	}, visible
}

func (r *Repository) userName(id string) string {
	if u, ok := r.data.users.get(id); ok {
		return u.Name
	}
	return ""
}

func (s *dashboardStore) PendingNotes(ctx context.Context, teacherID string) ([]repositories.PendingNoteRow, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	rows := []repositories.PendingNoteRow{}
	s.r.data.notes.each(func(n models.Note) bool {
		if n.ApprovalStatus != models.ApprovalPending || n.Visibility != models.VisibilityPublic {
			return true
		}
		if scope, ok := s.r.scope(n.ChapterID, teacherID); ok {
			scope.AuthorName = s.r.userName(n.UploadedBy)
			rows = append(rows, repositories.PendingNoteRow{Note: n, Scope: scope})
		}
		return true
	})
	return reversed(rows), nil
}

func (s *dashboardStore) UnansweredQuestions(ctx context.Context, teacherID string) ([]repositories.PendingQuestionRow, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	rows := []repositories.PendingQuestionRow{}
	s.r.data.questions.each(func(q models.Question) bool {
		if q.IsAnswered() {
			return true
		}
		if scope, ok := s.r.scope(q.ChapterID, teacherID); ok {
			scope.AuthorName = s.r.userName(q.UserID)
			rows = append(rows, repositories.PendingQuestionRow{Question: q, Scope: scope})
		}
		return true
	})
	return reversed(rows), nil
}

// ===== CASCADES =====
// Callers hold the write lock.

func (r *Repository) deleteClassroom(id string) {
	r.data.classrooms.del(id)
	for _, m := range r.collectMembers(id) {
		r.data.members.del(m)
	}
	var subjects []string
	r.data.subjects.each(func(s models.Subject) bool {
		if s.ClassroomID == id {
			subjects = append(subjects, s.ID)
		}
		return true
	})
	for _, sid := range subjects {
		r.deleteSubject(sid)
	}
}

func (r *Repository) collectMembers(classroomID string) []string {
	var ids []string
	r.data.members.each(func(m models.ClassroomMember) bool {
		if m.ClassroomID == classroomID {
			ids = append(ids, m.ID)
		}
		return true
	})
	return ids
}

func (r *Repository) deleteSubject(id string) {
	r.data.subjects.del(id)
	var grants, chapters []string
	r.data.teacherAccess.each(func(a models.TeacherAccess) bool {
		if a.SubjectID == id {
			grants = append(grants, a.ID)
		}
		return true
	})
	r.data.chapters.each(func(c models.Chapter) bool {
		if c.SubjectID == id {
			chapters = append(chapters, c.ID)
		}
		return true
	})
	for _, g := range grants {
		r.data.teacherAccess.del(g)
	}
	for _, c := range chapters {
		r.deleteChapter(c)
	}
}

func (r *Repository) deleteChapter(id string) {
	r.data.chapters.del(id)
	var notes, questions, announcements []string
	r.data.notes.each(func(n models.Note) bool {
		if n.ChapterID == id {
			notes = append(notes, n.ID)
		}
		return true
	})
	r.data.questions.each(func(q models.Question) bool {
		if q.ChapterID == id {
			questions = append(questions, q.ID)
		}
		return true
	})
	r.data.announcements.each(func(a models.Announcement) bool {
		if a.ChapterID == id {
			announcements = append(announcements, a.ID)
		}
		return true
	})
	for _, n := range notes {
		r.deleteNote(n)
	}
	for _, q := range questions {
		r.data.questions.del(q)
	}
	for _, a := range announcements {
		r.data.announcements.del(a)
	}
}

func (r *Repository) deleteNote(id string) {
	r.data.notes.del(id)
	r.data.embeddings.del(id)
}
