package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
)

type fixture struct {
	repo      *Repository
	owner     *models.User
	delegate  *models.User
	student   *models.User
	classroom *models.Classroom
	subject   *models.Subject
	chapter   *models.Chapter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{repo: NewRepository()}

	f.owner = &models.User{ProviderUID: "p-owner", Name: "Owner", Email: "owner@school.edu", Role: models.RoleTeacher}
	f.delegate = &models.User{ProviderUID: "p-del", Name: "Delegate", Email: "del@school.edu", Role: models.RoleTeacher}
	f.student = &models.User{ProviderUID: "p-stu", Name: "Stu", Email: "stu@school.edu", Role: models.RoleStudent}
	for _, u := range []*models.User{f.owner, f.delegate, f.student} {
		if err := f.repo.User().Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}

	f.classroom = &models.Classroom{Name: "Physics", Code: "phy101", CreatedBy: f.owner.ID}
	if err := f.repo.Classroom().Create(ctx, f.classroom); err != nil {
		t.Fatalf("create classroom: %v", err)
	}
	f.subject = &models.Subject{ClassroomID: f.classroom.ID, Name: "Mechanics"}
	if err := f.repo.Subject().Create(ctx, f.subject); err != nil {
		t.Fatalf("create subject: %v", err)
	}
	f.chapter = &models.Chapter{SubjectID: f.subject.ID, Name: "Kinematics"}
	if err := f.repo.Chapter().Create(ctx, f.chapter); err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	return f
}

func (f *fixture) addNote(t *testing.T, status models.ApprovalStatus, visibility models.NoteVisibility) *models.Note {
	t.Helper()
	n := &models.Note{
		ChapterID:      f.chapter.ID,
		Title:          "note",
		Visibility:     visibility,
		ApprovalStatus: status,
		UploadedBy:     f.student.ID,
	}
	if err := f.repo.Note().Create(context.Background(), n); err != nil {
		t.Fatalf("create note: %v", err)
	}
	return n
}

func TestUserStore_Uniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		user *models.User
	}{
		{"same provider uid", &models.User{ProviderUID: "p-stu", Email: "x@y.z"}},
		{"same email different case", &models.User{ProviderUID: "p-new", Email: "STU@school.edu"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.repo.User().Create(ctx, tt.user)
			if !repositories.IsDuplicateError(err) {
				t.Errorf("expected duplicate error, got %v", err)
			}
		})
	}

	u, err := f.repo.User().GetByEmail(ctx, "OWNER@school.edu")
	if err != nil || u.ID != f.owner.ID {
		t.Errorf("GetByEmail() = %v, %v", u, err)
	}
}

func TestClassroomStore_CodeAndMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if f.classroom.Code != "PHY101" {
		t.Errorf("code should be upper-cased, got %s", f.classroom.Code)
	}
	got, err := f.repo.Classroom().GetByCode(ctx, "phy101")
	if err != nil || got.ID != f.classroom.ID {
		t.Fatalf("GetByCode() = %v, %v", got, err)
	}

	dup := &models.Classroom{Name: "Other", Code: "PHY101", CreatedBy: f.owner.ID}
	if err := f.repo.Classroom().Create(ctx, dup); !repositories.IsDuplicateError(err) {
		t.Errorf("expected duplicate code error, got %v", err)
	}

	member := &models.ClassroomMember{ClassroomID: f.classroom.ID, UserID: f.student.ID}
	if err := f.repo.Classroom().AddMember(ctx, member); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	again := &models.ClassroomMember{ClassroomID: f.classroom.ID, UserID: f.student.ID}
	if err := f.repo.Classroom().AddMember(ctx, again); !repositories.IsDuplicateError(err) {
		t.Errorf("expected duplicate member error, got %v", err)
	}

	counts, _ := f.repo.Classroom().CountMembers(ctx, []string{f.classroom.ID})
	if counts[f.classroom.ID] != 1 {
		t.Errorf("member count = %d, want 1", counts[f.classroom.ID])
	}
	joined, _ := f.repo.Classroom().ListByMember(ctx, f.student.ID)
	if len(joined) != 1 || joined[0].ID != f.classroom.ID {
		t.Errorf("ListByMember() = %v", joined)
	}
}

func TestClassroomStore_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	note := f.addNote(t, models.ApprovalApproved, models.VisibilityPublic)
	emb := &models.NoteEmbedding{NoteID: note.ID, ChapterID: f.chapter.ID, Title: note.Title}
	if err := f.repo.NoteEmbedding().Upsert(ctx, emb); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	q := &models.Question{ChapterID: f.chapter.ID, UserID: f.student.ID, Title: "why", Content: "?"}
	_ = f.repo.Question().Create(ctx, q)
	_ = f.repo.Announcement().Create(ctx, &models.Announcement{ChapterID: f.chapter.ID, Title: "t", Content: "c", CreatedBy: f.owner.ID})
	_ = f.repo.TeacherAccess().Create(ctx, &models.TeacherAccess{SubjectID: f.subject.ID, TeacherID: f.delegate.ID})
	_ = f.repo.Classroom().AddMember(ctx, &models.ClassroomMember{ClassroomID: f.classroom.ID, UserID: f.student.ID})

	if err := f.repo.Classroom().Delete(ctx, f.classroom.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := f.repo.Subject().GetByID(ctx, f.subject.ID); !repositories.IsNotFoundError(err) {
		t.Errorf("subject should be gone, got %v", err)
	}
	if _, err := f.repo.Chapter().GetByID(ctx, f.chapter.ID); !repositories.IsNotFoundError(err) {
		t.Errorf("chapter should be gone, got %v", err)
	}
	if _, err := f.repo.Note().GetByID(ctx, note.ID); !repositories.IsNotFoundError(err) {
		t.Errorf("note should be gone, got %v", err)
	}
	if _, err := f.repo.Question().GetByID(ctx, q.ID); !repositories.IsNotFoundError(err) {
		t.Errorf("question should be gone, got %v", err)
	}
	embs, _ := f.repo.NoteEmbedding().ListByChapter(ctx, f.chapter.ID)
	if len(embs) != 0 {
		t.Errorf("embeddings should be gone, got %d", len(embs))
	}
	anns, _ := f.repo.Announcement().ListByChapters(ctx, []string{f.chapter.ID})
	if len(anns) != 0 {
		t.Errorf("announcements should be gone, got %d", len(anns))
	}
	grants, _ := f.repo.TeacherAccess().ListByTeacher(ctx, f.delegate.ID)
	if len(grants) != 0 {
		t.Errorf("grants should be gone, got %d", len(grants))
	}
	if ok, _ := f.repo.Classroom().IsMember(ctx, f.classroom.ID, f.student.ID); ok {
		t.Error("membership should be gone")
	}

	if err := f.repo.Classroom().Delete(ctx, f.classroom.ID); !repositories.IsNotFoundError(err) {
		t.Errorf("second delete should be not found, got %v", err)
	}
}

func TestNoteStore_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addNote(t, models.ApprovalApproved, models.VisibilityPublic)
	f.addNote(t, models.ApprovalPending, models.VisibilityPublic)
	f.addNote(t, models.ApprovalApproved, models.VisibilityPrivate)

	approved := models.ApprovalApproved
	public := models.VisibilityPublic

	tests := []struct {
		name    string
		filters repositories.NoteFilters
		want    int
	}{
		{"by chapter", repositories.NoteFilters{ChapterID: &f.chapter.ID}, 3},
		{"approved only", repositories.NoteFilters{Status: &approved}, 2},
		{"approved public", repositories.NoteFilters{Status: &approved, Visibility: &public}, 1},
		{"limit", repositories.NoteFilters{Limit: 2}, 2},
		{"offset past end", repositories.NoteFilters{Offset: 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.repo.Note().List(ctx, tt.filters)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("List() returned %d notes, want %d", len(got), tt.want)
			}
		})
	}

	counts, _ := f.repo.Note().CountByChapters(ctx, []string{f.chapter.ID}, models.ApprovalApproved)
	if counts[f.chapter.ID] != 2 {
		t.Errorf("approved count = %d, want 2", counts[f.chapter.ID])
	}
}

func TestDashboardStore_DelegationRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addNote(t, models.ApprovalPending, models.VisibilityPublic)
	f.addNote(t, models.ApprovalPending, models.VisibilityPrivate)
	_ = f.repo.Question().Create(ctx, &models.Question{ChapterID: f.chapter.ID, UserID: f.student.ID, Title: "q", Content: "?"})

	rows, _ := f.repo.Dashboard().PendingNotes(ctx, f.owner.ID)
	if len(rows) != 1 {
		t.Fatalf("owner should see 1 pending public note, got %d", len(rows))
	}
	if rows[0].Scope.AuthorName != "Stu" || rows[0].Scope.ChapterName != "Kinematics" {
		t.Errorf("unexpected scope %+v", rows[0].Scope)
	}
	if rows, _ := f.repo.Dashboard().PendingNotes(ctx, f.delegate.ID); len(rows) != 0 {
		t.Errorf("delegate without a grant should see nothing, got %d", len(rows))
	}

	_ = f.repo.TeacherAccess().Create(ctx, &models.TeacherAccess{SubjectID: f.subject.ID, TeacherID: f.delegate.ID})

	if rows, _ := f.repo.Dashboard().PendingNotes(ctx, f.owner.ID); len(rows) != 0 {
		t.Errorf("owner should hand the subject to the delegate, got %d", len(rows))
	}
	if rows, _ := f.repo.Dashboard().PendingNotes(ctx, f.delegate.ID); len(rows) != 1 {
		t.Errorf("delegate should see 1 note, got %d", len(rows))
	}
	if rows, _ := f.repo.Dashboard().UnansweredQuestions(ctx, f.delegate.ID); len(rows) != 1 {
		t.Errorf("delegate should see 1 question, got %d", len(rows))
	}
}

func TestRepository_WithTransactionRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Subject().Create(ctx, &models.Subject{ClassroomID: f.classroom.ID, Name: "Optics"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	subjects, _ := f.repo.Subject().ListByClassroom(ctx, f.classroom.ID)
	if len(subjects) != 1 {
		t.Errorf("rollback should leave 1 subject, got %d", len(subjects))
	}
}
