package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
)

func TestDashboardService_Teacher(t *testing.T) {
	env := newTestEnv(t)
	env.uploadText(t, env.student, "Needs review", models.VisibilityPublic, "counting sort")
	env.uploadText(t, env.student, "Just mine", models.VisibilityPrivate, "bucket sort")
	if _, err := env.manager.Question().Create(env.ctx, &CreateQuestionRequest{
		ChapterID: env.chapter.ID, Title: "Stability", Content: "Is heap sort stable?",
	}, env.student); err != nil {
		t.Fatalf("Create question: %v", err)
	}

	t.Run("student is refused", func(t *testing.T) {
		if _, err := env.manager.Dashboard().Teacher(env.ctx, env.student); !errors.Is(err, ErrTeacherRequired) {
			t.Fatalf("error = %v, want ErrTeacherRequired", err)
		}
	})

	t.Run("owner reviews while nobody is delegated", func(t *testing.T) {
		dash, err := env.manager.Dashboard().Teacher(env.ctx, env.owner)
		if err != nil {
			t.Fatalf("Teacher() error = %v", err)
		}
		if len(dash.CreatedClassrooms) != 1 || len(dash.AccessedClassrooms) != 0 {
			t.Errorf("classrooms = %d created, %d accessed", len(dash.CreatedClassrooms), len(dash.AccessedClassrooms))
		}
		if len(dash.PendingNotes) != 1 {
			t.Fatalf("pending notes = %d, want 1", len(dash.PendingNotes))
		}
		note := dash.PendingNotes[0]
		if note.Title != "Needs review" || note.AuthorName != env.student.Name || note.ChapterName != env.chapter.Name {
			t.Errorf("pending note = %+v", note)
		}
		if note.Status != string(models.ApprovalPending) {
			t.Errorf("Status = %q", note.Status)
		}
		if len(dash.PendingQuestions) != 1 || dash.PendingQuestions[0].AuthorID != env.student.ID {
			t.Errorf("pending questions = %+v", dash.PendingQuestions)
		}
	})

	t.Run("delegation moves the queue", func(t *testing.T) {
		env.grant(t, env.delegate)

		owner, err := env.manager.Dashboard().Teacher(env.ctx, env.owner)
		if err != nil {
			t.Fatalf("Teacher(owner) error = %v", err)
		}
		if len(owner.PendingNotes) != 0 || len(owner.PendingQuestions) != 0 {
			t.Errorf("owner still sees %d notes, %d questions", len(owner.PendingNotes), len(owner.PendingQuestions))
		}

		delegate, err := env.manager.Dashboard().Teacher(env.ctx, env.delegate)
		if err != nil {
			t.Fatalf("Teacher(delegate) error = %v", err)
		}
		if len(delegate.AccessedClassrooms) != 1 || delegate.AccessedClassrooms[0].ID != env.classroom.ID {
			t.Fatalf("accessed = %+v", delegate.AccessedClassrooms)
		}
		if len(delegate.PendingNotes) != 1 || len(delegate.PendingQuestions) != 1 {
			t.Errorf("delegate sees %d notes, %d questions", len(delegate.PendingNotes), len(delegate.PendingQuestions))
		}
	})
}

func TestDashboardService_AccessedOnlyGrantedSubjects(t *testing.T) {
	env := newTestEnv(t)
	other := &models.Subject{ClassroomID: env.classroom.ID, Name: "Databases"}
	if err := env.repo.Subject().Create(env.ctx, other); err != nil {
		t.Fatalf("create subject: %v", err)
	}
	env.grant(t, env.delegate)

	dash, err := env.manager.Dashboard().Teacher(env.ctx, env.delegate)
	if err != nil {
		t.Fatalf("Teacher() error = %v", err)
	}
	if len(dash.AccessedClassrooms) != 1 {
		t.Fatalf("accessed = %d, want 1", len(dash.AccessedClassrooms))
	}
	subjects := dash.AccessedClassrooms[0].Subjects
	if len(subjects) != 1 || subjects[0].ID != env.subject.ID {
		t.Errorf("subjects = %+v, want only the granted one", subjects)
	}
}

func TestExportService_TeacherDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.uploadText(t, env.student, "Needs review", models.VisibilityPublic, "tim sort")

	data, err := env.manager.Export().TeacherDashboard(env.ctx, env.owner)
	if err != nil {
		t.Fatalf("TeacherDashboard() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	tests := []struct {
		sheet    string
		wantRows int
		firstCol string
	}{
		{sheet: "Classrooms", wantRows: 2, firstCol: "Computer Science"},
		{sheet: "Pending Notes", wantRows: 2, firstCol: "Needs review"},
		{sheet: "Pending Questions", wantRows: 1},
	}
	for _, tt := range tests {
		t.Run(tt.sheet, func(t *testing.T) {
			rows, err := f.GetRows(tt.sheet)
			if err != nil {
				t.Fatalf("GetRows() error = %v", err)
			}
			if len(rows) != tt.wantRows {
				t.Fatalf("got %d rows, want %d", len(rows), tt.wantRows)
			}
			if tt.firstCol != "" && rows[1][0] != tt.firstCol {
				t.Errorf("first cell = %q, want %q", rows[1][0], tt.firstCol)
			}
		})
	}

	if _, err := env.manager.Export().TeacherDashboard(env.ctx, env.student); !errors.Is(err, ErrTeacherRequired) {
		t.Errorf("student export error = %v, want ErrTeacherRequired", err)
	}
}
