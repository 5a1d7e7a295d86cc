package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/SAP-F-2025/edunexus-service/pkg/apiclient"
	"github.com/SAP-F-2025/edunexus-service/pkg/navigation"
	"github.com/SAP-F-2025/edunexus-service/pkg/session"
)

// StudentDashboard lists the classrooms the student belongs to.
type StudentDashboard struct {
	lifecycle
	env        *Env
	classrooms ListState[apiclient.Classroom]
}

func NewStudentDashboard(env *Env) *StudentDashboard {
	return &StudentDashboard{env: env, classrooms: loadingList[apiclient.Classroom]()}
}

func (s *StudentDashboard) Mount(ctx context.Context) {
	s.mount(s.env.Sync, s, DashboardKey)
	s.Refresh(ctx)
}

func (s *StudentDashboard) Refresh(ctx context.Context) {
	gen, ok := s.current()
	if !ok {
		return
	}
	runAll(ctx, func(ctx context.Context) {
		fetchList(ctx, s.env, &s.lifecycle, gen, &s.classrooms, "Failed to load classrooms", s.env.Classrooms.List, nil)
	})
}

func (s *StudentDashboard) Classrooms() (out ListState[apiclient.Classroom]) {
	s.read(func() { out = s.classrooms })
	return out
}

// Join enrolls the student with a classroom code.
func (s *StudentDashboard) Join(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return s.env.reject(ErrMissingField, "Please enter a classroom code")
	}
	err := s.env.Sync.Mutate(ctx, DashboardKey, func(ctx context.Context) error {
		_, err := s.env.Classrooms.Join(ctx, code)
		return err
	})
	if err == nil {
		s.env.notifySuccess("Successfully joined classroom!")
	}
	return err
}

// SubjectPlan describes a subject to create together with a classroom.
type SubjectPlan struct {
	Name  string
	Units int
}

// TeacherDashboard shows created and shared classrooms plus the pending
// note and question queues.
type TeacherDashboard struct {
	lifecycle
	env              *Env
	created          ListState[apiclient.Classroom]
	accessed         ListState[apiclient.Classroom]
	pendingNotes     ListState[apiclient.PendingNote]
	pendingQuestions ListState[apiclient.PendingQuestion]
}

func NewTeacherDashboard(env *Env) *TeacherDashboard {
	return &TeacherDashboard{
		env:              env,
		created:          loadingList[apiclient.Classroom](),
		accessed:         loadingList[apiclient.Classroom](),
		pendingNotes:     loadingList[apiclient.PendingNote](),
		pendingQuestions: loadingList[apiclient.PendingQuestion](),
	}
}

func (s *TeacherDashboard) Mount(ctx context.Context) {
	s.mount(s.env.Sync, s, DashboardKey)
	s.Refresh(ctx)
}

func (s *TeacherDashboard) Refresh(ctx context.Context) {
	gen, ok := s.current()
	if !ok {
		return
	}
	dash, err := s.env.Dashboard.Teacher(ctx)
	if err != nil {
		if s.apply(gen, func() {
			s.created = listResult[apiclient.Classroom](nil, err)
			s.accessed = listResult[apiclient.Classroom](nil, err)
			s.pendingNotes = listResult[apiclient.PendingNote](nil, err)
			s.pendingQuestions = listResult[apiclient.PendingQuestion](nil, err)
		}) {
			s.env.Logger.WarnContext(ctx, "Failed to load dashboard", "error", err)
			s.env.Notifier.Notify(session.LevelError, "Failed to load dashboard")
		}
		return
	}

	notes := lo.Filter(dash.PendingNotes, func(n apiclient.PendingNote, _ int) bool {
		return n.Visibility != apiclient.VisibilityPrivate
	})
	s.apply(gen, func() {
		s.created = listResult(dash.CreatedClassrooms, nil)
		s.accessed = listResult(dash.AccessedClassrooms, nil)
		s.pendingNotes = listResult(notes, nil)
		s.pendingQuestions = listResult(dash.PendingQuestions, nil)
	})
}

func (s *TeacherDashboard) CreatedClassrooms() (out ListState[apiclient.Classroom]) {
	s.read(func() { out = s.created })
	return out
}

func (s *TeacherDashboard) AccessedClassrooms() (out ListState[apiclient.Classroom]) {
	s.read(func() { out = s.accessed })
	return out
}

func (s *TeacherDashboard) PendingNotes() (out ListState[apiclient.PendingNote]) {
	s.read(func() { out = s.pendingNotes })
	return out
}

func (s *TeacherDashboard) PendingQuestions() (out ListState[apiclient.PendingQuestion]) {
	s.read(func() { out = s.pendingQuestions })
	return out
}

// CreateClassroom creates the classroom, then each planned subject with
// Units numbered chapters. If a subject or chapter fails after the classroom
// exists, the classroom is returned with the error and the dashboard is
// refreshed so it shows up.
func (s *TeacherDashboard) CreateClassroom(ctx context.Context, name string, subjects []SubjectPlan) (*apiclient.Classroom, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, s.env.reject(ErrMissingField, "Please enter a classroom name")
	}

	var classroom *apiclient.Classroom
	err := s.env.Sync.Mutate(ctx, DashboardKey, func(ctx context.Context) error {
		var err error
		classroom, err = s.env.Classrooms.Create(ctx, name, nil)
		if err != nil {
			return err
		}
		for _, plan := range subjects {
			desc := plan.Name + " course content"
			subject, err := s.env.Subjects.Create(ctx, classroom.ID, plan.Name, &desc)
			if err != nil {
				return err
			}
			for i := 1; i <= plan.Units; i++ {
				chapterDesc := fmt.Sprintf("Chapter %d content", i)
				chapterName := fmt.Sprintf("Unit %d: %s - Part %d", i, plan.Name, i)
				if _, err := s.env.Subjects.CreateChapter(ctx, subject.ID, chapterName, &chapterDesc); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if classroom != nil {
			s.env.Sync.Refresh(ctx, DashboardKey)
		}
		return classroom, err
	}
	s.env.notifySuccess("Classroom created successfully!")
	return classroom, nil
}

func (s *TeacherDashboard) DeleteClassroom(ctx context.Context, id string) error {
	err := s.env.Sync.Mutate(ctx, DashboardKey, func(ctx context.Context) error {
		return s.env.Classrooms.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.env.invalidate(navigation.KindClassroom, id)
	s.env.notifySuccess("Classroom deleted")
	return nil
}

func (s *TeacherDashboard) ApproveNote(ctx context.Context, note apiclient.PendingNote) error {
	return s.decide(ctx, note, apiclient.StatusApproved, "Note approved successfully")
}

func (s *TeacherDashboard) RejectNote(ctx context.Context, note apiclient.PendingNote) error {
	return s.decide(ctx, note, apiclient.StatusRejected, "Note rejected")
}

func (s *TeacherDashboard) decide(ctx context.Context, note apiclient.PendingNote, status apiclient.ApprovalStatus, success string) error {
	keys := []Key{DashboardKey, ChapterKey(note.ChapterID), MyNotesKey}
	err := s.env.Sync.MutateKeys(ctx, keys, func(ctx context.Context) error {
		_, err := s.env.Chapters.ApproveNote(ctx, note.ID, status)
		return err
	})
	if err == nil {
		s.env.notifySuccess(success)
	}
	return err
}

func (s *TeacherDashboard) AnswerQuestion(ctx context.Context, question apiclient.PendingQuestion, answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return s.env.reject(ErrMissingField, "Please write an answer")
	}
	keys := []Key{DashboardKey, ChapterKey(question.ChapterID)}
	err := s.env.Sync.MutateKeys(ctx, keys, func(ctx context.Context) error {
		_, err := s.env.Chapters.AnswerQuestion(ctx, question.ID, answer)
		return err
	})
	if err == nil {
		s.env.notifySuccess("Question answered successfully")
	}
	return err
}

// Export downloads the dashboard spreadsheet.
func (s *TeacherDashboard) Export(ctx context.Context) ([]byte, error) {
	data, err := s.env.Dashboard.Export(ctx)
	if err != nil {
		s.env.Logger.WarnContext(ctx, "Dashboard export failed", "error", err)
		s.env.Notifier.Notify(session.LevelError, errorMessage(err, "Failed to export dashboard"))
		return nil, err
	}
	return data, nil
}
