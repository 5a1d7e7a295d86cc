package screens

import (
	"context"
	"strings"

	"github.com/SAP-F-2025/edunexus-service/pkg/apiclient"
	"github.com/SAP-F-2025/edunexus-service/pkg/navigation"
)

// Announcements lists announcements of one chapter, or of every chapter the
// user can see when chapterID is empty.
type Announcements struct {
	lifecycle
	env       *Env
	chapterID string
	items     ListState[apiclient.Announcement]
}

func NewAnnouncements(env *Env, chapterID string) *Announcements {
	return &Announcements{env: env, chapterID: chapterID, items: loadingList[apiclient.Announcement]()}
}

func (s *Announcements) keys() []Key {
	if s.chapterID == "" {
		return []Key{AnnouncementsKey}
	}
	return []Key{AnnouncementsKey, ChapterKey(s.chapterID)}
}

func (s *Announcements) Mount(ctx context.Context) {
	s.mount(s.env.Sync, s, s.keys()...)
	s.Refresh(ctx)
}

func (s *Announcements) Refresh(ctx context.Context) {
	gen, ok := s.current()
	if !ok {
		return
	}
	list := s.env.Chapters.ListAllAnnouncements
	if s.chapterID != "" {
		list = func(ctx context.Context) ([]apiclient.Announcement, error) {
			return s.env.Chapters.ListAnnouncements(ctx, s.chapterID)
		}
	}
	runAll(ctx, func(ctx context.Context) {
		fetchList(ctx, s.env, &s.lifecycle, gen, &s.items, "Failed to load announcements", list, nil)
	})
}

func (s *Announcements) Items() (out ListState[apiclient.Announcement]) {
	s.read(func() { out = s.items })
	return out
}

// Post publishes an announcement in the screen's chapter.
func (s *Announcements) Post(ctx context.Context, title, content string) (*apiclient.Announcement, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if s.chapterID == "" || title == "" || content == "" {
		return nil, s.env.reject(ErrMissingField, "Please fill in both the title and the announcement")
	}

	var created *apiclient.Announcement
	err := s.env.Sync.MutateKeys(ctx, s.keys(), func(ctx context.Context) error {
		var err error
		created, err = s.env.Chapters.CreateAnnouncement(ctx, s.chapterID, title, content)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.env.notifySuccess("Announcement posted")
	return created, nil
}

// MyNotes lists every note the user uploaded, across chapters.
type MyNotes struct {
	lifecycle
	env   *Env
	notes ListState[apiclient.Note]
}

func NewMyNotes(env *Env) *MyNotes {
	return &MyNotes{env: env, notes: loadingList[apiclient.Note]()}
}

func (s *MyNotes) Mount(ctx context.Context) {
	s.mount(s.env.Sync, s, MyNotesKey)
	s.Refresh(ctx)
}

func (s *MyNotes) Refresh(ctx context.Context) {
	gen, ok := s.current()
	if !ok {
		return
	}
	runAll(ctx, func(ctx context.Context) {
		fetchList(ctx, s.env, &s.lifecycle, gen, &s.notes, "Failed to load notes", s.env.Chapters.ListMyNotes, nil)
	})
}

func (s *MyNotes) Notes() (out ListState[apiclient.Note]) {
	s.read(func() { out = s.notes })
	return out
}

func (s *MyNotes) Delete(ctx context.Context, note apiclient.Note) error {
	return deleteNote(ctx, s.env, note.ChapterID, note.ID)
}

// ClassroomScreen lists a classroom's subjects and manages them.
type ClassroomScreen struct {
	lifecycle
	env       *Env
	classroom apiclient.Classroom
	subjects  ListState[apiclient.Subject]
}

func NewClassroomScreen(env *Env, classroom apiclient.Classroom) *ClassroomScreen {
	return &ClassroomScreen{env: env, classroom: classroom, subjects: loadingList[apiclient.Subject]()}
}

func (s *ClassroomScreen) Mount(ctx context.Context) {
	s.mount(s.env.Sync, s, ClassroomKey(s.classroom.ID))
	s.Refresh(ctx)
}

func (s *ClassroomScreen) Refresh(ctx context.Context) {
	gen, ok := s.current()
	if !ok {
		return
	}
	list := func(ctx context.Context) ([]apiclient.Subject, error) {
		return s.env.Subjects.ListByClassroom(ctx, s.classroom.ID)
	}
	runAll(ctx, func(ctx context.Context) {
		fetchList(ctx, s.env, &s.lifecycle, gen, &s.subjects, "Failed to load subjects", list, nil)
	})
}

func (s *ClassroomScreen) Classroom() apiclient.Classroom { return s.classroom }

func (s *ClassroomScreen) Subjects() (out ListState[apiclient.Subject]) {
	s.read(func() { out = s.subjects })
	return out
}

func (s *ClassroomScreen) mutationKeys() []Key {
	return []Key{ClassroomKey(s.classroom.ID), DashboardKey}
}

func (s *ClassroomScreen) CreateSubject(ctx context.Context, name string, description *string) (*apiclient.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, s.env.reject(ErrMissingField, "Please enter a subject name")
	}
	var subject *apiclient.Subject
	err := s.env.Sync.MutateKeys(ctx, s.mutationKeys(), func(ctx context.Context) error {
		var err error
		subject, err = s.env.Subjects.Create(ctx, s.classroom.ID, name, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.env.notifySuccess("Subject created")
	return subject, nil
}

func (s *ClassroomScreen) DeleteSubject(ctx context.Context, subjectID string) error {
	err := s.env.Sync.MutateKeys(ctx, s.mutationKeys(), func(ctx context.Context) error {
		return s.env.Subjects.Delete(ctx, subjectID)
	})
	if err != nil {
		return err
	}
	s.env.invalidate(navigation.KindSubject, subjectID)
	s.env.notifySuccess("Subject deleted")
	return nil
}

// Teachers lists the teachers who share a subject. It is read on demand by
// the access dialog, so it does not go through the screen state.
func (s *ClassroomScreen) Teachers(ctx context.Context, subjectID string) ([]apiclient.TeacherAccess, error) {
	return s.env.Access.List(ctx, subjectID)
}

func (s *ClassroomScreen) AssignTeacher(ctx context.Context, subjectID, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return s.env.reject(ErrMissingField, "Please enter the teacher's email")
	}
	err := s.env.Sync.MutateKeys(ctx, s.mutationKeys(), func(ctx context.Context) error {
		_, err := s.env.Access.Assign(ctx, subjectID, email)
		return err
	})
	if err == nil {
		s.env.notifySuccess("Teacher access granted")
	}
	return err
}

func (s *ClassroomScreen) RemoveTeacher(ctx context.Context, accessID string) error {
	err := s.env.Sync.MutateKeys(ctx, s.mutationKeys(), func(ctx context.Context) error {
		return s.env.Access.Remove(ctx, accessID)
	})
	if err == nil {
		s.env.notifySuccess("Teacher access removed")
	}
	return err
}

// SubjectScreen lists a subject's chapters and manages them.
type SubjectScreen struct {
	lifecycle
	env      *Env
	subject  apiclient.Subject
	chapters ListState[apiclient.Chapter]
}

func NewSubjectScreen(env *Env, subject apiclient.Subject) *SubjectScreen {
	return &SubjectScreen{env: env, subject: subject, chapters: loadingList[apiclient.Chapter]()}
}

func (s *SubjectScreen) Mount(ctx context.Context) {
	s.mount(s.env.Sync, s, SubjectKey(s.subject.ID))
	s.Refresh(ctx)
}

func (s *SubjectScreen) Refresh(ctx context.Context) {
	gen, ok := s.current()
	if !ok {
		return
	}
	list := func(ctx context.Context) ([]apiclient.Chapter, error) {
		return s.env.Subjects.ListChapters(ctx, s.subject.ID)
	}
	runAll(ctx, func(ctx context.Context) {
		fetchList(ctx, s.env, &s.lifecycle, gen, &s.chapters, "Failed to load chapters", list, nil)
	})
}

func (s *SubjectScreen) Subject() apiclient.Subject { return s.subject }

func (s *SubjectScreen) Chapters() (out ListState[apiclient.Chapter]) {
	s.read(func() { out = s.chapters })
	return out
}

func (s *SubjectScreen) mutationKeys() []Key {
	return []Key{SubjectKey(s.subject.ID), ClassroomKey(s.subject.ClassroomID), DashboardKey}
}

func (s *SubjectScreen) CreateChapter(ctx context.Context, name string, description *string) (*apiclient.Chapter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, s.env.reject(ErrMissingField, "Please enter a chapter name")
	}
	var chapter *apiclient.Chapter
	err := s.env.Sync.MutateKeys(ctx, s.mutationKeys(), func(ctx context.Context) error {
		var err error
		chapter, err = s.env.Subjects.CreateChapter(ctx, s.subject.ID, name, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.env.notifySuccess("Chapter created")
	return chapter, nil
}

func (s *SubjectScreen) DeleteChapter(ctx context.Context, chapterID string) error {
	err := s.env.Sync.MutateKeys(ctx, s.mutationKeys(), func(ctx context.Context) error {
		return s.env.Subjects.DeleteChapter(ctx, chapterID)
	})
	if err != nil {
		return err
	}
	s.env.invalidate(navigation.KindChapter, chapterID)
	s.env.notifySuccess("Chapter deleted")
	return nil
}
