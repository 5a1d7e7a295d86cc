package apiclient

import (
	"context"
	"net/url"

	"github.com/samber/lo"
)

func (c *Client) Auth() *AuthAPI                   { return &AuthAPI{c} }
func (c *Client) Classrooms() *ClassroomAPI        { return &ClassroomAPI{c} }
func (c *Client) Subjects() *SubjectAPI            { return &SubjectAPI{c} }
func (c *Client) Chapters() *ChapterAPI            { return &ChapterAPI{c} }
func (c *Client) Dashboard() *DashboardAPI         { return &DashboardAPI{c} }
func (c *Client) TeacherAccess() *TeacherAccessAPI { return &TeacherAccessAPI{c} }

func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type AuthAPI struct{ c *Client }

func (a *AuthAPI) Me(ctx context.Context) (*User, error) {
	var user User
	if err := a.c.get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *AuthAPI) CreateProfile(ctx context.Context, req CreateProfileRequest) (*User, error) {
	var user User
	if err := a.c.post(ctx, "/auth/profile", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type ClassroomAPI struct{ c *Client }

func (a *ClassroomAPI) List(ctx context.Context) ([]Classroom, error) {
	return getList[Classroom](ctx, a.c, "/classrooms")
}

func (a *ClassroomAPI) Join(ctx context.Context, code string) (*Classroom, error) {
	var out Classroom
	if err := a.c.post(ctx, "/classrooms/join", map[string]string{"code": code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ClassroomAPI) Create(ctx context.Context, name string, description *string) (*Classroom, error) {
	var out Classroom
	body := map[string]interface{}{"name": name, "description": description}
	if err := a.c.post(ctx, "/classrooms", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ClassroomAPI) Delete(ctx context.Context, id string) error {
	return a.c.delete(ctx, "/classrooms/"+url.PathEscape(id))
}

type SubjectAPI struct{ c *Client }

func (a *SubjectAPI) Create(ctx context.Context, classroomID, name string, description *string) (*Subject, error) {
	var out Subject
	body := map[string]interface{}{"classroom_id": classroomID, "name": name, "description": description}
	if err := a.c.post(ctx, "/subjects", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *SubjectAPI) ListByClassroom(ctx context.Context, classroomID string) ([]Subject, error) {
	return getList[Subject](ctx, a.c, "/subjects/classroom/"+url.PathEscape(classroomID))
}

func (a *SubjectAPI) Delete(ctx context.Context, id string) error {
	return a.c.delete(ctx, "/subjects/"+url.PathEscape(id))
}

func (a *SubjectAPI) ListChapters(ctx context.Context, subjectID string) ([]Chapter, error) {
	return getList[Chapter](ctx, a.c, "/subjects/"+url.PathEscape(subjectID)+"/chapters")
}

func (a *SubjectAPI) CreateChapter(ctx context.Context, subjectID, name string, description *string) (*Chapter, error) {
	var out Chapter
	body := map[string]interface{}{"subject_id": subjectID, "name": name, "description": description}
	if err := a.c.post(ctx, "/subjects/"+url.PathEscape(subjectID)+"/chapters", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *SubjectAPI) DeleteChapter(ctx context.Context, chapterID string) error {
	return a.c.delete(ctx, "/chapters/"+url.PathEscape(chapterID))
}

// ChapterAPI covers everything scoped to one chapter: notes, questions,
// announcements and the notebook.
type ChapterAPI struct{ c *Client }

func (a *ChapterAPI) ListNotes(ctx context.Context, chapterID string) ([]Note, error) {
	return getList[Note](ctx, a.c, "/notes/chapter/"+url.PathEscape(chapterID))
}

func (a *ChapterAPI) ListMyNotes(ctx context.Context) ([]Note, error) {
	return getList[Note](ctx, a.c, "/notes/my-notes")
}

func (a *ChapterAPI) UploadNote(ctx context.Context, chapterID, title string, visibility Visibility, fileName string, data []byte) (*Note, error) {
	var out Note
	fields := map[string]string{"title": title, "visibility": string(visibility)}
	if err := a.c.upload(ctx, "/upload/chapter/"+url.PathEscape(chapterID)+"/note", fields, fileName, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ChapterAPI) DeleteNote(ctx context.Context, noteID string) error {
	return a.c.delete(ctx, "/notes/"+url.PathEscape(noteID))
}

func (a *ChapterAPI) ApproveNote(ctx context.Context, noteID string, status ApprovalStatus) (*Note, error) {
	var out Note
	if err := a.c.patch(ctx, "/notes/"+url.PathEscape(noteID)+"/approval", map[string]ApprovalStatus{"status": status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ChapterAPI) CreateQuestion(ctx context.Context, chapterID, title, content string, isPrivate bool) (*Question, error) {
	var out Question
	body := map[string]interface{}{"chapter_id": chapterID, "title": title, "content": content, "is_private": isPrivate}
	if err := a.c.post(ctx, "/questions", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ChapterAPI) ListQuestions(ctx context.Context, chapterID string) ([]Question, error) {
	return getList[Question](ctx, a.c, "/questions/chapter/"+url.PathEscape(chapterID))
}

func (a *ChapterAPI) ListCommunityQuestions(ctx context.Context, chapterID string) ([]Question, error) {
	return getList[Question](ctx, a.c, "/questions/chapter/"+url.PathEscape(chapterID)+"/community")
}

func (a *ChapterAPI) ListMyQuestions(ctx context.Context) ([]Question, error) {
	return getList[Question](ctx, a.c, "/questions/my-questions")
}

func (a *ChapterAPI) DeleteQuestion(ctx context.Context, questionID string) error {
	return a.c.delete(ctx, "/questions/"+url.PathEscape(questionID))
}

func (a *ChapterAPI) AnswerQuestion(ctx context.Context, questionID, content string) (*Question, error) {
	var out Question
	if err := a.c.post(ctx, "/questions/"+url.PathEscape(questionID)+"/answer", map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ChapterAPI) CreateAnnouncement(ctx context.Context, chapterID, title, content string) (*Announcement, error) {
	var out Announcement
	body := map[string]string{"chapter_id": chapterID, "title": title, "content": content}
	if err := a.c.post(ctx, "/community/announcements", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ChapterAPI) ListAnnouncements(ctx context.Context, chapterID string) ([]Announcement, error) {
	return getList[Announcement](ctx, a.c, "/community/chapter/"+url.PathEscape(chapterID)+"/announcements")
}

func (a *ChapterAPI) ListAllAnnouncements(ctx context.Context) ([]Announcement, error) {
	return getList[Announcement](ctx, a.c, "/community/all")
}

func (a *ChapterAPI) QueryNotebook(ctx context.Context, chapterID, question string) (*NotebookAnswer, error) {
	var out NotebookAnswer
	if err := a.c.post(ctx, "/notebook/chapter/"+url.PathEscape(chapterID)+"/query", map[string]string{"question": question}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SourceTitles lists the titles of the notes an answer drew on.
func (n *NotebookAnswer) SourceTitles() []string {
	return lo.Map(n.Sources, func(s NotebookSource, _ int) string { return s.Title })
}

func (a *ChapterAPI) Recommendations(ctx context.Context, chapterID, topic string) ([]Recommendation, error) {
	var query url.Values
	if topic != "" {
		query = url.Values{"query": {topic}}
	}
	var out struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	if err := a.c.get(ctx, "/notebook/chapter/"+url.PathEscape(chapterID)+"/recommendations", query, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

type DashboardAPI struct{ c *Client }

func (a *DashboardAPI) Teacher(ctx context.Context) (*TeacherDashboard, error) {
	var out TeacherDashboard
	if err := a.c.get(ctx, "/dashboard/teacher", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export downloads the dashboard workbook (XLSX bytes).
func (a *DashboardAPI) Export(ctx context.Context) ([]byte, error) {
	var out []byte
	if err := a.c.get(ctx, "/dashboard/teacher/export", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type TeacherAccessAPI struct{ c *Client }

func (a *TeacherAccessAPI) Assign(ctx context.Context, subjectID, teacherEmail string) (*TeacherAccess, error) {
	var out TeacherAccess
	body := map[string]string{"subject_id": subjectID, "teacher_email": teacherEmail}
	if err := a.c.post(ctx, "/teacher-access", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *TeacherAccessAPI) List(ctx context.Context, subjectID string) ([]TeacherAccess, error) {
	return getList[TeacherAccess](ctx, a.c, "/teacher-access/subject/"+url.PathEscape(subjectID))
}

func (a *TeacherAccessAPI) Remove(ctx context.Context, accessID string) error {
	return a.c.delete(ctx, "/teacher-access/"+url.PathEscape(accessID))
}
