package screens

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/SAP-F-2025/edunexus-service/pkg/apiclient"
	"github.com/SAP-F-2025/edunexus-service/pkg/session"
)

func isApproved(n apiclient.Note) bool {
	return n.ApprovalStatus == apiclient.StatusApproved
}

// ChapterNotes is the public note list of a chapter: approved notes only.
type ChapterNotes struct {
	lifecycle
	env       *Env
	chapterID string
	notes     ListState[apiclient.Note]
}

func NewChapterNotes(env *Env, chapterID string) *ChapterNotes {
	return &ChapterNotes{env: env, chapterID: chapterID, notes: loadingList[apiclient.Note]()}
}

func (s *ChapterNotes) Mount(ctx context.Context) {
	s.mount(s.env.Sync, s, ChapterKey(s.chapterID))
	s.Refresh(ctx)
}

func (s *ChapterNotes) Refresh(ctx context.Context) {
	gen, ok := s.current()
	if !ok {
		return
	}
	runAll(ctx, func(ctx context.Context) {
		fetchList(ctx, s.env, &s.lifecycle, gen, &s.notes, "Failed to load notes", s.listNotes, isApproved)
	})
}

func (s *ChapterNotes) listNotes(ctx context.Context) ([]apiclient.Note, error) {
	return s.env.Chapters.ListNotes(ctx, s.chapterID)
}

func (s *ChapterNotes) Notes() (out ListState[apiclient.Note]) {
	s.read(func() { out = s.notes })
	return out
}

// UploadInput is the upload form. Data is nil when no file was picked.
type UploadInput struct {
	Title      string
	Body       string
	FileName   string
	Data       []byte
	Visibility apiclient.Visibility
}

const uploadHint = "Please provide a title or select a file."

// UploadPanel uploads notes to a chapter and lists the current user's own
// uploads there, whatever their approval status.
type UploadPanel struct {
	lifecycle
	env       *Env
	chapterID string
	mine      ListState[apiclient.Note]
}

func NewUploadPanel(env *Env, chapterID string) *UploadPanel {
	return &UploadPanel{env: env, chapterID: chapterID, mine: loadingList[apiclient.Note]()}
}

func (s *UploadPanel) Mount(ctx context.Context) {
	s.mount(s.env.Sync, s, ChapterKey(s.chapterID), MyNotesKey)
	s.Refresh(ctx)
}

func (s *UploadPanel) Refresh(ctx context.Context) {
	gen, ok := s.current()
	if !ok {
		return
	}
	user := s.env.user()
	uid := ""
	if user != nil {
		uid = user.ID
	}
	mine := func(n apiclient.Note) bool {
		return n.ChapterID == s.chapterID && n.UploadedBy == uid
	}

	list := s.env.Chapters.ListMyNotes
	if user.IsTeacher() {
		list = func(ctx context.Context) ([]apiclient.Note, error) {
			return s.env.Chapters.ListNotes(ctx, s.chapterID)
		}
	}
	runAll(ctx, func(ctx context.Context) {
		fetchList(ctx, s.env, &s.lifecycle, gen, &s.mine, "Failed to load your notes", list, mine)
	})
}

func (s *UploadPanel) MyUploads() (out ListState[apiclient.Note]) {
	s.read(func() { out = s.mine })
	return out
}

// Upload validates the form and sends it. Without a file, the body is sent
// as "<title>.txt"; without a title, the file name is the title. Teachers
// always publish.
func (s *UploadPanel) Upload(ctx context.Context, in UploadInput) (*apiclient.Note, error) {
	title := strings.TrimSpace(in.Title)
	hasFile := in.Data != nil || in.FileName != ""
	if title == "" && !hasFile {
		return nil, s.env.reject(ErrEmptyUpload, uploadHint)
	}
	if hasFile && in.FileName == "" {
		return nil, s.env.reject(ErrMissingField, uploadHint)
	}

	fileName, data := in.FileName, in.Data
	if !hasFile {
		fileName = title + ".txt"
		data = []byte(in.Body)
	}
	if title == "" {
		title = fileName
	}

	visibility := in.Visibility
	success := "Note uploaded successfully!"
	if visibility == "" {
		visibility = apiclient.VisibilityPublic
	}
	if s.env.user().IsTeacher() {
		visibility = apiclient.VisibilityPublic
		success = "Note published successfully!"
	}

	var note *apiclient.Note
	keys := []Key{ChapterKey(s.chapterID), MyNotesKey, DashboardKey}
	err := s.env.Sync.MutateKeys(ctx, keys, func(ctx context.Context) error {
		var err error
		note, err = s.env.Chapters.UploadNote(ctx, s.chapterID, title, visibility, fileName, data)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.env.notifySuccess(success)
	return note, nil
}

func (s *UploadPanel) DeleteNote(ctx context.Context, noteID string) error {
	return deleteNote(ctx, s.env, s.chapterID, noteID)
}

func deleteNote(ctx context.Context, env *Env, chapterID, noteID string) error {
	keys := []Key{MyNotesKey, DashboardKey}
	if chapterID != "" {
		keys = append(keys, ChapterKey(chapterID))
	}
	err := env.Sync.MutateKeys(ctx, keys, func(ctx context.Context) error {
		return env.Chapters.DeleteNote(ctx, noteID)
	})
	if err == nil {
		env.notifySuccess("Note deleted")
	}
	return err
}

// AskPanel shows answered public questions of the chapter and the user's
// own questions in it. Teachers also get every question of the chapter,
// private and unanswered ones included.
type AskPanel struct {
	lifecycle
	env       *Env
	chapterID string
	community ListState[apiclient.Question]
	mine      ListState[apiclient.Question]
	all       ListState[apiclient.Question]
}

func NewAskPanel(env *Env, chapterID string) *AskPanel {
	return &AskPanel{
		env:       env,
		chapterID: chapterID,
		community: loadingList[apiclient.Question](),
		mine:      loadingList[apiclient.Question](),
		all:       loadingList[apiclient.Question](),
	}
}

func (s *AskPanel) Mount(ctx context.Context) {
	s.mount(s.env.Sync, s, ChapterKey(s.chapterID))
	s.Refresh(ctx)
}

func (s *AskPanel) Refresh(ctx context.Context) {
	gen, ok := s.current()
	if !ok {
		return
	}
	community := func(ctx context.Context) ([]apiclient.Question, error) {
		return s.env.Chapters.ListCommunityQuestions(ctx, s.chapterID)
	}
	visible := func(q apiclient.Question) bool { return !q.IsPrivate && q.Answered() }
	inChapter := func(q apiclient.Question) bool { return q.ChapterID == s.chapterID }

	fetches := []func(context.Context){
		func(ctx context.Context) {
			fetchList(ctx, s.env, &s.lifecycle, gen, &s.community, "Failed to load questions", community, visible)
		},
		func(ctx context.Context) {
			fetchList(ctx, s.env, &s.lifecycle, gen, &s.mine, "Failed to load questions", s.env.Chapters.ListMyQuestions, inChapter)
		},
	}
	if s.env.user().IsTeacher() {
		all := func(ctx context.Context) ([]apiclient.Question, error) {
			return s.env.Chapters.ListQuestions(ctx, s.chapterID)
		}
		fetches = append(fetches, func(ctx context.Context) {
			fetchList(ctx, s.env, &s.lifecycle, gen, &s.all, "Failed to load questions", all, nil)
		})
	} else {
		s.apply(gen, func() { s.all = listResult[apiclient.Question](nil, nil) })
	}
	runAll(ctx, fetches...)
}

func (s *AskPanel) Community() (out ListState[apiclient.Question]) {
	s.read(func() { out = s.community })
	return out
}

func (s *AskPanel) Mine() (out ListState[apiclient.Question]) {
	s.read(func() { out = s.mine })
	return out
}

// All is the teacher's view of the chapter's questions. It stays empty for
// students.
func (s *AskPanel) All() (out ListState[apiclient.Question]) {
	s.read(func() { out = s.all })
	return out
}

// Search narrows a question list by title or content, case-insensitively.
func Search(questions []apiclient.Question, query string) []apiclient.Question {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return questions
	}
	return lo.Filter(questions, func(q apiclient.Question, _ int) bool {
		return strings.Contains(strings.ToLower(q.Title), query) ||
			strings.Contains(strings.ToLower(q.Content), query)
	})
}

func (s *AskPanel) Ask(ctx context.Context, title, content string, private bool) (*apiclient.Question, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, s.env.reject(ErrMissingField, "Please fill in both the title and the question")
	}

	var question *apiclient.Question
	keys := []Key{ChapterKey(s.chapterID), DashboardKey}
	err := s.env.Sync.MutateKeys(ctx, keys, func(ctx context.Context) error {
		var err error
		question, err = s.env.Chapters.CreateQuestion(ctx, s.chapterID, title, content, private)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.env.notifySuccess("Question submitted successfully!")
	return question, nil
}

// Answer lets a teacher reply from the chapter view.
func (s *AskPanel) Answer(ctx context.Context, questionID, answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return s.env.reject(ErrMissingField, "Please write an answer")
	}
	keys := []Key{ChapterKey(s.chapterID), DashboardKey}
	err := s.env.Sync.MutateKeys(ctx, keys, func(ctx context.Context) error {
		_, err := s.env.Chapters.AnswerQuestion(ctx, questionID, answer)
		return err
	})
	if err == nil {
		s.env.notifySuccess("Question answered successfully")
	}
	return err
}

func (s *AskPanel) Delete(ctx context.Context, questionID string) error {
	keys := []Key{ChapterKey(s.chapterID), DashboardKey}
	err := s.env.Sync.MutateKeys(ctx, keys, func(ctx context.Context) error {
		return s.env.Chapters.DeleteQuestion(ctx, questionID)
	})
	if err == nil {
		s.env.notifySuccess("Question deleted")
	}
	return err
}

type Message struct {
	FromUser bool
	Content  string
	Sources  []apiclient.NotebookSource
}

// NotebookPanel is the chapter's AI notebook: the notes it draws on, a
// conversation, and study recommendations.
type NotebookPanel struct {
	lifecycle
	env             *Env
	chapterID       string
	sources         ListState[apiclient.Note]
	recommendations ListState[apiclient.Recommendation]
	conversation    []Message
}

func NewNotebookPanel(env *Env, chapterID string) *NotebookPanel {
	return &NotebookPanel{
		env:             env,
		chapterID:       chapterID,
		sources:         loadingList[apiclient.Note](),
		recommendations: loadingList[apiclient.Recommendation](),
	}
}

func (s *NotebookPanel) Mount(ctx context.Context) {
	s.mount(s.env.Sync, s, ChapterKey(s.chapterID))
	s.Refresh(ctx)
}

func (s *NotebookPanel) Refresh(ctx context.Context) {
	gen, ok := s.current()
	if !ok {
		return
	}
	notes := func(ctx context.Context) ([]apiclient.Note, error) {
		return s.env.Chapters.ListNotes(ctx, s.chapterID)
	}
	runAll(ctx,
		func(ctx context.Context) {
			fetchList(ctx, s.env, &s.lifecycle, gen, &s.sources, "Failed to load notes", notes, isApproved)
		},
		func(ctx context.Context) { s.loadRecommendations(ctx, gen, "") },
	)
}

// Recommend reloads recommendations for an optional topic.
func (s *NotebookPanel) Recommend(ctx context.Context, topic string) {
	gen, ok := s.current()
	if !ok {
		return
	}
	s.loadRecommendations(ctx, gen, strings.TrimSpace(topic))
}

func (s *NotebookPanel) loadRecommendations(ctx context.Context, gen uint64, topic string) {
	call := func(ctx context.Context) ([]apiclient.Recommendation, error) {
		return s.env.Chapters.Recommendations(ctx, s.chapterID, topic)
	}
	fetchList(ctx, s.env, &s.lifecycle, gen, &s.recommendations, "Failed to load recommendations", call, nil)
}

func (s *NotebookPanel) Sources() (out ListState[apiclient.Note]) {
	s.read(func() { out = s.sources })
	return out
}

func (s *NotebookPanel) Recommendations() (out ListState[apiclient.Recommendation]) {
	s.read(func() { out = s.recommendations })
	return out
}

func (s *NotebookPanel) Conversation() (out []Message) {
	s.read(func() { out = append([]Message(nil), s.conversation...) })
	return out
}

// Ask sends a question to the notebook and records both sides of the
// exchange.
func (s *NotebookPanel) Ask(ctx context.Context, question string) (*apiclient.NotebookAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, s.env.reject(ErrMissingField, "Please enter a question")
	}
	gen, ok := s.current()
	if !ok {
		return nil, ErrNotMounted
	}
	s.apply(gen, func() {
		s.conversation = append(s.conversation, Message{FromUser: true, Content: question})
	})

	answer, err := s.env.Chapters.QueryNotebook(ctx, s.chapterID, question)
	if err != nil {
		s.env.Logger.WarnContext(ctx, "Notebook query failed", "chapter_id", s.chapterID, "error", err)
		s.env.Notifier.Notify(session.LevelError, "Failed to get AI response")
		return nil, err
	}
	s.apply(gen, func() {
		s.conversation = append(s.conversation, Message{Content: answer.Answer, Sources: answer.Sources})
	})
	return answer, nil
}
