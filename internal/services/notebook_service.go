package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/SAP-F-2025/edunexus-service/internal/ai"
	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
	"github.com/SAP-F-2025/edunexus-service/internal/validator"
)

const (
	notebookTopK        = 5
	notebookExcerpt     = 500
	notebookTemperature = 0.5
	recommendationCount = 5

	rateLimitedAnswer = "I apologize, but I'm currently receiving too many requests. Please try again in 30 seconds."
)

type notebookService struct {
	repo      repositories.Repository
	access    *accessControl
	embedder  ai.Embedder
	generator ai.Generator
	logger    *slog.Logger
	validator *validator.Validator
}

func NewNotebookService(
	repo repositories.Repository,
	embedder ai.Embedder,
	generator ai.Generator,
	logger *slog.Logger,
	validator *validator.Validator,
) NotebookService {
	return &notebookService{
		repo:      repo,
		access:    newAccessControl(repo),
		embedder:  embedder,
		generator: generator,
		logger:    logger,
		validator: validator,
	}
}

type scoredEmbedding struct {
	embedding *models.NoteEmbedding
	score     float64
}

// Query answers a question from the chapter's indexed notes only.
func (s *notebookService) Query(ctx context.Context, chapterID string, req *NotebookQueryRequest, actor *models.User) (*NotebookResponse, error) {
	s.logger.Info("Querying notebook", "chapter_id", chapterID, "user_id", actor.ID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	scope, err := s.access.chapterAccess(ctx, chapterID, actor)
	if err != nil {
		return nil, err
	}
	chapterName := scope.Chapter.Name

	indexed, err := s.repo.NoteEmbedding().ListByChapter(ctx, chapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list note embeddings: %w", err)
	}
	if len(indexed) == 0 {
		return &NotebookResponse{
			Answer:      fmt.Sprintf("I don't have any notes available for %s yet. Please upload some notes first!", chapterName),
			Sources:     []NotebookSource{},
			NoteCount:   0,
			ChapterName: chapterName,
		}, nil
	}

	matches, err := s.search(ctx, req.Question, indexed)
	if err != nil {
		if errors.Is(err, ai.ErrRateLimited) {
			return &NotebookResponse{Answer: rateLimitedAnswer, Sources: []NotebookSource{}, ChapterName: chapterName}, nil
		}
		return nil, err
	}

	sources := lo.Map(matches, func(e *models.NoteEmbedding, _ int) NotebookSource {
		return NotebookSource{Title: e.Title, UploadedBy: lo.CoalesceOrEmpty(e.Uploader, "Unknown")}
	})

	answer, err := s.generator.Generate(ctx, buildNotebookPrompt(chapterName, req.Question, matches), notebookTemperature)
	switch {
	case err == nil:
	case errors.Is(err, ai.ErrRateLimited):
		answer = rateLimitedAnswer
	case errors.Is(err, ai.ErrNotConfigured):
		answer = excerptAnswer(matches)
	default:
		s.logger.Error("Notebook generation failed", "chapter_id", chapterID, "error", err)
		answer = fmt.Sprintf("I encountered an error processing your request: %v", err)
	}

	return &NotebookResponse{
		Answer:      answer,
		Sources:     sources,
		NoteCount:   len(matches),
		ChapterName: chapterName,
	}, nil
}

// search ranks indexed notes by cosine similarity to the question.
func (s *notebookService) search(ctx context.Context, question string, indexed []*models.NoteEmbedding) ([]*models.NoteEmbedding, error) {
	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	scored := make([]scoredEmbedding, 0, len(indexed))
	for _, e := range indexed {
		vec, err := e.GetVector()
		if err != nil {
			s.logger.Warn("Skipping unreadable embedding", "note_id", e.NoteID, "error", err)
			continue
		}
		scored = append(scored, scoredEmbedding{embedding: e, score: ai.CosineSimilarity(queryVec, vec)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > notebookTopK {
		scored = scored[:notebookTopK]
	}
	return lo.Map(scored, func(s scoredEmbedding, _ int) *models.NoteEmbedding { return s.embedding }), nil
}

func buildNotebookPrompt(chapterName, question string, notes []*models.NoteEmbedding) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an AI tutor helping students with %s.\n", chapterName)
	sb.WriteString("Answer the question using ONLY the information from the provided notes.\n")
	sb.WriteString("If the notes don't contain enough information, say so clearly.\n")
	sb.WriteString("Always cite which note(s) you're referencing.\n\n")
	fmt.Fprintf(&sb, "Chapter: %s\n\nRelevant Notes:\n", chapterName)
	for i, n := range notes {
		fmt.Fprintf(&sb, "\n%d. %s\n   %s...\n", i+1, n.Title, utils.Truncate(n.Content, notebookExcerpt))
	}
	fmt.Fprintf(&sb, "\nQuestion: %s", question)
	return sb.String()
}

// excerptAnswer is used when no language model is configured.
func excerptAnswer(notes []*models.NoteEmbedding) string {
	var sb strings.Builder
	sb.WriteString("Here is what the chapter notes say:\n")
	for _, n := range notes {
		fmt.Fprintf(&sb, "\n- %s: %s", n.Title, utils.Truncate(n.Content, 200))
	}
	return sb.String()
}

// Recommendations suggests videos and articles for the chapter, or for topic
// within it when given.
func (s *notebookService) Recommendations(ctx context.Context, chapterID, topic string, actor *models.User) (*RecommendationsResponse, error) {
	s.logger.Info("Getting recommendations", "chapter_id", chapterID, "topic", topic)

	scope, err := s.access.chapterAccess(ctx, chapterID, actor)
	if err != nil {
		return nil, err
	}
	resp := &RecommendationsResponse{Chapter: scope.Chapter.Name, Subject: scope.Subject.Name}
	topic = strings.TrimSpace(topic)

	text, err := s.generator.Generate(ctx, buildRecommendationPrompt(resp.Subject, resp.Chapter, topic), 0.7)
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			s.logger.Warn("Recommendation generation failed, using search links", "chapter_id", chapterID, "error", err)
		}
		resp.Recommendations = fallbackRecommendations(resp.Subject, resp.Chapter, topic)
		return resp, nil
	}

	resp.Recommendations = parseRecommendations(text)
	if len(resp.Recommendations) == 0 {
		resp.Recommendations = fallbackRecommendations(resp.Subject, resp.Chapter, topic)
	}
	return resp, nil
}

func buildRecommendationPrompt(subject, chapter, topic string) string {
	var sb strings.Builder
	sb.WriteString("Suggest educational resources for students learning about:\n")
	fmt.Fprintf(&sb, "Subject: %s\nChapter: %s\n", subject, chapter)
	if topic != "" {
		fmt.Fprintf(&sb, "Topic: %s\n", topic)
	}
	fmt.Fprintf(&sb, "\nProvide %d YouTube video and %d article recommendations.\n", recommendationCount, recommendationCount)
	sb.WriteString("Write one per line, exactly as:\n")
	sb.WriteString("video | <descriptive title> | <search terms> | <brief reason>\n")
	sb.WriteString("article | <descriptive title> | <search terms> | <brief reason>\n")
	return sb.String()
}

// parseRecommendations reads "type | title | search | why" lines and skips
// anything else the model wrote.
func parseRecommendations(text string) []Recommendation {
	var out []Recommendation
	for _, line := range strings.Split(text, "\n") {
		parts := strings.Split(strings.Trim(strings.TrimSpace(line), "-* "), "|")
		if len(parts) < 3 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		kind := strings.ToLower(parts[0])
		if kind != "video" && kind != "article" {
			continue
		}
		description := ""
		if len(parts) > 3 {
			description = parts[3]
		}
		out = append(out, Recommendation{
			ID:          fmt.Sprintf("rec-%d", len(out)+1),
			Title:       parts[1],
			Type:        kind,
			URL:         searchURL(kind, parts[2]),
			Description: description,
		})
	}
	return out
}

func fallbackRecommendations(subject, chapter, topic string) []Recommendation {
	query := strings.TrimSpace(lo.CoalesceOrEmpty(topic, chapter) + " " + subject)
	return []Recommendation{
		{
			ID:          "rec-1",
			Title:       chapter + " explained",
			Type:        "video",
			URL:         searchURL("video", query),
			Description: "Video lessons on " + query,
		},
		{
			ID:          "rec-2",
			Title:       chapter + " study guide",
			Type:        "article",
			URL:         searchURL("article", query+" tutorial"),
			Description: "Articles and tutorials on " + query,
		},
	}
}

func searchURL(kind, query string) string {
	if kind == "video" {
		return "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}
