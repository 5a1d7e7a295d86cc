package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/edunexus-service/internal/ai"
	"github.com/SAP-F-2025/edunexus-service/internal/document"
	"github.com/SAP-F-2025/edunexus-service/internal/events"
	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
)

// NoteIndexer keeps the notebook embeddings in step with note events. Only
// approved public notes are indexed.
type NoteIndexer struct {
	repo     repositories.Repository
	embedder ai.Embedder
	logger   *slog.Logger
}

func NewNoteIndexer(repo repositories.Repository, embedder ai.Embedder, logger *slog.Logger) *NoteIndexer {
	return &NoteIndexer{
		repo:     repo,
		embedder: embedder,
		logger:   logger,
	}
}

// Register subscribes the indexer to every note topic.
func (ix *NoteIndexer) Register(consumer *events.Consumer) {
	for _, topic := range []string{events.TopicNoteApproved, events.TopicNoteRejected, events.TopicNoteDeleted} {
		consumer.Handle(topic, ix.HandleEvent)
	}
}

// HandleEvent re-reads the note instead of trusting the payload, so replayed
// or reordered events converge on the current state.
func (ix *NoteIndexer) HandleEvent(ctx context.Context, event events.Event) error {
	var data events.NoteEvent
	if err := event.DecodeData(&data); err != nil {
		return err
	}
	ix.logger.Info("Indexing note", "event_type", event.Type, "note_id", data.NoteID)

	if event.Type == events.TopicNoteDeleted {
		return ix.remove(ctx, data.NoteID)
	}

	note, err := ix.repo.Note().GetByID(ctx, data.NoteID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ix.remove(ctx, data.NoteID)
		}
		return fmt.Errorf("failed to get note: %w", err)
	}
	if !note.IsSearchable() {
		return ix.remove(ctx, note.ID)
	}
	return ix.Index(ctx, note)
}

// Index embeds the note and stores the vector.
func (ix *NoteIndexer) Index(ctx context.Context, note *models.Note) error {
	vector, err := ix.embed(ctx, note.Title+"\n"+note.Content)
	if err != nil {
		return fmt.Errorf("failed to embed note %s: %w", note.ID, err)
	}

	uploader := ""
	if user, err := ix.repo.User().GetByID(ctx, note.UploadedBy); err == nil {
		uploader = user.Name
	}

	embedding := &models.NoteEmbedding{
		NoteID:    note.ID,
		ChapterID: note.ChapterID,
		Title:     note.Title,
		Content:   note.Content,
		Uploader:  uploader,
	}
	if err := embedding.SetVector(vector); err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}
	if err := ix.repo.NoteEmbedding().Upsert(ctx, embedding); err != nil {
		if repositories.IsNotFoundError(err) {
			ix.logger.Info("Note vanished before indexing", "note_id", note.ID)
			return nil
		}
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	ix.logger.Info("Note indexed", "note_id", note.ID, "chapter_id", note.ChapterID)
	return nil
}

// embed averages the vectors of each chunk of text.
func (ix *NoteIndexer) embed(ctx context.Context, text string) ([]float32, error) {
	chunks := document.ChunkText(text, document.DefaultChunkSize)
	if len(chunks) == 0 {
		chunks = []string{text}
	}

	var sum []float32
	for _, chunk := range chunks {
		vec, err := ix.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, err
		}
		if sum == nil {
			sum = make([]float32, len(vec))
		}
		if len(vec) != len(sum) {
			return nil, fmt.Errorf("embedding size changed from %d to %d", len(sum), len(vec))
		}
		for i, v := range vec {
			sum[i] += v
		}
	}
	for i := range sum {
		sum[i] /= float32(len(chunks))
	}
	return sum, nil
}

func (ix *NoteIndexer) remove(ctx context.Context, noteID string) error {
	if err := ix.repo.NoteEmbedding().Delete(ctx, noteID); err != nil && !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}
	return nil
}
