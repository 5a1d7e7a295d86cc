package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
)

type noteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) repositories.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return handleDBError(err, "create note")
	}
	return nil
}

func (r *noteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := r.db.WithContext(ctx).First(&note, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get note by id")
	}
	return &note, nil
}

func (r *noteRepository) Update(ctx context.Context, note *models.Note) error {
	if err := r.db.WithContext(ctx).Omit("Uploader").Save(note).Error; err != nil {
		return handleDBError(err, "update note")
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Note{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete note")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete note")
	}
	return nil
}

func (r *noteRepository) List(ctx context.Context, filters repositories.NoteFilters) ([]*models.Note, error) {
	var notes []*models.Note

	query := r.db.WithContext(ctx).Model(&models.Note{})
	query = r.applyNoteFilters(query, filters)
	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&notes).Error; err != nil {
		return nil, handleDBError(err, "list notes")
	}
	return notes, nil
}

func (r *noteRepository) CountByChapters(ctx context.Context, chapterIDs []string, status models.ApprovalStatus) (map[string]int64, error) {
	counts := make(map[string]int64, len(chapterIDs))
	if len(chapterIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ChapterID string
		Total     int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Note{}).
		Select("chapter_id, COUNT(*) AS total").
		Where("chapter_id IN ? AND approval_status = ?", chapterIDs, status).
		Group("chapter_id").
		Scan(&rows).Error; err != nil {
		return nil, handleDBError(err, "count notes by chapters")
	}

	for _, row := range rows {
		counts[row.ChapterID] = row.Total
	}
	return counts, nil
}

func (r *noteRepository) applyNoteFilters(query *gorm.DB, filters repositories.NoteFilters) *gorm.DB {
	if filters.ChapterID != nil {
		query = query.Where("chapter_id = ?", *filters.ChapterID)
	}
	if len(filters.ChapterIDs) > 0 {
		query = query.Where("chapter_id IN ?", filters.ChapterIDs)
	}
	if filters.UploadedBy != nil {
		query = query.Where("uploaded_by = ?", *filters.UploadedBy)
	}
	if filters.Status != nil {
		query = query.Where("approval_status = ?", *filters.Status)
	}
	if filters.Visibility != nil {
		query = query.Where("visibility = ?", *filters.Visibility)
	}
	return query
}

// ===== EMBEDDINGS =====

type noteEmbeddingRepository struct {
	db *gorm.DB
}

func NewNoteEmbeddingRepository(db *gorm.DB) repositories.NoteEmbeddingRepository {
	return &noteEmbeddingRepository{db: db}
}

func (r *noteEmbeddingRepository) Upsert(ctx context.Context, embedding *models.NoteEmbedding) error {
	if err := r.db.WithContext(ctx).
		Omit("Note").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "note_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"chapter_id", "title", "content", "uploader", "vector", "updated_at"}),
		}).
		Create(embedding).Error; err != nil {
		return handleDBError(err, "upsert note embedding")
	}
	return nil
}

func (r *noteEmbeddingRepository) Delete(ctx context.Context, noteID string) error {
	if err := r.db.WithContext(ctx).Delete(&models.NoteEmbedding{}, "note_id = ?", noteID).Error; err != nil {
		return handleDBError(err, "delete note embedding")
	}
	return nil
}

func (r *noteEmbeddingRepository) ListByChapter(ctx context.Context, chapterID string) ([]*models.NoteEmbedding, error) {
	var embeddings []*models.NoteEmbedding
	if err := r.db.WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Find(&embeddings).Error; err != nil {
		return nil, handleDBError(err, "list note embeddings")
	}
	return embeddings, nil
}
