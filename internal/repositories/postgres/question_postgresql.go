package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
)

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) repositories.QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	if err := r.db.WithContext(ctx).Create(question).Error; err != nil {
		return handleDBError(err, "create question")
	}
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get question by id")
	}
	return &question, nil
}

func (r *questionRepository) Update(ctx context.Context, question *models.Question) error {
	if err := r.db.WithContext(ctx).Omit("Author").Save(question).Error; err != nil {
		return handleDBError(err, "update question")
	}
	return nil
}

func (r *questionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Question{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete question")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete question")
	}
	return nil
}

func (r *questionRepository) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, error) {
	var questions []*models.Question

	query := r.db.WithContext(ctx).Model(&models.Question{})
	if filters.ChapterID != nil {
		query = query.Where("chapter_id = ?", *filters.ChapterID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.IsPrivate != nil {
		query = query.Where("is_private = ?", *filters.IsPrivate)
	}
	if filters.IsAnswered != nil {
		if *filters.IsAnswered {
			query = query.Where("answer IS NOT NULL AND answer <> ''")
		} else {
			query = query.Where("answer IS NULL OR answer = ''")
		}
	}
	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&questions).Error; err != nil {
		return nil, handleDBError(err, "list questions")
	}
	return questions, nil
}

// ===== ANNOUNCEMENTS =====

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) repositories.AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if err := r.db.WithContext(ctx).Create(announcement).Error; err != nil {
		return handleDBError(err, "create announcement")
	}
	return nil
}

func (r *announcementRepository) ListByChapters(ctx context.Context, chapterIDs []string) ([]*models.Announcement, error) {
	var announcements []*models.Announcement
	if len(chapterIDs) == 0 {
		return announcements, nil
	}
	if err := r.db.WithContext(ctx).
		Where("chapter_id IN ?", chapterIDs).
		Order("created_at DESC").
		Find(&announcements).Error; err != nil {
		return nil, handleDBError(err, "list announcements")
	}
	return announcements, nil
}
