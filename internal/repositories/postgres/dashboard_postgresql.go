package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

// teacherScope selects subjects the teacher was granted, plus subjects of
// classrooms they created that have no granted teacher at all.
const teacherScope = `(
	EXISTS (SELECT 1 FROM teacher_access ta WHERE ta.subject_id = s.id AND ta.teacher_id = @teacher)
	OR (c.created_by = @teacher AND NOT EXISTS (SELECT 1 FROM teacher_access ta2 WHERE ta2.subject_id = s.id))
)`

// ScopeRow is exported so gorm maps its fields when embedded in a scan row.
type ScopeRow struct {
	ChapterName        string
	SubjectID          string
	ClassroomID        string
	ClassroomCreatedBy string
	AuthorName         string
}

func (s ScopeRow) toScope(chapterID string) repositories.PendingItemScope {
	return repositories.PendingItemScope{
		ChapterID:          chapterID,
		ChapterName:        s.ChapterName,
		SubjectID:          s.SubjectID,
		ClassroomID:        s.ClassroomID,
		ClassroomCreatedBy: s.ClassroomCreatedBy,
		AuthorName:         s.AuthorName,
	}
}

const scopeSelect = "ch.name AS chapter_name, s.id AS subject_id, c.id AS classroom_id, c.created_by AS classroom_created_by, COALESCE(u.name, '') AS author_name"

func (r *dashboardRepository) PendingNotes(ctx context.Context, teacherID string) ([]repositories.PendingNoteRow, error) {
	var rows []struct {
		models.Note
		ScopeRow
	}

	if err := r.db.WithContext(ctx).
		Table("notes n").
		Select("n.*, "+scopeSelect).
		Joins("INNER JOIN chapters ch ON ch.id = n.chapter_id").
		Joins("INNER JOIN subjects s ON s.id = ch.subject_id").
		Joins("INNER JOIN classrooms c ON c.id = s.classroom_id").
		Joins("LEFT JOIN users u ON u.id = n.uploaded_by").
		Where("n.approval_status = ? AND n.visibility = ?", models.ApprovalPending, models.VisibilityPublic).
		Where(teacherScope, map[string]interface{}{"teacher": teacherID}).
		Order("n.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, handleDBError(err, "list pending notes")
	}

	result := make([]repositories.PendingNoteRow, len(rows))
	for i, row := range rows {
		result[i] = repositories.PendingNoteRow{
			Note:  row.Note,
			Scope: row.ScopeRow.toScope(row.Note.ChapterID),
		}
	}
	return result, nil
}

func (r *dashboardRepository) UnansweredQuestions(ctx context.Context, teacherID string) ([]repositories.PendingQuestionRow, error) {
	var rows []struct {
		models.Question
		ScopeRow
	}

	if err := r.db.WithContext(ctx).
		Table("questions q").
		Select("q.*, "+scopeSelect).
		Joins("INNER JOIN chapters ch ON ch.id = q.chapter_id").
		Joins("INNER JOIN subjects s ON s.id = ch.subject_id").
		Joins("INNER JOIN classrooms c ON c.id = s.classroom_id").
		Joins("LEFT JOIN users u ON u.id = q.user_id").
		Where("q.answer IS NULL OR q.answer = ''").
		Where(teacherScope, map[string]interface{}{"teacher": teacherID}).
		Order("q.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, handleDBError(err, "list unanswered questions")
	}

	result := make([]repositories.PendingQuestionRow, len(rows))
	for i, row := range rows {
		result[i] = repositories.PendingQuestionRow{
			Question: row.Question,
			Scope:    row.ScopeRow.toScope(row.Question.ChapterID),
		}
	}
	return result, nil
}
