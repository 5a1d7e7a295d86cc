package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
)

type classroomRepository struct {
	db *gorm.DB
}

func NewClassroomRepository(db *gorm.DB) repositories.ClassroomRepository {
	return &classroomRepository{db: db}
}

func (r *classroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	if err := r.db.WithContext(ctx).Create(classroom).Error; err != nil {
		return handleDBError(err, "create classroom")
	}
	return nil
}

func (r *classroomRepository) GetByID(ctx context.Context, id string) (*models.Classroom, error) {
	var classroom models.Classroom
	if err := r.db.WithContext(ctx).First(&classroom, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get classroom by id")
	}
	return &classroom, nil
}

func (r *classroomRepository) GetByCode(ctx context.Context, code string) (*models.Classroom, error) {
	var classroom models.Classroom
	if err := r.db.WithContext(ctx).First(&classroom, "code = ?", strings.ToUpper(code)).Error; err != nil {
		return nil, handleDBError(err, "get classroom by code")
	}
	return &classroom, nil
}

func (r *classroomRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Classroom{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check classroom code")
	}
	return count > 0, nil
}

// Delete relies on ON DELETE CASCADE for members, subjects and everything below.
func (r *classroomRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Classroom{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete classroom")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete classroom")
	}
	return nil
}

func (r *classroomRepository) ListByCreator(ctx context.Context, userID string) ([]*models.Classroom, error) {
	var classrooms []*models.Classroom
	if err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&classrooms).Error; err != nil {
		return nil, handleDBError(err, "list classrooms by creator")
	}
	return classrooms, nil
}

func (r *classroomRepository) ListByMember(ctx context.Context, userID string) ([]*models.Classroom, error) {
	var classrooms []*models.Classroom
	if err := r.db.WithContext(ctx).
		Table("classrooms c").
		Select("c.*").
		Joins("INNER JOIN classroom_members cm ON cm.classroom_id = c.id").
		Where("cm.user_id = ?", userID).
		Order("cm.joined_at DESC").
		Find(&classrooms).Error; err != nil {
		return nil, handleDBError(err, "list classrooms by member")
	}
	return classrooms, nil
}

func (r *classroomRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Classroom, error) {
	var classrooms []*models.Classroom
	if len(ids) == 0 {
		return classrooms, nil
	}
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&classrooms).Error; err != nil {
		return nil, handleDBError(err, "list classrooms by ids")
	}
	return classrooms, nil
}

func (r *classroomRepository) AddMember(ctx context.Context, member *models.ClassroomMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return handleDBError(err, "add classroom member")
	}
	return nil
}

func (r *classroomRepository) IsMember(ctx context.Context, classroomID, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClassroomMember{}).
		Where("classroom_id = ? AND user_id = ?", classroomID, userID).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check classroom membership")
	}
	return count > 0, nil
}

func (r *classroomRepository) CountMembers(ctx context.Context, classroomIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(classroomIDs))
	if len(classroomIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ClassroomID string
		Total       int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ClassroomMember{}).
		Select("classroom_id, COUNT(*) AS total").
		Where("classroom_id IN ?", classroomIDs).
		Group("classroom_id").
		Scan(&rows).Error; err != nil {
		return nil, handleDBError(err, "count classroom members")
	}

	for _, row := range rows {
		counts[row.ClassroomID] = row.Total
	}
	return counts, nil
}

// ===== SUBJECTS =====

type subjectRepository struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) repositories.SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if err := r.db.WithContext(ctx).Create(subject).Error; err != nil {
		return handleDBError(err, "create subject")
	}
	return nil
}

func (r *subjectRepository) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).First(&subject, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get subject by id")
	}
	return &subject, nil
}

func (r *subjectRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Subject{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete subject")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete subject")
	}
	return nil
}

func (r *subjectRepository) ListByClassroom(ctx context.Context, classroomID string) ([]*models.Subject, error) {
	return r.ListByClassrooms(ctx, []string{classroomID})
}

func (r *subjectRepository) ListByClassrooms(ctx context.Context, classroomIDs []string) ([]*models.Subject, error) {
	var subjects []*models.Subject
	if len(classroomIDs) == 0 {
		return subjects, nil
	}
	if err := r.db.WithContext(ctx).
		Where("classroom_id IN ?", classroomIDs).
		Order("created_at ASC").
		Find(&subjects).Error; err != nil {
		return nil, handleDBError(err, "list subjects by classrooms")
	}
	return subjects, nil
}

func (r *subjectRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Subject, error) {
	var subjects []*models.Subject
	if len(ids) == 0 {
		return subjects, nil
	}
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&subjects).Error; err != nil {
		return nil, handleDBError(err, "list subjects by ids")
	}
	return subjects, nil
}

// ===== CHAPTERS =====

type chapterRepository struct {
	db *gorm.DB
}

func NewChapterRepository(db *gorm.DB) repositories.ChapterRepository {
	return &chapterRepository{db: db}
}

func (r *chapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	if err := r.db.WithContext(ctx).Create(chapter).Error; err != nil {
		return handleDBError(err, "create chapter")
	}
	return nil
}

func (r *chapterRepository) GetByID(ctx context.Context, id string) (*models.Chapter, error) {
	var chapter models.Chapter
	if err := r.db.WithContext(ctx).First(&chapter, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get chapter by id")
	}
	return &chapter, nil
}

func (r *chapterRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Chapter{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete chapter")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete chapter")
	}
	return nil
}

func (r *chapterRepository) ListBySubject(ctx context.Context, subjectID string) ([]*models.Chapter, error) {
	return r.ListBySubjects(ctx, []string{subjectID})
}

func (r *chapterRepository) ListBySubjects(ctx context.Context, subjectIDs []string) ([]*models.Chapter, error) {
	var chapters []*models.Chapter
	if len(subjectIDs) == 0 {
		return chapters, nil
	}
	if err := r.db.WithContext(ctx).
		Where("subject_id IN ?", subjectIDs).
		Order("created_at ASC").
		Find(&chapters).Error; err != nil {
		return nil, handleDBError(err, "list chapters by subjects")
	}
	return chapters, nil
}

// ===== TEACHER ACCESS =====

type teacherAccessRepository struct {
	db *gorm.DB
}

func NewTeacherAccessRepository(db *gorm.DB) repositories.TeacherAccessRepository {
	return &teacherAccessRepository{db: db}
}

func (r *teacherAccessRepository) Create(ctx context.Context, access *models.TeacherAccess) error {
	if err := r.db.WithContext(ctx).Create(access).Error; err != nil {
		return handleDBError(err, "create teacher access")
	}
	return nil
}

func (r *teacherAccessRepository) GetByID(ctx context.Context, id string) (*models.TeacherAccess, error) {
	var access models.TeacherAccess
	if err := r.db.WithContext(ctx).First(&access, "id = ?", id).Error; err != nil {
		return nil, handleDBError(err, "get teacher access by id")
	}
	return &access, nil
}

func (r *teacherAccessRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.TeacherAccess{}, "id = ?", id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete teacher access")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete teacher access")
	}
	return nil
}

func (r *teacherAccessRepository) Exists(ctx context.Context, subjectID, teacherID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TeacherAccess{}).
		Where("subject_id = ? AND teacher_id = ?", subjectID, teacherID).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check teacher access")
	}
	return count > 0, nil
}

func (r *teacherAccessRepository) ListBySubject(ctx context.Context, subjectID string) ([]*models.TeacherAccess, error) {
	var grants []*models.TeacherAccess
	if err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("created_at ASC").
		Find(&grants).Error; err != nil {
		return nil, handleDBError(err, "list teacher access by subject")
	}
	return grants, nil
}

func (r *teacherAccessRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*models.TeacherAccess, error) {
	var grants []*models.TeacherAccess
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at ASC").
		Find(&grants).Error; err != nil {
		return nil, handleDBError(err, "list teacher access by teacher")
	}
	return grants, nil
}

func (r *teacherAccessRepository) SubjectsWithTeachers(ctx context.Context, subjectIDs []string) ([]string, error) {
	var ids []string
	if len(subjectIDs) == 0 {
		return ids, nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.TeacherAccess{}).
		Distinct("subject_id").
		Where("subject_id IN ?", subjectIDs).
		Pluck("subject_id", &ids).Error; err != nil {
		return nil, handleDBError(err, "list subjects with teachers")
	}
	return ids, nil
}
