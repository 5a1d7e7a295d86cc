package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
)

const (
	sheetClassrooms = "Classrooms"
	sheetNotes      = "Pending Notes"
	sheetQuestions  = "Pending Questions"
)

type exportService struct {
	dashboard DashboardService
	logger    *slog.Logger
}

func NewExportService(dashboard DashboardService, logger *slog.Logger) ExportService {
	return &exportService{
		dashboard: dashboard,
		logger:    logger,
	}
}

func (s *exportService) TeacherDashboard(ctx context.Context, actor *models.User) ([]byte, error) {
	s.logger.Info("Exporting teacher dashboard", "teacher_id", actor.ID)

	data, err := s.dashboard.Teacher(ctx, actor)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetClassrooms); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{sheetNotes, sheetQuestions} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	var classroomRows [][]interface{}
	for _, group := range []struct {
		access string
		items  []ClassroomResponse
	}{{"created", data.CreatedClassrooms}, {"assigned", data.AccessedClassrooms}} {
		for _, c := range group.items {
			chapters := 0
			for _, subj := range c.Subjects {
				chapters += len(subj.Chapters)
			}
			classroomRows = append(classroomRows, []interface{}{
				c.Name, c.Code, group.access, c.MemberCount, len(c.Subjects), chapters, formatTime(c.CreatedAt),
			})
		}
	}
	if err := writeSheet(f, sheetClassrooms, header,
		[]interface{}{"Name", "Code", "Access", "Members", "Subjects", "Chapters", "Created"}, classroomRows); err != nil {
		return nil, err
	}

	noteRows := make([][]interface{}, 0, len(data.PendingNotes))
	for _, n := range data.PendingNotes {
		noteRows = append(noteRows, []interface{}{
			n.Title, n.ChapterName, n.AuthorName, n.Status, lo.FromPtr(n.FileName), formatTime(n.CreatedAt),
		})
	}
	if err := writeSheet(f, sheetNotes, header,
		[]interface{}{"Title", "Chapter", "Author", "Status", "File", "Uploaded"}, noteRows); err != nil {
		return nil, err
	}

	questionRows := make([][]interface{}, 0, len(data.PendingQuestions))
	for _, q := range data.PendingQuestions {
		questionRows = append(questionRows, []interface{}{
			q.Title, q.Content, q.ChapterName, q.AuthorName, q.IsPrivate, formatTime(q.CreatedAt),
		})
	}
	if err := writeSheet(f, sheetQuestions, header,
		[]interface{}{"Title", "Question", "Chapter", "Author", "Private", "Asked"}, questionRows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, style int, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	return f.SetColWidth(sheet, "A", lastCol, 22)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}
