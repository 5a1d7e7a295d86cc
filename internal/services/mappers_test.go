package services

import (
	"errors"
	"testing"

	"github.com/jinzhu/copier"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
)

func TestMappers_CopyErrors(t *testing.T) {
	users := userDirectory{}
	tests := []struct {
		name string
		run  func() error
	}{
		{name: "user", run: func() error { _, err := toUserResponse(nil); return err }},
		{name: "chapter", run: func() error { _, err := toChapterResponse(nil, 0); return err }},
		{name: "subject", run: func() error { _, err := toSubjectResponse(nil); return err }},
		{name: "classroom", run: func() error { _, err := toClassroomResponse(nil); return err }},
		{name: "note", run: func() error { _, err := toNoteResponse(nil, users); return err }},
		{name: "question", run: func() error { _, err := toQuestionResponse(nil, users); return err }},
		{name: "teacher access", run: func() error { _, err := toTeacherAccessResponse(nil, users); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, copier.ErrInvalidCopyFrom) {
				t.Errorf("error = %v, want ErrInvalidCopyFrom", err)
			}
		})
	}
}

func TestMapAll(t *testing.T) {
	chapters := []*models.Chapter{{ID: "c1", Name: "Sorting"}, nil, {ID: "c3"}}

	_, err := mapAll(chapters, func(c *models.Chapter) (ChapterResponse, error) {
		return toChapterResponse(c, 1)
	})
	if !errors.Is(err, copier.ErrInvalidCopyFrom) {
		t.Fatalf("mapAll() error = %v, want the copy error", err)
	}

	got, err := mapAll(chapters[:1], func(c *models.Chapter) (ChapterResponse, error) {
		return toChapterResponse(c, 4)
	})
	if err != nil {
		t.Fatalf("mapAll() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "c1" || got[0].NoteCount != 4 {
		t.Errorf("mapAll() = %+v", got)
	}

	empty, err := mapAll([]*models.Chapter{}, func(c *models.Chapter) (ChapterResponse, error) {
		return toChapterResponse(c, 0)
	})
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("mapAll(empty) = %#v, %v; want non-nil empty slice", empty, err)
	}
}
