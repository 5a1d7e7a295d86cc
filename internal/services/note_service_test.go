package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SAP-F-2025/edunexus-service/internal/events"
	"github.com/SAP-F-2025/edunexus-service/internal/models"
)

func TestNoteService_UploadStatus(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name        string
		actor       *models.User
		visibility  models.NoteVisibility
		wantStatus  models.ApprovalStatus
		wantPublish bool
	}{
		{name: "student public waits", actor: env.student, visibility: models.VisibilityPublic, wantStatus: models.ApprovalPending},
		{name: "student private is approved", actor: env.student, visibility: models.VisibilityPrivate, wantStatus: models.ApprovalApproved},
		{name: "teacher public is approved", actor: env.owner, visibility: models.VisibilityPublic, wantStatus: models.ApprovalApproved, wantPublish: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.publisher.ClearEvents()
			note := env.uploadText(t, tt.actor, tt.name, tt.visibility, "Bubble sort swaps neighbours.")

			if note.ApprovalStatus != tt.wantStatus {
				t.Errorf("status = %s, want %s", note.ApprovalStatus, tt.wantStatus)
			}
			if note.UploaderName != tt.actor.Name {
				t.Errorf("UploaderName = %q", note.UploaderName)
			}
			if note.FileURL == nil || !strings.HasPrefix(*note.FileURL, "/files/"+env.chapter.ID+"/") {
				t.Errorf("FileURL = %v", note.FileURL)
			}
			if tt.actor.IsTeacher() && (note.ApprovedBy == nil || *note.ApprovedBy != tt.actor.ID) {
				t.Errorf("ApprovedBy = %v, want uploader", note.ApprovedBy)
			}

			published := len(env.publisher.GetPublishedTopics()) == 1
			if published != tt.wantPublish {
				t.Errorf("published = %v, want %v", published, tt.wantPublish)
			}
		})
	}
}

func TestNoteService_UploadRejects(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		actor   *models.User
		req     *UploadNoteRequest
		wantErr func(error) bool
	}{
		{
			name:    "unsupported extension",
			actor:   env.student,
			req:     &UploadNoteRequest{Title: "Slides", Visibility: models.VisibilityPublic, FileName: "slides.pptx", Data: []byte("x")},
			wantErr: func(err error) bool { return errors.Is(err, ErrUnsupportedFileType) },
		},
		{
			name:    "empty text file",
			actor:   env.student,
			req:     &UploadNoteRequest{Title: "Blank", Visibility: models.VisibilityPublic, FileName: "blank.txt", Data: []byte("   ")},
			wantErr: func(err error) bool { return errors.Is(err, ErrDocumentProcessing) },
		},
		{
			name:  "missing title",
			actor: env.student,
			req:   &UploadNoteRequest{Title: " ", Visibility: models.VisibilityPublic, FileName: "a.txt", Data: []byte("text")},
			wantErr: func(err error) bool {
				var verrs ValidationErrors
				return errors.As(err, &verrs)
			},
		},
		{
			name:  "non member",
			actor: env.stranger,
			req:   &UploadNoteRequest{Title: "Mine", Visibility: models.VisibilityPublic, FileName: "a.txt", Data: []byte("text")},
			wantErr: func(err error) bool {
				var perr *PermissionError
				return errors.As(err, &perr)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.manager.Note().Upload(env.ctx, env.chapter.ID, tt.req, tt.actor)
			if !tt.wantErr(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestNoteService_UploadTruncatesPreview(t *testing.T) {
	env := newTestEnv(t)
	body := strings.Repeat("quicksort ", 800)

	resp := env.uploadText(t, env.owner, "Long", models.VisibilityPublic, body)
	if n := len([]rune(resp.Content)); n != models.NotePreviewLimit {
		t.Errorf("preview length = %d, want %d", n, models.NotePreviewLimit)
	}
	stored, err := env.repo.Note().GetByID(env.ctx, resp.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if n := len([]rune(stored.Content)); n != models.NoteContentLimit {
		t.Errorf("stored length = %d, want %d", n, models.NoteContentLimit)
	}
}

func TestNoteService_Visibility(t *testing.T) {
	env := newTestEnv(t)
	other := env.addUser(t, "Olive Other", "olive@school.edu", models.RoleStudent)
	if _, err := env.manager.Classroom().Join(env.ctx, &JoinClassroomRequest{Code: "CS2024"}, other); err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	env.uploadText(t, env.owner, "Teacher notes", models.VisibilityPublic, "merge sort")
	env.uploadText(t, env.student, "Sam pending", models.VisibilityPublic, "heap sort")
	env.uploadText(t, env.student, "Sam private", models.VisibilityPrivate, "radix sort")

	tests := []struct {
		name  string
		actor *models.User
		want  []string
	}{
		{name: "teacher sees all", actor: env.owner, want: []string{"Sam private", "Sam pending", "Teacher notes"}},
		{name: "author sees own drafts", actor: env.student, want: []string{"Sam private", "Sam pending", "Teacher notes"}},
		{name: "classmate sees approved public", actor: other, want: []string{"Teacher notes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := env.manager.Note().ListChapterNotes(env.ctx, env.chapter.ID, tt.actor)
			if err != nil {
				t.Fatalf("ListChapterNotes() error = %v", err)
			}
			if len(notes) != len(tt.want) {
				t.Fatalf("got %d notes, want %d", len(notes), len(tt.want))
			}
			for i, title := range tt.want {
				if notes[i].Title != title {
					t.Errorf("note[%d] = %q, want %q", i, notes[i].Title, title)
				}
			}
		})
	}

	mine, err := env.manager.Note().MyNotes(env.ctx, env.student)
	if err != nil {
		t.Fatalf("MyNotes() error = %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("MyNotes() = %d notes, want 2", len(mine))
	}
}

func TestNoteService_SetApproval(t *testing.T) {
	env := newTestEnv(t)
	pending := env.uploadText(t, env.student, "Pending", models.VisibilityPublic, "insertion sort")

	t.Run("student cannot approve", func(t *testing.T) {
		_, err := env.manager.Note().SetApproval(env.ctx, pending.ID,
			&NoteApprovalRequest{Status: models.ApprovalApproved}, env.student)
		var perr *PermissionError
		if !errors.As(err, &perr) {
			t.Fatalf("error = %v, want PermissionError", err)
		}
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		_, err := env.manager.Note().SetApproval(env.ctx, pending.ID,
			&NoteApprovalRequest{Status: models.ApprovalPending}, env.owner)
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("error = %v, want ValidationErrors", err)
		}
	})

	t.Run("owner approves", func(t *testing.T) {
		env.publisher.ClearEvents()
		resp, err := env.manager.Note().SetApproval(env.ctx, pending.ID,
			&NoteApprovalRequest{Status: models.ApprovalApproved}, env.owner)
		if err != nil {
			t.Fatalf("SetApproval() error = %v", err)
		}
		if resp.ApprovalStatus != models.ApprovalApproved || resp.ApproverName == nil || *resp.ApproverName != env.owner.Name {
			t.Errorf("resp = %+v", resp)
		}
		if topics := env.publisher.GetPublishedTopics(); len(topics) != 1 || topics[0] != events.TopicNoteApproved {
			t.Errorf("topics = %v", topics)
		}
	})

	t.Run("owner rejects with reason", func(t *testing.T) {
		reason := "Off topic"
		resp, err := env.manager.Note().SetApproval(env.ctx, pending.ID,
			&NoteApprovalRequest{Status: models.ApprovalRejected, Reason: &reason}, env.owner)
		if err != nil {
			t.Fatalf("SetApproval() error = %v", err)
		}
		if resp.ApprovedBy != nil || resp.RejectReason == nil || *resp.RejectReason != reason {
			t.Errorf("resp = %+v", resp)
		}
	})

	t.Run("unknown note", func(t *testing.T) {
		_, err := env.manager.Note().SetApproval(env.ctx, "missing",
			&NoteApprovalRequest{Status: models.ApprovalApproved}, env.owner)
		if !errors.Is(err, ErrNoteNotFound) {
			t.Fatalf("error = %v, want ErrNoteNotFound", err)
		}
	})
}

func TestNoteService_Delete(t *testing.T) {
	env := newTestEnv(t)
	note := env.uploadText(t, env.student, "Draft", models.VisibilityPrivate, "shell sort")
	stored, err := env.repo.Note().GetByID(env.ctx, note.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	path := filepath.Join(env.files.Root(), filepath.FromSlash(*stored.StorageKey))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	var perr *PermissionError
	if err := env.manager.Note().Delete(env.ctx, note.ID, env.outsider); !errors.As(err, &perr) {
		t.Fatalf("outsider delete error = %v, want PermissionError", err)
	}

	env.publisher.ClearEvents()
	if err := env.manager.Note().Delete(env.ctx, note.ID, env.student); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file should be removed, stat error = %v", err)
	}
	if topics := env.publisher.GetPublishedTopics(); len(topics) != 1 || topics[0] != events.TopicNoteDeleted {
		t.Errorf("topics = %v", topics)
	}
	if err := env.manager.Note().Delete(env.ctx, note.ID, env.student); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("second delete error = %v, want ErrNoteNotFound", err)
	}
}
