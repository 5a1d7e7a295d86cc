package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/SAP-F-2025/edunexus-service/internal/ai"
	"github.com/SAP-F-2025/edunexus-service/internal/events"
	"github.com/SAP-F-2025/edunexus-service/internal/models"
)

func TestNoteIndexer_FollowsApproval(t *testing.T) {
	env := newTestEnv(t)

	indexed := func() int {
		t.Helper()
		list, err := env.repo.NoteEmbedding().ListByChapter(env.ctx, env.chapter.ID)
		if err != nil {
			t.Fatalf("ListByChapter() error = %v", err)
		}
		return len(list)
	}

	env.uploadText(t, env.owner, "Teacher", models.VisibilityPublic, "merge sort splits the list")
	pending := env.uploadText(t, env.student, "Student", models.VisibilityPublic, "selection sort")
	env.uploadText(t, env.student, "Private", models.VisibilityPrivate, "gnome sort")
	env.indexAll(t)
	if n := indexed(); n != 1 {
		t.Fatalf("indexed after upload = %d, want 1", n)
	}

	if _, err := env.manager.Note().SetApproval(env.ctx, pending.ID,
		&NoteApprovalRequest{Status: models.ApprovalApproved}, env.owner); err != nil {
		t.Fatalf("approve: %v", err)
	}
	env.indexAll(t)
	if n := indexed(); n != 2 {
		t.Fatalf("indexed after approval = %d, want 2", n)
	}

	if _, err := env.manager.Note().SetApproval(env.ctx, pending.ID,
		&NoteApprovalRequest{Status: models.ApprovalRejected}, env.owner); err != nil {
		t.Fatalf("reject: %v", err)
	}
	env.indexAll(t)
	if n := indexed(); n != 1 {
		t.Fatalf("indexed after rejection = %d, want 1", n)
	}

	// A stale approval event for a note that is now rejected must not re-index it.
	stale := events.NewEvent(events.TopicNoteApproved, events.NoteEvent{NoteID: pending.ID, ChapterID: env.chapter.ID})
	if err := env.manager.Indexer().HandleEvent(env.ctx, stale); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if n := indexed(); n != 1 {
		t.Errorf("indexed after stale event = %d, want 1", n)
	}

	missing := events.NewEvent(events.TopicNoteApproved, events.NoteEvent{NoteID: "gone", ChapterID: env.chapter.ID})
	if err := env.manager.Indexer().HandleEvent(env.ctx, missing); err != nil {
		t.Errorf("HandleEvent(missing) error = %v", err)
	}
}

func TestNotebookService_Query(t *testing.T) {
	env := newTestEnv(t)

	t.Run("empty chapter", func(t *testing.T) {
		resp, err := env.manager.Notebook().Query(env.ctx, env.chapter.ID, &NotebookQueryRequest{Question: "What is a pivot?"}, env.student)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		want := "I don't have any notes available for Sorting yet. Please upload some notes first!"
		if resp.Answer != want || resp.NoteCount != 0 || len(resp.Sources) != 0 {
			t.Errorf("resp = %+v", resp)
		}
	})

	for i := 0; i < 7; i++ {
		env.uploadText(t, env.owner, fmt.Sprintf("Note %d", i), models.VisibilityPublic, fmt.Sprintf("sorting topic %d", i))
	}
	env.uploadText(t, env.owner, "Quicksort pivots", models.VisibilityPublic, "quicksort chooses a pivot and partitions around the pivot")
	env.uploadText(t, env.student, "Unapproved pivot notes", models.VisibilityPublic, "pivot pivot pivot")
	env.indexAll(t)

	t.Run("answers from the top notes", func(t *testing.T) {
		resp, err := env.manager.Notebook().Query(env.ctx, env.chapter.ID, &NotebookQueryRequest{Question: "How does quicksort use a pivot?"}, env.student)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if resp.Answer != env.generator.reply {
			t.Errorf("Answer = %q", resp.Answer)
		}
		if resp.NoteCount != 5 || len(resp.Sources) != 5 {
			t.Fatalf("sources = %d, note_count = %d, want 5", len(resp.Sources), resp.NoteCount)
		}
		if resp.Sources[0].Title != "Quicksort pivots" || resp.Sources[0].UploadedBy != env.owner.Name {
			t.Errorf("best source = %+v", resp.Sources[0])
		}
		for _, s := range resp.Sources {
			if s.Title == "Unapproved pivot notes" {
				t.Error("pending note leaked into the notebook")
			}
		}
		prompt := env.generator.lastPrompt()
		if !strings.Contains(prompt, "Chapter: Sorting") || !strings.Contains(prompt, "Question: How does quicksort use a pivot?") {
			t.Errorf("prompt = %q", prompt)
		}
	})

	tests := []struct {
		name      string
		genErr    error
		wantExact string
		wantPart  string
	}{
		{name: "rate limited", genErr: ai.ErrRateLimited, wantExact: rateLimitedAnswer},
		{name: "no model configured", genErr: ai.ErrNotConfigured, wantPart: "Quicksort pivots"},
		{name: "upstream failure", genErr: errors.New("boom"), wantPart: "I encountered an error processing your request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.generator.err = tt.genErr
			defer func() { env.generator.err = nil }()

			resp, err := env.manager.Notebook().Query(env.ctx, env.chapter.ID, &NotebookQueryRequest{Question: "pivot"}, env.student)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if tt.wantExact != "" && resp.Answer != tt.wantExact {
				t.Errorf("Answer = %q, want %q", resp.Answer, tt.wantExact)
			}
			if tt.wantPart != "" && !strings.Contains(resp.Answer, tt.wantPart) {
				t.Errorf("Answer = %q, want it to contain %q", resp.Answer, tt.wantPart)
			}
		})
	}

	t.Run("stranger is refused", func(t *testing.T) {
		_, err := env.manager.Notebook().Query(env.ctx, env.chapter.ID, &NotebookQueryRequest{Question: "pivot"}, env.stranger)
		var perr *PermissionError
		if !errors.As(err, &perr) {
			t.Fatalf("error = %v, want PermissionError", err)
		}
	})
}

func TestNotebookService_Recommendations(t *testing.T) {
	env := newTestEnv(t)

	t.Run("parses model lines", func(t *testing.T) {
		env.generator.reply = "Here you go:\n" +
			"video | Sorting in 10 minutes | sorting algorithms explained | quick overview\n" +
			"- article | Big-O of sorts | sorting complexity | reference table\n" +
			"podcast | ignored | x | y\n"
		resp, err := env.manager.Notebook().Recommendations(env.ctx, env.chapter.ID, "", env.student)
		if err != nil {
			t.Fatalf("Recommendations() error = %v", err)
		}
		if resp.Chapter != "Sorting" || resp.Subject != "Algorithms" {
			t.Errorf("chapter/subject = %q/%q", resp.Chapter, resp.Subject)
		}
		if len(resp.Recommendations) != 2 {
			t.Fatalf("got %d recommendations, want 2", len(resp.Recommendations))
		}
		if !strings.HasPrefix(resp.Recommendations[0].URL, "https://www.youtube.com/results?search_query=") {
			t.Errorf("video URL = %q", resp.Recommendations[0].URL)
		}
		if resp.Recommendations[1].Type != "article" || !strings.HasPrefix(resp.Recommendations[1].URL, "https://www.google.com/search?q=") {
			t.Errorf("article = %+v", resp.Recommendations[1])
		}
	})

	t.Run("falls back to search links", func(t *testing.T) {
		env.generator.err = ai.ErrNotConfigured
		defer func() { env.generator.err = nil }()

		resp, err := env.manager.Notebook().Recommendations(env.ctx, env.chapter.ID, "merge sort", env.student)
		if err != nil {
			t.Fatalf("Recommendations() error = %v", err)
		}
		if len(resp.Recommendations) != 2 {
			t.Fatalf("got %d recommendations, want 2", len(resp.Recommendations))
		}
		if !strings.Contains(resp.Recommendations[0].URL, "merge+sort") {
			t.Errorf("fallback URL = %q, want the topic in it", resp.Recommendations[0].URL)
		}
	})
}
