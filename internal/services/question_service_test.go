package services

import (
	"errors"
	"testing"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
)

func TestQuestionService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	classmate := env.addUser(t, "Casey Classmate", "casey@school.edu", models.RoleStudent)
	if _, err := env.manager.Classroom().Join(env.ctx, &JoinClassroomRequest{Code: "CS2024"}, classmate); err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	ask := func(title string, private bool) *QuestionResponse {
		t.Helper()
		q, err := env.manager.Question().Create(env.ctx, &CreateQuestionRequest{
			ChapterID: env.chapter.ID,
			Title:     title,
			Content:   "Why is quicksort fast?",
			IsPrivate: private,
		}, env.student)
		if err != nil {
			t.Fatalf("Create(%q) error = %v", title, err)
		}
		return q
	}
	public := ask("Public", false)
	ask("Private", true)

	t.Run("classmate sees only public", func(t *testing.T) {
		got, err := env.manager.Question().ListChapter(env.ctx, env.chapter.ID, classmate)
		if err != nil {
			t.Fatalf("ListChapter() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != public.ID {
			t.Errorf("got %+v, want only the public question", got)
		}
	})

	t.Run("teacher sees both", func(t *testing.T) {
		got, err := env.manager.Question().ListChapter(env.ctx, env.chapter.ID, env.owner)
		if err != nil {
			t.Fatalf("ListChapter() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d questions, want 2", len(got))
		}
	})

	t.Run("student cannot answer", func(t *testing.T) {
		_, err := env.manager.Question().Answer(env.ctx, public.ID, &AnswerQuestionRequest{Content: "Because."}, classmate)
		var perr *PermissionError
		if !errors.As(err, &perr) {
			t.Fatalf("error = %v, want PermissionError", err)
		}
	})

	t.Run("answered public question joins the community list", func(t *testing.T) {
		community, err := env.manager.Question().ListCommunity(env.ctx, env.chapter.ID, classmate)
		if err != nil {
			t.Fatalf("ListCommunity() error = %v", err)
		}
		if len(community) != 0 {
			t.Fatalf("community before answer = %d, want 0", len(community))
		}

		answered, err := env.manager.Question().Answer(env.ctx, public.ID,
			&AnswerQuestionRequest{Content: "  Divide and conquer.  "}, env.owner)
		if err != nil {
			t.Fatalf("Answer() error = %v", err)
		}
		if answered.Answer == nil || *answered.Answer != "Divide and conquer." {
			t.Errorf("Answer = %v", answered.Answer)
		}
		if answered.AnswererName == nil || *answered.AnswererName != env.owner.Name {
			t.Errorf("AnswererName = %v", answered.AnswererName)
		}

		community, err = env.manager.Question().ListCommunity(env.ctx, env.chapter.ID, classmate)
		if err != nil {
			t.Fatalf("ListCommunity() error = %v", err)
		}
		if len(community) != 1 || community[0].UserName != env.student.Name {
			t.Errorf("community = %+v", community)
		}
	})

	t.Run("only the author deletes", func(t *testing.T) {
		var perr *PermissionError
		if err := env.manager.Question().Delete(env.ctx, public.ID, env.owner); !errors.As(err, &perr) {
			t.Fatalf("teacher Delete() error = %v, want PermissionError", err)
		}
		if err := env.manager.Question().Delete(env.ctx, public.ID, env.student); err != nil {
			t.Fatalf("author Delete() error = %v", err)
		}
		mine, err := env.manager.Question().ListMine(env.ctx, env.student)
		if err != nil {
			t.Fatalf("ListMine() error = %v", err)
		}
		if len(mine) != 1 || mine[0].Title != "Private" {
			t.Errorf("ListMine() = %+v", mine)
		}
	})
}

func TestAnnouncementService(t *testing.T) {
	env := newTestEnv(t)

	req := &CreateAnnouncementRequest{ChapterID: env.chapter.ID, Title: "Quiz", Content: "Quiz on Friday"}
	var perr *PermissionError
	if _, err := env.manager.Announcement().Create(env.ctx, req, env.student); !errors.As(err, &perr) {
		t.Fatalf("student Create() error = %v, want PermissionError", err)
	}

	created, err := env.manager.Announcement().Create(env.ctx, req, env.owner)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.CreatorName != env.owner.Name {
		t.Errorf("CreatorName = %q", created.CreatorName)
	}

	tests := []struct {
		name  string
		actor *models.User
		want  int
	}{
		{name: "member", actor: env.student, want: 1},
		{name: "owner", actor: env.owner, want: 1},
		{name: "stranger", actor: env.stranger, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			all, err := env.manager.Announcement().ListAll(env.ctx, tt.actor)
			if err != nil {
				t.Fatalf("ListAll() error = %v", err)
			}
			if len(all) != tt.want {
				t.Errorf("got %d announcements, want %d", len(all), tt.want)
			}
		})
	}

	if _, err := env.manager.Announcement().ListChapter(env.ctx, env.chapter.ID, env.stranger); !errors.As(err, &perr) {
		t.Errorf("stranger ListChapter() error = %v, want PermissionError", err)
	}
}
