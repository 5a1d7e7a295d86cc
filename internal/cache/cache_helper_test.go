package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client), mr
}

type classroomSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestCacheHelper_GetSet(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	var got classroomSummary
	if err := cm.Classroom.Get(ctx, "missing", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("expected ErrCacheNotFound, got %v", err)
	}

	want := classroomSummary{ID: "c1", Name: "Physics"}
	if err := cm.Classroom.Set(ctx, "c1", want, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists("classroom:c1") {
		t.Fatal("expected prefixed key in redis")
	}
	if ttl := mr.TTL("classroom:c1"); ttl != ClassroomCacheConfig.TTL {
		t.Errorf("ttl = %v, want %v", ttl, ClassroomCacheConfig.TTL)
	}

	if err := cm.Classroom.Get(ctx, "c1", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestCacheHelper_NilClient(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	if err := cm.Dashboard.Set(ctx, "k", 1, 0); err != nil {
		t.Errorf("Set() on nil client should be a no-op, got %v", err)
	}
	var v int
	if err := cm.Dashboard.Get(ctx, "k", &v); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}
	if err := cm.HealthCheck(ctx); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("expected ErrCacheNotAvailable from HealthCheck, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []classroomSummary{{ID: "c1", Name: "Physics"}}, nil
	}

	for i := 0; i < 3; i++ {
		var got []classroomSummary
		if err := cm.Classroom.CacheOrExecute(ctx, ClassroomListKey("u1"), &got, fetch); err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}
		if len(got) != 1 || got[0].Name != "Physics" {
			t.Fatalf("unexpected result %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}

	fetchErr := errors.New("db down")
	var got []classroomSummary
	err := cm.Classroom.CacheOrExecute(ctx, ClassroomListKey("u2"), &got, func() (interface{}, error) {
		return nil, fetchErr
	})
	if !errors.Is(err, fetchErr) {
		t.Errorf("expected fetch error to propagate, got %v", err)
	}
}

func TestInvalidation(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	for _, id := range []string{"u1", "u2", "u3"} {
		_ = cm.Classroom.Set(ctx, ClassroomListKey(id), []string{"c"}, 0)
		_ = cm.Dashboard.Set(ctx, DashboardKey(id), map[string]int{"pending": 1}, 0)
	}

	InvalidateClassroomLists(ctx, cm, "u1")
	if mr.Exists("classroom:user:u1:list") {
		t.Error("u1 list should be gone")
	}
	if !mr.Exists("classroom:user:u2:list") {
		t.Error("u2 list should survive a targeted invalidation")
	}

	InvalidateClassroomLists(ctx, cm)
	if mr.Exists("classroom:user:u2:list") || mr.Exists("classroom:user:u3:list") {
		t.Error("all lists should be gone")
	}

	InvalidateDashboards(ctx, cm)
	for _, id := range []string{"u1", "u2", "u3"} {
		if mr.Exists("dashboard:teacher:" + id) {
			t.Errorf("dashboard for %s should be gone", id)
		}
	}
}
