package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// ClassroomListKey is the key of a user's accessible classroom list.
func ClassroomListKey(userID string) string {
	return "user:" + userID + ":list"
}

// DashboardKey is the key of a teacher's dashboard snapshot.
func DashboardKey(teacherID string) string {
	return "teacher:" + teacherID
}

// InvalidateClassroomLists drops the cached lists of the given users. With no
// users every list is dropped, which is what classroom deletion needs since
// members are gone by the time the cache is touched.
func InvalidateClassroomLists(ctx context.Context, cm *CacheManager, userIDs ...string) {
	if len(userIDs) == 0 {
		SafeInvalidatePattern(ctx, cm.Classroom, "user:*")
		return
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = ClassroomListKey(id)
	}
	SafeDelete(ctx, cm.Classroom, keys...)
}

// InvalidateDashboards drops every teacher dashboard. Approval queues span
// classrooms and delegations, so a single change can touch several teachers.
func InvalidateDashboards(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Dashboard, "teacher:*")
}
