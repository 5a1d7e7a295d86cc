package screens

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/edunexus-service/pkg/apiclient"
	"github.com/SAP-F-2025/edunexus-service/pkg/session"
)

// Key names the data a screen shows. Mutations list the keys they touch.
type Key string

const (
	DashboardKey     Key = "dashboard"
	MyNotesKey       Key = "my-notes"
	AnnouncementsKey Key = "announcements"
)

func ClassroomKey(id string) Key { return Key("classroom:" + id) }
func SubjectKey(id string) Key   { return Key("subject:" + id) }
func ChapterKey(id string) Key   { return Key("chapter:" + id) }

// Refresher re-fetches a mounted screen.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Sync applies one policy to every mutation: on success, the screens
// registered under the touched keys are re-fetched; on failure, the error is
// logged and shown. Nothing is retried.
type Sync struct {
	notifier session.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	screens map[Key]map[Refresher]struct{}
}

func NewSync(notifier session.Notifier, logger *slog.Logger) *Sync {
	return &Sync{
		notifier: notifier,
		logger:   logger,
		screens:  make(map[Key]map[Refresher]struct{}),
	}
}

// Register adds r under every key. The returned func removes it again.
func (s *Sync) Register(r Refresher, keys ...Key) (unregister func()) {
	s.mu.Lock()
	for _, key := range keys {
		if s.screens[key] == nil {
			s.screens[key] = make(map[Refresher]struct{})
		}
		s.screens[key][r] = struct{}{}
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, key := range keys {
			delete(s.screens[key], r)
			if len(s.screens[key]) == 0 {
				delete(s.screens, key)
			}
		}
	}
}

// Mutate runs call and syncs the screens under key.
func (s *Sync) Mutate(ctx context.Context, key Key, call func(context.Context) error) error {
	return s.MutateKeys(ctx, []Key{key}, call)
}

// MutateKeys is Mutate for a change that shows up under several keys. Each
// registered screen is refreshed once.
func (s *Sync) MutateKeys(ctx context.Context, keys []Key, call func(context.Context) error) error {
	if err := call(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Mutation failed", "keys", keys, "error", err)
		s.notifier.Notify(session.LevelError, errorMessage(err, "Something went wrong"))
		return err
	}
	s.Refresh(ctx, keys...)
	return nil
}

// Refresh re-fetches the screens under keys without a mutation. It is for
// changes that partly landed before a failure.
func (s *Sync) Refresh(ctx context.Context, keys ...Key) {
	for _, r := range s.registered(keys) {
		r.Refresh(ctx)
	}
}

func (s *Sync) registered(keys []Key) []Refresher {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[Refresher]struct{})
	var out []Refresher
	for _, key := range keys {
		for r := range s.screens[key] {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// errorMessage prefers the service's error detail.
func errorMessage(err error, fallback string) string {
	var httpErr *apiclient.HTTPError
	if errors.As(err, &httpErr) && httpErr.Detail != "" {
		return httpErr.Detail
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}
	return fallback
}
