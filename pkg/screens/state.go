package screens

import (
	"context"
	"errors"
	"sync"

	"github.com/samber/lo"

	"github.com/SAP-F-2025/edunexus-service/pkg/session"
)

var (
	ErrEmptyUpload  = errors.New("upload needs a title or a file")
	ErrMissingField = errors.New("required field missing")
	ErrNotMounted   = errors.New("screen is not mounted")
)

// ValidationError is a client-side rejection; no request was sent.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }

type Status string

const (
	StatusLoading   Status = "loading"
	StatusEmpty     Status = "empty"
	StatusError     Status = "error"
	StatusPopulated Status = "populated"
)

type ListState[T any] struct {
	Status Status
	Items  []T
	Err    error
}

func loadingList[T any]() ListState[T] {
	return ListState[T]{Status: StatusLoading}
}

func listResult[T any](items []T, err error) ListState[T] {
	switch {
	case err != nil:
		return ListState[T]{Status: StatusError, Err: err}
	case len(items) == 0:
		return ListState[T]{Status: StatusEmpty, Items: []T{}}
	default:
		return ListState[T]{Status: StatusPopulated, Items: items}
	}
}

// lifecycle tracks whether a screen is mounted. Every mount and unmount
// bumps the generation; fetch results from an older generation are dropped.
type lifecycle struct {
	mu         sync.Mutex
	gen        uint64
	mounted    bool
	unregister func()
}

func (l *lifecycle) mount(s *Sync, r Refresher, keys ...Key) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mounted {
		return
	}
	l.gen++
	l.mounted = true
	if s != nil {
		l.unregister = s.Register(r, keys...)
	}
}

// Unmount stops the screen from taking fetch results and refreshes.
func (l *lifecycle) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return
	}
	l.gen++
	l.mounted = false
	if l.unregister != nil {
		l.unregister()
		l.unregister = nil
	}
}

func (l *lifecycle) Mounted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mounted
}

func (l *lifecycle) current() (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen, l.mounted
}

// apply runs fn under the screen lock unless the screen was unmounted or
// remounted since gen.
func (l *lifecycle) apply(gen uint64, fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted || l.gen != gen {
		return false
	}
	fn()
	return true
}

func (l *lifecycle) read(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

// runAll runs the fetches concurrently and waits for all of them.
func runAll(ctx context.Context, fetches ...func(context.Context)) {
	var wg sync.WaitGroup
	for _, fetch := range fetches {
		wg.Add(1)
		go func(fetch func(context.Context)) {
			defer wg.Done()
			fetch(ctx)
		}(fetch)
	}
	wg.Wait()
}

// fetchList loads one list into dst, keeping only items that pass keep.
// Failures are logged and shown with failMsg.
func fetchList[T any](
	ctx context.Context,
	env *Env,
	l *lifecycle,
	gen uint64,
	dst *ListState[T],
	failMsg string,
	call func(context.Context) ([]T, error),
	keep func(T) bool,
) {
	items, err := call(ctx)
	if err == nil && keep != nil {
		items = lo.Filter(items, func(item T, _ int) bool { return keep(item) })
	}
	applied := l.apply(gen, func() { *dst = listResult(items, err) })
	if err != nil && applied {
		env.Logger.WarnContext(ctx, failMsg, "error", err)
		env.Notifier.Notify(session.LevelError, failMsg)
	}
}

func (e *Env) notifySuccess(msg string) {
	e.Notifier.Notify(session.LevelInfo, msg)
}

// reject reports a validation failure without touching the network.
func (e *Env) reject(err error, msg string) error {
	e.Notifier.Notify(session.LevelError, msg)
	return &ValidationError{Message: msg, Err: err}
}
