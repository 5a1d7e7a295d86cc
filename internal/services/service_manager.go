package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/edunexus-service/internal/ai"
	"github.com/SAP-F-2025/edunexus-service/internal/cache"
	"github.com/SAP-F-2025/edunexus-service/internal/events"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
	"github.com/SAP-F-2025/edunexus-service/internal/storage"
	"github.com/SAP-F-2025/edunexus-service/internal/validator"
)

// ServiceManager owns every feature service and their shared dependencies.
type ServiceManager interface {
	Initialize(ctx context.Context) error

	Auth() AuthService
	Classroom() ClassroomService
	Subject() SubjectService
	Note() NoteService
	Question() QuestionService
	Announcement() AnnouncementService
	Notebook() NotebookService
	TeacherAccess() TeacherAccessService
	Dashboard() DashboardService
	Export() ExportService
	Indexer() *NoteIndexer

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
	IsInitialized() bool
}

// ServiceDependencies are the collaborators built in main.
type ServiceDependencies struct {
	Repo      repositories.Repository
	Cache     *cache.CacheManager
	Files     storage.FileStore
	Publisher events.EventPublisher
	Embedder  ai.Embedder
	Generator ai.Generator
	Logger    *slog.Logger
	Validator *validator.Validator
}

func (d ServiceDependencies) validate() error {
	var missing []string
	if d.Repo == nil {
		missing = append(missing, "repository")
	}
	if d.Files == nil {
		missing = append(missing, "file store")
	}
	if d.Publisher == nil {
		missing = append(missing, "event publisher")
	}
	if d.Embedder == nil {
		missing = append(missing, "embedder")
	}
	if d.Generator == nil {
		missing = append(missing, "generator")
	}
	if d.Logger == nil {
		missing = append(missing, "logger")
	}
	if d.Validator == nil {
		missing = append(missing, "validator")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing service dependencies: %v", missing)
	}
	return nil
}

type serviceManager struct {
	deps ServiceDependencies

	authService          AuthService
	classroomService     ClassroomService
	subjectService       SubjectService
	noteService          NoteService
	questionService      QuestionService
	announcementService  AnnouncementService
	notebookService      NotebookService
	teacherAccessService TeacherAccessService
	dashboardService     DashboardService
	exportService        ExportService
	noteIndexer          *NoteIndexer

	mu          sync.RWMutex
	initialized bool
	shutdown    bool
}

func NewServiceManager(deps ServiceDependencies) ServiceManager {
	if deps.Cache == nil {
		deps.Cache = cache.NewCacheManager(nil)
	}
	return &serviceManager{deps: deps}
}

// Initialize builds every service. Calling it twice is a no-op.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := sm.deps.validate(); err != nil {
		return err
	}

	sm.deps.Logger.Info("Initializing service manager")
	sm.initializeServices()

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")
	return nil
}

func (sm *serviceManager) initializeServices() {
	d := sm.deps
	sm.authService = NewAuthService(d.Repo, d.Logger, d.Validator)
	sm.classroomService = NewClassroomService(d.Repo, d.Cache, d.Logger, d.Validator)
	sm.subjectService = NewSubjectService(d.Repo, d.Cache, d.Logger, d.Validator)
	sm.noteService = NewNoteService(d.Repo, d.Cache, d.Files, d.Publisher, d.Logger, d.Validator)
	sm.questionService = NewQuestionService(d.Repo, d.Cache, d.Logger, d.Validator)
	sm.announcementService = NewAnnouncementService(d.Repo, d.Logger, d.Validator)
	sm.notebookService = NewNotebookService(d.Repo, d.Embedder, d.Generator, d.Logger, d.Validator)
	sm.teacherAccessService = NewTeacherAccessService(d.Repo, d.Cache, d.Logger, d.Validator)
	sm.dashboardService = NewDashboardService(d.Repo, d.Cache, d.Logger)
	sm.exportService = NewExportService(sm.dashboardService, d.Logger)
	sm.noteIndexer = NewNoteIndexer(d.Repo, d.Embedder, d.Logger)
}

func (sm *serviceManager) ready() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Service getters

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.authService
}

func (sm *serviceManager) Classroom() ClassroomService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.classroomService
}

func (sm *serviceManager) Subject() SubjectService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.subjectService
}

func (sm *serviceManager) Note() NoteService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.noteService
}

func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.questionService
}

func (sm *serviceManager) Announcement() AnnouncementService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.announcementService
}

func (sm *serviceManager) Notebook() NotebookService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.notebookService
}

func (sm *serviceManager) TeacherAccess() TeacherAccessService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.teacherAccessService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.dashboardService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.exportService
}

func (sm *serviceManager) Indexer() *NoteIndexer {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready()
	return sm.noteIndexer
}

// Health and lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return errors.New("service manager not initialized")
	}
	if sm.shutdown {
		return errors.New("service manager is shut down")
	}
	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	// Reads fall through to the repository without redis.
	if sm.deps.Cache.Classroom.Enabled() {
		if err := sm.deps.Cache.HealthCheck(ctx); err != nil {
			sm.deps.Logger.WarnContext(ctx, "Cache unhealthy", "error", err)
		}
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}
	sm.deps.Logger.Info("Shutting down service manager")

	if err := sm.deps.Publisher.Close(); err != nil {
		sm.deps.Logger.Error("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")
	return nil
}

func (sm *serviceManager) IsInitialized() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.initialized
}
