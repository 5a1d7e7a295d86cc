package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient *redis.Client

	user          repositories.UserRepository
	classroom     repositories.ClassroomRepository
	subject       repositories.SubjectRepository
	chapter       repositories.ChapterRepository
	teacherAccess repositories.TeacherAccessRepository
	note          repositories.NoteRepository
	noteEmbedding repositories.NoteEmbeddingRepository
	question      repositories.QuestionRepository
	announcement  repositories.AnnouncementRepository
	dashboard     repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := newRepository(config.DB)
	repo.redisClient = config.RedisClient
	return repo
}

func newRepository(db *gorm.DB) *PostgreSQLRepository {
	return &PostgreSQLRepository{
		db:            db,
		user:          NewUserRepository(db),
		classroom:     NewClassroomRepository(db),
		subject:       NewSubjectRepository(db),
		chapter:       NewChapterRepository(db),
		teacherAccess: NewTeacherAccessRepository(db),
		note:          NewNoteRepository(db),
		noteEmbedding: NewNoteEmbeddingRepository(db),
		question:      NewQuestionRepository(db),
		announcement:  NewAnnouncementRepository(db),
		dashboard:     NewDashboardRepository(db),
	}
}

func (r *PostgreSQLRepository) User() repositories.UserRepository { return r.user }

func (r *PostgreSQLRepository) Classroom() repositories.ClassroomRepository { return r.classroom }

func (r *PostgreSQLRepository) Subject() repositories.SubjectRepository { return r.subject }

func (r *PostgreSQLRepository) Chapter() repositories.ChapterRepository { return r.chapter }

func (r *PostgreSQLRepository) TeacherAccess() repositories.TeacherAccessRepository {
	return r.teacherAccess
}

func (r *PostgreSQLRepository) Note() repositories.NoteRepository { return r.note }

func (r *PostgreSQLRepository) NoteEmbedding() repositories.NoteEmbeddingRepository {
	return r.noteEmbedding
}

func (r *PostgreSQLRepository) Question() repositories.QuestionRepository { return r.question }

func (r *PostgreSQLRepository) Announcement() repositories.AnnouncementRepository {
	return r.announcement
}

func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository { return r.dashboard }

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := newRepository(tx)
		txRepo.redisClient = r.redisClient
		return fn(txRepo)
	})
}

// Ping checks the database connection. Redis health is reported by the
// service manager.
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}
	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize verifies connections and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return errors.New("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)
	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return errors.New("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
