package repositories

import "context"

// Repository aggregates every store the service reads and writes.
type Repository interface {
	User() UserRepository

	// Classroom tree
	Classroom() ClassroomRepository
	Subject() SubjectRepository
	Chapter() ChapterRepository
	TeacherAccess() TeacherAccessRepository

	// Chapter content
	Note() NoteRepository
	NoteEmbedding() NoteEmbeddingRepository
	Question() QuestionRepository
	Announcement() AnnouncementRepository

	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
