package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/SAP-F-2025/edunexus-service/internal/cache"
	"github.com/SAP-F-2025/edunexus-service/internal/document"
	"github.com/SAP-F-2025/edunexus-service/internal/events"
	"github.com/SAP-F-2025/edunexus-service/internal/models"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
	"github.com/SAP-F-2025/edunexus-service/internal/storage"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
	"github.com/SAP-F-2025/edunexus-service/internal/validator"
)

// ErrDocumentProcessing wraps extraction failures of an uploaded file.
var ErrDocumentProcessing = errors.New("error processing document")

type noteService struct {
	repo      repositories.Repository
	access    *accessControl
	cache     *cache.CacheManager
	files     storage.FileStore
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewNoteService(
	repo repositories.Repository,
	cm *cache.CacheManager,
	files storage.FileStore,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) NoteService {
	return &noteService{
		repo:      repo,
		access:    newAccessControl(repo),
		cache:     cm,
		files:     files,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ListChapterNotes shows teachers every note of the chapter. Students see
// approved public notes and their own uploads in any state.
func (s *noteService) ListChapterNotes(ctx context.Context, chapterID string, actor *models.User) ([]NoteResponse, error) {
	s.logger.Info("Listing chapter notes", "chapter_id", chapterID, "user_id", actor.ID)

	if _, err := s.access.chapterAccess(ctx, chapterID, actor); err != nil {
		return nil, err
	}

	notes, err := s.repo.Note().List(ctx, repositories.NoteFilters{ChapterID: &chapterID})
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	if !actor.IsTeacher() {
		notes = lo.Filter(notes, func(n *models.Note, _ int) bool {
			return n.IsSearchable() || n.UploadedBy == actor.ID
		})
	}
	return toNoteResponses(ctx, s.repo, notes)
}

func (s *noteService) MyNotes(ctx context.Context, actor *models.User) ([]NoteResponse, error) {
	s.logger.Info("Listing own notes", "user_id", actor.ID)

	notes, err := s.repo.Note().List(ctx, repositories.NoteFilters{UploadedBy: &actor.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return toNoteResponses(ctx, s.repo, notes)
}

// Upload stores the file, extracts its text and records the note. Teacher
// uploads and private student uploads are approved on arrival; public
// student uploads wait for a subject teacher.
func (s *noteService) Upload(ctx context.Context, chapterID string, req *UploadNoteRequest, actor *models.User) (*NoteResponse, error) {
	s.logger.Info("Uploading note", "chapter_id", chapterID, "file_name", req.FileName, "user_id", actor.ID)

	if _, err := s.access.chapterAccess(ctx, chapterID, actor); err != nil {
		return nil, err
	}
	kind, err := document.KindOf(req.FileName)
	if err != nil {
		return nil, ErrUnsupportedFileType
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	content, err := document.ExtractText(req.FileName, req.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentProcessing, err)
	}

	safeName := utils.SanitizeFilename(req.FileName)
	key := storage.NoteKey(chapterID, uuid.NewString(), safeName)
	fileURL, err := s.files.Save(ctx, key, contentType(kind), req.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	note := &models.Note{
		ChapterID:  chapterID,
		Title:      req.Title,
		Content:    utils.Truncate(content, models.NoteContentLimit),
		FileURL:    &fileURL,
		FileName:   lo.ToPtr(req.FileName),
		StorageKey: &key,
		Visibility: req.Visibility,
		UploadedBy: actor.ID,
	}
	switch {
	case actor.IsTeacher():
		now := time.Now().UTC()
		note.ApprovalStatus = models.ApprovalApproved
		note.ApprovedBy = &actor.ID
		note.ApprovedAt = &now
	case req.Visibility == models.VisibilityPrivate:
		note.ApprovalStatus = models.ApprovalApproved
	default:
		note.ApprovalStatus = models.ApprovalPending
	}

	if err := s.repo.Note().Create(ctx, note); err != nil {
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned file", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	if note.IsSearchable() {
		s.publish(ctx, events.TopicNoteApproved, note, actor.ID)
		cache.InvalidateClassroomLists(ctx, s.cache)
	}
	cache.InvalidateDashboards(ctx, s.cache)

	s.logger.Info("Note uploaded", "note_id", note.ID, "status", note.ApprovalStatus)
	resp, err := toNoteResponse(note, userDirectory{actor.ID: actor})
	if err != nil {
		return nil, err
	}
	resp.Content = utils.Truncate(note.Content, models.NotePreviewLimit)
	return &resp, nil
}

func contentType(kind document.Kind) string {
	if kind == document.KindPDF {
		return "application/pdf"
	}
	return "text/plain; charset=utf-8"
}

func (s *noteService) SetApproval(ctx context.Context, id string, req *NoteApprovalRequest, actor *models.User) (*NoteResponse, error) {
	s.logger.Info("Updating note approval", "note_id", id, "status", req.Status, "user_id", actor.ID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	note, err := s.getNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireChapterTeacher(ctx, note.ChapterID, actor, "approve note"); err != nil {
		return nil, err
	}

	note.ApprovalStatus = req.Status
	if req.Status == models.ApprovalApproved {
		now := time.Now().UTC()
		note.ApprovedBy = &actor.ID
		note.ApprovedAt = &now
		note.RejectReason = nil
	} else {
		note.ApprovedBy = nil
		note.ApprovedAt = nil
		note.RejectReason = req.Reason
	}

	if err := s.repo.Note().Update(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	topic := events.TopicNoteApproved
	if req.Status == models.ApprovalRejected {
		topic = events.TopicNoteRejected
	}
	s.publish(ctx, topic, note, actor.ID)

	cache.InvalidateClassroomLists(ctx, s.cache)
	cache.InvalidateDashboards(ctx, s.cache)

	responses, err := toNoteResponses(ctx, s.repo, []*models.Note{note})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// Delete is allowed to the uploader and to teachers of the note's subject.
func (s *noteService) Delete(ctx context.Context, id string, actor *models.User) error {
	s.logger.Info("Deleting note", "note_id", id, "user_id", actor.ID)

	note, err := s.getNote(ctx, id)
	if err != nil {
		return err
	}
	if note.UploadedBy != actor.ID {
		if _, err := s.access.requireChapterTeacher(ctx, note.ChapterID, actor, "delete note"); err != nil {
			return err
		}
	}

	if err := s.repo.Note().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if note.StorageKey != nil {
		if err := s.files.Delete(ctx, *note.StorageKey); err != nil {
			s.logger.Warn("Failed to delete note file", "note_id", id, "key", *note.StorageKey, "error", err)
		}
	}
	s.publish(ctx, events.TopicNoteDeleted, note, actor.ID)

	cache.InvalidateClassroomLists(ctx, s.cache)
	cache.InvalidateDashboards(ctx, s.cache)
	return nil
}

func (s *noteService) getNote(ctx context.Context, id string) (*models.Note, error) {
	note, err := s.repo.Note().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// publish logs failures instead of returning them since the note change is
// already committed. A lost event leaves the embedding index out of step
// until the note is approved, rejected or deleted again.
func (s *noteService) publish(ctx context.Context, topic string, note *models.Note, actorID string) {
	event := events.NewEvent(topic, events.NoteEvent{
		NoteID:     note.ID,
		ChapterID:  note.ChapterID,
		Status:     string(note.ApprovalStatus),
		Visibility: string(note.Visibility),
		ActorID:    actorID,
	})
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Error("Failed to publish note event", "topic", topic, "note_id", note.ID, "error", err)
	}
}
