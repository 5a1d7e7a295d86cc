package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "edunexus-service"
	EventVersion = "1.0"
)

// Topics double as event types.
const (
	TopicNoteApproved = "notes.approved"
	TopicNoteRejected = "notes.rejected"
	TopicNoteDeleted  = "notes.deleted"
)

// Event is the envelope published on every topic.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// DecodeData unmarshals the payload into dest. Events that crossed the wire
// carry a generic map, in-process ones the original struct.
func (e Event) DecodeData(dest interface{}) error {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to encode event data: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode event data: %w", err)
	}
	return nil
}

// NoteEvent describes a note whose searchability may have changed.
type NoteEvent struct {
	NoteID     string `json:"note_id"`
	ChapterID  string `json:"chapter_id"`
	Status     string `json:"status,omitempty"`
	Visibility string `json:"visibility,omitempty"`
	ActorID    string `json:"actor_id"`
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close() error
}
