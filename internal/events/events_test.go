package events

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent(TopicNoteApproved, NoteEvent{NoteID: "n1", ChapterID: "c1"})

	if event.ID == "" {
		t.Error("Event ID should not be empty")
	}
	if event.Source != "edunexus-service" {
		t.Errorf("Expected source 'edunexus-service', got '%s'", event.Source)
	}
	if event.Version != "1.0" {
		t.Errorf("Expected version '1.0', got '%s'", event.Version)
	}
	if event.Timestamp.IsZero() {
		t.Error("Event timestamp should not be zero")
	}

	var data NoteEvent
	if err := event.DecodeData(&data); err != nil {
		t.Fatalf("DecodeData() error = %v", err)
	}
	if data.NoteID != "n1" || data.ChapterID != "c1" {
		t.Errorf("unexpected payload %+v", data)
	}
}

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	pub := NewMockEventPublisher(logger)

	_ = pub.Publish(context.Background(), TopicNoteDeleted, NewEvent(TopicNoteDeleted, NoteEvent{NoteID: "n1"}))
	if got := pub.GetPublishedEvents(); len(got) != 1 || got[0].Type != TopicNoteDeleted {
		t.Fatalf("unexpected events %+v", got)
	}
	if got := pub.GetPublishedTopics(); got[0] != TopicNoteDeleted {
		t.Errorf("topic = %s", got[0])
	}

	pub.ClearEvents()
	if len(pub.GetPublishedEvents()) != 0 {
		t.Error("ClearEvents should empty the log")
	}
}

func TestConsumer_GoChannelRoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	pubsub := NewGoChannel(logger)
	defer pubsub.Close()

	consumer, err := NewConsumer(pubsub, logger)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}

	received := make(chan NoteEvent, 1)
	consumer.Handle(TopicNoteApproved, func(ctx context.Context, event Event) error {
		var data NoteEvent
		if err := event.DecodeData(&data); err != nil {
			return err
		}
		received <- data
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = consumer.Run(ctx) }()

	select {
	case <-consumer.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	publisher := NewWatermillPublisher(pubsub, logger)
	if err := publisher.Publish(ctx, TopicNoteApproved, NewEvent(TopicNoteApproved, NoteEvent{NoteID: "n42"})); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-received:
		if got.NoteID != "n42" {
			t.Errorf("NoteID = %s, want n42", got.NoteID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}

	_ = consumer.Close()
}
