package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// HandlerFunc processes one decoded event.
type HandlerFunc func(ctx context.Context, event Event) error

// Consumer routes subscribed topics to handlers.
type Consumer struct {
	router     *message.Router
	subscriber message.Subscriber
	logger     *slog.Logger
}

func NewConsumer(subscriber message.Subscriber, logger *slog.Logger) (*Consumer, error) {
	wmLogger := watermill.NewSlogLogger(logger)
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event router: %w", err)
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			Logger:          wmLogger,
		}.Middleware,
	)

	return &Consumer{router: router, subscriber: subscriber, logger: logger}, nil
}

// Handle registers fn for every message on topic. Payloads that do not
// decode are logged and acknowledged so they do not block the topic.
func (c *Consumer) Handle(topic string, fn HandlerFunc) {
	c.router.AddNoPublisherHandler(
		"edunexus-"+topic,
		topic,
		c.subscriber,
		func(msg *message.Message) error {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				c.logger.Error("Dropping malformed event", "topic", topic, "message_id", msg.UUID, "error", err)
				return nil
			}
			return fn(msg.Context(), event)
		},
	)
}

// Run blocks until ctx is cancelled or the router stops.
func (c *Consumer) Run(ctx context.Context) error {
	return c.router.Run(ctx)
}

// Running is closed once handlers are subscribed.
func (c *Consumer) Running() chan struct{} {
	return c.router.Running()
}

func (c *Consumer) Close() error {
	return c.router.Close()
}
