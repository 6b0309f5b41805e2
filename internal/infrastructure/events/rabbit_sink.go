package events

import (
	"context"
	"fmt"

	"github.com/oksasatya/conduit-identity/internal/domain/event"
)

type jsonPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// RabbitSink publishes user events to a durable queue.
type RabbitSink struct {
	pub jsonPublisher
}

func NewRabbitSink(pub jsonPublisher) *RabbitSink {
	return &RabbitSink{pub: pub}
}

func (s *RabbitSink) Publish(ctx context.Context, ev event.UserEvent) error {
	if err := s.pub.PublishJSON(ctx, ev.Type, ev); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

var _ event.Sink = (*RabbitSink)(nil)
