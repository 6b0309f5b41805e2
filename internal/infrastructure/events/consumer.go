package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oksasatya/conduit-identity/internal/domain/event"
)

// ErrMalformedEvent marks a delivery that can never be processed and should
// be dropped rather than requeued.
var ErrMalformedEvent = errors.New("malformed user event")

// Forward decodes one queued user event and hands it to sink.
func Forward(ctx context.Context, body []byte, sink event.Sink) (event.UserEvent, error) {
	var ev event.UserEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.UserID == "" || ev.Email == "" || (ev.Type != event.UserRegistered && ev.Type != event.UserUpdated) {
		return ev, fmt.Errorf("%w: type %q user %q email %q", ErrMalformedEvent, ev.Type, ev.UserID, ev.Email)
	}
	if err := sink.Publish(ctx, ev); err != nil {
		return ev, err
	}
	return ev, nil
}
