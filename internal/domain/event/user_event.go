package event

import (
	"context"
	"time"

	"github.com/oksasatya/conduit-identity/internal/domain/entity"
)

const (
	UserRegistered = "user.registered"
	UserUpdated    = "user.updated"
)

// UserEvent is the public projection of a user change. It never carries
// credentials.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	Bio        *string   `json:"bio"`
	Image      *string   `json:"image"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewUserEvent(typ string, u *entity.User, at time.Time) UserEvent {
	ev := UserEvent{
		Type:       typ,
		UserID:     u.ID,
		Email:      u.Email.String(),
		Username:   u.Username.String(),
		OccurredAt: at.UTC(),
	}
	if u.Bio != nil {
		s := u.Bio.String()
		ev.Bio = &s
	}
	if u.Image != nil {
		s := u.Image.String()
		ev.Image = &s
	}
	return ev
}

// Sink receives user events.
type Sink interface {
	Publish(ctx context.Context, ev UserEvent) error
}
