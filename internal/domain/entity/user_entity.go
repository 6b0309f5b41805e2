package entity

import (
	"time"

	vo "github.com/oksasatya/conduit-identity/internal/domain/valueobject"
)

// User is the aggregate root for the user domain.
// PasswordHash holds the output of the configured password hasher, never
// the raw password.
type User struct {
	ID           string      `json:"id"`
	Email        vo.Email    `json:"email"`
	Username     vo.Username `json:"username"`
	PasswordHash string      `json:"password_hash"`
	Bio          *vo.Bio     `json:"bio"`
	Image        *vo.Image   `json:"image"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// UserUpdate carries the optional fields of a profile update. A nil field
// is left unchanged.
type UserUpdate struct {
	Username     *vo.Username
	Email        *vo.Email
	PasswordHash *string
	Bio          *vo.Bio
	Image        *vo.Image
}

// Apply copies the set fields of upd onto u.
func (u *User) Apply(upd UserUpdate) {
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Bio != nil {
		b := *upd.Bio
		u.Bio = &b
	}
	if upd.Image != nil {
		i := *upd.Image
		u.Image = &i
	}
}
