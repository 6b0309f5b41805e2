package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/conduit-identity/internal/domain/entity"
	vo "github.com/oksasatya/conduit-identity/internal/domain/valueobject"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
)

// UserRepository defines the persistence operations the use cases rely on.
type UserRepository interface {
	// FindUserByEmail returns nil, nil when no user matches.
	FindUserByEmail(ctx context.Context, email vo.Email) (*entity.User, error)
	// CreateUser fails with ErrUserAlreadyExists on a duplicate email or username.
	CreateUser(ctx context.Context, username vo.Username, email vo.Email, passwordHash string) (*entity.User, error)
	// UpdateUser fails with ErrUserNotFound when the target no longer exists.
	UpdateUser(ctx context.Context, email vo.Email, upd entity.UserUpdate) (*entity.User, error)
}
