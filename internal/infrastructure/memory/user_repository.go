package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/oksasatya/conduit-identity/internal/domain/entity"
	"github.com/oksasatya/conduit-identity/internal/domain/repository"
	vo "github.com/oksasatya/conduit-identity/internal/domain/valueobject"
)

// UserRepository keeps users in process memory. Returned users are copies.
type UserRepository struct {
	mu     sync.RWMutex
	users  map[vo.Email]*entity.User
	nextID int
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[vo.Email]*entity.User)}
}

func (r *UserRepository) FindUserByEmail(_ context.Context, email vo.Email) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) CreateUser(_ context.Context, username vo.Username, email vo.Email, passwordHash string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts("", username, email) {
		return nil, repository.ErrUserAlreadyExists
	}
	r.nextID++
	now := time.Now().UTC()
	u := &entity.User{
		ID:           strconv.Itoa(r.nextID),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[email] = u
	cp := *u
	return &cp, nil
}

func (r *UserRepository) UpdateUser(_ context.Context, email vo.Email, upd entity.UserUpdate) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	next := *cur
	next.Apply(upd)
	if r.conflicts(cur.ID, next.Username, next.Email) {
		return nil, repository.ErrUserAlreadyExists
	}
	next.UpdatedAt = time.Now().UTC()
	delete(r.users, email)
	r.users[next.Email] = &next
	cp := next
	return &cp, nil
}

// conflicts reports whether another user already holds username or email.
func (r *UserRepository) conflicts(selfID string, username vo.Username, email vo.Email) bool {
	for _, u := range r.users {
		if u.ID == selfID {
			continue
		}
		if u.Email == email || u.Username == username {
			return true
		}
	}
	return false
}

var _ repository.UserRepository = (*UserRepository)(nil)
