package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/conduit-identity/internal/domain/entity"
	"github.com/oksasatya/conduit-identity/internal/domain/repository"
	vo "github.com/oksasatya/conduit-identity/internal/domain/valueobject"
	"github.com/oksasatya/conduit-identity/pkg/helpers"
)

// UserRepository caches FindUserByEmail results in Redis. Redis is never
// authoritative: any Redis failure falls through to the wrapped repository.
type UserRepository struct {
	next   repository.UserRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *logrus.Logger
}

func NewUserRepository(next repository.UserRepository, rdb redis.Cmdable, ttl time.Duration, logger *logrus.Logger) *UserRepository {
	return &UserRepository{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func userKey(email vo.Email) string {
	return "user:email:" + email.String()
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email vo.Email) (*entity.User, error) {
	key := userKey(email)
	var cached entity.User
	hit, err := helpers.RedisGetJSON(ctx, r.rdb, key, &cached)
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("user cache read failed")
	}
	if hit {
		return &cached, nil
	}

	u, err := r.next.FindUserByEmail(ctx, email)
	if err != nil || u == nil {
		return u, err
	}
	if err := helpers.RedisSetJSON(ctx, r.rdb, key, u, r.ttl); err != nil {
		r.logger.WithError(err).WithField("key", key).Warn("user cache write failed")
	}
	return u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, username vo.Username, email vo.Email, passwordHash string) (*entity.User, error) {
	return r.next.CreateUser(ctx, username, email, passwordHash)
}

func (r *UserRepository) UpdateUser(ctx context.Context, email vo.Email, upd entity.UserUpdate) (*entity.User, error) {
	u, err := r.next.UpdateUser(ctx, email, upd)
	if err != nil {
		return nil, err
	}
	keys := []string{userKey(email)}
	if u.Email != email {
		keys = append(keys, userKey(u.Email))
	}
	if err := helpers.RedisDel(ctx, r.rdb, keys...); err != nil {
		r.logger.WithError(err).WithField("keys", keys).Warn("user cache invalidation failed")
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
