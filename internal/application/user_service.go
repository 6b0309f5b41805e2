package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/conduit-identity/internal/domain/apperror"
	"github.com/oksasatya/conduit-identity/internal/domain/entity"
	"github.com/oksasatya/conduit-identity/internal/domain/event"
	repo "github.com/oksasatya/conduit-identity/internal/domain/repository"
	vo "github.com/oksasatya/conduit-identity/internal/domain/valueobject"
	"github.com/oksasatya/conduit-identity/internal/infrastructure/token"
	"github.com/oksasatya/conduit-identity/pkg/helpers"
)

// TokenIssuer signs tokens for a user identity.
type TokenIssuer interface {
	Issue(username vo.Username, email vo.Email) (vo.Token, error)
}

type Service struct {
	Repo   repo.UserRepository
	Tokens TokenIssuer
	Hasher helpers.PasswordHasher
	Sinks  []event.Sink
	Logger *logrus.Logger
	now    func() time.Time
}

func NewService(r repo.UserRepository, tokens TokenIssuer, hasher helpers.PasswordHasher, logger *logrus.Logger, sinks ...event.Sink) *Service {
	return &Service{
		Repo:   r,
		Tokens: tokens,
		Hasher: hasher,
		Sinks:  sinks,
		Logger: logger,
		now:    time.Now,
	}
}

// UserDTO is the public view of a user returned by every use case.
type UserDTO struct {
	Email    vo.Email    `json:"email"`
	Token    vo.Token    `json:"token"`
	Username vo.Username `json:"username"`
	Bio      *vo.Bio     `json:"bio"`
	Image    *vo.Image   `json:"image"`
}

func toDTO(u *entity.User, tok vo.Token) *UserDTO {
	return &UserDTO{Email: u.Email, Token: tok, Username: u.Username, Bio: u.Bio, Image: u.Image}
}

type LoginUser struct {
	Email    vo.Email
	Password vo.Password
}

type NewUser struct {
	Username vo.Username
	Email    vo.Email
	Password vo.Password
}

// UpdateUser holds the optional fields of a profile update.
type UpdateUser struct {
	Username *vo.Username
	Email    *vo.Email
	Password *vo.Password
	Bio      *vo.Bio
	Image    *vo.Image
}

func (s *Service) Login(ctx context.Context, in LoginUser) (*UserDTO, error) {
	u, err := s.Repo.FindUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if u == nil {
		return nil, apperror.UserNotFound(in.Email.String())
	}
	if !s.Hasher.Matches(u.PasswordHash, in.Password.Plain()) {
		return nil, apperror.InvalidCredentials()
	}
	if s.Hasher.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, u.Email, in.Password)
	}

	tok, err := s.Tokens.Issue(u.Username, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return toDTO(u, tok), nil
}

func (s *Service) Register(ctx context.Context, in NewUser) (*UserDTO, error) {
	hash, err := s.Hasher.Hash(in.Password.Plain())
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.Repo.CreateUser(ctx, in.Username, in.Email, hash)
	if errors.Is(err, repo.ErrUserAlreadyExists) {
		return nil, apperror.UserAlreadyExists(err)
	}
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	tok, err := s.Tokens.Issue(u.Username, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.publish(ctx, event.UserRegistered, u)
	return toDTO(u, tok), nil
}

// GetCurrentUser echoes the presented token rather than issuing a new one.
func (s *Service) GetCurrentUser(ctx context.Context, info *token.TokenInfo) (*UserDTO, error) {
	u, err := s.Repo.FindUserByEmail(ctx, info.Email())
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	if u == nil {
		return nil, apperror.UserNotFound(info.Email().String())
	}
	return toDTO(u, info.Token()), nil
}

// UpdateCurrentUser echoes the presented token unless the update changed
// the username or email the token was signed for.
func (s *Service) UpdateCurrentUser(ctx context.Context, info *token.TokenInfo, in UpdateUser) (*UserDTO, error) {
	upd := entity.UserUpdate{
		Username: in.Username,
		Email:    in.Email,
		Bio:      in.Bio,
		Image:    in.Image,
	}
	if in.Password != nil {
		hash, err := s.Hasher.Hash(in.Password.Plain())
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		upd.PasswordHash = &hash
	}

	u, err := s.Repo.UpdateUser(ctx, info.Email(), upd)
	switch {
	case errors.Is(err, repo.ErrUserNotFound):
		return nil, apperror.UserNotFound(info.Email().String())
	case errors.Is(err, repo.ErrUserAlreadyExists):
		return nil, apperror.UserAlreadyExists(err)
	case err != nil:
		return nil, fmt.Errorf("update current user: %w", err)
	}

	tok := info.Token()
	if u.Username != info.Username() || u.Email != info.Email() {
		if tok, err = s.Tokens.Issue(u.Username, u.Email); err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
	}
	s.publish(ctx, event.UserUpdated, u)
	return toDTO(u, tok), nil
}

// rehash upgrades a stored hash to the configured scheme. Failures are
// logged; the old hash keeps verifying.
func (s *Service) rehash(ctx context.Context, email vo.Email, pass vo.Password) {
	hash, err := s.Hasher.Hash(pass.Plain())
	if err == nil {
		_, err = s.Repo.UpdateUser(ctx, email, entity.UserUpdate{PasswordHash: &hash})
	}
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", email.String()).Warn("password rehash failed")
	}
}

// publish fans an event out to every sink. Sink failures are logged and
// never fail the request.
func (s *Service) publish(ctx context.Context, typ string, u *entity.User) {
	if len(s.Sinks) == 0 {
		return
	}
	ev := event.NewUserEvent(typ, u, s.now())
	for _, sink := range s.Sinks {
		if err := sink.Publish(ctx, ev); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"event": typ, "email": ev.Email}).Warn("user event not delivered")
		}
	}
}
