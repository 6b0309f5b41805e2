package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/conduit-identity/internal/domain/entity"
	"github.com/oksasatya/conduit-identity/internal/domain/repository"
	vo "github.com/oksasatya/conduit-identity/internal/domain/valueobject"
)

const uniqueViolation = "23505"

const userColumns = `id, email, username, password_hash, bio, image, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email vo.Email) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email.String())

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, username vo.Username, email vo.Email, passwordHash string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		email.String(), username.String(), passwordHash)

	u, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, repository.ErrUserAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, email vo.Email, upd entity.UserUpdate) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET username      = COALESCE($2, username),
		    email         = COALESCE($3, email),
		    password_hash = COALESCE($4, password_hash),
		    bio           = COALESCE($5, bio),
		    image         = COALESCE($6, image),
		    updated_at    = now()
		WHERE email = $1
		RETURNING `+userColumns,
		email.String(),
		stringer(upd.Username),
		stringer(upd.Email),
		upd.PasswordHash,
		stringer(upd.Bio),
		stringer(upd.Image),
	)

	u, err := scanUser(row)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, repository.ErrUserNotFound
	case isUniqueViolation(err):
		return nil, repository.ErrUserAlreadyExists
	case err != nil:
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u               entity.User
		email, username string
		bio, image      *string
	)
	if err := row.Scan(&u.ID, &email, &username, &u.PasswordHash, &bio, &image, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if u.Email, err = vo.NewEmail(email); err != nil {
		return nil, err
	}
	if u.Username, err = vo.NewUsername(username); err != nil {
		return nil, err
	}
	if u.Bio, err = vo.OptionalBio(bio); err != nil {
		return nil, err
	}
	if u.Image, err = vo.OptionalImage(image); err != nil {
		return nil, err
	}
	return &u, nil
}

// stringer turns an optional value object into a nullable SQL parameter.
func stringer[T fmt.Stringer](v *T) *string {
	if v == nil {
		return nil
	}
	s := (*v).String()
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ repository.UserRepository = (*UserRepository)(nil)
