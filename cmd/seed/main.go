package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/oksasatya/conduit-identity/config"
	pginfra "github.com/oksasatya/conduit-identity/internal/infrastructure/postgres"
	"github.com/oksasatya/conduit-identity/pkg/helpers"
)

// seed upserts the jake fixture user used by the API examples.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migrations failed")
	}
	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{DSN: cfg.PostgresDSN(), MaxConns: 2, MinConns: 1})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	hasher, err := helpers.NewPasswordHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		logger.WithError(err).Fatal("password hasher")
	}

	email := "jake@jake.jake"
	username := "jake"
	password := "jakejake"
	bio := "I work at statefarm"
	hash, err := hasher.Hash(password)
	if err != nil {
		logger.WithError(err).Fatal("failed to hash password")
	}

	var id string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, bio)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET username = EXCLUDED.username, password_hash = EXCLUDED.password_hash, bio = EXCLUDED.bio, updated_at = now()
		RETURNING id
	`, email, username, hash, bio).Scan(&id)
	if err != nil {
		logger.WithError(err).Fatal("failed to seed user")
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", id, email, username, password)
}
