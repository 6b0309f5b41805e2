package container

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/conduit-identity/config"
	"github.com/oksasatya/conduit-identity/internal/application"
	"github.com/oksasatya/conduit-identity/internal/domain/event"
	"github.com/oksasatya/conduit-identity/internal/domain/repository"
	"github.com/oksasatya/conduit-identity/internal/infrastructure/cache"
	"github.com/oksasatya/conduit-identity/internal/infrastructure/events"
	"github.com/oksasatya/conduit-identity/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/conduit-identity/internal/infrastructure/postgres"
	"github.com/oksasatya/conduit-identity/internal/infrastructure/token"
	"github.com/oksasatya/conduit-identity/pkg/helpers"
)

// Container holds the process-wide components built once at startup.
// It replaces package-level singletons: everything is passed explicitly.
type Container struct {
	Config      *config.Config
	Logger      *logrus.Logger
	Tokens      *token.Codec
	UserService *application.Service

	closers []func()
}

// New wires a container around an already built repository and sinks.
func New(cfg *config.Config, logger *logrus.Logger, repo repository.UserRepository, sinks ...event.Sink) (*Container, error) {
	hasher, err := helpers.NewPasswordHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	codec := token.NewCodec([]byte(cfg.JWTSecret), cfg.JWTTTL, cfg.JWTIssuer)
	return &Container{
		Config:      cfg,
		Logger:      logger,
		Tokens:      codec,
		UserService: application.NewService(repo, codec, hasher, logger, sinks...),
	}, nil
}

// Build opens every backing service the config enables and wires the container.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	repo, err := buildRepository(ctx, cfg, logger, &closers)
	if err != nil {
		closeAll()
		return nil, err
	}
	sinks := buildSinks(ctx, cfg, logger, &closers)

	c, err := New(cfg, logger, repo, sinks...)
	if err != nil {
		closeAll()
		return nil, err
	}
	c.closers = closers
	return c, nil
}

// Close releases backing connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func buildRepository(ctx context.Context, cfg *config.Config, logger *logrus.Logger, closers *[]func()) (repository.UserRepository, error) {
	var repo repository.UserRepository
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory user storage; data is lost on restart")
		repo = memory.NewUserRepository()
	case config.StoragePostgres:
		if cfg.AutoMigrate {
			if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         cfg.PostgresDSN(),
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		*closers = append(*closers, pool.Close)
		repo = pginfra.NewUserRepository(pool)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable; user cache will fall through until it recovers")
		}
		*closers = append(*closers, func() { _ = rdb.Close() })
		repo = cache.NewUserRepository(repo, rdb, cfg.UserCacheTTL, logger)
	}
	return repo, nil
}

// buildSinks connects the optional event sinks. A sink that cannot be
// reached at startup is skipped, not fatal. When events go to the queue the
// events worker owns the search projection, so the API does not index too.
func buildSinks(ctx context.Context, cfg *config.Config, logger *logrus.Logger, closers *[]func()) []event.Sink {
	var sinks []event.Sink
	queued := false
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQUserEventsQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; user events disabled")
		} else {
			*closers = append(*closers, pub.Close)
			sinks = append(sinks, events.NewRabbitSink(pub))
			queued = true
		}
	}
	if !indexInline(cfg, queued) {
		return sinks
	}
	es, err := helpers.NewESClient(ctx, cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch unavailable; profile indexing disabled")
		return sinks
	}
	sink := events.NewSearchSink(es, cfg.ESUsersIndex)
	if err := sink.EnsureIndex(ctx); err != nil {
		logger.WithError(err).Warn("profile index not created; documents will use dynamic mapping")
	}
	return append(sinks, sink)
}

// indexInline reports whether the API itself should write the search index.
func indexInline(cfg *config.Config, queued bool) bool {
	return len(cfg.ESAddrs()) > 0 && !queued
}
