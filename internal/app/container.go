package app

import (
	"context"
	"fmt"
	"log"

	"devlink/internal/config"
	"devlink/internal/database/migration"
	dbpostgres "devlink/internal/database/postgres"
	"devlink/internal/domain/account"
	"devlink/internal/domain/profile"
	"devlink/internal/domain/user"
	"devlink/internal/infrastructure/cache"
	"devlink/internal/infrastructure/persistence/memory"
	"devlink/internal/infrastructure/persistence/postgres"
	"devlink/internal/metrics"
	"devlink/internal/pkg/jwt"
	"devlink/internal/pkg/password"
	"devlink/internal/pkg/sanitize"
	"devlink/internal/pkg/validation"
	authuc "devlink/internal/usecase/auth"
	profileuc "devlink/internal/usecase/profile"
	useruc "devlink/internal/usecase/user"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// storage is one backend's view of users and profiles.
type storage struct {
	users    user.Repository
	profiles profile.Repository
	tx       account.Transactor
	pinger   interface{ Ping(context.Context) error }
	close    func() error
}

type Container struct {
	Config config.Config
	Logger *log.Logger

	Cache     *cache.Redis
	Metrics   *metrics.Collector
	Tokens    *jwt.HMACService
	Validator *validation.Validator

	Auth    *authuc.Service
	Users   *useruc.Service
	Profile *profileuc.Service

	store storage
}

func NewContainer(ctx context.Context, cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Cache:     cache.NewRedis(cfg.Redis, logger),
		Metrics:   metrics.NewCollector(reg),
		Tokens:    jwt.NewHMACService(cfg.JWT.Secret, cfg.JWT.ExpiresIn),
		Validator: validation.New(),
		store:     st,
	}

	c.Auth = authuc.NewService(st.users, password.NewBcryptHasher(cfg.Auth.BcryptCost), c.Tokens)
	c.Profile = profileuc.NewService(st.profiles, st.users,
		profileuc.WithCache(c.Cache),
		profileuc.WithTextCleaner(sanitize.NewText()),
		profileuc.WithLogger(logger),
	)
	c.Users = useruc.NewService(st.users, st.tx, c.Profile)

	return c, nil
}

func openStorage(ctx context.Context, cfg config.Config, logger *log.Logger) (storage, error) {
	switch cfg.App.StorageDriver {
	case config.DriverMemory:
		logger.Printf("[App] using in-memory storage; data is lost on restart")
		s := memory.NewStore()
		return storage{
			users:    s.Users(),
			profiles: s.Profiles(),
			tx:       s.Transactor(),
			pinger:   s,
			close:    func() error { return nil },
		}, nil

	case config.DriverPostgres, "":
		pool, err := dbpostgres.Connect(ctx, cfg.Database, cfg.App.AppName, logger)
		if err != nil {
			return storage{}, fmt.Errorf("connect database: %w", err)
		}
		if cfg.App.MigrationsAuto {
			if err := migration.Default(logger).Run(ctx, pool.SQLDB()); err != nil {
				_ = pool.Close()
				return storage{}, fmt.Errorf("run migrations: %w", err)
			}
		}

		timeout := cfg.Database.QueryTimeout
		return storage{
			users:    postgres.NewUserRepository(pool, timeout),
			profiles: postgres.NewProfileRepository(pool, timeout),
			tx:       postgres.NewAccountTransactor(pool, timeout),
			pinger:   pool,
			close:    pool.Close,
		}, nil

	default:
		return storage{}, fmt.Errorf("unknown storage driver %q", cfg.App.StorageDriver)
	}
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.store.close != nil {
		return c.store.close()
	}
	return nil
}
