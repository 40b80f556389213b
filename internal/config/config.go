package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Auth     AuthConfig
	Redis    RedisConfig
}

type AppConfig struct {
	AppName        string `env:"APP_NAME,required,notEmpty"`
	Environment    string `env:"APP_ENV,required,notEmpty"`
	HTTPPort       string `env:"HTTP_PORT,required,notEmpty"`
	MigrationsAuto bool   `env:"MIGRATIONS_AUTO" envDefault:"true"`
	// StorageDriver is "postgres" or "memory". The memory driver keeps
	// everything in process and is meant for local runs.
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`

	ConnectTimeout        time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	QueryTimeout          time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`
	PoolMaxConns          int32         `env:"DB_POOL_MAX_CONNS" envDefault:"10"`
	PoolMinConns          int32         `env:"DB_POOL_MIN_CONNS" envDefault:"0"`
	PoolMaxConnLifetime   time.Duration `env:"DB_POOL_MAX_CONN_LIFETIME" envDefault:"1h"`
	PoolMaxConnIdleTime   time.Duration `env:"DB_POOL_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	PoolHealthCheckPeriod time.Duration `env:"DB_POOL_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

type JWTConfig struct {
	Secret    string        `env:"JWT_SECRET,required,notEmpty"`
	ExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"100h"`
}

type AuthConfig struct {
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// RedisConfig is optional; an empty address disables the profile cache.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"10m"`
}

var errInvalidConfig = errors.New("invalid configuration")

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var problems []string
	if c.JWT.ExpiresIn <= 0 {
		problems = append(problems, "JWT_EXPIRES_IN must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		problems = append(problems, "BCRYPT_COST must be between 4 and 31")
	}
	switch c.App.StorageDriver {
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DBName) == "" || strings.TrimSpace(c.Database.DBUser) == "" {
			problems = append(problems, "DB_NAME and DB_USER are required for the postgres driver")
		}
	case DriverMemory:
	default:
		problems = append(problems, "STORAGE_DRIVER must be postgres or memory")
	}
	if c.Database.QueryTimeout <= 0 {
		problems = append(problems, "DB_QUERY_TIMEOUT must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errInvalidConfig, strings.Join(problems, ", "))
	}
	return nil
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		strings.TrimSpace(c.DBHost),
		strings.TrimSpace(c.DBPort),
		strings.TrimSpace(c.DBUser),
		c.DBPassword,
		strings.TrimSpace(c.DBName),
		strings.TrimSpace(c.DBSSLMode),
	)
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}
