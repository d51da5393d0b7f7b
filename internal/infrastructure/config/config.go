package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/prbusiness/dashboard/internal/core/access"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// NavPolicy selects how held roles map to navigation: union or active_role.
	NavPolicy    string `env:"NAV_POLICY,    default=union"`
	Locale       string `env:"LOCALE,        default=en"`
	EventWorkers int    `env:"EVENT_WORKERS, default=4"`

	Backend BackendConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:8081"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=10s"`
}

type SessionConfig struct {
	// Driver is memory or redis.
	Driver       string        `env:"SESSION_DRIVER,        default=memory"`
	TTL          time.Duration `env:"SESSION_TTL,           default=168h"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=false"`
}

// MongoConfig is optional; an empty URI disables the session audit trail.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=prb_dashboard"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// DevBackendConfig configures cmd/devbackend.
type DevBackendConfig struct {
	Port       string        `env:"DEV_BACKEND_PORT,        default=8081"`
	Env        string        `env:"ENV,                     default=development"`
	LogLevel   string        `env:"LOG_LEVEL,               default=info"`
	JWTSecret  string        `env:"DEV_BACKEND_JWT_SECRET,  default=dev-backend-secret"`
	AccessTTL  time.Duration `env:"DEV_BACKEND_ACCESS_TTL,  default=15m"`
	RefreshTTL time.Duration `env:"DEV_BACKEND_REFRESH_TTL, default=168h"`
}

const devCookieSecret = "dev-insecure-cookie-secret"

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Mode returns the parsed navigation policy mode.
func (c *Config) Mode() access.Mode {
	m, _ := access.ParseMode(c.NavPolicy)
	return m
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = devCookieSecret
	}
	if _, err := access.ParseMode(c.NavPolicy); err != nil {
		return err
	}
	switch c.Session.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown SESSION_DRIVER %q", c.Session.Driver)
	}
	switch c.Locale {
	case "en", "zh":
	default:
		return fmt.Errorf("unsupported LOCALE %q", c.Locale)
	}
	if c.EventWorkers < 1 {
		c.EventWorkers = 1
	}
	return nil
}

// LoadDevBackend reads the development backend configuration.
func LoadDevBackend(ctx context.Context) (*DevBackendConfig, error) {
	var cfg DevBackendConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
