package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	JWTSecret       string        `env:"JWT_SECRET,       required"`
	TokenTTL        time.Duration `env:"TOKEN_TTL,        default=24h"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	Store           string        `env:"STORE,            default=mongo"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	// LoginRateLimit is the sustained number of POST /login requests per
	// second allowed from one client IP. Zero disables throttling.
	LoginRateLimit float64 `env:"LOGIN_RATE_LIMIT, default=5"`
	LoginBurst     int     `env:"LOGIN_BURST,      default=10"`

	Mongo      MongoConfig
	Redis      RedisConfig
	SuperAdmin SuperAdminConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// SuperAdminConfig is the account seeded at startup. Leaving the email empty
// skips account seeding.
type SuperAdminConfig struct {
	Name     string `env:"SUPERADMIN_NAME,  default=Super Admin"`
	Email    string `env:"SUPERADMIN_EMAIL"`
	Password string `env:"SUPERADMIN_PASSWORD"`
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through the given lookuper.
func LoadWith(l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StoreMongo, StoreMemory, c.Store)
	}
	if c.LoginRateLimit < 0 || c.LoginBurst < 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT and LOGIN_BURST must not be negative")
	}
	if c.SuperAdmin.Email != "" && len(c.SuperAdmin.Password) < 8 {
		return fmt.Errorf("SUPERADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}
