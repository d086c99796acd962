package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"4000" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	StoreBackend   string `env:"STORE_BACKEND" envDefault:"postgres" validate:"oneof=postgres dynamodb memory"`
	DatabaseURL    string `env:"DATABASE_URL"      validate:"required_if=StoreBackend postgres"`
	RunMigrations  bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	DynamoEndpoint string `env:"DYNAMODB_ENDPOINT"`
	DynamoRegion   string `env:"DYNAMODB_REGION" envDefault:"us-east-1"`
	DynamoTable    string `env:"DYNAMODB_TABLE" envDefault:"notes" validate:"required_if=StoreBackend dynamodb"`

	JWTSecret        string        `env:"JWT_SECRET,required"  validate:"required,min=32"`
	TokenTTL         time.Duration `env:"TOKEN_TTL" envDefault:"1h" validate:"gt=0"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"10" validate:"min=4,max=31"`
	CredentialPolicy string        `env:"CREDENTIAL_POLICY" envDefault:"strict" validate:"oneof=strict lenient"`

	MetricsPort     string   `env:"METRICS_PORT" envDefault:"9090"`
	CORSOrigins     []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173,http://localhost:5174" envSeparator:"," validate:"min=1,dive,required"`
	LoginRatePerMin int      `env:"LOGIN_RATE_PER_MIN" envDefault:"30" validate:"min=0"`
	// Empty means X-Forwarded-For is ignored and the socket address is the client IP.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:"," validate:"dive,cidr|ip"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) IsLocal() bool {
	return c.Env == "local"
}
