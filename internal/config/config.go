package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// exampleJWTSecret ships in .env.example and must never reach production.
const exampleJWTSecret = "change-me-in-production"

type Config struct {
	// Application
	AppName string `env:"APP_NAME" envDefault:"Folio"`
	AppEnv  string `env:"APP_ENV,required"` // 'development' or 'production'
	AppURL  string `env:"APP_URL,required"` // base URL for OAuth redirects and email links
	Port    string `env:"PORT" envDefault:"8090"`

	// Database (sqlite by default, pgx for PostgreSQL)
	DBDriver     string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBConnection string `env:"DB_CONNECTION" envDefault:"./data/folio.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"`

	// Security
	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`

	// OAuth
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`

	// Email (RESEND_API_KEY optional in development, required in production)
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"noreply@example.com"`
	NotifyEmail  string `env:"NOTIFY_EMAIL"` // receives new-message notifications
	ResendAPIKey string `env:"RESEND_API_KEY"`

	// Observability (optional)
	SentryDSN string `env:"SENTRY_DSN"`

	// Storage
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"s3"` // 's3' or 'memory'
	S3Region      string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket      string `env:"S3_BUCKET" envDefault:"folio"`
	S3AccessKey   string `env:"S3_ACCESS_KEY"`
	S3SecretKey   string `env:"S3_SECRET_KEY"`
	S3Endpoint    string `env:"S3_ENDPOINT"`   // MinIO, R2, DO Spaces...
	S3PublicURL   string `env:"S3_PUBLIC_URL"` // CDN or custom domain in front of the bucket

	// Cache (memory unless REDIS_URL is set)
	RedisURL    string        `env:"REDIS_URL"`
	CachePrefix string        `env:"CACHE_PREFIX" envDefault:"folio:"`
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	// HTTP
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Jobs
	OrphanSweepSchedule string        `env:"ORPHAN_SWEEP_SCHEDULE"` // cron expression, empty disables
	OrphanGracePeriod   time.Duration `env:"ORPHAN_GRACE_PERIOD" envDefault:"24h"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.AppURL = strings.TrimSuffix(cfg.AppURL, "/")

	if cfg.IsProduction() {
		if err := validateProduction(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows email and storage to use fallback modes for easier local testing.
func validateProduction(cfg *Config) error {
	var errs []error
	if cfg.ResendAPIKey == "" {
		errs = append(errs, errors.New("production deployment requires RESEND_API_KEY"))
	}
	if cfg.JWTSecret == exampleJWTSecret || len(cfg.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be a random value of at least 32 bytes"))
	}
	if cfg.StorageDriver == "memory" {
		errs = append(errs, errors.New("STORAGE_DRIVER=memory is for development only"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

func (c *Config) OrphanSweepEnabled() bool {
	return c.OrphanSweepSchedule != ""
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName: c.AppName,
		AppEnv:  c.AppEnv,
		AppURL:  c.AppURL,
		Port:    c.Port,

		EmailFrom: c.EmailFrom,

		GoogleClientID: c.GoogleClientID,
		GitHubClientID: c.GitHubClientID,

		StorageDriver: c.StorageDriver,
		S3Endpoint:    c.S3Endpoint,
	}
}
