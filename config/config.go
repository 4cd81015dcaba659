// Package config loads service settings from the environment (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"

	MailSMTP = "smtp"
	MailSES  = "ses"
	MailLog  = "log"
)

type Config struct {
	AppEnv    string        `env:"APP_ENV" envDefault:"production"`
	Port      int           `env:"PORT" envDefault:"5000"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DB          DB
	Mongo       Mongo
	Redis       Redis
	Google      Google
	Mail        Mail
	Avatars     Avatars

	CORSOrigins                []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	RequireTokenForSetPassword bool          `env:"REQUIRE_TOKEN_FOR_SET_PASSWORD" envDefault:"false"`
	ConnectAttempts            int           `env:"CONNECT_ATTEMPTS" envDefault:"3"`
	ConnectBackoff             time.Duration `env:"CONNECT_BACKOFF" envDefault:"2s"`
	CacheRefreshWindow         time.Duration `env:"CACHE_REFRESH_WINDOW" envDefault:"24h"`
}

type DB struct {
	DSN      string `env:"DB_DSN"`
	Host     string `env:"DB_HOST"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"require"`
}

type Mongo struct {
	URL        string `env:"MONGODB_URL"`
	Database   string `env:"MONGODB_DATABASE" envDefault:"auth"`
	Collection string `env:"MONGODB_COLLECTION" envDefault:"users"`
}

type Redis struct {
	Host     string        `env:"REDIS_HOST"`
	Password string        `env:"REDIS_PASSWORD"`
	TTL      time.Duration `env:"CACHE_TTL" envDefault:"15m"`
}

type Google struct {
	ClientID      string        `env:"GOOGLE_CLIENT_ID"`
	ClientSecret  string        `env:"GOOGLE_CLIENT_SECRET"`
	VerifyIDToken bool          `env:"GOOGLE_VERIFY_ID_TOKEN" envDefault:"false"`
	Timeout       time.Duration `env:"GOOGLE_TIMEOUT" envDefault:"10s"`
}

type Mail struct {
	Driver   string `env:"MAIL_DRIVER" envDefault:"smtp"`
	FromName string `env:"MAIL_FROM_NAME" envDefault:"Reals TO Chat"`
	Username string `env:"GMAIL_EMAIL"`
	Password string `env:"GMAIL_PASSWORD"`
	SMTPHost string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort string `env:"SMTP_PORT" envDefault:"587"`
	SESFrom  string `env:"SES_FROM"`
}

type Avatars struct {
	Bucket  string `env:"BUCKET_NAME"`
	BaseURL string `env:"AVATAR_BASE_URL"`
}

// Load reads .env when present, then the process environment, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.Mail.Driver = strings.ToLower(strings.TrimSpace(cfg.Mail.Driver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DB.DSN == "" && c.DB.Host == "" {
			errs = append(errs, errors.New("DB_DSN or DB_HOST is required for the postgres store"))
		}
	case DriverMongo:
		if c.Mongo.URL == "" {
			errs = append(errs, errors.New("MONGODB_URL is required for the mongo store"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	switch c.Mail.Driver {
	case MailSMTP, MailLog:
	case MailSES:
		if c.Mail.SESFrom == "" {
			errs = append(errs, errors.New("SES_FROM is required for the ses mail driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_DRIVER %q", c.Mail.Driver))
	}
	if c.ConnectAttempts < 1 {
		errs = append(errs, errors.New("CONNECT_ATTEMPTS must be at least 1"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev" || c.AppEnv == "local"
}

// VerifyGoogleIDTokens reports whether Google sign-ins must carry a valid ID token.
func (c *Config) VerifyGoogleIDTokens() bool {
	return c.Google.VerifyIDToken && c.Google.ClientID != ""
}
