// Package bootstrap assembles the service from configuration. Both Lambda entry
// points and the local server start here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"go.uber.org/zap"

	"user-auth/api"
	"user-auth/auth"
	"user-auth/config"
	"user-auth/connection"
	"user-auth/db"
	"user-auth/google"
	"user-auth/mailer"
	"user-auth/services"
	"user-auth/storage"
	"user-auth/store"
)

type App struct {
	Config  *config.Config
	Log     *zap.Logger
	Store   store.UserStore
	Users   store.UserStore
	Cache   *store.RedisCache
	Service *services.AuthService
	Router  *api.Router

	awsCfg  *aws.Config
	closers []func(context.Context) error
}

// New connects every backing service named by cfg. On error anything already
// opened is closed again.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}
	ready := false
	defer func() {
		if !ready {
			_ = app.Close(context.Background())
		}
	}()

	var err error
	if app.Store, err = app.openStore(ctx); err != nil {
		return nil, err
	}
	app.Users = app.Store
	if cfg.Redis.Host != "" {
		client, err := connection.InitRedis(ctx, cfg.Redis.Host, cfg.Redis.Password, cfg.ConnectAttempts, cfg.ConnectBackoff, log)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func(context.Context) error { return client.Close() })
		app.Cache = store.NewRedisCache(client, cfg.Redis.TTL)
		app.Users = store.NewCachedStore(app.Store, app.Cache, log)
	}

	deps := services.Deps{
		Users:  app.Users,
		Hasher: auth.NewHasher(),
		Tokens: auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Phones: google.NewPhoneLookup(cfg.Google.ClientID, cfg.Google.ClientSecret),
		Log:    log,
	}
	if deps.Mail, err = app.mailer(ctx); err != nil {
		return nil, err
	}
	if cfg.VerifyGoogleIDTokens() {
		deps.IDTokens = google.NewIDTokenVerifier(cfg.Google.ClientID)
	}
	if cfg.Avatars.Bucket != "" {
		awsCfg, err := app.aws(ctx)
		if err != nil {
			return nil, err
		}
		deps.Avatars = storage.NewS3Client(s3.NewFromConfig(awsCfg), cfg.Avatars.Bucket, cfg.Avatars.BaseURL)
	}

	app.Service = services.NewAuthService(deps, services.Options{
		RequireTokenForSetPassword: cfg.RequireTokenForSetPassword,
		GoogleClientID:             cfg.Google.ClientID,
		GoogleClientSecret:         cfg.Google.ClientSecret,
		GoogleTimeout:              cfg.Google.Timeout,
	})
	app.Router = api.NewRouter(app.Service, log, responseOrigin(cfg.CORSOrigins))
	log.Info("service ready",
		zap.String("store", cfg.StoreDriver),
		zap.Bool("cache", app.Cache != nil),
		zap.String("mail", cfg.Mail.Driver),
		zap.Bool("avatars", deps.Avatars != nil),
		zap.Bool("google_phone", cfg.Google.ClientID != "" && cfg.Google.ClientSecret != ""))
	ready = true
	return app, nil
}

func (a *App) openStore(ctx context.Context) (store.UserStore, error) {
	cfg := a.Config
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		gdb, err := db.InitDB(ctx, db.Options{
			DSN:      cfg.DB.DSN,
			Host:     cfg.DB.Host,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			Name:     cfg.DB.Name,
			Port:     cfg.DB.Port,
			SSLMode:  cfg.DB.SSLMode,
			Attempts: cfg.ConnectAttempts,
			Backoff:  cfg.ConnectBackoff,
		}, a.Log)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := gdb.DB(); err == nil {
			a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })
		}
		return store.NewPostgresStore(gdb), nil
	case config.DriverMongo:
		database, client, err := connection.ConnectMongo(ctx, cfg.Mongo.URL, cfg.Mongo.Database, cfg.ConnectAttempts, cfg.ConnectBackoff, a.Log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)
		return store.NewMongoStore(ctx, database, cfg.Mongo.Collection)
	case config.DriverMemory:
		a.Log.Warn("using in-memory user store; data is lost on restart")
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func (a *App) mailer(ctx context.Context) (mailer.Sender, error) {
	m := a.Config.Mail
	switch m.Driver {
	case config.MailSES:
		awsCfg, err := a.aws(ctx)
		if err != nil {
			return nil, err
		}
		return mailer.NewSESSender(sesv2.NewFromConfig(awsCfg), m.SESFrom), nil
	case config.MailLog:
		return mailer.NewLogSender(a.Log), nil
	}
	if m.Username == "" || m.Password == "" {
		a.Log.Warn("GMAIL_EMAIL or GMAIL_PASSWORD not set; OTP emails will fail")
	}
	return mailer.NewSMTPSender(m.SMTPHost, m.SMTPPort, m.Username, m.Password, m.FromName), nil
}

func (a *App) aws(ctx context.Context) (aws.Config, error) {
	if a.awsCfg != nil {
		return *a.awsCfg, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	a.awsCfg = &cfg
	return cfg, nil
}

// responseOrigin picks the single Access-Control-Allow-Origin value Lambda
// responses carry. Several origins are only honoured by the local server.
func responseOrigin(origins []string) string {
	for _, o := range origins {
		if o == "*" {
			return "*"
		}
	}
	if len(origins) == 1 {
		return strings.TrimSpace(origins[0])
	}
	return ""
}

// Close releases connections in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
