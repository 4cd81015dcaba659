package main

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"user-auth/bootstrap"
	"user-auth/config"
	"user-auth/logging"
	"user-auth/store"
)

const warmLimit = 5000

func handler(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.Must(cfg.IsDevelopment())
	defer log.Sync()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	if app.Cache == nil {
		return errors.New("REDIS_HOST is not set")
	}
	n, err := store.Warm(ctx, app.Store, app.Cache, time.Now().Add(-cfg.CacheRefreshWindow), warmLimit)
	if err != nil {
		return err
	}
	log.Info("user cache refreshed", zap.Int("users", n), zap.Duration("window", cfg.CacheRefreshWindow))
	return nil
}

func main() {
	lambda.Start(handler)
}
