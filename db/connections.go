package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"user-auth/model"
)

// Options describes how to reach Postgres. DSN wins over the individual fields.
type Options struct {
	DSN      string
	Host     string
	User     string
	Password string
	Name     string
	Port     int
	SSLMode  string
	Attempts int
	Backoff  time.Duration
}

func (o Options) dsn() string {
	if o.DSN != "" {
		return o.DSN
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		o.Host, o.User, o.Password, o.Name, o.Port, o.SSLMode)
}

// InitDB opens the database, retrying a bounded number of times, and migrates the users table.
func InitDB(ctx context.Context, opts Options, log *zap.Logger) (*gorm.DB, error) {
	var database *gorm.DB
	err := Retry(ctx, opts.Attempts, opts.Backoff, log, "postgres", func() error {
		conn, err := gorm.Open(postgres.Open(opts.dsn()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			// gorm returns the handle even when its automatic ping fails.
			closeConn(conn)
			return err
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return err
		}
		database = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("Successfully connected to the database")

	if err := database.WithContext(ctx).AutoMigrate(&model.User{}); err != nil {
		closeConn(database)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	log.Info("Migrated")
	return database, nil
}

func closeConn(conn *gorm.DB) {
	if conn == nil || conn.ConnPool == nil {
		return
	}
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Retry runs fn up to attempts times, sleeping backoff between failures.
func Retry(ctx context.Context, attempts int, backoff time.Duration, log *zap.Logger, what string, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		log.Warn("connection attempt failed",
			zap.String("target", what), zap.Int("attempt", attempt), zap.Error(err))
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
