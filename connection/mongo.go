package connection

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"user-auth/db"
)

const serverSelectionTimeout = 5 * time.Second

// ConnectMongo connects and pings MongoDB with bounded retries.
func ConnectMongo(ctx context.Context, uri, database string, attempts int, backoff time.Duration, log *zap.Logger) (*mongo.Database, *mongo.Client, error) {
	var client *mongo.Client
	err := db.Retry(ctx, attempts, backoff, log, "mongodb", func() error {
		c, err := mongo.Connect(ctx, options.Client().
			ApplyURI(uri).
			SetServerSelectionTimeout(serverSelectionTimeout))
		if err != nil {
			return err
		}
		if err := c.Ping(ctx, nil); err != nil {
			_ = c.Disconnect(ctx)
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	log.Info("MongoDB connected successfully")
	return client.Database(database), client, nil
}
