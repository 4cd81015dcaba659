package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"user-auth/bootstrap"
	"user-auth/config"
	"user-auth/logging"
	"user-auth/store"
)

const warmLimit = 5000

var app *bootstrap.App

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	log := logging.Must(cfg.IsDevelopment())
	app, err = bootstrap.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("Failed to start", zap.Error(err))
	}
}

func eventBridgeHandler(ctx context.Context, event events.CloudWatchEvent) (string, error) {
	app.Log.Info("EventBridge triggered cache refresh", zap.String("source", event.Source))
	if app.Cache == nil {
		return "No cache configured", nil
	}

	since := time.Now().Add(-app.Config.CacheRefreshWindow)
	n, err := store.Warm(ctx, app.Store, app.Cache, since, warmLimit)
	if err != nil {
		app.Log.Error("Error refreshing cache", zap.Error(err))
		return "Failed to refresh cache", err
	}
	return fmt.Sprintf("User cache refresh complete (%d users)", n), nil
}

func handler(ctx context.Context, rawEvent json.RawMessage) (interface{}, error) {
	var apiReq events.APIGatewayProxyRequest
	if err := json.Unmarshal(rawEvent, &apiReq); err == nil && apiReq.HTTPMethod != "" {
		return app.Router.Handle(ctx, apiReq)
	}

	var ebEvent events.CloudWatchEvent
	if err := json.Unmarshal(rawEvent, &ebEvent); err == nil && ebEvent.Source != "" {
		return eventBridgeHandler(ctx, ebEvent)
	}

	app.Log.Warn("Unknown event format")
	return nil, fmt.Errorf("unsupported event format")
}

func main() {
	defer app.Log.Sync()
	lambda.Start(handler)
}
