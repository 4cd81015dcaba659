package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-auth/config"
	"user-auth/mailer"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("JWT_SECRET", "bootstrap-secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("MAIL_DRIVER", "log")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("BUCKET_NAME", "")
	cfg, err := config.Parse()
	require.NoError(t, err)
	return cfg
}

func TestNewWithMemoryStore(t *testing.T) {
	app, err := New(context.Background(), memoryConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer app.Close(context.Background())

	assert.Nil(t, app.Cache)
	assert.Same(t, app.Store, app.Users)

	resp, err := app.Router.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/auth/verify-phone",
		Body:       `{"phone":"+15550100"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
}

func TestMailerSelection(t *testing.T) {
	cfg := memoryConfig(t)
	app := &App{Config: cfg, Log: zap.NewNop()}

	sender, err := app.mailer(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &mailer.LogSender{}, sender)

	cfg.Mail.Driver = config.MailSMTP
	sender, err = app.mailer(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &mailer.SMTPSender{}, sender)
}

func TestUnknownStoreDriver(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.StoreDriver = "sqlite"
	app, err := New(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "unknown store driver")
	assert.Nil(t, app)
}

func TestNewFailsWithUnreachableRedis(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Redis.Host = "127.0.0.1:1"
	cfg.ConnectAttempts = 1
	cfg.ConnectBackoff = 0
	app, err := New(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, app)
}

func TestCloseRunsClosersInReverse(t *testing.T) {
	var order []string
	app := &App{}
	app.closers = append(app.closers,
		func(context.Context) error { order = append(order, "db"); return nil },
		func(context.Context) error { order = append(order, "redis"); return errors.New("redis close") },
	)

	err := app.Close(context.Background())
	assert.ErrorContains(t, err, "redis close")
	assert.Equal(t, []string{"redis", "db"}, order)
	assert.NoError(t, app.Close(context.Background()))
	assert.Len(t, order, 2)
}

func TestResponseOrigin(t *testing.T) {
	assert.Equal(t, "*", responseOrigin([]string{"https://a.example", "*"}))
	assert.Equal(t, "https://a.example", responseOrigin([]string{"https://a.example"}))
	assert.Empty(t, responseOrigin([]string{"https://a.example", "https://b.example"}))
	assert.Empty(t, responseOrigin(nil))
}
