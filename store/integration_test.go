package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-auth/connection"
	"user-auth/db"
	"user-auth/model"
)

// exerciseStore runs the shared contract against a live backend.
func exerciseStore(t *testing.T, s UserStore) {
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	email := "ann-" + suffix + "@x.com"
	phone := "+1555" + suffix

	ann := &model.User{Name: "Ann", Email: model.StringPtr(email), Phone: model.StringPtr(phone)}
	require.NoError(t, s.Create(ctx, ann))
	require.NotEmpty(t, ann.ID)

	// absent values never collide
	require.NoError(t, s.Create(ctx, &model.User{Name: "no-email-1"}))
	require.NoError(t, s.Create(ctx, &model.User{Name: "no-email-2"}))

	var dup *DuplicateKeyError
	require.ErrorAs(t, s.Create(ctx, &model.User{Email: model.StringPtr(email)}), &dup)
	assert.Equal(t, FieldEmail, dup.Field)
	require.ErrorAs(t, s.Create(ctx, &model.User{Phone: model.StringPtr(phone)}), &dup)
	assert.Equal(t, FieldPhone, dup.Field)

	got, err := s.FindOne(ctx, Filter{Email: email, Phone: phone})
	require.NoError(t, err)
	assert.Equal(t, ann.ID, got.ID)

	got.Name = "Ann B"
	got.GoogleID = model.StringPtr("g-" + suffix)
	require.NoError(t, s.Save(ctx, got))

	byID, err := s.FindByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann B", byID.Name)
	assert.Equal(t, "g-"+suffix, byID.GoogleIDValue())

	_, err = s.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	recent, err := s.ListUpdatedSince(ctx, time.Now().Add(-time.Minute), 10)
	require.NoError(t, err)
	assert.NotEmpty(t, recent)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	database, err := db.InitDB(context.Background(), db.Options{DSN: dsn, Attempts: 1}, zap.NewNop())
	require.NoError(t, err)
	exerciseStore(t, NewPostgresStore(database))
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGODB_URL")
	if uri == "" {
		t.Skip("TEST_MONGODB_URL not set")
	}
	ctx := context.Background()
	database, client, err := connection.ConnectMongo(ctx, uri, "user_auth_test", 1, time.Second, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	s, err := NewMongoStore(ctx, database, "users_"+uuid.NewString()[:8])
	require.NoError(t, err)
	exerciseStore(t, s)
}
