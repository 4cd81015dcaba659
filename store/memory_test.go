package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-auth/model"
)

func TestMemoryStoreSparseUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// records without email or phone never collide
	require.NoError(t, s.Create(ctx, &model.User{Name: "a"}))
	require.NoError(t, s.Create(ctx, &model.User{Name: "b"}))

	require.NoError(t, s.Create(ctx, &model.User{Email: model.StringPtr("ann@x.com")}))
	err := s.Create(ctx, &model.User{Email: model.StringPtr("ann@x.com")})
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, FieldEmail, dup.Field)

	require.NoError(t, s.Create(ctx, &model.User{Phone: model.StringPtr("+15550001")}))
	err = s.Create(ctx, &model.User{Phone: model.StringPtr("+15550001")})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, FieldPhone, dup.Field)

	require.NoError(t, s.Create(ctx, &model.User{GoogleID: model.StringPtr("g-1")}))
	err = s.Create(ctx, &model.User{GoogleID: model.StringPtr("g-1")})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, FieldGoogleID, dup.Field)
}

func TestMemoryStoreFindOne(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := &model.User{Email: model.StringPtr("ann@x.com"), Phone: model.StringPtr("+1555")}
	require.NoError(t, s.Create(ctx, u))
	require.NoError(t, s.Create(ctx, &model.User{Email: model.StringPtr("bob@x.com")}))

	got, err := s.FindOne(ctx, Filter{Email: "ann@x.com"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.FindOne(ctx, Filter{Email: "ann@x.com", Phone: "+1555"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.FindOne(ctx, Filter{Email: "bob@x.com", Phone: "+1555"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindOne(ctx, Filter{Phone: "+1999"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindOne(ctx, Filter{})
	assert.Error(t, err)
}

func TestMemoryStoreSave(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a := &model.User{Email: model.StringPtr("a@x.com")}
	b := &model.User{Email: model.StringPtr("b@x.com"), Phone: model.StringPtr("+1")}
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))

	a.Phone = model.StringPtr("+1")
	err := s.Save(ctx, a)
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, FieldPhone, dup.Field)

	a.Phone = model.StringPtr("+2")
	a.Email = model.StringPtr("a2@x.com")
	require.NoError(t, s.Save(ctx, a))

	_, err = s.FindOne(ctx, Filter{Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrNotFound, "old email index entry must be released")
	got, err := s.FindOne(ctx, Filter{Phone: "+2"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	err = s.Save(ctx, &model.User{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := &model.User{Name: "before"}
	require.NoError(t, s.Create(ctx, u))

	got, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "before", again.Name)
}

func TestMemoryStoreConcurrentCreateOneWinner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Create(ctx, &model.User{Email: model.StringPtr("race@x.com")})
		}()
	}
	wg.Wait()
	close(errs)

	ok, dups := 0, 0
	for err := range errs {
		var dup *DuplicateKeyError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &dup):
			dups++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dups)
}

func TestMemoryStoreListUpdatedSince(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	cutoff := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Create(ctx, &model.User{}))
	}

	users, err := s.ListUpdatedSince(ctx, cutoff, 2)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = s.ListUpdatedSince(ctx, time.Now().Add(time.Hour), 0)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestDuplicateFieldFromIndexNames(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"idx_users_email", FieldEmail},
		{"idx_users_phone", FieldPhone},
		{"idx_users_google_id", FieldGoogleID},
		{"googleId_1", FieldGoogleID},
		{"pkey", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, duplicateField(tt.in), tt.in)
	}

	msg := `E11000 duplicate key error collection: auth.users index: email_1 dup key: { email: "phone@x.com" }`
	assert.Equal(t, "email_1", indexName(msg))
	assert.Equal(t, FieldEmail, duplicateField(indexName(msg)))
}
