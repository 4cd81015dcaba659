package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"user-auth/model"
)

// ProfileCache holds user records by id. Get returns (nil, nil) on a miss.
type ProfileCache interface {
	Get(ctx context.Context, id string) (*model.User, error)
	Set(ctx context.Context, users ...model.User) error
	Delete(ctx context.Context, id string) error
}

// CachedStore reads FindByID through a ProfileCache and writes through on Create and Save.
// Cache failures are logged and never fail the request.
type CachedStore struct {
	UserStore
	cache ProfileCache
	log   *zap.Logger
}

func NewCachedStore(inner UserStore, cache ProfileCache, log *zap.Logger) *CachedStore {
	return &CachedStore{UserStore: inner, cache: cache, log: log}
}

func (s *CachedStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.cache.Get(ctx, id)
	if err != nil {
		s.log.Warn("profile cache read failed", zap.String("user_id", id), zap.Error(err))
	}
	if u != nil {
		return u, nil
	}
	u, err = s.UserStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, u)
	return u, nil
}

func (s *CachedStore) Create(ctx context.Context, u *model.User) error {
	if err := s.UserStore.Create(ctx, u); err != nil {
		return err
	}
	s.remember(ctx, u)
	return nil
}

func (s *CachedStore) Save(ctx context.Context, u *model.User) error {
	if err := s.UserStore.Save(ctx, u); err != nil {
		// the record may have changed underneath the cached copy
		s.forget(ctx, u.ID)
		return err
	}
	s.remember(ctx, u)
	return nil
}

func (s *CachedStore) remember(ctx context.Context, u *model.User) {
	if err := s.cache.Set(ctx, *u); err != nil {
		s.log.Warn("profile cache write failed", zap.String("user_id", u.ID), zap.Error(err))
		s.forget(ctx, u.ID)
	}
}

func (s *CachedStore) forget(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn("profile cache evict failed", zap.String("user_id", id), zap.Error(err))
	}
}

// RedisCache stores users as JSON under "user:<id>".
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// cacheEntry mirrors model.User including the password hash, which model.User hides from JSON.
type cacheEntry struct {
	model.User
	Password string  `json:"passwordHash,omitempty"`
	GoogleID *string `json:"googleId,omitempty"`
}

func cacheKey(id string) string {
	return "user:" + id
}

func (c *RedisCache) Get(ctx context.Context, id string) (*model.User, error) {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e cacheEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode cached user %s: %w", id, err)
	}
	u := e.User
	u.Password = e.Password
	u.GoogleID = e.GoogleID
	return &u, nil
}

func (c *RedisCache) Set(ctx context.Context, users ...model.User) error {
	if len(users) == 0 {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, u := range users {
			raw, err := json.Marshal(cacheEntry{User: u, Password: u.Password, GoogleID: u.GoogleID})
			if err != nil {
				return err
			}
			p.Set(ctx, cacheKey(u.ID), raw, c.ttl)
		}
		return nil
	})
	return err
}

func (c *RedisCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, cacheKey(id)).Err()
}

// Warm copies users changed since the given time from src into cache and
// returns how many were written.
func Warm(ctx context.Context, src UserStore, cache ProfileCache, since time.Time, limit int) (int, error) {
	users, err := src.ListUpdatedSince(ctx, since, limit)
	if err != nil {
		return 0, fmt.Errorf("list users updated since %s: %w", since.Format(time.RFC3339), err)
	}
	if err := cache.Set(ctx, users...); err != nil {
		return 0, fmt.Errorf("cache users: %w", err)
	}
	return len(users), nil
}
