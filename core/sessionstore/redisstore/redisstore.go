package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/core/sessionstore/kvstore"
	"github.com/dmitrymomot/sessionkit/pkg/codec"
)

// Store is a Redis-backed session storage. Locks use SET NX with a TTL of MaxWait+1s,
// so a crashed holder never blocks a record for longer than that.
type Store struct {
	*kvstore.Store
	client redis.UniversalClient
}

// Option configures a Store.
type Option = kvstore.Option

// WithEncoder sets the id encoder used in keys.
func WithEncoder(enc codec.Encoder) Option { return kvstore.WithEncoder(enc) }

// WithLogger sets the logger for lock diagnostics.
func WithLogger(logger *slog.Logger) Option { return kvstore.WithLogger(logger) }

// New wraps client into a session storage. The client is not closed by the store.
func New(client redis.UniversalClient, cfg kvstore.Config, opts ...Option) *Store {
	return &Store{
		Store:  kvstore.New(backend{client}, cfg, opts...),
		client: client,
	}
}

// Healthcheck pings Redis.
func (s *Store) Healthcheck(ctx context.Context) error {
	return unavailable(s.client.Ping(ctx).Err())
}

type backend struct {
	client redis.UniversalClient
}

func (b backend) Get(ctx context.Context, key string, ttl time.Duration) ([]byte, error) {
	value, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	if err := b.client.Expire(ctx, key, ttl).Err(); err != nil {
		return nil, unavailable(err)
	}
	return value, nil
}

func (b backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return unavailable(b.client.Set(ctx, key, value, ttl).Err())
}

func (b backend) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return unavailable(b.client.Expire(ctx, key, ttl).Err())
}

func (b backend) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := b.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return ok, nil
}

func (b backend) Del(ctx context.Context, key string) error {
	return unavailable(b.client.Del(ctx, key).Err())
}

func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", session.ErrStorageUnavailable, err)
}
