package sessionstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/core/sessionstore"
	"github.com/dmitrymomot/sessionkit/integration/database/redis"
	"github.com/dmitrymomot/sessionkit/pkg/codec"
)

func TestNew(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("cookie by default", func(t *testing.T) {
		t.Parallel()
		b, err := sessionstore.New(ctx, sessionstore.Config{})
		require.NoError(t, err)
		assert.Equal(t, sessionstore.Cookie, b.Name())
		assert.True(t, b.Embedded())
		assert.NoError(t, b.Healthcheck(ctx))
		assert.NoError(t, b.Shutdown())
	})

	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		cfg := sessionstore.DefaultConfig()
		cfg.Storage = sessionstore.Memory
		cfg.CleanupInterval = 10 * time.Millisecond

		b, err := sessionstore.New(ctx, cfg)
		require.NoError(t, err)
		assert.Equal(t, sessionstore.Memory, b.Name())
		assert.False(t, b.Embedded())

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- b.Run(runCtx)() }()
		require.Eventually(t, func() bool { return b.Healthcheck(ctx) == nil }, time.Second, time.Millisecond)

		cancel()
		assert.NoError(t, <-done)
	})

	t.Run("redis from url", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		cfg := sessionstore.DefaultConfig()
		cfg.Storage = sessionstore.Redis
		cfg.Redis = redis.Config{
			ConnectionURL: "redis://" + mr.Addr() + "/0",
			RetryAttempts: 1,
		}

		hex, err := codec.NewEncoder(codec.EncoderBase16)
		require.NoError(t, err)

		b, err := sessionstore.New(ctx, cfg, sessionstore.WithEncoder(hex))
		require.NoError(t, err)
		t.Cleanup(func() { _ = b.Shutdown() })

		require.NoError(t, b.Save(ctx, []byte("abc"), time.Minute, []byte("x"), true))
		assert.True(t, mr.Exists("sessions:616263"))
		assert.NoError(t, b.Healthcheck(ctx))
	})

	t.Run("redis with shared client", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		cfg := sessionstore.DefaultConfig()
		cfg.Storage = sessionstore.Redis
		b, err := sessionstore.New(ctx, cfg, sessionstore.WithRedisClient(client))
		require.NoError(t, err)

		require.NoError(t, b.Shutdown())
		assert.NoError(t, client.Ping(ctx).Err(), "shared client stays open")
	})

	t.Run("redis unreachable", func(t *testing.T) {
		t.Parallel()
		cfg := sessionstore.DefaultConfig()
		cfg.Storage = sessionstore.Redis
		cfg.Redis = redis.Config{ConnectionURL: ""}

		_, err := sessionstore.New(ctx, cfg)
		assert.ErrorIs(t, err, session.ErrStorageUnavailable)
		assert.ErrorIs(t, err, redis.ErrEmptyURL)
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		_, err := sessionstore.New(ctx, sessionstore.Config{Storage: "memcached"})
		assert.ErrorIs(t, err, session.ErrUnknownScheme)
	})
}
