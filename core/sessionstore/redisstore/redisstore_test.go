package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/cookie"
	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/core/sessionstore/kvstore"
	"github.com/dmitrymomot/sessionkit/core/sessionstore/redisstore"
	"github.com/dmitrymomot/sessionkit/pkg/spinlock"
)

func setup(t *testing.T, cfg kvstore.Config) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.New(client, cfg), mr
}

func testConfig() kvstore.Config {
	return kvstore.Config{
		Prefix: "sessions",
		Lock: spinlock.Config{
			Enabled:  true,
			SpinWait: 10 * time.Millisecond,
			MaxWait:  50 * time.Millisecond,
		},
	}
}

func TestStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	id := []byte("abc")

	t.Run("save and open", func(t *testing.T) {
		t.Parallel()
		store, mr := setup(t, testConfig())

		require.NoError(t, store.Save(ctx, id, time.Minute, []byte("payload"), true))
		assert.True(t, mr.Exists("sessions:YWJj"))
		assert.Equal(t, time.Minute, mr.TTL("sessions:YWJj"))

		got, err := store.Open(ctx, cookie.Token{ID: id}, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), got)
		assert.Equal(t, time.Hour, mr.TTL("sessions:YWJj"))
		assert.False(t, mr.Exists("sessions:YWJj.lock"))
		assert.False(t, store.Embedded())
	})

	t.Run("open miss", func(t *testing.T) {
		t.Parallel()
		store, _ := setup(t, testConfig())

		_, err := store.Open(ctx, cookie.Token{ID: id}, time.Hour)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("non-positive ttl releases lock", func(t *testing.T) {
		t.Parallel()
		store, mr := setup(t, testConfig())

		require.NoError(t, store.Start(ctx, id))
		assert.True(t, mr.Exists("sessions:YWJj.lock"))

		err := store.Save(ctx, id, 0, []byte("x"), true)
		assert.ErrorIs(t, err, session.ErrExpired)
		assert.False(t, mr.Exists("sessions:YWJj.lock"))
		assert.False(t, mr.Exists("sessions:YWJj"))
	})

	t.Run("lock contention", func(t *testing.T) {
		t.Parallel()
		store, mr := setup(t, testConfig())

		require.NoError(t, store.Start(ctx, id))
		assert.Equal(t, time.Second, mr.TTL("sessions:YWJj.lock"))
		assert.ErrorIs(t, store.Start(ctx, id), session.ErrNoLock)

		require.NoError(t, store.Close(ctx, id))
		require.NoError(t, store.Start(ctx, id))
	})

	t.Run("ttl and destroy", func(t *testing.T) {
		t.Parallel()
		store, mr := setup(t, testConfig())

		require.NoError(t, store.Save(ctx, id, time.Hour, []byte("x"), false))
		require.NoError(t, store.TTL(ctx, id, 10*time.Second))
		assert.Equal(t, 10*time.Second, mr.TTL("sessions:YWJj"))

		require.NoError(t, store.Start(ctx, id))
		require.NoError(t, store.Destroy(ctx, id))
		assert.False(t, mr.Exists("sessions:YWJj"))
		assert.False(t, mr.Exists("sessions:YWJj.lock"))
	})

	t.Run("expired record is a miss", func(t *testing.T) {
		t.Parallel()
		store, mr := setup(t, testConfig())

		require.NoError(t, store.Save(ctx, id, time.Second, []byte("x"), false))
		mr.FastForward(2 * time.Second)

		_, err := store.Open(ctx, cookie.Token{ID: id}, time.Hour)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("unavailable backend", func(t *testing.T) {
		t.Parallel()
		store, mr := setup(t, testConfig())
		mr.Close()

		err := store.Save(ctx, id, time.Minute, []byte("x"), false)
		assert.ErrorIs(t, err, session.ErrStorageUnavailable)
		assert.ErrorIs(t, store.Healthcheck(ctx), session.ErrStorageUnavailable)
	})
}
