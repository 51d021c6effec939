package session_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/core/sessionstore/cookiestore"
	"github.com/dmitrymomot/sessionkit/core/sessionstore/memstore"
)

func TestNewManager(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*session.Config)
		err    error
	}{
		{"no secret", func(c *session.Config) { c.Secret = "" }, session.ErrNoSecret},
		{"unknown strategy", func(c *session.Config) { c.Strategy = "rotate" }, session.ErrUnknownScheme},
		{"unknown cipher", func(c *session.Config) { c.Cipher = "des" }, nil},
		{"unknown hmac", func(c *session.Config) { c.HMAC = "md5" }, nil},
		{"unknown serializer", func(c *session.Config) { c.Serializer = "yaml" }, nil},
		{"unknown encoder", func(c *session.Config) { c.Encoder = "base32" }, nil},
		{"unknown identifier", func(c *session.Config) { c.Identifier = "snowflake" }, nil},
		{"zero lifetime", func(c *session.Config) { c.Lifetime = 0 }, session.ErrLifetimeTooShort},
		{"sub-second lifetime", func(c *session.Config) { c.Lifetime = 500 * time.Millisecond }, session.ErrLifetimeTooShort},
		{"bad cookie delimiter", func(c *session.Config) { c.Cookie.Delimiter = ":" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := session.NewManager[userData](cfg, cookiestore.New())
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}

	t.Run("no storage", func(t *testing.T) {
		t.Parallel()
		_, err := session.NewManager[userData](testConfig(), nil)
		assert.ErrorIs(t, err, session.ErrNoStorage)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		m, err := session.NewManager[userData](testConfig(), cookiestore.New())
		require.NoError(t, err)
		assert.Equal(t, "session", m.Cookies().Name())
		assert.Equal(t, time.Hour, m.Config().Lifetime)
	})

	t.Run("one second lifetime", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Lifetime = time.Second
		_, err := session.NewManager[userData](cfg, cookiestore.New())
		require.NoError(t, err)
	})
}

func TestSession_Open(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no cookie yields fresh session", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		m := newManager(t, testConfig(), cookiestore.New(), clk)

		rec := httptest.NewRecorder()
		s, err := m.Open(ctx, rec, request(nil))
		require.NoError(t, err)
		assert.False(t, s.Present)
		assert.Len(t, s.ID, 16)
		assert.Equal(t, session.StateOpened, s.State())
		assert.Empty(t, setCookies(rec), "open never writes cookies")
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		m := newManager(t, testConfig(), cookiestore.New(), clk)

		s, err := m.Open(ctx, httptest.NewRecorder(), request(nil))
		require.NoError(t, err)
		id := s.ID
		require.NoError(t, s.Open(ctx))
		assert.Equal(t, id, s.ID)
	})

	t.Run("garbage cookie", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		m := newManager(t, testConfig(), cookiestore.New(), clk)

		r := request(nil)
		r.Header.Set("Cookie", "session=not|a|token|at-all")
		s, err := m.Open(ctx, httptest.NewRecorder(), r)
		require.NoError(t, err)
		assert.False(t, s.Present)
	})
}

func TestSession_Start(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("new session is saved", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		store := newMemStore(clk)
		m := newManager(t, testConfig(), store, clk)

		rec := httptest.NewRecorder()
		s, err := m.Start(ctx, rec, request(nil))
		require.NoError(t, err)
		assert.True(t, s.Present)
		assert.Equal(t, session.StateStarted, s.State())
		assert.Len(t, setCookies(rec), 1)
		assert.True(t, store.Exists("sessions:"+s.EncodedID()))
		assert.False(t, store.Exists("sessions:"+s.EncodedID()+".lock"))
	})

	t.Run("fresh present session is only touched", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		m := newManager(t, testConfig(), newMemStore(clk), clk)

		first := httptest.NewRecorder()
		s, err := m.Start(ctx, first, request(nil))
		require.NoError(t, err)

		clk.Advance(time.Minute)
		rec := httptest.NewRecorder()
		again, err := m.Start(ctx, rec, request(first))
		require.NoError(t, err)
		assert.True(t, again.Present)
		assert.Equal(t, s.ID, again.ID)
		assert.Equal(t, s.Expires, again.Expires)
		assert.Empty(t, setCookies(rec))
	})

	t.Run("renews inside the renew window", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		m := newManager(t, testConfig(), newMemStore(clk), clk)

		first := httptest.NewRecorder()
		s, err := m.Start(ctx, first, request(nil))
		require.NoError(t, err)

		clk.Advance(55 * time.Minute)
		rec := httptest.NewRecorder()
		again, err := m.Start(ctx, rec, request(first))
		require.NoError(t, err)
		assert.Equal(t, s.ID, again.ID, "default strategy keeps the id")
		assert.Equal(t, clk.Now().Add(time.Hour), again.Expires)
		assert.Len(t, setCookies(rec), 1)
	})

	t.Run("renews when expiry exceeds lifetime", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		store := cookiestore.New()
		long := testConfig()
		long.Lifetime = 24 * time.Hour
		first := httptest.NewRecorder()
		_, err := newManager(t, long, store, clk).Start(ctx, first, request(nil))
		require.NoError(t, err)

		m := newManager(t, testConfig(), store, clk)
		rec := httptest.NewRecorder()
		s, err := m.Start(ctx, rec, request(first))
		require.NoError(t, err)
		assert.True(t, s.Present)
		assert.Equal(t, clk.Now().Add(time.Hour), s.Expires)
		assert.Len(t, setCookies(rec), 1)
	})

	t.Run("lock timeout is a hard error", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		store := newMemStore(clk)
		m := newManager(t, testConfig(), store, clk)

		first := httptest.NewRecorder()
		_, err := m.Start(ctx, first, request(nil))
		require.NoError(t, err)

		s, err := m.Open(ctx, httptest.NewRecorder(), request(first))
		require.NoError(t, err)
		require.True(t, s.Present)
		require.NoError(t, store.Start(ctx, s.ID))

		short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, s.Start(short), context.DeadlineExceeded)
	})

	t.Run("failed renewal releases the lock", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		store := newMemStore(clk)
		cfg := testConfig()
		cfg.Strategy = session.StrategyRegenerate
		m := newManager(t, cfg, failingTTL{store}, clk)

		first := httptest.NewRecorder()
		_, err := m.Start(ctx, first, request(nil))
		require.NoError(t, err)

		clk.Advance(55 * time.Minute)
		s, err := m.Open(ctx, httptest.NewRecorder(), request(first))
		require.NoError(t, err)
		require.True(t, s.Present)
		key := "sessions:" + s.EncodedID()

		require.ErrorIs(t, s.Start(ctx), session.ErrStorageUnavailable)
		assert.False(t, store.Exists(key+".lock"), "no lock left behind")

		short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
		defer cancel()
		require.NoError(t, store.Start(short, s.ID), "lock is free for the next request")
		require.NoError(t, store.Close(ctx, s.ID))
	})
}

// failingTTL is a memory store whose TTL calls always fail.
type failingTTL struct {
	*memstore.Store
}

func (failingTTL) TTL(context.Context, []byte, time.Duration) error {
	return session.ErrStorageUnavailable
}

func TestSession_Touch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rewrites only when usebefore changes", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		cfg := testConfig()
		cfg.IdleTime = 10 * time.Minute
		m := newManager(t, cfg, cookiestore.New(), clk)

		first := httptest.NewRecorder()
		require.NoError(t, m.New(first, request(nil)).Save(ctx))

		clk.Advance(time.Second)
		rec := httptest.NewRecorder()
		s, err := m.Open(ctx, rec, request(first))
		require.NoError(t, err)
		require.True(t, s.Present)

		require.NoError(t, s.Touch(ctx))
		require.Len(t, setCookies(rec), 1)
		assert.Contains(t, setCookies(rec)[0].Value, "|1700003600:1700000601|")
		assert.Equal(t, time.Unix(1_700_000_601, 0), s.UseBefore)

		require.NoError(t, s.Touch(ctx))
		assert.Len(t, rec.Header().Values("Set-Cookie"), 1)

		reopened, err := m.Open(ctx, httptest.NewRecorder(), request(rec))
		require.NoError(t, err)
		assert.True(t, reopened.Present, "touch keeps the signature valid")
		assert.Equal(t, s.Expires, reopened.Expires)
	})

	t.Run("no idle timeout writes nothing", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		m := newManager(t, testConfig(), cookiestore.New(), clk)

		first := httptest.NewRecorder()
		require.NoError(t, m.New(first, request(nil)).Save(ctx))

		rec := httptest.NewRecorder()
		s, err := m.Open(ctx, rec, request(first))
		require.NoError(t, err)
		require.NoError(t, s.Touch(ctx))
		assert.Empty(t, setCookies(rec))
	})

	t.Run("not present", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		m := newManager(t, testConfig(), cookiestore.New(), clk)

		s := m.New(httptest.NewRecorder(), request(nil))
		assert.ErrorIs(t, s.Touch(ctx), session.ErrNotPresent)
	})
}

func TestSession_Regenerate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	start := func(t *testing.T, m *session.Manager[userData]) (*session.Session[userData], *httptest.ResponseRecorder) {
		t.Helper()
		rec := httptest.NewRecorder()
		s, err := m.Start(ctx, rec, request(nil))
		require.NoError(t, err)
		s.Data = userData{User: "alice"}
		require.NoError(t, s.Save(ctx))
		return s, rec
	}

	t.Run("keeps data and old record", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		store := newMemStore(clk)
		m := newManager(t, testConfig(), store, clk, session.WithGenerator(ids("old", "new")))
		_, first := start(t, m)

		rec := httptest.NewRecorder()
		s, err := m.Open(ctx, rec, request(first))
		require.NoError(t, err)
		require.NoError(t, s.Regenerate(ctx, false))

		assert.Equal(t, []byte("new"), s.ID)
		assert.Equal(t, "alice", s.Data.User)
		assert.True(t, store.Exists("sessions:b2xk"))
		assert.True(t, store.Exists("sessions:bmV3"))

		reopened, err := m.Open(ctx, httptest.NewRecorder(), request(rec))
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), reopened.ID)
		assert.Equal(t, "alice", reopened.Data.User)
	})

	t.Run("flush deletes old record and data", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		store := newMemStore(clk)
		m := newManager(t, testConfig(), store, clk, session.WithGenerator(ids("old", "new")))
		_, first := start(t, m)

		s, err := m.Open(ctx, httptest.NewRecorder(), request(first))
		require.NoError(t, err)
		require.NoError(t, s.Regenerate(ctx, true))

		assert.Equal(t, []byte("new"), s.ID)
		assert.Zero(t, s.Data)
		assert.False(t, store.Exists("sessions:b2xk"))
		assert.True(t, store.Exists("sessions:bmV3"))
	})

	t.Run("regenerate strategy rotates on save with grace window", func(t *testing.T) {
		t.Parallel()
		clk := newClock()
		store := newMemStore(clk)
		cfg := testConfig()
		cfg.Strategy = session.StrategyRegenerate
		m := newManager(t, cfg, store, clk, session.WithGenerator(ids("one", "two", "three")))

		rec := httptest.NewRecorder()
		s, err := m.Start(ctx, rec, request(nil))
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), s.ID)

		s.Data = userData{User: "alice"}
		require.NoError(t, s.Save(ctx))
		assert.Equal(t, []byte("two"), s.ID)

		assert.True(t, store.Exists("sessions:b25l"), "old record kept for the discard window")

		clk.Advance(11 * time.Second)
		assert.False(t, store.Exists("sessions:b25l"))
		assert.True(t, store.Exists("sessions:dHdv"))

		reopened, err := m.Open(ctx, httptest.NewRecorder(), request(rec))
		require.NoError(t, err)
		assert.True(t, reopened.Present)
		assert.Equal(t, "alice", reopened.Data.User)
	})
}

func TestSession_Destroy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := newClock()
	store := newMemStore(clk)
	m := newManager(t, testConfig(), store, clk)

	first := httptest.NewRecorder()
	s, err := m.Start(ctx, first, request(nil))
	require.NoError(t, err)
	s.Data = userData{User: "alice"}
	require.NoError(t, s.Save(ctx))
	key := "sessions:" + s.EncodedID()

	rec := httptest.NewRecorder()
	opened, err := m.Open(ctx, rec, request(first))
	require.NoError(t, err)
	require.NoError(t, opened.Destroy(ctx))

	assert.Equal(t, session.StateDestroyed, opened.State())
	assert.False(t, opened.Present)
	assert.Zero(t, opened.Data)
	assert.False(t, store.Exists(key))

	cookies := setCookies(rec)
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)

	assert.ErrorIs(t, opened.Save(ctx), session.ErrDestroyed)
	assert.ErrorIs(t, opened.Touch(ctx), session.ErrDestroyed)
	assert.ErrorIs(t, opened.Start(ctx), session.ErrDestroyed)
	assert.ErrorIs(t, opened.Regenerate(ctx, false), session.ErrDestroyed)
	assert.NoError(t, opened.Destroy(ctx))
	assert.NoError(t, opened.Close(ctx))
}

func TestSession_Close(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := newClock()
	store := newMemStore(clk)
	m := newManager(t, testConfig(), store, clk)

	unopened := m.New(httptest.NewRecorder(), request(nil))
	assert.NoError(t, unopened.Close(ctx))

	s, err := m.Start(ctx, httptest.NewRecorder(), request(nil))
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))
	assert.Equal(t, session.StateClosed, s.State())
	assert.ErrorIs(t, s.Save(ctx), session.ErrClosed)
}

func TestSession_ChunkedCookies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := newClock()
	cfg := testConfig()
	cfg.Cookie.MaxFragmentSize = 64
	m := newManager(t, cfg, cookiestore.New(), clk)

	first := httptest.NewRecorder()
	s := m.New(first, request(nil))
	s.Data = userData{User: strings.Repeat("a", 200)}
	require.NoError(t, s.Save(ctx))
	require.Greater(t, len(setCookies(first)), 2)

	rec := httptest.NewRecorder()
	opened, err := m.Open(ctx, rec, request(first))
	require.NoError(t, err)
	require.True(t, opened.Present)
	assert.Equal(t, s.Data, opened.Data)

	opened.Data = userData{User: "a"}
	require.NoError(t, opened.Save(ctx))

	live, expired := 0, 0
	for _, c := range setCookies(rec) {
		if c.MaxAge < 0 {
			expired++
		} else {
			live++
		}
	}
	assert.Less(t, live, len(setCookies(first)))
	assert.Equal(t, len(setCookies(first))-live, expired)
}

func TestSession_TooLarge(t *testing.T) {
	t.Parallel()
	clk := newClock()
	cfg := testConfig()
	cfg.Cookie.MaxFragmentSize = 32
	cfg.Cookie.MaxFragments = 2
	m := newManager(t, cfg, cookiestore.New(), clk)

	s := m.New(httptest.NewRecorder(), request(nil))
	s.Data = userData{User: strings.Repeat("x", 100)}
	err := s.Save(context.Background())
	require.Error(t, err)
}

func TestSession_Observer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := newClock()

	var (
		mu     sync.Mutex
		events []session.Event
	)
	observer := session.ObserverFunc(func(_ context.Context, ev session.Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	m := newManager(t, testConfig(), cookiestore.New(), clk, session.WithObserver(observer))

	r := request(nil)
	r.Header.Set("Cookie", "session=broken")
	s, err := m.Start(ctx, httptest.NewRecorder(), r)
	require.NoError(t, err)
	require.NoError(t, s.Destroy(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 3)
	assert.Equal(t, session.OpOpen, events[0].Operation)
	assert.True(t, errors.Is(events[0].Err, session.ErrInvalidToken))
	assert.False(t, events[0].Present)
	assert.Equal(t, session.OpStart, events[1].Operation)
	assert.NoError(t, events[1].Err)
	assert.True(t, events[1].Present)
	assert.Equal(t, session.StrategyDefault, events[1].Strategy)
	assert.Equal(t, session.OpDestroy, events[2].Operation)
}

func TestObservers(t *testing.T) {
	t.Parallel()

	var calls []string
	record := func(name string) session.Observer {
		return session.ObserverFunc(func(context.Context, session.Event) {
			calls = append(calls, name)
		})
	}

	obs := session.Observers(record("a"), nil, record("b"))
	obs.Observe(context.Background(), session.Event{Operation: session.OpSave})
	assert.Equal(t, []string{"a", "b"}, calls)
}
