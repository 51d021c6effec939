package session_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/core/sessionstore/kvstore"
	"github.com/dmitrymomot/sessionkit/core/sessionstore/memstore"
	"github.com/dmitrymomot/sessionkit/pkg/fingerprint"
	"github.com/dmitrymomot/sessionkit/pkg/spinlock"
	"github.com/dmitrymomot/sessionkit/pkg/token"
)

type userData struct {
	User   string `json:"user"`
	Visits int    `json:"visits,omitempty"`
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Unix(1_700_000_000, 0)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// sequence hands out queued ids, then random ones.
type sequence struct {
	mu    sync.Mutex
	queue [][]byte
}

func (g *sequence) Name() string { return "sequence" }

func (g *sequence) New() ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queue) > 0 {
		id := g.queue[0]
		g.queue = g.queue[1:]
		return id, nil
	}
	return token.Generate(token.DefaultLength)
}

func ids(values ...string) *sequence {
	g := &sequence{}
	for _, v := range values {
		g.queue = append(g.queue, []byte(v))
	}
	return g
}

// testConfig disables request fingerprinting so expected hashes are easy to compute.
func testConfig() session.Config {
	cfg := session.DefaultConfig()
	cfg.Secret = "S"
	cfg.Check = fingerprint.Config{}
	return cfg
}

func newMemStore(clk *clock) *memstore.Store {
	return memstore.New(kvstore.Config{
		Prefix: "sessions",
		Lock: spinlock.Config{
			Enabled:  true,
			SpinWait: 10 * time.Millisecond,
			MaxWait:  time.Second,
		},
	}, memstore.WithClock(clk.Now), memstore.WithCleanupInterval(0))
}

func newManager(t *testing.T, cfg session.Config, storage session.Storage, clk *clock, opts ...session.Option) *session.Manager[userData] {
	t.Helper()
	m, err := session.NewManager[userData](cfg, storage, append([]session.Option{session.WithClock(clk.Now)}, opts...)...)
	require.NoError(t, err)
	return m
}

// request builds a request carrying the live cookies set on rec.
func request(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if rec == nil {
		return r
	}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			r.AddCookie(c)
		}
	}
	return r
}

func setCookies(rec *httptest.ResponseRecorder) []*http.Cookie {
	return rec.Result().Cookies()
}
