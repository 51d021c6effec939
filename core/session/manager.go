package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/sessionkit/core/cookie"
	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/pkg/codec"
	"github.com/dmitrymomot/sessionkit/pkg/fingerprint"
	"github.com/dmitrymomot/sessionkit/pkg/secrets"
	"github.com/dmitrymomot/sessionkit/pkg/token"
)

// Manager creates sessions of a typed payload over a storage backend.
// It is immutable after NewManager and safe for concurrent use.
type Manager[Data any] struct {
	cfg        Config
	storage    Storage
	cookies    *cookie.Codec
	serializer codec.Serializer
	ids        token.Generator
	strategy   strategy
	checks     []fingerprint.Option
	logger     *slog.Logger
	observer   Observer
	now        func() time.Time
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
	ids      token.Generator
}

// WithLogger sets the logger. Logging is discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers an observer for operation events.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithGenerator replaces the id generator selected by Config.Identifier.
func WithGenerator(ids token.Generator) Option {
	return func(o *options) {
		if ids != nil {
			o.ids = ids
		}
	}
}

// NewManager resolves every configured component and returns a ready Manager.
// Unknown component names and an empty secret fail here rather than on first use.
func NewManager[Data any](cfg Config, storage Storage, opts ...Option) (*Manager[Data], error) {
	if cfg.Secret == "" {
		return nil, ErrNoSecret
	}
	if storage == nil {
		return nil, ErrNoStorage
	}
	if cfg.Lifetime < time.Second {
		return nil, fmt.Errorf("%w, got %s", ErrLifetimeTooShort, cfg.Lifetime)
	}

	o := &options{
		logger:   logger.Discard(),
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	enc, err := codec.NewEncoder(cfg.Encoder)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	serializer, err := codec.NewSerializer(cfg.Serializer)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	ids := o.ids
	if ids == nil {
		if ids, err = token.NewGenerator(cfg.Identifier, cfg.IdentifierLength); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}
	cipher, err := secrets.NewCipher(cfg.Cipher)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	mac, err := secrets.NewHasher(cfg.HMAC)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	cookies, err := cookie.New(cfg.Cookie, cookie.WithEncoder(enc), cookie.WithClock(o.now))
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	strat, err := newStrategy(cfg.Strategy, sealer{
		secret:   []byte(cfg.Secret),
		cipher:   cipher,
		mac:      mac,
		storage:  storage,
		ids:      ids,
		lifetime: cfg.Lifetime,
		discard:  cfg.DiscardWindow,
		now:      o.now,
	})
	if err != nil {
		return nil, err
	}

	return &Manager[Data]{
		cfg:        cfg,
		storage:    storage,
		cookies:    cookies,
		serializer: serializer,
		ids:        ids,
		strategy:   strat,
		checks:     cfg.Check.Options(),
		logger:     o.logger.With(logger.Component("session"), logger.Strategy(strat.name())),
		observer:   o.observer,
		now:        o.now,
	}, nil
}

// Config returns the configuration the manager was built with.
func (m *Manager[Data]) Config() Config {
	return m.cfg
}

// Cookies returns the cookie codec.
func (m *Manager[Data]) Cookies() *cookie.Codec {
	return m.cookies
}

// New returns an unopened session bound to the response headers and request.
func (m *Manager[Data]) New(w HeaderWriter, r *http.Request) *Session[Data] {
	return &Session[Data]{m: m, w: w, r: r}
}

// Open creates a session and restores it from the request cookie when it verifies.
func (m *Manager[Data]) Open(ctx context.Context, w HeaderWriter, r *http.Request) (*Session[Data], error) {
	s := m.New(w, r)
	return s, s.Open(ctx)
}

// Start creates a session, restores it and takes the storage lock.
// A session without a valid cookie is saved immediately.
func (m *Manager[Data]) Start(ctx context.Context, w HeaderWriter, r *http.Request) (*Session[Data], error) {
	s := m.New(w, r)
	return s, s.Start(ctx)
}

func (m *Manager[Data]) observe(ctx context.Context, op Operation, present bool, err error, start time.Time) {
	m.observer.Observe(ctx, Event{
		Operation: op,
		Strategy:  m.strategy.name(),
		Present:   present,
		Err:       err,
		Duration:  time.Since(start),
	})
}
