package sessionstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/core/sessionstore/cookiestore"
	"github.com/dmitrymomot/sessionkit/core/sessionstore/kvstore"
	"github.com/dmitrymomot/sessionkit/core/sessionstore/memstore"
	"github.com/dmitrymomot/sessionkit/core/sessionstore/redisstore"
	"github.com/dmitrymomot/sessionkit/integration/database/redis"
	"github.com/dmitrymomot/sessionkit/pkg/codec"
)

// Storage backend names.
const (
	Cookie = "cookie"
	Memory = "memory"
	Redis  = "redis"
)

// Config selects and configures a storage backend.
type Config struct {
	Storage         string        `env:"SESSION_STORAGE" envDefault:"cookie"`
	KV              kvstore.Config
	CleanupInterval time.Duration `env:"SESSION_STORAGE_CLEANUP_INTERVAL" envDefault:"1m"`
	Redis           redis.Config
}

// DefaultConfig returns a cookie storage configuration.
func DefaultConfig() Config {
	return Config{
		Storage:         Cookie,
		KV:              kvstore.DefaultConfig(),
		CleanupInterval: time.Minute,
	}
}

// Backend is a resolved storage with its lifecycle hooks.
type Backend struct {
	session.Storage

	name     string
	health   func(context.Context) error
	run      func(context.Context) func() error
	shutdown func() error
}

// Option configures New.
type Option func(*options)

type options struct {
	logger *slog.Logger
	enc    codec.Encoder
	client goredis.UniversalClient
}

// WithLogger sets the logger passed to the backend.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEncoder sets the id encoder for server-side keys. It should match session Config.Encoder.
func WithEncoder(enc codec.Encoder) Option {
	return func(o *options) {
		if enc != nil {
			o.enc = enc
		}
	}
}

// WithRedisClient reuses an existing client instead of connecting with cfg.Redis.
// The client is not closed by Backend.Shutdown.
func WithRedisClient(client goredis.UniversalClient) Option {
	return func(o *options) {
		o.client = client
	}
}

// New resolves cfg.Storage into a Backend. Redis connections are established here.
func New(ctx context.Context, cfg Config, opts ...Option) (*Backend, error) {
	o := &options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	var kvOpts []kvstore.Option
	if o.enc != nil {
		kvOpts = append(kvOpts, kvstore.WithEncoder(o.enc))
	}
	kvOpts = append(kvOpts, kvstore.WithLogger(o.logger))

	switch cfg.Storage {
	case Cookie, "":
		return &Backend{
			Storage:  cookiestore.New(),
			name:     Cookie,
			health:   func(context.Context) error { return nil },
			shutdown: func() error { return nil },
		}, nil

	case Memory:
		memOpts := []memstore.Option{
			memstore.WithCleanupInterval(cfg.CleanupInterval),
			memstore.WithLogger(o.logger),
		}
		if o.enc != nil {
			memOpts = append(memOpts, memstore.WithEncoder(o.enc))
		}
		store := memstore.New(cfg.KV, memOpts...)
		return &Backend{
			Storage:  store,
			name:     Memory,
			health:   store.Healthcheck,
			run:      store.Run,
			shutdown: func() error { return nil },
		}, nil

	case Redis:
		client, owned := o.client, false
		if client == nil {
			var err error
			if client, err = redis.Connect(ctx, cfg.Redis); err != nil {
				return nil, fmt.Errorf("%w: %w", session.ErrStorageUnavailable, err)
			}
			owned = true
		}
		store := redisstore.New(client, cfg.KV, kvOpts...)
		return &Backend{
			Storage:  store,
			name:     Redis,
			health:   store.Healthcheck,
			shutdown: func() error {
				if owned {
					return client.Close()
				}
				return nil
			},
		}, nil

	default:
		return nil, fmt.Errorf("%w: storage %q", session.ErrUnknownScheme, cfg.Storage)
	}
}

// Name returns the backend name.
func (b *Backend) Name() string { return b.name }

// Healthcheck reports whether the backend can serve requests.
func (b *Backend) Healthcheck(ctx context.Context) error {
	return b.health(ctx)
}

// Run returns an errgroup-compatible function driving background work until ctx ends.
// Backends without background work simply wait.
func (b *Backend) Run(ctx context.Context) func() error {
	if b.run != nil {
		return b.run(ctx)
	}
	return func() error {
		<-ctx.Done()
		return nil
	}
}

// Shutdown releases connections owned by the backend.
func (b *Backend) Shutdown() error {
	return b.shutdown()
}
