package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionkit/core/cookie"
	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/pkg/codec"
	"github.com/dmitrymomot/sessionkit/pkg/spinlock"
)

// Backend is a TTL key-value store with an atomic create-if-absent write.
type Backend interface {
	spinlock.Backend
	// Get returns the value of key and resets its TTL. A miss returns session.ErrNotFound.
	Get(ctx context.Context, key string, ttl time.Duration) ([]byte, error)
	// Set writes key with ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Expire resets the TTL of an existing key. Missing keys are ignored.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Config holds the key layout and lock timing shared by server-side backends.
type Config struct {
	Prefix string          `env:"SESSION_STORAGE_PREFIX" envDefault:"sessions"`
	Lock   spinlock.Config `envPrefix:"SESSION_STORAGE_"`
}

// DefaultConfig returns the default prefix and lock timing.
func DefaultConfig() Config {
	return Config{
		Prefix: "sessions",
		Lock:   spinlock.DefaultConfig(),
	}
}

// Store implements session.Storage over a Backend.
// Records live at prefix:encode(id) and are guarded by prefix:encode(id).lock.
type Store struct {
	backend Backend
	locker  *spinlock.Locker
	prefix  string
	enc     codec.Encoder
	logger  *slog.Logger
}

var _ session.Storage = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithEncoder sets the id encoder used in keys. It should match the cookie encoder.
func WithEncoder(enc codec.Encoder) Option {
	return func(s *Store) {
		if enc != nil {
			s.enc = enc
		}
	}
}

// WithLogger sets the logger for lock diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New wraps backend into a session storage.
func New(backend Backend, cfg Config, opts ...Option) *Store {
	enc, _ := codec.NewEncoder(codec.EncoderBase64)
	s := &Store{
		backend: backend,
		prefix:  cfg.Prefix,
		enc:     enc,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.locker = spinlock.New(backend, cfg.Lock, spinlock.WithLogger(s.logger))
	return s
}

// Key returns the record key for id.
func (s *Store) Key(id []byte) string {
	return s.prefix + ":" + s.enc.Encode(id)
}

// Locker returns the lock used for records.
func (s *Store) Locker() *spinlock.Locker {
	return s.locker
}

// Embedded reports false: payloads live in the backend.
func (s *Store) Embedded() bool { return false }

// Open reads the record under its lock and refreshes the TTL to lifetime.
func (s *Store) Open(ctx context.Context, tok cookie.Token, lifetime time.Duration) (payload []byte, err error) {
	key := s.Key(tok.ID)
	if err := s.locker.Lock(ctx, key); err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, s.locker.Unlock(ctx, key))
	}()

	return s.backend.Get(ctx, key, lifetime)
}

// Start acquires the record lock.
func (s *Store) Start(ctx context.Context, id []byte) error {
	return s.locker.Lock(ctx, s.Key(id))
}

// Save writes payload with ttl. With close the lock is released on every path.
func (s *Store) Save(ctx context.Context, id []byte, ttl time.Duration, payload []byte, close bool) (err error) {
	key := s.Key(id)
	if close {
		defer func() {
			err = errors.Join(err, s.locker.Unlock(ctx, key))
		}()
	}

	if ttl <= 0 {
		return fmt.Errorf("%w: ttl %s", session.ErrExpired, ttl)
	}
	return s.backend.Set(ctx, key, payload, ttl)
}

// Close releases the record lock.
func (s *Store) Close(ctx context.Context, id []byte) error {
	return s.locker.Unlock(ctx, s.Key(id))
}

// Destroy deletes the record and releases its lock.
func (s *Store) Destroy(ctx context.Context, id []byte) error {
	key := s.Key(id)
	return errors.Join(s.backend.Del(ctx, key), s.locker.Unlock(ctx, key))
}

// TTL re-expires the record.
func (s *Store) TTL(ctx context.Context, id []byte, ttl time.Duration) error {
	return s.backend.Expire(ctx, s.Key(id), ttl)
}
