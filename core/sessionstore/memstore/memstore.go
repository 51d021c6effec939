package memstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/core/sessionstore/kvstore"
	"github.com/dmitrymomot/sessionkit/pkg/codec"
)

const defaultShards = 32

type entry struct {
	value     []byte
	expiresAt time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]entry
}

// Store is an in-process session storage. Records and lock keys share one sharded map;
// expired entries are invisible to reads and reclaimed by the cleanup loop.
type Store struct {
	*kvstore.Store

	shards []*shard
	now    func() time.Time
	kvOpts []kvstore.Option

	cleanupInterval time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup

	removed atomic.Int64
}

// Stats reports store activity.
type Stats struct {
	Entries   int   // live and not yet reclaimed entries, lock keys included
	Removed   int64 // entries reclaimed by cleanup
	IsRunning bool
}

// Option configures a Store.
type Option func(*Store)

// WithShards sets the number of map shards.
func WithShards(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.shards = newShards(n)
		}
	}
}

// WithCleanupInterval sets how often expired entries are reclaimed. Zero disables cleanup.
func WithCleanupInterval(interval time.Duration) Option {
	return func(s *Store) {
		s.cleanupInterval = interval
	}
}

// WithShutdownTimeout bounds how long Stop waits for a running cleanup pass.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.shutdownTimeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEncoder sets the id encoder used in keys.
func WithEncoder(enc codec.Encoder) Option {
	return func(s *Store) {
		s.kvOpts = append(s.kvOpts, kvstore.WithEncoder(enc))
	}
}

// New creates an in-memory storage. Call Run or RunCleanup to reclaim expired entries.
func New(cfg kvstore.Config, opts ...Option) *Store {
	s := &Store{
		shards:          newShards(defaultShards),
		now:             time.Now,
		cleanupInterval: time.Minute,
		shutdownTimeout: 30 * time.Second,
		logger:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Store = kvstore.New(backend{s}, cfg, append(s.kvOpts, kvstore.WithLogger(s.logger))...)
	s.kvOpts = nil
	return s
}

func newShards(n int) []*shard {
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{entries: make(map[string]entry)}
	}
	return shards
}

func (s *Store) shard(key string) *shard {
	return s.shards[murmur3.Sum32([]byte(key))%uint32(len(s.shards))]
}

// backend exposes the map as a kvstore.Backend without widening Store's API.
type backend struct{ s *Store }

func (b backend) Get(_ context.Context, key string, ttl time.Duration) ([]byte, error) {
	sh := b.s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := b.s.now()
	e, ok := sh.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		return nil, session.ErrNotFound
	}
	e.expiresAt = now.Add(ttl)
	sh.entries[key] = e
	return append([]byte(nil), e.value...), nil
}

func (b backend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	sh := b.s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.entries[key] = entry{value: append([]byte(nil), value...), expiresAt: b.s.now().Add(ttl)}
	return nil
}

func (b backend) Expire(_ context.Context, key string, ttl time.Duration) error {
	sh := b.s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := b.s.now()
	if e, ok := sh.entries[key]; ok && now.Before(e.expiresAt) {
		e.expiresAt = now.Add(ttl)
		sh.entries[key] = e
	}
	return nil
}

func (b backend) SetNX(_ context.Context, key string, ttl time.Duration) (bool, error) {
	sh := b.s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := b.s.now()
	if e, ok := sh.entries[key]; ok && now.Before(e.expiresAt) {
		return false, nil
	}
	sh.entries[key] = entry{expiresAt: now.Add(ttl)}
	return true, nil
}

func (b backend) Del(_ context.Context, key string) error {
	sh := b.s.shard(key)
	sh.mu.Lock()
	delete(sh.entries, key)
	sh.mu.Unlock()
	return nil
}

// Exists reports whether a live entry exists for key. Useful for inspecting lock keys.
func (s *Store) Exists(key string) bool {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.entries[key]
	return ok && s.now().Before(e.expiresAt)
}

// RunCleanup reclaims expired entries every cleanup interval until ctx is cancelled or
// Stop is called. It blocks; use Run for errgroup.
func (s *Store) RunCleanup(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return fmt.Errorf("memory store already started")
	}
	if s.cleanupInterval <= 0 {
		s.mu.Unlock()
		return fmt.Errorf("cleanup interval must be > 0, got %v (use WithCleanupInterval to configure)", s.cleanupInterval)
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.running.Store(true)
	defer s.running.Store(false)

	s.logger.InfoContext(ctx, "session memory store cleanup started",
		slog.Duration("cleanup_interval", s.cleanupInterval))

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(context.Background(), "session memory store cleanup stopping")
			return ctx.Err()
		case <-ticker.C:
			s.cleanupWithWait()
		}
	}
}

// cleanupWithWait runs one pass tracked by the wait group, unless Stop already ran.
func (s *Store) cleanupWithWait() {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	s.removeExpired()
}

// Stop cancels the cleanup loop and waits for a running pass to finish.
func (s *Store) Stop() error {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return fmt.Errorf("memory store not started")
	}
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(s.shutdownTimeout):
		s.logger.WarnContext(context.Background(), "session memory store shutdown timeout exceeded",
			slog.Duration("timeout", s.shutdownTimeout))
		return fmt.Errorf("shutdown timeout exceeded after %s", s.shutdownTimeout)
	}
}

// Run returns an errgroup-compatible function that runs cleanup until ctx ends.
func (s *Store) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- s.RunCleanup(ctx)
		}()

		select {
		case <-ctx.Done():
			_ = s.Stop()
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

func (s *Store) removeExpired() {
	now := s.now()
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, e := range sh.entries {
			if !now.Before(e.expiresAt) {
				delete(sh.entries, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	if removed > 0 {
		s.removed.Add(int64(removed))
		s.logger.Debug("expired sessions removed", slog.Int("count", removed))
	}
}

// Stats returns a snapshot of store counters.
func (s *Store) Stats() Stats {
	entries := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		entries += len(sh.entries)
		sh.mu.Unlock()
	}
	s.mu.Lock()
	running := s.cancel != nil
	s.mu.Unlock()

	return Stats{
		Entries:   entries,
		Removed:   s.removed.Load(),
		IsRunning: running,
	}
}

// Healthcheck fails when cleanup is configured but not running.
func (s *Store) Healthcheck(ctx context.Context) error {
	if s.cleanupInterval > 0 && !s.Stats().IsRunning {
		return fmt.Errorf("session memory store: cleanup is configured but not running")
	}
	return nil
}
