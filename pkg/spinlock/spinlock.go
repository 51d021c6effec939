package spinlock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// ErrNoLock is returned when the lock could not be acquired within MaxWait.
var ErrNoLock = errors.New("no lock")

// Backend is an atomic create-if-absent store for lock keys.
type Backend interface {
	// SetNX creates key with the given TTL and reports whether it was created.
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Del removes key. Missing keys are not an error.
	Del(ctx context.Context, key string) error
}

// Config controls lock acquisition.
type Config struct {
	Enabled  bool          `env:"USE_LOCKING" envDefault:"true"`
	SpinWait time.Duration `env:"SPINWAIT" envDefault:"150ms"`
	MaxWait  time.Duration `env:"MAXLOCKWAIT" envDefault:"30s"`
}

// DefaultConfig returns the default lock timing.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		SpinWait: 150 * time.Millisecond,
		MaxWait:  30 * time.Second,
	}
}

// Suffix is appended to a record key to form its lock key.
const Suffix = ".lock"

// Key returns the lock key guarding record key.
func Key(key string) string {
	return key + Suffix
}

// Locker serializes access to a key across processes sharing one Backend.
// Locks are not reentrant and not owned: Unlock deletes the key unconditionally.
type Locker struct {
	backend  Backend
	enabled  bool
	spin     time.Duration
	attempts int
	ttl      time.Duration
	logger   *slog.Logger
}

// Option configures a Locker.
type Option func(*Locker)

// WithLogger sets the logger used for contention diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locker) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Locker. A non-positive SpinWait disables retries: acquisition is attempted once.
func New(backend Backend, cfg Config, opts ...Option) *Locker {
	l := &Locker{
		backend: backend,
		enabled: cfg.Enabled && backend != nil,
		spin:    cfg.SpinWait,
		ttl:     cfg.MaxWait.Truncate(time.Second) + time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if cfg.SpinWait > 0 && cfg.MaxWait > 0 {
		l.attempts = int(cfg.MaxWait / cfg.SpinWait)
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Enabled reports whether lock calls reach the backend.
func (l *Locker) Enabled() bool {
	return l.enabled
}

// Attempts is the number of retries after the first failed acquisition.
func (l *Locker) Attempts() int {
	return l.attempts
}

// TTL is the lifetime of a lock key, so a crashed holder blocks others for at most MaxWait+1s.
func (l *Locker) TTL() time.Duration {
	return l.ttl
}

// Lock acquires the lock for key, polling every SpinWait.
// Returns ErrNoLock when the retry budget is exhausted and ctx.Err() when ctx ends first.
func (l *Locker) Lock(ctx context.Context, key string) error {
	if !l.enabled {
		return nil
	}

	lockKey := Key(key)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for attempt := 0; ; attempt++ {
		ok, err := l.backend.SetNX(ctx, lockKey, l.ttl)
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			if attempt > 0 {
				l.logger.DebugContext(ctx, "lock acquired after contention",
					slog.String("key", lockKey),
					slog.Int("attempts", attempt+1))
			}
			return nil
		}
		if attempt >= l.attempts {
			l.logger.WarnContext(ctx, "lock wait budget exhausted",
				slog.String("key", lockKey),
				slog.Int("attempts", attempt+1))
			return ErrNoLock
		}

		if timer == nil {
			timer = time.NewTimer(l.spin)
		} else {
			timer.Reset(l.spin)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Unlock releases the lock for key.
func (l *Locker) Unlock(ctx context.Context, key string) error {
	if !l.enabled {
		return nil
	}
	if err := l.backend.Del(ctx, Key(key)); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
