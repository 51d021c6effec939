package session

import (
	"context"
	"time"

	"github.com/dmitrymomot/sessionkit/core/cookie"
)

// Storage holds server-side session state. Implementations must be safe for concurrent use
// and must release any lock they acquire on every return path of the acquiring call.
//
// Ids are raw bytes; backends encode them into keys of the form prefix:encode(id).
type Storage interface {
	// Open returns the stored payload for tok and refreshes the record TTL to lifetime.
	// Returns ErrNotFound on a miss. Embedded backends return tok.Data.
	Open(ctx context.Context, tok cookie.Token, lifetime time.Duration) ([]byte, error)
	// Start acquires the record lock and keeps it until Save(close), Close or Destroy.
	Start(ctx context.Context, id []byte) error
	// Save writes payload with ttl. A non-positive ttl fails with ErrExpired.
	// When close is set the lock is released whatever the outcome.
	Save(ctx context.Context, id []byte, ttl time.Duration, payload []byte, close bool) error
	// Close releases the lock.
	Close(ctx context.Context, id []byte) error
	// Destroy deletes the record and releases the lock.
	Destroy(ctx context.Context, id []byte) error
	// TTL re-expires the record, used for the grace window of rotated ids.
	TTL(ctx context.Context, id []byte, ttl time.Duration) error
	// Embedded reports whether the payload travels inside the cookie.
	Embedded() bool
}
