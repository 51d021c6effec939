package cookiestore

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrymomot/sessionkit/core/cookie"
	"github.com/dmitrymomot/sessionkit/core/session"
)

// Store keeps the sealed payload in the cookie itself. There is nothing to lock,
// nothing to delete and nothing to expire server-side.
type Store struct{}

var _ session.Storage = Store{}

// New returns a cookie storage.
func New() Store { return Store{} }

// Embedded reports true.
func (Store) Embedded() bool { return true }

// Open returns the payload carried by the token.
func (Store) Open(_ context.Context, tok cookie.Token, _ time.Duration) ([]byte, error) {
	if len(tok.Data) == 0 {
		return nil, session.ErrNotFound
	}
	return tok.Data, nil
}

// Save only validates ttl; the engine writes the payload into the cookie.
func (Store) Save(_ context.Context, _ []byte, ttl time.Duration, _ []byte, _ bool) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: ttl %s", session.ErrExpired, ttl)
	}
	return nil
}

func (Store) Start(context.Context, []byte) error              { return nil }
func (Store) Close(context.Context, []byte) error              { return nil }
func (Store) Destroy(context.Context, []byte) error            { return nil }
func (Store) TTL(context.Context, []byte, time.Duration) error { return nil }
