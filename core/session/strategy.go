package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrymomot/sessionkit/core/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/secrets"
	"github.com/dmitrymomot/sessionkit/pkg/token"
)

// record is the engine state a strategy signs and persists.
type record struct {
	id          []byte
	expires     time.Time
	usebefore   time.Time
	fingerprint []byte
	present     bool
	locked      bool
}

// strategy derives keys, seals payloads and verifies tokens.
type strategy interface {
	name() string
	// open returns the verified plaintext for tok.
	open(ctx context.Context, rec *record, tok cookie.Token) ([]byte, error)
	// save persists plaintext and returns the token to emit. It may replace rec.id.
	save(ctx context.Context, rec *record, plaintext []byte, close bool) (cookie.Token, error)
}

// sealer carries the primitives shared by both strategies.
type sealer struct {
	secret   []byte
	cipher   secrets.Cipher
	mac      secrets.Hasher
	storage  Storage
	ids      token.Generator
	lifetime time.Duration
	discard  time.Duration
	now      func() time.Time
}

func newStrategy(name string, s sealer) (strategy, error) {
	switch name {
	case StrategyDefault, "":
		return defaultStrategy{s}, nil
	case StrategyRegenerate:
		return regenerateStrategy{s}, nil
	default:
		return nil, fmt.Errorf("%w: strategy %q", ErrUnknownScheme, name)
	}
}

func (s sealer) load(ctx context.Context, tok cookie.Token, key []byte, fp []byte) ([]byte, error) {
	payload, err := s.storage.Open(ctx, tok, s.lifetime)
	if err != nil {
		return nil, err
	}
	plaintext, err := s.cipher.Decrypt(key, payload, tok.ID, fp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCryptoFailure, err)
	}
	return plaintext, nil
}

func (s sealer) seal(key, plaintext []byte, rec *record) ([]byte, error) {
	ciphertext, err := s.cipher.Encrypt(key, plaintext, rec.id, rec.fingerprint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCryptoFailure, err)
	}
	return ciphertext, nil
}

func (s sealer) persist(ctx context.Context, rec *record, ciphertext, hash []byte, close bool) (cookie.Token, error) {
	ttl := rec.expires.Sub(s.now())
	release := close && rec.locked
	err := s.storage.Save(ctx, rec.id, ttl, ciphertext, release)
	if release {
		// Save releases the lock on every path once asked to.
		rec.locked = false
	}
	if err != nil {
		return cookie.Token{}, err
	}

	tok := cookie.Token{
		ID:        rec.id,
		Expires:   rec.expires,
		UseBefore: rec.usebefore,
		Hash:      hash,
	}
	if s.storage.Embedded() {
		tok.Data = ciphertext
	}
	return tok, nil
}

func unix(t time.Time) []byte {
	return strconv.AppendInt(nil, t.Unix(), 10)
}

// defaultStrategy binds the key to the id and the absolute expiry.
// The id stays stable across saves.
type defaultStrategy struct{ sealer }

func (defaultStrategy) name() string { return StrategyDefault }

func (d defaultStrategy) open(ctx context.Context, rec *record, tok cookie.Token) ([]byte, error) {
	exp := unix(tok.Expires)
	key := d.mac.Sum(d.secret, tok.ID, exp)

	plaintext, err := d.load(ctx, tok, key, rec.fingerprint)
	if err != nil {
		return nil, err
	}
	if !secrets.Equal(d.mac.Sum(key, tok.ID, exp, plaintext, rec.fingerprint), tok.Hash) {
		return nil, fmt.Errorf("%w: hash mismatch", ErrInvalidToken)
	}
	return plaintext, nil
}

func (d defaultStrategy) save(ctx context.Context, rec *record, plaintext []byte, close bool) (cookie.Token, error) {
	exp := unix(rec.expires)
	key := d.mac.Sum(d.secret, rec.id, exp)

	ciphertext, err := d.seal(key, plaintext, rec)
	if err != nil {
		return cookie.Token{}, err
	}
	hash := d.mac.Sum(key, rec.id, exp, plaintext, rec.fingerprint)
	return d.persist(ctx, rec, ciphertext, hash, close)
}

// regenerateStrategy binds the key to the id only and rotates the id on every save of a
// present session. The previous record stays readable for the discard window.
type regenerateStrategy struct{ sealer }

func (regenerateStrategy) name() string { return StrategyRegenerate }

func (g regenerateStrategy) open(ctx context.Context, rec *record, tok cookie.Token) ([]byte, error) {
	key := g.mac.Sum(g.secret, tok.ID)

	plaintext, err := g.load(ctx, tok, key, rec.fingerprint)
	if err != nil {
		return nil, err
	}
	if !secrets.Equal(g.mac.Sum(key, tok.ID, plaintext, rec.fingerprint), tok.Hash) {
		return nil, fmt.Errorf("%w: hash mismatch", ErrInvalidToken)
	}
	return plaintext, nil
}

func (g regenerateStrategy) save(ctx context.Context, rec *record, plaintext []byte, close bool) (cookie.Token, error) {
	if rec.present {
		if err := g.storage.TTL(ctx, rec.id, g.discard); err != nil {
			return cookie.Token{}, err
		}
		if rec.locked {
			if err := g.storage.Close(ctx, rec.id); err != nil {
				return cookie.Token{}, err
			}
			rec.locked = false
		}
		id, err := g.ids.New()
		if err != nil {
			return cookie.Token{}, err
		}
		rec.id = id
	}

	key := g.mac.Sum(g.secret, rec.id)
	ciphertext, err := g.seal(key, plaintext, rec)
	if err != nil {
		return cookie.Token{}, err
	}
	hash := g.mac.Sum(key, rec.id, plaintext, rec.fingerprint)
	return g.persist(ctx, rec, ciphertext, hash, close)
}
