package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrymomot/sessionkit/core/cookie"
	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/pkg/fingerprint"
)

// HeaderWriter is the part of http.ResponseWriter a session writes cookies to.
type HeaderWriter interface {
	Header() http.Header
}

// Session is one request's view of a session.
// It is not safe for concurrent use; cross-request coordination goes through Storage locks.
type Session[Data any] struct {
	ID        []byte
	Data      Data
	Expires   time.Time
	UseBefore time.Time
	// Present reports whether the session was restored from a valid token or has been saved.
	Present bool

	m      *Manager[Data]
	w      HeaderWriter
	r      *http.Request
	state  State
	fp     []byte
	chunks int
	token  cookie.Token
	locked bool
}

// State returns the lifecycle state.
func (s *Session[Data]) State() State {
	return s.state
}

// EncodedID returns the id as it appears in the cookie.
func (s *Session[Data]) EncodedID() string {
	return s.m.cookies.Encoder().Encode(s.ID)
}

// Open restores the session from the request cookie. Any verification failure is logged
// and yields a fresh, non-present session with a new id. It only fails when an id cannot
// be generated. Calling Open again is a no-op.
func (s *Session[Data]) Open(ctx context.Context) (err error) {
	if s.state != StateUnopened {
		return nil
	}
	start := time.Now()
	var reason error
	defer func() { s.m.observe(ctx, OpOpen, s.Present, errors.Join(reason, err), start) }()

	s.fp = []byte(fingerprint.Generate(s.r, s.m.checks...))
	s.state = StateOpened

	if reason = s.restore(ctx); reason == nil {
		return nil
	}

	switch {
	case errors.Is(reason, cookie.ErrCookieNotFound):
		reason = nil
	case errors.Is(reason, ErrStorageUnavailable), errors.Is(reason, ErrNoLock):
		s.m.logger.WarnContext(ctx, "session could not be loaded", logger.Error(reason))
	default:
		s.m.logger.DebugContext(ctx, "session cookie rejected", logger.Error(reason))
	}

	return s.reset()
}

func (s *Session[Data]) restore(ctx context.Context) error {
	value, chunks, err := s.m.cookies.Read(s.r)
	s.chunks = chunks
	if err != nil {
		return err
	}

	now := s.m.now()
	tok, err := s.m.cookies.Parse(value, s.m.storage.Embedded(), now)
	if err != nil {
		return err
	}
	if !tok.UseBefore.IsZero() && now.Unix() > tok.UseBefore.Unix() {
		return fmt.Errorf("%w: idle timeout", ErrInvalidToken)
	}

	plaintext, err := s.m.strategy.open(ctx, &record{
		id:          tok.ID,
		expires:     tok.Expires,
		usebefore:   tok.UseBefore,
		fingerprint: s.fp,
	}, tok)
	if err != nil {
		return err
	}

	var data Data
	if err := s.m.serializer.Unmarshal(plaintext, &data); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	s.ID = tok.ID
	s.Data = data
	s.Expires = tok.Expires
	s.UseBefore = tok.UseBefore
	s.token = tok
	s.Present = true
	return nil
}

func (s *Session[Data]) reset() error {
	id, err := s.m.ids.New()
	if err != nil {
		return fmt.Errorf("generate session id: %w", err)
	}
	var zero Data
	s.ID = id
	s.Data = zero
	s.Expires = time.Time{}
	s.UseBefore = time.Time{}
	s.token = cookie.Token{}
	s.Present = false
	return nil
}

// Start opens the session if needed and takes the storage lock. A non-present session is
// saved right away. A present one is re-saved when it is inside the renew window or its
// expiry exceeds the configured lifetime, otherwise it is touched.
func (s *Session[Data]) Start(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.m.observe(ctx, OpStart, s.Present, err, start) }()

	if err := s.Open(ctx); err != nil {
		return err
	}
	if err := s.mutable(); err != nil {
		return err
	}

	if !s.Present {
		return s.save(ctx, true)
	}

	if !s.locked {
		if err := s.m.storage.Start(ctx, s.ID); err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		s.locked = true
	}

	now := s.m.now()
	if s.Expires.Sub(now) < s.m.cfg.RenewWindow || s.Expires.After(now.Add(s.m.cfg.Lifetime)) {
		return s.save(ctx, true)
	}
	return s.touch(ctx, true)
}

// Save persists Data, emits a fresh cookie and releases the storage lock.
func (s *Session[Data]) Save(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.m.observe(ctx, OpSave, s.Present, err, start) }()

	if err := s.Open(ctx); err != nil {
		return err
	}
	if err := s.mutable(); err != nil {
		return err
	}
	return s.save(ctx, true)
}

func (s *Session[Data]) save(ctx context.Context, close bool) error {
	now := s.m.now()
	expires := time.Unix(now.Add(s.m.cfg.Lifetime).Unix(), 0)
	var usebefore time.Time
	if s.m.cfg.IdleTime > 0 {
		usebefore = time.Unix(now.Add(s.m.cfg.IdleTime).Unix(), 0)
	}

	plaintext, err := s.m.serializer.Marshal(s.Data)
	if err != nil {
		return fmt.Errorf("serialize session: %w", err)
	}

	rec := &record{
		id:          s.ID,
		expires:     expires,
		usebefore:   usebefore,
		fingerprint: s.fp,
		present:     s.Present,
		locked:      s.locked,
	}
	tok, err := s.m.strategy.save(ctx, rec, plaintext, close)
	if err != nil && close && rec.locked {
		// The strategy failed before the lock reached storage.
		if uerr := s.m.storage.Close(ctx, rec.id); uerr != nil {
			err = errors.Join(err, uerr)
		}
		rec.locked = false
	}
	s.locked = rec.locked && !close
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if err := s.emit(tok); err != nil {
		return err
	}

	s.ID = tok.ID
	s.Expires = expires
	s.UseBefore = usebefore
	s.token = tok
	s.Present = true
	s.state = StateStarted
	return nil
}

// Touch extends the idle deadline without re-signing. The cookie is rewritten only when the
// deadline changes, so repeated calls within one second emit nothing.
func (s *Session[Data]) Touch(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.m.observe(ctx, OpTouch, s.Present, err, start) }()

	if err := s.Open(ctx); err != nil {
		return err
	}
	if err := s.mutable(); err != nil {
		return err
	}
	return s.touch(ctx, false)
}

func (s *Session[Data]) touch(ctx context.Context, close bool) error {
	if !s.Present {
		return ErrNotPresent
	}

	if s.m.cfg.IdleTime > 0 {
		usebefore := time.Unix(s.m.now().Add(s.m.cfg.IdleTime).Unix(), 0)
		if !usebefore.Equal(s.UseBefore) {
			tok := s.token
			tok.UseBefore = usebefore
			if err := s.emit(tok); err != nil {
				return err
			}
			s.token = tok
			s.UseBefore = usebefore
		}
	}

	if close {
		if err := s.unlock(ctx); err != nil {
			return err
		}
	}
	s.state = StateStarted
	return nil
}

// Regenerate moves the session to a new id and saves it. With flush the old record is
// deleted and Data is cleared; without it the old record is left to expire on its own.
func (s *Session[Data]) Regenerate(ctx context.Context, flush bool) (err error) {
	start := time.Now()
	defer func() { s.m.observe(ctx, OpRegenerate, s.Present, err, start) }()

	if err := s.Open(ctx); err != nil {
		return err
	}
	if err := s.mutable(); err != nil {
		return err
	}

	if s.Present {
		if flush {
			if err := s.m.storage.Destroy(ctx, s.ID); err != nil {
				return fmt.Errorf("regenerate session: %w", err)
			}
			s.locked = false
			var zero Data
			s.Data = zero
		} else if err := s.unlock(ctx); err != nil {
			return fmt.Errorf("regenerate session: %w", err)
		}
	}

	id, err := s.m.ids.New()
	if err != nil {
		return fmt.Errorf("generate session id: %w", err)
	}
	s.ID = id
	s.Present = false
	return s.save(ctx, true)
}

// Destroy deletes the stored record, clears Data and expires every cookie chunk.
// The session cannot be saved afterwards.
func (s *Session[Data]) Destroy(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.m.observe(ctx, OpDestroy, s.Present, err, start) }()

	if s.state == StateDestroyed {
		return nil
	}
	if err := s.Open(ctx); err != nil {
		return err
	}

	if s.Present {
		if err := s.m.storage.Destroy(ctx, s.ID); err != nil {
			return fmt.Errorf("destroy session: %w", err)
		}
	}

	var zero Data
	s.Data = zero
	s.Present = false
	s.locked = false
	s.token = cookie.Token{}
	cookie.Emit(s.w.Header(), s.m.cookies.Expire(s.chunks)...)
	s.chunks = 0
	s.state = StateDestroyed
	return nil
}

// Close releases the storage lock if this session holds it. It is idempotent.
func (s *Session[Data]) Close(ctx context.Context) (err error) {
	switch s.state {
	case StateUnopened, StateClosed, StateDestroyed:
		return nil
	}

	start := time.Now()
	defer func() { s.m.observe(ctx, OpClose, s.Present, err, start) }()

	if err := s.unlock(ctx); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	s.state = StateClosed
	return nil
}

func (s *Session[Data]) unlock(ctx context.Context) error {
	if !s.locked {
		return nil
	}
	s.locked = false
	return s.m.storage.Close(ctx, s.ID)
}

func (s *Session[Data]) mutable() error {
	switch s.state {
	case StateDestroyed:
		return ErrDestroyed
	case StateClosed:
		return ErrClosed
	}
	return nil
}

func (s *Session[Data]) emit(tok cookie.Token) error {
	value := s.m.cookies.Encode(tok, s.m.storage.Embedded())
	cookies, err := s.m.cookies.Render(value, tok.Expires, s.chunks)
	if err != nil {
		return err
	}
	cookie.Emit(s.w.Header(), cookies...)

	n := 0
	for _, ck := range cookies {
		if ck.MaxAge >= 0 {
			n++
		}
	}
	s.chunks = n
	return nil
}
