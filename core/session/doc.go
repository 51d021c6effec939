// Package session implements signed, encrypted, cookie-addressed sessions with pluggable storage.
//
// # Core Components
//
//   - Manager: built once from Config and a Storage, safe for concurrent use
//   - Session: one request's view of a session, generic over the Data payload
//   - Storage: the backend contract (see core/sessionstore for implementations)
//   - Observer: receives an Event after every public operation
//
// # Basic Usage
//
// Build the manager at startup:
//
//	cfg := session.DefaultConfig()
//	cfg.Secret = os.Getenv("SESSION_SECRET")
//
//	store := memstore.New(kvstore.DefaultConfig())
//	manager, err := session.NewManager[UserData](cfg, store, session.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
// Then start a session per request:
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		s, err := manager.Start(r.Context(), w, r)
//		if err != nil {
//			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
//			return
//		}
//		defer s.Close(r.Context())
//
//		s.Data.Visits++
//		if err := s.Save(r.Context()); err != nil {
//			...
//		}
//	}
//
// Read-only handlers use Open, which never takes the storage lock:
//
//	s, err := manager.Open(r.Context(), w, r)
//	if err != nil {
//		return err
//	}
//	if !s.Present {
//		http.Redirect(w, r, "/login", http.StatusSeeOther)
//		return nil
//	}
//
// The middleware package wraps this flow and stores the session in the request context.
//
// # Token
//
// The cookie carries id|expires:usebefore|hash for server-side storage and
// id|expires:usebefore|data|hash when the payload is embedded. Fields are encoded with the
// configured encoder. Expiry values are decimal Unix seconds. Large values are split over
// name, name_2, ... cookies (see core/cookie).
//
// # Strategies
//
// The default strategy derives the payload key from the secret, the id and the absolute
// expiry, so every save re-keys the payload while the id stays stable. The regenerate
// strategy derives the key from the id alone and rotates the id on each save of a present
// session, leaving the previous record readable for DiscardWindow so concurrent requests
// holding the old cookie still succeed.
//
//	cfg.Strategy = session.StrategyRegenerate
//	cfg.DiscardWindow = 10 * time.Second
//
// Both strategies authenticate the plaintext together with a request fingerprint
// (pkg/fingerprint). Verification uses a constant-time compare after decryption.
//
// # Session States and Lifecycle
//
//	Unopened -> Opened -> Started -> Closed
//	                  \-> Destroyed
//
// Open never fails on a bad cookie: the session is reset to a fresh id with Present=false
// and the reason is reported to the logger and to the observer. Start takes the storage
// lock and renews the token inside RenewWindow or when the cookie outlives Lifetime,
// otherwise it only touches the idle deadline. Save, Touch and Regenerate write the cookie.
// After Destroy the session only accepts Close. State reports the current position.
//
// # Locking
//
// Start acquires a per-id lock in storage and the session keeps it until Save, Close or
// Destroy. A save that fails still releases the lock, so a broken request never blocks the
// next one for the whole lock wait. Always defer Close after a successful Start.
//
// # Manager Methods
//
//	New(w, r)        // unopened session, no I/O
//	Open(ctx, w, r)  // restore from the cookie without locking
//	Start(ctx, w, r) // open, lock and renew
//	Config()         // effective configuration
//	Cookies()        // the cookie codec
//
// # Session Methods
//
//	Start(ctx)             // lock and renew
//	Save(ctx)              // persist Data, write the cookie, release the lock
//	Touch(ctx)             // extend the idle deadline only
//	Regenerate(ctx, flush) // move to a new id, optionally dropping Data
//	Destroy(ctx)           // delete the record and expire the cookie
//	Close(ctx)             // release the lock, idempotent
//
// # Configuration Options
//
// Config fields load from SESSION_* environment variables (see core/config):
//
//	SESSION_SECRET      required
//	SESSION_LIFETIME    absolute lifetime, at least 1s (default 1h)
//	SESSION_IDLETIME    idle timeout, 0 disables (default 0s)
//	SESSION_RENEW       renew window before expiry (default 10m)
//	SESSION_DISCARD     grace period of rotated ids (default 10s)
//	SESSION_STRATEGY    default or regenerate
//	SESSION_CIPHER      aes, chacha20 or none
//	SESSION_HMAC        sha1, sha256, sha512 or blake2b
//
// Functional options adjust the runtime pieces:
//
//	session.WithLogger(log)
//	session.WithObserver(session.Observers(metricsObserver, auditObserver))
//	session.WithGenerator(gen)
//	session.WithClock(clk.Now)
//
// # Error Handling
//
// Configuration errors surface from NewManager: ErrNoSecret, ErrNoStorage,
// ErrLifetimeTooShort and ErrUnknownScheme. Runtime errors wrap sentinels that can be
// checked with errors.Is:
//
//	err := s.Start(ctx)
//	switch {
//	case errors.Is(err, session.ErrNoLock):
//		// another request holds the session for longer than the lock wait
//	case errors.Is(err, session.ErrStorageUnavailable):
//		// backend down
//	case errors.Is(err, session.ErrClosed), errors.Is(err, session.ErrDestroyed):
//		// programming error
//	}
//
// ErrInvalidToken never reaches callers of Open. It is reported through Event.Err.
//
// # Implementing Storage
//
// A Storage keys records by raw id bytes. Open refreshes the TTL on a hit and returns
// ErrNotFound on a miss. Save with close set must release the lock on every path,
// including failures. Embedded backends keep no records and return the payload carried by
// the token.
//
// # Thread Safety
//
// Manager is safe for concurrent use. A Session belongs to one request and must not be
// shared between goroutines.
package session
