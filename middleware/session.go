package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/core/session"
)

type sessionKey struct{}

// SessionConfig configures the session middleware.
type SessionConfig[Data any] struct {
	// Manager issues and verifies session cookies (required)
	Manager *session.Manager[Data]
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// Logger for structured logging (default: discard)
	Logger *slog.Logger
	// OpenOnly restores the session without taking the storage lock or renewing it.
	// Handlers call Start, Save or Touch themselves.
	OpenOnly bool
	// ErrorHandler writes the response when the session cannot be started
	// Default: 503 for lock and storage failures, 500 otherwise
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// Session creates middleware that starts a session for every request, stores it in the
// request context and closes it after the handler returns.
//
// Usage:
//
//	mux.Handle("/", middleware.Session(manager)(handler))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		sess := middleware.MustGetSession[UserData](r.Context())
//		sess.Data.Visits++
//		if err := sess.Save(r.Context()); err != nil {
//			http.Error(w, err.Error(), http.StatusInternalServerError)
//			return
//		}
//		fmt.Fprintf(w, "visits: %d", sess.Data.Visits)
//	}
//
// Cookies are written to the response headers when the session is saved, so handlers
// must call Save, Touch, Regenerate or Destroy before writing the body.
func Session[Data any](m *session.Manager[Data]) func(http.Handler) http.Handler {
	return SessionWithConfig(SessionConfig[Data]{Manager: m})
}

// SessionWithConfig creates a session middleware with custom configuration.
//
//	// Read-only routes don't need the storage lock
//	api.Use(middleware.SessionWithConfig(middleware.SessionConfig[UserData]{
//		Manager:  manager,
//		OpenOnly: true,
//		Skip: func(r *http.Request) bool {
//			return r.URL.Path == "/health"
//		},
//	}))
func SessionWithConfig[Data any](cfg SessionConfig[Data]) func(http.Handler) http.Handler {
	if cfg.Manager == nil {
		panic("session middleware: manager is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultSessionErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			var (
				sess *session.Session[Data]
				err  error
			)
			if cfg.OpenOnly {
				sess, err = cfg.Manager.Open(ctx, w, r)
			} else {
				sess, err = cfg.Manager.Start(ctx, w, r)
			}
			if err != nil {
				cfg.Logger.ErrorContext(ctx, "session middleware: failed to start session", logger.Error(err))
				cfg.ErrorHandler(w, r, err)
				return
			}

			defer func() {
				// The request context may already be cancelled, the lock must still go.
				if err := sess.Close(context.WithoutCancel(ctx)); err != nil {
					cfg.Logger.ErrorContext(ctx, "session middleware: failed to close session",
						logger.Error(err),
						logger.Key("session", sess.EncodedID()),
					)
				}
			}()

			next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))
		})
	}
}

func defaultSessionErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, session.ErrNoLock) || errors.Is(err, session.ErrStorageUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	http.Error(w, http.StatusText(status), status)
}

// WithSession returns a copy of ctx carrying sess.
func WithSession[Data any](ctx context.Context, sess *session.Session[Data]) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// GetSession retrieves the session from context.
func GetSession[Data any](ctx context.Context) (*session.Session[Data], bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(sessionKey{}).(*session.Session[Data])
	return sess, ok && sess != nil
}

// MustGetSession retrieves the session from context or panics if not found.
// Use this when session existence is guaranteed by middleware.
func MustGetSession[Data any](ctx context.Context) *session.Session[Data] {
	sess, ok := GetSession[Data](ctx)
	if !ok {
		panic("session not found in context")
	}
	return sess
}
