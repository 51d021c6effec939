// Package middleware provides net/http middleware that binds sessions to requests.
//
// Every middleware follows the same shape: a default constructor, a WithConfig
// constructor taking a config struct with an optional Skip func, and context helpers
// for retrieving what the middleware stored.
//
// # Session Middleware
//
// Session starts a session before the handler runs and closes it afterwards, releasing
// the storage lock even when the handler forgets to save.
//
//	mux := http.NewServeMux()
//	mux.Handle("/", middleware.Session(manager)(http.HandlerFunc(index)))
//
//	func index(w http.ResponseWriter, r *http.Request) {
//		sess := middleware.MustGetSession[UserData](r.Context())
//		sess.Data.Visits++
//		_ = sess.Save(r.Context())
//	}
//
// With OpenOnly the session is restored but not started, which suits read-heavy
// routes that should not contend for the lock.
//
// # Request ID Middleware
//
// RequestID tags each request with an identifier in the context and the response
// header. RequestIDExtractor feeds it into context-aware loggers:
//
//	log := logger.New(logger.WithContextExtractors(middleware.RequestIDExtractor))
package middleware
