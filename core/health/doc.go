// Package health provides HTTP handlers for service health monitoring.
//
// Handlers:
//   - Liveness: process is running (no dependency checks)
//   - Readiness: all dependencies are available
//   - NoContent: 204 for minimal overhead
//
// Usage:
//
//	mux.HandleFunc("/health/live", health.Liveness)
//	mux.Handle("/health/ready", health.Readiness(log, 2*time.Second,
//		sessions.Healthcheck,
//		redis.Healthcheck(client),
//	))
//	mux.HandleFunc("/ping", health.NoContent)
package health
