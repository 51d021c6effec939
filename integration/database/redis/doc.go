// Package redis creates go-redis clients for the session storage and checks their health.
//
// Connect validates the URL, opens the client and pings it with exponential backoff
// (github.com/cenkalti/backoff/v4) before handing it out, so a service never starts with a
// dead session backend:
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL:  "redis://localhost:6379/0",
//		RetryAttempts:  3,
//		RetryInterval:  time.Second,
//		ConnectTimeout: 10 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Healthcheck wraps a ping for readiness probes.
//
// # Configuration
//
// Config maps to REDIS_URL, REDIS_POOL_SIZE, REDIS_POOL_TIMEOUT, REDIS_RETRY_ATTEMPTS,
// REDIS_RETRY_INTERVAL and REDIS_CONNECT_TIMEOUT. Both redis:// and rediss:// URLs are accepted.
//
// # Errors
//
//   - ErrEmptyURL: no URL configured
//   - ErrInvalidURL: the URL is malformed
//   - ErrNotReady: no successful ping within the retry budget
//   - ErrUnreachable: a health ping failed
package redis
