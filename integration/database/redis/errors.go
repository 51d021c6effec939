package redis

import "errors"

// Connection errors. Session storage wraps them with session.ErrStorageUnavailable.
var (
	ErrEmptyURL    = errors.New("redis: empty connection URL")
	ErrInvalidURL  = errors.New("redis: invalid connection URL")
	ErrNotReady    = errors.New("redis: not ready within the retry budget")
	ErrUnreachable = errors.New("redis: healthcheck failed")
)
