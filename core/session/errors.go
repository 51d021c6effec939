package session

import (
	"errors"

	"github.com/dmitrymomot/sessionkit/core/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/spinlock"
)

var (
	// ErrInvalidToken is returned when a cookie is malformed, expired, idle-expired or fails verification.
	// Open absorbs it and issues a fresh session.
	ErrInvalidToken = cookie.ErrInvalidToken
	// ErrCryptoFailure is returned when a payload cannot be sealed or opened.
	ErrCryptoFailure = errors.New("session crypto failure")
	// ErrStorageUnavailable wraps backend connectivity and I/O failures.
	ErrStorageUnavailable = errors.New("session storage unavailable")
	// ErrNoLock is returned when the storage lock was not acquired within the wait budget.
	ErrNoLock = spinlock.ErrNoLock
	// ErrExpired is returned by storage when a save would write a non-positive TTL.
	ErrExpired = errors.New("session has expired")
	// ErrNotFound is returned by storage when no record exists for an id.
	ErrNotFound = errors.New("session not found")
	// ErrNotPresent is returned by Touch on a session that was not restored from a valid token.
	ErrNotPresent = errors.New("session not present")
	// ErrDestroyed is returned by mutating calls after Destroy.
	ErrDestroyed = errors.New("session destroyed")
	// ErrClosed is returned by mutating calls after Close.
	ErrClosed = errors.New("session closed")
	// ErrNoSecret is returned when the manager is created without a secret.
	ErrNoSecret = errors.New("session secret is required")
	// ErrNoStorage is returned when the manager is created without a storage.
	ErrNoStorage = errors.New("session storage is required")
	// ErrLifetimeTooShort is returned when the lifetime is under one second, the expiry resolution.
	ErrLifetimeTooShort = errors.New("session lifetime must be at least one second")
	// ErrUnknownScheme is returned for an unsupported strategy name.
	ErrUnknownScheme = errors.New("unknown session scheme")
)
