package secrets

import "errors"

var (
	// ErrUnknownScheme is returned for cipher or hash names outside the supported set.
	ErrUnknownScheme = errors.New("unknown secrets scheme")
	// ErrEmptyKey indicates a nil or empty key was passed to a keyed operation.
	ErrEmptyKey = errors.New("key must not be empty")
	// ErrEncrypt wraps failures while sealing a payload.
	ErrEncrypt = errors.New("encryption failed")
	// ErrDecrypt indicates the ciphertext is truncated, tampered with or sealed under another key.
	ErrDecrypt = errors.New("decryption failed")
)
