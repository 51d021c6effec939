// Package secrets provides the confidentiality and integrity primitives behind session tokens.
//
// # Security Model
//
// Ciphers are authenticated (AEAD) and derive a fresh 256-bit key per call with HKDF-SHA256
// from the caller's key material, a salt and an info string. The session engine passes the
// session id as salt and the request fingerprint as context, so a payload only opens for the
// same session and the same request context. The context is also bound as additional data.
//
// Derived keys are cleared from memory once the AEAD is built. Nonces are random per call
// and prefixed to the ciphertext.
//
// # Features
//
//   - AES-256-GCM ("aes") and ChaCha20-Poly1305 ("chacha20") selected by name
//   - "none" for deployments that only need integrity
//   - keyed hashes: HMAC-SHA1, HMAC-SHA256, HMAC-SHA512 and keyed BLAKE2b-256
//   - constant-time MAC comparison
//
// # Usage
//
// Encrypting a payload:
//
//	c, err := secrets.NewCipher(secrets.CipherAES)
//	if err != nil {
//		return err
//	}
//
//	sealed, err := c.Encrypt(key, plaintext, id, fingerprint)
//	if err != nil {
//		return err // wraps secrets.ErrEncrypt
//	}
//
//	plain, err := c.Decrypt(key, sealed, id, fingerprint)
//	if errors.Is(err, secrets.ErrDecrypt) {
//		// tampered, truncated or opened with another key, salt or context
//	}
//
// Signing token fields:
//
//	h, err := secrets.NewHasher(secrets.HashSHA256)
//	if err != nil {
//		return err
//	}
//	mac := h.Sum(key, id, expires, plaintext, fingerprint)
//	if !secrets.Equal(mac, fromCookie) {
//		return ErrInvalidToken
//	}
//
// Sum writes the parts back to back, so callers fix the part order and sizes.
//
// Deriving sub-keys directly:
//
//	sub, err := secrets.DeriveKey(master, salt, []byte("purpose"), 32)
//
// # Names
//
// NewCipher accepts "aes" (alias "aes-gcm", and the empty string), "chacha20" (alias
// "chacha20-poly1305") and "none". NewHasher accepts "sha1", "sha256", "sha512" and
// "blake2b". Anything else fails with ErrUnknownScheme, so a typo in configuration is caught
// when the session manager is built.
//
// # Error Handling
//
//	ErrUnknownScheme  unsupported cipher or hash name
//	ErrEmptyKey       nil or empty key material
//	ErrEncrypt        sealing failed, wraps the cause
//	ErrDecrypt        opening failed, the cause is not exposed
//
// # Security Considerations
//
// HMAC-SHA1 is kept for compatibility with existing cookies. Prefer sha256 or blake2b for
// new deployments. The "none" cipher leaves payloads readable in cookie storage, so only use
// it when Data holds nothing sensitive. Rotating the secret invalidates every outstanding
// session.
package secrets
