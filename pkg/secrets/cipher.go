package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Cipher names accepted by NewCipher.
const (
	CipherAES      = "aes"
	CipherChaCha20 = "chacha20"
	CipherNone     = "none"
)

// keySize is the derived key length for both AEADs (AES-256, ChaCha20).
const keySize = 32

// Cipher seals session payloads under a per-session key.
// The salt is mixed into key derivation; context is authenticated as additional data,
// so decryption under a different context fails.
type Cipher interface {
	Name() string
	Encrypt(key, plaintext, salt, context []byte) ([]byte, error)
	Decrypt(key, ciphertext, salt, context []byte) ([]byte, error)
}

// NewCipher resolves a cipher by name.
func NewCipher(name string) (Cipher, error) {
	switch name {
	case CipherAES, "aes-gcm", "":
		return aeadCipher{name: CipherAES, newAEAD: newAESGCM}, nil
	case CipherChaCha20, "chacha20-poly1305":
		return aeadCipher{name: CipherChaCha20, newAEAD: chacha20poly1305.New}, nil
	case CipherNone:
		return noneCipher{}, nil
	default:
		return nil, fmt.Errorf("%w: cipher %q", ErrUnknownScheme, name)
	}
}

// DeriveKey expands key material with HKDF-SHA256 using salt and info.
func DeriveKey(key, salt, info []byte, size int) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	out := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, salt, info), out); err != nil {
		return nil, err
	}
	return out, nil
}

type aeadCipher struct {
	name    string
	newAEAD func(key []byte) (cipher.AEAD, error)
}

func newAESGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (c aeadCipher) Name() string { return c.name }

func (c aeadCipher) aead(key, salt, context []byte) (cipher.AEAD, error) {
	derived, err := DeriveKey(key, salt, context, keySize)
	if err != nil {
		return nil, err
	}
	defer clear(derived)
	return c.newAEAD(derived)
}

// Encrypt returns nonce || ciphertext.
func (c aeadCipher) Encrypt(key, plaintext, salt, context []byte) ([]byte, error) {
	aead, err := c.aead(key, salt, context)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	return aead.Seal(nonce, nonce, plaintext, context), nil
}

func (c aeadCipher) Decrypt(key, ciphertext, salt, context []byte) ([]byte, error) {
	aead, err := c.aead(key, salt, context)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	if len(ciphertext) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, context)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// noneCipher leaves payloads readable. Integrity still comes from the token hash.
type noneCipher struct{}

func (noneCipher) Name() string { return CipherNone }

func (noneCipher) Encrypt(_, plaintext, _, _ []byte) ([]byte, error) {
	return append([]byte(nil), plaintext...), nil
}

func (noneCipher) Decrypt(_, ciphertext, _, _ []byte) ([]byte, error) {
	return append([]byte(nil), ciphertext...), nil
}
