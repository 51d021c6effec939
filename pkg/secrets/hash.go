package secrets

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Keyed hash names accepted by NewHasher.
const (
	HashSHA1    = "sha1"
	HashSHA256  = "sha256"
	HashSHA512  = "sha512"
	HashBLAKE2b = "blake2b"
)

// Hasher computes a keyed hash over the concatenation of parts.
type Hasher interface {
	Name() string
	Sum(key []byte, parts ...[]byte) []byte
}

// NewHasher resolves a keyed hash by name.
func NewHasher(name string) (Hasher, error) {
	switch name {
	case HashSHA1:
		return hmacHasher{name: name, fn: sha1.New}, nil
	case HashSHA256, "":
		return hmacHasher{name: HashSHA256, fn: sha256.New}, nil
	case HashSHA512:
		return hmacHasher{name: name, fn: sha512.New}, nil
	case HashBLAKE2b:
		return blake2bHasher{}, nil
	default:
		return nil, fmt.Errorf("%w: hmac %q", ErrUnknownScheme, name)
	}
}

// Equal compares two MACs in constant time.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

type hmacHasher struct {
	name string
	fn   func() hash.Hash
}

func (h hmacHasher) Name() string { return h.name }

func (h hmacHasher) Sum(key []byte, parts ...[]byte) []byte {
	mac := hmac.New(h.fn, key)
	for _, p := range parts {
		mac.Write(p)
	}
	return mac.Sum(nil)
}

// blake2bHasher uses BLAKE2b-256 in keyed mode. Keys longer than 64 bytes
// are first reduced with an unkeyed BLAKE2b-512.
type blake2bHasher struct{}

func (blake2bHasher) Name() string { return HashBLAKE2b }

func (blake2bHasher) Sum(key []byte, parts ...[]byte) []byte {
	if len(key) > blake2b.Size {
		sum := blake2b.Sum512(key)
		key = sum[:]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		// Only reachable with keys over 64 bytes, which are reduced above.
		panic(err)
	}
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}
