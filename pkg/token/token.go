package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Identifier schemes accepted by NewGenerator.
const (
	SchemeRandom = "random"
	SchemeUUID   = "uuid"
	SchemeULID   = "ulid"
)

// DefaultLength is the byte length of random identifiers.
const DefaultLength = 16

var (
	// ErrUnknownScheme is returned for unsupported identifier schemes.
	ErrUnknownScheme = errors.New("unknown identifier scheme")
	// ErrInvalidLength indicates a non-positive random identifier length.
	ErrInvalidLength = errors.New("identifier length must be positive")
	// ErrGenerate wraps entropy source failures.
	ErrGenerate = errors.New("failed to generate identifier")
)

// Generator mints session identifiers.
type Generator interface {
	Name() string
	New() ([]byte, error)
}

// NewGenerator resolves an identifier scheme. length applies to the random scheme only;
// zero selects DefaultLength. UUID and ULID identifiers are always 16 bytes.
func NewGenerator(scheme string, length int) (Generator, error) {
	switch scheme {
	case SchemeRandom, "":
		if length == 0 {
			length = DefaultLength
		}
		if length < 0 {
			return nil, ErrInvalidLength
		}
		return randomGenerator{length: length}, nil
	case SchemeUUID:
		return uuidGenerator{}, nil
	case SchemeULID:
		return ulidGenerator{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}

// Generate returns length bytes from crypto/rand.
func Generate(length int) ([]byte, error) {
	if length <= 0 {
		return nil, ErrInvalidLength
	}
	b := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, errors.Join(ErrGenerate, err)
	}
	return b, nil
}

type randomGenerator struct {
	length int
}

func (g randomGenerator) Name() string { return SchemeRandom }

func (g randomGenerator) New() ([]byte, error) {
	return Generate(g.length)
}

type uuidGenerator struct{}

func (uuidGenerator) Name() string { return SchemeUUID }

func (uuidGenerator) New() ([]byte, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.Join(ErrGenerate, err)
	}
	return id[:], nil
}

// ulidGenerator produces time-ordered identifiers; the first 6 bytes leak the creation time.
type ulidGenerator struct{}

func (ulidGenerator) Name() string { return SchemeULID }

func (ulidGenerator) New() ([]byte, error) {
	id, err := ulid.New(ulid.Now(), rand.Reader)
	if err != nil {
		return nil, errors.Join(ErrGenerate, err)
	}
	return id[:], nil
}
