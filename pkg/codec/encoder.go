package codec

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Encoder names accepted by NewEncoder.
const (
	EncoderBase64 = "base64"
	EncoderBase16 = "base16"
)

// Encoder turns binary token fields into cookie-safe text and back.
// Encoded output must never contain the cookie field delimiter.
type Encoder interface {
	Name() string
	Encode(src []byte) string
	Decode(src string) ([]byte, error)
}

// NewEncoder resolves an encoder by name. "hex" is accepted as an alias of base16.
func NewEncoder(name string) (Encoder, error) {
	switch name {
	case EncoderBase64, "":
		return base64Encoder{}, nil
	case EncoderBase16, "hex":
		return base16Encoder{}, nil
	default:
		return nil, fmt.Errorf("%w: encoder %q", ErrUnknownScheme, name)
	}
}

// base64Encoder uses the URL alphabet without padding.
type base64Encoder struct{}

func (base64Encoder) Name() string { return EncoderBase64 }

func (base64Encoder) Encode(src []byte) string {
	return base64.RawURLEncoding.EncodeToString(src)
}

func (base64Encoder) Decode(src string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return b, nil
}

type base16Encoder struct{}

func (base16Encoder) Name() string { return EncoderBase16 }

func (base16Encoder) Encode(src []byte) string {
	return hex.EncodeToString(src)
}

func (base16Encoder) Decode(src string) ([]byte, error) {
	b, err := hex.DecodeString(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return b, nil
}
