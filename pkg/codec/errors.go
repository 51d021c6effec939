package codec

import "errors"

var (
	// ErrUnknownScheme is returned when an encoder or serializer name is not recognized.
	ErrUnknownScheme = errors.New("unknown codec scheme")
	// ErrDecode indicates malformed encoded input.
	ErrDecode = errors.New("failed to decode value")
)
