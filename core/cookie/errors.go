package cookie

import (
	"errors"
	"fmt"
)

var (
	// ErrCookieNotFound indicates the request carries no session cookie.
	ErrCookieNotFound = errors.New("cookie not found in request")

	// ErrInvalidToken indicates a malformed, expired or undecodable token.
	// Callers treat it as an absent session.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrInvalidConfig indicates an unusable codec configuration.
	ErrInvalidConfig = errors.New("invalid cookie configuration")
)

// ErrCookieTooLarge indicates the value needs more fragments than allowed.
type ErrCookieTooLarge struct {
	Name string
	Size int
	Max  int
}

// Error implements the error interface.
func (e ErrCookieTooLarge) Error() string {
	return fmt.Sprintf("cookie %q size %d exceeds maximum %d bytes", e.Name, e.Size, e.Max)
}
