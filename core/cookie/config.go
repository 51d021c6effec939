package cookie

import (
	"fmt"
	"net/http"
	"strings"
)

// Config describes the session cookie and its wire layout.
type Config struct {
	Name       string `env:"COOKIE_NAME" envDefault:"session"`
	Persistent bool   `env:"COOKIE_PERSISTENT" envDefault:"false"`
	Domain     string `env:"COOKIE_DOMAIN" envDefault:""`
	Path       string `env:"COOKIE_PATH" envDefault:"/"`
	// SameSite is one of Lax, Strict, None or off (attribute omitted).
	SameSite string `env:"COOKIE_SAMESITE" envDefault:"Lax"`
	Secure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	HttpOnly bool   `env:"COOKIE_HTTPONLY" envDefault:"true"`
	// Delimiter separates token fields. It must not occur in encoded output.
	Delimiter string `env:"COOKIE_DELIMITER" envDefault:"|"`
	// MaxFragmentSize caps the value bytes per cookie before chunking kicks in.
	MaxFragmentSize int `env:"COOKIE_MAXSIZE" envDefault:"4000"`
	// MaxFragments bounds how many chunks are rendered or read.
	MaxFragments int `env:"COOKIE_MAXCHUNKS" envDefault:"10"`
}

// DefaultConfig returns a Config with secure defaults.
func DefaultConfig() Config {
	return Config{
		Name:            "session",
		Path:            "/",
		SameSite:        "Lax",
		HttpOnly:        true,
		Delimiter:       "|",
		MaxFragmentSize: DefaultMaxFragmentSize,
		MaxFragments:    DefaultMaxFragments,
	}
}

// ParseSameSite maps a configuration value to http.SameSite.
// "off" disables the attribute.
func ParseSameSite(value string) (http.SameSite, error) {
	switch strings.ToLower(value) {
	case "lax", "":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	case "off":
		return http.SameSiteDefaultMode, nil
	default:
		return 0, fmt.Errorf("%w: samesite %q", ErrInvalidConfig, value)
	}
}
