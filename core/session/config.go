package session

import (
	"time"

	"github.com/dmitrymomot/sessionkit/core/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/fingerprint"
)

// Strategy names accepted by Config.Strategy.
const (
	StrategyDefault    = "default"
	StrategyRegenerate = "regenerate"
)

// Config holds session manager settings.
// Component names are resolved once by NewManager.
type Config struct {
	Secret string `env:"SESSION_SECRET"`

	Lifetime      time.Duration `env:"SESSION_LIFETIME" envDefault:"1h"`
	IdleTime      time.Duration `env:"SESSION_IDLETIME" envDefault:"0s"`
	RenewWindow   time.Duration `env:"SESSION_RENEW" envDefault:"10m"`
	DiscardWindow time.Duration `env:"SESSION_DISCARD" envDefault:"10s"`

	Identifier       string `env:"SESSION_IDENTIFIER" envDefault:"random"`
	IdentifierLength int    `env:"SESSION_IDENTIFIER_LENGTH" envDefault:"16"`
	Serializer       string `env:"SESSION_SERIALIZER" envDefault:"json"`
	Encoder          string `env:"SESSION_ENCODER" envDefault:"base64"`
	Cipher           string `env:"SESSION_CIPHER" envDefault:"aes"`
	HMAC             string `env:"SESSION_HMAC" envDefault:"sha256"`
	Strategy         string `env:"SESSION_STRATEGY" envDefault:"default"`

	Cookie cookie.Config      `envPrefix:"SESSION_"`
	Check  fingerprint.Config `envPrefix:"SESSION_CHECK_"`
}

// DefaultConfig returns the default configuration without a secret.
func DefaultConfig() Config {
	return Config{
		Lifetime:         time.Hour,
		RenewWindow:      10 * time.Minute,
		DiscardWindow:    10 * time.Second,
		Identifier:       "random",
		IdentifierLength: 16,
		Serializer:       "json",
		Encoder:          "base64",
		Cipher:           "aes",
		HMAC:             "sha256",
		Strategy:         StrategyDefault,
		Cookie:           cookie.DefaultConfig(),
		Check:            fingerprint.DefaultConfig(),
	}
}
