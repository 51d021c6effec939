// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// A .env file is read on first use (github.com/joho/godotenv) and struct fields are
// filled by github.com/caarlos0/env/v11:
//
//	var cfg struct {
//		Session session.Config
//		Store   sessionstore.Config
//	}
//	config.MustLoad(&cfg)
//
// Session settings use the SESSION_ prefix (SESSION_SECRET, SESSION_LIFETIME,
// SESSION_COOKIE_NAME, SESSION_STORAGE, ...); Redis settings use REDIS_.
//
// # Caching Behavior
//
// Different types are cached independently. Call Reset in tests after changing the
// environment with t.Setenv.
package config
