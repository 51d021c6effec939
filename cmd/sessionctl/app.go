package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/sessionkit/core/config"
	"github.com/dmitrymomot/sessionkit/core/logger"
	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/core/sessionstore"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

const envKey = "env"

// settings is everything sessionctl reads from the environment.
type settings struct {
	Session session.Config
	Storage sessionstore.Config
}

// Data is the session payload sessionctl works with.
type Data = map[string]any

// environment is built once per invocation in App.Before.
type environment struct {
	settings settings
	logger   *slog.Logger
	backend  *sessionstore.Backend
	manager  *session.Manager[Data]
	opens    *openRecorder
}

// openRecorder keeps the reason the last cookie was rejected. Open itself never fails on a
// bad cookie, so this is the only way to tell the user why.
type openRecorder struct {
	mu     sync.Mutex
	reason error
}

func (o *openRecorder) Observe(_ context.Context, ev session.Event) {
	if ev.Operation != session.OpOpen {
		return
	}
	o.mu.Lock()
	o.reason = ev.Err
	o.mu.Unlock()
}

func (o *openRecorder) Reason() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reason
}

// headerSink collects the headers a session writes.
type headerSink http.Header

func (h headerSink) Header() http.Header { return http.Header(h) }

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "sessionctl",
		Usage:   "Issue, inspect and destroy session cookies",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			IssueCommand(),
			InspectCommand(),
			DestroyCommand(),
			ConfigCommand(),
		},
		Before: setup,
		After: func(c *cli.Context) error {
			if env, ok := c.App.Metadata[envKey].(*environment); ok && env.backend != nil {
				return env.backend.Shutdown()
			}
			return nil
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "secret",
			Usage:   "Signing secret (overrides SESSION_SECRET)",
			EnvVars: []string{"SESSIONCTL_SECRET"},
		},
		&cli.StringFlag{
			Name:  "storage",
			Usage: "Storage backend: cookie, memory, redis (overrides SESSION_STORAGE)",
		},
		&cli.StringFlag{
			Name:  "redis-url",
			Usage: "Redis connection URL (overrides REDIS_URL)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
			Value: "warn",
		},
		&cli.StringFlag{
			Name:  "user-agent",
			Usage: "User-Agent of the request the cookie is bound to",
		},
		&cli.StringFlag{
			Name:  "remote-addr",
			Usage: "Remote address of the request the cookie is bound to",
			Value: "192.0.2.1:1234",
		},
	}
}

func setup(c *cli.Context) error {
	var s settings
	if err := config.Load(&s); err != nil {
		return err
	}
	if v := c.String("secret"); v != "" {
		s.Session.Secret = v
	}
	if v := c.String("storage"); v != "" {
		s.Storage.Storage = v
	}
	if v := c.String("redis-url"); v != "" {
		s.Storage.Redis.ConnectionURL = v
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.String("log-level"), err)
	}
	log := logger.New(
		logger.WithLevel(level),
		logger.WithOutput(os.Stderr),
		logger.WithAttr(logger.Component("sessionctl")),
	)

	// config only prints settings and must work without a secret or a reachable store.
	if c.Args().First() == "config" {
		c.App.Metadata[envKey] = &environment{settings: s, logger: log}
		return nil
	}

	env, err := newEnvironment(c.Context, s, log)
	if err != nil {
		return err
	}
	c.App.Metadata[envKey] = env
	return nil
}

func newEnvironment(ctx context.Context, s settings, log *slog.Logger) (*environment, error) {
	env := &environment{settings: s, logger: log, opens: &openRecorder{}}

	backend, err := sessionstore.New(ctx, s.Storage, sessionstore.WithLogger(log))
	if err != nil {
		return nil, err
	}
	env.backend = backend

	manager, err := session.NewManager[Data](s.Session, backend,
		session.WithLogger(log),
		session.WithObserver(env.opens),
	)
	if err != nil {
		_ = backend.Shutdown()
		return nil, err
	}
	env.manager = manager
	return env, nil
}

func getEnv(c *cli.Context) (*environment, error) {
	env, ok := c.App.Metadata[envKey].(*environment)
	if !ok {
		return nil, errors.New("sessionctl: not initialized")
	}
	return env, nil
}

// request builds the synthetic request a session is opened against.
func (env *environment) request(c *cli.Context, cookieHeader string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = c.String("remote-addr")
	if ua := c.String("user-agent"); ua != "" {
		r.Header.Set("User-Agent", ua)
	}
	if cookieHeader != "" {
		r.Header.Set("Cookie", cookieHeader)
	}
	return r
}

func printCookies(c *cli.Context, sink headerSink) {
	for _, line := range http.Header(sink).Values("Set-Cookie") {
		fmt.Fprintln(c.App.Writer, line)
	}
}

// cookieHeader turns the live Set-Cookie lines in sink into a Cookie request header.
func cookieHeader(sink headerSink) string {
	r := &http.Request{Header: make(http.Header)}
	for _, c := range (&http.Response{Header: http.Header(sink)}).Cookies() {
		if c.MaxAge >= 0 {
			r.AddCookie(c)
		}
	}
	return r.Header.Get("Cookie")
}
