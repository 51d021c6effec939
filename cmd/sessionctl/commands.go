package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/urfave/cli/v2"
)

// IssueCommand returns the issue command.
func IssueCommand() *cli.Command {
	return &cli.Command{
		Name:  "issue",
		Usage: "Create and save a new session, print its Cookie header",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "data",
				Usage: "Session data as a JSON object",
				Value: "{}",
			},
			&cli.BoolFlag{
				Name:  "set-cookie",
				Usage: "Print the Set-Cookie lines instead of the Cookie header",
			},
		},
		Action: issueAction,
	}
}

func issueAction(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}

	var data Data
	if err := json.Unmarshal([]byte(c.String("data")), &data); err != nil {
		return fmt.Errorf("invalid --data: %w", err)
	}

	sink := headerSink{}
	sess := env.manager.New(sink, env.request(c, ""))
	sess.Data = data
	if err := sess.Save(c.Context); err != nil {
		return err
	}

	if c.Bool("set-cookie") {
		printCookies(c, sink)
		return nil
	}
	fmt.Fprintln(c.App.Writer, cookieHeader(sink))
	return nil
}

// InspectCommand returns the inspect command.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Verify a Cookie header and print the session it carries",
		ArgsUsage: "<cookie-header>",
		Action:    inspectAction,
	}
}

type inspection struct {
	Present   bool       `json:"present"`
	ID        string     `json:"id,omitempty"`
	Expires   *time.Time `json:"expires,omitempty"`
	UseBefore *time.Time `json:"use_before,omitempty"`
	Data      Data       `json:"data,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

func inspectAction(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return errors.New("inspect requires exactly one cookie header")
	}

	sess, err := env.manager.Open(c.Context, headerSink{}, env.request(c, c.Args().First()))
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close(c.Context) }()

	out := inspection{Present: sess.Present}
	if sess.Present {
		out.ID = sess.EncodedID()
		out.Expires = &sess.Expires
		if !sess.UseBefore.IsZero() {
			out.UseBefore = &sess.UseBefore
		}
		out.Data = sess.Data
	} else if reason := env.opens.Reason(); reason != nil {
		out.Reason = reason.Error()
	} else {
		out.Reason = "no session cookie"
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// DestroyCommand returns the destroy command.
func DestroyCommand() *cli.Command {
	return &cli.Command{
		Name:      "destroy",
		Usage:     "Delete the stored session and print the expiring Set-Cookie lines",
		ArgsUsage: "<cookie-header>",
		Action:    destroyAction,
	}
}

func destroyAction(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return errors.New("destroy requires exactly one cookie header")
	}

	sink := headerSink{}
	sess, err := env.manager.Open(c.Context, sink, env.request(c, c.Args().First()))
	if err != nil {
		return err
	}
	if !sess.Present {
		return errors.New("no valid session in cookie header")
	}
	if err := sess.Destroy(c.Context); err != nil {
		return err
	}
	printCookies(c, sink)
	return nil
}

// ConfigCommand returns the config command.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:   "config",
		Usage:  "Print the resolved configuration with secrets masked",
		Action: configAction,
	}
}

func configAction(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}

	s := env.settings
	if s.Session.Secret != "" {
		s.Session.Secret = "****"
	}
	if u, err := url.Parse(s.Storage.Redis.ConnectionURL); err == nil {
		s.Storage.Redis.ConnectionURL = u.Redacted()
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
