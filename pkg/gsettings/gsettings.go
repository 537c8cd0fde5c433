// Package gsettings wraps the desktop settings store behind a small
// capability interface. The real store is the gsettings command line tool,
// reached through a Runner so tests never need a live desktop session.
package gsettings

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/nocturne-theme/nocturne-hook/pkg/errors"
	"github.com/nocturne-theme/nocturne-hook/pkg/logging"
)

// Store is the settings-store capability injected throughout the hook.
type Store interface {
	// Get returns the store's serialized value for schema/key, exactly as
	// the store prints it (quoting included), without the trailing newline.
	Get(schema, key string) (string, error)

	// Set writes a previously captured serialized value back.
	Set(schema, key, value string) error
}

// Runner executes one external command and returns its stdout.
type Runner interface {
	Run(name string, args ...string) (string, error)
}

// CLIStore talks to the gsettings binary, optionally inside the target
// user's session context.
type CLIStore struct {
	runner Runner
	user   string
	busEnv []string
	logger zerolog.Logger
}

// Option configures a CLIStore.
type Option func(*CLIStore)

// AsUser runs every store call as the named user with the given session bus
// environment. Without this option calls run in the ambient session.
func AsUser(name string, busEnv []string) Option {
	return func(s *CLIStore) {
		s.user = name
		s.busEnv = busEnv
	}
}

// NewCLIStore creates a Store backed by the gsettings command.
func NewCLIStore(runner Runner, opts ...Option) *CLIStore {
	s := &CLIStore{
		runner: runner,
		logger: logging.GetLogger("gsettings"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements Store.
func (s *CLIStore) Get(schema, key string) (string, error) {
	name, args := s.command("get", schema, key)
	out, err := s.runner.Run(name, args...)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrSettingsGet, "gsettings get %s %s", schema, key)
	}

	value := strings.TrimRight(out, "\n")
	s.logger.Debug().
		Str("schema", schema).
		Str("key", key).
		Str("value", value).
		Msg("Read setting")
	return value, nil
}

// Set implements Store.
func (s *CLIStore) Set(schema, key, value string) error {
	name, args := s.command("set", schema, key, value)
	if _, err := s.runner.Run(name, args...); err != nil {
		return errors.Wrapf(err, errors.ErrSettingsSet, "gsettings set %s %s", schema, key)
	}

	s.logger.Debug().
		Str("schema", schema).
		Str("key", key).
		Str("value", value).
		Msg("Wrote setting")
	return nil
}

// command builds the invocation, wrapping it in runuser + session bus
// environment when a target user is configured. The settings store is
// per-session: calling it as root against the installer's bus would silently
// read and write the wrong user's configuration.
func (s *CLIStore) command(op string, rest ...string) (string, []string) {
	gsArgs := append([]string{op}, rest...)
	if s.user == "" {
		return "gsettings", gsArgs
	}

	args := []string{"-u", s.user, "--", "env"}
	args = append(args, s.busEnv...)
	args = append(args, "gsettings")
	args = append(args, gsArgs...)
	return "runuser", args
}
