package config

import (
	toml "github.com/pelletier/go-toml/v2"

	"github.com/nocturne-theme/nocturne-hook/pkg/errors"
)

// Dump renders a configuration as TOML, suitable as a starting point for
// the system config file.
func Dump(cfg *Config) (string, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrConfigParse, "failed to render configuration")
	}
	return string(out), nil
}
