// Package config loads the hook configuration. Layering follows the usual
// precedence: embedded defaults, then the system config file, then an
// explicit file pointed at by NOCTURNE_HOOK_CONFIG, then NOCTURNE_*
// environment variables.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/nocturne-theme/nocturne-hook/pkg/errors"
)

//go:embed default.toml
var defaultConfig []byte

// SystemConfigPath is the config file installed by the distribution package.
const SystemConfigPath = "/etc/nocturne/hook.toml"

// EnvConfigFile names an additional config file to load last.
const EnvConfigFile = "NOCTURNE_HOOK_CONFIG"

// Config is the fully resolved hook configuration.
type Config struct {
	Theme ThemeConfig `koanf:"theme" toml:"theme"`
	Hook  HookConfig  `koanf:"hook" toml:"hook"`
}

// ThemeConfig describes the packaged theme assets.
type ThemeConfig struct {
	Name      string `koanf:"name" toml:"name"`
	SourceDir string `koanf:"source_dir" toml:"source_dir"`
	Metainfo  string `koanf:"metainfo" toml:"metainfo"`
}

// HookConfig carries hook behavior overrides.
type HookConfig struct {
	TargetUser string `koanf:"target_user" toml:"target_user"`
	Manifest   string `koanf:"manifest" toml:"manifest"`
}

// Load resolves the configuration from all layers.
func Load() (*Config, error) {
	return load(SystemConfigPath)
}

func load(systemPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(rawbytes.Provider(defaultConfig), toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse embedded defaults")
	}

	// 2. System config, if installed
	if _, err := os.Stat(systemPath); err == nil {
		if err := k.Load(file.Provider(systemPath), parserFor(systemPath)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load %s", systemPath)
		}
	}

	// 3. Explicit config file
	if extra := os.Getenv(EnvConfigFile); extra != "" {
		if err := k.Load(file.Provider(extra), parserFor(extra)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load %s", extra)
		}
	}

	// 4. Environment overrides: NOCTURNE_THEME_NAME -> theme.name
	if err := k.Load(env.Provider("NOCTURNE_", ".", func(s string) string {
		key := strings.TrimPrefix(s, "NOCTURNE_")
		key = strings.ToLower(key)
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	return &cfg, nil
}

// parserFor picks a koanf parser from the file extension. Config files are
// TOML unless they carry a yaml extension.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}
