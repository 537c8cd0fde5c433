// Package manifest defines which desktop settings get captured before the
// theme is applied and which user directories get snapshotted. The built-in
// manifest covers what the Nocturne theme touches; a theme package may ship
// an override file for custom builds.
package manifest

import (
	_ "embed"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nocturne-theme/nocturne-hook/pkg/errors"
)

//go:embed default.yaml
var defaultManifest []byte

// Setting addresses one key in the desktop settings store.
type Setting struct {
	Schema string `yaml:"schema"`
	Key    string `yaml:"key"`
}

// Manifest lists the settings to capture and the home-relative directories
// of interest.
type Manifest struct {
	Settings    []Setting `yaml:"settings"`
	Directories []string  `yaml:"directories"`
}

// Default returns the built-in manifest.
func Default() *Manifest {
	m, err := parse(defaultManifest)
	if err != nil {
		// The embedded document is compiled in; a parse failure here is a
		// build defect, not a runtime condition.
		panic(err)
	}
	return m
}

// Load reads a manifest override from path. An empty path or a missing file
// falls back to the built-in manifest; a malformed file is an error.
func Load(path string) (*Manifest, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read manifest %s", path)
	}

	m, err := parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse manifest %s", path)
	}
	return m, nil
}

func parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
