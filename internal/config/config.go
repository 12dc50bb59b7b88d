// Package config loads bundlerun's optional YAML configuration file,
// mirroring how the teacher's cmd/dwscript composes flags on top of
// defaults, but decoded with github.com/goccy/go-yaml instead of a
// hand-rolled flag-only scheme.
package config

import (
	"os"

	"github.com/goccy/go-yaml"
)

// Config holds the settings bundlerun reads from .bundlerun.yaml (or
// the path given by --config), falling back to defaults for anything
// unset in the file.
type Config struct {
	// OutputEncoding names the sink.ByteEncoding the run command's
	// default TextSink should target: "utf8", "utf16le", "utf16be", or
	// "windows1252".
	OutputEncoding string `yaml:"outputEncoding"`

	// MaxCallStackDepth overrides the execution context's default call
	// stack depth limit. Zero means use the engine's default.
	MaxCallStackDepth int `yaml:"maxCallStackDepth"`

	// Color enables ANSI-colored diagnostic output.
	Color bool `yaml:"color"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{OutputEncoding: "utf8", Color: true}
}

// Load reads and decodes the YAML file at path over Default(). A
// missing file is not an error: Default() is returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
