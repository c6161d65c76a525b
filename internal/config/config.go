// Package config loads tool defaults from an optional TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultCount is the window size used when neither the config file nor the
// dump command sets one.
const DefaultCount = 20

// Config holds tool-level defaults.
type Config struct {
	Dump   DumpConfig   `toml:"dump"`
	Output OutputConfig `toml:"output"`
}

// DumpConfig sets dump command defaults.
type DumpConfig struct {
	// Count is the default window size.
	Count int `toml:"count"`
	// Format is the default output format: text, json or pretty-json.
	Format string `toml:"format"`
}

// OutputConfig sets console behavior.
type OutputConfig struct {
	// Color is auto, on or off.
	Color string `toml:"color"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Dump:   DumpConfig{Count: DefaultCount, Format: "text"},
		Output: OutputConfig{Color: "auto"},
	}
}

// Load reads a TOML config file over the defaults. A missing file at the
// default path is not an error; an explicit path must exist.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return cfg, fmt.Errorf("config: %w", err)
		}
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Dump.Count < 0 {
		return fmt.Errorf("dump.count must not be negative")
	}
	switch c.Dump.Format {
	case "text", "json", "pretty-json":
	default:
		return fmt.Errorf("dump.format must be text, json or pretty-json")
	}
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("output.color must be auto, on or off")
	}
	return nil
}
