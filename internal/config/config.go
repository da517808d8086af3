// Package config loads optional TOML configuration for the repcat CLI.
//
// The file carries machine-level defaults (worker count, memory limit,
// checksum algorithm, logging); per-run settings such as repeat counts are
// flags only. Flags always override file values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pelletier/go-toml/v2"
)

// Log contains logging configuration.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config contains CLI defaults loaded from a TOML file.
type Config struct {
	Workers  int    `toml:"workers"`  // 0 = available parallelism
	MaxMem   string `toml:"max_mem"`  // humanized size, e.g. "64MiB"; empty = unbounded
	Checksum string `toml:"checksum"` // xxhash | xxh3 | murmur3
	Log      Log    `toml:"log"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Checksum: "xxhash",
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from path, layered over the defaults.
// The file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault reads configuration from the user config directory
// (e.g. ~/.config/repcat/config.toml). A missing file is not an error:
// the defaults are returned.
func LoadDefault() (Config, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Default(), nil
	}
	path := filepath.Join(dir, "repcat", "config.toml")
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// MaxMemBytes parses the humanized MaxMem value. Empty means unbounded (0).
func (c Config) MaxMemBytes() (int64, error) {
	if c.MaxMem == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.MaxMem)
	if err != nil {
		return 0, fmt.Errorf("parse max_mem %q: %w", c.MaxMem, err)
	}
	return int64(n), nil
}
