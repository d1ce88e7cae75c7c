// Package config holds the engine configuration, loadable from an optional
// csense.toml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const DefaultFileName = "csense.toml"

type Config struct {
	// SystemIncludeDir is the root against which <...> includes are resolved.
	SystemIncludeDir string `toml:"system_include_dir"`
	// Extensions lists the file extensions the watcher reacts to.
	Extensions []string `toml:"extensions"`
	// Verbosity is the commonlog verbosity used by the lsp command.
	Verbosity int `toml:"verbosity"`
}

func Default() *Config {
	return &Config{
		SystemIncludeDir: "/usr/include",
		Extensions:       []string{".c", ".h", ".cc", ".hh", ".cpp", ".hpp", ".cxx"},
	}
}

// Load reads a TOML config file and overlays it on the defaults. A missing
// file is not an error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Matches reports whether path has one of the configured source extensions.
func (c *Config) Matches(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range c.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
