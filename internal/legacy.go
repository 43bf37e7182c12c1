package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fluks/pdfsearch/internal/parser"
	pkgconfig "github.com/fluks/pdfsearch/pkg/config"
)

// LoadConfig returns the default configuration overlaid with the file at
// path. Files ending in .yaml or .yml are read as YAML; anything else is
// read in the plain "key = value" format. An empty path loads nothing.
// The result is validated either way.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path == "" {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
		return cfg, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := pkgconfig.Load(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	defer f.Close()

	settings, err := parser.Parse(path, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.ApplyLegacy(settings)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ApplyLegacy copies every value set in s onto c. Directories are
// appended to the configured ones.
func (c *Config) ApplyLegacy(s *parser.Settings) {
	if s.Database != "" {
		c.SQLite.Path = s.Database
	}
	c.Index.Directories = append(c.Index.Directories, s.Directories...)
	if s.Recursion != nil {
		c.Index.Recursion = *s.Recursion
	}
	if s.Matches != nil {
		c.Search.Matches = *s.Matches
	}
	if s.Verbose != nil {
		c.Search.Verbose = *s.Verbose
	}
}
