package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fluks/pdfsearch/internal/catalog"
	"github.com/fluks/pdfsearch/internal/document"
)

// Log formats.
const (
	LogFormatAuto = "auto"
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Index  IndexConfig       `yaml:"index"`
	Search SearchConfig      `yaml:"search"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Search.Validate()
}

// ApplicationConfig holds application-level configuration.
//
// LogFormat selects the log handler:
//   - "auto" (default): text on a terminal, JSON otherwise.
//   - "json" or "text": always that handler.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatAuto
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatAuto, LogFormatJSON, LogFormatText)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// IndexConfig controls which files the index command picks up.
//
// Recursion is the number of directory levels below each root to descend
// into; a negative value means no limit and 0 means the roots only.
type IndexConfig struct {
	Directories []string `yaml:"directories"`
	Recursion   int      `yaml:"recursion"`
	Extensions  []string `yaml:"extensions"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	if len(c.Extensions) == 0 {
		c.Extensions = []string{document.DefaultSuffix}
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Directories, validation.Each(validation.Required)),
		validation.Field(&c.Extensions, validation.Each(validation.Required)),
	)
}

// SearchConfig holds query defaults.
type SearchConfig struct {
	// Matches caps the number of results; 0 means no cap.
	Matches int  `yaml:"matches"`
	Verbose bool `yaml:"verbose"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	if c.Matches < 0 {
		return fmt.Errorf("search: matches must not be negative, got %d", c.Matches)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatAuto,
		},
		SQLite: SQLiteConfig{
			Path: "./pdfsearch.db",
		},
		Index: IndexConfig{
			Recursion:  catalog.RecurseInfinitely,
			Extensions: []string{document.DefaultSuffix},
		},
		Search: SearchConfig{
			Matches: catalog.UnlimitedMatches,
		},
	}
}
