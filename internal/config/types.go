// Package config loads sqldia settings from defaults, a YAML file, SQLDIA_
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tordrt/sqldia/internal/formatter"
)

// Default values
const (
	DefaultFormat    = formatter.FormatDia
	DefaultLogFormat = "text"
	EnvPrefix        = "SQLDIA_"
)

// ConfigFileNames are searched in the working directory when no --config is given
var ConfigFileNames = []string{"sqldia.yaml", "sqldia.yml"}

// Config holds all settings of a run
type Config struct {
	// Output
	Format    string `koanf:"format"`
	Output    string `koanf:"output"`
	OutputDir string `koanf:"output_dir"`

	// Parsing
	Strict         bool     `koanf:"strict"`
	SkipDirectives []string `koanf:"skip_directives"`

	// Table selection, applied to every source
	Tables  []string `koanf:"tables"`
	Exclude []string `koanf:"exclude"`

	// Live database sources (at most one)
	DBURL      string `koanf:"db_url"`
	MySQLURL   string `koanf:"mysql_url"`
	SQLitePath string `koanf:"sqlite"`
	Schema     string `koanf:"schema"`

	// Re-render on input changes
	Watch bool `koanf:"watch"`

	// Logging
	Verbose   bool   `koanf:"verbose"`
	LogFormat string `koanf:"log_format"`
}

// Validate checks flag combinations and enumerated values
func (c *Config) Validate() error {
	if !slices.Contains(formatter.Formats, c.Format) {
		return fmt.Errorf("invalid format: %s (must be one of %s)", c.Format, strings.Join(formatter.Formats, ", "))
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", c.LogFormat)
	}

	if c.Output != "" && c.OutputDir != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	dbCount := 0
	for _, v := range []string{c.DBURL, c.MySQLURL, c.SQLitePath} {
		if v != "" {
			dbCount++
		}
	}
	if dbCount > 1 {
		return fmt.Errorf("only one of --db-url, --mysql-url, or --sqlite can be specified")
	}

	return nil
}

// DatabaseURL returns the URL of the configured database source, or "" when
// the schema is read as SQL text.
func (c *Config) DatabaseURL() string {
	switch {
	case c.DBURL != "":
		return c.DBURL
	case c.MySQLURL != "":
		if strings.HasPrefix(c.MySQLURL, "mysql://") {
			return c.MySQLURL
		}
		return "mysql://" + c.MySQLURL
	case c.SQLitePath != "":
		return "sqlite://" + c.SQLitePath
	default:
		return ""
	}
}
