package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig describes the connection to open.
type DatabaseConfig struct {
	// Location is a file path, or empty / ":memory:" for an in-memory database.
	Location string `yaml:"location"`

	// InitSQL is a script run once when the database is opened.
	InitSQL string `yaml:"init_sql"`

	// InitFile names a file whose contents run after InitSQL.
	// Relative paths resolve against the config file's directory.
	InitFile string `yaml:"init_file"`

	// BusyTimeout is how long to wait on a locked database, in milliseconds.
	BusyTimeout int `yaml:"busy_timeout"`

	// ForeignKeys enables foreign key enforcement.
	ForeignKeys bool `yaml:"foreign_keys"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if cfg.Database.InitFile != "" && !filepath.IsAbs(cfg.Database.InitFile) {
		cfg.Database.InitFile = filepath.Join(filepath.Dir(path), cfg.Database.InitFile)
	}

	return cfg, nil
}

// Parse decodes YAML from r on top of the defaults, then applies
// environment overrides and validates. An empty document yields the defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Location:    "",
			BusyTimeout: 5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// applyEnvOverrides applies SQLWRAP_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SQLWRAP_DATABASE_LOCATION"); v != "" {
		cfg.Database.Location = v
	}
	if v := os.Getenv("SQLWRAP_DATABASE_INIT_FILE"); v != "" {
		cfg.Database.InitFile = v
	}
	if v := os.Getenv("SQLWRAP_DATABASE_BUSY_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Database.BusyTimeout = n
		}
	}
	if v := os.Getenv("SQLWRAP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SQLWRAP_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout must be >= 0, got %d", c.Database.BusyTimeout)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q: must be one of debug, info, warn, error", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q: must be text or json", c.Logging.Format)
	}

	return nil
}

// BusyTimeoutDuration returns the busy timeout as a time.Duration.
func (d DatabaseConfig) BusyTimeoutDuration() time.Duration {
	return time.Duration(d.BusyTimeout) * time.Millisecond
}

// InitScript returns InitSQL followed by the contents of InitFile, if set.
func (d DatabaseConfig) InitScript() (string, error) {
	script := d.InitSQL
	if d.InitFile == "" {
		return script, nil
	}

	data, err := os.ReadFile(d.InitFile)
	if err != nil {
		return "", fmt.Errorf("reading init file: %w", err)
	}
	if script != "" && !strings.HasSuffix(strings.TrimSpace(script), ";") {
		script += ";"
	}
	if script != "" {
		script += "\n"
	}
	return script + string(data), nil
}
