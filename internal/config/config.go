// Package config loads the server configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"gopkg.in/yaml.v3"
)

// RemoteConfig describes the Remote Event Service.
type RemoteConfig struct {
	// BaseURL is the single base URL every read and write goes to.
	BaseURL string `yaml:"base_url"`
	// TimeoutSeconds bounds each request. Requests are never retried.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the UI and API.
	Listen string `yaml:"listen"`

	// DataDir holds the SQLite database backing the durable store.
	DataDir string `yaml:"data_dir"`

	// StaticDir is served for every non-API path.
	StaticDir string `yaml:"static_dir"`

	Remote RemoteConfig `yaml:"remote"`

	// Timezone is the IANA zone that decides what "today" is.
	Timezone string `yaml:"timezone"`

	// WeekStart is "sunday" (default) or "monday".
	WeekStart string `yaml:"week_start"`

	// RefreshCron, when set, re-fetches remote collections on that schedule
	// (robfig/cron syntax, e.g. "@every 15m"). Empty disables it.
	RefreshCron string `yaml:"refresh_cron"`

	Log LogConfig `yaml:"log"`
}

// envOverrides lists the environment variables that override file values.
// Unset variables leave the file value alone.
type envOverrides struct {
	Listen         string `env:"CALENDAR_LISTEN"`
	DataDir        string `env:"CALENDAR_DATA_DIR"`
	StaticDir      string `env:"CALENDAR_STATIC_DIR"`
	BaseURL        string `env:"CALENDAR_BASE_URL"`
	TimeoutSeconds int    `env:"CALENDAR_TIMEOUT_SECONDS"`
	Timezone       string `env:"CALENDAR_TIMEZONE"`
	WeekStart      string `env:"CALENDAR_WEEK_START"`
	RefreshCron    string `env:"CALENDAR_REFRESH_CRON"`
	LogLevel       string `env:"CALENDAR_LOG_LEVEL"`
	LogFormat      string `env:"CALENDAR_LOG_FORMAT"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    ":8099",
		DataDir:   "./data",
		StaticDir: "./static",
		Remote: RemoteConfig{
			BaseURL:        "http://127.0.0.1:5000",
			TimeoutSeconds: 15,
		},
		Timezone:  "Local",
		WeekStart: "sunday",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Normalize fills in missing values with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.StaticDir == "" {
		c.StaticDir = def.StaticDir
	}
	if c.Remote.BaseURL == "" {
		c.Remote.BaseURL = def.Remote.BaseURL
	}
	c.Remote.BaseURL = strings.TrimRight(c.Remote.BaseURL, "/")
	if c.Remote.TimeoutSeconds <= 0 {
		c.Remote.TimeoutSeconds = def.Remote.TimeoutSeconds
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	switch strings.ToLower(c.WeekStart) {
	case "sunday", "monday":
		c.WeekStart = strings.ToLower(c.WeekStart)
	default:
		c.WeekStart = def.WeekStart
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Remote.BaseURL)
	if err != nil {
		return fmt.Errorf("remote.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("remote.base_url: unsupported scheme %q", u.Scheme)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. "Local" is the host zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}

// Load reads the YAML file at path, applies environment overrides and
// normalizes the result. A missing file is created with defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CALENDAR_* environment variables.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	setString(&c.Listen, o.Listen)
	setString(&c.DataDir, o.DataDir)
	setString(&c.StaticDir, o.StaticDir)
	setString(&c.Remote.BaseURL, o.BaseURL)
	if o.TimeoutSeconds > 0 {
		c.Remote.TimeoutSeconds = o.TimeoutSeconds
	}
	setString(&c.Timezone, o.Timezone)
	setString(&c.WeekStart, o.WeekStart)
	setString(&c.RefreshCron, o.RefreshCron)
	setString(&c.Log.Level, o.LogLevel)
	setString(&c.Log.Format, o.LogFormat)
	return nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calendar-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
