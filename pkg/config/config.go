// Package config loads the process configuration of the dashboard server
// from a YAML file, with command line overrides applied on top.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full process configuration.
type Config struct {
	Analytics AnalyticsConfig `yaml:"analytics"`
	Server    ServerConfig    `yaml:"server"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
	Activity  ActivityConfig  `yaml:"activity"`
}

// AnalyticsConfig points at the analytics backend.
type AnalyticsConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	Timeout        time.Duration `yaml:"timeout"`
	ReportCacheTTL time.Duration `yaml:"report_cache_ttl"`
	Demo           bool          `yaml:"demo"`
	SkipValidation bool          `yaml:"skip_validation"`
}

// ServerConfig holds listen addresses.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	OpsAddr  string `yaml:"ops_addr"`
	BasePath string `yaml:"base_path"`
}

// DashboardConfig tunes views and chart rendering.
type DashboardConfig struct {
	ManifestPath    string        `yaml:"manifest_path"`
	Theme           string        `yaml:"theme"`
	AssetsHost      string        `yaml:"assets_host"`
	ChartCacheTTL   time.Duration `yaml:"chart_cache_ttl"`
	ChartCacheBytes int64         `yaml:"chart_cache_bytes"`
}

// LoggingConfig selects the log output.
type LoggingConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// ActivityConfig toggles activity events.
type ActivityConfig struct {
	Enabled bool   `yaml:"enabled"`
	Channel string `yaml:"channel"`
	// UserSink also records activity as go-users activity records.
	UserSink bool `yaml:"user_sink"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Analytics: AnalyticsConfig{
			BaseURL:        "http://localhost:8000",
			Timeout:        10 * time.Second,
			ReportCacheTTL: 5 * time.Second,
		},
		Server: ServerConfig{
			Addr:    ":8080",
			OpsAddr: ":9090",
		},
		Dashboard: DashboardConfig{
			ChartCacheTTL:   5 * time.Minute,
			ChartCacheBytes: 8 << 20,
		},
		Logging: LoggingConfig{
			Format: "console",
			Level:  "info",
		},
		Activity: ActivityConfig{
			Channel: "dashboard",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, cfg.Validate()
	}
	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()
	if err := Decode(file, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode reads YAML into cfg, rejecting unknown keys. Fields absent from the
// document keep their current values.
func Decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// Validate checks the values the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if !c.Analytics.Demo {
		u, err := url.Parse(c.Analytics.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("config: analytics.base_url must be an absolute URL, got %q", c.Analytics.BaseURL))
		}
	}
	if c.Analytics.Timeout < 0 {
		errs = append(errs, errors.New("config: analytics.timeout must not be negative"))
	}
	if c.Analytics.ReportCacheTTL < 0 {
		errs = append(errs, errors.New("config: analytics.report_cache_ttl must not be negative"))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("config: server.addr is required"))
	}
	if c.Server.OpsAddr != "" && c.Server.OpsAddr == c.Server.Addr {
		errs = append(errs, errors.New("config: server.ops_addr must differ from server.addr"))
	}
	if c.Dashboard.ChartCacheBytes < 0 {
		errs = append(errs, errors.New("config: dashboard.chart_cache_bytes must not be negative"))
	}
	return errors.Join(errs...)
}

// Overrides are values given on the command line. Empty strings and nil
// pointers leave the file value alone.
type Overrides struct {
	BaseURL         string
	APIKey          string
	Addr            string
	OpsAddr         string
	BasePath        string
	ManifestPath    string
	Theme           string
	AssetsHost      string
	LogFormat       string
	LogLevel        string
	Demo            *bool
	ActivityEnabled *bool
}

// Apply returns a copy of c with the overrides applied and validated.
func (c Config) Apply(o Overrides) (Config, error) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&c.Analytics.BaseURL, o.BaseURL)
	set(&c.Analytics.APIKey, o.APIKey)
	set(&c.Server.Addr, o.Addr)
	set(&c.Server.OpsAddr, o.OpsAddr)
	set(&c.Server.BasePath, o.BasePath)
	set(&c.Dashboard.ManifestPath, o.ManifestPath)
	set(&c.Dashboard.Theme, o.Theme)
	set(&c.Dashboard.AssetsHost, o.AssetsHost)
	set(&c.Logging.Format, o.LogFormat)
	set(&c.Logging.Level, o.LogLevel)
	if o.Demo != nil {
		c.Analytics.Demo = *o.Demo
	}
	if o.ActivityEnabled != nil {
		c.Activity.Enabled = *o.ActivityEnabled
	}
	return c, c.Validate()
}
