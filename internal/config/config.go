// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Guliveer/netspeed/internal/autostart"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "1s", "100ms".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Autostart AutostartConfig `yaml:"autostart"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AppConfig identifies the application to the OS.
type AppConfig struct {
	// Name is used for the autostart registration (registry value,
	// desktop file name, launch agent label).
	Name string `yaml:"name"`
}

// SamplingConfig holds throughput sampling settings.
type SamplingConfig struct {
	Interval        Duration `yaml:"interval"`
	MinInterval     Duration `yaml:"min_interval"`
	Interface       string   `yaml:"interface"`
	ExcludeLoopback bool     `yaml:"exclude_loopback"`
}

// AutostartConfig holds login-launch settings.
type AutostartConfig struct {
	CommandTimeout Duration `yaml:"command_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name: "NetSpeed",
		},
		Sampling: SamplingConfig{
			Interval:    Duration{1 * time.Second},
			MinInterval: Duration{100 * time.Millisecond},
		},
		Autostart: AutostartConfig{
			CommandTimeout: Duration{10 * time.Second},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with defaults.
// Environment variables take precedence over values from the byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty the standard locations are searched; a missing file means
// only defaults and environment variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Locate()
	}
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return LoadFromBytes(nil)
	}

	cfg, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPath is where a new config file is written: the first search path.
func DefaultPath() string {
	return configSearchPaths()[0]
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if name := os.Getenv("NETSPEED_APP_NAME"); name != "" {
		cfg.App.Name = name
	}
	if iface := os.Getenv("NETSPEED_INTERFACE"); iface != "" {
		cfg.Sampling.Interface = iface
	}
	if level := os.Getenv("NETSPEED_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.App.Name) == "" {
		return fmt.Errorf("app name is required")
	}
	if err := autostart.ValidateName(c.App.Name); err != nil {
		return fmt.Errorf("app name: %w", err)
	}
	if c.Sampling.Interval.Duration <= 0 {
		return fmt.Errorf("sampling interval must be positive (got: %s)", c.Sampling.Interval)
	}
	if c.Sampling.MinInterval.Duration < 0 {
		return fmt.Errorf("sampling min_interval must not be negative (got: %s)", c.Sampling.MinInterval)
	}
	if c.Sampling.MinInterval.Duration >= c.Sampling.Interval.Duration {
		return fmt.Errorf("sampling min_interval (%s) must be shorter than interval (%s)",
			c.Sampling.MinInterval, c.Sampling.Interval)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
