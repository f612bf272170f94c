package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromBytes_Defaults(t *testing.T) {
	cfg, err := LoadFromBytes(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sampling.Interval.Duration != time.Second {
		t.Errorf("Interval = %v, want 1s default", cfg.Sampling.Interval.Duration)
	}
	if cfg.Sampling.MinInterval.Duration != 100*time.Millisecond {
		t.Errorf("MinInterval = %v, want 100ms default", cfg.Sampling.MinInterval.Duration)
	}
	if cfg.App.Name != "NetSpeed" {
		t.Errorf("App.Name = %q, want NetSpeed", cfg.App.Name)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromBytes_ParsesYAML(t *testing.T) {
	data := []byte("app:\n  name: Speedo\nsampling:\n  interval: 2s\n  min_interval: 250ms\n  interface: eth0\n  exclude_loopback: true\nlogging:\n  level: debug\n")

	cfg, err := LoadFromBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Name != "Speedo" {
		t.Errorf("App.Name = %q", cfg.App.Name)
	}
	if cfg.Sampling.Interval.Duration != 2*time.Second {
		t.Errorf("Interval = %v", cfg.Sampling.Interval.Duration)
	}
	if cfg.Sampling.MinInterval.Duration != 250*time.Millisecond {
		t.Errorf("MinInterval = %v", cfg.Sampling.MinInterval.Duration)
	}
	if cfg.Sampling.Interface != "eth0" || !cfg.Sampling.ExcludeLoopback {
		t.Errorf("Sampling = %+v", cfg.Sampling)
	}
	// Unset sections keep their defaults.
	if cfg.Autostart.CommandTimeout.Duration != 10*time.Second {
		t.Errorf("CommandTimeout = %v, want default", cfg.Autostart.CommandTimeout.Duration)
	}
}

func TestLoadFromBytes_InvalidDuration(t *testing.T) {
	_, err := LoadFromBytes([]byte("sampling:\n  interval: soon\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("err = %v, want invalid duration", err)
	}
}

func TestLoadFromBytes_EnvOverridesFile(t *testing.T) {
	t.Setenv("NETSPEED_APP_NAME", "EnvSpeed")
	t.Setenv("NETSPEED_INTERFACE", "wlan0")
	t.Setenv("NETSPEED_LOG_LEVEL", "warn")

	cfg, err := LoadFromBytes([]byte("app:\n  name: FileSpeed\nsampling:\n  interface: eth0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Name != "EnvSpeed" {
		t.Errorf("App.Name = %q, want env override", cfg.App.Name)
	}
	if cfg.Sampling.Interface != "wlan0" {
		t.Errorf("Interface = %q, want env override", cfg.Sampling.Interface)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want env override", cfg.Logging.Level)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Name != "NetSpeed" {
		t.Errorf("App.Name = %q, want default", cfg.App.Name)
	}
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.App.Name = "Written"
	cfg.Sampling.Interval = Duration{3 * time.Second}

	if err := WriteConfig(cfg, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "interval: 3s") {
		t.Errorf("config file should store durations as strings:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.App.Name != "Written" || loaded.Sampling.Interval.Duration != 3*time.Second {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty name", func(c *Config) { c.App.Name = " " }, "app name is required"},
		{"path name", func(c *Config) { c.App.Name = "a/b" }, "invalid application name"},
		{"dot name", func(c *Config) { c.App.Name = "." }, "invalid application name"},
		{"dot dot name", func(c *Config) { c.App.Name = ".." }, "invalid application name"},
		{"zero interval", func(c *Config) { c.Sampling.Interval = Duration{} }, "interval must be positive"},
		{"negative min", func(c *Config) { c.Sampling.MinInterval = Duration{-time.Second} }, "must not be negative"},
		{"min not shorter", func(c *Config) { c.Sampling.MinInterval = Duration{time.Second} }, "must be shorter"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "unknown log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
