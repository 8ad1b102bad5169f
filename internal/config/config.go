// Package config provides configuration file parsing for apps2desktop.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Target kinds.
const (
	TargetJournal    = "journal"
	TargetNativeHost = "native-host"
)

// Dir returns the apps2desktop config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/apps2desktop if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "apps2desktop"), nil
}

// Duration is a time.Duration written as a string ("2s", "500ms") in
// config files.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	d.Duration = v
	return nil
}

// Config holds runtime parameters. Zero values mean "unspecified" and are
// replaced by Defaults.
type Config struct {
	Browser      string   `json:"browser" yaml:"browser" toml:"browser"`
	ProfileDir   string   `json:"profile_dir" yaml:"profile_dir" toml:"profile_dir"`
	Target       string   `json:"target" yaml:"target" toml:"target"`
	HostCommand  []string `json:"host_command" yaml:"host_command" toml:"host_command"`
	ElementID    string   `json:"element_id" yaml:"element_id" toml:"element_id"`
	RetryDelay   Duration `json:"retry_delay" yaml:"retry_delay" toml:"retry_delay"`
	MaxPending   int      `json:"max_pending" yaml:"max_pending" toml:"max_pending"`
	Debounce     Duration `json:"debounce" yaml:"debounce" toml:"debounce"`
	PollInterval Duration `json:"poll_interval" yaml:"poll_interval" toml:"poll_interval"`
	MetricsAddr  string   `json:"metrics_addr" yaml:"metrics_addr" toml:"metrics_addr"`
	LogLevel     string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	DBPath       string   `json:"db_path" yaml:"db_path" toml:"db_path"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Browser:      "chrome",
		Target:       TargetJournal,
		ElementID:    "Apps2Desktop",
		RetryDelay:   Duration{2 * time.Second},
		MaxPending:   256,
		Debounce:     Duration{500 * time.Millisecond},
		PollInterval: Duration{30 * time.Second},
		LogLevel:     "info",
	}
}

// Load reads a configuration file based on its extension and fills
// unspecified fields from Defaults.
// Supports: .toml, .yaml/.yml, .json
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads config.toml, config.yaml, config.yml or config.json
// from dir, whichever exists first. With no file present it returns
// Defaults without an error.
func LoadDefault(dir string) (Config, string, error) {
	for _, name := range []string{"config.toml", "config.yaml", "config.yml", "config.json"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			cfg, err := Load(path)
			return cfg, path, err
		}
	}
	return Defaults(), "", nil
}

func (c *Config) applyDefaults() {
	d := Defaults()
	if c.Browser == "" {
		c.Browser = d.Browser
	}
	if c.Target == "" {
		c.Target = d.Target
	}
	if c.ElementID == "" {
		c.ElementID = d.ElementID
	}
	if c.RetryDelay.Duration == 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.MaxPending == 0 {
		c.MaxPending = d.MaxPending
	}
	if c.Debounce.Duration == 0 {
		c.Debounce = d.Debounce
	}
	if c.PollInterval.Duration == 0 {
		c.PollInterval = d.PollInterval
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Validate checks values that defaults cannot fix.
func (c Config) Validate() error {
	switch c.Target {
	case TargetJournal:
	case TargetNativeHost:
		if len(c.HostCommand) == 0 {
			return errors.New("target native-host requires host_command")
		}
	default:
		return fmt.Errorf("unknown target %q (want %s or %s)", c.Target, TargetJournal, TargetNativeHost)
	}
	if c.MaxPending < 0 {
		return fmt.Errorf("max_pending must not be negative, got %d", c.MaxPending)
	}
	if c.RetryDelay.Duration < 0 || c.Debounce.Duration < 0 || c.PollInterval.Duration < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}
