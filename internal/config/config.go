package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ksyq12/caddyman/internal/caddyfile"
	"github.com/ksyq12/caddyman/internal/platform"
)

// Environment variables that override the config file.
const (
	EnvConfig    = "CADDYMAN_CONFIG"
	EnvCaddyfile = "CADDYMAN_CADDYFILE"
)

// configDir is the default config directory
const configDir = ".config/caddyman"
const configFile = "config.yaml"

// Config represents the application configuration
type Config struct {
	Caddyfile       string        `yaml:"caddyfile,omitempty"`
	DefaultUpstream string        `yaml:"default_upstream"`
	EnvFile         string        `yaml:"env_file,omitempty"`
	Caddy           CaddyConfig   `yaml:"caddy"`
	CommandTimeout  time.Duration `yaml:"command_timeout"`
	LockTimeout     time.Duration `yaml:"lock_timeout"`
}

// CaddyConfig describes how to reach the caddy validator and reload.
type CaddyConfig struct {
	Binary  string `yaml:"binary"`
	Service string `yaml:"service"` // systemd unit, empty to always use "caddy reload"
	Adapter string `yaml:"adapter"`
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		DefaultUpstream: caddyfile.DefaultUpstream,
		Caddy: CaddyConfig{
			Binary:  "caddy",
			Service: "caddy",
			Adapter: "caddyfile",
		},
		CommandTimeout: 30 * time.Second,
		LockTimeout:    10 * time.Second,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// ConfigPath returns the config file path, honoring $CADDYMAN_CONFIG
func ConfigPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config from disk, applies environment overrides and
// fills unset paths with platform defaults
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := New()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if p := os.Getenv(EnvCaddyfile); p != "" {
		cfg.Caddyfile = p
	}
	if cfg.Caddyfile == "" || cfg.EnvFile == "" {
		if paths, err := platform.DetectPaths(); err == nil {
			cfg.applyPlatformDefaults(paths)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// applyPlatformDefaults fills unset paths. The env file defaults to the
// Caddyfile's directory when the Caddyfile was configured explicitly.
func (c *Config) applyPlatformDefaults(paths *platform.Paths) {
	if c.Caddyfile == "" {
		c.Caddyfile = paths.Caddyfile
	}
	if c.EnvFile == "" {
		if c.Caddyfile != paths.Caddyfile {
			c.EnvFile = filepath.Join(filepath.Dir(c.Caddyfile), platform.EnvFileName)
		} else {
			c.EnvFile = paths.EnvFile
		}
	}
}

// Validate checks field values
func (c *Config) Validate() error {
	if c.DefaultUpstream == "" || strings.ContainsAny(c.DefaultUpstream, " \t{}") {
		return fmt.Errorf("default_upstream must be a single address, got %q", c.DefaultUpstream)
	}
	if c.Caddy.Binary == "" {
		return fmt.Errorf("caddy.binary cannot be empty")
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("command_timeout must be positive")
	}
	if c.LockTimeout < 0 {
		return fmt.Errorf("lock_timeout cannot be negative")
	}
	return nil
}
