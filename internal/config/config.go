// Package config handles the global pubmedxml configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "pubmedxml"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// CacheFile is the default SQLite cache file name.
	CacheFile = "cache.db"
)

// Environment variables that override the file.
const (
	EnvAPIKey = "NCBI_API_KEY"
	EnvEmail  = "NCBI_EMAIL"
	EnvCache  = "PUBMEDXML_CACHE"
)

// ErrUnknownKey is returned by Get and Set for keys not in Keys.
var ErrUnknownKey = errors.New("unknown configuration key")

// ErrInvalidValue is returned by Set when a value cannot be parsed.
var ErrInvalidValue = errors.New("invalid configuration value")

// Config represents configuration stored in ~/.config/pubmedxml/config.yml.
type Config struct {
	APIKey            string  `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	Email             string  `yaml:"email,omitempty" json:"email,omitempty"`
	Tool              string  `yaml:"tool,omitempty" json:"tool,omitempty"`
	BaseURL           string  `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	CachePath         string  `yaml:"cache_path,omitempty" json:"cache_path,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty" json:"requests_per_second,omitempty"`
}

// Keys lists the settable keys in display order.
var Keys = []string{"api_key", "email", "tool", "base_url", "cache_path", "requests_per_second"}

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/pubmedxml/config.yml.
func Path() string {
	dir := configHome()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, ConfigDir, ConfigFile)
}

// DefaultCachePath returns the cache location used when none is configured.
func DefaultCachePath() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, ConfigDir, CacheFile)
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

// LoadFile reads path without applying environment overrides.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.CachePath != "" {
		cfg.CachePath = ExpandTilde(cfg.CachePath)
	}
	return &cfg, nil
}

// Load reads the config file and applies environment overrides.
func Load() (*Config, error) {
	cfg, err := LoadFile(Path())
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvEmail); v != "" {
		c.Email = v
	}
	if v := os.Getenv(EnvCache); v != "" {
		c.CachePath = ExpandTilde(v)
	}
}

// ResolvedCachePath returns the configured cache path or the default.
func (c *Config) ResolvedCachePath() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	return DefaultCachePath()
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if path == "" {
		return errors.New("no config path available")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// NormalizeKey converts key formats (api-key, API_KEY) to api_key.
func NormalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "-", "_")
}

// Get returns the string form of a key's value.
func (c *Config) Get(key string) (string, error) {
	switch NormalizeKey(key) {
	case "api_key":
		return c.APIKey, nil
	case "email":
		return c.Email, nil
	case "tool":
		return c.Tool, nil
	case "base_url":
		return c.BaseURL, nil
	case "cache_path":
		return c.CachePath, nil
	case "requests_per_second":
		if c.RequestsPerSecond == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.RequestsPerSecond, 'g', -1, 64), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set parses value into key. An empty value clears the key.
func (c *Config) Set(key, value string) error {
	switch NormalizeKey(key) {
	case "api_key":
		c.APIKey = value
	case "email":
		c.Email = value
	case "tool":
		c.Tool = value
	case "base_url":
		c.BaseURL = value
	case "cache_path":
		c.CachePath = ExpandTilde(value)
	case "requests_per_second":
		if value == "" {
			c.RequestsPerSecond = 0
			return nil
		}
		rps, err := strconv.ParseFloat(value, 64)
		if err != nil || rps <= 0 {
			return fmt.Errorf("%w: requests_per_second must be a positive number, got %q", ErrInvalidValue, value)
		}
		c.RequestsPerSecond = rps
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// Values returns every key with its current value.
func (c *Config) Values() map[string]string {
	out := make(map[string]string, len(Keys))
	for _, k := range Keys {
		v, _ := c.Get(k)
		out[k] = v
	}
	return out
}

// ExpandTilde replaces a leading ~ with the user's home directory.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
