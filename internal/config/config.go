// Package config loads and persists the user-level configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Cache configuration
	Cache CacheConfig `toml:"cache"`

	// Scryfall API configuration
	Scryfall ScryfallConfig `toml:"scryfall"`

	// CLI client configuration
	Client ClientConfig `toml:"client"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// CacheConfig contains card cache settings.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"` // Enable the card cache
	TTL     string `toml:"ttl"`     // Cache TTL (e.g., "24h")
	Path    string `toml:"path"`    // Cache file path ("" = default location)
}

// ScryfallConfig contains card-data service settings.
type ScryfallConfig struct {
	BaseURL string `toml:"base_url"` // API endpoint ("" = production)
	Timeout string `toml:"timeout"`  // Request timeout (e.g., "30s")
}

// ClientConfig contains settings for the CLI client.
type ClientConfig struct {
	ServerURL string `toml:"server_url"` // proxygen API server to talk to
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Enabled: true,
			TTL:     "24h",
			Path:    "",
		},
		Scryfall: ScryfallConfig{
			BaseURL: "",
			Timeout: "30s",
		},
		Client: ClientConfig{
			ServerURL: "http://localhost:8080",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// CacheTTL returns the parsed cache TTL, falling back to 24h when the
// configured value is unparsable.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// CachePath returns the configured cache file path, or the default under
// the config directory.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "card-cache.db"), nil
}

// configDir returns the per-user configuration directory, creating it if
// needed.
func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".proxygen")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return dir, nil
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if the
// file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from the given path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
