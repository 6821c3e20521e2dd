// ABOUTME: Connection settings for the charm record backend
// ABOUTME: Persists host and auto-sync choices next to the agency database

package charm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harperreed/agency/config"
)

const (
	// DefaultCharmHost is the self-hosted 2389 research server.
	DefaultCharmHost = "charm.2389.dev"

	// AppName names the charm KV database.
	AppName = "agency"

	ConfigFileName = "charm-config.json"
)

// Config holds charm connection settings.
type Config struct {
	Host string `json:"host,omitempty"`
	// AutoSync pushes after every write and pulls on open.
	AutoSync bool `json:"auto_sync"`

	path string
}

func DefaultConfig() *Config {
	return &Config{Host: DefaultCharmHost, AutoSync: true}
}

// LoadConfig reads the config from the agency data directory.
func LoadConfig() (*Config, error) {
	return loadConfig(config.DataDir())
}

// loadConfig reads dir's config file. A missing or unreadable file yields
// defaults; AGENCY_CHARM_HOST overrides the stored host.
func loadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(dir, ConfigFileName)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read charm config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			cfg = DefaultConfig()
		}
	}

	if cfg.Host == "" {
		cfg.Host = DefaultCharmHost
	}
	cfg.Host = config.GetEnv("AGENCY_CHARM_HOST", cfg.Host)
	cfg.path = path
	return cfg, nil
}

// Save writes the config back to where it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = filepath.Join(config.DataDir(), ConfigFileName)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}

// SetAutoSync enables or disables auto-sync and saves.
func (c *Config) SetAutoSync(enabled bool) error {
	c.AutoSync = enabled
	return c.Save()
}
