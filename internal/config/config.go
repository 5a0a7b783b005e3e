// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for scribe.
//
// Configuration is TOML at ~/.scribe/config.toml with built-in defaults
// and environment variable overrides (SCRIBE_*). Values are validated and
// clamped on load, never rejected: a bad config degrades to defaults so
// the client always starts.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete scribe configuration.
type Config struct {
	// API endpoints
	API APIConfig `toml:"api"`

	// Storage backend selection
	Storage StorageConfig `toml:"storage"`

	// UI behavior
	UI UIConfig `toml:"ui"`

	// Local app-shell gateway (scribe serve)
	Gateway GatewayConfig `toml:"gateway"`
}

// APIConfig contains the remote endpoints.
type APIConfig struct {
	// CompletionURL is the chat completion endpoint. Credentials are
	// injected server-side; no API key lives in this config.
	CompletionURL string `toml:"completion_url"`
	// UploadURL is the attachment relay endpoint.
	UploadURL string `toml:"upload_url"`
}

// StorageConfig selects and locates the persistence backend.
type StorageConfig struct {
	// Backend is "sqlite" (default) or "file".
	Backend string `toml:"backend"`
	// Dir is the data directory (empty = ~/.scribe).
	Dir string `toml:"dir"`
}

// UIConfig contains UI behavior settings.
type UIConfig struct {
	// Theme is "auto" (detect terminal background), "dark", or "light".
	Theme string `toml:"theme"`
	// Markdown enables rendered replies; plain text when false.
	Markdown bool `toml:"markdown"`
}

// GatewayConfig configures the local app-shell gateway.
type GatewayConfig struct {
	// Listen is the address for scribe serve.
	Listen string `toml:"listen"`
	// Upstream is the origin the gateway proxies assets from.
	Upstream string `toml:"upstream"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			CompletionURL: "https://scribe.morganforge.dev/api/chat",
			UploadURL:     "https://scribe.morganforge.dev/api/upload",
		},
		Storage: StorageConfig{
			Backend: "sqlite",
		},
		UI: UIConfig{
			Theme:    "auto",
			Markdown: true,
		},
		Gateway: GatewayConfig{
			Listen:   "127.0.0.1:8787",
			Upstream: "https://scribe.morganforge.dev",
		},
	}
}

// DefaultDir returns the scribe data directory (~/.scribe).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scribe"
	}
	return filepath.Join(home, ".scribe")
}

// DefaultPath returns the config file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from the default path, applies environment
// overrides, and validates. A missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	cfg.Validate()
	return cfg, nil
}

// applyEnv applies SCRIBE_* environment overrides. Environment wins over
// file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("SCRIBE_COMPLETION_URL"); v != "" {
		c.API.CompletionURL = v
	}
	if v := os.Getenv("SCRIBE_UPLOAD_URL"); v != "" {
		c.API.UploadURL = v
	}
	if v := os.Getenv("SCRIBE_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("SCRIBE_STORAGE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("SCRIBE_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("SCRIBE_GATEWAY_LISTEN"); v != "" {
		c.Gateway.Listen = v
	}
}

// Validate clamps invalid values back to defaults.
func (c *Config) Validate() {
	switch strings.ToLower(c.Storage.Backend) {
	case "sqlite", "file":
		c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	default:
		c.Storage.Backend = "sqlite"
	}

	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
		c.UI.Theme = strings.ToLower(c.UI.Theme)
	default:
		c.UI.Theme = "auto"
	}

	if c.Storage.Dir == "" {
		c.Storage.Dir = DefaultDir()
	}
	if c.Gateway.Listen == "" {
		c.Gateway.Listen = "127.0.0.1:8787"
	}
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultPath())
}

// SaveTo writes the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
