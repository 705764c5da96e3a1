// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for docchat.
//
// Configuration lives in TOML with sensible defaults and environment
// variable overrides:
//   - ~/.docchat/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"docchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete docchat configuration.
type Config struct {
	// API configuration
	API APIConfig `toml:"api"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Files configuration (document staging)
	Files FilesConfig `toml:"files"`

	// History configuration (local message archive)
	History HistoryConfig `toml:"history"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// BaseURL is the document-chat backend base URL
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// RequestsPerSec throttles outbound calls (0 disables the limiter)
	RequestsPerSec float64 `toml:"requests_per_sec"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "dark", "light", or "auto" (detect from terminal background)
	Theme string `toml:"theme"`
	// ShowTimestamps renders message timestamps in the chat pane
	ShowTimestamps bool `toml:"show_timestamps"`
}

// FilesConfig contains document staging settings.
type FilesConfig struct {
	// InboxDir is watched for dropped documents; accepted files are staged
	// automatically. Empty disables the watcher.
	InboxDir string `toml:"inbox_dir"`
	// WatchDebounceMs coalesces rapid filesystem events
	WatchDebounceMs int `toml:"watch_debounce_ms"`
}

// HistoryConfig contains local archive settings.
type HistoryConfig struct {
	// Enabled toggles the local sqlite message archive
	Enabled bool `toml:"enabled"`
	// Path overrides the archive location (default: <config dir>/history.db)
	Path string `toml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Debug lowers the log level to debug
	Debug bool `toml:"debug"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSecs:    30,
			RequestsPerSec: 5,
		},
		UI: UIConfig{
			Theme:          "auto",
			ShowTimestamps: true,
		},
		Files: FilesConfig{
			WatchDebounceMs: 300,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// fillDefaults fills zero values with defaults after a partial file load.
func fillDefaults(cfg *Config) {
	def := Default()

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = def.API.BaseURL
	}
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = def.API.TimeoutSecs
	}
	if cfg.API.RequestsPerSec == 0 {
		cfg.API.RequestsPerSec = def.API.RequestsPerSec
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = def.UI.Theme
	}
	if cfg.Files.WatchDebounceMs == 0 {
		cfg.Files.WatchDebounceMs = def.Files.WatchDebounceMs
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the docchat configuration directory (~/.docchat).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".docchat"), nil
}

// ConfigPath returns the path to config.toml.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
// Directory is 0700: it holds tokens and chat history.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// HistoryPath resolves the archive path for the current config.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Timeout returns the API timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// WatchDebounce returns the watcher debounce as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Files.WatchDebounceMs) * time.Millisecond
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration, falling back to defaults when no file
// exists. Environment overrides apply last.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if loadErr := LoadFromPath(cfg, path); loadErr != nil && !os.IsNotExist(loadErr) {
			return nil, loadErr
		}
	}

	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath decodes a TOML file into cfg. Returns os.ErrNotExist-wrapped
// errors when the file is absent so callers can treat that as "use defaults".
func LoadFromPath(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides applies DOCCHAT_* environment variables over the loaded
// values. Only settings that make sense per-invocation are overridable.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DOCCHAT_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("DOCCHAT_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.API.TimeoutSecs = n
		}
	}
	if v := os.Getenv("DOCCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("DOCCHAT_DEBUG"); v == "1" || v == "true" {
		c.Logging.Debug = true
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not a valid URL", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.API.TimeoutSecs < 0 {
		return fmt.Errorf("api.timeout_secs must be non-negative, got %d", c.API.TimeoutSecs)
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme must be dark, light, or auto, got %q", c.UI.Theme)
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to config.toml atomically with 0600 perms.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}
