// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for ollamakit.
//
// Configuration is read from ~/.ollamakit/config.toml when present;
// built-in defaults apply otherwise. Every field is optional.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete ollamakit configuration.
type Config struct {
	// Host is the chat service address, host:port or a full URL.
	Host string `toml:"host"`

	// Model is the default model name for new sessions.
	Model string `toml:"model"`

	// SystemPrompt is prepended to every new conversation when set.
	SystemPrompt string `toml:"system_prompt"`

	// ConnectTimeoutSecs bounds connecting and waiting for response
	// headers on the streaming endpoint.
	ConnectTimeoutSecs int `toml:"connect_timeout_secs"`

	// RequestTimeoutSecs bounds non-streaming requests (model listing,
	// capability probes).
	RequestTimeoutSecs int `toml:"request_timeout_secs"`

	// UI holds presentation settings.
	UI UIConfig `toml:"ui"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// WordWrap is the markdown rendering width. 0 disables wrapping.
	WordWrap int `toml:"word_wrap"`

	// ShowThinking displays the model's reasoning text when true.
	ShowThinking bool `toml:"show_thinking"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a configuration with built-in defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills in zero-valued fields with defaults. Host and Model
// defaults are left to the client and caller respectively.
func (c *Config) SetDefaults() {
	if c.ConnectTimeoutSecs <= 0 {
		c.ConnectTimeoutSecs = 30
	}
	if c.RequestTimeoutSecs <= 0 {
		c.RequestTimeoutSecs = 30
	}
	if c.UI.WordWrap < 0 {
		c.UI.WordWrap = 0
	}
}

// ConnectTimeout returns the streaming connect bound as a duration.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSecs) * time.Second
}

// RequestTimeout returns the non-streaming request bound as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.Host, " \t\n") {
		return fmt.Errorf("config: host %q contains whitespace", c.Host)
	}
	if c.ConnectTimeoutSecs < 0 {
		return errors.New("config: connect_timeout_secs must not be negative")
	}
	if c.RequestTimeoutSecs < 0 {
		return errors.New("config: request_timeout_secs must not be negative")
	}
	return nil
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the configuration directory, ~/.ollamakit.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ollamakit"), nil
}

// Path returns the configuration file path, ~/.ollamakit/config.toml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the configuration from the default path. A missing file is
// not an error: defaults are returned.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from an explicit path. A missing
// file yields defaults; a malformed file is an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return nil
}
