// Package config handles CLI configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	// ClientID is the OAuth2 client ID of the account. The secret
	// lives in the keystore, never here.
	ClientID string `yaml:"client_id,omitempty"`

	// BaseURL overrides the resource API base URL.
	BaseURL string `yaml:"base_url,omitempty"`

	// TokenURL overrides the OAuth2 token endpoint.
	TokenURL string `yaml:"token_url,omitempty"`

	// Scopes are requested on every token exchange.
	Scopes []string `yaml:"scopes,omitempty"`

	// DefaultModel is the chat model used when --model is not given.
	DefaultModel string `yaml:"default_model,omitempty"`
}

// DefaultConfigPath returns the default configuration file path:
// ~/.asknews/config.yaml, or %USERPROFILE%\.asknews\config.yaml on
// Windows.
func DefaultConfigPath() string {
	var homeDir string
	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
	} else {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		return "config.yaml"
	}
	return filepath.Join(homeDir, ".asknews", "config.yaml")
}

// LoadConfig loads configuration from the specified path. A missing
// file yields an empty config without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the configuration to the specified path, creating
// the directory as needed.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
