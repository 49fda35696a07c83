// Package config loads the Labasi settings file. A missing file yields
// defaults; flags and environment variables override on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the full configuration tree, persisted at
// ~/.labasi/settings.yaml.
type Settings struct {
	Server   ServerSettings   `yaml:"server"`
	Database DatabaseSettings `yaml:"database"`
	Analyzer AnalyzerSettings `yaml:"analyzer"`
}

type ServerSettings struct {
	Port string `yaml:"port"`
}

type DatabaseSettings struct {
	// Path to the SQLite file. Empty means ~/.labasi/labasi.db.
	Path string `yaml:"path"`
}

type AnalyzerSettings struct {
	Enabled bool `yaml:"enabled"`
	// BaseURL of an OpenAI-compatible endpoint. Empty uses the default.
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	// APIKeyEnv names the environment variable holding the API key,
	// so the key itself never lands in the settings file.
	APIKeyEnv string `yaml:"api_key_env"`
}

// NewSettings returns the defaults used when no settings file exists.
func NewSettings() *Settings {
	return &Settings{
		Server:   ServerSettings{Port: "8080"},
		Database: DatabaseSettings{Path: ""},
		Analyzer: AnalyzerSettings{
			Enabled:   false,
			Model:     "gpt-4o-mini",
			APIKeyEnv: "LABASI_API_KEY",
		},
	}
}

// APIKey resolves the analyzer API key from the configured env var.
func (a AnalyzerSettings) APIKey() string {
	if a.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(a.APIKeyEnv)
}

// SettingsFile returns the default settings path.
func SettingsFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".labasi", "settings.yaml"), nil
}

// Load reads settings from path, or from the default location when
// path is empty. A missing file is not an error.
func Load(path string) (*Settings, error) {
	if path == "" {
		var err error
		path, err = SettingsFile()
		if err != nil {
			return nil, err
		}
	}
	return LoadYAMLOrDefault(path, NewSettings)
}

// Save writes settings to path, creating parent directories as needed.
func Save(path string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// LoadYAMLOrDefault loads a YAML file into T, or returns defaultFn()
// when the file does not exist.
func LoadYAMLOrDefault[T any](path string, defaultFn func() *T) (*T, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultFn(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var v T
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse YAML from %s: %w", path, err)
	}
	return &v, nil
}
