package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"rig/pkg/logging"
)

const (
	userConfigDir  = ".config/rig"
	configFileName = "config.yaml"
)

// DefaultPath returns ~/.config/rig/config.yaml, or an empty string when the
// home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, userConfigDir, configFileName)
}

// Load reads the configuration at path on top of Default(). A missing file
// is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("Config", "No config found at %s, using defaults", path)
			return cfg, nil
		}
		return Config{}, NewConfigurationError(path, "io", err.Error())
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, NewConfigurationError(path, "parse", err.Error())
	}
	logging.Info("Config", "Loaded configuration from %s", path)
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
