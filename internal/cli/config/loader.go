package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/evalboard/internal/infra/confloader"
)

// EnvPrefix is the prefix of CLI environment variables.
const EnvPrefix = "EVALBOARD_"

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".evalboard", "cli.yaml")
}

// DefaultHistoryPath returns the default REPL history file path.
func DefaultHistoryPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".evalboard", "history")
}

// Load loads CLI configuration: defaults, then the file at path, then
// EVALBOARD_* environment variables, then overrides (typically flags).
// An empty path uses the default location, which may be absent.
func Load(path string, overrides map[string]any) (*CLIConfig, error) {
	opts := []confloader.Option{
		confloader.WithEnvPrefix(EnvPrefix),
		confloader.WithOverrides(overrides),
	}
	if path == "" {
		opts = append(opts, confloader.WithOptionalConfigFile(DefaultConfigPath()))
	} else {
		opts = append(opts, confloader.WithConfigFile(path))
	}

	cfg := Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	if cfg.HistoryFile == "" {
		cfg.HistoryFile = DefaultHistoryPath()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
