package config

import (
	"fmt"

	"github.com/yndnr/evalboard/internal/infra/confloader"
)

// EnvPrefix is the prefix of server environment variables, e.g.
// EVALBOARD_SERVER_ENGINE__PATH sets engine.path.
const EnvPrefix = "EVALBOARD_SERVER_"

// Load loads defaults, then the file at path (if any), then environment
// variables, then overrides, and verifies the result.
func Load(path string, overrides map[string]any) (*ServerConfig, error) {
	opts := []confloader.Option{
		confloader.WithEnvPrefix(EnvPrefix),
		confloader.WithOverrides(overrides),
	}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}

	cfg := Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
