package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/yndnr/evalboard/internal/cli/connection"
	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/infra/tlsroots"
	"github.com/yndnr/evalboard/internal/telemetry/logger"
)

// CLIConfig is the configuration for the evalboard CLI.
type CLIConfig struct {
	// Server is the base URL of the analysis service.
	Server      string `koanf:"server" yaml:"server"`
	ChannelPath string `koanf:"channel_path" yaml:"channel_path"`
	AnalyzePath string `koanf:"analyze_path" yaml:"analyze_path"`
	HealthPath  string `koanf:"health_path" yaml:"health_path"`

	// CAFile is a PEM bundle trusted in addition to the system roots.
	CAFile string `koanf:"ca_file" yaml:"ca_file,omitempty"`

	// Depth is sent with fallback requests.
	Depth int `koanf:"depth" yaml:"depth"`

	Reconnect ReconnectConfig `koanf:"reconnect" yaml:"reconnect"`

	// DropStale discards fallback results older than the latest request.
	DropStale bool `koanf:"drop_stale" yaml:"drop_stale"`

	// RequestTimeout bounds fallback requests; zero waits indefinitely.
	RequestTimeout time.Duration `koanf:"request_timeout" yaml:"request_timeout"`

	// Output is the output format: text, json or yaml.
	Output string `koanf:"output" yaml:"output"`

	HistoryFile string `koanf:"history_file" yaml:"history_file"`

	Log LogConfig `koanf:"log" yaml:"log"`
}

// ReconnectConfig is the reconnection policy of the duplex channel.
type ReconnectConfig struct {
	MaxAttempts int           `koanf:"max_attempts" yaml:"max_attempts"`
	Delay       time.Duration `koanf:"delay" yaml:"delay"`
}

// LogConfig configures CLI logging. Logs go to stderr.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:      "http://127.0.0.1:8000",
		ChannelPath: "/ws",
		AnalyzePath: "/analyze",
		HealthPath:  "/health",
		Depth:       domain.DefaultDepth,
		Reconnect: ReconnectConfig{
			MaxAttempts: connection.DefaultMaxReconnectAttempts,
			Delay:       connection.DefaultReconnectDelay,
		},
		Output: "text",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *CLIConfig) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Server) == "" {
		errs = append(errs, "server is required")
	}
	if c.Depth < 1 || c.Depth > 99 {
		errs = append(errs, fmt.Sprintf("depth must be between 1 and 99, got %d", c.Depth))
	}
	if c.Reconnect.MaxAttempts < 0 {
		errs = append(errs, "reconnect.max_attempts must not be negative")
	}
	if c.Reconnect.Delay <= 0 {
		errs = append(errs, "reconnect.delay must be positive")
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, "request_timeout must not be negative")
	}
	switch c.Output {
	case "text", "json", "yaml":
	default:
		errs = append(errs, fmt.Sprintf("output must be text, json or yaml, got %q", c.Output))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, "log.level: "+err.Error())
	}
	if _, err := logger.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, "log.format: "+err.Error())
	}
	for _, p := range []struct{ name, value string }{
		{"channel_path", c.ChannelPath},
		{"analyze_path", c.AnalyzePath},
		{"health_path", c.HealthPath},
	} {
		if !strings.HasPrefix(p.value, "/") {
			errs = append(errs, fmt.Sprintf("%s must start with /", p.name))
		}
	}

	if len(errs) > 0 {
		return domain.ErrInvalidArgument.WithDetails(strings.Join(errs, "; "))
	}
	return nil
}

// Connection returns the connection manager configuration. An explicit
// reconnect.max_attempts of 0 disables reconnection.
func (c *CLIConfig) Connection() (connection.Config, error) {
	tlsCfg, err := tlsroots.ClientConfig(c.CAFile)
	if err != nil {
		return connection.Config{}, fmt.Errorf("ca_file: %w", err)
	}
	attempts := c.Reconnect.MaxAttempts
	if attempts == 0 {
		attempts = connection.NoReconnect
	}
	return connection.Config{
		TLS:                  tlsCfg,
		Server:               c.Server,
		ChannelPath:          c.ChannelPath,
		AnalyzePath:          c.AnalyzePath,
		HealthPath:           c.HealthPath,
		Depth:                c.Depth,
		MaxReconnectAttempts: attempts,
		ReconnectDelay:       c.Reconnect.Delay,
		DropStale:            c.DropStale,
		RequestTimeout:       c.RequestTimeout,
	}, nil
}
