package config

import (
	"time"

	"github.com/yndnr/evalboard/internal/core/domain"
)

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:8000"
	DefaultRateLimit       = 10
	DefaultRateBurst       = 20
	DefaultShutdownTimeout = 30 * time.Second

	DefaultEnginePath    = "stockfish"
	DefaultThreads       = 2
	DefaultHashMB        = 128
	DefaultMultiPV       = 3
	DefaultMaxDepth      = 30
	DefaultSearchTimeout = 60 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		HTTP: HTTPSection{
			Addr:            DefaultHTTPAddr,
			CORSOrigins:     []string{"*"},
			RateLimit:       DefaultRateLimit,
			RateBurst:       DefaultRateBurst,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Engine: EngineSection{
			Path:          DefaultEnginePath,
			Threads:       DefaultThreads,
			HashMB:        DefaultHashMB,
			MultiPV:       DefaultMultiPV,
			DefaultDepth:  domain.DefaultDepth,
			MaxDepth:      DefaultMaxDepth,
			SearchTimeout: DefaultSearchTimeout,
		},
		Cache: CacheSection{
			Enabled: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
