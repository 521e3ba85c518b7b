package config

import "time"

// ServerConfig is the root configuration for evalboard-server.
type ServerConfig struct {
	HTTP   HTTPSection   `koanf:"http" yaml:"http"`
	Engine EngineSection `koanf:"engine" yaml:"engine"`
	Cache  CacheSection  `koanf:"cache" yaml:"cache"`
	Log    LogSection    `koanf:"log" yaml:"log"`
}

// HTTPSection configures the HTTP listener.
type HTTPSection struct {
	Addr        string `koanf:"addr" yaml:"addr"`
	TLSCertFile string `koanf:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file" yaml:"tls_key_file"`

	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string `koanf:"cors_origins" yaml:"cors_origins"`

	// RateLimit is the sustained per-client request rate; zero disables
	// rate limiting.
	RateLimit float64 `koanf:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `koanf:"rate_burst" yaml:"rate_burst"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// EngineSection configures the UCI engine process.
type EngineSection struct {
	Path string   `koanf:"path" yaml:"path"`
	Args []string `koanf:"args" yaml:"args"`

	Threads int `koanf:"threads" yaml:"threads"`
	HashMB  int `koanf:"hash_mb" yaml:"hash_mb"`
	MultiPV int `koanf:"multipv" yaml:"multipv"`

	DefaultDepth int `koanf:"default_depth" yaml:"default_depth"`
	MaxDepth     int `koanf:"max_depth" yaml:"max_depth"`

	// SearchTimeout bounds a single search; zero waits for bestmove.
	SearchTimeout time.Duration `koanf:"search_timeout" yaml:"search_timeout"`
}

// CacheSection configures the evaluation cache.
type CacheSection struct {
	Enabled bool `koanf:"enabled" yaml:"enabled"`

	// Dir is the Badger directory; empty keeps the cache in memory.
	Dir string `koanf:"dir" yaml:"dir"`

	// TTL expires entries; zero keeps them until evicted.
	TTL time.Duration `koanf:"ttl" yaml:"ttl"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}
