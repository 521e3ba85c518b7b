package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/yndnr/evalboard/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyHTTP(&cfg.HTTP),
		verifyEngine(&cfg.Engine),
		verifyCache(&cfg.Cache),
		verifyLog(&cfg.Log),
	)
}

func verifyHTTP(cfg *HTTPSection) error {
	var errs []error
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		errs = append(errs, fmt.Errorf("http.addr %q: %w", cfg.Addr, err))
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		errs = append(errs, errors.New("http.tls_cert_file and http.tls_key_file must be set together"))
	}
	for _, f := range []string{cfg.TLSCertFile, cfg.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			errs = append(errs, fmt.Errorf("tls file: %w", err))
		}
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, errors.New("http.rate_limit must not be negative"))
	}
	if cfg.RateLimit > 0 && cfg.RateBurst < 1 {
		errs = append(errs, errors.New("http.rate_burst must be at least 1"))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("http.shutdown_timeout must be positive"))
	}
	return errors.Join(errs...)
}

func verifyEngine(cfg *EngineSection) error {
	var errs []error
	if strings.TrimSpace(cfg.Path) == "" {
		errs = append(errs, errors.New("engine.path is required"))
	}
	if cfg.Threads < 1 {
		errs = append(errs, errors.New("engine.threads must be at least 1"))
	}
	if cfg.HashMB < 1 {
		errs = append(errs, errors.New("engine.hash_mb must be at least 1"))
	}
	if cfg.MultiPV < 1 || cfg.MultiPV > 10 {
		errs = append(errs, fmt.Errorf("engine.multipv must be between 1 and 10, got %d", cfg.MultiPV))
	}
	if cfg.MaxDepth < 1 || cfg.MaxDepth > 99 {
		errs = append(errs, fmt.Errorf("engine.max_depth must be between 1 and 99, got %d", cfg.MaxDepth))
	}
	if cfg.DefaultDepth < 1 || cfg.DefaultDepth > cfg.MaxDepth {
		errs = append(errs, fmt.Errorf("engine.default_depth must be between 1 and max_depth, got %d", cfg.DefaultDepth))
	}
	if cfg.SearchTimeout < 0 {
		errs = append(errs, errors.New("engine.search_timeout must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyCache(cfg *CacheSection) error {
	if cfg.TTL < 0 {
		return errors.New("cache.ttl must not be negative")
	}
	if !cfg.Enabled || cfg.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return fmt.Errorf("cannot create cache directory: %w", err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := logger.ParseFormat(cfg.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	return nil
}
