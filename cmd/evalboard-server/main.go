package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yndnr/evalboard/internal/core/rules"
	"github.com/yndnr/evalboard/internal/core/service"
	"github.com/yndnr/evalboard/internal/infra/buildinfo"
	"github.com/yndnr/evalboard/internal/infra/confloader"
	"github.com/yndnr/evalboard/internal/infra/shutdown"
	"github.com/yndnr/evalboard/internal/infra/tlsroots"
	"github.com/yndnr/evalboard/internal/server/config"
	"github.com/yndnr/evalboard/internal/server/engine"
	"github.com/yndnr/evalboard/internal/server/httpserver"
	"github.com/yndnr/evalboard/internal/storage"
	"github.com/yndnr/evalboard/internal/telemetry/logger"
	"github.com/yndnr/evalboard/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("evalboard-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := config.Load(*configFile, nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.Info("starting evalboard-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	metrics := metric.NewRegistry()
	shutdownHandler := shutdown.NewHandler(cfg.HTTP.ShutdownTimeout)

	// Evaluation cache
	var opts []service.AnalysisOption
	if cfg.Cache.Enabled {
		cache, closeCache, err := initCache(cfg, log)
		if err != nil {
			return fmt.Errorf("init cache: %w", err)
		}
		metrics.MustRegister(metric.NewCollector(cache.Stats))
		opts = append(opts, service.WithCache(cache))
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("closing evaluation cache")
			return closeCache()
		})
	}

	// Engine
	eng := initEngine(cfg, log, metrics)
	if err := eng.Start(context.Background()); err != nil {
		// Searches retry the launch, so a missing engine is not fatal.
		log.Error("engine failed to start", "path", cfg.Engine.Path, "error", err)
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("stopping engine")
		return eng.Close()
	})

	svc := service.NewAnalysisService(eng, rules.New(), service.AnalysisConfig{
		DefaultDepth:  cfg.Engine.DefaultDepth,
		MaxDepth:      cfg.Engine.MaxDepth,
		SearchTimeout: cfg.Engine.SearchTimeout,
	}, append(opts, service.WithMetrics(metrics), service.WithLogger(log))...)

	// HTTP
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Analyzer:    svc,
		Logger:      log,
		Metrics:     metrics,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		RateLimit:   cfg.HTTP.RateLimit,
		RateBurst:   cfg.HTTP.RateBurst,
	})
	httpServer := httpserver.New(cfg.HTTP.Addr, router)
	if cfg.HTTP.TLSCertFile != "" {
		certs, err := tlsroots.NewWatcher(cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile, tlsroots.WithLogger(log))
		if err != nil {
			return fmt.Errorf("load TLS certificate: %w", err)
		}
		certs.StartAsync()
		httpServer.WithTLS(certs.ServerConfig())
		shutdownHandler.OnShutdown(func(ctx context.Context) error { return certs.Stop() })
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	// Config hot reload
	if *configFile != "" {
		stop, err := watchConfig(*configFile, log)
		if err != nil {
			log.Warn("config watch disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(ctx context.Context) error { return stop() })
		}
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.HTTP.Addr, "tls", cfg.HTTP.TLSCertFile != "")
		if err := httpServer.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// initLogger creates the process logger and installs it as the default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// initCache opens the Badger store behind the evaluation cache.
func initCache(cfg *config.ServerConfig, log logger.Logger) (*storage.EvalCache, func() error, error) {
	store, err := storage.OpenBadger(cfg.Cache.Dir, storage.DefaultBadgerConfig(), log)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewEvalCache(store, cfg.Cache.TTL), store.Close, nil
}

// initEngine builds the UCI driver for the configured binary.
func initEngine(cfg *config.ServerConfig, log logger.Logger, metrics *metric.Registry) *engine.Engine {
	ecfg := engine.DefaultConfig()
	ecfg.Threads = cfg.Engine.Threads
	ecfg.HashMB = cfg.Engine.HashMB
	ecfg.MultiPV = cfg.Engine.MultiPV

	return engine.New(
		engine.ExecLauncher(cfg.Engine.Path, cfg.Engine.Args...),
		ecfg,
		engine.WithLogger(log),
		engine.WithMetrics(metrics),
	)
}

// watchConfig re-applies the log level whenever the config file changes.
// Other settings take effect on restart.
func watchConfig(path string, log logger.Logger) (func() error, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := config.Load(path, nil)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if cfg.Log.Level != logger.CurrentLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w.Stop, nil
}
