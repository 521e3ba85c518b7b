package command

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/evalboard/internal/cli/config"
	"github.com/yndnr/evalboard/internal/cli/output"
	"github.com/yndnr/evalboard/internal/infra/buildinfo"
	"github.com/yndnr/evalboard/internal/telemetry/logger"
)

const (
	metaConfig = "config"
	metaLogger = "logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "evalboard",
		Usage:   "Live chess analysis against a remote engine",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			AnalyzeCommand(),
			ReviewCommand(),
			PlayCommand(),
			HealthCommand(),
			ConfigCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "analysis service base URL (e.g. http://127.0.0.1:8000)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "config file (default ~/.evalboard/cli.yaml)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: text, json, yaml",
		},
		&cli.IntFlag{
			Name:    "depth",
			Aliases: []string{"d"},
			Usage:   "search depth for fallback requests",
		},
		&cli.BoolFlag{
			Name:  "drop-stale",
			Usage: "discard fallback results superseded by a newer request",
		},
		&cli.DurationFlag{
			Name:  "request-timeout",
			Usage: "timeout for fallback requests (0 waits indefinitely)",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "PEM file of extra CAs trusted for https/wss servers",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, warn, error",
		},
	}
}

// GlobalFlags holds the global flags that were set on the command line.
type GlobalFlags struct {
	ConfigPath string
	Overrides  map[string]any
}

// ParseGlobalFlags extracts global flags from context. Only flags the user
// set become configuration overrides.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	flags := &GlobalFlags{
		ConfigPath: c.String("config"),
		Overrides:  make(map[string]any),
	}
	if c.IsSet("server") {
		flags.Overrides["server"] = c.String("server")
	}
	if c.IsSet("output") {
		flags.Overrides["output"] = c.String("output")
	}
	if c.IsSet("depth") {
		flags.Overrides["depth"] = c.Int("depth")
	}
	if c.IsSet("drop-stale") {
		flags.Overrides["drop_stale"] = c.Bool("drop-stale")
	}
	if c.IsSet("request-timeout") {
		flags.Overrides["request_timeout"] = c.Duration("request-timeout")
	}
	if c.IsSet("ca-file") {
		flags.Overrides["ca_file"] = c.String("ca-file")
	}
	if c.IsSet("log-level") {
		flags.Overrides["log.level"] = c.String("log-level")
	}
	return flags
}

// LoadConfig returns the effective configuration, loading it on first use.
func LoadConfig(c *cli.Context) (*config.CLIConfig, error) {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg, nil
	}

	flags := ParseGlobalFlags(c)
	cfg, err := config.Load(flags.ConfigPath, flags.Overrides)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: stderr(c),
	})
	if err != nil {
		return nil, err
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaLogger] = log
	return cfg, nil
}

// GetLogger returns the CLI logger, or the process default before the
// configuration is loaded.
func GetLogger(c *cli.Context) logger.Logger {
	if l, ok := c.App.Metadata[metaLogger].(logger.Logger); ok {
		return l
	}
	return logger.Default()
}

func formatterFor(cfg *config.CLIConfig) (output.Format, output.Formatter, error) {
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return "", nil, err
	}
	return format, output.NewFormatter(format), nil
}

func stdin(c *cli.Context) io.Reader {
	if c.App.Reader != nil {
		return c.App.Reader
	}
	return os.Stdin
}

func stdout(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func stderr(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
