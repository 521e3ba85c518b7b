package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/evalboard/internal/cli/config"
	"github.com/yndnr/evalboard/internal/cli/output"
	"github.com/yndnr/evalboard/internal/telemetry/logger"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Show the configuration file path",
				Action: configPath,
			},
			{
				Name:  "init",
				Usage: "Write a configuration file with default values",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "overwrite an existing file",
					},
				},
				Action: configInit,
			},
			{
				Name:      "validate",
				Usage:     "Validate a configuration file",
				ArgsUsage: "[FILE]",
				Action:    configValidate,
			},
		},
	}
}

func configFile(c *cli.Context) string {
	if p := c.String("config"); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func configShow(c *cli.Context) error {
	cfg, err := LoadConfig(c)
	if err != nil {
		return err
	}
	format, formatter, err := formatterFor(cfg)
	if err != nil {
		return err
	}
	if format == output.FormatText {
		formatter = output.NewFormatter(output.FormatYAML)
	}
	shown := *cfg
	shown.Server = logger.RedactString(cfg.Server)
	return formatter.Format(stdout(c), &shown)
}

func configPath(c *cli.Context) error {
	path := configFile(c)
	state := "present"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		state = "not found, using defaults"
	}
	_, err := fmt.Fprintf(stdout(c), "%s (%s)\n", path, state)
	return err
}

func configInit(c *cli.Context) error {
	path := configFile(c)
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	_, err := fmt.Fprintf(stdout(c), "wrote %s\n", path)
	return err
}

func configValidate(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = configFile(c)
	}
	if _, err := config.Load(path, nil); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	_, err := fmt.Fprintf(stdout(c), "%s is valid\n", path)
	return err
}
