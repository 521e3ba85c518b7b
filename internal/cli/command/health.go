package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check the analysis service health",
		Action: healthAction,
	}
}

func healthAction(c *cli.Context) error {
	cfg, err := LoadConfig(c)
	if err != nil {
		return err
	}
	_, formatter, err := formatterFor(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	client, err := httpClient(cfg)
	if err != nil {
		return err
	}
	health, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if err := formatter.Format(stdout(c), health); err != nil {
		return err
	}
	if health.Status != "healthy" || !health.EngineRunning {
		return fmt.Errorf("service unhealthy: %s", health.Status)
	}
	return nil
}
