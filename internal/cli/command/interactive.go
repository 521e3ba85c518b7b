package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/evalboard/internal/cli/connection"
	"github.com/yndnr/evalboard/internal/cli/repl"
	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/core/navigation"
	"github.com/yndnr/evalboard/internal/core/rules"
	"github.com/yndnr/evalboard/internal/core/session"
	"github.com/yndnr/evalboard/internal/telemetry/logger"
)

func interactiveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "no-channel",
			Usage: "do not open the duplex channel; every request uses the fallback endpoint",
		},
	}
}

// ReviewCommand returns the review command.
func ReviewCommand() *cli.Command {
	return &cli.Command{
		Name:      "review",
		Aliases:   []string{"r"},
		Usage:     "Step through a recorded game with live analysis",
		ArgsUsage: "PGN_FILE",
		Flags:     interactiveFlags(),
		Action: func(c *cli.Context) error {
			file := c.Args().First()
			if file == "" {
				return fmt.Errorf("PGN file required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read pgn: %w", err)
			}
			return runInteractive(c, string(data))
		},
	}
}

// PlayCommand returns the play command.
func PlayCommand() *cli.Command {
	flags := append(interactiveFlags(), &cli.StringFlag{
		Name:  "fen",
		Usage: "start from this position instead of the initial one",
	})
	return &cli.Command{
		Name:  "play",
		Usage: "Play moves against the board with live analysis",
		Flags: flags,
		Action: func(c *cli.Context) error {
			transcript := ""
			if fen := c.String("fen"); fen != "" {
				if _, err := rules.New().Status(domain.Position(fen)); err != nil {
					return err
				}
				transcript = setupTranscript(fen)
			}
			return runInteractive(c, transcript)
		},
	}
}

// setupTranscript wraps a FEN in an empty game so the navigator starts
// from it.
func setupTranscript(fen string) string {
	return fmt.Sprintf("[SetUp \"1\"]\n[FEN \"%s\"]\n\n*\n", fen)
}

// runInteractive hosts a session in the REPL until the user leaves. An
// empty transcript starts from the navigator's initial position.
func runInteractive(c *cli.Context, transcript string) error {
	cfg, err := LoadConfig(c)
	if err != nil {
		return err
	}
	_, formatter, err := formatterFor(cfg)
	if err != nil {
		return err
	}
	log := GetLogger(c)
	ctx := c.Context

	var (
		sess *session.Session
		host *repl.REPL
	)
	connCfg, err := cfg.Connection()
	if err != nil {
		return err
	}
	mgr := connection.NewManager(connCfg,
		func(res domain.AnalysisResult) {
			sess.OnResult(res)
			host.Notify(res)
		},
		connection.WithLogger(log),
		connection.WithOnError(func(err error) {
			log.Warn("analysis request failed", "error", err)
		}),
	)
	defer mgr.Close()

	sess = session.New(navigation.New(rules.New()), mgr)

	history := repl.NewHistory(cfg.HistoryFile)
	if err := history.Load(); err != nil {
		log.Warn("load history failed", "file", cfg.HistoryFile, "error", err)
	}
	host = repl.New(sess,
		repl.WithInput(stdin(c)),
		repl.WithOutput(stdout(c)),
		repl.WithFormatter(formatter),
		repl.WithChannel(mgr),
		repl.WithHistory(history),
	)

	probeHealth(ctx, mgr.HTTP(), log)

	if !c.Bool("no-channel") {
		if err := mgr.Connect(ctx); err != nil {
			log.Warn("channel unavailable, using fallback", "error", err)
		}
	}

	if transcript != "" {
		if err := sess.Load(ctx, transcript); err != nil {
			return err
		}
		if err := host.Execute(ctx, "moves"); err != nil {
			return err
		}
	} else if err := sess.Refresh(ctx); err != nil {
		return err
	}

	runErr := host.Run(ctx)

	if err := mgr.Close(); err != nil {
		log.Warn("close connection failed", "error", err)
	}
	if err := history.Save(); err != nil {
		log.Warn("save history failed", "file", cfg.HistoryFile, "error", err)
	}
	return runErr
}

// probeHealth queries the health endpoint once and logs the outcome.
func probeHealth(ctx context.Context, client *connection.HTTPClient, log logger.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		log.Warn("health probe failed", "error", err)
		return
	}
	log.Info("health probe", "status", health.Status, "engine_running", health.EngineRunning)
}
