package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/evalboard/internal/cli/config"
	"github.com/yndnr/evalboard/internal/cli/connection"
	"github.com/yndnr/evalboard/internal/cli/output"
	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/core/navigation"
	"github.com/yndnr/evalboard/internal/core/rules"
)

// AnalyzeCommand returns the analyze command.
func AnalyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Analyze one position over the request/response endpoint",
		ArgsUsage: "[FEN]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "pgn",
				Usage: "take the position from a PGN file",
			},
			&cli.IntFlag{
				Name:  "ply",
				Usage: "with --pgn, the ply to analyze (0 is the start, -1 the final position)",
				Value: -1,
			},
		},
		Action: analyzeAction,
	}
}

func analyzeAction(c *cli.Context) error {
	cfg, err := LoadConfig(c)
	if err != nil {
		return err
	}
	format, formatter, err := formatterFor(cfg)
	if err != nil {
		return err
	}

	pos, st, err := resolvePosition(c)
	if err != nil {
		return err
	}
	if st.IsOver() {
		return formatter.Format(stdout(c), output.Report{Position: pos, Status: &st})
	}

	client, err := httpClient(cfg)
	if err != nil {
		return err
	}

	var spinner *output.Spinner
	if format == output.FormatText {
		spinner = output.NewSpinner(stderr(c), "Analyzing...")
		spinner.Start()
	}

	res, err := client.Analyze(c.Context, pos, cfg.Depth)
	if err != nil {
		if spinner != nil {
			spinner.Fail("analysis failed")
		}
		return err
	}
	if spinner != nil {
		spinner.Stop()
	}

	return formatter.Format(stdout(c), output.NewReport(pos, &st, res))
}

// resolvePosition picks the position named by the arguments: a ply of a
// PGN file, a FEN argument, or the initial position.
func resolvePosition(c *cli.Context) (domain.Position, domain.Status, error) {
	r := rules.New()

	if file := c.String("pgn"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", domain.Status{}, fmt.Errorf("read pgn: %w", err)
		}
		nav := navigation.New(r)
		if err := nav.LoadTranscript(string(data)); err != nil {
			return "", domain.Status{}, err
		}
		idx := nav.Moves().Len() - 1
		if ply := c.Int("ply"); ply >= 0 {
			idx = ply - 1
		}
		pos, err := nav.GotoIndex(idx)
		if err != nil {
			return "", domain.Status{}, err
		}
		return pos, nav.Status(), nil
	}

	pos := r.Initial()
	if c.Args().Present() {
		pos = domain.Position(strings.Join(c.Args().Slice(), " "))
	}
	st, err := r.Status(pos)
	if err != nil {
		return "", domain.Status{}, err
	}
	return pos, st, nil
}

func httpClient(cfg *config.CLIConfig) (*connection.HTTPClient, error) {
	conn, err := cfg.Connection()
	if err != nil {
		return nil, err
	}
	return connection.NewHTTPClient(conn.Server, conn.RequestTimeout).
		WithPaths(conn.AnalyzePath, conn.HealthPath).
		WithTLS(conn.TLS), nil
}
