package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yndnr/evalboard/internal/cli/command"
	"github.com/yndnr/evalboard/internal/core/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := command.App()
	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for rejected input (illegal moves, bad positions, invalid
// configuration) and 1 for everything else.
func exitCode(err error) int {
	if de, ok := domain.AsDomainError(err); ok && de.Status() < 500 {
		return 2
	}
	return 1
}
