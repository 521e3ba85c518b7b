package engine

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Process is a running engine with its standard streams.
type Process struct {
	Stdin  io.WriteCloser
	Stdout io.Reader

	// Kill terminates the process. Wait reaps it.
	Kill func() error
	Wait func() error
}

// Launcher starts a new engine process.
type Launcher func(ctx context.Context) (*Process, error)

// ExecLauncher returns a Launcher that runs the engine binary at path.
func ExecLauncher(path string, args ...string) Launcher {
	return func(ctx context.Context) (*Process, error) {
		cmd := exec.Command(path, args...)

		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("stdin pipe: %w", err)
		}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("stdout pipe: %w", err)
		}
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("start %s: %w", path, err)
		}

		return &Process{
			Stdin:  stdin,
			Stdout: stdout,
			Kill:   cmd.Process.Kill,
			Wait:   cmd.Wait,
		}, nil
	}
}
