package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/yndnr/evalboard/internal/core/domain"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"illegal move", fmt.Errorf("play: %w", domain.ErrIllegalMove), 2},
		{"invalid config", domain.ErrInvalidArgument.WithDetails("depth"), 2},
		{"fallback failed", domain.ErrFallbackFailed, 1},
		{"plain", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
