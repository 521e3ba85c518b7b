package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	if got := ErrParse.Error(); got != "[EB-NAV-4001] malformed transcript" {
		t.Errorf("Error() = %q", got)
	}
	if got := ErrIllegalMove.WithDetails("e2e5").Error(); got != "[EB-NAV-4002] illegal move: e2e5" {
		t.Errorf("Error() with details = %q", got)
	}
}

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("load game: %w", ErrParse.WithDetails("unexpected token"))

	if !errors.Is(wrapped, ErrParse) {
		t.Error("errors.Is should match by code through wrapping")
	}
	if errors.Is(wrapped, ErrIllegalMove) {
		t.Error("errors.Is should not match a different code")
	}
	if errors.Is(ErrParse, errors.New("malformed transcript")) {
		t.Error("errors.Is should not match a plain error")
	}
}

func TestDomainError_CopiesDoNotMutate(t *testing.T) {
	cause := errors.New("broken pipe")
	err := ErrTransport.WithDetails("write").WithCause(cause)

	if ErrTransport.Details != "" || ErrTransport.Cause != nil {
		t.Error("predefined error was modified")
	}
	if err.Details != "write" || !errors.Is(err, cause) {
		t.Errorf("copy = %+v", err)
	}
	if errors.Unwrap(ErrTransport) != nil {
		t.Error("Unwrap() should be nil without a cause")
	}
}

func TestDomainError_Status(t *testing.T) {
	tests := []struct {
		err  *DomainError
		want int
	}{
		{ErrParse, 400},
		{ErrInvalidArgument, 400},
		{ErrEmptyPosition, 400},
		{NewDomainError("EB-SYS-4290", "too many requests"), 429},
		{ErrMalformedResponse, 502},
		{ErrEngineUnavailable, 503},
		{ErrEngine, 500},
		{NewDomainError("UNKNOWN", "x"), 500},
		{NewDomainError("EB-X-12", "x"), 500},
		{NewDomainError("EB-X-9990", "x"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if got := tt.err.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAsDomainError(t *testing.T) {
	de, ok := AsDomainError(fmt.Errorf("search: %w", ErrEngine.WithCause(errors.New("eof"))))
	if !ok || de.Code != "EB-ENG-5000" {
		t.Errorf("AsDomainError() = %v, %v", de, ok)
	}
	if _, ok := AsDomainError(errors.New("plain")); ok {
		t.Error("AsDomainError should not match a plain error")
	}
}
