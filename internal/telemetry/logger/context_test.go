package logger

import (
	"bytes"
	"context"
	"testing"
)

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" || ChannelIDFromContext(ctx) != "" {
		t.Fatal("empty context should carry no IDs")
	}

	ctx = WithRequestID(ctx, "req-01J0")
	ctx = WithChannelID(ctx, "01J1")

	if got := RequestIDFromContext(ctx); got != "req-01J0" {
		t.Errorf("RequestIDFromContext() = %q", got)
	}
	if got := ChannelIDFromContext(ctx); got != "01J1" {
		t.Errorf("ChannelIDFromContext() = %q", got)
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext should fall back to the default logger")
	}

	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	FromContext(WithLogger(context.Background(), l)).Info("hello")
	if buf.Len() == 0 {
		t.Error("logger from context produced no output")
	}
}

func TestL(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		channelID string
	}{
		{"no ids", "", ""},
		{"request only", "req-1", ""},
		{"channel only", "", "ch-1"},
		{"both", "req-1", "ch-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Config{Level: "info", Format: "json", Output: &buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			ctx := WithLogger(context.Background(), l)
			if tt.requestID != "" {
				ctx = WithRequestID(ctx, tt.requestID)
			}
			if tt.channelID != "" {
				ctx = WithChannelID(ctx, tt.channelID)
			}
			L(ctx).Info("analysis served")

			entry := decodeLines(t, &buf)[0]
			for key, want := range map[string]string{"request_id": tt.requestID, "channel_id": tt.channelID} {
				got, ok := entry[key]
				if want == "" {
					if ok {
						t.Errorf("%s should be absent, got %v", key, got)
					}
					continue
				}
				if got != want {
					t.Errorf("%s = %v, want %q", key, got, want)
				}
			}
		})
	}
}
