package logger

import "context"

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	channelIDKey
)

// WithLogger returns ctx carrying l.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger carried by ctx, or Default.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID tags ctx with an HTTP request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithChannelID tags ctx with the ID of a duplex analysis channel.
func WithChannelID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, channelIDKey, id)
}

// ChannelIDFromContext returns the channel ID, or "".
func ChannelIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(channelIDKey).(string)
	return id
}

// L returns FromContext(ctx) with request_id and channel_id attached when
// ctx carries them.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if id := RequestIDFromContext(ctx); id != "" {
		l = l.With("request_id", id)
	}
	if id := ChannelIDFromContext(ctx); id != "" {
		l = l.With("channel_id", id)
	}
	return l
}
