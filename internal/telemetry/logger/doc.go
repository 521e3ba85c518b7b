// Package logger provides structured logging for evalboard.
//
// It wraps log/slog behind a small Logger interface:
//
//   - logger.go: construction, level control and the process default
//   - context.go: request and channel IDs carried through context.Context
//   - redact.go: masking of credentials in URLs and secret-named keys
//
// The level is held in a shared slog.LevelVar so SetLevel takes effect on
// every logger built by New, which is how config reloads change verbosity.
package logger
