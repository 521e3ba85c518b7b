// Package connection keeps the CLI host synchronized with a remote
// analysis service.
//
// This package contains:
//
//   - manager.go: Connection Manager state machine, reconnection and fallback
//   - channel.go: duplex channel over WebSocket
//   - http.go: request/response client for the fallback and health endpoints
//
// Positions are sent fire-and-forget. Results from either path are
// delivered through the single callback given to NewManager.
package connection
