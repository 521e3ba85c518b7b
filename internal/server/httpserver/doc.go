// Package httpserver provides the analysis HTTP server.
//
// Routes:
//
//	POST /analyze  one analysis per request
//	GET  /ws       duplex channel, one analysis per inbound message
//	GET  /health   liveness and engine state
//	GET  /ready    readiness (engine running)
//	GET  /metrics  Prometheus metrics
//
// The middleware chain is Recover -> RequestID -> AccessLog, with CORS and
// per-IP rate limiting on the analysis routes.
package httpserver
