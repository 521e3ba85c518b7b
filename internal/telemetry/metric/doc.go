// Package metric provides Prometheus metrics for evalboard.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: registry, client and server metrics, HTTP handler
//   - collector.go: custom collector for evaluation cache statistics
//
// The CLI records channel and fallback activity; the analysis server
// exposes its metrics at /metrics in Prometheus format.
package metric
