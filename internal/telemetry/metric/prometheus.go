package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "evalboard"

// Registry holds all application metrics.
//
// All recording methods are safe to call on a nil *Registry, so components
// can take metrics as an optional dependency.
type Registry struct {
	reg *prometheus.Registry

	// Client metrics
	AnalyzeRequests   *prometheus.CounterVec
	Reconnects        prometheus.Counter
	ConnectionState   prometheus.Gauge
	MalformedMessages prometheus.Counter
	StaleResults      prometheus.Counter

	// Server metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	EngineSearches  *prometheus.CounterVec
	EngineDuration  prometheus.Histogram
	EngineRestarts  prometheus.Counter
	CacheLookups    *prometheus.CounterVec
	ChannelsOpen    prometheus.Gauge
}

// NewRegistry creates a registry with all metrics registered, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		AnalyzeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "analyze_requests_total",
			Help:      "Positions sent for analysis, by path (channel or fallback).",
		}, []string{"path"}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "reconnects_total",
			Help:      "Reconnection attempts scheduled after unexpected channel closure.",
		}),
		ConnectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "connection_state",
			Help:      "Current connection state (0 disconnected, 1 connecting, 2 connected, 3 reconnecting, 4 failed over).",
		}),
		MalformedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "malformed_messages_total",
			Help:      "Inbound analysis messages dropped because they could not be decoded.",
		}),
		StaleResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "stale_results_total",
			Help:      "Fallback results dropped because a newer position was requested.",
		}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled, by method, route and status code.",
		}, []string{"method", "route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		EngineSearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "searches_total",
			Help:      "Engine searches, by result (ok or error).",
		}, []string{"result"}),
		EngineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "search_duration_seconds",
			Help:      "Time spent in a single engine search.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		EngineRestarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "restarts_total",
			Help:      "Engine process restarts.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Evaluation cache lookups, by result (hit or miss).",
		}, []string{"result"}),
		ChannelsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "channels_open",
			Help:      "Open duplex analysis channels.",
		}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.AnalyzeRequests,
		r.Reconnects,
		r.ConnectionState,
		r.MalformedMessages,
		r.StaleResults,
		r.RequestsTotal,
		r.RequestDuration,
		r.EngineSearches,
		r.EngineDuration,
		r.EngineRestarts,
		r.CacheLookups,
		r.ChannelsOpen,
	)
	return r
}

// Prometheus returns the underlying registry for registering extra collectors.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.reg
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	if r == nil {
		return
	}
	r.reg.MustRegister(cs...)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// IncAnalyze records a position sent over path.
func (r *Registry) IncAnalyze(path string) {
	if r == nil {
		return
	}
	r.AnalyzeRequests.WithLabelValues(path).Inc()
}

// IncReconnect records a scheduled reconnection.
func (r *Registry) IncReconnect() {
	if r == nil {
		return
	}
	r.Reconnects.Inc()
}

// SetConnectionState records the connection state ordinal.
func (r *Registry) SetConnectionState(state int) {
	if r == nil {
		return
	}
	r.ConnectionState.Set(float64(state))
}

// IncMalformed records a dropped inbound message.
func (r *Registry) IncMalformed() {
	if r == nil {
		return
	}
	r.MalformedMessages.Inc()
}

// IncStale records a dropped stale fallback result.
func (r *Registry) IncStale() {
	if r == nil {
		return
	}
	r.StaleResults.Inc()
}

// RecordRequest records one handled HTTP request.
func (r *Registry) RecordRequest(method, route string, code int, d time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordSearch records one engine search.
func (r *Registry) RecordSearch(d time.Duration, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.EngineSearches.WithLabelValues(result).Inc()
	r.EngineDuration.Observe(d.Seconds())
}

// IncEngineRestart records an engine restart.
func (r *Registry) IncEngineRestart() {
	if r == nil {
		return
	}
	r.EngineRestarts.Inc()
}

// RecordCacheLookup records a cache hit or miss.
func (r *Registry) RecordCacheLookup(hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	r.CacheLookups.WithLabelValues("miss").Inc()
}

// AddChannels adjusts the open channel gauge by delta.
func (r *Registry) AddChannels(delta int) {
	if r == nil {
		return
	}
	r.ChannelsOpen.Add(float64(delta))
}
