package metric

import "github.com/prometheus/client_golang/prometheus"

// CacheStats is a point-in-time view of the evaluation cache.
type CacheStats struct {
	Entries  int64
	LSMSize  int64
	VLogSize int64
}

// Collector exports cache statistics on every scrape.
type Collector struct {
	stats func() CacheStats

	entries *prometheus.Desc
	lsm     *prometheus.Desc
	vlog    *prometheus.Desc
}

// NewCollector creates a collector that calls stats on every scrape.
func NewCollector(stats func() CacheStats) *Collector {
	return &Collector{
		stats:   stats,
		entries: prometheus.NewDesc(namespace+"_cache_entries", "Cached evaluations.", nil, nil),
		lsm:     prometheus.NewDesc(namespace+"_cache_lsm_size_bytes", "Cache LSM tree size in bytes.", nil, nil),
		vlog:    prometheus.NewDesc(namespace+"_cache_value_log_size_bytes", "Cache value log size in bytes.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.lsm
	ch <- c.vlog
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(c.lsm, prometheus.GaugeValue, float64(s.LSMSize))
	ch <- prometheus.MustNewConstMetric(c.vlog, prometheus.GaugeValue, float64(s.VLogSize))
}
