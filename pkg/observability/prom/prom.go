// Package prom backs the observability hooks with Prometheus collectors.
//
// A one-shot CLI scan has no long-lived /metrics endpoint, so the collected
// series are typically written to a node_exporter textfile with
// [Metrics.WriteTextfile] at the end of the run.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/peerscan/pkg/observability"
)

// Metrics implements the scan, cache and HTTP hooks.
type Metrics struct {
	registry *prometheus.Registry

	scans        *prometheus.CounterVec
	scanDuration prometheus.Histogram
	graphNodes   prometheus.Gauge
	conflicts    *prometheus.CounterVec
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	cacheBytes   *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration prometheus.Histogram
	httpErrors   prometheus.Counter
}

// New creates the collectors and registers them on reg. A nil reg gets a
// fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peerscan_scans_total",
			Help: "Scans run, by outcome",
		}, []string{"outcome"}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "peerscan_scan_duration_seconds",
			Help:    "Wall time of a scan including registry lookups",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		graphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "peerscan_graph_nodes",
			Help: "Installed packages in the most recent scan",
		}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peerscan_conflicts_total",
			Help: "Conflicts detected, by class",
		}, []string{"kind"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peerscan_cache_hits_total",
			Help: "Registry cache hits by tier",
		}, []string{"tier"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peerscan_cache_misses_total",
			Help: "Registry cache misses by tier",
		}, []string{"tier"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peerscan_cache_written_bytes_total",
			Help: "Bytes written to the registry cache by tier",
		}, []string{"tier"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peerscan_http_requests_total",
			Help: "Registry HTTP responses by status code",
		}, []string{"status_code"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "peerscan_http_request_duration_seconds",
			Help:    "Registry HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		httpErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peerscan_http_errors_total",
			Help: "Registry requests that failed before a response",
		}),
	}
	reg.MustRegister(
		m.scans, m.scanDuration, m.graphNodes, m.conflicts,
		m.cacheHits, m.cacheMisses, m.cacheBytes,
		m.httpRequests, m.httpDuration, m.httpErrors,
	)
	return m
}

// Register installs m as the global scan, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetScanHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes all series in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) OnScanStart(context.Context, string) {}

func (m *Metrics) OnScanComplete(_ context.Context, _ string, res observability.ScanResult, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.scans.WithLabelValues(outcome).Inc()
	m.scanDuration.Observe(d.Seconds())
	m.graphNodes.Set(float64(res.Nodes))
}

func (m *Metrics) OnConflict(_ context.Context, kind, _ string) {
	m.conflicts.WithLabelValues(kind).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, tier string)  { m.cacheHits.WithLabelValues(tier).Inc() }
func (m *Metrics) OnCacheMiss(_ context.Context, tier string) { m.cacheMisses.WithLabelValues(tier).Inc() }

func (m *Metrics) OnCacheSet(_ context.Context, tier string, size int) {
	m.cacheBytes.WithLabelValues(tier).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, _, _ string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(strconv.Itoa(code)).Inc()
	m.httpDuration.Observe(d.Seconds())
}

func (m *Metrics) OnError(context.Context, string, string, string, error) {
	m.httpErrors.Inc()
}

var (
	_ observability.ScanHooks  = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)
