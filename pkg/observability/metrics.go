package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements every hook interface on Prometheus collectors.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	chartNodes    *prometheus.HistogramVec
	chartDuration *prometheus.HistogramVec
	renders       *prometheus.CounterVec
}

// NewMetrics registers the familytree collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "familytree",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Requests sent to the family-tree service by method and status.",
		}, []string{"method", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "familytree",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Latency of family-tree service requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		httpErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "familytree",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Transport failures talking to the family-tree service.",
		}, []string{"method"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "familytree",
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache hits, misses and writes by key type.",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "familytree",
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		chartNodes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "familytree",
			Subsystem: "chart",
			Name:      "nodes",
			Help:      "Number of nodes in built charts.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 200},
		}, []string{"shape"}),
		chartDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "familytree",
			Subsystem: "chart",
			Name:      "build_duration_seconds",
			Help:      "Time spent adapting a tree into a chart.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"shape"}),
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "familytree",
			Subsystem: "chart",
			Name:      "renders_total",
			Help:      "Chart renders by output format and result.",
		}, []string{"format", "result"}),
	}
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, _, _ string, statusCode int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, _, _ string, _ error) {
	m.httpErrors.WithLabelValues(method).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnChartBuilt(_ context.Context, shape string, nodeCount int, d time.Duration) {
	m.chartNodes.WithLabelValues(shape).Observe(float64(nodeCount))
	m.chartDuration.WithLabelValues(shape).Observe(d.Seconds())
}

func (m *Metrics) OnRender(_ context.Context, format string, _ time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.renders.WithLabelValues(format, result).Inc()
}

var (
	_ HTTPHooks  = (*Metrics)(nil)
	_ CacheHooks = (*Metrics)(nil)
	_ ChartHooks = (*Metrics)(nil)
)
