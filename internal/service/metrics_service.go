package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/civic-complaint-api/internal/models"
)

const metricsNamespace = "civic"

// timing accumulates a count and total duration for the system snapshot.
type timing struct {
	count atomic.Uint64
	nanos atomic.Uint64
}

func (t *timing) add(d time.Duration) {
	t.count.Add(1)
	t.nanos.Add(uint64(d.Nanoseconds()))
}

func (t *timing) averageMs() (uint64, float64) {
	n := t.count.Load()
	if n == 0 {
		return 0, 0
	}
	return n, float64(t.nanos.Load()) / float64(n) / float64(time.Millisecond)
}

// MetricsService owns the Prometheus registry for the portal and keeps running totals
// for the system analytics snapshot. All methods are safe on a nil receiver.
type MetricsService struct {
	handler http.Handler

	httpDuration *prometheus.HistogramVec
	httpTotal    *prometheus.CounterVec

	cacheLookups  *prometheus.CounterVec
	cacheLatency  *prometheus.HistogramVec
	cacheHitRatio prometheus.Gauge

	dbDuration *prometheus.HistogramVec

	complaintEvents *prometheus.CounterVec
	exportRows      *prometheus.CounterVec

	requests    timing
	dbQueries   timing
	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64
}

// NewMetricsService registers the portal collectors plus Go runtime and process metrics
// on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &MetricsService{
		handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route template and status.",
		}, []string{"method", "route", "status"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Dashboard and analytics cache lookups by result.",
		}, []string{"result"}),
		cacheLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "operation_seconds",
			Help:      "Cache round-trip latency by operation.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"op"}),
		cacheHitRatio: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "hit_ratio",
			Help:      "Cache hits over all lookups since start.",
		}),
		dbDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Aggregate query latency by query label.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		complaintEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "complaints",
			Name:      "events_total",
			Help:      "Complaint lifecycle events by kind and resulting status.",
		}, []string{"event", "status"}),
		exportRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "complaints",
			Name:      "export_rows_total",
			Help:      "Rows written to complaint exports by format.",
		}, []string{"format"}),
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics. route is the route template, never the raw URL.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	m.httpTotal.WithLabelValues(method, route, code).Inc()
	m.requests.add(duration)
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("get").Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		m.cacheHits.Add(1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		m.cacheMisses.Add(1)
	}
	m.cacheHitRatio.Set(m.hitRatio())
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("set").Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.dbQueries.add(duration)
}

// RecordComplaintEvent counts a submission, transition, assignment or deletion.
func (m *MetricsService) RecordComplaintEvent(event string, status string) {
	if m == nil {
		return
	}
	m.complaintEvents.WithLabelValues(event, status).Inc()
}

// RecordExport counts exported rows for format.
func (m *MetricsService) RecordExport(format string, rows int) {
	if m == nil {
		return
	}
	m.exportRows.WithLabelValues(format).Add(float64(rows))
}

func (m *MetricsService) hitRatio() float64 {
	hits, misses := m.cacheHits.Load(), m.cacheMisses.Load()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// Snapshot returns running totals for GET /analytics/system.
func (m *MetricsService) Snapshot() models.AnalyticsSystemMetrics {
	if m == nil {
		return models.AnalyticsSystemMetrics{GeneratedAt: time.Now().UTC()}
	}
	requests, avgRequestMs := m.requests.averageMs()
	queries, avgQueryMs := m.dbQueries.averageMs()
	return models.AnalyticsSystemMetrics{
		CacheHitRatio:            m.hitRatio(),
		CacheHits:                m.cacheHits.Load(),
		CacheMisses:              m.cacheMisses.Load(),
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             queries,
		AverageDBQueryDurationMs: avgQueryMs,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
