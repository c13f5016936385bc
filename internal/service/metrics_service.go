package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Load and mutation outcomes used as metric labels.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeNotFound  = "not_found"
	OutcomeDiscarded = "discarded"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	syncLoads       *prometheus.CounterVec
	syncDuration    *prometheus.HistogramVec
	mutations       *prometheus.CounterVec
	changeEvents    *prometheus.CounterVec
	liveScreens     prometheus.Gauge
	cacheLookups    *prometheus.CounterVec
	cacheWrite      prometheus.Observer
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	syncLoads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_loads_total",
		Help: "Screen loads by screen and outcome",
	}, []string{"screen", "outcome"})

	syncDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_load_duration_seconds",
		Help:    "Duration of full screen loads",
		Buckets: prometheus.DefBuckets,
	}, []string{"screen"})

	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_mutations_total",
		Help: "Mutations issued against the data service",
	}, []string{"operation", "outcome"})

	changeEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_total",
		Help: "Change notifications received per collection and type",
	}, []string{"collection", "type"})

	liveScreens := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_live_screens",
		Help: "Open live course-listing connections",
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, syncLoads, syncDuration, mutations, changeEvents, liveScreens, cacheLookups, cacheWrite, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		syncLoads:       syncLoads,
		syncDuration:    syncDuration,
		mutations:       mutations,
		changeEvents:    changeEvents,
		liveScreens:     liveScreens,
		cacheLookups:    cacheLookups,
		cacheWrite:      cacheWrite,
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

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordSyncLoad counts a finished screen load.
func (m *MetricsService) RecordSyncLoad(screen, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.syncLoads.WithLabelValues(screen, outcome).Inc()
	m.syncDuration.WithLabelValues(screen).Observe(duration.Seconds())
}

// RecordMutation counts a write against the data service.
func (m *MetricsService) RecordMutation(operation, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, outcome).Inc()
}

// RecordChangeEvent counts an incoming change notification.
func (m *MetricsService) RecordChangeEvent(collection, changeType string) {
	if m == nil {
		return
	}
	m.changeEvents.WithLabelValues(collection, changeType).Inc()
}

// LiveScreenOpened increments the live screen gauge; the returned func decrements it.
func (m *MetricsService) LiveScreenOpened() func() {
	if m == nil {
		return func() {}
	}
	m.liveScreens.Inc()
	return m.liveScreens.Dec
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}
