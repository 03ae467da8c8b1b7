package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the prometheus registry for the engine. All record
// methods are nil-safe so callers never have to guard instrumentation.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	compositionsTotal prometheus.Counter
	proposalsAccepted prometheus.Counter
	proposalsRejected prometheus.Counter
	composeDuration   prometheus.Histogram

	clashesTotal *prometheus.CounterVec

	simulationsTotal  prometheus.Counter
	simulationChanges prometheus.Counter
	simulateDuration  prometheus.Histogram

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewMetricsService builds the registry and registers all collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	s := &MetricsService{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_http_requests_total",
			Help: "Total HTTP requests processed, by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "timetable_http_request_duration_seconds",
			Help:    "HTTP request latency, by method and path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		compositionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timetable_compositions_total",
			Help: "Total timetable composition runs.",
		}),
		proposalsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timetable_proposals_accepted_total",
			Help: "Total slot proposals accepted across compositions.",
		}),
		proposalsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timetable_proposals_rejected_total",
			Help: "Total slot proposals rejected for clashes.",
		}),
		composeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timetable_compose_duration_seconds",
			Help:    "Composition run latency.",
			Buckets: prometheus.DefBuckets,
		}),
		clashesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_clashes_total",
			Help: "Total clashes detected, by dimension.",
		}, []string{"type"}),
		simulationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timetable_simulations_total",
			Help: "Total what-if simulation runs.",
		}),
		simulationChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timetable_simulation_changes_total",
			Help: "Total edits applied across simulation runs.",
		}),
		simulateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timetable_simulate_duration_seconds",
			Help:    "Simulation run latency.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timetable_cache_hits_total",
			Help: "Total cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timetable_cache_misses_total",
			Help: "Total cache misses.",
		}),
	}

	registry.MustRegister(
		s.httpRequestsTotal,
		s.httpRequestDuration,
		s.compositionsTotal,
		s.proposalsAccepted,
		s.proposalsRejected,
		s.composeDuration,
		s.clashesTotal,
		s.simulationsTotal,
		s.simulationChanges,
		s.simulateDuration,
		s.cacheHits,
		s.cacheMisses,
	)

	return s
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	if s == nil {
		return
	}
	s.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	s.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordComposition records one composition run outcome.
func (s *MetricsService) RecordComposition(accepted, rejected int, duration time.Duration) {
	if s == nil {
		return
	}
	s.compositionsTotal.Inc()
	s.proposalsAccepted.Add(float64(accepted))
	s.proposalsRejected.Add(float64(rejected))
	s.composeDuration.Observe(duration.Seconds())
}

// RecordClash counts one detected clash by dimension.
func (s *MetricsService) RecordClash(clashType string) {
	if s == nil {
		return
	}
	s.clashesTotal.WithLabelValues(clashType).Inc()
}

// RecordSimulation records one simulation run outcome.
func (s *MetricsService) RecordSimulation(changes int, duration time.Duration) {
	if s == nil {
		return
	}
	s.simulationsTotal.Inc()
	s.simulationChanges.Add(float64(changes))
	s.simulateDuration.Observe(duration.Seconds())
}

// RecordCacheHit counts one cache hit.
func (s *MetricsService) RecordCacheHit() {
	if s == nil {
		return
	}
	s.cacheHits.Inc()
}

// RecordCacheMiss counts one cache miss.
func (s *MetricsService) RecordCacheMiss() {
	if s == nil {
		return
	}
	s.cacheMisses.Inc()
}

// Handler exposes the registry for the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	if s == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
