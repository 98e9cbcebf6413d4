package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates the Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	notifFanout     *prometheus.CounterVec
	unreadHits      prometheus.Counter
	unreadMisses    prometheus.Counter
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

	notifFanout := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Notifications written to recipient inboxes",
	}, []string{"type"})

	unreadHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unread_cache_hits_total",
		Help: "Unread-count lookups served from cache",
	})

	unreadMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unread_cache_misses_total",
		Help: "Unread-count lookups that fell through to storage",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, notifFanout, unreadHits, unreadMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		notifFanout:     notifFanout,
		unreadHits:      unreadHits,
		unreadMisses:    unreadMisses,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveFanout records inbox rows written for one notification type.
func (m *MetricsService) ObserveFanout(typ string, recipients int) {
	if m == nil || recipients <= 0 {
		return
	}
	m.notifFanout.WithLabelValues(typ).Add(float64(recipients))
}

// ObserveUnreadLookup records whether a badge-count lookup hit the cache.
func (m *MetricsService) ObserveUnreadLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.unreadHits.Inc()
		return
	}
	m.unreadMisses.Inc()
}
