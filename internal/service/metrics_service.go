package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/unischedule-api/internal/models"
)

// Registration outcomes recorded by the consultation registry.
const (
	RegistrationRegistered   = "registered"
	RegistrationUnregistered = "unregistered"
	RegistrationFull         = "full"
	RegistrationDuplicate    = "duplicate"
	RegistrationNotFound     = "not_found"
)

// MetricsService encapsulates Prometheus instrumentation. A nil *MetricsService
// is valid and records nothing.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	registrations     *prometheus.CounterVec
	notificationsRead prometheus.Counter
	flushTotal        *prometheus.CounterVec
	flushDuration     *prometheus.HistogramVec
	storeSize         *prometheus.GaugeVec
}

// NewMetricsService registers core Prometheus collectors.
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

	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consultation_registrations_total",
		Help: "Consultation registration attempts by outcome",
	}, []string{"outcome"})

	notificationsRead := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_marked_read_total",
		Help: "Notifications transitioned from unread to read",
	})

	flushTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_flushes_total",
		Help: "Store snapshot writes by store and status",
	}, []string{"store", "status"})

	flushDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_flush_duration_seconds",
		Help:    "Duration of store snapshot writes",
		Buckets: prometheus.DefBuckets,
	}, []string{"store"})

	storeSize := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "store_snapshot_bytes",
		Help: "Size of the last written snapshot per store",
	}, []string{"store"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, registrations, notificationsRead, flushTotal, flushDuration, storeSize, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		registrations:     registrations,
		notificationsRead: notificationsRead,
		flushTotal:        flushTotal,
		flushDuration:     flushDuration,
		storeSize:         storeSize,
	}
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordRegistration counts a consultation registration attempt.
func (m *MetricsService) RecordRegistration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

// RecordNotificationsRead counts notifications that became read.
func (m *MetricsService) RecordNotificationsRead(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.notificationsRead.Add(float64(n))
}

// ObserveFlush records one snapshot write.
func (m *MetricsService) ObserveFlush(store models.StoreName, size int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	} else {
		m.storeSize.WithLabelValues(string(store)).Set(float64(size))
	}
	m.flushTotal.WithLabelValues(string(store), status).Inc()
	m.flushDuration.WithLabelValues(string(store)).Observe(duration.Seconds())
}
