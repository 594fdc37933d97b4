// Package metrics provides Prometheus metrics collection for the pipeline.
package metrics

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the ingestion and intelligence
// pipeline. Instances are safe for concurrent use.
type Metrics struct {
	ScrapesTotal    *prometheus.CounterVec
	ScrapeDuration  *prometheus.HistogramVec
	ScrapesInFlight prometheus.Gauge

	ErrorsTotal *prometheus.CounterVec

	SignalComputeTotal    *prometheus.CounterVec
	SignalComputeDuration *prometheus.HistogramVec

	AlertsTriggeredTotal  *prometheus.CounterVec
	AlertDeliveryTotal    *prometheus.CounterVec
	AlertDeliveryDuration *prometheus.HistogramVec

	StoreQueriesTotal *prometheus.CounterVec

	ServiceUptime prometheus.Gauge
	ServiceInfo   *prometheus.GaugeVec
}

// New creates a Metrics instance registered against the default registerer.
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Metrics instance registered against registerer.
// Passing a nil registerer skips registration, useful in tests that build
// multiple instances in the same process.
func NewWithRegistry(serviceName string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScrapesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrapes_total",
				Help: "Total number of product scrape attempts.",
			},
			[]string{"platform", "operation", "status"},
		),
		ScrapeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scrape_duration_seconds",
				Help:    "Duration of scrape fetch+extract operations.",
				Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20, 40},
			},
			[]string{"platform", "operation"},
		),
		ScrapesInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "scrapes_in_flight",
				Help: "Current number of scrape requests in flight.",
			},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errors_total",
				Help: "Total number of errors by component and operation.",
			},
			[]string{"component", "operation"},
		),

		SignalComputeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_compute_total",
				Help: "Total number of signal calculations performed.",
			},
			[]string{"signal", "status"},
		),
		SignalComputeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signal_compute_duration_seconds",
				Help:    "Duration of a single signal calculation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"signal"},
		),

		AlertsTriggeredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alerts_triggered_total",
				Help: "Total number of alert subscriptions that fired.",
			},
			[]string{"alert_type"},
		),
		AlertDeliveryTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alert_delivery_total",
				Help: "Total number of notification delivery attempts.",
			},
			[]string{"channel", "status"},
		),
		AlertDeliveryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "alert_delivery_duration_seconds",
				Help:    "Duration of notification channel delivery.",
				Buckets: []float64{.01, .05, .1, .5, 1, 2, 5, 10},
			},
			[]string{"channel"},
		),

		StoreQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_queries_total",
				Help: "Total number of storage operations by entity and outcome.",
			},
			[]string{"entity", "operation", "status"},
		),

		ServiceUptime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "service_uptime_seconds",
				Help: "Service uptime in seconds.",
			},
		),
		ServiceInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "service_info",
				Help: "Service build information.",
			},
			[]string{"service", "version"},
		),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.ScrapesTotal,
			m.ScrapeDuration,
			m.ScrapesInFlight,
			m.ErrorsTotal,
			m.SignalComputeTotal,
			m.SignalComputeDuration,
			m.AlertsTriggeredTotal,
			m.AlertDeliveryTotal,
			m.AlertDeliveryDuration,
			m.StoreQueriesTotal,
			m.ServiceUptime,
			m.ServiceInfo,
		)
	}

	m.ServiceInfo.WithLabelValues(serviceName, "1.0.0").Set(1)

	return m
}

// RecordScrape records the outcome of a single scrape operation.
func (m *Metrics) RecordScrape(platform, operation, status string, duration time.Duration) {
	m.ScrapesTotal.WithLabelValues(platform, operation, status).Inc()
	m.ScrapeDuration.WithLabelValues(platform, operation).Observe(duration.Seconds())
}

// RecordError increments the error counter for component/operation.
func (m *Metrics) RecordError(component, operation string) {
	m.ErrorsTotal.WithLabelValues(component, operation).Inc()
}

// RecordSignalCompute records a signal calculator invocation.
func (m *Metrics) RecordSignalCompute(signal, status string, duration time.Duration) {
	m.SignalComputeTotal.WithLabelValues(signal, status).Inc()
	m.SignalComputeDuration.WithLabelValues(signal).Observe(duration.Seconds())
}

// RecordAlertTriggered increments the triggered-alert counter.
func (m *Metrics) RecordAlertTriggered(alertType string) {
	m.AlertsTriggeredTotal.WithLabelValues(alertType).Inc()
}

// RecordAlertDelivery records a notification channel send attempt.
func (m *Metrics) RecordAlertDelivery(channel, status string, duration time.Duration) {
	m.AlertDeliveryTotal.WithLabelValues(channel, status).Inc()
	m.AlertDeliveryDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordStoreQuery records a storage operation outcome.
func (m *Metrics) RecordStoreQuery(entity, operation, status string) {
	m.StoreQueriesTotal.WithLabelValues(entity, operation, status).Inc()
}

// UpdateUptime sets the uptime gauge relative to startTime.
func (m *Metrics) UpdateUptime(startTime time.Time) {
	m.ServiceUptime.Set(time.Since(startTime).Seconds())
}

// Enabled reports whether Prometheus metrics should be exposed, controlled
// by the METRICS_ENABLED environment variable (defaults to enabled).
func Enabled() bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("METRICS_ENABLED")))
	if raw == "" {
		return true
	}
	switch raw {
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

var (
	globalMetrics *Metrics
	globalMu      sync.Mutex
)

// Init initializes the process-wide metrics instance once.
func Init(serviceName string) *Metrics {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalMetrics == nil {
		globalMetrics = New(serviceName)
	}
	return globalMetrics
}

// Global returns the process-wide metrics instance, initializing a default
// one if Init was never called.
func Global() *Metrics {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalMetrics == nil {
		globalMetrics = New("commercesignal")
	}
	return globalMetrics
}
