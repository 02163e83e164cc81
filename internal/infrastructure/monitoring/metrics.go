package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for one pipeline instance.
//
// Each Metrics owns its registry so several instances (tests, embedded use)
// never collide on registration. A nil *Metrics is a valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	// Pipeline metrics
	ItemsProduced   prometheus.Counter
	ItemsConsumed   *prometheus.CounterVec
	ItemElapsed     prometheus.Histogram
	BufferFilled    prometheus.Gauge
	BufferCapacity  prometheus.Gauge
	ConsumersActive prometheus.Gauge
	ScanSkipped     prometheus.Counter
	State           prometheus.Gauge

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	startTime time.Time
}

// NewMetrics creates a new metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		ItemsProduced: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "procwatch_items_produced_total",
				Help: "Total number of processes inserted into the buffer",
			},
		),
		ItemsConsumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "procwatch_items_consumed_total",
				Help: "Total number of processes removed from the buffer",
			},
			[]string{"consumer"},
		),
		ItemElapsed: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "procwatch_item_elapsed_seconds",
				Help:    "Elapsed running time of consumed processes",
				Buckets: []float64{1, 10, 60, 600, 3600, 6 * 3600, 24 * 3600, 7 * 24 * 3600, 30 * 24 * 3600},
			},
		),
		BufferFilled: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "procwatch_buffer_filled",
				Help: "Number of filled buffer slots",
			},
		),
		BufferCapacity: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "procwatch_buffer_capacity",
				Help: "Configured buffer capacity",
			},
		),
		ConsumersActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "procwatch_consumers_active",
				Help: "Number of running consumer tasks",
			},
		),
		ScanSkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "procwatch_scan_skipped_total",
				Help: "Processes skipped because they could not be read",
			},
		),
		State: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "procwatch_state",
				Help: "Lifecycle state (0 unstarted, 1 running, 2 shutting down, 3 stopped)",
			},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "procwatch_http_requests_total",
				Help: "Total number of status HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "procwatch_http_request_duration_seconds",
				Help:    "Status HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "procwatch_uptime_seconds",
			Help: "Seconds since the metrics collector was created",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry backing these metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordProduced records an item inserted into the buffer
func (m *Metrics) RecordProduced() {
	if m == nil {
		return
	}
	m.ItemsProduced.Inc()
	m.BufferFilled.Inc()
}

// RecordConsumed records an item removed from the buffer by consumer
func (m *Metrics) RecordConsumed(consumer string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ItemsConsumed.WithLabelValues(consumer).Inc()
	m.ItemElapsed.Observe(elapsed.Seconds())
	m.BufferFilled.Dec()
}

// RecordSkipped records a process the scan could not read
func (m *Metrics) RecordSkipped() {
	if m == nil {
		return
	}
	m.ScanSkipped.Inc()
}

// SetCapacity sets the configured buffer capacity
func (m *Metrics) SetCapacity(n int) {
	if m == nil {
		return
	}
	m.BufferCapacity.Set(float64(n))
}

// IncConsumers increments running consumers
func (m *Metrics) IncConsumers() {
	if m == nil {
		return
	}
	m.ConsumersActive.Inc()
}

// DecConsumers decrements running consumers
func (m *Metrics) DecConsumers() {
	if m == nil {
		return
	}
	m.ConsumersActive.Dec()
}

// SetState records the numeric lifecycle state
func (m *Metrics) SetState(state int) {
	if m == nil {
		return
	}
	m.State.Set(float64(state))
}

// RecordHTTPRequest records a status HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
