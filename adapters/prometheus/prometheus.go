package prometheus

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Message directions and outcomes used as label values.
const (
	Inbound  = "inbound"
	Outbound = "outbound"

	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeForbidden = "forbidden"
	OutcomeAuth      = "unauthorized"
)

// MetricsCollector collects endpoint metrics into its own registry.
// A nil collector is valid and records nothing.
type MetricsCollector struct {
	registry        *prometheus.Registry
	namespace       string
	serviceName     string
	goCollectors    bool
	messages        *prometheus.CounterVec
	handlerDuration *prometheus.HistogramVec
	requestDuration *prometheus.HistogramVec
	authFailures    *prometheus.CounterVec
	pending         prometheus.Gauge
	customMetrics   map[string]prometheus.Collector
}

// NewMetricsCollector creates a new Prometheus metrics collector with options.
func NewMetricsCollector(options ...MetricsCollectorOptions) *MetricsCollector {
	collector := &MetricsCollector{
		namespace:     "synapse",
		customMetrics: make(map[string]prometheus.Collector),
	}

	// Apply options
	for _, option := range options {
		option(collector)
	}
	if collector.registry == nil {
		collector.registry = prometheus.NewRegistry()
	}

	collector.registerDefaultMetrics()
	return collector
}

func (mc *MetricsCollector) registerDefaultMetrics() {
	factory := promauto.With(mc.registry)
	constLabels := prometheus.Labels{"service": mc.serviceName}

	mc.messages = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   mc.namespace,
			Name:        "messages_total",
			Help:        "Messages handled by the endpoint",
			ConstLabels: constLabels,
		},
		[]string{"direction", "subject", "outcome"},
	)

	mc.handlerDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   mc.namespace,
			Name:        "handler_duration_seconds",
			Help:        "Duration of inbound handler invocations",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"subject", "outcome"},
	)

	mc.requestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   mc.namespace,
			Name:        "request_duration_seconds",
			Help:        "Time from send to settlement of correlated requests",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"subject", "outcome"},
	)

	mc.authFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   mc.namespace,
			Name:        "auth_failures_total",
			Help:        "Inbound messages whose service token failed verification",
			ConstLabels: constLabels,
		},
		[]string{"path"},
	)

	mc.pending = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   mc.namespace,
			Name:        "requests_pending",
			Help:        "Correlated requests awaiting a reply",
			ConstLabels: constLabels,
		},
	)

	if mc.goCollectors {
		mc.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, metric := range mc.customMetrics {
		mc.registry.MustRegister(metric)
	}
}

// ObserveMessage counts one message.
func (mc *MetricsCollector) ObserveMessage(direction, subject, outcome string) {
	if mc == nil {
		return
	}
	mc.messages.WithLabelValues(direction, subject, outcome).Inc()
}

// ObserveHandler records a handler invocation.
func (mc *MetricsCollector) ObserveHandler(subject, outcome string, elapsed time.Duration) {
	if mc == nil {
		return
	}
	mc.handlerDuration.WithLabelValues(subject, outcome).Observe(elapsed.Seconds())
	mc.messages.WithLabelValues(Inbound, subject, outcome).Inc()
}

// ObserveRequest records a settled correlated request.
func (mc *MetricsCollector) ObserveRequest(subject, outcome string, elapsed time.Duration) {
	if mc == nil {
		return
	}
	mc.requestDuration.WithLabelValues(subject, outcome).Observe(elapsed.Seconds())
}

// ObserveAuthFailure counts a rejected token. path is "request" or "reply".
func (mc *MetricsCollector) ObserveAuthFailure(path string) {
	if mc == nil {
		return
	}
	mc.authFailures.WithLabelValues(path).Inc()
}

// SetPending sets the number of outstanding requests.
func (mc *MetricsCollector) SetPending(n int) {
	if mc == nil {
		return
	}
	mc.pending.Set(float64(n))
}

// AddCustomMetric adds a custom metric to the collector
func (mc *MetricsCollector) AddCustomMetric(name string, metric prometheus.Collector) {
	mc.customMetrics[name] = metric
	mc.registry.MustRegister(metric)
}

// GetCounter creates a new counter metric
func (mc *MetricsCollector) GetCounter(name, help string) prometheus.Counter {
	counter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: mc.namespace,
			Name:      sanitize(name),
			Help:      help,
		},
	)
	mc.AddCustomMetric(name, counter)
	return counter
}

// Handler serves the collector's registry in the exposition format.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{Registry: mc.registry})
}

func sanitize(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(name)
}
