package prometheus

import "github.com/prometheus/client_golang/prometheus"

// MetricsCollectorOptions defines the options for configuring MetricsCollector.
type MetricsCollectorOptions func(*MetricsCollector)

// WithServiceName sets the service label on every metric.
func WithServiceName(serviceName string) MetricsCollectorOptions {
	return func(collector *MetricsCollector) {
		collector.serviceName = serviceName
	}
}

// WithNamespace overrides the metric name prefix.
func WithNamespace(namespace string) MetricsCollectorOptions {
	return func(collector *MetricsCollector) {
		if namespace != "" {
			collector.namespace = sanitize(namespace)
		}
	}
}

// WithRegistry sets the Prometheus registry for the metrics collector.
func WithRegistry(registry *prometheus.Registry) MetricsCollectorOptions {
	return func(collector *MetricsCollector) {
		collector.registry = registry
	}
}

// WithRuntimeMetrics also exports Go runtime and process metrics.
func WithRuntimeMetrics() MetricsCollectorOptions {
	return func(collector *MetricsCollector) {
		collector.goCollectors = true
	}
}

// WithCustomMetrics sets custom metrics for the metrics collector.
func WithCustomMetrics(customMetrics map[string]prometheus.Collector) MetricsCollectorOptions {
	return func(collector *MetricsCollector) {
		collector.customMetrics = customMetrics
	}
}

// ServiceName returns the service name.
func (collector *MetricsCollector) ServiceName() string {
	return collector.serviceName
}

// Registry returns the Prometheus registry.
func (collector *MetricsCollector) Registry() *prometheus.Registry {
	return collector.registry
}
