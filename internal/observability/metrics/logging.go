// Package metrics provides Prometheus collectors for log delivery and the
// log record store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LoggingMetrics contains Prometheus metrics for log event delivery.
// It implements logger.DeliveryRecorder.
type LoggingMetrics struct {
	registry *prometheus.Registry

	eventsTotal         *prometheus.CounterVec
	deliveryErrorsTotal *prometheus.CounterVec
	eventsDroppedTotal  *prometheus.CounterVec
	queueDepth          *prometheus.GaugeVec
}

// NewLoggingMetrics creates and registers new logging metrics
func NewLoggingMetrics(registry *prometheus.Registry) (*LoggingMetrics, error) {
	m := &LoggingMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *LoggingMetrics) initMetrics() {
	m.eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "applog_events_total",
			Help: "Total number of log events delivered to a destination",
		},
		[]string{LabelDestination, LabelSeverity},
	)

	m.deliveryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "applog_delivery_errors_total",
			Help: "Total number of log events a destination failed to accept",
		},
		[]string{LabelDestination},
	)

	m.eventsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "applog_events_dropped_total",
			Help: "Total number of log events dropped because the delivery queue was full or closed",
		},
		[]string{LabelDestination},
	)

	m.queueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "applog_queue_depth",
			Help: "Number of log events waiting in a destination's delivery queue",
		},
		[]string{LabelDestination},
	)
}

// Describe implements the Collector interface
func (m *LoggingMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.eventsTotal.Describe(ch)
	m.deliveryErrorsTotal.Describe(ch)
	m.eventsDroppedTotal.Describe(ch)
	m.queueDepth.Describe(ch)
}

// Collect implements the Collector interface
func (m *LoggingMetrics) Collect(ch chan<- prometheus.Metric) {
	m.eventsTotal.Collect(ch)
	m.deliveryErrorsTotal.Collect(ch)
	m.eventsDroppedTotal.Collect(ch)
	m.queueDepth.Collect(ch)
}

// RecordEvent counts an event delivered to destination.
func (m *LoggingMetrics) RecordEvent(destination, severity string) {
	m.eventsTotal.WithLabelValues(destination, severity).Inc()
}

// RecordDeliveryError counts an event the destination failed to accept.
func (m *LoggingMetrics) RecordDeliveryError(destination string) {
	m.deliveryErrorsTotal.WithLabelValues(destination).Inc()
}

// RecordDropped counts an event that never reached the destination's queue.
func (m *LoggingMetrics) RecordDropped(destination string) {
	m.eventsDroppedTotal.WithLabelValues(destination).Inc()
}

// SetQueueDepth updates the queue depth gauge
func (m *LoggingMetrics) SetQueueDepth(destination string, depth int) {
	m.queueDepth.WithLabelValues(destination).Set(float64(depth))
}
