package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains Prometheus metrics for log record store operations.
// It implements datastore.OperationRecorder.
type DatastoreMetrics struct {
	registry *prometheus.Registry

	dbOperationsTotal   *prometheus.CounterVec
	dbOperationDuration *prometheus.HistogramVec
	purgedRecordsTotal  prometheus.Counter
}

// NewDatastoreMetrics creates and registers new datastore metrics
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *DatastoreMetrics) initMetrics() {
	m.dbOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "applog_datastore_operations_total",
			Help: "Total number of log store operations",
		},
		[]string{LabelOperation, LabelStatus}, // operation: insert, query, purge; status: success, error
	)

	m.dbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "applog_datastore_operation_duration_seconds",
			Help:    "Time taken for log store operations",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
		[]string{LabelOperation},
	)

	m.purgedRecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "applog_datastore_purged_records_total",
			Help: "Total number of expired log records removed",
		},
	)
}

// Describe implements the Collector interface
func (m *DatastoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.dbOperationsTotal.Describe(ch)
	m.dbOperationDuration.Describe(ch)
	m.purgedRecordsTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *DatastoreMetrics) Collect(ch chan<- prometheus.Metric) {
	m.dbOperationsTotal.Collect(ch)
	m.dbOperationDuration.Collect(ch)
	m.purgedRecordsTotal.Collect(ch)
}

// RecordOperation records one store operation and its duration.
func (m *DatastoreMetrics) RecordOperation(operation, status string, duration time.Duration) {
	m.dbOperationsTotal.WithLabelValues(operation, status).Inc()
	m.dbOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordPurged adds count to the purged records counter.
func (m *DatastoreMetrics) RecordPurged(count int64) {
	if count > 0 {
		m.purgedRecordsTotal.Add(float64(count))
	}
}
