// Package metrics exposes stowr's Prometheus instrumentation, following
// the teacher repo's promauto-based construction and Record* helper
// pattern, rescoped from HTTP/object-store subsystems onto stowr's own
// storage, index, dedup and delta concerns.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every counter, histogram and gauge stowr records.
type Metrics struct {
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	BytesStoredTotal       prometheus.Counter
	BytesCompressedTotal   prometheus.Counter
	DeduplicationHitsTotal prometheus.Counter
	DeltaEncodedTotal      prometheus.Counter

	IndexEntriesTotal prometheus.Gauge
	IndexBackend      *prometheus.GaugeVec

	BatchOperationsTotal *prometheus.CounterVec
	BatchItemsTotal      *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// New returns the process-wide Metrics bundle under the "stowr" namespace.
// The first call registers it on the default Prometheus registry; later
// calls return the same bundle instead of registering the collectors again.
func New() *Metrics {
	defaultOnce.Do(func() { defaultMetrics = newMetrics() })
	return defaultMetrics
}

func newMetrics() *Metrics {
	return &Metrics{
		StoreOperationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stowr",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Total number of storage manager operations by name and result.",
		}, []string{"operation", "result"}),

		StoreOperationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stowr",
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Latency of storage manager operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		BytesStoredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "stowr",
			Subsystem: "storage",
			Name:      "bytes_stored_total",
			Help:      "Total uncompressed bytes accepted by store operations.",
		}),

		BytesCompressedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "stowr",
			Subsystem: "storage",
			Name:      "bytes_compressed_total",
			Help:      "Total compressed bytes written to physical objects.",
		}),

		DeduplicationHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "stowr",
			Subsystem: "dedup",
			Name:      "hits_total",
			Help:      "Total store operations that resolved to a reference entry.",
		}),

		DeltaEncodedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "stowr",
			Subsystem: "delta",
			Name:      "encoded_total",
			Help:      "Total store operations that resolved to a delta entry.",
		}),

		IndexEntriesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "stowr",
			Subsystem: "index",
			Name:      "entries_total",
			Help:      "Current number of entries tracked by the index.",
		}),

		IndexBackend: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "stowr",
			Subsystem: "index",
			Name:      "backend",
			Help:      "1 for the currently active index backend, 0 otherwise.",
		}, []string{"backend"}),

		BatchOperationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stowr",
			Subsystem: "batch",
			Name:      "operations_total",
			Help:      "Total batch ingest/extract runs by result.",
		}, []string{"operation", "result"}),

		BatchItemsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stowr",
			Subsystem: "batch",
			Name:      "items_total",
			Help:      "Total items processed within batch operations by result.",
		}, []string{"operation", "result"}),
	}
}

// Handler returns the HTTP handler the `serve-metrics` command mounts.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// RecordOperation records a single storage manager operation's outcome and
// latency.
func (m *Metrics) RecordOperation(operation string, err error, duration time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.StoreOperationsTotal.WithLabelValues(operation, result).Inc()
	m.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordStore records the byte-level accounting for one successful store.
func (m *Metrics) RecordStore(fileSize, compressedSize int64) {
	m.BytesStoredTotal.Add(float64(fileSize))
	m.BytesCompressedTotal.Add(float64(compressedSize))
}

// RecordDeduplicationHit increments the dedup hit counter.
func (m *Metrics) RecordDeduplicationHit() {
	m.DeduplicationHitsTotal.Inc()
}

// RecordDeltaEncoded increments the delta-encoded counter.
func (m *Metrics) RecordDeltaEncoded() {
	m.DeltaEncodedTotal.Inc()
}

// SetIndexBackend marks backend as the active one and zeroes the rest.
func (m *Metrics) SetIndexBackend(active string) {
	for _, name := range []string{"json", "sql"} {
		v := 0.0
		if name == active {
			v = 1.0
		}
		m.IndexBackend.WithLabelValues(name).Set(v)
	}
}

// SetIndexEntries reports the current entry count.
func (m *Metrics) SetIndexEntries(n int) {
	m.IndexEntriesTotal.Set(float64(n))
}

// RecordBatch records the outcome of one batch run and its item-level
// success/error split.
func (m *Metrics) RecordBatch(operation string, err error, succeeded, failed int) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.BatchOperationsTotal.WithLabelValues(operation, result).Inc()
	m.BatchItemsTotal.WithLabelValues(operation, "success").Add(float64(succeeded))
	m.BatchItemsTotal.WithLabelValues(operation, "error").Add(float64(failed))
}
