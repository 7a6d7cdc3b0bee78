// Package metrics defines the Prometheus collectors for index builds and
// queries. Collectors live on a private registry; a batch CLI run exports them
// through the node-exporter textfile format. All methods accept a nil receiver
// so callers can leave metrics unconfigured.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"hoopla/pkg/errs"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	registry *prometheus.Registry

	DocsIndexedTotal prometheus.Counter
	IndexTerms       prometheus.Gauge
	BuildDuration    prometheus.Histogram
	QueriesTotal     *prometheus.CounterVec
	QueryLatency     *prometheus.HistogramVec
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
	SnapshotOpsTotal *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hoopla_documents_indexed_total",
				Help: "Total number of documents indexed by build runs.",
			},
		),
		IndexTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hoopla_index_terms",
				Help: "Number of distinct tokens in the last built index.",
			},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hoopla_build_duration_seconds",
				Help:    "Index build latency in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hoopla_queries_total",
				Help: "Total queries by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hoopla_query_latency_seconds",
				Help:    "Query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"op"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hoopla_posting_cache_hits_total",
				Help: "Posting cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hoopla_posting_cache_misses_total",
				Help: "Posting cache misses.",
			},
		),
		SnapshotOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hoopla_snapshot_operations_total",
				Help: "Snapshot saves and loads by outcome.",
			},
			[]string{"op", "outcome"},
		),
	}

	m.registry.MustRegister(
		m.DocsIndexedTotal,
		m.IndexTerms,
		m.BuildDuration,
		m.QueriesTotal,
		m.QueryLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.SnapshotOpsTotal,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile writes the current values atomically in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) ObserveBuild(docs, terms int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.DocsIndexedTotal.Add(float64(docs))
	m.IndexTerms.Set(float64(terms))
	m.BuildDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveQuery(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(op, Outcome(err)).Inc()
	m.QueryLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveSnapshot(op string, err error) {
	if m == nil {
		return
	}
	m.SnapshotOpsTotal.WithLabelValues(op, Outcome(err)).Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

// Outcome maps an error onto a bounded label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrValidation):
		return "validation"
	case errors.Is(err, errs.ErrMissingIndex):
		return "missing_index"
	case errors.Is(err, errs.ErrUnknownDocument):
		return "unknown_document"
	default:
		return "error"
	}
}
