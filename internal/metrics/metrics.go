// Package metrics exposes prometheus instrumentation for port resolution,
// deduplication and batch processing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"shipping_schedule/internal/catalog"
)

// Metrics provides observability for the normalisation pipeline.
type Metrics struct {
	// Resolutions by winning matcher ("none" when unresolved)
	Resolutions *prometheus.CounterVec

	// Records dropped by reason: "exact", "near"
	DedupeDrops *prometheus.CounterVec

	// Catalog state after load
	CatalogPorts    prometheus.Gauge
	CatalogAliases  prometheus.Gauge
	CatalogWarnings prometheus.Gauge
	CatalogDegraded prometheus.Gauge

	// Batches processed by source and their duration
	Batches       *prometheus.CounterVec
	BatchDuration prometheus.Histogram
	BatchRecords  prometheus.Histogram
}

// New creates a Metrics instance registered with reg. A nil reg uses the
// default prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portnorm_resolutions_total",
			Help: "Port resolutions by the matcher that resolved them",
		}, []string{"matcher"}),

		DedupeDrops: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portnorm_dedupe_drops_total",
			Help: "Sailing records dropped as duplicates by reason",
		}, []string{"reason"}),

		CatalogPorts: f.NewGauge(prometheus.GaugeOpts{
			Name: "portnorm_catalog_ports",
			Help: "Number of canonical ports in the loaded catalog",
		}),
		CatalogAliases: f.NewGauge(prometheus.GaugeOpts{
			Name: "portnorm_catalog_aliases",
			Help: "Number of alias keys in the loaded catalog",
		}),
		CatalogWarnings: f.NewGauge(prometheus.GaugeOpts{
			Name: "portnorm_catalog_warnings",
			Help: "Warnings recorded while loading the alias asset",
		}),
		CatalogDegraded: f.NewGauge(prometheus.GaugeOpts{
			Name: "portnorm_catalog_degraded",
			Help: "1 when the alias asset was unavailable and resolution passes through",
		}),

		Batches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portnorm_batches_total",
			Help: "Schedule batches processed by source and outcome",
		}, []string{"source", "outcome"}),
		BatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "portnorm_batch_duration_seconds",
			Help:    "Duration of standardising and deduplicating one batch",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		BatchRecords: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "portnorm_batch_records",
			Help:    "Records per schedule batch before deduplication",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

// ObserveResolve records one resolution attempt.
func (m *Metrics) ObserveResolve(matcher string, resolved bool) {
	if m == nil {
		return
	}
	if !resolved {
		matcher = "none"
	}
	m.Resolutions.WithLabelValues(matcher).Inc()
}

// ObserveDrop records one dropped duplicate.
func (m *Metrics) ObserveDrop(reason string) {
	if m != nil {
		m.DedupeDrops.WithLabelValues(reason).Inc()
	}
}

// SetCatalog publishes the state of a freshly loaded catalog.
func (m *Metrics) SetCatalog(c *catalog.Catalog) {
	if m == nil || c == nil {
		return
	}
	m.CatalogPorts.Set(float64(c.Len()))
	m.CatalogAliases.Set(float64(c.AliasCount()))
	m.CatalogWarnings.Set(float64(len(c.Warnings())))
	if c.Degraded() {
		m.CatalogDegraded.Set(1)
	} else {
		m.CatalogDegraded.Set(0)
	}
}

// ObserveBatch records one processed batch.
func (m *Metrics) ObserveBatch(source, outcome string, records int, d time.Duration) {
	if m == nil {
		return
	}
	m.Batches.WithLabelValues(source, outcome).Inc()
	m.BatchRecords.Observe(float64(records))
	m.BatchDuration.Observe(d.Seconds())
}
