package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics is
// safe to use everywhere, which keeps tests free of registry setup.
type Metrics struct {
	ConversionsTotal   *prometheus.CounterVec
	ConversionDuration prometheus.Histogram
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	RowsExpanded       prometheus.Counter
	RowsDropped        prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ConversionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "manifestconv_conversions_total",
			Help: "Total number of manifest conversions by outcome",
		}, []string{"outcome"}),
		ConversionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "manifestconv_conversion_duration_seconds",
			Help:    "Latency of full manifest conversions",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "manifestconv_cache_hits_total",
			Help: "Conversions served from the content-keyed result cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "manifestconv_cache_misses_total",
			Help: "Conversions that had to be computed",
		}),
		RowsExpanded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "manifestconv_rows_expanded_total",
			Help: "Item rows produced by the row expander",
		}),
		RowsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "manifestconv_rows_dropped_total",
			Help: "Source rows dropped for having no usable item pairs",
		}),
	}
}

// ObserveConversion records one finished conversion attempt.
func (m *Metrics) ObserveConversion(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ConversionsTotal.WithLabelValues(outcome).Inc()
	m.ConversionDuration.Observe(d.Seconds())
}

// IncrementCacheHit records a cache hit.
func (m *Metrics) IncrementCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// IncrementCacheMiss records a cache miss.
func (m *Metrics) IncrementCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

// AddRowsExpanded records item rows produced by one conversion.
func (m *Metrics) AddRowsExpanded(n int) {
	if m == nil {
		return
	}
	m.RowsExpanded.Add(float64(n))
}

// AddRowsDropped records source rows that contributed no items.
func (m *Metrics) AddRowsDropped(n int) {
	if m == nil {
		return
	}
	m.RowsDropped.Add(float64(n))
}
