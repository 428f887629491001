package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteColumnsComputed counts pricing columns computed by kind and outcome.
	QuoteColumnsComputed *prometheus.CounterVec
	// QuoteRecalcFallbacks counts columns served stale after a failed recalculation.
	QuoteRecalcFallbacks prometheus.Counter
	// QuoteIntegrityWarnings counts integrity validator findings by warning code.
	QuoteIntegrityWarnings *prometheus.CounterVec
	// QuoteExportsTotal counts document export outcomes.
	QuoteExportsTotal *prometheus.CounterVec
	// QuoteExportLatency records export pipeline latency in milliseconds.
	QuoteExportLatency prometheus.Histogram
	// RateTableCacheHits counts rate table snapshot cache lookups by result.
	RateTableCacheHits *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteColumnsComputed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_columns_computed_total",
			Help:      "Count of pricing columns computed by kind and result.",
		}, []string{"kind", "result"})
		QuoteRecalcFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_recalc_fallbacks_total",
			Help:      "Columns served from the cached version after a failed recalculation.",
		})
		QuoteIntegrityWarnings = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_integrity_warnings_total",
			Help:      "Integrity validator warnings by code.",
		}, []string{"code"})
		QuoteExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_exports_total",
			Help:      "Count of quote document export outcomes.",
		}, []string{"result"})
		QuoteExportLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_export_duration_ms",
			Help:      "Latency of the document export pipeline in milliseconds.",
			Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		})
		RateTableCacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_table_cache_lookups_total",
			Help:      "Rate table snapshot cache lookups by result.",
		}, []string{"result"})

		mustRegisterCollector(reg, QuoteColumnsComputed, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteColumnsComputed = v
			}
		})
		mustRegisterCollector(reg, QuoteRecalcFallbacks, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				QuoteRecalcFallbacks = v
			}
		})
		mustRegisterCollector(reg, QuoteIntegrityWarnings, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteIntegrityWarnings = v
			}
		})
		mustRegisterCollector(reg, QuoteExportsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteExportsTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteExportLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				QuoteExportLatency = v
			}
		})
		mustRegisterCollector(reg, RateTableCacheHits, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RateTableCacheHits = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
