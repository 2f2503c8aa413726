// Package metrics exposes the Prometheus instrumentation for the
// catalog search core: cache hit/miss counters, request latency
// histograms, and lookup/synonym snapshot age gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog_search",
		Name:      "cache_hits_total",
		Help:      "Cache hits by kind (listing, aggregations, count, priceRange, detail).",
	}, []string{"kind"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog_search",
		Name:      "cache_misses_total",
		Help:      "Cache misses by kind.",
	}, []string{"kind"})

	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog_search",
		Name:      "cache_errors_total",
		Help:      "Cache operation failures, always swallowed and treated as miss/no-op.",
	}, []string{"op"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "catalog_search",
		Name:      "request_duration_seconds",
		Help:      "End-to-end duration of listing/facet/detail requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	FacetSubqueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "catalog_search",
		Name:      "facet_subquery_duration_seconds",
		Help:      "Duration of each per-dimension facet subquery.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"dimension"})

	LookupSnapshotAgeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "catalog_search",
		Name:      "lookup_snapshot_age_seconds",
		Help:      "Age of the currently-served lookup dictionary snapshot.",
	})

	SynonymSnapshotAgeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "catalog_search",
		Name:      "synonym_snapshot_age_seconds",
		Help:      "Age of the currently-served synonym snapshot.",
	})

	RefreshFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog_search",
		Name:      "refresh_failures_total",
		Help:      "Lookup/synonym refresh failures; last-good snapshot is retained.",
	}, []string{"cache"})

	InvariantDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog_search",
		Name:      "invariant_drops_total",
		Help:      "Rows excluded from a response due to an invariant violation (e.g. a style in the page with no hydrated rows).",
	}, []string{"reason"})
)
