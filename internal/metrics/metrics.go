// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	FeedRequests       prometheus.Counter
	SearchRequests     prometheus.Counter
	ProviderDuration   *prometheus.HistogramVec
	ProviderFailures   *prometheus.CounterVec
	ProviderCandidates *prometheus.HistogramVec
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
}

// New registers the engine metrics on the given registerer. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry to
// avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FeedRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "mixfeed_feed_requests_total",
			Help: "Total mixed-feed requests served.",
		}),
		SearchRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "mixfeed_search_requests_total",
			Help: "Total search requests served.",
		}),
		ProviderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mixfeed_provider_duration_seconds",
			Help:    "Candidate provider execution time.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ProviderFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mixfeed_provider_failures_total",
			Help: "Candidate provider failures, degraded to empty results.",
		}, []string{"provider"}),
		ProviderCandidates: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mixfeed_provider_candidates",
			Help:    "Candidates returned per provider call.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}, []string{"provider"}),
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mixfeed_cache_hits_total",
			Help: "Cache hits by scope.",
		}, []string{"scope"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mixfeed_cache_misses_total",
			Help: "Cache misses by scope.",
		}, []string{"scope"}),
	}
}
